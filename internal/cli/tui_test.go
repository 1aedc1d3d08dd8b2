package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/tephi/pkg/chart"
	"github.com/matzehuels/tephi/pkg/isopleth"
	"github.com/matzehuels/tephi/pkg/projection"
)

func browseChart(t *testing.T) *chart.Chart {
	t.Helper()
	g, err := isopleth.NewGenerator(isopleth.DefaultDomain(), isopleth.Options{Samples: 5, MoistSteps: 4})
	if err != nil {
		t.Fatal(err)
	}
	isos, err := g.GenerateAll([]isopleth.Request{
		{Family: isopleth.Isotherm, Level: -20},
		{Family: isopleth.Isotherm, Level: 0},
		{Family: isopleth.Isotherm, Level: 200},
		{Family: isopleth.Isobar, Level: 500},
	})
	if err != nil {
		t.Fatal(err)
	}
	proj, err := projection.ByName(projection.NameTephigram, projection.Params{})
	if err != nil {
		t.Fatal(err)
	}
	return chart.New(proj, projection.Params{}, g.Domain(), isos)
}

func press(m tea.Model, key tea.KeyMsg) (tea.Model, tea.Cmd) {
	return m.Update(key)
}

func TestChartModelNavigation(t *testing.T) {
	var m tea.Model = NewChartModel(browseChart(t))

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown}) // clamped at the last line
	if got := m.(ChartModel).Cursor; got != 3 {
		t.Errorf("Cursor = %d, want 3", got)
	}

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyUp})
	if got := m.(ChartModel).Cursor; got != 2 {
		t.Errorf("Cursor = %d, want 2", got)
	}
	if view := m.View(); !strings.Contains(view, "outside domain") {
		t.Errorf("view should mark the empty isotherm:\n%s", view)
	}
}

func TestChartModelFilter(t *testing.T) {
	var m tea.Model = NewChartModel(browseChart(t))

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	cm := m.(ChartModel)
	if cm.filterName() != "isotherm" || len(cm.lines) != 3 {
		t.Errorf("filter %q shows %d lines, want isotherm with 3", cm.filterName(), len(cm.lines))
	}

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab}) // isentrope: none drawn
	if view := m.View(); !strings.Contains(view, "no lines") {
		t.Errorf("view should report no lines:\n%s", view)
	}

	for range isopleth.Families() {
		m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	}
	if cm := m.(ChartModel); cm.Filter != 1 {
		t.Errorf("Filter = %d after a full cycle, want 1", cm.Filter)
	}
}

func TestChartModelExpand(t *testing.T) {
	var m tea.Model = NewChartModel(browseChart(t))

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.(ChartModel).Expanded {
		t.Fatal("enter should expand the selected line")
	}
	if view := m.View(); !strings.Contains(view, "hPa") || !strings.Contains(view, "x ") {
		t.Errorf("expanded view should list points:\n%s", view)
	}
}

func TestChartModelQuit(t *testing.T) {
	m := NewChartModel(browseChart(t))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestPointListingStride(t *testing.T) {
	l := chart.Line{Points: make([]chart.XY, 100)}
	got := strings.Count(pointListing(l, 10), "hPa")
	if got != 10 {
		t.Errorf("pointListing() shows %d points, want 10", got)
	}
}
