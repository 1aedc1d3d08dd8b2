package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/tephi/pkg/chart"
	"github.com/matzehuels/tephi/pkg/isopleth"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ChartModel - Interactive chart line browser
// =============================================================================

// ChartModel is the bubbletea model for browsing the lines of a chart.
// Tab cycles a family filter; enter toggles the point listing of the
// selected line.
type ChartModel struct {
	Chart    *chart.Chart
	Filter   int // 0 shows all families, otherwise an index into isopleth.Families()+1
	Cursor   int
	Offset   int
	Height   int
	Expanded bool

	lines []chart.Line
}

// NewChartModel creates a browser over c.
func NewChartModel(c *chart.Chart) ChartModel {
	m := ChartModel{Chart: c, Height: 15}
	m.lines = m.visible()
	return m
}

// visible returns the lines passing the family filter.
func (m ChartModel) visible() []chart.Line {
	if m.Filter == 0 {
		return m.Chart.Lines
	}
	return m.Chart.LinesOf(isopleth.Families()[m.Filter-1])
}

// filterName returns the display name of the current filter.
func (m ChartModel) filterName() string {
	if m.Filter == 0 {
		return "all"
	}
	return isopleth.Families()[m.Filter-1].String()
}

func (m ChartModel) Init() tea.Cmd {
	return nil
}

func (m ChartModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.lines)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "tab":
			m.Filter = (m.Filter + 1) % (len(isopleth.Families()) + 1)
			m.lines = m.visible()
			m.Cursor, m.Offset, m.Expanded = 0, 0, false
		case "enter":
			if len(m.lines) > 0 {
				m.Expanded = !m.Expanded
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ChartModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("%s · %s", m.Chart.Projection, m.filterName())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⇥ family  ⏎ points  q quit"))
	b.WriteString("\n\n")

	if len(m.lines) == 0 {
		b.WriteString(listDimStyle.Render("  no lines"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.lines))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		l := m.lines[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			l.Family,
			formatLevel(l.Level) + " " + l.Unit,
			strconv.Itoa(len(l.Points)),
			lineSpan(l),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Family", "Level", "Points", "Span").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.lines) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if len(m.lines[idx].Points) == 0 {
				base = base.Foreground(colorDim)
			}
			if idx == m.Cursor {
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.lines))))

	if m.Expanded {
		b.WriteString("\n\n")
		b.WriteString(pointListing(m.lines[m.Cursor], m.Height))
	}
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatLevel(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// lineSpan describes the pressure range a line covers.
func lineSpan(l chart.Line) string {
	if len(l.Points) == 0 {
		return "outside domain"
	}
	first, last := l.Points[0], l.Points[len(l.Points)-1]
	return fmt.Sprintf("%.0f → %.0f hPa", first.P, last.P)
}

// pointListing shows up to limit evenly spaced points of l.
func pointListing(l chart.Line, limit int) string {
	n := len(l.Points)
	if n == 0 {
		return listDimStyle.Render("  no points inside the domain")
	}
	stride := 1
	if limit > 0 && n > limit {
		stride = (n + limit - 1) / limit
	}
	var b strings.Builder
	for i := 0; i < n; i += stride {
		p := l.Points[i]
		fmt.Fprintf(&b, "  %8.2f hPa %8.2f °C  →  x %9.4f  y %9.4f\n", p.P, p.T, p.X, p.Y)
	}
	return StyleDim.Render(strings.TrimRight(b.String(), "\n"))
}
