package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/tephi/pkg/config"
)

func TestWriteLevelsDefault(t *testing.T) {
	var buf bytes.Buffer
	if err := writeLevels(&buf, config.Default()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d families, want 5:\n%s", len(lines), buf.String())
	}
	wantCounts := []struct {
		family string
		count  string
	}{
		{"isotherm", " 17 "},
		{"isentrope", " 35 "},
		{"moist-adiabat", " 11 "},
		{"isobar", " 21 "},
		{"mixing-ratio", " 37 "},
	}
	for i, w := range wantCounts {
		if !strings.HasPrefix(lines[i], w.family+" ") || !strings.Contains(lines[i], w.count) {
			t.Errorf("line %d = %q, want %s with count%s", i, lines[i], w.family, w.count)
		}
	}
	if !strings.Contains(lines[0], "-90 -80 -70") {
		t.Errorf("isotherm values missing: %q", lines[0])
	}
}

func TestWriteLevelsSkipsUndrawnFamilies(t *testing.T) {
	def := config.Chart{Levels: config.Levels{Isobars: config.List(1000, 500)}}
	def.SetDefaults()

	var buf bytes.Buffer
	if err := writeLevels(&buf, def); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); !strings.HasPrefix(got, "isobar") || strings.Count(got, "\n") != 0 {
		t.Errorf("writeLevels() = %q, want a single isobar line", got)
	}
}
