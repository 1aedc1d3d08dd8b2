package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/tephi/pkg/chart"
	"github.com/matzehuels/tephi/pkg/errors"
)

func TestRunGenerateDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	out := captureUI(t)
	c := New(io.Discard, LogInfo)
	base := filepath.Join(t.TempDir(), "standard")

	err := c.runGenerate(context.Background(), "", generateOpts{output: base, formats: "json,csv", workers: 4})
	if err != nil {
		t.Fatalf("runGenerate() error: %v", err)
	}

	ch, err := chart.ReadFile(base + ".json")
	if err != nil {
		t.Fatalf("read generated chart: %v", err)
	}
	if ch.Projection != "tephigram" || len(ch.Lines) != 121 {
		t.Errorf("chart = %s with %d lines, want tephigram with 121", ch.Projection, len(ch.Lines))
	}

	data, err := os.ReadFile(base + ".csv")
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if !strings.HasPrefix(string(data), "family,level,index,pressure,temperature,x,y\n") {
		t.Errorf("csv header = %q", strings.SplitN(string(data), "\n", 2)[0])
	}
	if !strings.Contains(out.String(), "tephi browse "+base+".json") {
		t.Errorf("missing browse hint in output:\n%s", out.String())
	}
}

func TestRunGenerateDefinition(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "small.toml")
	content := `projection = "skew-t"

[levels.isotherms]
values = [-20, 0, 20]

[levels.isobars]
start = 200
stop = 1000
step = 200
`
	if err := os.WriteFile(def, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	captureUI(t)
	c := New(io.Discard, LogInfo)
	if err := c.runGenerate(context.Background(), def, generateOpts{formats: "json", noCache: true, workers: 2}); err != nil {
		t.Fatalf("runGenerate() error: %v", err)
	}

	ch, err := chart.ReadFile(filepath.Join(dir, "small.json"))
	if err != nil {
		t.Fatalf("read generated chart: %v", err)
	}
	if ch.Projection != "skew-logp" {
		t.Errorf("Projection = %q, want skew-logp", ch.Projection)
	}
	if len(ch.Lines) != 3+5 {
		t.Errorf("len(Lines) = %d, want 8", len(ch.Lines))
	}
}

func TestRunGenerateErrors(t *testing.T) {
	c := New(io.Discard, LogInfo)
	dir := t.TempDir()

	tests := []struct {
		name  string
		input string
		opts  generateOpts
		code  errors.Code
	}{
		{"missing definition", filepath.Join(dir, "missing.toml"), generateOpts{workers: 1}, errors.ErrCodeFileNotFound},
		{"bad projection", "", generateOpts{projection: "mercator", workers: 1}, errors.ErrCodeInvalidProjection},
		{"bad format", "", generateOpts{formats: "svg", workers: 1}, errors.ErrCodeInvalidFormat},
		{"bad workers", "", generateOpts{workers: -1}, errors.ErrCodeInvalidInput},
		{"missing sounding", "", generateOpts{sounding: filepath.Join(dir, "missing.edt"), workers: 1}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.noCache = true
			err := c.runGenerate(context.Background(), tt.input, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("runGenerate() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRunGenerateStdoutNeedsOneFormat(t *testing.T) {
	c := New(io.Discard, LogInfo)
	err := c.runGenerate(context.Background(), "", generateOpts{output: "-", formats: "json,csv", noCache: true, workers: 1})
	if err == nil || !strings.Contains(err.Error(), "exactly one format") {
		t.Errorf("runGenerate() error = %v, want a format count error", err)
	}
}

func TestOutputBase(t *testing.T) {
	tests := []struct {
		input, output, projection string
		want                      string
	}{
		{"", "", "tephigram", "tephigram"},
		{"charts/summer.toml", "", "tephigram", "charts/summer"},
		{"charts/summer.toml", "out/custom", "tephigram", "out/custom"},
		{"", "out/custom.json", "skew-t", "out/custom"},
		{"", "out/custom.v2", "skew-t", "out/custom.v2"},
	}
	for _, tt := range tests {
		if got := outputBase(tt.input, tt.output, tt.projection); got != tt.want {
			t.Errorf("outputBase(%q, %q, %q) = %q, want %q", tt.input, tt.output, tt.projection, got, tt.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"json"}},
		{"csv", []string{"csv"}},
		{"JSON, csv", []string{"json", "csv"}},
		{"json,,csv,", []string{"json", "csv"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
