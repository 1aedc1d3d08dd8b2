package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/tephi/pkg/cache"
	"github.com/matzehuels/tephi/pkg/config"
	"github.com/matzehuels/tephi/pkg/errors"
	"github.com/matzehuels/tephi/pkg/isopleth"
	"github.com/matzehuels/tephi/pkg/observability"
	"github.com/matzehuels/tephi/pkg/sounding"
)

func smallChart() config.Chart {
	return config.Chart{
		Sampling: isopleth.Options{Samples: 5, MoistSteps: 3},
		Levels: config.Levels{
			Isotherms:     config.List(0, 10, 200),
			MoistAdiabats: config.List(10),
			Isobars:       config.Range(500, 1000, 250),
		},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"csv", false},
		{"svg", true},
		{"JSON", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", opts.Workers, DefaultWorkers)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if opts.Chart.Projection != "tephigram" || opts.Logger == nil {
		t.Errorf("chart defaults not applied: %+v", opts.Chart)
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"workers", Options{Workers: -1}, errors.ErrCodeInvalidInput},
		{"too many workers", Options{Workers: MaxWorkers + 1}, errors.ErrCodeInvalidInput},
		{"format", Options{Formats: []string{"svg"}}, errors.ErrCodeInvalidFormat},
		{"projection", Options{Chart: config.Chart{Projection: "mercator"}}, errors.ErrCodeInvalidProjection},
		{"empty sounding", Options{Sounding: &sounding.Profile{}}, errors.ErrCodeInvalidSounding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestGenerateKeepsRequestOrder(t *testing.T) {
	def := smallChart()
	reqs := def.Requests()

	for _, workers := range []int{1, 3, 16} {
		c, err := Generate(context.Background(), Options{Chart: smallChart(), Workers: workers})
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if len(c.Lines) != len(reqs) {
			t.Fatalf("workers=%d: %d lines, want %d", workers, len(c.Lines), len(reqs))
		}
		for i, req := range reqs {
			if c.Lines[i].Family != req.Family.String() || c.Lines[i].Level != req.Level {
				t.Errorf("workers=%d: line %d = %s %g, want %s %g", workers, i,
					c.Lines[i].Family, c.Lines[i].Level, req.Family, req.Level)
			}
		}
	}
}

func TestGenerateInvalidLevel(t *testing.T) {
	def := smallChart()
	def.Levels.MoistAdiabats = config.List(150) // anchor outside the domain
	_, err := Generate(context.Background(), Options{Chart: def})
	if !errors.Is(err, errors.ErrCodeInvalidLevel) {
		t.Errorf("Generate() error = %v, want INVALID_LEVEL", err)
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Generate(ctx, Options{Chart: smallChart(), Workers: 1}); err == nil {
		t.Error("Generate() with cancelled context should fail")
	}
}

func TestRenderCSV(t *testing.T) {
	c, err := Generate(context.Background(), Options{Chart: smallChart()})
	if err != nil {
		t.Fatal(err)
	}
	data, err := RenderCSV(c)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(rows), c.PointCount()+1; got != want {
		t.Errorf("rows = %d, want %d", got, want)
	}
	if rows[0][0] != "family" || rows[0][6] != "y" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "isotherm" || rows[1][1] != "0" || rows[1][2] != "0" || rows[1][3] != "50" {
		t.Errorf("first row = %v", rows[1])
	}
}

func TestSoundingOverlay(t *testing.T) {
	prof := &sounding.Profile{Station: "TEST", Levels: []sounding.Level{
		{Pressure: 1100, Temperature: 25, Dewpoint: 20}, // below the domain
		{Pressure: 1000, Temperature: 20, Dewpoint: 15},
		{Pressure: 995, Temperature: 19.8, Dewpoint: 14.9},
		{Pressure: 850, Temperature: 10, Dewpoint: 2},
		{Pressure: 500, Temperature: -20, Dewpoint: -40},
	}}
	opts := Options{Chart: smallChart(), Sounding: prof, SoundingLevels: []float64{1000, 850, 500}}
	c, err := Generate(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Profiles) != 2 {
		t.Fatalf("Profiles = %d, want 2", len(c.Profiles))
	}
	for _, p := range c.Profiles {
		if p.Station != "TEST" || len(p.Points) != 3 {
			t.Errorf("profile %s: station %q, %d points", p.Name, p.Station, len(p.Points))
		}
	}

	plain := Options{Chart: smallChart()}
	if opts.ChartKeyOpts().Sounding == "" || plain.ChartKeyOpts().Sounding != "" {
		t.Error("sounding must only be part of the cache key when present")
	}
}

func TestRunnerCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()
	ctx := context.Background()
	opts := Options{Chart: smallChart(), Formats: []string{FormatJSON, FormatCSV}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.GenerateHit || first.CacheInfo.RenderHit {
		t.Errorf("first run hit cache: %+v", first.CacheInfo)
	}
	if len(first.Artifacts) != 2 || first.ChartHash == "" {
		t.Errorf("artifacts = %d, hash = %q", len(first.Artifacts), first.ChartHash)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.GenerateHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run missed cache: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatCSV], second.Artifacts[FormatCSV]) || first.ChartHash != second.ChartHash {
		t.Error("cached artifacts differ from generated ones")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.GenerateHit {
		t.Error("refresh should bypass the chart cache")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	starts int
	stats  observability.GenerateStats
}

func (h *recordingHooks) OnGenerateStart(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts++
}

func (h *recordingHooks) OnGenerateComplete(_ context.Context, _ string, s observability.GenerateStats, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats = s
}

func TestRunnerHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	t.Cleanup(observability.Reset)

	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Chart: smallChart()})
	if err != nil {
		t.Fatal(err)
	}
	if h.starts != 1 {
		t.Errorf("OnGenerateStart calls = %d, want 1", h.starts)
	}
	// Isotherm 200 °C lies outside the domain and is empty.
	if h.stats.Lines != res.Stats.Lines || h.stats.Empty != 1 || h.stats.Points != res.Stats.Points {
		t.Errorf("hook stats = %+v, result stats = %+v", h.stats, res.Stats)
	}
}
