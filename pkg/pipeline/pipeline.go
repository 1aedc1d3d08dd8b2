// Package pipeline provides the chart generation pipeline shared by the CLI
// and the HTTP API.
//
// The pipeline has two stages:
//
//  1. Generate: expand the chart definition into isopleth requests, run
//     them concurrently through pkg/isopleth and project the result
//  2. Render: encode the chart in the requested output formats (json, csv)
//
// Both stages are cached by the [Runner]: chart geometry under a hash of
// the definition, and each artifact under a hash of the chart.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Chart:   config.Default(),
//	    Formats: []string{"json", "csv"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	csv := result.Artifacts["csv"]
//
// Run individual stages:
//
//	c, err := runner.Generate(ctx, opts)
//	artifacts, err := runner.Render(ctx, c, opts)
package pipeline

import (
	"encoding/json"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tephi/pkg/cache"
	"github.com/matzehuels/tephi/pkg/chart"
	"github.com/matzehuels/tephi/pkg/config"
	"github.com/matzehuels/tephi/pkg/errors"
	"github.com/matzehuels/tephi/pkg/sounding"
	"github.com/matzehuels/tephi/pkg/thermo"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultWorkers bounds how many isopleths are generated at once.
const DefaultWorkers = 8

// MaxWorkers caps the worker count accepted from callers.
const MaxWorkers = 256

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatCSV:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the chart pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Generate options
	Chart   config.Chart `json:"chart"`
	Workers int          `json:"workers,omitempty"`
	Refresh bool         `json:"refresh,omitempty"`

	// Sounding overlay. SoundingLevels, when set, prunes the profile to the
	// levels nearest those pressures before it is drawn.
	Sounding       *sounding.Profile `json:"sounding,omitempty"`
	SoundingLevels []float64         `json:"sounding_levels,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Chart is the generated, projected chart.
	Chart *chart.Chart

	// ChartHash is the content hash of the chart JSON.
	ChartHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Lines        int
	EmptyLines   int
	Points       int
	Conflicts    int
	GenerateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GenerateHit bool // Whether the chart came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, csv)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the chart definition and applies defaults
// for the full pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForGenerate validates and sets defaults for generation.
func (o *Options) ValidateForGenerate() error {
	o.SetGenerateDefaults()
	if err := o.Chart.Validate(); err != nil {
		return err
	}
	if o.Workers < 1 || o.Workers > MaxWorkers {
		return errors.New(errors.ErrCodeInvalidInput, "workers must be in [1, %d], got %d", MaxWorkers, o.Workers)
	}
	if o.Sounding != nil {
		if err := o.Sounding.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SetGenerateDefaults sets default values for generation.
func (o *Options) SetGenerateDefaults() {
	o.Chart.SetDefaults()
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// ChartKeyOpts returns cache key options for chart generation.
func (o *Options) ChartKeyOpts() cache.ChartKeyOpts {
	opts := cache.ChartKeyOpts{
		Projection: o.Chart.Projection,
		Spec:       o.Chart.Spec(),
	}
	if traces := o.traces(); len(traces) > 0 {
		data, _ := json.Marshal(traces)
		opts.Sounding = cache.Hash(data)
	}
	return opts
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format}
}

// trace is one sounding curve ready to be projected.
type trace struct {
	Name    string         `json:"name"`
	Station string         `json:"station,omitempty"`
	States  []thermo.State `json:"states"`
}

// traces extracts the sounding curves to overlay, pruned to SoundingLevels
// and clipped to the chart domain. Curves with no points are left out.
func (o *Options) traces() []trace {
	if o.Sounding == nil {
		return nil
	}
	prof := o.Sounding
	if len(o.SoundingLevels) > 0 {
		prof = prof.Prune(o.SoundingLevels)
	}
	var out []trace
	for _, kind := range sounding.Kinds() {
		states := slices.DeleteFunc(prof.Trace(kind), func(s thermo.State) bool {
			return !o.Chart.Domain.Contains(s)
		})
		if len(states) > 0 {
			out = append(out, trace{Name: kind.String(), Station: prof.Station, States: states})
		}
	}
	return out
}
