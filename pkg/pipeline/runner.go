package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tephi/pkg/cache"
	"github.com/matzehuels/tephi/pkg/chart"
	"github.com/matzehuels/tephi/pkg/observability"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeChart    = "chart"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the cache lifetime of charts and artifacts when set.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete generate → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Generate
	genStart := time.Now()
	c, genHit, err := r.GenerateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Chart = c
	result.Stats = statsOf(c)
	result.Stats.GenerateTime = time.Since(genStart)
	result.CacheInfo.GenerateHit = genHit

	r.Logger.Info("generated isopleths",
		"projection", c.Projection,
		"lines", result.Stats.Lines,
		"points", result.Stats.Points,
		"cached", genHit,
		"duration", result.Stats.GenerateTime)
	if result.Stats.Conflicts > 0 {
		r.Logger.Warn("moist adiabats hit conflicting domain bounds",
			"conflicts", result.Stats.Conflicts)
	}
	if n := len(c.Profiles); n > 0 {
		r.Logger.Debug("projected sounding", "station", c.Profiles[0].Station, "traces", n)
	}

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, c, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit
	if data, ok := artifacts[FormatJSON]; ok {
		result.ChartHash = cache.Hash(data)
	} else if data, err := chart.Marshal(c); err == nil {
		result.ChartHash = cache.Hash(data)
	}

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateWithCacheInfo generates a chart with caching and returns cache hit info.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (*chart.Chart, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()
	cacheKey := r.Keyer.ChartKey(opts.ChartKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if c, err := chart.Unmarshal(data); err == nil {
				cacheHooks.OnCacheHit(ctx, keyTypeChart)
				return c, true, nil
			}
			// Undecodable entry: fall through and overwrite it
		} else if err != nil {
			r.Logger.Debug("chart cache read failed", "error", err)
		}
		cacheHooks.OnCacheMiss(ctx, keyTypeChart)
	}

	start := time.Now()
	hooks.OnGenerateStart(ctx, opts.Chart.Projection, len(opts.Chart.Requests()))
	c, err := Generate(ctx, opts)
	var stats observability.GenerateStats
	if c != nil {
		s := statsOf(c)
		stats = observability.GenerateStats{Lines: s.Lines, Empty: s.EmptyLines, Points: s.Points, Conflicts: s.Conflicts}
	}
	hooks.OnGenerateComplete(ctx, opts.Chart.Projection, stats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := chart.Marshal(c); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.ChartTTL)); err == nil {
			cacheHooks.OnCacheSet(ctx, keyTypeChart, len(data))
		} else {
			r.Logger.Debug("chart cache write failed", "error", err)
		}
	}
	return c, false, nil
}

// Generate is a convenience wrapper that calls GenerateWithCacheInfo and discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, opts Options) (*chart.Chart, error) {
	c, _, err := r.GenerateWithCacheInfo(ctx, opts)
	return c, err
}

// RenderWithCacheInfo renders artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, c *chart.Chart, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	chartData, err := chart.Marshal(c)
	if err != nil {
		return nil, false, fmt.Errorf("serialize chart for cache key: %w", err)
	}
	chartHash := cache.Hash(chartData)
	cacheHooks := observability.Cache()

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(chartHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			cacheHooks.OnCacheMiss(ctx, keyTypeArtifact)
			break
		}
		cacheHooks.OnCacheHit(ctx, keyTypeArtifact)
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	rendered, err := Render(c, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(chartHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.ArtifactTTL)); err == nil {
			cacheHooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, c *chart.Chart, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, c, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}
