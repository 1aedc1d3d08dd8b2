// Package pkg provides the core libraries for tephi thermodynamic charts.
//
// # Overview
//
// Tephi computes the background lines of thermodynamic diagrams used to
// plot radiosonde ascents: isotherms, isentropes (dry adiabats), saturated
// (pseudo-)adiabats, isobars and saturation mixing ratio lines. Each line is
// generated in (pressure, temperature) space and projected into the display
// space of a tephigram or a skew-T log-P chart. The pkg directory is
// organized into three areas:
//
//  1. Physics - [thermo] relations and [projection] transforms
//  2. Geometry - [isopleth] generation and the [chart] wire format
//  3. Orchestration - [config], [pipeline], [cache], [store], [sounding]
//
// # Architecture
//
// The typical data flow through tephi:
//
//	chart definition (TOML/JSON)
//	         ↓
//	    [config] package (level sets → isopleth requests)
//	         ↓
//	    [isopleth] package (lines in P, T clipped to the domain)
//	         ↓
//	    [projection] package (P, T → x, y)
//	         ↓
//	    [chart] package (json, csv via [pipeline])
//
// # Quick Start
//
// Generate a standard tephigram:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/tephi/pkg/config"
//	    "github.com/matzehuels/tephi/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Chart:   config.Default(),
//	    Formats: []string{"json", "csv"},
//	})
//
// Generate single lines without the pipeline:
//
//	g, _ := isopleth.NewGenerator(isopleth.DefaultDomain(), isopleth.Options{})
//	iso, _ := g.MoistAdiabat(20)
//	proj, _ := projection.ByName("skew-t", projection.Params{})
//	pts := iso.Project(proj)
//
// # Main Packages
//
// [thermo] - Saturation vapour pressure, mixing ratio, potential temperature
// and the pseudo-adiabatic lapse rate.
//
// [projection] - Tephigram, skew-T log-P and emagram transforms built from
// an axis map and an affine matrix, with exact inverses.
//
// [isopleth] - Line generation per family inside a pressure/temperature
// domain. Moist adiabats are integrated from an anchor pressure in both
// directions.
//
// [chart] - Serialized chart geometry carrying both (P, T) and (x, y).
//
// [sounding] - Radiosonde profiles read from Vaisala EDT exports and
// NetCDF files, for overlay on a chart.
//
// [pipeline] - Generate and render stages with caching, shared by the CLI
// and the HTTP API.
//
// [cache] - File, Redis and null caches for chart geometry and artifacts.
//
// [store] - Saved charts in memory, on disk or in MongoDB.
//
// [observability] - Hooks for metrics on generation, caching and HTTP.
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/isopleth/...           # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [thermo]: https://pkg.go.dev/github.com/matzehuels/tephi/pkg/thermo
// [projection]: https://pkg.go.dev/github.com/matzehuels/tephi/pkg/projection
// [isopleth]: https://pkg.go.dev/github.com/matzehuels/tephi/pkg/isopleth
// [chart]: https://pkg.go.dev/github.com/matzehuels/tephi/pkg/chart
// [config]: https://pkg.go.dev/github.com/matzehuels/tephi/pkg/config
// [sounding]: https://pkg.go.dev/github.com/matzehuels/tephi/pkg/sounding
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/tephi/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/tephi/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/tephi/pkg/store
// [observability]: https://pkg.go.dev/github.com/matzehuels/tephi/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/tephi/pkg/errors
package pkg
