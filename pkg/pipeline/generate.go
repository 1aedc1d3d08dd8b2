package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tephi/pkg/chart"
	"github.com/matzehuels/tephi/pkg/isopleth"
	"github.com/matzehuels/tephi/pkg/projection"
)

// Generate builds the chart described by opts without caching.
//
// Isopleths are generated on up to opts.Workers goroutines. Each worker
// writes into its own slot, so the chart lists lines in request order no
// matter how the work is scheduled. The first failure cancels the rest.
func Generate(ctx context.Context, opts Options) (*chart.Chart, error) {
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, err
	}
	def := opts.Chart

	proj, err := projection.ByName(def.Projection, def.Params)
	if err != nil {
		return nil, err
	}
	gen, err := isopleth.NewGenerator(def.Domain, def.Sampling)
	if err != nil {
		return nil, err
	}

	reqs := def.Requests()
	isos := make([]isopleth.Isopleth, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			iso, err := gen.Generate(req)
			if err != nil {
				return fmt.Errorf("%s %g: %w", req.Family, req.Level, err)
			}
			isos[i] = iso
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := chart.New(proj, def.Params.WithDefaults(), gen.Domain(), isos)
	for _, tr := range opts.traces() {
		c.AddProfile(proj, tr.Name, tr.Station, tr.States)
	}
	return c, nil
}

// statsOf counts lines, points and clamp conflicts in c.
func statsOf(c *chart.Chart) Stats {
	var s Stats
	for _, l := range c.Lines {
		s.Lines++
		s.Points += len(l.Points)
		s.Conflicts += l.Conflicts
		if len(l.Points) == 0 {
			s.EmptyLines++
		}
	}
	return s
}
