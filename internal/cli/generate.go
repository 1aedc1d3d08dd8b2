package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tephi/pkg/config"
	"github.com/matzehuels/tephi/pkg/pipeline"
	"github.com/matzehuels/tephi/pkg/sounding"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	output         string // output base path; "-" writes a single format to stdout
	formats        string // comma-separated output formats
	projection     string // overrides the definition's projection
	sounding       string // EDT or NetCDF sounding to overlay
	standardLevels bool   // prune the sounding to the standard levels
	noCache        bool
	refresh        bool
	workers        int
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOpts{workers: pipeline.DefaultWorkers}

	cmd := &cobra.Command{
		Use:   "generate [chart.toml]",
		Short: "Generate chart isopleths",
		Long: `Generate the isopleths of a thermodynamic chart.

Without a definition file the standard tephigram is generated. The chart is
written as <output>.<format> for each requested format (json, csv).

Examples:
  tephi generate                                  # standard tephigram
  tephi generate chart.toml -f json,csv           # custom definition
  tephi generate --projection skew-t -o skewt     # standard skew-T
  tephi generate --sounding 10238.edt             # overlay a radiosonde ascent

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return c.runGenerate(cmd.Context(), input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: <input> or <projection>)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", pipeline.FormatJSON, "output formats: json, csv (comma-separated)")
	cmd.Flags().StringVar(&opts.projection, "projection", "", "projection: tephigram, skew-logp, emagram (overrides the definition)")
	cmd.Flags().StringVar(&opts.sounding, "sounding", "", "sounding file to overlay (.edt or .nc)")
	cmd.Flags().BoolVar(&opts.standardLevels, "standard-levels", false, "prune the sounding to the standard 10 hPa levels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "regenerate even when cached")
	cmd.Flags().IntVar(&opts.workers, "workers", opts.workers, "isopleths generated concurrently")

	return cmd
}

// runGenerate loads the definition, runs the pipeline and writes the artifacts.
func (c *CLI) runGenerate(ctx context.Context, input string, g generateOpts) error {
	def := config.Default()
	if input != "" {
		var err error
		if def, err = config.Load(input); err != nil {
			return fmt.Errorf("load definition %s: %w", input, err)
		}
	}
	if g.projection != "" {
		def.Projection = g.projection
	}

	opts := pipeline.Options{
		Chart:   def,
		Workers: g.workers,
		Refresh: g.refresh,
		Formats: parseFormats(g.formats),
		Logger:  c.Logger,
	}
	if g.sounding != "" {
		prof, err := sounding.ReadFile(g.sounding)
		if err != nil {
			return fmt.Errorf("load sounding %s: %w", g.sounding, err)
		}
		opts.Sounding = prof
		if g.standardLevels {
			opts.SoundingLevels = sounding.StandardLevels()
		}
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if g.output == "-" && len(opts.Formats) != 1 {
		return fmt.Errorf("writing to stdout needs exactly one format, got %d", len(opts.Formats))
	}

	runner, err := c.newRunner(g.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating %s...", opts.Chart.Projection))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if g.output == "-" {
		_, err := os.Stdout.Write(result.Artifacts[opts.Formats[0]])
		return err
	}

	base := outputBase(input, g.output, opts.Chart.Projection)
	var jsonPath string
	printSuccess("Generated %s", opts.Chart.Projection)
	for _, format := range opts.Formats {
		path := base + "." + format
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		if format == pipeline.FormatJSON {
			jsonPath = path
		}
		printFile(path)
	}
	prog.done(fmt.Sprintf("Wrote %d isopleths in %d formats", result.Stats.Lines, len(opts.Formats)))
	printStats(result.Stats, result.CacheInfo.GenerateHit)
	if result.Stats.Conflicts > 0 {
		printWarning("%d moist adiabat steps hit conflicting domain bounds", result.Stats.Conflicts)
	}
	if jsonPath != "" {
		printNewline()
		printNextStep("Browse", appName+" browse "+jsonPath)
	}
	return nil
}

// outputBase picks the output path without extension. An explicit output
// keeps its directory and drops a known format extension.
func outputBase(input, output, projection string) string {
	switch {
	case output != "":
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	case input != "":
		return strings.TrimSuffix(input, filepath.Ext(input))
	default:
		return projection
	}
}
