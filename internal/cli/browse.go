package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tephi/pkg/chart"
	"github.com/matzehuels/tephi/pkg/config"
	"github.com/matzehuels/tephi/pkg/pipeline"
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "browse [chart.json]",
		Short: "Browse the lines of a generated chart",
		Long: `Browse the lines of a chart interactively.

Reads a chart written by 'tephi generate'. Without a file the standard
tephigram is generated (or loaded from the cache) first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				ch  *chart.Chart
				err error
			)
			if len(args) == 1 {
				ch, err = chart.ReadFile(args[0])
			} else {
				ch, err = c.defaultChart(cmd.Context(), noCache)
			}
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(NewChartModel(ch), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// defaultChart generates the standard tephigram through the cached runner.
func (c *CLI) defaultChart(ctx context.Context, noCache bool) (*chart.Chart, error) {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Generating tephigram...")
	spinner.Start()
	ch, err := runner.Generate(ctx, pipeline.Options{Chart: config.Default(), Logger: c.Logger})
	if err != nil {
		spinner.StopWithError("Generation failed")
		return nil, err
	}
	spinner.Stop()
	return ch, nil
}
