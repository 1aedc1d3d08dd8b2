package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tephi/pkg/config"
	"github.com/matzehuels/tephi/pkg/isopleth"
)

// levelsCommand creates the levels command.
func (c *CLI) levelsCommand() *cobra.Command {
	var asTOML bool

	cmd := &cobra.Command{
		Use:   "levels [chart.toml]",
		Short: "Print the level sets of a chart definition",
		Long: `Print the isopleth levels a chart definition expands to.

Without a definition file the standard tephigram levels are printed. With
--toml the full definition is written as TOML, a starting point for custom
charts:

  tephi levels --toml > chart.toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def := config.Default()
			if len(args) == 1 {
				var err error
				if def, err = config.Load(args[0]); err != nil {
					return err
				}
			}
			if asTOML {
				return def.Encode(cmd.OutOrStdout())
			}
			return writeLevels(cmd.OutOrStdout(), def)
		},
	}

	cmd.Flags().BoolVar(&asTOML, "toml", false, "print the definition as TOML")
	return cmd
}

// writeLevels prints one line per family: name, unit, count and values.
func writeLevels(w io.Writer, def config.Chart) error {
	byFamily := make(map[isopleth.Family][]string)
	for _, req := range def.Requests() {
		byFamily[req.Family] = append(byFamily[req.Family], strconv.FormatFloat(req.Level, 'g', -1, 64))
	}
	for _, f := range isopleth.Families() {
		vals := byFamily[f]
		if len(vals) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%-14s %-5s %3d  %s\n", f, f.Unit(), len(vals), strings.Join(vals, " ")); err != nil {
			return err
		}
	}
	return nil
}
