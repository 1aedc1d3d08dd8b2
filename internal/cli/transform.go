package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tephi/pkg/errors"
	"github.com/matzehuels/tephi/pkg/projection"
	"github.com/matzehuels/tephi/pkg/thermo"
)

// transformOpts holds the command-line flags for the transform command.
type transformOpts struct {
	projection   string
	params       projection.Params
	inverse      bool
	pressures    []float64
	temperatures []float64
	xs           []float64
	ys           []float64
}

// transformCommand creates the transform command.
func (c *CLI) transformCommand() *cobra.Command {
	opts := transformOpts{projection: projection.NameTephigram}

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Convert between (pressure, temperature) and chart coordinates",
		Long: `Convert points between thermodynamic state and chart coordinates.

Forward (default) takes pressures in hPa and temperatures in °C:
  tephi transform -p 1000,850,500 -t 15,5,-20

Inverse takes chart coordinates:
  tephi transform --inverse -x 12.5 -y 40.1 --projection skew-t`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.projection, "projection", opts.projection, "projection: tephigram, skew-logp, emagram")
	cmd.Flags().Float64Var(&opts.params.Skew, "skew", 0, "skew-T skew factor (default from projection)")
	cmd.Flags().Float64Var(&opts.params.Angle, "angle", 0, "tephigram rotation in degrees (default from projection)")
	cmd.Flags().Float64Var(&opts.params.RefPressure, "ref-pressure", 0, "reference pressure in hPa (default 1000)")
	cmd.Flags().BoolVar(&opts.inverse, "inverse", false, "map chart coordinates back to (P, T)")
	cmd.Flags().Float64SliceVarP(&opts.pressures, "pressure", "p", nil, "pressures in hPa")
	cmd.Flags().Float64SliceVarP(&opts.temperatures, "temperature", "t", nil, "temperatures in °C")
	cmd.Flags().Float64SliceVarP(&opts.xs, "x", "x", nil, "chart x coordinates (with --inverse)")
	cmd.Flags().Float64SliceVarP(&opts.ys, "y", "y", nil, "chart y coordinates (with --inverse)")

	return cmd
}

// runTransform converts the flag values and writes one row per point.
func runTransform(w io.Writer, opts transformOpts) error {
	proj, err := projection.ByName(opts.projection, opts.params)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRESSURE\tTEMPERATURE\tX\tY")

	if opts.inverse {
		if err := pairCount("x", "y", opts.xs, opts.ys); err != nil {
			return err
		}
		for i := range opts.xs {
			pt := projection.Point{X: opts.xs[i], Y: opts.ys[i]}
			s, err := projection.InverseState(proj, pt)
			if err != nil {
				return err
			}
			writeRow(tw, s.Pressure, s.Temperature, pt.X, pt.Y)
		}
		return tw.Flush()
	}

	if err := pairCount("pressure", "temperature", opts.pressures, opts.temperatures); err != nil {
		return err
	}
	for i := range opts.pressures {
		s := thermo.State{Pressure: opts.pressures[i], Temperature: opts.temperatures[i]}
		if err := s.Validate(); err != nil {
			return err
		}
		pt := proj.Forward(s)
		writeRow(tw, s.Pressure, s.Temperature, pt.X, pt.Y)
	}
	return tw.Flush()
}

func pairCount(a, b string, as, bs []float64) error {
	if len(as) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no %s values given", a)
	}
	if len(as) != len(bs) {
		return errors.New(errors.ErrCodeInvalidInput, "%d %s values but %d %s values", len(as), a, len(bs), b)
	}
	return nil
}

func writeRow(w io.Writer, vals ...float64) {
	for i, v := range vals {
		sep := "\t"
		if i == len(vals)-1 {
			sep = "\n"
		}
		fmt.Fprint(w, strconv.FormatFloat(v, 'f', 4, 64)+sep)
	}
}
