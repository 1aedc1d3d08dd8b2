package isopleth

import (
	"slices"

	"github.com/matzehuels/tephi/pkg/errors"
	"github.com/matzehuels/tephi/pkg/thermo"
)

// MoistAdiabat integrates the pseudo-adiabat that passes through the anchor
// (AnchorPressure, t) with t in °C.
//
// The walk takes MoistSteps Euler steps of MoistStep hPa towards low
// pressure and the same number towards high pressure. A step that would
// leave the domain is shortened to land on the wall, and the shortened
// increment is reused for the following steps, so the line runs along the
// wall instead of ending. The result starts at the high pressure end,
// passes through the anchor once and ends at the low pressure end.
func (g *Generator) MoistAdiabat(t float64) (Isopleth, error) {
	if err := checkTemperatureLevel(t); err != nil {
		return Isopleth{}, err
	}
	anchor := thermo.State{Pressure: g.opts.AnchorPressure, Temperature: t}
	if !g.domain.Contains(anchor) {
		return Isopleth{}, errors.New(errors.ErrCodeInvalidLevel,
			"moist adiabat anchor (%g hPa, %g °C) lies outside the domain", anchor.Pressure, anchor.Temperature)
	}

	up, upConflicts := g.walk(anchor, -g.opts.MoistStep)
	down, downConflicts := g.walk(anchor, g.opts.MoistStep)

	slices.Reverse(down)
	points := make([]thermo.State, 0, len(down)+len(up)-1)
	points = append(points, down...)
	points = append(points, up[1:]...)

	return Isopleth{
		Family:    MoistAdiabat,
		Level:     t,
		Points:    points,
		Conflicts: upConflicts + downConflicts,
	}, nil
}

// walk returns the anchor followed by MoistSteps integrated points, and the
// number of steps whose clamps disagreed.
func (g *Generator) walk(anchor thermo.State, dp float64) ([]thermo.State, int) {
	out := make([]thermo.State, 1, g.opts.MoistSteps+1)
	out[0] = anchor
	conflicts := 0
	s := anchor
	for range g.opts.MoistSteps {
		var conflict bool
		s, dp, conflict = g.step(s, dp)
		if conflict {
			conflicts++
		}
		out = append(out, s)
	}
	return out, conflicts
}

// step advances s by one Euler step of dp hPa and returns the new state
// together with the increment actually taken, which becomes the next dp.
//
// Clamps apply in a fixed order: temperature bounds first (dp re-derived
// from the local slope), then max pressure, then min pressure (dT
// re-derived). A clamped coordinate is set to the bound exactly.
func (g *Generator) step(s thermo.State, dp float64) (thermo.State, float64, bool) {
	d := g.domain
	slope := thermo.MoistAdiabatSlope(s.Pressure, s.Temperature)
	dT := dp * slope
	next := thermo.State{Pressure: s.Pressure + dp, Temperature: s.Temperature + dT}

	switch {
	case next.Temperature < d.MinTemperature:
		dT = d.MinTemperature - s.Temperature
		dp = dT / slope
		next = thermo.State{Pressure: s.Pressure + dp, Temperature: d.MinTemperature}
	case next.Temperature > d.MaxTemperature:
		dT = d.MaxTemperature - s.Temperature
		dp = dT / slope
		next = thermo.State{Pressure: s.Pressure + dp, Temperature: d.MaxTemperature}
	}

	if next.Pressure > d.MaxPressure {
		dp = d.MaxPressure - s.Pressure
		dT = dp * slope
		next = thermo.State{Pressure: d.MaxPressure, Temperature: s.Temperature + dT}
	}
	if next.Pressure < d.MinPressure {
		dp = d.MinPressure - s.Pressure
		dT = dp * slope
		next = thermo.State{Pressure: d.MinPressure, Temperature: s.Temperature + dT}
	}

	conflict := next.Temperature < d.MinTemperature || next.Temperature > d.MaxTemperature
	if conflict {
		next.Temperature = d.clampTemperature(next.Temperature)
	}
	return next, dp, conflict
}
