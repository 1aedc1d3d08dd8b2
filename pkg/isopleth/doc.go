// Package isopleth samples the reference lines of a thermodynamic chart.
//
// A [Generator] is bound to a [Domain] (pressure and temperature bounds) and
// produces one [Isopleth] per [Request]. Each family has its own sampler:
//
//   - [Isotherm]: constant temperature, pressure swept over the domain
//   - [Isobar]: constant pressure, temperature swept over the domain
//   - [Isentrope]: dry adiabat, temperature swept over the part of the
//     domain the line actually crosses, pressure solved per point
//   - [MixingRatio]: saturation mixing ratio, pressure swept, temperature
//     solved per point, points outside the domain dropped
//   - [MoistAdiabat]: pseudo-adiabat integrated with Euler steps in both
//     directions from an anchor, clamped to the domain walls
//
// Every returned point lies inside the domain. An isopleth with no points is
// a valid result, not an error: it means the line does not cross the chart.
//
// # Errors
//
// Invalid domains, options and levels are rejected before any sampling
// with INVALID_DOMAIN, INVALID_INPUT, INVALID_LEVEL or INVALID_FAMILY. The
// samplers themselves never fail and never log.
//
// # Usage
//
//	g, err := isopleth.NewGenerator(isopleth.DefaultDomain(), isopleth.Options{})
//	if err != nil {
//	    return err
//	}
//	iso, err := g.Generate(isopleth.Request{Family: isopleth.MoistAdiabat, Level: 20})
//	pts := iso.Project(tephigram)
package isopleth
