// Package thermo provides the closed-form thermodynamic relations used to
// draw the lines of a thermodynamic chart.
//
// Every function is a pure computation on float64 values. Pressures are in
// hPa and temperatures in degrees Celsius at the API boundary; conversion to
// Kelvin happens inside each function. Physical constants live in
// constants.go and are shared by every other package in this module.
//
// # Relations
//
//   - [SaturationVaporPressure]: Clausius-Clapeyron over water
//   - [SaturationMixingRatio]: mass ratio of vapour to dry air at saturation
//   - [TemperatureFromMixingRatio]: exact inverse of the two relations above
//   - [PotentialTemperatureToTemperature], [TemperatureToPotentialTemperature]:
//     the Poisson equation in both directions
//   - [PressureFromPotentialTemperature]: Poisson solved for pressure
//   - [MoistAdiabatSlope]: pseudo-adiabatic lapse rate dT/dp
//
// # Preconditions
//
// The relations do not guard their inputs. Non-physical values such as a
// non-positive pressure or a temperature at or below absolute zero produce
// NaN or Inf rather than an error. Callers validate with [State.Validate] or
// [CheckKelvin] before sampling:
//
//	s := thermo.State{Pressure: 850, Temperature: 12}
//	if err := s.Validate(); err != nil {
//	    return err
//	}
//	theta := thermo.TemperatureToPotentialTemperature(s.Pressure, s.Temperature)
package thermo
