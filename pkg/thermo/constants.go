package thermo

// Physical constants. Values match the ones used on operational tephigrams.
const (
	// Kelvin is 0 °C expressed in Kelvin.
	Kelvin = 273.15

	// Rd is the specific gas constant of dry air, J/(kg·K).
	Rd = 287.04

	// Rv is the specific gas constant of water vapour, J/(kg·K).
	Rv = 461.5

	// Cp is the specific heat of dry air at constant pressure, J/(kg·K).
	Cp = 1005.7

	// L is the latent heat of vaporisation, J/kg.
	L = 2.501e6

	// E0 is the saturation vapour pressure at T0, hPa.
	E0 = 6.112

	// T0 is the reference temperature of the Clausius-Clapeyron relation, K.
	T0 = 273.15

	// P0 is the reference pressure of potential temperature, hPa.
	P0 = 1000.0

	// Epsilon is Rd/Rv.
	Epsilon = Rd / Rv

	// Kappa is Rd/Cp, the Poisson exponent.
	Kappa = Rd / Cp
)
