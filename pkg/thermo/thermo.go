package thermo

import (
	"math"

	"github.com/matzehuels/tephi/pkg/errors"
)

// State is a point in physical chart space.
type State struct {
	Pressure    float64 `json:"pressure" bson:"pressure"`       // hPa
	Temperature float64 `json:"temperature" bson:"temperature"` // °C
}

// Kelvin returns the temperature of s in Kelvin.
func (s State) Kelvin() float64 { return s.Temperature + Kelvin }

// Validate reports whether s is physically meaningful: finite, with a
// positive pressure and a temperature above absolute zero.
func (s State) Validate() error {
	if err := errors.ValidatePositive(errors.ErrCodeInvalidState, "pressure", s.Pressure); err != nil {
		return err
	}
	if err := errors.ValidateFinite(errors.ErrCodeInvalidState, "temperature", s.Temperature); err != nil {
		return err
	}
	return CheckKelvin(s.Kelvin())
}

// CheckKelvin rejects absolute temperatures at or below zero.
func CheckKelvin(tK float64) error {
	if !(tK > 0) {
		return errors.New(errors.ErrCodeInvalidState, "temperature %g K is at or below absolute zero", tK)
	}
	return nil
}

// SaturationVaporPressure returns the saturation vapour pressure over water
// in hPa for an absolute temperature tK.
func SaturationVaporPressure(tK float64) float64 {
	return E0 * math.Exp(L/Rv*(1/T0-1/tK))
}

// SaturationMixingRatio returns the saturation mixing ratio in kg/kg for a
// vapour pressure es and total pressure p, both in hPa.
func SaturationMixingRatio(es, p float64) float64 {
	return Epsilon * es / p
}

// TemperatureFromMixingRatio returns the temperature in °C at which air at
// pressure p (hPa) saturates with mixing ratio r (kg/kg).
func TemperatureFromMixingRatio(p, r float64) float64 {
	es := r * p / Epsilon
	inv := 1/T0 - Rv/L*math.Log(es/E0)
	return 1/inv - Kelvin
}

// PotentialTemperatureToTemperature returns the temperature in °C of air at
// pressure p (hPa) with potential temperature theta (°C).
func PotentialTemperatureToTemperature(p, theta float64) float64 {
	return (theta+Kelvin)*math.Pow(p/P0, Kappa) - Kelvin
}

// TemperatureToPotentialTemperature returns the potential temperature in °C
// of air at pressure p (hPa) and temperature t (°C).
func TemperatureToPotentialTemperature(p, t float64) float64 {
	return (t+Kelvin)*math.Pow(P0/p, Kappa) - Kelvin
}

// PressureFromPotentialTemperature returns the pressure in hPa at which air
// of potential temperature theta has temperature t, both in °C.
func PressureFromPotentialTemperature(t, theta float64) float64 {
	return P0 * math.Pow((t+Kelvin)/(theta+Kelvin), 1/Kappa)
}

// MoistAdiabatSlope returns dT/dp in °C per hPa along the pseudo-adiabat
// through (p, t). The slope is positive: temperature falls with pressure.
func MoistAdiabatSlope(p, t float64) float64 {
	tK := t + Kelvin
	r := SaturationMixingRatio(SaturationVaporPressure(tK), p)
	lr := L * r / (Rd * tK)
	num := Rd * tK / (Cp * p) * (1 + lr)
	den := 1 + lr*(Epsilon*L/(Cp*tK))
	return num / den
}
