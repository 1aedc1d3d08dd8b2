package projection

import (
	"math"

	"github.com/matzehuels/tephi/pkg/errors"
	"github.com/matzehuels/tephi/pkg/thermo"
)

// entropyAxes maps (p, T) to (T_K, scale·ln θ_K). Isotherms and isentropes
// become the two families of a rectangular grid.
type entropyAxes struct {
	ref   float64
	scale float64
}

func (a entropyAxes) toAxes(s thermo.State) (float64, float64) {
	tK := s.Temperature + thermo.Kelvin
	thetaK := tK * math.Pow(a.ref/s.Pressure, thermo.Kappa)
	return tK, a.scale * math.Log(thetaK)
}

func (a entropyAxes) fromAxes(u, v float64) thermo.State {
	thetaK := math.Exp(v / a.scale)
	p := a.ref * math.Pow(u/thetaK, 1/thermo.Kappa)
	return thermo.State{Pressure: p, Temperature: u - thermo.Kelvin}
}

// NewTephigram returns a tephigram projection: temperature against
// entropy (log potential temperature), rotated by angleDeg so that isobars
// run roughly horizontally. entropyScale stretches the entropy axis to a
// size comparable with the temperature axis.
func NewTephigram(angleDeg, refPressure, entropyScale float64) (*Skewed, error) {
	if !finite(angleDeg) {
		return nil, errors.New(errors.ErrCodeInvalidProjection, "angle must be finite, got %v", angleDeg)
	}
	if err := validateReference(NameTephigram, refPressure); err != nil {
		return nil, err
	}
	if err := errors.ValidatePositive(errors.ErrCodeInvalidProjection, "entropy scale", entropyScale); err != nil {
		return nil, err
	}
	axes := entropyAxes{ref: refPressure, scale: entropyScale}
	return newSkewed(NameTephigram, axes, Rotate(angleDeg))
}
