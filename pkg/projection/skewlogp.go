package projection

import (
	"math"

	"github.com/matzehuels/tephi/pkg/errors"
	"github.com/matzehuels/tephi/pkg/thermo"
)

// logPressureAxes maps (p, T) to (T, ln(ref/p)). Isobars become horizontal
// lines and isotherms vertical ones.
type logPressureAxes struct {
	ref float64
}

func (a logPressureAxes) toAxes(s thermo.State) (float64, float64) {
	return s.Temperature, math.Log(a.ref / s.Pressure)
}

func (a logPressureAxes) fromAxes(u, v float64) thermo.State {
	return thermo.State{Pressure: a.ref * math.Exp(-v), Temperature: u}
}

// NewSkewLogP returns a skew-T/log-p projection. Display coordinates are
//
//	x = T + skew·ln(ref/p)
//	y = ln(ref/p)
//
// so isotherms lean to the right by skew degrees per e-fold of pressure.
// A skew of zero gives the plain emagram.
func NewSkewLogP(skew, refPressure float64) (*Skewed, error) {
	if !finite(skew) {
		return nil, errors.New(errors.ErrCodeInvalidProjection, "skew must be finite, got %v", skew)
	}
	if err := validateReference(NameSkewLogP, refPressure); err != nil {
		return nil, err
	}
	name := NameSkewLogP
	if skew == 0 {
		name = NameEmagram
	}
	return newSkewed(name, logPressureAxes{ref: refPressure}, Skew(skew))
}
