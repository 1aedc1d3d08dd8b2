package isopleth

import (
	"github.com/matzehuels/tephi/pkg/errors"
	"github.com/matzehuels/tephi/pkg/thermo"
)

// Domain is the rectangle of physical space a chart covers.
type Domain struct {
	MinPressure    float64 `json:"min_pressure" toml:"min_pressure" bson:"min_pressure"`
	MaxPressure    float64 `json:"max_pressure" toml:"max_pressure" bson:"max_pressure"`
	MinTemperature float64 `json:"min_temperature" toml:"min_temperature" bson:"min_temperature"`
	MaxTemperature float64 `json:"max_temperature" toml:"max_temperature" bson:"max_temperature"`
}

// DefaultDomain returns the domain of a standard tephigram: 50 to 1050 hPa
// and -90 to 70 °C.
func DefaultDomain() Domain {
	return Domain{MinPressure: 50, MaxPressure: 1050, MinTemperature: -90, MaxTemperature: 70}
}

// NewDomain returns a validated domain.
func NewDomain(minP, maxP, minT, maxT float64) (Domain, error) {
	d := Domain{MinPressure: minP, MaxPressure: maxP, MinTemperature: minT, MaxTemperature: maxT}
	if err := d.Validate(); err != nil {
		return Domain{}, err
	}
	return d, nil
}

// Validate checks that both axes are ordered and physically meaningful.
func (d Domain) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"min pressure", d.MinPressure},
		{"max pressure", d.MaxPressure},
		{"min temperature", d.MinTemperature},
		{"max temperature", d.MaxTemperature},
	} {
		if err := errors.ValidateFinite(errors.ErrCodeInvalidDomain, f.name, f.v); err != nil {
			return err
		}
	}
	if d.MinPressure <= 0 {
		return errors.New(errors.ErrCodeInvalidDomain, "min pressure must be > 0, got %g", d.MinPressure)
	}
	if d.MinPressure >= d.MaxPressure {
		return errors.New(errors.ErrCodeInvalidDomain, "min pressure %g must be below max pressure %g", d.MinPressure, d.MaxPressure)
	}
	if d.MinTemperature <= -thermo.Kelvin {
		return errors.New(errors.ErrCodeInvalidDomain, "min temperature %g is at or below absolute zero", d.MinTemperature)
	}
	if d.MinTemperature >= d.MaxTemperature {
		return errors.New(errors.ErrCodeInvalidDomain, "min temperature %g must be below max temperature %g", d.MinTemperature, d.MaxTemperature)
	}
	return nil
}

// Contains reports whether s lies inside d, bounds included.
func (d Domain) Contains(s thermo.State) bool {
	return s.Pressure >= d.MinPressure && s.Pressure <= d.MaxPressure &&
		s.Temperature >= d.MinTemperature && s.Temperature <= d.MaxTemperature
}

func (d Domain) clampPressure(p float64) float64 {
	return min(max(p, d.MinPressure), d.MaxPressure)
}

func (d Domain) clampTemperature(t float64) float64 {
	return min(max(t, d.MinTemperature), d.MaxTemperature)
}
