package isopleth

import (
	"strings"

	"github.com/matzehuels/tephi/pkg/errors"
)

// Family identifies a kind of chart line. The set is closed.
type Family int

// Isopleth families. The meaning of a line's level depends on its family.
const (
	Isotherm     Family = iota + 1 // level: temperature, °C
	Isentrope                      // level: potential temperature, °C
	MoistAdiabat                   // level: temperature at the anchor pressure, °C
	Isobar                         // level: pressure, hPa
	MixingRatio                    // level: saturation mixing ratio, g/kg
)

var familyNames = map[Family]string{
	Isotherm:     "isotherm",
	Isentrope:    "isentrope",
	MoistAdiabat: "moist-adiabat",
	Isobar:       "isobar",
	MixingRatio:  "mixing-ratio",
}

var familyAliases = map[string]Family{
	"isotherm":      Isotherm,
	"isotherms":     Isotherm,
	"isentrope":     Isentrope,
	"isentropes":    Isentrope,
	"dry-adiabat":   Isentrope,
	"moist-adiabat": MoistAdiabat,
	"moist":         MoistAdiabat,
	"pseudo":        MoistAdiabat,
	"isobar":        Isobar,
	"isobars":       Isobar,
	"mixing-ratio":  MixingRatio,
	"mixing":        MixingRatio,
}

// Families returns all families in drawing order.
func Families() []Family {
	return []Family{Isotherm, Isentrope, MoistAdiabat, Isobar, MixingRatio}
}

// String returns the canonical name of f.
func (f Family) String() string {
	if s, ok := familyNames[f]; ok {
		return s
	}
	return "unknown"
}

// Valid reports whether f is one of the defined families.
func (f Family) Valid() bool {
	_, ok := familyNames[f]
	return ok
}

// Unit returns the unit of the level value for f.
func (f Family) Unit() string {
	switch f {
	case Isobar:
		return "hPa"
	case MixingRatio:
		return "g/kg"
	default:
		return "°C"
	}
}

// ParseFamily parses a family name. Plural forms and a few common synonyms
// are accepted.
func ParseFamily(s string) (Family, error) {
	if f, ok := familyAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidFamily, "unknown isopleth family %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidFamily, "invalid isopleth family %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Family) UnmarshalText(b []byte) error {
	v, err := ParseFamily(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
