package projection

import (
	"sort"
	"strings"

	"github.com/matzehuels/tephi/pkg/errors"
	"github.com/matzehuels/tephi/pkg/thermo"
)

// Projection names.
const (
	NameSkewLogP  = "skew-logp"
	NameEmagram   = "emagram"
	NameTephigram = "tephigram"
)

// Defaults used when the matching Params field is zero.
const (
	DefaultSkew         = 35.0
	DefaultAngle        = 45.0
	DefaultEntropyScale = 300.0
	DefaultRefPressure  = thermo.P0
)

// aliases maps accepted spellings to canonical names.
var aliases = map[string]string{
	NameSkewLogP:  NameSkewLogP,
	"skewt":       NameSkewLogP,
	"skew-t":      NameSkewLogP,
	NameEmagram:   NameEmagram,
	NameTephigram: NameTephigram,
	"tephi":       NameTephigram,
}

// Params carries projection parameters from config files and API requests.
// Zero fields take the package defaults.
type Params struct {
	Skew         float64 `json:"skew,omitempty" toml:"skew" bson:"skew,omitempty"`
	Angle        float64 `json:"angle,omitempty" toml:"angle" bson:"angle,omitempty"`
	RefPressure  float64 `json:"ref_pressure,omitempty" toml:"ref_pressure" bson:"ref_pressure,omitempty"`
	EntropyScale float64 `json:"entropy_scale,omitempty" toml:"entropy_scale" bson:"entropy_scale,omitempty"`
}

// WithDefaults returns a copy of p with zero fields replaced by defaults.
func (p Params) WithDefaults() Params {
	if p.Skew == 0 {
		p.Skew = DefaultSkew
	}
	if p.Angle == 0 {
		p.Angle = DefaultAngle
	}
	if p.RefPressure == 0 {
		p.RefPressure = DefaultRefPressure
	}
	if p.EntropyScale == 0 {
		p.EntropyScale = DefaultEntropyScale
	}
	return p
}

// Canonical returns the canonical spelling of a projection name.
func Canonical(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if err := errors.ValidateName(errors.ErrCodeInvalidProjection, key); err != nil {
		return "", err
	}
	c, ok := aliases[key]
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidProjection, "unknown projection %q (valid: %s)", name, strings.Join(Names(), ", "))
	}
	return c, nil
}

// Names returns the canonical projection names in sorted order.
func Names() []string {
	return []string{NameEmagram, NameSkewLogP, NameTephigram}
}

// ByName builds a projection from its name and parameters.
func ByName(name string, params Params) (*Skewed, error) {
	c, err := Canonical(name)
	if err != nil {
		return nil, err
	}
	p := params.WithDefaults()
	switch c {
	case NameEmagram:
		return NewSkewLogP(0, p.RefPressure)
	case NameSkewLogP:
		return NewSkewLogP(p.Skew, p.RefPressure)
	default:
		return NewTephigram(p.Angle, p.RefPressure, p.EntropyScale)
	}
}

// Aliases returns every accepted projection spelling, sorted.
func Aliases() []string {
	out := make([]string, 0, len(aliases))
	for k := range aliases {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
