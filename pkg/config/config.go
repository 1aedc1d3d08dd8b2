// Package config defines chart definitions: which projection to use, the
// domain, sampling resolution and the level values of every isopleth family.
//
// Definitions are written in TOML by hand and sent as JSON to the API; both
// decode into the same [Chart]. Zero values take the defaults of a standard
// tephigram, so an empty file is a valid definition.
//
//	projection = "skew-logp"
//
//	[params]
//	skew = 35
//
//	[domain]
//	min_pressure = 100
//	max_pressure = 1050
//	min_temperature = -60
//	max_temperature = 50
//
//	[levels.isotherms]
//	start = -60
//	stop = 50
//	step = 10
//
//	[levels.mixing_ratios]
//	values = [1, 2, 4, 8, 16]
package config

import (
	"encoding/json"
	"io"
	"math"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tephi/pkg/errors"
	"github.com/matzehuels/tephi/pkg/isopleth"
	"github.com/matzehuels/tephi/pkg/projection"
)

// MaxLevelsPerFamily bounds the size of one level set.
const MaxLevelsPerFamily = 2000

// DefaultMixingRatios are the saturation mixing ratio lines (g/kg) of a
// standard tephigram.
var DefaultMixingRatios = []float64{
	0.1, 0.15, 0.2, 0.3, 0.4, 0.5, 0.6, 0.8, 1, 1.5, 2, 2.5, 3, 4, 5, 6, 7, 8, 9, 10,
	12, 14, 16, 18, 20, 24, 28, 32, 36, 40, 44, 48, 52, 56, 60, 68, 80,
}

// Chart is a chart definition.
type Chart struct {
	Projection string            `json:"projection,omitempty" toml:"projection"`
	Params     projection.Params `json:"params" toml:"params"`
	Domain     isopleth.Domain   `json:"domain" toml:"domain"`
	Sampling   isopleth.Options  `json:"sampling" toml:"sampling"`
	Levels     Levels            `json:"levels" toml:"levels"`
}

// Levels holds one level set per family. A nil set means the family is
// not drawn; use [Default] for the standard sets.
type Levels struct {
	Isotherms     *LevelSet `json:"isotherms,omitempty" toml:"isotherms,omitempty"`
	Isentropes    *LevelSet `json:"isentropes,omitempty" toml:"isentropes,omitempty"`
	MoistAdiabats *LevelSet `json:"moist_adiabats,omitempty" toml:"moist_adiabats,omitempty"`
	Isobars       *LevelSet `json:"isobars,omitempty" toml:"isobars,omitempty"`
	MixingRatios  *LevelSet `json:"mixing_ratios,omitempty" toml:"mixing_ratios,omitempty"`
}

// LevelSet lists level values explicitly or as an inclusive range.
// Values wins when both are given.
type LevelSet struct {
	Start  float64   `json:"start,omitempty" toml:"start,omitempty"`
	Stop   float64   `json:"stop,omitempty" toml:"stop,omitempty"`
	Step   float64   `json:"step,omitempty" toml:"step,omitempty"`
	Values []float64 `json:"values,omitempty" toml:"values,omitempty"`
}

// Range returns a level set from start to stop inclusive.
func Range(start, stop, step float64) *LevelSet {
	return &LevelSet{Start: start, Stop: stop, Step: step}
}

// List returns a level set with explicit values.
func List(values ...float64) *LevelSet {
	return &LevelSet{Values: values}
}

// Default returns the definition of a standard tephigram.
func Default() Chart {
	c := Chart{
		Levels: Levels{
			Isotherms:     Range(-90, 70, 10),
			Isentropes:    Range(-90, 250, 10),
			MoistAdiabats: Range(-40, 60, 10),
			Isobars:       Range(50, 1050, 50),
			MixingRatios:  List(DefaultMixingRatios...),
		},
	}
	c.SetDefaults()
	return c
}

// Expand returns the level values of s. Ranges accumulate by index so
// rounding does not drift, and include stop when it lies on the grid.
func (s *LevelSet) Expand() []float64 {
	if s == nil {
		return nil
	}
	if len(s.Values) > 0 {
		return append([]float64(nil), s.Values...)
	}
	if s.Step <= 0 || s.Stop < s.Start {
		return nil
	}
	n := int(math.Floor((s.Stop-s.Start)/s.Step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = s.Start + float64(i)*s.Step
	}
	return out
}

func (s *LevelSet) validate(name string) error {
	if s == nil {
		return nil
	}
	for _, v := range s.Values {
		if err := errors.ValidateFinite(errors.ErrCodeInvalidLevel, name+" level", v); err != nil {
			return err
		}
	}
	if len(s.Values) > 0 {
		if len(s.Values) > MaxLevelsPerFamily {
			return errors.New(errors.ErrCodeInvalidLevel, "%s: too many levels (max %d)", name, MaxLevelsPerFamily)
		}
		return nil
	}
	for _, f := range []struct {
		field string
		v     float64
	}{{"start", s.Start}, {"stop", s.Stop}, {"step", s.Step}} {
		if err := errors.ValidateFinite(errors.ErrCodeInvalidLevel, name+" "+f.field, f.v); err != nil {
			return err
		}
	}
	if s.Step <= 0 {
		return errors.New(errors.ErrCodeInvalidLevel, "%s: step must be > 0, got %g", name, s.Step)
	}
	if s.Stop < s.Start {
		return errors.New(errors.ErrCodeInvalidLevel, "%s: stop %g is below start %g", name, s.Stop, s.Start)
	}
	if (s.Stop-s.Start)/s.Step >= MaxLevelsPerFamily {
		return errors.New(errors.ErrCodeInvalidLevel, "%s: too many levels (max %d)", name, MaxLevelsPerFamily)
	}
	return nil
}

// sets pairs each family with its level set, in drawing order.
func (l Levels) sets() []struct {
	family isopleth.Family
	name   string
	set    *LevelSet
} {
	return []struct {
		family isopleth.Family
		name   string
		set    *LevelSet
	}{
		{isopleth.Isotherm, "isotherms", l.Isotherms},
		{isopleth.Isentrope, "isentropes", l.Isentropes},
		{isopleth.MoistAdiabat, "moist_adiabats", l.MoistAdiabats},
		{isopleth.Isobar, "isobars", l.Isobars},
		{isopleth.MixingRatio, "mixing_ratios", l.MixingRatios},
	}
}

// SetDefaults fills zero fields with defaults.
func (c *Chart) SetDefaults() {
	if c.Projection == "" {
		c.Projection = projection.NameTephigram
	}
	if c.Domain == (isopleth.Domain{}) {
		c.Domain = isopleth.DefaultDomain()
	}
	c.Sampling.SetDefaults()
}

// Validate checks the definition. Call SetDefaults first.
func (c *Chart) Validate() error {
	name, err := projection.Canonical(c.Projection)
	if err != nil {
		return err
	}
	c.Projection = name
	if err := c.Domain.Validate(); err != nil {
		return err
	}
	if err := c.Sampling.Validate(); err != nil {
		return err
	}
	for _, s := range c.Levels.sets() {
		if err := s.set.validate(s.name); err != nil {
			return err
		}
	}
	return nil
}

// Requests expands the level sets into generator requests, family by
// family in drawing order.
func (c *Chart) Requests() []isopleth.Request {
	var out []isopleth.Request
	for _, s := range c.Levels.sets() {
		for _, v := range s.set.Expand() {
			out = append(out, isopleth.Request{Family: s.family, Level: v})
		}
	}
	return out
}

// Spec returns the canonical JSON encoding of c, used as a cache key input.
func (c *Chart) Spec() []byte {
	data, _ := json.Marshal(c)
	return data
}

// Parse decodes a TOML definition, applies defaults and validates it.
// Unknown keys are rejected.
func Parse(data string) (Chart, error) {
	var c Chart
	md, err := toml.Decode(data, &c)
	if err != nil {
		return Chart{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode chart definition")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Chart{}, errors.New(errors.ErrCodeInvalidFormat, "unknown keys in chart definition: %s", strings.Join(keys, ", "))
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return Chart{}, err
	}
	return c, nil
}

// DecodeJSON decodes a JSON definition, applies defaults and validates it.
// Unknown fields are rejected.
func DecodeJSON(r io.Reader) (Chart, error) {
	var c Chart
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return Chart{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode chart definition")
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return Chart{}, err
	}
	return c, nil
}

// Load reads a TOML definition from disk.
func Load(path string) (Chart, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Chart{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "chart definition %s", path)
	}
	if err != nil {
		return Chart{}, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return Parse(string(data))
}

// Encode writes c as TOML.
func (c Chart) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
