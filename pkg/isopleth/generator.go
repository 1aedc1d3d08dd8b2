package isopleth

import (
	"github.com/matzehuels/tephi/pkg/errors"
	"github.com/matzehuels/tephi/pkg/projection"
	"github.com/matzehuels/tephi/pkg/thermo"
)

// Default sampling parameters.
const (
	DefaultSamples        = 1000
	DefaultMoistSteps     = 1000
	DefaultMoistStep      = 1.0    // hPa
	DefaultAnchorPressure = 1000.0 // hPa
)

// Upper bounds on sampling. Every isopleth allocates up to this many states.
const (
	MaxSamples    = 100000
	MaxMoistSteps = 100000
)

// Options controls sampling resolution. Zero fields take the defaults.
type Options struct {
	// Samples is the number of points on sampled (non-integrated) lines.
	Samples int `json:"samples,omitempty" toml:"samples"`

	// MoistSteps is the number of Euler steps taken in each direction
	// from the moist adiabat anchor.
	MoistSteps int `json:"moist_steps,omitempty" toml:"moist_steps"`

	// MoistStep is the pressure increment of one Euler step, hPa.
	MoistStep float64 `json:"moist_step,omitempty" toml:"moist_step"`

	// AnchorPressure is the pressure at which a moist adiabat's level
	// temperature is attained, hPa.
	AnchorPressure float64 `json:"anchor_pressure,omitempty" toml:"anchor_pressure"`
}

// SetDefaults fills zero fields with package defaults.
func (o *Options) SetDefaults() {
	if o.Samples == 0 {
		o.Samples = DefaultSamples
	}
	if o.MoistSteps == 0 {
		o.MoistSteps = DefaultMoistSteps
	}
	if o.MoistStep == 0 {
		o.MoistStep = DefaultMoistStep
	}
	if o.AnchorPressure == 0 {
		o.AnchorPressure = DefaultAnchorPressure
	}
}

// Validate checks option values. It does not apply defaults.
func (o Options) Validate() error {
	if o.Samples < 2 {
		return errors.New(errors.ErrCodeInvalidInput, "samples must be at least 2, got %d", o.Samples)
	}
	if o.Samples > MaxSamples {
		return errors.New(errors.ErrCodeInvalidInput, "samples must be at most %d, got %d", MaxSamples, o.Samples)
	}
	if o.MoistSteps < 0 || o.MoistSteps > MaxMoistSteps {
		return errors.New(errors.ErrCodeInvalidInput, "moist steps must be in [0, %d], got %d", MaxMoistSteps, o.MoistSteps)
	}
	if err := errors.ValidatePositive(errors.ErrCodeInvalidInput, "moist step", o.MoistStep); err != nil {
		return err
	}
	return errors.ValidatePositive(errors.ErrCodeInvalidInput, "anchor pressure", o.AnchorPressure)
}

// Request asks for one isopleth.
type Request struct {
	Family Family  `json:"family" toml:"family"`
	Level  float64 `json:"level" toml:"level"`
}

// Isopleth is a sampled chart line in physical space.
type Isopleth struct {
	Family Family         `json:"family"`
	Level  float64        `json:"level"`
	Points []thermo.State `json:"points"`

	// Conflicts counts moist adiabat steps where, after a pressure clamp
	// re-derived the temperature increment, the temperature still left the
	// domain. The affected points are pinned to the temperature bound.
	Conflicts int `json:"conflicts,omitempty"`
}

// Len returns the number of points.
func (iso Isopleth) Len() int { return len(iso.Points) }

// Empty reports whether the line was truncated away entirely.
func (iso Isopleth) Empty() bool { return len(iso.Points) == 0 }

// Project maps the points of iso into display space with p.
func (iso Isopleth) Project(p projection.Projection) []projection.Point {
	return projection.ForwardAll(p, iso.Points)
}

// Generator samples isopleths inside a fixed domain.
//
// A Generator holds no mutable state; every method is safe for concurrent
// use and returns freshly allocated points.
type Generator struct {
	domain Domain
	opts   Options
}

// NewGenerator validates domain and opts and returns a generator.
func NewGenerator(domain Domain, opts Options) (*Generator, error) {
	if err := domain.Validate(); err != nil {
		return nil, err
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Generator{domain: domain, opts: opts}, nil
}

// Domain returns the generator's domain.
func (g *Generator) Domain() Domain { return g.domain }

// Options returns the generator's options with defaults applied.
func (g *Generator) Options() Options { return g.opts }

// Generate dispatches req to the sampler of its family.
func (g *Generator) Generate(req Request) (Isopleth, error) {
	switch req.Family {
	case Isotherm:
		return g.Isotherm(req.Level)
	case Isentrope:
		return g.Isentrope(req.Level)
	case MoistAdiabat:
		return g.MoistAdiabat(req.Level)
	case Isobar:
		return g.Isobar(req.Level)
	case MixingRatio:
		return g.MixingRatio(req.Level)
	default:
		return Isopleth{}, errors.New(errors.ErrCodeInvalidFamily, "invalid isopleth family %d", int(req.Family))
	}
}

// GenerateAll generates every request in order. It stops at the first
// precondition error.
func (g *Generator) GenerateAll(reqs []Request) ([]Isopleth, error) {
	out := make([]Isopleth, 0, len(reqs))
	for _, req := range reqs {
		iso, err := g.Generate(req)
		if err != nil {
			return nil, err
		}
		out = append(out, iso)
	}
	return out, nil
}

// Isotherm samples the line of constant temperature t (°C) from the lowest
// to the highest pressure. A level outside the domain yields no points.
func (g *Generator) Isotherm(t float64) (Isopleth, error) {
	if err := checkTemperatureLevel(t); err != nil {
		return Isopleth{}, err
	}
	iso := Isopleth{Family: Isotherm, Level: t}
	d := g.domain
	if t < d.MinTemperature || t > d.MaxTemperature {
		return iso, nil
	}
	pressures := linspace(d.MinPressure, d.MaxPressure, g.opts.Samples)
	iso.Points = make([]thermo.State, len(pressures))
	for i, p := range pressures {
		iso.Points[i] = thermo.State{Pressure: p, Temperature: t}
	}
	return iso, nil
}

// Isobar samples the line of constant pressure p (hPa) from the lowest to
// the highest temperature. A level outside the domain yields no points.
func (g *Generator) Isobar(p float64) (Isopleth, error) {
	if err := errors.ValidatePositive(errors.ErrCodeInvalidLevel, "isobar pressure", p); err != nil {
		return Isopleth{}, err
	}
	iso := Isopleth{Family: Isobar, Level: p}
	d := g.domain
	if p < d.MinPressure || p > d.MaxPressure {
		return iso, nil
	}
	temps := linspace(d.MinTemperature, d.MaxTemperature, g.opts.Samples)
	iso.Points = make([]thermo.State, len(temps))
	for i, t := range temps {
		iso.Points[i] = thermo.State{Pressure: p, Temperature: t}
	}
	return iso, nil
}

// Isentrope samples the dry adiabat of potential temperature theta (°C).
//
// The temperature range is narrowed to where the line stays inside the
// domain at both pressure extremes; pressure is then solved per point from
// the Poisson relation. Points run from cold (low pressure) to warm.
func (g *Generator) Isentrope(theta float64) (Isopleth, error) {
	if err := checkTemperatureLevel(theta); err != nil {
		return Isopleth{}, err
	}
	iso := Isopleth{Family: Isentrope, Level: theta}
	d := g.domain

	lo, hi := d.MinTemperature, d.MaxTemperature
	atMinP, atMaxP := false, false
	if t := thermo.PotentialTemperatureToTemperature(d.MinPressure, theta); t > lo {
		lo, atMinP = t, true
	}
	if t := thermo.PotentialTemperatureToTemperature(d.MaxPressure, theta); t < hi {
		hi, atMaxP = t, true
	}
	if lo >= hi {
		return iso, nil
	}

	temps := linspace(lo, hi, g.opts.Samples)
	iso.Points = make([]thermo.State, len(temps))
	for i, t := range temps {
		p := thermo.PressureFromPotentialTemperature(t, theta)
		iso.Points[i] = thermo.State{Pressure: d.clampPressure(p), Temperature: t}
	}
	// Ends cut by a pressure bound sit on that bound exactly.
	if atMinP {
		iso.Points[0].Pressure = d.MinPressure
	}
	if atMaxP {
		iso.Points[len(temps)-1].Pressure = d.MaxPressure
	}
	return iso, nil
}

// MixingRatio samples the saturation mixing ratio line of r g/kg from the
// lowest to the highest pressure. Points whose temperature falls outside
// the domain are dropped, so the line may be shorter than the sample count
// or empty.
func (g *Generator) MixingRatio(r float64) (Isopleth, error) {
	if err := errors.ValidatePositive(errors.ErrCodeInvalidLevel, "mixing ratio", r); err != nil {
		return Isopleth{}, err
	}
	iso := Isopleth{Family: MixingRatio, Level: r}
	d := g.domain
	kgkg := r / 1000

	for _, p := range linspace(d.MinPressure, d.MaxPressure, g.opts.Samples) {
		t := thermo.TemperatureFromMixingRatio(p, kgkg)
		if t < d.MinTemperature || t > d.MaxTemperature {
			continue
		}
		iso.Points = append(iso.Points, thermo.State{Pressure: p, Temperature: t})
	}
	return iso, nil
}

func checkTemperatureLevel(t float64) error {
	if err := errors.ValidateFinite(errors.ErrCodeInvalidLevel, "level", t); err != nil {
		return err
	}
	if t <= -thermo.Kelvin {
		return errors.New(errors.ErrCodeInvalidLevel, "level %g °C is at or below absolute zero", t)
	}
	return nil
}

// linspace returns n evenly spaced values from lo to hi inclusive. The
// endpoints are exact.
func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
