package projection

import (
	"math"

	"golang.org/x/image/math/f64"

	"github.com/matzehuels/tephi/pkg/errors"
	"github.com/matzehuels/tephi/pkg/thermo"
)

// Point is a position in display space.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Projection maps physical states to display points and back.
//
// Inverse(Forward(s)) reproduces s to within numerical precision for every
// physically valid s. Neither direction validates its input; non-physical
// values yield NaN coordinates.
type Projection interface {
	Name() string
	Forward(s thermo.State) Point
	Inverse(pt Point) thermo.State
}

// axisMap straightens a family of chart lines: it maps a physical state to
// two axes on which the target isopleths are straight, and back.
type axisMap interface {
	toAxes(s thermo.State) (u, v float64)
	fromAxes(u, v float64) thermo.State
}

// Skewed is a projection made of an axis map followed by one affine matrix.
// Both chart variants are Skewed values with different axes and matrices.
//
// A Skewed is immutable after construction and safe for concurrent use.
type Skewed struct {
	name string
	axes axisMap
	m    f64.Aff3
	inv  f64.Aff3
}

func newSkewed(name string, axes axisMap, m f64.Aff3) (*Skewed, error) {
	inv, ok := Invert(m)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidTransform, "%s: transform matrix is singular", name)
	}
	return &Skewed{name: name, axes: axes, m: m, inv: inv}, nil
}

// Name returns the projection name, e.g. "tephigram".
func (p *Skewed) Name() string { return p.name }

// Matrix returns the affine part of the projection.
func (p *Skewed) Matrix() f64.Aff3 { return p.m }

// Forward maps a physical state to display space.
func (p *Skewed) Forward(s thermo.State) Point {
	u, v := p.axes.toAxes(s)
	x, y := Apply(p.m, u, v)
	return Point{X: x, Y: y}
}

// Inverse maps a display point back to a physical state.
func (p *Skewed) Inverse(pt Point) thermo.State {
	u, v := Apply(p.inv, pt.X, pt.Y)
	return p.axes.fromAxes(u, v)
}

// Compose returns a projection that applies m after p, typically to move
// chart coordinates into pixel space. It fails if m is not invertible.
func Compose(p Projection, m f64.Aff3) (Projection, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidTransform, "nil projection")
	}
	if s, ok := p.(*Skewed); ok {
		if _, ok := Invert(m); !ok {
			return nil, errors.New(errors.ErrCodeInvalidTransform, "%s: composed matrix is singular", s.name)
		}
		return newSkewed(s.name, s.axes, Mul(m, s.m))
	}
	inv, ok := Invert(m)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidTransform, "%s: composed matrix is singular", p.Name())
	}
	return &composed{inner: p, m: m, inv: inv}, nil
}

// composed wraps a foreign Projection implementation.
type composed struct {
	inner  Projection
	m, inv f64.Aff3
}

func (c *composed) Name() string { return c.inner.Name() }

func (c *composed) Forward(s thermo.State) Point {
	pt := c.inner.Forward(s)
	x, y := Apply(c.m, pt.X, pt.Y)
	return Point{X: x, Y: y}
}

func (c *composed) Inverse(pt Point) thermo.State {
	x, y := Apply(c.inv, pt.X, pt.Y)
	return c.inner.Inverse(Point{X: x, Y: y})
}

// ForwardAll projects a slice of states. The result has the same length and
// order as states.
func ForwardAll(p Projection, states []thermo.State) []Point {
	out := make([]Point, len(states))
	for i, s := range states {
		out[i] = p.Forward(s)
	}
	return out
}

// InverseAll maps a slice of display points back to physical states.
func InverseAll(p Projection, pts []Point) []thermo.State {
	out := make([]thermo.State, len(pts))
	for i, pt := range pts {
		out[i] = p.Inverse(pt)
	}
	return out
}

// InverseState maps pt back to a physical state. Display points that land
// off the physical plane (NaN, zero pressure, below absolute zero) are an
// INVALID_INPUT error.
func InverseState(p Projection, pt Point) (thermo.State, error) {
	if !finite(pt.X) || !finite(pt.Y) {
		return thermo.State{}, errors.New(errors.ErrCodeInvalidInput, "point (%v, %v) is not finite", pt.X, pt.Y)
	}
	s := p.Inverse(pt)
	if err := s.Validate(); err != nil {
		return thermo.State{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "point (%g, %g) maps to no physical state", pt.X, pt.Y)
	}
	return s, nil
}

func validateReference(name string, refPressure float64) error {
	return errors.ValidatePositive(errors.ErrCodeInvalidProjection, name+" reference pressure", refPressure)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
