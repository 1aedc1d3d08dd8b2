// Package projection converts between physical chart space (pressure,
// temperature) and display space.
//
// Every projection in this package is a [Skewed] value: a nonlinear axis map
// that straightens one pair of isopleth families, followed by a single
// affine matrix ([golang.org/x/image/math/f64.Aff3]). The inverse applies the
// inverted matrix and then the inverse axis map, so both directions are
// exact up to floating point rounding.
//
// # Variants
//
//   - [NewSkewLogP]: temperature against log-pressure, sheared by a skew
//     factor. Skew zero is the emagram.
//   - [NewTephigram]: temperature against entropy, rotated so that isobars
//     run roughly horizontally.
//
// Use [ByName] to build either one from a name and [Params]:
//
//	p, err := projection.ByName("tephigram", projection.Params{})
//	pt := p.Forward(thermo.State{Pressure: 850, Temperature: 10})
//	back := p.Inverse(pt) // ≈ {850, 10}
//
// [Compose] appends a downstream affine, typically a scale and translation
// into pixel space. It fails with INVALID_TRANSFORM when the matrix cannot
// be inverted.
package projection
