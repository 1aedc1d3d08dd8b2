package projection

import (
	"math"

	"golang.org/x/image/math/f64"
)

// singularEpsilon is the smallest determinant treated as invertible.
const singularEpsilon = 1e-12

// Identity returns the identity transform.
func Identity() f64.Aff3 {
	return f64.Aff3{
		1, 0, 0,
		0, 1, 0,
	}
}

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float64) f64.Aff3 {
	return f64.Aff3{
		1, 0, tx,
		0, 1, ty,
	}
}

// Scale returns a scaling by (sx, sy).
func Scale(sx, sy float64) f64.Aff3 {
	return f64.Aff3{
		sx, 0, 0,
		0, sy, 0,
	}
}

// Skew returns a horizontal shear: x' = x + k·y.
func Skew(k float64) f64.Aff3 {
	return f64.Aff3{
		1, k, 0,
		0, 1, 0,
	}
}

// Rotate returns a counter-clockwise rotation by deg degrees.
func Rotate(deg float64) f64.Aff3 {
	s, c := math.Sincos(deg * math.Pi / 180)
	return f64.Aff3{
		c, -s, 0,
		s, c, 0,
	}
}

// Mul returns the product a·b. Applying the result is the same as applying
// b first and then a.
func Mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

// Invert returns the inverse of m. The second result is false when m is
// singular or not finite.
func Invert(m f64.Aff3) (f64.Aff3, bool) {
	det := m[0]*m[4] - m[1]*m[3]
	if math.IsNaN(det) || math.IsInf(det, 0) || math.Abs(det) < singularEpsilon {
		return f64.Aff3{}, false
	}
	inv := 1 / det
	return f64.Aff3{
		m[4] * inv,
		-m[1] * inv,
		(m[1]*m[5] - m[4]*m[2]) * inv,
		-m[3] * inv,
		m[0] * inv,
		(m[3]*m[2] - m[0]*m[5]) * inv,
	}, true
}

// Apply transforms the point (x, y) by m.
func Apply(m f64.Aff3, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}
