// Package geom holds the 2D primitives shared by the tracer, the sweep-line
// intersection engine, the analyzer and the extrusion engine.
//
// Coordinates are screen space: x grows to the right, y grows down the page.
package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	// Epsilon is the distance below which two boundary points are merged.
	Epsilon = 1e-3

	// Tolerance is the numeric tolerance for parametric and cross-product tests.
	Tolerance = 1e-9
)

// Near reports whether a and b are closer than eps in both coordinates.
func Near(a, b v2.Vec, eps float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, eps) && scalar.EqualWithinAbs(a.Y, b.Y, eps)
}

// Exceeds reports whether a is larger than b by more than eps. Sampled
// extents carry rounding noise, so sizes are never compared directly.
func Exceeds(a, b, eps float64) bool {
	return a > b && !scalar.EqualWithinAbs(a, b, eps)
}

// Dist2 returns the squared distance between a and b.
func Dist2(a, b v2.Vec) float64 {
	d := b.Sub(a)
	return d.Dot(d)
}

// Perp returns v rotated a quarter turn: (-y, x).
func Perp(v v2.Vec) v2.Vec {
	return v2.Vec{X: -v.Y, Y: v.X}
}

// Lerp interpolates between a and b.
func Lerp(a, b v2.Vec, t float64) v2.Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Midpoint returns the midpoint of a and b.
func Midpoint(a, b v2.Vec) v2.Vec {
	return Lerp(a, b, 0.5)
}

// ---------------------------------------------------------------------------
// Segments
// ---------------------------------------------------------------------------

// Segment is an ordered pair of points.
type Segment struct {
	A, B v2.Vec
}

// Dir returns B - A.
func (s Segment) Dir() v2.Vec {
	return s.B.Sub(s.A)
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return s.Dir().Length()
}

// SegmentKey identifies a segment independently of endpoint order.
type SegmentKey struct {
	X0, Y0, X1, Y1 float64
}

// Key returns the canonical key: the lexicographically smaller endpoint first.
func (s Segment) Key() SegmentKey {
	a, b := s.A, s.B
	if b.X < a.X || (b.X == a.X && b.Y < a.Y) {
		a, b = b, a
	}
	return SegmentKey{X0: a.X, Y0: a.Y, X1: b.X, Y1: b.Y}
}

// DistanceToSegment2 returns the squared distance from p to s using the
// clamped projection. A zero-length segment is treated as a point.
func DistanceToSegment2(p v2.Vec, s Segment) float64 {
	d := s.Dir()
	l2 := d.Dot(d)
	if l2 == 0 {
		return Dist2(p, s.A)
	}
	t := p.Sub(s.A).Dot(d) / l2
	t = math.Max(0, math.Min(1, t))
	return Dist2(p, s.A.Add(d.MulScalar(t)))
}

// ---------------------------------------------------------------------------
// Polygons
// ---------------------------------------------------------------------------

// PointInPolygon reports whether p lies inside the closed polygon using the
// even-odd rule.
func PointInPolygon(p v2.Vec, poly []v2.Vec) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// SignedArea2 returns the sum of (x1+x0)*(y1-y0) over the closed polygon,
// which is twice its signed area. Positive means clockwise on screen.
func SignedArea2(poly []v2.Vec) float64 {
	var sum float64
	n := len(poly)
	for i := range poly {
		a, b := poly[i], poly[(i+1)%n]
		sum += (b.X + a.X) * (b.Y - a.Y)
	}
	return sum
}

// Bounds is an axis-aligned bounding rectangle. The zero value is empty.
type Bounds struct {
	Min, Max v2.Vec
	set      bool
}

// Include grows b to contain p.
func (b Bounds) Include(p v2.Vec) Bounds {
	if !b.set {
		return Bounds{Min: p, Max: p, set: true}
	}
	b.Min = v2.Vec{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y)}
	b.Max = v2.Vec{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y)}
	return b
}

// IsEmpty reports whether no point was included.
func (b Bounds) IsEmpty() bool {
	return !b.set
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 {
	return b.Max.X - b.Min.X
}

// Height returns the vertical extent.
func (b Bounds) Height() float64 {
	return b.Max.Y - b.Min.Y
}

// Covers reports whether o lies within b, edges included.
func (b Bounds) Covers(o Bounds) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return o.Min.X >= b.Min.X && o.Min.Y >= b.Min.Y && o.Max.X <= b.Max.X && o.Max.Y <= b.Max.Y
}
