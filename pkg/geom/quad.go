package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// DefaultStep is the arc-length spacing between samples on a curved edge.
const DefaultStep = 2.0

// flattenResolution is the number of chords used to measure arc length.
const flattenResolution = 64

// QuadPoint evaluates the quadratic Bézier p0, q, p2 at t.
func QuadPoint(p0, q, p2 v2.Vec, t float64) v2.Vec {
	mt := 1 - t
	return p0.MulScalar(mt * mt).Add(q.MulScalar(2 * mt * t)).Add(p2.MulScalar(t * t))
}

// QuadTangent returns the derivative of the quadratic Bézier at t.
func QuadTangent(p0, q, p2 v2.Vec, t float64) v2.Vec {
	return q.Sub(p0).MulScalar(2 * (1 - t)).Add(p2.Sub(q).MulScalar(2 * t))
}

// QuadLength approximates the arc length of the curve.
func QuadLength(p0, q, p2 v2.Vec) float64 {
	_, lens := quadTable(p0, q, p2)
	return lens[flattenResolution]
}

// quadTable flattens the curve into flattenResolution chords and returns
// the chord end points with their cumulative lengths.
func quadTable(p0, q, p2 v2.Vec) (pts, lens [flattenResolution + 1]float64) {
	prev := p0
	for i := 1; i <= flattenResolution; i++ {
		t := float64(i) / flattenResolution
		p := QuadPoint(p0, q, p2, t)
		lens[i] = lens[i-1] + p.Sub(prev).Length()
		pts[i] = t
		prev = p
	}
	return pts, lens
}

// straight reports whether q lies on the chord p0-p2, in which case the
// curve is the chord itself traversed once.
func straight(p0, q, p2 v2.Vec) bool {
	d := p2.Sub(p0)
	l2 := d.Dot(d)
	if l2 == 0 {
		return false
	}
	w := q.Sub(p0)
	if cross := d.X*w.Y - d.Y*w.X; math.Abs(cross) > Tolerance*l2 {
		return false
	}
	along := w.Dot(d)
	return along >= 0 && along <= l2
}

// SampleQuad samples the quadratic Bézier from p0 to p2 at evenly spaced
// arc-length positions no further apart than step. The first and last
// samples are exactly p0 and p2. Straight edges are interpolated on the
// chord so axis-aligned edges keep exact coordinates.
func SampleQuad(p0, q, p2 v2.Vec, step float64) []v2.Vec {
	if step <= 0 {
		step = DefaultStep
	}
	if straight(p0, q, p2) {
		count := int(math.Max(1, math.Ceil(p2.Sub(p0).Length()/step)))
		out := make([]v2.Vec, 0, count+1)
		out = append(out, p0)
		for k := 1; k < count; k++ {
			out = append(out, Lerp(p0, p2, float64(k)/float64(count)))
		}
		return append(out, p2)
	}

	ts, lens := quadTable(p0, q, p2)
	total := lens[flattenResolution]
	if total == 0 {
		return []v2.Vec{p0, p2}
	}

	count := int(math.Ceil(total / step))
	if count < 1 {
		count = 1
	}
	spacing := total / float64(count)

	out := make([]v2.Vec, 0, count+1)
	out = append(out, p0)
	j := 0
	for k := 1; k < count; k++ {
		target := spacing * float64(k)
		for j < flattenResolution-1 && lens[j+1] < target {
			j++
		}
		t := ts[j+1]
		if span := lens[j+1] - lens[j]; span > 0 {
			frac := (target - lens[j]) / span
			t = ts[j] + frac*(ts[j+1]-ts[j])
		}
		out = append(out, QuadPoint(p0, q, p2, t))
	}
	return append(out, p2)
}
