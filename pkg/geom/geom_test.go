package geom

import (
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentKeyIgnoresOrder(t *testing.T) {
	a := Segment{A: v2.Vec{X: 3, Y: 4}, B: v2.Vec{X: 1, Y: 2}}
	b := Segment{A: v2.Vec{X: 1, Y: 2}, B: v2.Vec{X: 3, Y: 4}}
	assert.Equal(t, a.Key(), b.Key())

	c := Segment{A: v2.Vec{X: 1, Y: 5}, B: v2.Vec{X: 1, Y: 2}}
	assert.Equal(t, SegmentKey{X0: 1, Y0: 2, X1: 1, Y1: 5}, c.Key())
}

func TestDistanceToSegment2(t *testing.T) {
	s := Segment{A: v2.Vec{X: 0, Y: 0}, B: v2.Vec{X: 10, Y: 0}}

	tests := []struct {
		name string
		p    v2.Vec
		want float64
	}{
		{"above interior", v2.Vec{X: 5, Y: 3}, 9},
		{"before start", v2.Vec{X: -3, Y: 4}, 25},
		{"past end", v2.Vec{X: 13, Y: 0}, 9},
		{"on segment", v2.Vec{X: 7, Y: 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceToSegment2(tt.p, s), 1e-12)
		})
	}

	point := Segment{A: v2.Vec{X: 1, Y: 1}, B: v2.Vec{X: 1, Y: 1}}
	assert.InDelta(t, 2.0, DistanceToSegment2(v2.Vec{X: 2, Y: 2}, point), 1e-12)
}

func TestPointInPolygon(t *testing.T) {
	square := []v2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	assert.True(t, PointInPolygon(v2.Vec{X: 5, Y: 5}, square))
	assert.False(t, PointInPolygon(v2.Vec{X: 15, Y: 5}, square))
	assert.False(t, PointInPolygon(v2.Vec{X: 5, Y: -1}, square))
	assert.False(t, PointInPolygon(v2.Vec{X: 5, Y: 5}, nil))
}

func TestSignedArea2(t *testing.T) {
	// Clockwise on screen (y down): right, down, left.
	cw := []v2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	assert.InDelta(t, 200.0, SignedArea2(cw), 1e-9)

	ccw := []v2.Vec{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}}
	assert.InDelta(t, -200.0, SignedArea2(ccw), 1e-9)
}

func TestBoundsZeroValueIsEmpty(t *testing.T) {
	var b Bounds
	assert.True(t, b.IsEmpty())

	b = b.Include(v2.Vec{X: 2, Y: 3}).Include(v2.Vec{X: -1, Y: 7})
	assert.False(t, b.IsEmpty())
	assert.Equal(t, 3.0, b.Width())
	assert.Equal(t, 4.0, b.Height())
}

func TestSampleQuadStraightLine(t *testing.T) {
	p0 := v2.Vec{X: 0, Y: 0}
	p2 := v2.Vec{X: 10, Y: 0}
	pts := SampleQuad(p0, Midpoint(p0, p2), p2, 3)

	require.Len(t, pts, 5)
	for i, p := range pts {
		assert.InDelta(t, 2.5*float64(i), p.X, 1e-9, "sample %d", i)
		assert.InDelta(t, 0.0, p.Y, 1e-12, "sample %d", i)
	}
}

func TestSampleQuadCurveEndpointsAndSpacing(t *testing.T) {
	p0 := v2.Vec{X: 0, Y: 0}
	q := v2.Vec{X: 20, Y: 40}
	p2 := v2.Vec{X: 40, Y: 0}
	step := 3.0
	pts := SampleQuad(p0, q, p2, step)

	require.GreaterOrEqual(t, len(pts), 3)
	assert.Equal(t, p0, pts[0])
	assert.Equal(t, p2, pts[len(pts)-1])

	total := QuadLength(p0, q, p2)
	assert.Equal(t, int(math.Ceil(total/step))+1, len(pts))
	for i := 1; i < len(pts); i++ {
		// Chords are never longer than the arc they cut.
		assert.LessOrEqual(t, pts[i].Sub(pts[i-1]).Length(), step*1.01)
	}
}

func TestSampleQuadDegenerate(t *testing.T) {
	p := v2.Vec{X: 4, Y: 4}
	pts := SampleQuad(p, p, p, 1)
	assert.Equal(t, []v2.Vec{p, p}, pts)
}

func TestNear(t *testing.T) {
	assert.True(t, Near(v2.Vec{X: 1, Y: 1}, v2.Vec{X: 1.0005, Y: 0.9995}, Epsilon))
	assert.False(t, Near(v2.Vec{X: 1, Y: 1}, v2.Vec{X: 1.01, Y: 1}, Epsilon))
}

func TestExceeds(t *testing.T) {
	assert.True(t, Exceeds(50.01, 50, Epsilon))
	assert.False(t, Exceeds(50.000000000000014, 50.000000000000007, Epsilon))
	assert.False(t, Exceeds(50, 50.01, Epsilon))
}

func TestSampleQuadStraightEdgeIsExact(t *testing.T) {
	p0 := v2.Vec{X: 10, Y: 10}
	p2 := v2.Vec{X: 60, Y: 10}

	for _, q := range []v2.Vec{Midpoint(p0, p2), {X: 20, Y: 10}} {
		pts := SampleQuad(p0, q, p2, DefaultStep)
		require.Len(t, pts, 26)
		for i, p := range pts {
			assert.Equal(t, 10.0, p.Y, "sample %d", i)
			assert.GreaterOrEqual(t, p.X, 10.0)
			assert.LessOrEqual(t, p.X, 60.0)
		}
		var b Bounds
		for _, p := range pts {
			b = b.Include(p)
		}
		assert.Equal(t, 50.0, b.Width())
	}
}

func TestSampleQuadControlPastChordIsCurve(t *testing.T) {
	// A collinear control point beyond p2 makes the curve overshoot and
	// double back, so it is not the chord.
	p0 := v2.Vec{X: 0, Y: 0}
	p2 := v2.Vec{X: 10, Y: 0}
	pts := SampleQuad(p0, v2.Vec{X: 20, Y: 0}, p2, 1)

	maxX := 0.0
	for _, p := range pts {
		maxX = math.Max(maxX, p.X)
	}
	assert.Greater(t, maxX, 10.5)
}
