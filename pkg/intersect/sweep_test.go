package intersect

import (
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/formcutter/pkg/geom"
)

func seg(x0, y0, x1, y1 float64) geom.Segment {
	return geom.Segment{A: v2.Vec{X: x0, Y: y0}, B: v2.Vec{X: x1, Y: y1}}
}

func TestSingleSegmentHasNoIntersection(t *testing.T) {
	assert.Empty(t, Intersections([]geom.Segment{seg(1, 2, 3, 4)}))
}

func TestCrossingPair(t *testing.T) {
	pts := Intersections([]geom.Segment{
		seg(1, 2, -3, 4),
		seg(-1.5, -0.5, 1, 4.5),
	})
	require.Len(t, pts, 1)
	assert.InDelta(t, 0.0, pts[0].X, 1e-9)
	assert.InDelta(t, 2.5, pts[0].Y, 1e-9)
}

func TestHitParameters(t *testing.T) {
	hits := NewSweeper().Hits([]geom.Segment{
		seg(0, 0, 10, 10),
		seg(0, 10, 10, 0),
	})
	require.Len(t, hits, 1)
	h := hits[0]
	assert.ElementsMatch(t, []int{0, 1}, []int{h.A, h.B})
	assert.InDelta(t, 0.5, h.TA, 1e-12)
	assert.InDelta(t, 0.5, h.TB, 1e-12)
	assert.InDelta(t, 5.0, h.Point.X, 1e-12)
	assert.InDelta(t, 5.0, h.Point.Y, 1e-12)
}

func TestSharedEndpointsAreNotIntersections(t *testing.T) {
	// Closed triangle: every pair meets only at a vertex.
	tri := []geom.Segment{
		seg(0, 0, 10, 0),
		seg(10, 0, 5, 8),
		seg(5, 8, 0, 0),
	}
	assert.Empty(t, Intersections(tri))

	// T junction: one segment ends on the interior of the other.
	assert.Empty(t, Intersections([]geom.Segment{
		seg(0, 0, 10, 0),
		seg(5, 0, 5, 6),
	}))
}

func TestParallelAndCollinear(t *testing.T) {
	assert.Empty(t, Intersections([]geom.Segment{
		seg(0, 0, 10, 0),
		seg(0, 1, 10, 1),
	}))
	assert.Empty(t, Intersections([]geom.Segment{
		seg(0, 0, 10, 0),
		seg(5, 0, 15, 0),
	}))
}

func TestVerticalSegments(t *testing.T) {
	tests := []struct {
		name string
		segs []geom.Segment
		want v2.Vec
	}{
		{"vertical first", []geom.Segment{seg(5, -5, 5, 5), seg(0, 1, 10, 1)}, v2.Vec{X: 5, Y: 1}},
		{"vertical second", []geom.Segment{seg(0, 1, 10, 3), seg(5, -5, 5, 5)}, v2.Vec{X: 5, Y: 2}},
		{"vertical reversed", []geom.Segment{seg(5, 5, 5, -5), seg(10, 0, 0, 0)}, v2.Vec{X: 5, Y: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts := Intersections(tt.segs)
			require.Len(t, pts, 1)
			assert.InDelta(t, tt.want.X, pts[0].X, 1e-9)
			assert.InDelta(t, tt.want.Y, pts[0].Y, 1e-9)
		})
	}
}

func TestDisjointInXNeverTested(t *testing.T) {
	// The lines cross at x = 5 but neither segment reaches it.
	assert.Empty(t, Intersections([]geom.Segment{
		seg(0, 0, 2, 2),
		seg(8, 2, 10, 0),
	}))
}

func TestBowtie(t *testing.T) {
	bowtie := []geom.Segment{
		seg(0, 0, 10, 10),
		seg(10, 10, 10, 0),
		seg(10, 0, 0, 10),
		seg(0, 10, 0, 0),
	}
	pts := Intersections(bowtie)
	require.Len(t, pts, 1)
	assert.InDelta(t, 5.0, pts[0].X, 1e-9)
	assert.InDelta(t, 5.0, pts[0].Y, 1e-9)
}

func TestSweeperResetsBetweenCalls(t *testing.T) {
	s := NewSweeper()
	first := s.Find([]geom.Segment{seg(0, 0, 10, 10), seg(0, 10, 10, 0)})
	require.Len(t, first, 1)

	second := s.Find([]geom.Segment{seg(0, 0, 1, 0)})
	assert.Empty(t, second)

	third := s.Find([]geom.Segment{seg(0, 0, 10, 10), seg(0, 10, 10, 0)})
	assert.Len(t, third, 1)
}

func TestManyCrossings(t *testing.T) {
	// A grid of 4 horizontals and 4 verticals crosses 16 times.
	var segs []geom.Segment
	for i := 1; i <= 4; i++ {
		f := float64(i) * 2
		segs = append(segs, seg(0, f, 10, f), seg(f, 0, f, 10))
	}
	assert.Len(t, Intersections(segs), 16)
}
