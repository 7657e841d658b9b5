// Package intersect finds proper crossings among line segments with a
// sweep over x.
//
// Only interior crossings are reported: two segments that share an
// endpoint, or where one merely touches the other at an endpoint, do not
// intersect. Parallel and collinear segments never intersect.
package intersect

import (
	"math"
	"slices"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/tidwall/btree"

	"github.com/chazu/formcutter/pkg/geom"
)

// Hit is one proper crossing between segments A and B (indices into the
// input slice). TA and TB are the parameters along each segment in the
// direction it was given.
type Hit struct {
	Point  v2.Vec
	A, B   int
	TA, TB float64
}

type eventKind int

// Tie rank at equal x: ends first, then starts, then the ends of segments
// with no x extent, which must outlive their own start.
const (
	eventEnd eventKind = iota
	eventStart
	eventEndVertical
)

type event struct {
	x    float64
	kind eventKind
	seg  int
}

type active struct {
	idx int
	seg geom.Segment
}

func activeLess(a, b active) bool { return a.idx < b.idx }

// Sweeper owns the event queue, the active set and the hit buffer of one
// sweep. All three are reset by every call, so a Sweeper may be reused
// sequentially but not shared between goroutines.
type Sweeper struct {
	Tolerance float64

	events []event
	active *btree.BTreeG[active]
	hits   []Hit
}

// NewSweeper returns a Sweeper using geom.Tolerance.
func NewSweeper() *Sweeper {
	return &Sweeper{Tolerance: geom.Tolerance}
}

// Intersections returns the crossing points of segs using a fresh Sweeper.
func Intersections(segs []geom.Segment) []v2.Vec {
	return NewSweeper().Find(segs)
}

// Find returns the crossing points in sweep order.
func (s *Sweeper) Find(segs []geom.Segment) []v2.Vec {
	hits := s.Hits(segs)
	out := make([]v2.Vec, len(hits))
	for i, h := range hits {
		out[i] = h.Point
	}
	return out
}

// Hits runs the sweep and returns every crossing in sweep order.
func (s *Sweeper) Hits(segs []geom.Segment) []Hit {
	s.reset(len(segs))

	for i, sg := range segs {
		lo, hi := sg.A.X, sg.B.X
		if hi < lo {
			lo, hi = hi, lo
		}
		end := eventEnd
		if hi-lo <= s.Tolerance {
			end = eventEndVertical
		}
		s.events = append(s.events,
			event{x: lo, kind: eventStart, seg: i},
			event{x: hi, kind: end, seg: i},
		)
	}
	slices.SortStableFunc(s.events, s.compare)

	for _, ev := range s.events {
		switch ev.kind {
		case eventStart:
			cur := segs[ev.seg]
			s.active.Scan(func(a active) bool {
				if h, ok := s.cross(a.seg, cur); ok {
					h.A, h.B = a.idx, ev.seg
					s.hits = append(s.hits, h)
				}
				return true
			})
			s.active.Set(active{idx: ev.seg, seg: cur})
		default:
			s.active.Delete(active{idx: ev.seg})
		}
	}

	out := s.hits
	s.hits = nil
	return out
}

func (s *Sweeper) reset(n int) {
	if s.Tolerance <= 0 {
		s.Tolerance = geom.Tolerance
	}
	s.events = make([]event, 0, 2*n)
	s.active = btree.NewBTreeG[active](activeLess)
	s.hits = nil
}

// compare orders events by x. Events closer than the tolerance count as
// tied and are ordered by kind, then by segment index.
func (s *Sweeper) compare(a, b event) int {
	if math.Abs(a.x-b.x) > s.Tolerance {
		if a.x < b.x {
			return -1
		}
		return 1
	}
	if a.kind != b.kind {
		return int(a.kind) - int(b.kind)
	}
	return a.seg - b.seg
}

// cross solves p + t*r = q + u*w for the two segments and accepts the
// solution only when both parameters lie strictly inside (tol, 1-tol).
func (s *Sweeper) cross(a, b geom.Segment) (Hit, bool) {
	tol := s.Tolerance
	p, r := a.A, a.Dir()
	q, w := b.A, b.Dir()

	denom := r.Cross(w)
	if math.Abs(denom) < tol {
		return Hit{}, false
	}

	var t, u float64
	switch {
	case r.X == 0:
		u = (p.X - q.X) / w.X
		t = (q.Y + u*w.Y - p.Y) / r.Y
	case w.X == 0:
		t = (q.X - p.X) / r.X
		u = (p.Y + t*r.Y - q.Y) / w.Y
	default:
		qp := q.Sub(p)
		t = qp.Cross(w) / denom
		u = qp.Cross(r) / denom
	}

	if t <= tol || t >= 1-tol || u <= tol || u >= 1-tol {
		return Hit{}, false
	}
	return Hit{Point: p.Add(r.MulScalar(t)), TA: t, TB: u}, true
}
