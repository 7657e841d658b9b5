package extrude

import (
	"cmp"
	"errors"
	"slices"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"

	"github.com/chazu/formcutter/pkg/geom"
	"github.com/chazu/formcutter/pkg/intersect"
	"github.com/chazu/formcutter/pkg/mesh"
)

// scanNudges are the scan line offsets tried in turn, as fractions of the wall
// thickness, when a scan line passes exactly through a boundary vertex.
var scanNudges = []float64{0, 0.1, -0.1, 0.25, -0.25, 0.4, -0.4}

var errNoScanLine = errors.New("extrude: no scan line crosses both walls cleanly")

type crossing struct {
	at    v2.Vec
	outer bool
	edge  int
}

// link is one bridge: the outer ring edge whose inner wall it replaces and
// the inner ring edge whose outer wall it replaces. Both edges run the same
// way, counter clockwise, facing each other across the gap.
type link struct {
	outer, inner int
}

// scan returns the crossings of a horizontal line at model height y with
// both centrelines, sorted along the line, or nil when the line misses a
// wall or grazes a vertex.
func (e *Engine) scan(sweep *intersect.Sweeper, outer, inner *ring, y, margin float64) []crossing {
	outerSegs := outer.segments()
	segs := append(outerSegs, inner.segments()...)
	lineIdx := len(segs)

	var b geom.Bounds
	for _, p := range outer.pts {
		b = b.Include(p)
	}
	segs = append(segs, geom.Segment{
		A: v2.Vec{X: b.Min.X - margin, Y: y},
		B: v2.Vec{X: b.Max.X + margin, Y: y},
	})

	var xs []crossing
	var nOuter, nInner int
	for _, h := range sweep.Hits(segs) {
		other := -1
		switch lineIdx {
		case h.A:
			other = h.B
		case h.B:
			other = h.A
		}
		if other < 0 {
			continue
		}
		c := crossing{at: h.Point, outer: other < len(outerSegs), edge: other}
		if c.outer {
			nOuter++
		} else {
			c.edge -= len(outerSegs)
			nInner++
		}
		xs = append(xs, c)
	}
	if nOuter == 0 || nInner == 0 || nOuter%2 != 0 || nInner%2 != 0 {
		e.log().Debug("scan line rejected", zap.Float64("y", y), zap.Int("outer", nOuter), zap.Int("inner", nInner))
		return nil
	}
	slices.SortFunc(xs, func(a, b crossing) int { return cmp.Compare(a.at.X, b.at.X) })
	return xs
}

// plan pairs neighbouring outer and inner crossings along the first usable
// scan line. Each crossing joins at most one bridge.
func (e *Engine) plan(outer, inner *ring, centroid v2.Vec, p Params) ([]crossing, error) {
	sweep := intersect.NewSweeper()
	for _, nudge := range scanNudges {
		xs := e.scan(sweep, outer, inner, centroid.Y+nudge*p.Thickness, p.Thickness+1)
		if xs == nil {
			continue
		}
		var pairs []crossing
		for k := 0; k+1 < len(xs); k++ {
			if xs[k].outer == xs[k+1].outer {
				continue
			}
			pairs = append(pairs, xs[k], xs[k+1])
			k++
		}
		return pairs, nil
	}
	return nil, errNoScanLine
}

type cut struct {
	edge int
	at   v2.Vec
	link int
}

// splitAll splits r once per cut and returns the first point index of each
// cut's new edge, indexed by link.
func splitAll(r *ring, cuts []cut, w float64, links int) []int {
	// Split from the far end so earlier edge indices stay put, then shift
	// each span by the points inserted before it.
	slices.SortFunc(cuts, func(a, b cut) int { return cmp.Compare(b.edge, a.edge) })
	first := make([]int, links)
	added := make([]int, len(cuts))
	for i, c := range cuts {
		n := len(r.pts)
		first[c.link] = r.split(c.edge, c.at, w)
		added[i] = len(r.pts) - n
	}
	for i, c := range cuts {
		for j := i + 1; j < len(cuts); j++ {
			first[c.link] += added[j]
		}
	}
	return first
}

// bridge joins the outer and inner rings into one solid. A horizontal scan
// through the inner centroid is crossed with both centrelines; every
// neighbouring outer and inner crossing gets a span of wall thickness cut
// into its edge, and the two facing wall faces of those spans are replaced
// by a bar from one wall to the other. Both rings must not be offset or
// emitted yet. It returns the links for emitBridges.
func (e *Engine) bridge(outer, inner *ring, centroid v2.Vec, p Params) ([]link, error) {
	pairs, err := e.plan(outer, inner, centroid, p)
	if err != nil {
		return nil, err
	}

	var outerCuts, innerCuts []cut
	for k := 0; k+1 < len(pairs); k += 2 {
		for _, c := range pairs[k : k+2] {
			if c.outer {
				outerCuts = append(outerCuts, cut{edge: c.edge, at: c.at, link: k / 2})
			} else {
				innerCuts = append(innerCuts, cut{edge: c.edge, at: c.at, link: k / 2})
			}
		}
	}
	n := len(pairs) / 2
	of := splitAll(outer, outerCuts, p.Thickness, n)
	inf := splitAll(inner, innerCuts, p.Thickness, n)

	links := make([]link, n)
	for i := range links {
		links[i] = link{outer: of[i], inner: inf[i]}
		outer.openLeft[of[i]] = true
		inner.openRight[inf[i]] = true
	}
	return links, nil
}

// emitBridges adds the bar of every link: top and bottom faces plus the two
// side walls. The ends of each bar are the wall faces left open on the
// rings, so the bar shares their edges exactly.
func emitBridges(m *mesh.Mesh, outer, inner *ring, links []link, height float64) {
	up, down := v3.Vec{Z: 1}, v3.Vec{Z: -1}
	for _, l := range links {
		p0, p1 := outer.left[l.outer], outer.left[outer.next(l.outer)]
		q0, q1 := inner.right[l.inner], inner.right[inner.next(l.inner)]
		across := p0.Sub(q0)

		m.Quad(up, at(q0, height), at(p0, height), at(p1, height), at(q1, height))
		m.Quad(down, at(q0, 0), at(q1, 0), at(p1, 0), at(p0, 0))
		m.Quad(wallNormal(q0, p0, across), at(q0, 0), at(p0, 0), at(p0, height), at(q0, height))
		m.Quad(wallNormal(p1, q1, across.MulScalar(-1)), at(q1, 0), at(q1, height), at(p1, height), at(p1, 0))
	}
}
