package extrude

import (
	"math"
	"slices"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/formcutter/pkg/form"
	"github.com/chazu/formcutter/pkg/geom"
	"github.com/chazu/formcutter/pkg/mesh"
)

// miterLimit caps how far a corner offset may reach, in half thicknesses.
// Sharper corners are bevelled to this length and their wall thins.
const miterLimit = 2.0

// toModel maps a screen point (y down) to the model plane (y up), so the
// printed cutter matches the drawing seen from above.
func toModel(p v2.Vec) v2.Vec {
	return v2.Vec{X: p.X, Y: -p.Y}
}

// ring is a form centreline in model coordinates. Closed rings are always
// counter clockwise, so the left side is the inside.
type ring struct {
	pts    []v2.Vec
	closed bool

	// Offsets half a wall thickness to the left (inner) and right (outer),
	// filled by offset.
	left, right []v2.Vec

	// Edges whose left or right wall face is replaced by a bridge.
	openLeft, openRight map[int]bool
}

func newRing(f *form.Form) *ring {
	r := &ring{
		pts:       make([]v2.Vec, len(f.Points)),
		closed:    f.Closed && len(f.Points) >= 3,
		openLeft:  map[int]bool{},
		openRight: map[int]bool{},
	}
	for i, p := range f.Points {
		r.pts[i] = toModel(p)
	}
	if r.closed && geom.SignedArea2(r.pts) < 0 {
		slices.Reverse(r.pts)
	}
	return r
}

// edgeCount is the number of centreline edges swept into wall sections.
func (r *ring) edgeCount() int {
	switch {
	case len(r.pts) < 2:
		return 0
	case r.closed:
		return len(r.pts)
	default:
		return len(r.pts) - 1
	}
}

// facetCount is the number of facets emit produces.
func (r *ring) facetCount() int {
	n := 8*r.edgeCount() - 2*(len(r.openLeft)+len(r.openRight))
	if n > 0 && !r.closed {
		n += 4
	}
	return n
}

// next returns the index after i, wrapping on closed rings.
func (r *ring) next(i int) int {
	return (i + 1) % len(r.pts)
}

// segments returns the centreline edges in model coordinates; segment i is
// edge i.
func (r *ring) segments() []geom.Segment {
	segs := make([]geom.Segment, r.edgeCount())
	for i := range segs {
		segs[i] = geom.Segment{A: r.pts[i], B: r.pts[r.next(i)]}
	}
	return segs
}

// bisector returns the unit left normal at point i, averaged over the two
// adjacent edges, and the miter scale that keeps both offset edges parallel
// to their centreline edges. Ends of an open ring use their single edge.
func (r *ring) bisector(i int) (v2.Vec, float64) {
	n := len(r.pts)
	var nIn, nOut v2.Vec
	hasIn := r.closed || i > 0
	hasOut := r.closed || i < n-1
	if hasIn {
		nIn = geom.Perp(r.pts[i].Sub(r.pts[(i-1+n)%n]).Normalize())
	}
	if hasOut {
		nOut = geom.Perp(r.pts[(i+1)%n].Sub(r.pts[i]).Normalize())
	}
	switch {
	case !hasIn:
		return nOut, 1
	case !hasOut:
		return nIn, 1
	}
	m := nIn.Add(nOut)
	if m.Length() < geom.Tolerance {
		return nIn, 1
	}
	m = m.Normalize()
	cos := m.Dot(nIn)
	if cos <= 1/miterLimit {
		return m, miterLimit
	}
	return m, 1 / cos
}

// offset fills the rings half a wall thickness to the left and right of
// the centreline.
func (r *ring) offset(half float64) {
	r.left = make([]v2.Vec, len(r.pts))
	r.right = make([]v2.Vec, len(r.pts))
	for i, p := range r.pts {
		b, scale := r.bisector(i)
		m := b.MulScalar(half * scale)
		r.left[i] = p.Add(m)
		r.right[i] = p.Sub(m)
	}
}

// split makes the stretch of edge e centred on c and w long an edge of its
// own and returns the index of its first point. The stretch is slid along
// the edge to stay inside it; an edge shorter than w is used whole.
// Offsets must be recomputed afterwards.
func (r *ring) split(e int, c v2.Vec, w float64) int {
	a, b := r.pts[e], r.pts[r.next(e)]
	d := b.Sub(a)
	l := d.Length()
	if l <= w {
		return e
	}
	half := w / (2 * l)
	t := c.Sub(a).Dot(d) / (l * l)
	t1 := math.Min(math.Max(t-half, 0)+2*half, 1)
	t0 := t1 - 2*half

	var ins []v2.Vec
	first := e
	if t0*l > geom.Epsilon {
		ins = append(ins, geom.Lerp(a, b, t0))
		first = e + 1
	}
	if (1-t1)*l > geom.Epsilon {
		ins = append(ins, geom.Lerp(a, b, t1))
	}
	r.pts = slices.Insert(r.pts, e+1, ins...)
	return first
}

// wallNormal is the horizontal unit normal to the right of a to b, falling
// back to the centreline direction d when the offset edge collapses.
func wallNormal(a, b, d v2.Vec) v3.Vec {
	dir := b.Sub(a)
	if dir.Length() < geom.Tolerance {
		dir = d
	}
	dir = dir.Normalize()
	return v3.Vec{X: dir.Y, Y: -dir.X}
}

func at(p v2.Vec, z float64) v3.Vec {
	return v3.Vec{X: p.X, Y: p.Y, Z: z}
}

// emit sweeps the wall cross-section along the ring: an outer wall facing
// right, an inner wall facing left, and top and bottom rims between them.
// Open rings get an end cap at each end. Wall faces marked open are left
// out for a bridge to fill.
func (r *ring) emit(m *mesh.Mesh, height float64) {
	if r.edgeCount() == 0 {
		return
	}
	left, right := r.left, r.right
	up, down := v3.Vec{Z: 1}, v3.Vec{Z: -1}

	for i := 0; i < r.edgeCount(); i++ {
		j := r.next(i)
		d := r.pts[j].Sub(r.pts[i])

		oa0, ob0 := at(right[i], 0), at(right[j], 0)
		oa1, ob1 := at(right[i], height), at(right[j], height)
		ia0, ib0 := at(left[i], 0), at(left[j], 0)
		ia1, ib1 := at(left[i], height), at(left[j], height)

		if !r.openRight[i] {
			m.Quad(wallNormal(right[i], right[j], d), oa0, ob0, ob1, oa1)
		}
		if !r.openLeft[i] {
			m.Quad(wallNormal(left[i], left[j], d).MulScalar(-1), ia0, ia1, ib1, ib0)
		}
		m.Quad(up, oa1, ob1, ib1, ia1)
		m.Quad(down, oa0, ia0, ib0, ob0)
	}

	if r.closed {
		return
	}
	n := len(r.pts)
	first, last := 0, n-1
	d0 := r.pts[1].Sub(r.pts[0]).Normalize()
	dn := r.pts[last].Sub(r.pts[last-1]).Normalize()
	back := v3.Vec{X: -d0.X, Y: -d0.Y}
	fwd := v3.Vec{X: dn.X, Y: dn.Y}
	m.Quad(back, at(right[first], 0), at(right[first], height), at(left[first], height), at(left[first], 0))
	m.Quad(fwd, at(right[last], 0), at(left[last], 0), at(left[last], height), at(right[last], height))
}
