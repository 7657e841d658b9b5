// Package form walks a path graph into ordered boundary point sequences
// ("forms") and applies the cutter business rules to them: at most two
// forms, closed outlines, proper nesting and no self intersections.
package form

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/formcutter/pkg/geom"
	"github.com/chazu/formcutter/pkg/graph"
)

// Winding is the traversal direction of a closed form on screen.
type Winding int

const (
	WindingNone Winding = iota // open form
	WindingCW
	WindingCCW
)

func (w Winding) String() string {
	switch w {
	case WindingNone:
		return ""
	case WindingCW:
		return "cw"
	case WindingCCW:
		return "ccw"
	default:
		return fmt.Sprintf("Winding(%d)", int(w))
	}
}

// Form is one traced outline. Points of a closed form implicitly wrap back
// to the first point; the first point is never repeated at the end.
type Form struct {
	Points   []v2.Vec
	Closed   bool
	Winding  Winding
	Nodes    []graph.NodeID // in walk order
	Bounds   geom.Bounds
	Width    float64
	Height   float64
	Centroid v2.Vec
	Area     float64 // enclosed area, zero when open
}

// Segments returns consecutive point pairs, including the closing pair of
// a closed form.
func (f *Form) Segments() []geom.Segment {
	n := len(f.Points)
	if n < 2 {
		return nil
	}
	segs := make([]geom.Segment, 0, n)
	for i := 1; i < n; i++ {
		segs = append(segs, geom.Segment{A: f.Points[i-1], B: f.Points[i]})
	}
	if f.Closed && n > 2 {
		segs = append(segs, geom.Segment{A: f.Points[n-1], B: f.Points[0]})
	}
	return segs
}

// Contains reports whether p lies inside a closed form.
func (f *Form) Contains(p v2.Vec) bool {
	return f.Closed && geom.PointInPolygon(p, f.Points)
}

// Encloses reports whether every point of other lies inside f.
func (f *Form) Encloses(other *Form) bool {
	if !f.Closed || !f.Bounds.Covers(other.Bounds) {
		return false
	}
	for _, p := range other.Points {
		if !geom.PointInPolygon(p, f.Points) {
			return false
		}
	}
	return true
}

// finish computes the derived metadata once the points are final.
func (f *Form) finish(eps float64) {
	if f.Closed && len(f.Points) > 1 && geom.Dist2(f.Points[0], f.Points[len(f.Points)-1]) < eps*eps {
		f.Points = f.Points[:len(f.Points)-1]
	}

	var sum v2.Vec
	for _, p := range f.Points {
		f.Bounds = f.Bounds.Include(p)
		sum = sum.Add(p)
	}
	if len(f.Points) > 0 {
		f.Centroid = sum.MulScalar(1 / float64(len(f.Points)))
		f.Width = f.Bounds.Width()
		f.Height = f.Bounds.Height()
	}

	if !f.Closed {
		f.Winding = WindingNone
		return
	}
	a2 := geom.SignedArea2(f.Points)
	f.Area = math.Abs(a2) / 2
	if a2 > 0 {
		f.Winding = WindingCW
	} else {
		f.Winding = WindingCCW
	}
}
