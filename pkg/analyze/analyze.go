// Package analyze flags outline features that are hard to manufacture as a
// bent or printed blade: sharp bends at nodes, and places where the outer
// and inner walls come too close together.
package analyze

import (
	"math"
	"slices"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/samber/lo"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/chazu/formcutter/pkg/form"
	"github.com/chazu/formcutter/pkg/geom"
	"github.com/chazu/formcutter/pkg/graph"
)

// Profile holds the manufacturing tolerances.
type Profile struct {
	MinAngle    float64 // smallest allowed interior angle at a node, degrees
	MinDistance float64 // smallest allowed gap between outer and inner wall
}

// DefaultProfile returns tolerances suited to a 1 mm printed blade.
func DefaultProfile() Profile {
	return Profile{MinAngle: 30, MinDistance: 2}
}

// Report lists the flagged features. Nodes are ordered by id; segments are
// in the order they were first flagged.
type Report struct {
	CriticalNodes    []graph.NodeID
	CriticalSegments []geom.Segment
}

// Empty reports whether nothing was flagged.
func (r Report) Empty() bool {
	return len(r.CriticalNodes) == 0 && len(r.CriticalSegments) == 0
}

// Analyzer accumulates flagged features for one call at a time. The
// accumulators are cleared at the start of every Analyze, so an Analyzer
// can be reused but must not be shared between goroutines.
type Analyzer struct {
	nodes    map[graph.NodeID]struct{}
	segments *orderedmap.OrderedMap[geom.SegmentKey, geom.Segment]
}

// New returns an empty Analyzer.
func New() *Analyzer {
	a := &Analyzer{}
	a.reset()
	return a
}

func (a *Analyzer) reset() {
	a.nodes = make(map[graph.NodeID]struct{})
	a.segments = orderedmap.New[geom.SegmentKey, geom.Segment]()
}

// Analyze checks every degree-2 node of g against p.MinAngle and, when res
// holds exactly two forms, every point of each form against the segments of
// the other for p.MinDistance.
func (a *Analyzer) Analyze(g *graph.Graph, res form.Result, p Profile) Report {
	a.reset()

	threshold := p.MinAngle / 180 * math.Pi
	for _, n := range g.Nodes() {
		if n.Degree() != graph.MaxDegree {
			continue
		}
		if angle, ok := nodeAngle(n); ok && angle < threshold {
			a.nodes[n.ID] = struct{}{}
		}
	}

	if len(res.Forms) == form.MaxForms {
		min2 := p.MinDistance * p.MinDistance
		a.thinWalls(&res.Forms[0], &res.Forms[1], min2)
		a.thinWalls(&res.Forms[1], &res.Forms[0], min2)
	}

	return a.report()
}

// thinWalls flags every segment of other that lies closer than the
// threshold to a point of f.
func (a *Analyzer) thinWalls(f, other *form.Form, min2 float64) {
	segs := other.Segments()
	for _, p := range f.Points {
		for _, s := range segs {
			if geom.DistanceToSegment2(p, s) < min2 {
				a.segments.Set(s.Key(), s)
			}
		}
	}
}

func (a *Analyzer) report() Report {
	var r Report
	if len(a.nodes) > 0 {
		r.CriticalNodes = lo.Keys(a.nodes)
		slices.Sort(r.CriticalNodes)
	}
	for pair := a.segments.Oldest(); pair != nil; pair = pair.Next() {
		r.CriticalSegments = append(r.CriticalSegments, pair.Value)
	}
	return r
}

// nodeAngle returns the angle between the two curve directions leaving n.
func nodeAngle(n *graph.Node) (float64, bool) {
	edges := n.Edges()
	d0 := direction(n, edges[0])
	d1 := direction(n, edges[1])
	l0, l1 := d0.Length(), d1.Length()
	if l0 < geom.Tolerance || l1 < geom.Tolerance {
		return 0, false
	}
	c := d0.Dot(d1) / (l0 * l1)
	return math.Acos(math.Max(-1, math.Min(1, c))), true
}

// direction is the tangent of e leaving n: towards the control point, or
// towards the far endpoint when the control point sits on n.
func direction(n *graph.Node, e *graph.Edge) v2.Vec {
	d := e.Q.Sub(n.Pos)
	if d.Length() < geom.Tolerance {
		d = e.Other(n).Pos.Sub(n.Pos)
	}
	return d
}

// Analyze runs a fresh Analyzer.
func Analyze(g *graph.Graph, res form.Result, p Profile) Report {
	return New().Analyze(g, res, p)
}
