package form

import (
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/formcutter/pkg/geom"
	"github.com/chazu/formcutter/pkg/graph"
)

// Tracer turns a graph into forms. The zero value samples at
// geom.DefaultStep and merges points closer than geom.Epsilon.
type Tracer struct {
	Step    float64 // arc-length spacing of curve samples
	Epsilon float64 // merge distance for consecutive points
}

func (t Tracer) step() float64 {
	if t.Step > 0 {
		return t.Step
	}
	return geom.DefaultStep
}

func (t Tracer) eps() float64 {
	if t.Epsilon > 0 {
		return t.Epsilon
	}
	return geom.Epsilon
}

// Trace walks every node of g exactly once and returns the resulting forms.
// Nodes whose degree is not 2 are visited first so open chains are walked
// from an end; ties are broken by ascending id, which makes the output
// deterministic for a given graph.
func (t Tracer) Trace(g *graph.Graph) []Form {
	var ends, inner []*graph.Node
	for _, n := range g.Nodes() {
		if n.Degree() == graph.MaxDegree {
			inner = append(inner, n)
		} else {
			ends = append(ends, n)
		}
	}

	visited := make(map[graph.NodeID]bool, g.NodeCount())
	var forms []Form
	for _, n := range append(ends, inner...) {
		if visited[n.ID] {
			continue
		}
		forms = append(forms, t.walk(n, visited))
	}
	return forms
}

// walk traces the form that starts at start. The walk follows the edge not
// arrived on at every degree-2 node until it either returns to start
// (closed) or reaches a node of any other degree (open). Trace only starts
// at a degree-2 node once every chain end is consumed, so such a walk is
// always on a cycle and has no far branch to account for.
func (t Tracer) walk(start *graph.Node, visited map[graph.NodeID]bool) Form {
	f := Form{Nodes: []graph.NodeID{start.ID}}
	visited[start.ID] = true

	edges := start.Edges()
	if len(edges) == 0 {
		f.finish(t.eps())
		return f
	}

	cur, e := start, edges[0]
	for {
		next := e.Other(cur)
		t.appendCurve(&f, cur.Pos, e.Q, next.Pos)
		if next == start {
			f.Closed = true
			break
		}
		visited[next.ID] = true
		f.Nodes = append(f.Nodes, next.ID)
		if next.Degree() != graph.MaxDegree {
			break
		}
		cur, e = next, next.OtherEdge(e)
	}

	f.finish(t.eps())
	return f
}

// appendCurve samples the edge curve from p0 to p2 and appends the samples,
// dropping any closer than epsilon to the previously kept point.
func (t Tracer) appendCurve(f *Form, p0, q, p2 v2.Vec) {
	eps2 := t.eps() * t.eps()
	for _, p := range geom.SampleQuad(p0, q, p2, t.step()) {
		if n := len(f.Points); n > 0 && geom.Dist2(f.Points[n-1], p) < eps2 {
			continue
		}
		f.Points = append(f.Points, p)
	}
}
