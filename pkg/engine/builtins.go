package engine

import (
	"fmt"
	"math"
	"strings"

	v2 "github.com/deadsy/sdfx/vec/v2"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/formcutter/pkg/graph"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec2 wraps a 2D point.
type sexpVec2 struct {
	vec v2.Vec
}

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.vec.X, v.vec.Y)
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id graph.NodeID
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(noderef %s)", n.id)
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpEdgeRef wraps a graph.EdgeID.
type sexpEdgeRef struct {
	id graph.EdgeID
}

func (e *sexpEdgeRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(edgeref %s)", e.id)
}
func (e *sexpEdgeRef) Type() *zygo.RegisteredType { return nil }

// sexpShape is the chain of nodes created by polygon, polyline or circle.
type sexpShape struct {
	nodes  []graph.NodeID
	closed bool
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	kind := "polyline"
	if s.closed {
		kind = "polygon"
	}
	return fmt.Sprintf("(%s %d nodes)", kind, len(s.nodes))
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by rewrite.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toVec2 extracts a point from a sexpVec2.
func toVec2(s zygo.Sexp) (v2.Vec, error) {
	if v, ok := s.(*sexpVec2); ok {
		return v.vec, nil
	}
	return v2.Vec{}, fmt.Errorf("expected vec2, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return 0, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toPoints extracts the vec2 arguments of a chain builtin. A single list
// or array argument is flattened.
func toPoints(args []zygo.Sexp) ([]v2.Vec, error) {
	if len(args) == 1 {
		if items, err := sexpListToSlice(args[0]); err == nil {
			args = items
		}
	}
	pts := make([]v2.Vec, 0, len(args))
	for i, a := range args {
		p, err := toVec2(a)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		pts = append(pts, p)
	}
	return pts, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Graph construction helpers
// ---------------------------------------------------------------------------

// addChain adds a node per point and joins consecutive nodes with straight
// edges, closing the loop when closed is set. Each entry of controls, when
// non-nil, is the control point of the edge leaving the node at that index.
func addChain(g *graph.Graph, pts []v2.Vec, controls []*v2.Vec, closed bool) (*sexpShape, error) {
	shape := &sexpShape{closed: closed}
	for _, p := range pts {
		shape.nodes = append(shape.nodes, g.AddNode(p).ID)
	}
	n := len(shape.nodes)
	edges := n - 1
	if closed {
		edges = n
	}
	for i := 0; i < edges; i++ {
		var q *v2.Vec
		if i < len(controls) {
			q = controls[i]
		}
		if _, err := g.AddEdge(shape.nodes[i], shape.nodes[(i+1)%n], q); err != nil {
			return nil, err
		}
	}
	return shape, nil
}

// circlePoints places n nodes on a circle and returns them with control
// points where the tangents of neighbouring nodes meet, so every edge
// leaves and enters its nodes along the circle.
func circlePoints(center v2.Vec, radius float64, n int) ([]v2.Vec, []*v2.Vec) {
	pts := make([]v2.Vec, n)
	controls := make([]*v2.Vec, n)
	step := 2 * math.Pi / float64(n)
	reach := radius / math.Cos(step/2)
	for i := 0; i < n; i++ {
		a := step * float64(i)
		pts[i] = center.Add(v2.Vec{X: math.Cos(a), Y: math.Sin(a)}.MulScalar(radius))
		mid := a + step/2
		q := center.Add(v2.Vec{X: math.Cos(mid), Y: math.Sin(mid)}.MulScalar(reach))
		controls[i] = &q
	}
	return pts, controls
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the outline builtins into a zygomys environment.
// The builtins operate on the provided graph, populating it during evaluation.
//
// Source code must be passed through rewrite before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.Graph) {

	// -----------------------------------------------------------------------
	// (vec2 10 20)
	// -----------------------------------------------------------------------
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("vec2 requires exactly 2 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: y: %w", err)
		}
		return &sexpVec2{vec: v2.Vec{X: x, Y: y}}, nil
	})

	// -----------------------------------------------------------------------
	// (node 10 20) or (node :at (vec2 10 20))
	// -----------------------------------------------------------------------
	env.AddFunction("node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var pos v2.Vec

		switch {
		case pa.kw["at"] != nil:
			p, err := toVec2(pa.kw["at"])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("node: at: %w", err)
			}
			pos = p
		case len(pa.positional) == 1:
			p, err := toVec2(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("node: %w", err)
			}
			pos = p
		case len(pa.positional) == 2:
			x, err := toFloat64(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("node: x: %w", err)
			}
			y, err := toFloat64(pa.positional[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("node: y: %w", err)
			}
			pos = v2.Vec{X: x, Y: y}
		default:
			return zygo.SexpNull, fmt.Errorf("node requires x and y, a vec2, or :at")
		}

		return &sexpNodeRef{id: g.AddNode(pos).ID}, nil
	})

	// -----------------------------------------------------------------------
	// (edge a b) or (edge a b :q (vec2 15 -5))
	// -----------------------------------------------------------------------
	env.AddFunction("edge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("edge requires two node references, got %d arguments", len(pa.positional))
		}
		from, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge: from: %w", err)
		}
		to, err := toNodeRef(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge: to: %w", err)
		}

		var q *v2.Vec
		if v, ok := pa.kw["q"]; ok {
			p, err := toVec2(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("edge: q: %w", err)
			}
			q = &p
		}

		e, err := g.AddEdge(from, to, q)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge: %w", err)
		}
		return &sexpEdgeRef{id: e.ID}, nil
	})

	// -----------------------------------------------------------------------
	// (polygon (vec2 0 0) (vec2 40 0) (vec2 20 30))
	// (polyline (vec2 0 0) (vec2 40 0) (vec2 20 30))
	// -----------------------------------------------------------------------
	chain := func(closed bool, minPoints int) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pts, err := toPoints(args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			if len(pts) < minPoints {
				return zygo.SexpNull, fmt.Errorf("%s requires at least %d points, got %d", name, minPoints, len(pts))
			}
			shape, err := addChain(g, pts, nil, closed)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return shape, nil
		}
	}
	env.AddFunction("polygon", chain(true, 3))
	env.AddFunction("polyline", chain(false, 2))

	// -----------------------------------------------------------------------
	// (circle :center (vec2 50 50) :radius 30 :segments 8)
	// -----------------------------------------------------------------------
	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var center v2.Vec
		radius, segments := 0.0, 8

		if v, ok := pa.kw["center"]; ok {
			p, err := toVec2(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("circle: center: %w", err)
			}
			center = p
		}
		if v, ok := pa.kw["radius"]; ok {
			r, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("circle: radius: %w", err)
			}
			radius = r
		}
		if v, ok := pa.kw["segments"]; ok {
			s, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("circle: segments: %w", err)
			}
			segments = int(s)
		}
		if radius <= 0 {
			return zygo.SexpNull, fmt.Errorf("circle requires a positive :radius")
		}
		if segments < 3 {
			return zygo.SexpNull, fmt.Errorf("circle requires at least 3 segments, got %d", segments)
		}

		pts, controls := circlePoints(center, radius, segments)
		shape, err := addChain(g, pts, controls, true)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: %w", err)
		}
		return shape, nil
	})
}
