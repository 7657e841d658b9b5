package graph

import (
	"errors"
	"fmt"
	"slices"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/samber/lo"

	"github.com/chazu/formcutter/pkg/geom"
)

var (
	// ErrSelfLoop is returned when an edge would join a node to itself.
	ErrSelfLoop = errors.New("graph: edge endpoints must differ")

	// ErrNodeFull is returned when a node already carries MaxDegree edges.
	ErrNodeFull = errors.New("graph: node at capacity")

	// ErrNodeNotFound is returned for an unknown node id.
	ErrNodeNotFound = errors.New("graph: node not found")

	// ErrEdgeNotFound is returned for an unknown edge id.
	ErrEdgeNotFound = errors.New("graph: edge not found")

	// ErrDuplicateID is returned when an explicit id is already in use.
	ErrDuplicateID = errors.New("graph: duplicate id")
)

// Graph owns the nodes and edges of an outline.
type Graph struct {
	nodes    map[NodeID]*Node
	edges    map[EdgeID]*Edge
	nextNode NodeID
	nextEdge EdgeID
}

// New creates an empty graph. Identity counters start at 1.
func New() *Graph {
	return &Graph{
		nodes:    make(map[NodeID]*Node),
		edges:    make(map[EdgeID]*Edge),
		nextNode: 1,
		nextEdge: 1,
	}
}

// ---------------------------------------------------------------------------
// Nodes
// ---------------------------------------------------------------------------

// AddNode adds a node at pos with a freshly allocated id.
func (g *Graph) AddNode(pos v2.Vec) *Node {
	n := &Node{ID: g.nextNode, Pos: pos}
	g.nodes[n.ID] = n
	g.nextNode++
	return n
}

// InsertNode adds a node with an explicit id and advances the node counter
// past it.
func (g *Graph) InsertNode(id NodeID, pos v2.Vec) (*Node, error) {
	if _, exists := g.nodes[id]; exists {
		return nil, fmt.Errorf("%w: node %s", ErrDuplicateID, id)
	}
	n := &Node{ID: id, Pos: pos}
	g.nodes[id] = n
	if id >= g.nextNode {
		g.nextNode = id + 1
	}
	return n, nil
}

// RemoveNode removes a node and every edge incident to it.
func (g *Graph) RemoveNode(id NodeID) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	// Edges() is a copy, so removal does not disturb the iteration.
	for _, e := range n.Edges() {
		g.detach(e)
	}
	delete(g.nodes, id)
	return nil
}

// MoveNode sets the position of a node. Control points are left alone.
func (g *Graph) MoveNode(id NodeID, pos v2.Vec) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	n.Pos = pos
	return nil
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id NodeID) *Node {
	return g.nodes[id]
}

// Nodes returns all nodes ordered by id.
func (g *Graph) Nodes() []*Node {
	ids := lo.Keys(g.nodes)
	slices.Sort(ids)
	return lo.Map(ids, func(id NodeID, _ int) *Node { return g.nodes[id] })
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// ---------------------------------------------------------------------------
// Edges
// ---------------------------------------------------------------------------

// AddEdge joins two nodes with a freshly allocated edge id. A nil q places
// the control point at the midpoint of the endpoints.
func (g *Graph) AddEdge(from, to NodeID, q *v2.Vec) (*Edge, error) {
	e, err := g.attach(g.nextEdge, from, to, q)
	if err != nil {
		return nil, err
	}
	g.nextEdge++
	return e, nil
}

// InsertEdge joins two nodes with an explicit edge id and advances the edge
// counter past it.
func (g *Graph) InsertEdge(id EdgeID, from, to NodeID, q *v2.Vec) (*Edge, error) {
	if _, exists := g.edges[id]; exists {
		return nil, fmt.Errorf("%w: edge %s", ErrDuplicateID, id)
	}
	e, err := g.attach(id, from, to, q)
	if err != nil {
		return nil, err
	}
	if id >= g.nextEdge {
		g.nextEdge = id + 1
	}
	return e, nil
}

// attach validates and registers an edge on both endpoints. Capacity is
// checked on both nodes before either is touched, so a failure leaves the
// graph unchanged.
func (g *Graph) attach(id EdgeID, from, to NodeID, q *v2.Vec) (*Edge, error) {
	if from == to {
		return nil, fmt.Errorf("%w: %s", ErrSelfLoop, from)
	}
	a, ok := g.nodes[from]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, from)
	}
	b, ok := g.nodes[to]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, to)
	}
	for _, n := range []*Node{a, b} {
		if n.Degree() >= MaxDegree {
			return nil, fmt.Errorf("%w: node %s already has %d edges", ErrNodeFull, n.ID, MaxDegree)
		}
	}

	e := &Edge{ID: id, From: a, To: b, Q: geom.Midpoint(a.Pos, b.Pos)}
	if q != nil {
		e.Q = *q
	}
	if err := a.register(e); err != nil {
		return nil, err
	}
	if err := b.register(e); err != nil {
		a.unregister(e)
		return nil, err
	}
	g.edges[id] = e
	return e, nil
}

// RemoveEdge unregisters an edge from both endpoints and drops it.
func (g *Graph) RemoveEdge(id EdgeID) error {
	e, ok := g.edges[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
	}
	g.detach(e)
	return nil
}

func (g *Graph) detach(e *Edge) {
	e.From.unregister(e)
	e.To.unregister(e)
	delete(g.edges, e.ID)
}

// SetControl moves the control point of an edge.
func (g *Graph) SetControl(id EdgeID, q v2.Vec) error {
	e, ok := g.edges[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
	}
	e.Q = q
	return nil
}

// Edge returns the edge with the given id, or nil.
func (g *Graph) Edge(id EdgeID) *Edge {
	return g.edges[id]
}

// Edges returns all edges ordered by id.
func (g *Graph) Edges() []*Edge {
	ids := lo.Keys(g.edges)
	slices.Sort(ids)
	return lo.Map(ids, func(id EdgeID, _ int) *Edge { return g.edges[id] })
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// ---------------------------------------------------------------------------
// Invariants
// ---------------------------------------------------------------------------

// CheckInvariants verifies the structural invariants: every node carries at
// most MaxDegree edges, every adjacency entry is a live edge of the graph
// touching that node, and every edge is listed exactly once by each of its
// endpoints. It is read-only and intended for tests and restored snapshots.
func (g *Graph) CheckInvariants() error {
	for _, n := range g.nodes {
		if n.Degree() > MaxDegree {
			return fmt.Errorf("graph: node %s has %d edges", n.ID, n.Degree())
		}
		for _, e := range n.edges {
			if g.edges[e.ID] != e {
				return fmt.Errorf("graph: node %s lists unknown edge %s", n.ID, e.ID)
			}
			if e.From != n && e.To != n {
				return fmt.Errorf("graph: node %s lists edge %s it is not an endpoint of", n.ID, e.ID)
			}
		}
	}
	for _, e := range g.edges {
		if e.From == e.To {
			return fmt.Errorf("graph: edge %s is a self loop", e.ID)
		}
		for _, n := range []*Node{e.From, e.To} {
			if g.nodes[n.ID] != n {
				return fmt.Errorf("graph: edge %s references unknown node %s", e.ID, n.ID)
			}
			if c := lo.Count(n.edges, e); c != 1 {
				return fmt.Errorf("graph: edge %s listed %d times by node %s", e.ID, c, n.ID)
			}
		}
	}
	return nil
}
