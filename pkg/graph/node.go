package graph

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// MaxDegree is the number of edges a node can carry.
const MaxDegree = 2

// NodeID identifies a node within a graph.
type NodeID int

// EdgeID identifies an edge within a graph.
type EdgeID int

func (id NodeID) String() string { return fmt.Sprintf("n%d", int(id)) }
func (id EdgeID) String() string { return fmt.Sprintf("e%d", int(id)) }

// Node is a point on the outline with up to MaxDegree adjacent edges.
type Node struct {
	ID    NodeID
	Pos   v2.Vec
	edges []*Edge
}

// Degree returns the number of adjacent edges.
func (n *Node) Degree() int {
	return len(n.edges)
}

// Edges returns a copy of the adjacency list in registration order.
func (n *Node) Edges() []*Edge {
	out := make([]*Edge, len(n.edges))
	copy(out, n.edges)
	return out
}

// OtherEdge returns the adjacent edge that is not e, or nil when the node
// does not have exactly two edges.
func (n *Node) OtherEdge(e *Edge) *Edge {
	if len(n.edges) != MaxDegree {
		return nil
	}
	if n.edges[0] == e {
		return n.edges[1]
	}
	return n.edges[0]
}

// register appends e to the adjacency list. It fails without mutating the
// node when the node is already at capacity.
func (n *Node) register(e *Edge) error {
	if len(n.edges) >= MaxDegree {
		return fmt.Errorf("%w: node %s already has %d edges", ErrNodeFull, n.ID, MaxDegree)
	}
	n.edges = append(n.edges, e)
	return nil
}

// unregister removes e from the adjacency list if present.
func (n *Node) unregister(e *Edge) {
	for i, x := range n.edges {
		if x == e {
			n.edges = append(n.edges[:i], n.edges[i+1:]...)
			return
		}
	}
}

// Edge is a quadratic Bézier between two distinct nodes. The endpoints are
// owned by the graph; the edge only references them.
type Edge struct {
	ID       EdgeID
	From, To *Node
	Q        v2.Vec // control point
}

// Other returns the endpoint opposite n.
func (e *Edge) Other(n *Node) *Node {
	if e.From == n {
		return e.To
	}
	return e.From
}

