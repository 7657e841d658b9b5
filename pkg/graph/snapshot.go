package graph

import (
	"bytes"
	"encoding/json"
	"io"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/pkg/errors"
)

// Point is the persisted form of a 2D position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func pointOf(v v2.Vec) Point { return Point{X: v.X, Y: v.Y} }
func (p Point) vec() v2.Vec  { return v2.Vec{X: p.X, Y: p.Y} }

// NodeRecord is a node without its adjacency list.
type NodeRecord struct {
	ID  NodeID `json:"id"`
	Pos Point  `json:"pos"`
}

// EdgeRecord is an edge with its endpoints referenced by id.
type EdgeRecord struct {
	ID   EdgeID `json:"id"`
	From NodeID `json:"from"`
	To   NodeID `json:"to"`
	Q    Point  `json:"q"`
}

// Snapshot is the flat, reference-free form of a graph used for
// persistence and backups.
type Snapshot struct {
	Nodes []NodeRecord `json:"nodes"`
	Edges []EdgeRecord `json:"edges"`
}

// ToSnapshot flattens the graph. Records are ordered by id so that equal
// graphs produce identical snapshots.
func (g *Graph) ToSnapshot() Snapshot {
	s := Snapshot{
		Nodes: make([]NodeRecord, 0, len(g.nodes)),
		Edges: make([]EdgeRecord, 0, len(g.edges)),
	}
	for _, n := range g.Nodes() {
		s.Nodes = append(s.Nodes, NodeRecord{ID: n.ID, Pos: pointOf(n.Pos)})
	}
	for _, e := range g.Edges() {
		s.Edges = append(s.Edges, EdgeRecord{
			ID:   e.ID,
			From: e.From.ID,
			To:   e.To.ID,
			Q:    pointOf(e.Q),
		})
	}
	return s
}

// FromSnapshot rebuilds a graph. Any structural problem (duplicate id,
// dangling endpoint, self loop, degree overflow) fails the whole restore;
// no partial graph is returned. Identity counters end one past the largest
// id seen.
func FromSnapshot(s Snapshot) (*Graph, error) {
	g := New()
	for i, rec := range s.Nodes {
		if _, err := g.InsertNode(rec.ID, rec.Pos.vec()); err != nil {
			return nil, errors.Wrapf(err, "snapshot: node record %d", i)
		}
	}
	for i, rec := range s.Edges {
		q := rec.Q.vec()
		if _, err := g.InsertEdge(rec.ID, rec.From, rec.To, &q); err != nil {
			return nil, errors.Wrapf(err, "snapshot: edge record %d", i)
		}
	}
	return g, nil
}

// MarshalSnapshot encodes the graph as JSON.
func MarshalSnapshot(g *Graph) ([]byte, error) {
	data, err := json.Marshal(g.ToSnapshot())
	if err != nil {
		return nil, errors.Wrap(err, "snapshot: encode")
	}
	return data, nil
}

// UnmarshalSnapshot decodes JSON produced by MarshalSnapshot. Unknown fields
// and trailing data are rejected.
func UnmarshalSnapshot(data []byte) (*Graph, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return nil, errors.Wrap(err, "snapshot: decode")
	}
	// Anything but whitespace after the document is rejected, including a
	// stray closing bracket, which More does not report.
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("snapshot: trailing data after document")
	}
	return FromSnapshot(s)
}
