package mesh

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Quad appends the planar quad a, b, c, d as the triangles (a, b, c) and
// (a, c, d). The corners must be counter clockwise seen from n.
func (m *Mesh) Quad(n v3.Vec, a, b, c, d v3.Vec) {
	m.Add(n, a, b, c)
	m.Add(n, a, c, d)
}

type directedEdge struct {
	from, to v3.Vec
}

// IsClosed reports whether every directed edge is matched by its reverse,
// which holds for a watertight, consistently wound mesh whose shells share
// exact vertex coordinates.
func (m *Mesh) IsClosed() bool {
	if m.IsEmpty() {
		return false
	}
	count := make(map[directedEdge]int, len(m.Facets)*3)
	for _, f := range m.Facets {
		for i := range f.Vertices {
			a, b := f.Vertices[i], f.Vertices[(i+1)%3]
			count[directedEdge{a, b}]++
		}
	}
	for e, n := range count {
		if count[directedEdge{e.to, e.from}] != n {
			return false
		}
	}
	return true
}

// Shells returns the number of connected pieces, where facets sharing a
// vertex coordinate are connected. A printable cutter is one shell.
func (m *Mesh) Shells() int {
	ids := make(map[v3.Vec]int, len(m.Facets))
	var parent []int
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	id := func(v v3.Vec) int {
		i, ok := ids[v]
		if !ok {
			i = len(parent)
			ids[v] = i
			parent = append(parent, i)
		}
		return i
	}

	for _, f := range m.Facets {
		a := find(id(f.Vertices[0]))
		for _, v := range f.Vertices[1:] {
			if b := find(id(v)); b != a {
				parent[b] = a
			}
		}
	}
	shells := 0
	for i := range parent {
		if parent[i] == i {
			shells++
		}
	}
	return shells
}
