// Package mesh holds the triangle mesh produced by the extrusion engine.
package mesh

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Facet is one triangle with its outward unit normal. Vertices are counter
// clockwise when seen from the side the normal points to.
type Facet struct {
	Normal   v3.Vec
	Vertices [3]v3.Vec
}

// Mesh is a list of facets plus a free-text name.
type Mesh struct {
	Name   string
	Facets []Facet
}

// New returns an empty mesh with the given name.
func New(name string) *Mesh {
	return &Mesh{Name: name}
}

// Add appends a facet.
func (m *Mesh) Add(n v3.Vec, a, b, c v3.Vec) {
	m.Facets = append(m.Facets, Facet{Normal: n, Vertices: [3]v3.Vec{a, b, c}})
}

// Append appends all facets of other.
func (m *Mesh) Append(other *Mesh) {
	m.Facets = append(m.Facets, other.Facets...)
}

// FacetCount returns the number of facets.
func (m *Mesh) FacetCount() int {
	return len(m.Facets)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Facets) == 0
}

// Triangle returns facet i as an sdfx triangle.
func (m *Mesh) Triangle(i int) sdf.Triangle3 {
	return sdf.Triangle3(m.Facets[i].Vertices)
}

// Bounds returns the axis-aligned bounding box of all vertices. An empty
// mesh has a zero box.
func (m *Mesh) Bounds() sdf.Box3 {
	if m.IsEmpty() {
		return sdf.Box3{}
	}
	lo := m.Facets[0].Vertices[0]
	hi := lo
	for _, f := range m.Facets {
		for _, v := range f.Vertices {
			lo = v3.Vec{X: math.Min(lo.X, v.X), Y: math.Min(lo.Y, v.Y), Z: math.Min(lo.Z, v.Z)}
			hi = v3.Vec{X: math.Max(hi.X, v.X), Y: math.Max(hi.Y, v.Y), Z: math.Max(hi.Z, v.Z)}
		}
	}
	return sdf.Box3{Min: lo, Max: hi}
}

// Volume returns the signed volume enclosed by the mesh (divergence
// theorem). A closed mesh with outward normals has positive volume.
func (m *Mesh) Volume() float64 {
	var sum float64
	for _, f := range m.Facets {
		a, b, c := f.Vertices[0], f.Vertices[1], f.Vertices[2]
		sum += a.Dot(b.Cross(c))
	}
	return sum / 6
}

// Buffers is a flat, indexed copy of the mesh for preview renderers.
// Vertices and Normals carry 3 floats per vertex, Indices 3 per triangle.
type Buffers struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
}

// VertexCount returns the number of vertices.
func (b *Buffers) VertexCount() int {
	return len(b.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (b *Buffers) TriangleCount() int {
	return len(b.Indices) / 3
}

// Flatten converts the mesh to flat buffers with per-facet normals.
func (m *Mesh) Flatten() *Buffers {
	n := len(m.Facets) * 3
	b := &Buffers{
		Vertices: make([]float32, 0, n*3),
		Normals:  make([]float32, 0, n*3),
		Indices:  make([]uint32, 0, n),
		Name:     m.Name,
	}
	for i, f := range m.Facets {
		nx, ny, nz := float32(f.Normal.X), float32(f.Normal.Y), float32(f.Normal.Z)
		for j, v := range f.Vertices {
			b.Vertices = append(b.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			b.Normals = append(b.Normals, nx, ny, nz)
			b.Indices = append(b.Indices, uint32(i*3+j))
		}
	}
	return b
}
