package mesh

import (
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// addBox appends the six outward-facing sides of b as 12 facets.
func addBox(m *Mesh, b sdf.Box3) {
	x0, y0, z0 := b.Min.X, b.Min.Y, b.Min.Z
	x1, y1, z1 := b.Max.X, b.Max.Y, b.Max.Z
	p := func(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

	m.Quad(v3.Vec{X: -1}, p(x0, y0, z0), p(x0, y0, z1), p(x0, y1, z1), p(x0, y1, z0))
	m.Quad(v3.Vec{X: 1}, p(x1, y0, z0), p(x1, y1, z0), p(x1, y1, z1), p(x1, y0, z1))
	m.Quad(v3.Vec{Y: -1}, p(x0, y0, z0), p(x1, y0, z0), p(x1, y0, z1), p(x0, y0, z1))
	m.Quad(v3.Vec{Y: 1}, p(x0, y1, z0), p(x0, y1, z1), p(x1, y1, z1), p(x1, y1, z0))
	m.Quad(v3.Vec{Z: -1}, p(x0, y0, z0), p(x0, y1, z0), p(x1, y1, z0), p(x1, y0, z0))
	m.Quad(v3.Vec{Z: 1}, p(x0, y0, z1), p(x1, y0, z1), p(x1, y1, z1), p(x0, y1, z1))
}

func unitCube() *Mesh {
	m := New("cube")
	addBox(m, sdf.Box3{Min: v3.Vec{}, Max: v3.Vec{X: 1, Y: 1, Z: 1}})
	return m
}

func TestBoxFacetCount(t *testing.T) {
	m := unitCube()
	if m.FacetCount() != 12 {
		t.Fatalf("FacetCount() = %d, want 12", m.FacetCount())
	}
	if m.IsEmpty() {
		t.Error("cube should not be empty")
	}
}

func TestBoxNormalsMatchWinding(t *testing.T) {
	m := unitCube()
	for i, f := range m.Facets {
		tri := m.Triangle(i)
		n := tri.Normal()
		if d := n.Dot(f.Normal); d < 0.999 {
			t.Errorf("facet %d: winding normal %v disagrees with stored %v", i, n, f.Normal)
		}
	}
}

func TestBoxVolumeAndBounds(t *testing.T) {
	m := New("box")
	addBox(m, sdf.Box3{Min: v3.Vec{X: -1, Y: 2, Z: 0}, Max: v3.Vec{X: 3, Y: 4, Z: 5}})

	if v := m.Volume(); v < 40-1e-9 || v > 40+1e-9 {
		t.Errorf("Volume() = %v, want 40", v)
	}
	b := m.Bounds()
	if b.Min != (v3.Vec{X: -1, Y: 2, Z: 0}) || b.Max != (v3.Vec{X: 3, Y: 4, Z: 5}) {
		t.Errorf("Bounds() = %v", b)
	}
}

func TestIsClosed(t *testing.T) {
	m := unitCube()
	if !m.IsClosed() {
		t.Fatal("cube should be closed")
	}

	open := &Mesh{Facets: m.Facets[:11]}
	if open.IsClosed() {
		t.Error("cube missing a facet should not be closed")
	}

	flipped := unitCube()
	f := &flipped.Facets[0]
	f.Vertices[1], f.Vertices[2] = f.Vertices[2], f.Vertices[1]
	if flipped.IsClosed() {
		t.Error("cube with one flipped facet should not be closed")
	}

	if New("").IsClosed() {
		t.Error("empty mesh should not be closed")
	}
}

func TestEmptyMesh(t *testing.T) {
	m := New("empty")
	if !m.IsEmpty() {
		t.Error("new mesh should be empty")
	}
	if m.Bounds() != (sdf.Box3{}) {
		t.Error("empty mesh bounds should be zero")
	}
	if m.Volume() != 0 {
		t.Error("empty mesh volume should be zero")
	}
}

func TestFlatten(t *testing.T) {
	m := unitCube()
	b := m.Flatten()

	if b.TriangleCount() != 12 {
		t.Errorf("TriangleCount() = %d, want 12", b.TriangleCount())
	}
	if b.VertexCount() != 36 {
		t.Errorf("VertexCount() = %d, want 36", b.VertexCount())
	}
	if len(b.Normals) != len(b.Vertices) {
		t.Errorf("normals %d != vertices %d", len(b.Normals), len(b.Vertices))
	}
	if b.Name != "cube" {
		t.Errorf("Name = %q", b.Name)
	}
	for i, idx := range b.Indices {
		if int(idx) != i {
			t.Fatalf("index %d = %d", i, idx)
		}
	}
}

func TestAppend(t *testing.T) {
	m := unitCube()
	m.Append(unitCube())
	if m.FacetCount() != 24 {
		t.Errorf("FacetCount() = %d, want 24", m.FacetCount())
	}
}

func TestShells(t *testing.T) {
	if n := New("empty").Shells(); n != 0 {
		t.Errorf("empty mesh: Shells() = %d, want 0", n)
	}

	m := unitCube()
	if n := m.Shells(); n != 1 {
		t.Errorf("cube: Shells() = %d, want 1", n)
	}

	// Touching at a corner joins two boxes; a gap keeps them apart.
	addBox(m, sdf.Box3{Min: v3.Vec{X: 1, Y: 1, Z: 1}, Max: v3.Vec{X: 2, Y: 2, Z: 2}})
	if n := m.Shells(); n != 1 {
		t.Errorf("corner-touching boxes: Shells() = %d, want 1", n)
	}
	addBox(m, sdf.Box3{Min: v3.Vec{X: 5}, Max: v3.Vec{X: 6, Y: 1, Z: 1}})
	if n := m.Shells(); n != 2 {
		t.Errorf("separate boxes: Shells() = %d, want 2", n)
	}
}
