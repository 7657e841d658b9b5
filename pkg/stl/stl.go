// Package stl encodes meshes as binary STL on top of github.com/krasin/stl.
//
// Layout, all little endian: an 80-byte header, a uint32 facet count, then
// per facet the normal and three vertices as float32 triples followed by a
// uint16 attribute count that is always zero. The header carries the mesh
// name.
package stl

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	kstl "github.com/krasin/stl"

	"github.com/chazu/formcutter/pkg/mesh"
)

const (
	HeaderSize = 80
	CountSize  = 4
	FacetSize  = 50
)

// Size returns the encoded length of a mesh with n facets.
func Size(n int) int {
	return HeaderSize + CountSize + FacetSize*n
}

// header returns the 80-byte header. The mesh name is copied in unless it
// starts with "solid", which readers take as the mark of an ASCII file.
func header(name string) [HeaderSize]byte {
	var h [HeaderSize]byte
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(name)), "solid") {
		copy(h[:], name)
	}
	return h
}

func point(v v3.Vec) kstl.Point {
	return kstl.Point{float64(float32(v.X)), float64(float32(v.Y)), float64(float32(v.Z))}
}

func vec(p kstl.Point) v3.Vec {
	return v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}

// Triangles converts the facets of m to STL triangles.
func Triangles(m *mesh.Mesh) []kstl.Triangle {
	t := make([]kstl.Triangle, len(m.Facets))
	for i, f := range m.Facets {
		t[i] = kstl.Triangle{
			N: point(f.Normal),
			V: [3]kstl.Point{point(f.Vertices[0]), point(f.Vertices[1]), point(f.Vertices[2])},
		}
	}
	return t
}

// FromTriangles builds a mesh named name from STL triangles.
func FromTriangles(name string, t []kstl.Triangle) *mesh.Mesh {
	m := mesh.New(name)
	m.Facets = make([]mesh.Facet, len(t))
	for i, tr := range t {
		m.Facets[i] = mesh.Facet{
			Normal:   vec(tr.N),
			Vertices: [3]v3.Vec{vec(tr.V[0]), vec(tr.V[1]), vec(tr.V[2])},
		}
	}
	return m
}

// Marshal returns the binary STL encoding of m.
func Marshal(m *mesh.Mesh) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(Size(m.FacetCount()))
	if err := kstl.WriteBinary(&buf, Triangles(m)); err != nil {
		return nil, fmt.Errorf("stl: encode: %w", err)
	}
	data := buf.Bytes()
	if len(data) != Size(m.FacetCount()) {
		return nil, fmt.Errorf("stl: encoded %d bytes for %d facets", len(data), m.FacetCount())
	}
	h := header(m.Name)
	copy(data, h[:])
	return data, nil
}

// Encode writes the binary STL encoding of m to w.
func Encode(w io.Writer, m *mesh.Mesh) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("stl: write: %w", err)
	}
	return nil
}

// Unmarshal decodes a binary STL document. The header, up to its first
// zero byte, becomes the mesh name.
func Unmarshal(data []byte) (*mesh.Mesh, error) {
	if len(data) < Size(0) {
		return nil, fmt.Errorf("stl: header: %w", io.ErrUnexpectedEOF)
	}
	if bytes.HasPrefix(bytes.TrimSpace(data[:HeaderSize]), []byte("solid")) {
		return nil, fmt.Errorf("stl: ASCII documents are not supported")
	}
	t, err := kstl.Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("stl: decode: %w", err)
	}
	if len(data) != Size(len(t)) {
		return nil, fmt.Errorf("stl: %d bytes for %d facets", len(data), len(t))
	}

	name := data[:HeaderSize]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return FromTriangles(string(name), t), nil
}

// Decode reads a binary STL document from r.
func Decode(r io.Reader) (*mesh.Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("stl: read: %w", err)
	}
	return Unmarshal(data)
}

// BoundingBox returns the float32 extent of m as the STL file records it.
func BoundingBox(m *mesh.Mesh) (lo, hi v3.Vec) {
	if m.FacetCount() == 0 {
		return v3.Vec{}, v3.Vec{}
	}
	l, h := kstl.BoundingBox(Triangles(m))
	return vec(l), vec(h)
}
