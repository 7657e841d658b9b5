package extrude

import (
	"errors"
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/chazu/formcutter/pkg/form"
	"github.com/chazu/formcutter/pkg/graph"
	"github.com/chazu/formcutter/pkg/mesh"
)

var coarse = &form.Validator{Tracer: form.Tracer{Step: 1000}}

var blade = Params{Thickness: 1, Height: 10, Name: "test"}

func square(x, y, size float64) []v2.Vec {
	return []v2.Vec{{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size}}
}

func addPath(t *testing.T, g *graph.Graph, closed bool, pts ...v2.Vec) {
	t.Helper()
	ids := make([]graph.NodeID, len(pts))
	for i, p := range pts {
		ids[i] = g.AddNode(p).ID
		if i > 0 {
			_, err := g.AddEdge(ids[i-1], ids[i], nil)
			require.NoError(t, err)
		}
	}
	if closed {
		_, err := g.AddEdge(ids[len(ids)-1], ids[0], nil)
		require.NoError(t, err)
	}
}

func reversed(pts []v2.Vec) []v2.Vec {
	out := make([]v2.Vec, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// checkShell asserts the mesh is watertight and every stored normal agrees
// with the winding of its facet.
func checkShell(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	assert.True(t, m.IsClosed(), "mesh is not closed")
	for i, f := range m.Facets {
		tri := m.Triangle(i)
		n := tri.Normal()
		if d := n.Dot(f.Normal); d < 0.999 {
			t.Errorf("facet %d: winding normal %v disagrees with stored %v", i, n, f.Normal)
		}
	}
	assert.Greater(t, m.Volume(), 0.0)
}

func TestSquareFacetCountAndVolume(t *testing.T) {
	for _, tt := range []struct {
		name string
		pts  []v2.Vec
	}{
		{"clockwise on screen", square(0, 0, 20)},
		{"counter clockwise on screen", reversed(square(0, 0, 20))},
	} {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			addPath(t, g, true, tt.pts...)
			res := coarse.ValidateForExport(g)
			require.True(t, res.Valid)

			m, err := New(zaptest.NewLogger(t)).CreateMesh(res, blade)
			require.NoError(t, err)
			assert.Equal(t, "test", m.Name)
			assert.Equal(t, 32, m.FacetCount())
			checkShell(t, m)

			// Mitered corners keep the wall a full thickness all round:
			// squares with sides 21 and 19.
			assert.InDelta(t, (21*21-19*19)*10.0, m.Volume(), 1e-6)

			b := m.Bounds()
			assert.InDelta(t, 0.0, b.Min.Z, 1e-12)
			assert.InDelta(t, 10.0, b.Max.Z, 1e-12)
			assert.Less(t, b.Min.Y, -19.0, "screen y maps to negative model y")
		})
	}
}

func TestFacetCountIsDeterministic(t *testing.T) {
	g := graph.New()
	addPath(t, g, true, square(0, 0, 20)...)
	q := v2.Vec{X: 10, Y: -8}
	require.NoError(t, g.SetControl(g.Edges()[0].ID, q))

	res := form.NewValidator().ValidateForExport(g)
	require.True(t, res.Valid)
	n := len(res.Forms[0].Points)

	first, err := CreateMesh(res, blade)
	require.NoError(t, err)
	second, err := CreateMesh(res, blade)
	require.NoError(t, err)

	assert.Equal(t, 8*n, first.FacetCount())
	assert.Equal(t, first.FacetCount(), second.FacetCount())
	checkShell(t, first)
}

func TestOpenFormHasEndCaps(t *testing.T) {
	g := graph.New()
	addPath(t, g, false, v2.Vec{X: 0, Y: 0}, v2.Vec{X: 20, Y: 0}, v2.Vec{X: 20, Y: 20})
	res := coarse.ValidateForExport(g)
	require.True(t, res.Valid)

	m, err := CreateMesh(res, blade)
	require.NoError(t, err)
	assert.Equal(t, 8*2+4, m.FacetCount())
	checkShell(t, m)
}

func TestNestedFormsAreBridged(t *testing.T) {
	g := graph.New()
	addPath(t, g, true, square(0, 0, 100)...)
	addPath(t, g, true, square(30, 30, 40)...)
	res := coarse.ValidateForExport(g)
	require.True(t, res.Valid, "%v", res.Errors)
	require.GreaterOrEqual(t, res.OuterIndex, 0)

	m, err := New(zaptest.NewLogger(t)).CreateMesh(res, blade)
	require.NoError(t, err)

	// Each crossed edge gains two points. The bars replace one wall face
	// per ring and add four faces of their own.
	assert.Equal(t, 8*8+8*8-2*2*2+2*4*2, m.FacetCount())
	checkShell(t, m)
	assert.Equal(t, 1, m.Shells())

	// Two bars of 29 x 1 x 10 between the inner face of the outer wall
	// (x = 0.5) and the outer face of the inner wall (x = 29.5).
	rings := (101*101 - 99*99) * 10.0
	rings += (41*41 - 39*39) * 10.0
	assert.InDelta(t, rings+2*290, m.Volume(), 1e-6)
}

func TestBridgeWithoutScanLineLeavesTwoShells(t *testing.T) {
	outer := newRing(&form.Form{Points: square(0, 0, 100), Closed: true})
	inner := newRing(&form.Form{Points: square(30, 30, 40), Closed: true})
	e := New(zaptest.NewLogger(t))

	// A scan line above both forms crosses neither wall.
	_, err := e.bridge(outer, inner, v2.Vec{X: 50, Y: 500}, blade)
	assert.ErrorIs(t, err, errNoScanLine)
	assert.Len(t, outer.pts, 4)
	assert.Empty(t, outer.openLeft)
}

func TestNestedScanThroughVertexIsNudged(t *testing.T) {
	g := graph.New()
	// Diamonds: the inner centroid's horizontal passes through the side
	// vertices of both forms.
	addPath(t, g, true,
		v2.Vec{X: 50, Y: 0}, v2.Vec{X: 100, Y: 50}, v2.Vec{X: 50, Y: 100}, v2.Vec{X: 0, Y: 50})
	addPath(t, g, true,
		v2.Vec{X: 50, Y: 30}, v2.Vec{X: 70, Y: 50}, v2.Vec{X: 50, Y: 70}, v2.Vec{X: 30, Y: 50})
	res := coarse.ValidateForExport(g)
	require.True(t, res.Valid, "%v", res.Errors)

	m, err := CreateMesh(res, blade)
	require.NoError(t, err)
	checkShell(t, m)
	assert.Equal(t, 1, m.Shells())
}

func TestSplitKeepsSpanInsideEdge(t *testing.T) {
	tests := []struct {
		name      string
		at        v2.Vec
		wantFirst int
		wantPts   []v2.Vec
	}{
		{"middle", v2.Vec{X: 5}, 1, []v2.Vec{{X: 0}, {X: 4.5}, {X: 5.5}, {X: 10}, {X: 10, Y: 10}}},
		{"near start", v2.Vec{X: 0.2}, 0, []v2.Vec{{X: 0}, {X: 1}, {X: 10}, {X: 10, Y: 10}}},
		{"near end", v2.Vec{X: 9.9}, 1, []v2.Vec{{X: 0}, {X: 9}, {X: 10}, {X: 10, Y: 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &ring{pts: []v2.Vec{{X: 0}, {X: 10}, {X: 10, Y: 10}}, closed: true}
			first := r.split(0, tt.at, 1)
			assert.Equal(t, tt.wantFirst, first)
			require.Len(t, r.pts, len(tt.wantPts))
			for i, p := range tt.wantPts {
				assert.InDelta(t, p.X, r.pts[i].X, 1e-12, "point %d", i)
				assert.InDelta(t, p.Y, r.pts[i].Y, 1e-12, "point %d", i)
			}
		})
	}

	short := &ring{pts: []v2.Vec{{X: 0}, {X: 0.5}, {X: 0, Y: 3}}, closed: true}
	assert.Equal(t, 0, short.split(0, v2.Vec{X: 0.25}, 1))
	assert.Len(t, short.pts, 3)
}

func TestMiterIsClamped(t *testing.T) {
	// A needle-sharp spike: the unclamped miter would reach far past the
	// tip.
	r := newRing(&form.Form{
		Points: []v2.Vec{{X: 0, Y: 0}, {X: 100, Y: 1}, {X: 0, Y: 2}},
		Closed: true,
	})
	r.offset(0.5)
	for i, p := range r.pts {
		assert.LessOrEqual(t, r.left[i].Sub(p).Length(), 0.5*miterLimit+1e-9, "point %d", i)
		assert.LessOrEqual(t, r.right[i].Sub(p).Length(), 0.5*miterLimit+1e-9, "point %d", i)
	}

	// A right angle is mitered in full: half a thickness from both edges.
	sq := newRing(&form.Form{Points: square(0, 0, 10), Closed: true})
	sq.offset(0.5)
	for i, p := range sq.pts {
		assert.InDelta(t, 0.5*math.Sqrt2, sq.left[i].Sub(p).Length(), 1e-12, "point %d", i)
	}
}

func TestCreateMeshErrors(t *testing.T) {
	g := graph.New()
	addPath(t, g, true, square(0, 0, 20)...)
	res := coarse.ValidateForExport(g)

	_, err := CreateMesh(res, Params{Thickness: 0, Height: 10})
	assert.Error(t, err)
	_, err = CreateMesh(res, Params{Thickness: 1, Height: -1})
	assert.Error(t, err)

	_, err = CreateMesh(form.Result{OuterIndex: -1}, blade)
	assert.True(t, errors.Is(err, ErrNoForms))

	lonely := graph.New()
	lonely.AddNode(v2.Vec{})
	lonely.AddNode(v2.Vec{X: 4})
	_, err = CreateMesh(coarse.Validate(lonely), blade)
	assert.True(t, errors.Is(err, ErrNoForms))
}
