// Package extrude turns validated forms into a closed triangle mesh: the
// blade of the cutter. Every form becomes a hollow wall of the configured
// thickness and height; a nested outer and inner form are tied together by
// bridge bars along a scan line through the inner form.
package extrude

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/chazu/formcutter/pkg/form"
	"github.com/chazu/formcutter/pkg/mesh"
)

// ErrNoForms is returned when the result holds no form with at least two
// points.
var ErrNoForms = errors.New("extrude: nothing to extrude")

// Params are the physical blade dimensions, in drawing units.
type Params struct {
	Thickness float64 // wall thickness
	Height    float64 // wall height
	Name      string  // mesh name, written to the STL header
}

// Validate checks that the dimensions are usable.
func (p Params) Validate() error {
	if p.Thickness <= 0 {
		return fmt.Errorf("extrude: thickness must be positive, got %g", p.Thickness)
	}
	if p.Height <= 0 {
		return fmt.Errorf("extrude: height must be positive, got %g", p.Height)
	}
	return nil
}

// Engine builds cutter meshes. It keeps no state between calls.
type Engine struct {
	Logger *zap.Logger
}

// New returns an Engine. A nil logger discards output.
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Logger: logger}
}

func (e *Engine) log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// CreateMesh extrudes the forms of res. The result is assumed to have
// passed validation: shape rules are not checked again here. The error is
// reserved for unusable parameters or a result with nothing to extrude.
func (e *Engine) CreateMesh(res form.Result, p Params) (*mesh.Mesh, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var rings []*ring
	var outer, inner *ring
	for i := range res.Forms {
		r := newRing(&res.Forms[i])
		if r.edgeCount() == 0 {
			continue
		}
		rings = append(rings, r)
		switch {
		case &res.Forms[i] == res.Outer():
			outer = r
		case &res.Forms[i] == res.Inner():
			inner = r
		}
	}
	if len(rings) == 0 {
		return nil, ErrNoForms
	}

	var links []link
	if outer != nil && inner != nil && outer.closed && inner.closed {
		var err error
		links, err = e.bridge(outer, inner, toModel(res.Inner().Centroid), p)
		if err != nil {
			e.log().Warn("walls left unconnected", zap.Error(err))
		} else {
			e.log().Debug("bridged walls", zap.Int("bridges", len(links)))
		}
	}

	m := mesh.New(p.Name)
	for _, r := range rings {
		r.offset(p.Thickness / 2)
		r.emit(m, p.Height)
		e.log().Debug("extruded form",
			zap.Int("points", len(r.pts)),
			zap.Bool("closed", r.closed),
			zap.Int("facets", r.facetCount()),
		)
	}
	if len(links) > 0 {
		emitBridges(m, outer, inner, links, p.Height)
	}

	if shells := m.Shells(); shells != 1 {
		e.log().Warn("mesh is not one piece", zap.Int("shells", shells))
	}
	e.log().Info("mesh created",
		zap.String("name", p.Name),
		zap.Int("facets", m.FacetCount()),
	)
	return m, nil
}

// CreateMesh extrudes res with a silent Engine.
func CreateMesh(res form.Result, p Params) (*mesh.Mesh, error) {
	return New(nil).CreateMesh(res, p)
}
