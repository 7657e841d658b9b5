package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/chazu/formcutter/pkg/analyze"
	"github.com/chazu/formcutter/pkg/config"
	"github.com/chazu/formcutter/pkg/engine"
	"github.com/chazu/formcutter/pkg/extrude"
	"github.com/chazu/formcutter/pkg/form"
	"github.com/chazu/formcutter/pkg/graph"
	"github.com/chazu/formcutter/pkg/mesh"
	"github.com/chazu/formcutter/pkg/stl"
)

// App is the backend facade. It holds the outline being edited and runs the
// validation, analysis and export pipeline over it. An App is meant to be
// driven from one goroutine.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	engine    *engine.Engine
	validator *form.Validator
	analyzer  *analyze.Analyzer
	extruder  *extrude.Engine
	graph     *graph.Graph
}

// EvalErrorData is a JSON-serializable error or warning for the editor.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the editor after a script run.
type EvalResult struct {
	Meshes   []*mesh.Buffers `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// ExportError is returned by Export when the outline fails export
// validation. It carries every blocking issue.
type ExportError struct {
	Issues []form.Issue
}

func (e *ExportError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		msgs[i] = is.Error()
	}
	return "outline cannot be exported: " + strings.Join(msgs, "; ")
}

// NewApp creates an App with an empty outline. A nil logger discards output.
func NewApp(cfg config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		cfg:       cfg,
		logger:    logger,
		engine:    &engine.Engine{Timeout: cfg.EvalTimeout()},
		validator: &form.Validator{Tracer: cfg.Tracer()},
		analyzer:  analyze.New(),
		extruder:  extrude.New(logger.Named("extrude")),
		graph:     graph.New(),
	}
}

// Graph returns the current outline.
func (a *App) Graph() *graph.Graph {
	return a.graph
}

// SetGraph replaces the current outline.
func (a *App) SetGraph(g *graph.Graph) {
	if g == nil {
		g = graph.New()
	}
	a.graph = g
}

// Evaluate runs an outline script. On success the resulting graph replaces
// the current outline and, when it is exportable, a preview of the cutter
// is returned. Validation issues come back as errors and warnings; the
// outline is still replaced so the editor can show it.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []*mesh.Buffers{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a path graph.
	g, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.logger.Error("evaluate failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors to the editor format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}
	a.graph = g

	// Step 3: Validate. An empty outline is not an error in the editor.
	if g.NodeCount() == 0 {
		return result
	}
	res := a.validator.Validate(g)
	for _, is := range res.Errors {
		result.Errors = append(result.Errors, issueData(is))
	}
	for _, is := range res.Warnings {
		result.Warnings = append(result.Warnings, issueData(is))
	}
	if !res.Valid {
		return result
	}

	// Step 4: Extrude a preview.
	m, err := a.extruder.CreateMesh(res, a.cfg.ExtrudeParams())
	if err != nil {
		a.logger.Error("preview failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: "extrusion failed: " + err.Error()})
		return result
	}
	result.Meshes = append(result.Meshes, m.Flatten())
	return result
}

func issueData(is form.Issue) EvalErrorData {
	return EvalErrorData{Code: is.Code, Message: is.Message}
}

// Load replaces the current outline with the contents of path: a JSON
// snapshot (.json) or an outline script (anything else).
func (a *App) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("app: load: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return a.Restore(data)
	}

	g, evalErrs, err := a.engine.Evaluate(string(data))
	if err != nil {
		return fmt.Errorf("app: load %s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		return fmt.Errorf("app: load %s: %w", path, evalErrs[0])
	}
	a.graph = g
	a.logger.Debug("outline loaded",
		zap.String("path", path),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()))
	return nil
}

// Validate runs the editor checks on the current outline.
func (a *App) Validate() form.Result {
	return a.validator.Validate(a.graph)
}

// Analyze validates the current outline and reports manufacturability
// problems.
func (a *App) Analyze() (form.Result, analyze.Report) {
	res := a.validator.Validate(a.graph)
	return res, a.analyzer.Analyze(a.graph, res, a.cfg.Profile())
}

// BuildMesh runs export validation and extrudes the cutter. Validation
// failures come back as an *ExportError.
func (a *App) BuildMesh() (*mesh.Mesh, form.Result, error) {
	res := a.validator.ValidateForExport(a.graph)
	if !res.Valid {
		a.logger.Info("export blocked", zap.Int("errors", len(res.Errors)))
		return nil, res, &ExportError{Issues: res.Errors}
	}
	for _, w := range res.Warnings {
		a.logger.Warn("exporting with warning", zap.String("code", w.Code), zap.String("message", w.Message))
	}
	m, err := a.extruder.CreateMesh(res, a.cfg.ExtrudeParams())
	if err != nil {
		return nil, res, fmt.Errorf("app: extrude: %w", err)
	}
	return m, res, nil
}

// Export writes the cutter as binary STL and returns the mesh written.
func (a *App) Export(w io.Writer) (*mesh.Mesh, error) {
	m, _, err := a.BuildMesh()
	if err != nil {
		return nil, err
	}
	if err := stl.Encode(w, m); err != nil {
		return nil, fmt.Errorf("app: export: %w", err)
	}
	return m, nil
}

// Backup serializes the current outline.
func (a *App) Backup() ([]byte, error) {
	return graph.MarshalSnapshot(a.graph)
}

// Restore replaces the current outline with a snapshot. On failure the
// current outline is left untouched.
func (a *App) Restore(data []byte) error {
	g, err := graph.UnmarshalSnapshot(data)
	if err != nil {
		return fmt.Errorf("app: restore: %w", err)
	}
	a.graph = g
	return nil
}
