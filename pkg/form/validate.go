package form

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/formcutter/pkg/geom"
	"github.com/chazu/formcutter/pkg/graph"
	"github.com/chazu/formcutter/pkg/intersect"
)

// MaxForms is the number of forms a cutter may have: one outline, or an
// outer and an inner wall.
const MaxForms = 2

// Issue codes.
const (
	CodeEmpty        = "empty"
	CodeTooManyForms = "too-many-forms"
	CodeOpenForm     = "open-form"
	CodeConcentric   = "concentric"
	CodeIntersection = "intersection"
)

// Severity indicates whether an issue blocks export or is advisory.
type Severity int

const (
	SeverityError   Severity = iota // blocks export
	SeverityWarning                 // advisory
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Issue is a single validation finding.
type Issue struct {
	Code     string
	Message  string
	Severity Severity
}

func (i Issue) Error() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Code, i.Message)
}

// Result is the outcome of validating a graph. Shape problems are reported
// here, never as Go errors.
type Result struct {
	Valid         bool
	Errors        []Issue
	Warnings      []Issue
	Forms         []Form
	Segments      []geom.Segment // all forms, in form order
	Intersections []v2.Vec
	OuterIndex    int // index of the outer form, -1 unless two forms nest
}

// Outer returns the outer form of a nested pair, or nil.
func (r *Result) Outer() *Form {
	if r.OuterIndex < 0 || r.OuterIndex >= len(r.Forms) {
		return nil
	}
	return &r.Forms[r.OuterIndex]
}

// Inner returns the inner form of a nested pair, or nil.
func (r *Result) Inner() *Form {
	if r.Outer() == nil || len(r.Forms) != MaxForms {
		return nil
	}
	return &r.Forms[1-r.OuterIndex]
}

// HasCode reports whether any error or warning carries code.
func (r *Result) HasCode(code string) bool {
	for _, list := range [][]Issue{r.Errors, r.Warnings} {
		for _, i := range list {
			if i.Code == code {
				return true
			}
		}
	}
	return false
}

func (r *Result) add(i Issue) {
	if i.Severity == SeverityError {
		r.Errors = append(r.Errors, i)
	} else {
		r.Warnings = append(r.Warnings, i)
	}
}

// Validator traces a graph and applies the form rules. It holds no state
// between calls.
type Validator struct {
	Tracer Tracer
}

// NewValidator returns a Validator with the default tracer.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs the editor checks. Self intersections are warnings.
func (v *Validator) Validate(g *graph.Graph) Result {
	return v.run(g, false)
}

// ValidateForExport runs the same checks but treats self intersections as
// errors, since an intersecting outline cannot be extruded.
func (v *Validator) ValidateForExport(g *graph.Graph) Result {
	return v.run(g, true)
}

func (v *Validator) run(g *graph.Graph, export bool) Result {
	res := Result{
		Forms:      v.Tracer.Trace(g),
		OuterIndex: -1,
	}
	for i := range res.Forms {
		res.Segments = append(res.Segments, res.Forms[i].Segments()...)
	}

	switch n := len(res.Forms); {
	case n == 0:
		res.add(Issue{Code: CodeEmpty, Message: "outline has no nodes", Severity: SeverityError})
	case n > MaxForms:
		res.add(Issue{
			Code:     CodeTooManyForms,
			Message:  fmt.Sprintf("outline has %d forms, at most %d allowed", n, MaxForms),
			Severity: SeverityError,
		})
	case n == 1:
		if !res.Forms[0].Closed {
			res.add(openIssue(0))
		}
	default:
		a, b := &res.Forms[0], &res.Forms[1]
		if !a.Closed || !b.Closed {
			for i := range res.Forms {
				if !res.Forms[i].Closed {
					res.add(openIssue(i))
				}
			}
			break
		}
		res.nest()
	}

	res.Intersections = intersect.Intersections(res.Segments)
	if len(res.Intersections) > 0 {
		sev := SeverityWarning
		if export {
			sev = SeverityError
		}
		res.add(Issue{
			Code:     CodeIntersection,
			Message:  fmt.Sprintf("outline crosses itself at %d point(s)", len(res.Intersections)),
			Severity: sev,
		})
	}

	res.Valid = len(res.Errors) == 0
	return res
}

func openIssue(i int) Issue {
	return Issue{
		Code:     CodeOpenForm,
		Message:  fmt.Sprintf("form %d is not closed", i),
		Severity: SeverityWarning,
	}
}

// nest decides which of two closed forms is the outer wall. The candidate
// must be larger in both dimensions by more than geom.Epsilon and contain
// the centroid of the other. Every point of the inner form must also lie
// inside the outer one, which catches overlaps whose crossings fall on
// sample points and so never show up as proper intersections.
func (r *Result) nest() {
	a, b := &r.Forms[0], &r.Forms[1]
	outer := -1
	switch {
	case geom.Exceeds(a.Width, b.Width, geom.Epsilon) && geom.Exceeds(a.Height, b.Height, geom.Epsilon):
		outer = 0
	case geom.Exceeds(b.Width, a.Width, geom.Epsilon) && geom.Exceeds(b.Height, a.Height, geom.Epsilon):
		outer = 1
	}
	if outer >= 0 && r.Forms[outer].Contains(r.Forms[1-outer].Centroid) && r.Forms[outer].Encloses(&r.Forms[1-outer]) {
		r.OuterIndex = outer
		return
	}
	r.add(Issue{
		Code:     CodeConcentric,
		Message:  "the two forms must be nested, one strictly inside the other",
		Severity: SeverityError,
	})
}
