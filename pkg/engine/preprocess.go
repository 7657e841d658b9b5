package engine

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// keywords are the argument names the builtins read: node takes :at, edge
// takes :q and circle takes :center, :radius and :segments.
var keywords = []string{"at", "q", "center", "radius", "segments"}

// rewriter turns outline source into something zygomys reads. Outline
// scripts use Lisp conventions that zygomys lacks:
//
//   - :keyword arguments, passed on as the string "__kw_keyword";
//   - kebab-case names such as outer-ring, which zygomys would read as a
//     subtraction, renamed to outer_ring;
//   - ; line comments, rewritten as //.
//
// String literals pass through untouched. A keyword that no builtin
// accepts is reported with its position.
type rewriter struct {
	src  []byte
	pos  int
	line int
	col  int
	out  strings.Builder
	errs []EvalError
}

// rewrite returns the zygomys form of source and any unknown keywords.
func rewrite(source string) (string, []EvalError) {
	r := &rewriter{src: []byte(source), line: 1, col: 1}
	r.out.Grow(len(source) + len(source)/4)
	for r.pos < len(r.src) {
		switch c := r.src[r.pos]; {
		case c == '"' || c == '`':
			r.quoted(c)
		case c == ';':
			r.comment()
		case c == ':' && r.peek(1) == '=':
			r.copy(2)
		case c == ':' && isLetter(r.peek(1)):
			r.keyword()
		case isLetter(c) && !isIdentChar(r.peek(-1)):
			r.name()
		default:
			r.copy(1)
		}
	}
	return r.out.String(), r.errs
}

// peek returns the byte at offset d from the cursor, or 0 off either end.
func (r *rewriter) peek(d int) byte {
	if i := r.pos + d; i >= 0 && i < len(r.src) {
		return r.src[i]
	}
	return 0
}

// advance moves the cursor past one byte, tracking line and column.
func (r *rewriter) advance() {
	if r.src[r.pos] == '\n' {
		r.line++
		r.col = 0
	}
	r.pos++
	r.col++
}

func (r *rewriter) copy(n int) {
	for ; n > 0 && r.pos < len(r.src); n-- {
		r.out.WriteByte(r.src[r.pos])
		r.advance()
	}
}

// quoted copies a string literal. Backslash escapes apply inside double
// quotes only.
func (r *rewriter) quoted(q byte) {
	r.copy(1)
	for r.pos < len(r.src) && r.src[r.pos] != q {
		if q == '"' && r.src[r.pos] == '\\' {
			r.copy(2)
			continue
		}
		r.copy(1)
	}
	r.copy(1)
}

func (r *rewriter) comment() {
	r.out.WriteString("//")
	for r.pos < len(r.src) && r.src[r.pos] == ';' {
		r.advance()
	}
	for r.pos < len(r.src) && r.src[r.pos] != '\n' {
		r.copy(1)
	}
}

func (r *rewriter) keyword() {
	line, col := r.line, r.col
	r.advance()
	start := r.pos
	for r.pos < len(r.src) && isKWChar(r.src[r.pos]) {
		r.advance()
	}
	name := string(r.src[start:r.pos])
	if !lo.Contains(keywords, name) {
		r.errs = append(r.errs, EvalError{
			Line:    line,
			Col:     col,
			Message: fmt.Sprintf("unknown keyword :%s (expected one of :%s)", name, strings.Join(keywords, ", :")),
		})
	}
	r.out.WriteString(`"` + kwPrefix + name + `"`)
}

// name copies an identifier, turning every hyphen that joins two parts of
// it into an underscore. A hyphen before a digit is left alone so x-1 keeps
// reading as a subtraction.
func (r *rewriter) name() {
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		switch {
		case isIdentChar(c):
			r.copy(1)
		case c == '-' && isLetter(r.peek(1)):
			r.out.WriteByte('_')
			r.advance()
		default:
			return
		}
	}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
