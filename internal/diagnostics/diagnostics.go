// Package diagnostics formats compiler errors with source context and a
// caret pointing at the offending column, the way the example corpus's
// error-reporting packages do. Every stage of the pipeline (kind inference,
// type inference, STG translation) raises a *Error carrying a Kind and,
// wherever one is available, a source line.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/htlc-project/htlc/internal/ast"
)

// Kind classifies a diagnostic by which pipeline stage raised it.
type Kind int

const (
	ParseError Kind = iota
	KindError
	TypeError
	InvariantViolation
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "parse error"
	case KindError:
		return "kind error"
	case TypeError:
		return "type error"
	case InvariantViolation:
		return "internal error"
	default:
		return "error"
	}
}

// Error is a single compiler diagnostic.
type Error struct {
	Kind    Kind
	Message string
	Pos     ast.Position // zero value if no position is available
}

func (e *Error) Error() string {
	if e.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Message)
}

// New constructs a positioned diagnostic.
func New(kind Kind, pos ast.Position, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// Unpositioned constructs a diagnostic with no source line, for errors that
// are not tied to a single AST node (e.g. "type signature for N with no
// matching binding", reported against the binder name rather than a line).
func Unpositioned(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Bug reports an invariant violation: an internal consistency bug such as an
// unexpected AST shape or an unsaturated constructor in a supposedly
// validated form. These are fatal bugs, not user errors.
func Bug(format string, args ...interface{}) *Error {
	return &Error{Kind: InvariantViolation, Message: fmt.Sprintf(format, args...)}
}

// Format renders err with a source-line + caret, the way CWBudde-go-dws's
// internal/errors package formats compiler diagnostics. If source is empty
// or err has no position, only the header line is produced.
func (e *Error) Format(source string, color bool) string {
	var sb strings.Builder

	if e.Pos.Line == 0 {
		sb.WriteString(fmt.Sprintf("%s: %s\n", e.Kind, e.Message))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("%s at line %d, column %d:\n", e.Kind, e.Pos.Line, e.Pos.Column))

	if line := sourceLine(source, e.Pos.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")

		col := e.Pos.Column
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+col-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	sb.WriteString("\n")
	return sb.String()
}

func sourceLine(source string, line int) string {
	if source == "" {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// Diagnostics collects every error raised during a single compile run,
// preserving the order they were raised in for deterministic output.
type Diagnostics struct {
	Errors []*Error
}

// Add appends err to the collection.
func (d *Diagnostics) Add(err *Error) {
	d.Errors = append(d.Errors, err)
}

// HasErrors reports whether any diagnostic has been recorded.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// FormatAll renders every collected diagnostic against source.
func (d *Diagnostics) FormatAll(source string, color bool) string {
	var sb strings.Builder
	for _, e := range d.Errors {
		sb.WriteString(e.Format(source, color))
	}
	return sb.String()
}
