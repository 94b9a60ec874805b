// errors.go — user-facing error wrapping and caret-snippet rendering.
//
// WrapErrorWithSource turns lexer/parser/runtime diagnostics into readable
// Python-style snippets with carets underlining the offending column range:
//
//	PARSE ERROR at 3:12: expected ')', found end of input
//
//	   2 | let x = (1 + 2
//	   3 |              )
//	       |            ^
//	   4 | x
//
// The snippet shows up to one line of context on each side, numbers the
// lines and underlines the [startCol, endCol) range carried by the error.
// Errors of other types pass through unchanged. Output is plain text; the
// CLI adds color on top.
package tl

import (
	"fmt"
	"strings"
)

// WrapErrorWithSource returns an error whose message is a caret-annotated
// snippet of src, when err is a *LexError, *ParseError or *RuntimeError.
// Any other error is returned as-is.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName is WrapErrorWithSource with a source name ("in <name>")
// included in the header. The returned error wraps the original, so
// errors.As still reaches the structured diagnostic.
func WrapErrorWithName(err error, srcName string, src string) error {
	switch e := err.(type) {
	case *LexError:
		return &sourceError{snippet(src, "LEXICAL ERROR", srcName, e.Line, e.Col, e.EndCol, e.Msg), err}
	case *ParseError:
		msg := fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
		return &sourceError{snippet(src, "PARSE ERROR", srcName, e.Line, e.Col, e.EndCol, msg), err}
	case *RuntimeError:
		return &sourceError{snippet(src, "RUNTIME ERROR", srcName, e.Line, e.Col, e.EndCol, e.Msg), err}
	default:
		return err
	}
}

// sourceError carries the rendered snippet while keeping the structured
// diagnostic reachable through errors.As.
type sourceError struct {
	msg   string
	inner error
}

func (e *sourceError) Error() string { return e.msg }
func (e *sourceError) Unwrap() error { return e.inner }

// snippet builds the header plus context lines with a caret underline.
// line is 1-based; col/endCol are 0-based and clamped to the source bounds.
func snippet(src, header, name string, line, col, endCol int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]
	if col < 0 {
		col = 0
	}
	if col > len(lineTxt) {
		col = len(lineTxt)
	}
	if endCol <= col {
		endCol = col + 1
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col+1, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col+1, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	fmt.Fprintf(&b, "     | %s%s\n", strings.Repeat(" ", col), strings.Repeat("^", endCol-col))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
