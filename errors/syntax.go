package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies a parse failure. A Code is itself an error so it can be used
// as a sentinel with errors.Is.
type Code string

const (
	// IllegalMarkup indicates malformed tag delimiters or content outside the root.
	IllegalMarkup Code = "illegal-markup"
	// IllegalName indicates a name that fails the name grammar.
	IllegalName Code = "illegal-name"
	// IllegalPrologue indicates a malformed or misplaced document declaration.
	IllegalPrologue Code = "illegal-prologue"
	// IllegalAttribute indicates a malformed or duplicate attribute.
	IllegalAttribute Code = "illegal-attribute"
	// IllegalChars indicates an invalid byte sequence or forbidden character.
	IllegalChars Code = "illegal-chars"
	// IllegalCommentary indicates a malformed or unterminated comment.
	IllegalCommentary Code = "illegal-commentary"
	// IllegalCdataSection indicates a malformed or unterminated CDATA section.
	IllegalCdataSection Code = "illegal-cdata-section"
	// IllegalDtd indicates a malformed, misplaced or unterminated DOCTYPE.
	IllegalDtd Code = "illegal-dtd"
	// RootElementUnbalanced indicates that tag nesting was violated.
	RootElementUnbalanced Code = "root-element-unbalanced"
	// TagMismatch indicates an end tag that does not close the open element.
	TagMismatch Code = "tag-mismatch"
	// InvalidState indicates API misuse: a parse call that does not match the
	// current lexical state.
	InvalidState Code = "invalid-state"
	// OutOfMemory indicates that a buffer could not grow to hold a token.
	OutOfMemory Code = "out-of-memory"
	// IoError indicates a failure of the underlying byte channel or transcoder.
	IoError Code = "io-error"
	// NotSupported indicates an unsupported charset or conversion.
	NotSupported Code = "not-supported"
)

var codeMessages = map[Code]string{
	IllegalMarkup:         "illegal markup",
	IllegalName:           "illegal name",
	IllegalPrologue:       "illegal document declaration",
	IllegalAttribute:      "illegal attribute",
	IllegalChars:          "illegal characters",
	IllegalCommentary:     "illegal comment",
	IllegalCdataSection:   "illegal CDATA section",
	IllegalDtd:            "illegal DOCTYPE",
	RootElementUnbalanced: "root element is unbalanced",
	TagMismatch:           "mismatched end element",
	InvalidState:          "invalid parser state",
	OutOfMemory:           "out of memory",
	IoError:               "i/o error",
	NotSupported:          "not supported",
}

// Error returns a short human readable description of the code.
func (c Code) Error() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return string(c)
}

// Syntax reports a parse failure with location context.
//
//nolint:errname // short name reads as errors.Syntax at call sites.
type Syntax struct {
	Err    error
	Code   Code
	Path   string
	Line   int
	Column int
}

// New builds a Syntax error for code at the given position.
// err may be nil when the code alone describes the failure.
func New(code Code, line, column int, err error) *Syntax {
	return &Syntax{Code: code, Line: line, Column: column, Err: err}
}

// Error formats the error with location and cause.
func (e *Syntax) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Line > 0 && e.Column > 0 {
		fmt.Fprintf(&b, "xml syntax error at line %d, column %d: %v", e.Line, e.Column, e.Code)
	} else {
		fmt.Fprintf(&b, "xml syntax error: %v", e.Code)
	}
	if e.Err != nil && !errors.Is(e.Err, e.Code) {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (in %s)", e.Path)
	}
	return b.String()
}

// Unwrap exposes both the code and the underlying cause.
func (e *Syntax) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{e.Code}
	}
	return []error{e.Code, e.Err}
}

// CodeOf reports the Code carried by err, or "" when err carries none.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if syntax, ok := AsSyntax(err); ok {
		return syntax.Code
	}
	var code Code
	if errors.As(err, &code) {
		return code
	}
	return ""
}

// AsSyntax extracts a Syntax error from err.
func AsSyntax(err error) (*Syntax, bool) {
	if err == nil {
		return nil, false
	}
	var syntax *Syntax
	if errors.As(err, &syntax) && syntax != nil {
		return syntax, true
	}
	return nil, false
}
