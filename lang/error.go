package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrLex        = NewError("lex error")
	ErrSplit      = NewError("split error")
	ErrConfig     = NewError("config error")
	ErrExpression = NewError("expression error")
	ErrStatement  = NewError("statement error")
	ErrReadInput  = NewError("failed to read input")
	ErrMaxDepth   = NewError("maximum expression depth exceeded")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether e was derived from the sentinel target by [Error.Wrap]
// or [Error.With].
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.err == nil && t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// Severity classifies a diagnostic.
type Severity int

const (
	// SeverityError marks a construct that could not be parsed.
	SeverityError Severity = iota
	// SeverityWarning marks input that parsed, but not in the shape it
	// appears to have been written in.
	SeverityWarning
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic describes a problem found while parsing. The kind is one of
// the sentinels such as [ErrLex] or [ErrExpression], reachable through
// errors.Is.
type Diagnostic struct {
	Kind     *Error
	Severity Severity
	Message  string
	Token    string // offending token text, if any
	Span     Span
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	var sb strings.Builder

	sb.WriteString(d.Span.Start.String())
	sb.WriteString(": ")

	if d.Kind != nil {
		sb.WriteString(d.Kind.msg)
		sb.WriteString(": ")
	}

	sb.WriteString(d.Message)

	if d.Token != "" {
		sb.WriteString(" (near ")
		sb.WriteString(strconv.Quote(d.Token))
		sb.WriteString(")")
	}

	return sb.String()
}

// Unwrap returns the diagnostic kind.
func (d *Diagnostic) Unwrap() error {
	if d.Kind == nil {
		return nil
	}

	return d.Kind
}

// Offset returns the byte offset where the diagnostic starts.
func (d *Diagnostic) Offset() int { return d.Span.Start.Offset }

// LogValue implements slog.LogValuer.
func (d *Diagnostic) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("severity", d.Severity.String()),
		slog.String("message", d.Message),
		slog.Any("position", d.Span.Start),
	}

	if d.Kind != nil {
		attrs = append(attrs, slog.String("kind", d.Kind.msg))
	}

	if d.Token != "" {
		attrs = append(attrs, slog.String("token", d.Token))
	}

	return slog.GroupValue(attrs...)
}

// ParseError aggregates the error-severity diagnostics of a parse.
type ParseError struct {
	Diagnostics []*Diagnostic
	Source      string // The original source input
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "parse error"
	}

	if e.Source == "" {
		return e.Diagnostics[0].Error()
	}

	msg, snippet := e.formatWithContext()

	return msg + snippet
}

// Unwrap returns the individual diagnostics for errors.Is/As.
func (e *ParseError) Unwrap() []error {
	errs := make([]error, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		errs[i] = d
	}

	return errs
}

// formatWithContext formats the first diagnostic with source code context.
func (e *ParseError) formatWithContext() (string, string) {
	first := e.Diagnostics[0]

	var buf strings.Builder

	// Write error location and description
	buf.WriteString("parse error at line ")
	buf.WriteString(strconv.Itoa(first.Span.Start.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(first.Span.Start.Column))
	buf.WriteString(": ")
	buf.WriteString(first.Message)
	buf.WriteRune('\n')

	if n := len(e.Diagnostics) - 1; n > 0 {
		buf.WriteString("  (and ")
		buf.WriteString(strconv.Itoa(n))
		buf.WriteString(" more)\n")
	}

	return buf.String(), Snippet(e.Source, first.Span.Start)
}

// Snippet renders the source line containing pos followed by a caret line
// pointing at the column.
func Snippet(source string, pos Position) string {
	lines := strings.Split(source, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	line := strings.TrimSuffix(lines[pos.Line-1], "\r")

	// Print the line with line number
	src.WriteString("  ")
	src.WriteString(strconv.Itoa(pos.Line))
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(strconv.Itoa(pos.Line))+5)

	if pos.Column > 0 {
		padding += strings.Repeat(" ", pos.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}
