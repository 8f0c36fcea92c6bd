package pkg

import (
	"fmt"
	"slices"
	"strings"
)

// Error is a chain of errors, innermost first.
type Error []error

// ErrOpenSource is returned when a template source cannot be opened.
var ErrOpenSource = MakeErrorf("cannot open source")

// ErrReadStdin is returned when reading a template from standard input fails.
var ErrReadStdin = MakeErrorf("failed to read stdin")

// ErrInvalidFormat is returned for an output format a command does not
// support. It should be wrapped with the rejected format.
var ErrInvalidFormat = MakeErrorf("invalid format")

// ErrNoConfig is returned when a template has no configuration section.
var ErrNoConfig = MakeErrorf("template has no configuration section")

// ErrNoScript is returned when a template has no script section.
var ErrNoScript = MakeErrorf("template has no script section")

// ErrInvalidTemplate is returned when one or more templates have
// error-severity diagnostics.
var ErrInvalidTemplate = MakeErrorf("invalid template")

// MakeError constructs an Error from errs, skipping nil values. Each error's
// own chain is flattened into the result.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error joins the messages of the chain with ": ", innermost first.
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range e {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap returns a copy of e with err appended.
func (e Error) Wrap(err ...error) Error {
	return append(slices.Clip(e), err...)
}

// Wrapf returns a copy of e with a formatted error appended.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Unwrap returns the errors of the chain.
func (e Error) Unwrap() []error {
	return e
}

// Is reports whether target is a single-error sentinel such as
// [ErrNoConfig] that appears in the chain.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)

	return ok && len(t) == 1 && slices.Contains(e, t[0])
}

// UnwrapErrors flattens the chain of err, innermost first, ending with err
// itself. An Error contributes only its elements.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	var chain Error

	switch e := err.(type) {
	case Error:
		for _, wrapped := range e {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}

		return chain

	case interface{ Unwrap() []error }:
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}

	case interface{ Unwrap() error }:
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
