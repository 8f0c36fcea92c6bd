package cmd

import (
	"errors"
	"log/slog"
	"strings"
)

// Error is a command failure, optionally tied to one source file.
type Error struct {
	Cmd  string // subcommand name
	File string // source name, or empty
	Err  error
}

func (e *Error) Error() string {
	// "<cmd> <file>: <err>", dropping whichever parts are unset.
	var sb strings.Builder

	sb.WriteString(e.Cmd)

	if e.File != "" {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(e.File)
	}

	if e.Err != nil {
		if sb.Len() > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer. A cause that is itself a LogValuer is
// logged as a nested group.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 3)

	if e.Cmd != "" {
		attrs = append(attrs, slog.String("command", e.Cmd))
	}

	if e.File != "" {
		attrs = append(attrs, slog.String("file", e.File))
	}

	var lv slog.LogValuer

	switch {
	case e.Err == nil:
	case errors.As(e.Err, &lv):
		attrs = append(attrs, slog.Any("cause", lv))
	default:
		attrs = append(attrs, slog.String("cause", e.Err.Error()))
	}

	return slog.GroupValue(attrs...)
}

var (
	ErrWriteConfig = errors.New("write configuration file")
	ErrFileExists  = errors.New("file exists (use --force to overwrite)")
)
