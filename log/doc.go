// Package log provides a leveled structured logger built on [log/slog].
//
// A [Logger] is configured once, with functional options, and is immutable
// afterwards:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithCaller(true))
//
//	logger.Info("parsed template", slog.String("file", name))
//
// [Logger.With] returns a logger that adds attributes to every message, and
// [Logger.Wrap] returns one with additional options applied.
//
// # Levels
//
// In addition to the slog levels, [LevelTrace] sits below [LevelDebug] and is
// used for per-parse events that are too verbose for debugging sessions.
//
// # Pretty Output
//
// With [WithPretty] enabled (the default), text records are written on one
// line with colored keys and values, and JSON records as indented objects.
// Colors are only emitted when the output is a terminal.
//
// # Package Logger
//
// The package-level functions [Info], [Warn], [ErrorContext] and friends log
// through a default logger writing to standard error. [Config] reconfigures
// it and [Default] returns it, for example to hand to a parser.
package log
