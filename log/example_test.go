package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/cmstpl/log"
)

func Example_basic() {
	logger := log.Make(os.Stdout, log.WithTimeLayout("none"), log.WithPretty(false))
	logger.Info("template parsed", slog.String("file", "blog.htm"))
	// Output: level=INFO msg="template parsed" file=blog.htm
}

func Example_levels() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelWarn),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Debug("split document")
	logger.Info("parse complete")
	logger.Warn("script block without separator", slog.Int("line", 1))
	// Output: level=WARN msg="script block without separator" line=1
}

func Example_trace() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelTrace),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.TraceContext(context.Background(), "cache lookup", slog.Bool("cache_hit", false))
	// Output: level=TRACE msg="cache lookup" cache_hit=false
}

func Example_withAttributes() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger = logger.With(slog.String("file", "home.htm"))
	logger.Error("parse failed", slog.Int("errors", 2))
	// Output: {"level":"ERROR","msg":"parse failed","file":"home.htm","errors":2}
}
