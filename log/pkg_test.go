package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// useDefault points the package logger at a buffer for the duration of the
// test.
func useDefault(t *testing.T, opts ...Option) *bytes.Buffer {
	t.Helper()

	saved := defaultLog.Load()
	t.Cleanup(func() { defaultLog.Store(saved) })

	var buf bytes.Buffer

	l := Make(&buf, append([]Option{WithTimeLayout("none"), WithPretty(false)}, opts...)...)
	defaultLog.Store(&l)

	return &buf
}

func TestPackage_LogFunctions(t *testing.T) {
	buf := useDefault(t, WithLevel(LevelTrace), WithFormat(FormatJSON))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Trace", func(m string, a ...slog.Attr) { TraceContext(t.Context(), m, a...) }, "TRACE"},
		{"Debug", Debug, "DEBUG"},
		{"DebugContext", func(m string, a ...slog.Attr) { DebugContext(t.Context(), m, a...) }, "DEBUG"},
		{"Info", Info, "INFO"},
		{"InfoContext", func(m string, a ...slog.Attr) { InfoContext(t.Context(), m, a...) }, "INFO"},
		{"Warn", Warn, "WARN"},
		{"WarnContext", func(m string, a ...slog.Attr) { WarnContext(t.Context(), m, a...) }, "WARN"},
		{"Error", Error, "ERROR"},
		{"ErrorContext", func(m string, a ...slog.Attr) { ErrorContext(t.Context(), m, a...) }, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("package message", slog.String("key", "value"))

			want := `{"level":"` + tt.level + `","msg":"package message","key":"value"}` + "\n"
			if got := buf.String(); got != want {
				t.Errorf("expected %q, got %q", want, got)
			}
		})
	}
}

func TestPackage_Config(t *testing.T) {
	buf := useDefault(t)

	Config(WithLevel(LevelError))

	Warn("dropped")

	if buf.Len() != 0 {
		t.Errorf("expected nothing below error, got %q", buf.String())
	}

	With(slog.String("file", "x.htm")).Error("kept")

	if !strings.Contains(buf.String(), "file=x.htm") {
		t.Errorf("expected attribute, got %q", buf.String())
	}

	if Default().Level() != LevelError {
		t.Errorf("expected error level, got %v", Default().Level())
	}
}
