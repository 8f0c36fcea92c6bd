package cmd

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/cmstpl/pkg"
)

// writeFile creates a file named name in dir with the given content and
// returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

// pipeStdin replaces os.Stdin with a pipe that yields content.
func pipeStdin(t *testing.T, content string) {
	t.Helper()

	oldStdin := os.Stdin

	t.Cleanup(func() { os.Stdin = oldStdin })

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}

	os.Stdin = r

	go func() {
		defer w.Close()
		io.WriteString(w, content)
	}()
}

// readSourcesFrom opens names and returns the contents of each source.
func readSourcesFrom(t *testing.T, names ...string) ([]string, error) {
	t.Helper()

	sources, err := openSources(names)

	contents := make([]string, 0, len(sources))

	for _, src := range sources {
		data, rerr := io.ReadAll(src)
		if rerr != nil {
			t.Fatalf("reading %s: %v", src.name, rerr)
		}

		src.Close()

		contents = append(contents, string(data))
	}

	return contents, err
}

func TestOpenSourcesEmpty(t *testing.T) {
	for _, names := range [][]string{nil, {}} {
		sources, err := openSources(names)
		if err != nil || len(sources) != 0 {
			t.Errorf("openSources(%v) = %v, %v; want no sources", names, sources, err)
		}
	}
}

func TestOpenSourcesOrder(t *testing.T) {
	dir := t.TempDir()

	first := writeFile(t, dir, "first.htm", "first")
	second := writeFile(t, dir, "second.htm", "second")

	got, err := readSourcesFrom(t, second, first)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"second", "first"}, got); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenSourcesDuplicates(t *testing.T) {
	dir := t.TempDir()

	target := writeFile(t, dir, "real.htm", "unique")

	link := filepath.Join(dir, "link.htm")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	t.Chdir(dir)

	tests := []struct {
		name  string
		names []string
	}{
		{"same path", []string{target, target, target}},
		{"relative and absolute", []string{"real.htm", target}},
		{"symlink", []string{target, link}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readSourcesFrom(t, tt.names...)
			if err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff([]string{"unique"}, got); diff != "" {
				t.Errorf("file should be read once (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpenSourcesStdinLast(t *testing.T) {
	file := writeFile(t, t.TempDir(), "file.htm", "file")

	pipeStdin(t, "stdin")

	got, err := readSourcesFrom(t, "-", file, "-")
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"file", "stdin"}, got); diff != "" {
		t.Errorf("stdin should be read once and last (-want +got):\n%s", diff)
	}
}

func TestOpenSourcesNonexistent(t *testing.T) {
	file := writeFile(t, t.TempDir(), "exists.htm", "exists")

	got, err := readSourcesFrom(t,
		"/nonexistent/path/file.htm", file, "/another/nonexistent.htm")

	if diff := cmp.Diff([]string{"exists"}, got); diff != "" {
		t.Errorf("existing file should still be read (-want +got):\n%s", diff)
	}

	if !errors.Is(err, pkg.ErrOpenSource) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected open error for missing files, got %v", err)
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()

	if outputFrom(ctx) != os.Stdout {
		t.Error("output should default to stdout")
	}

	if parseOptionsFrom(ctx) != nil {
		t.Error("parse options should default to none")
	}

	if kongContextFrom(ctx) != nil {
		t.Error("kong context should default to nil")
	}

	ctx = WithOutput(ctx, io.Discard)
	if outputFrom(ctx) != io.Discard {
		t.Error("output not stored")
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"all fields", &Error{Cmd: "check", File: "a.htm", Err: cause}, "check a.htm: boom"},
		{"no file", &Error{Cmd: "check", Err: cause}, "check: boom"},
		{"no cause", &Error{Cmd: "check", File: "a.htm"}, "check a.htm"},
		{"cause only", &Error{Err: cause}, "boom"},
		{"empty", &Error{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}

	if !errors.Is(&Error{Err: cause}, cause) {
		t.Error("Error should unwrap to its cause")
	}
}
