package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cmstpl/lang"
	"github.com/ardnew/cmstpl/log"
	"github.com/ardnew/cmstpl/pkg"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	parseOptionsKey struct{}
	outputKey       struct{}
)

// WithParseOptions returns a new context.Context carrying the options every
// command passes to the parser.
func WithParseOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, parseOptionsKey{}, opts)
}

func parseOptionsFrom(ctx context.Context) []lang.Option {
	opts, _ := ctx.Value(parseOptionsKey{}).([]lang.Option)

	return opts
}

// WithOutput returns a new context.Context whose commands write to w instead
// of os.Stdout.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// stdinName is the source name reported for stdin.
const stdinName = "<stdin>"

// source is an open template file.
type source struct {
	name string
	io.ReadCloser
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens each named file once, in order. Every "-" collapses into
// a single stdin source placed last, and so does a named path that resolves
// to stdin. Files that cannot be opened are skipped and reported in the
// returned error, which wraps [pkg.ErrOpenSource] for each.
func openSources(names []string) ([]source, error) {
	var (
		sources  = make([]source, 0, len(names))
		seen     = make(map[fileKey]struct{})
		errs     []error
		hasStdin bool
	)

	var stdinKey fileKey
	if info, err := os.Stdin.Stat(); err == nil {
		stdinKey, _ = makeFileKey(info)
	}

	for _, name := range names {
		if name == stdinSource {
			hasStdin = true

			continue
		}

		file, key, err := openUniqueFile(name, seen)

		switch {
		case err != nil:
			errs = append(errs, pkg.ErrOpenSource.Wrap(err))
		case key == stdinKey && key != (fileKey{}):
			_ = file.Close()
			hasStdin = true
		case file != nil:
			sources = append(sources, source{name: name, ReadCloser: file})
		}
	}

	if hasStdin {
		sources = append(sources, source{
			name:       stdinName,
			ReadCloser: io.NopCloser(os.Stdin),
		})
	}

	return sources, errors.Join(errs...)
}

// openUniqueFile opens the file at path unless a file with the same device
// and inode was already seen, in which case it returns a nil file and no
// error.
func openUniqueFile(
	path string,
	seen map[fileKey]struct{},
) (*os.File, fileKey, error) {
	resolved, err := filepath.Abs(path)
	if err == nil {
		resolved, err = filepath.EvalSymlinks(resolved)
	}

	if err != nil {
		return nil, fileKey{}, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fileKey{}, err
	}

	key, ok := makeFileKey(info)
	if ok {
		if _, exists := seen[key]; exists {
			return nil, key, nil
		}

		seen[key] = struct{}{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, key, err
	}

	return file, key, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (fileKey, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	//nolint:unconvert // field widths differ between platforms
	return fileKey{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}, true
}

// readSources reads every named source in full and calls fn with its name
// and contents. Failures are collected as [*Error] values for cmd and
// joined into the result; fn is not called for unreadable sources.
func readSources(
	ctx context.Context,
	cmd string,
	names []string,
	fn func(name, text string) error,
) error {
	sources, err := openSources(names)

	var errs []error
	if err != nil {
		errs = append(errs, &Error{Cmd: cmd, Err: err})
	}

	for _, src := range sources {
		data, err := io.ReadAll(src)
		_ = src.Close()

		if err != nil {
			if src.name == stdinName {
				err = pkg.ErrReadStdin.Wrap(err)
			}

			errs = append(errs, &Error{Cmd: cmd, File: src.name, Err: err})

			continue
		}

		log.TraceContext(ctx, "read source",
			slog.String("file", src.name),
			slog.Int("bytes", len(data)))

		if err := fn(src.name, string(data)); err != nil {
			errs = append(errs, &Error{Cmd: cmd, File: src.name, Err: err})
		}
	}

	return errors.Join(errs...)
}

// parseSources parses every named source with the options from ctx and calls
// fn with each document, including documents that have error diagnostics.
// Sources that cannot be read are reported like [readSources].
func parseSources(
	ctx context.Context,
	cmd string,
	names []string,
	fn func(name string, doc *lang.Document) error,
) error {
	sources, err := openSources(names)

	var errs []error
	if err != nil {
		errs = append(errs, &Error{Cmd: cmd, Err: err})
	}

	for _, src := range sources {
		doc, err := lang.ParseReader(ctx, src, parseOptionsFrom(ctx)...)
		_ = src.Close()

		if doc == nil {
			errs = append(errs, &Error{Cmd: cmd, File: src.name, Err: err})

			continue
		}

		log.DebugContext(ctx, "parsed template",
			slog.String("file", src.name),
			slog.Any("document", doc))

		if err := fn(src.name, doc); err != nil {
			errs = append(errs, &Error{Cmd: cmd, File: src.name, Err: err})
		}
	}

	return errors.Join(errs...)
}
