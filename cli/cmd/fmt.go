package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ardnew/cmstpl/lang"
	"github.com/ardnew/cmstpl/log"
	"github.com/ardnew/cmstpl/pkg"
)

// Fmt rewrites templates with canonical spacing and fully parenthesized
// expressions.
type Fmt struct {
	List  bool `help:"List files whose formatting differs instead of printing them." short:"l"`
	Write bool `help:"Write the result back to the source file."                    short:"w"`

	Files []string `arg:"" default:"-" help:"Template files or '-' for stdin." name:"file" optional:""`
}

// Run executes the fmt command. Templates with errors are not formatted,
// since malformed directives would be dropped from the output.
func (f *Fmt) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	w := outputFrom(ctx)

	return parseSources(ctx, "fmt", f.Files,
		func(name string, doc *lang.Document) error {
			if perr := doc.Err(); perr != nil {
				return pkg.ErrInvalidTemplate.Wrap(perr)
			}

			var buf bytes.Buffer
			if err := doc.Format(ctx, &buf); err != nil {
				return err
			}

			changed := buf.String() != doc.Source

			switch {
			case f.List:
				if changed {
					fmt.Fprintln(w, name)
				}

			case f.Write && name != stdinName:
				if !changed {
					return nil
				}

				info, err := os.Stat(name)
				if err != nil {
					return err
				}

				log.DebugContext(ctx, "rewriting template",
					slog.String("file", name),
					slog.Int("bytes", buf.Len()))

				return os.WriteFile(name, buf.Bytes(), info.Mode().Perm())

			default:
				_, err := buf.WriteTo(w)

				return err
			}

			return nil
		})
}
