package cmd

import (
	"context"
	"fmt"

	"github.com/ardnew/cmstpl/lang"
	"github.com/ardnew/cmstpl/pkg"
)

// Parse prints the document tree of each template.
type Parse struct {
	Format string `default:"tree" enum:"tree,json,yaml" help:"Output format (${enum})." short:"f"`
	Indent int    `default:"2"                          help:"Indent width for JSON and YAML output." short:"i"`

	Files []string `arg:"" default:"-" help:"Template files or '-' for stdin." name:"file" optional:""`
}

// Run executes the parse command. Trees are printed even for templates with
// errors; the command fails if any template has one.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	w := outputFrom(ctx)

	return parseSources(ctx, "parse", p.Files,
		func(name string, doc *lang.Document) error {
			var err error

			switch p.Format {
			case "", "tree":
				if len(p.Files) > 1 {
					fmt.Fprintf(w, "# %s\n", name)
				}

				err = doc.Print(ctx, w)
			case "json":
				err = doc.FormatJSON(ctx, w, p.Indent)
			case "yaml":
				if len(p.Files) > 1 {
					fmt.Fprintln(w, "---")
				}

				err = doc.FormatYAML(ctx, w, p.Indent)
			default:
				return pkg.ErrInvalidFormat.Wrapf("%q", p.Format)
			}

			if err != nil {
				return err
			}

			if perr := doc.Err(); perr != nil {
				return pkg.ErrInvalidTemplate.Wrap(perr)
			}

			return nil
		})
}
