package cmd

import (
	"context"
	"io"

	"github.com/ardnew/cmstpl/lang"
	"github.com/ardnew/cmstpl/pkg"
)

// Script prints the script section of each template.
type Script struct {
	Raw bool `help:"Include the opening and closing tags." short:"r"`

	Files []string `arg:"" default:"-" help:"Template files or '-' for stdin." name:"file" optional:""`
}

// Run executes the script command. Templates without a script section fail
// with [pkg.ErrNoScript].
func (s *Script) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	w := outputFrom(ctx)

	return readSources(ctx, "script", s.Files, func(_, text string) error {
		layout, _ := lang.Split(text)
		if layout.Script == nil {
			return pkg.ErrNoScript
		}

		if s.Raw {
			_, err := io.WriteString(w, layout.Script.Text(text))

			return err
		}

		doc, _ := lang.ParseString(ctx, text, parseOptionsFrom(ctx)...)

		_, err := io.WriteString(w, doc.Script.Code)

		return err
	})
}
