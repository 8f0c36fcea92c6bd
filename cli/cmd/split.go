package cmd

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/ardnew/cmstpl/lang"
	"github.com/ardnew/cmstpl/pkg"
)

// Split prints how each template divides into sections without parsing
// their contents.
type Split struct {
	Files []string `arg:"" default:"-" help:"Template files or '-' for stdin." name:"file" optional:""`
}

// region is a labeled span of a template.
type region struct {
	label string
	span  lang.Span
}

func (r region) String() string {
	return fmt.Sprintf("  %-9s %-11s [%d,%d)",
		r.label, r.span, r.span.Start.Offset, r.span.End.Offset)
}

// Run executes the split command.
func (s *Split) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	w := outputFrom(ctx)

	separator := pkg.TypeCast[lang.Span, region](func(span lang.Span) region {
		return region{label: "separator", span: span}
	})

	return readSources(ctx, "split", s.Files, func(name, text string) error {
		layout, diags := lang.Split(text)

		// Empty sections sort before a separator at the same offset.
		var regions []region

		if layout.Config != nil {
			regions = append(regions, region{"config", *layout.Config})
		}

		if layout.Script != nil {
			regions = append(regions, region{"script", *layout.Script})
		}

		regions = append(regions, region{"markup", layout.Markup})
		regions = slices.AppendSeq(regions, separator.Values(layout.Separators...))

		slices.SortStableFunc(regions, func(a, b region) int {
			return cmp.Compare(a.span.Start.Offset, b.span.Start.Offset)
		})

		fmt.Fprintf(w, "%s: %s\n", name, layout.Shape)

		for _, r := range regions {
			fmt.Fprintln(w, r)
		}

		for _, d := range diags {
			fmt.Fprintf(w, "  %s %s\n", d.Severity, d)
		}

		return nil
	})
}
