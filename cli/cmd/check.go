package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/cmstpl/lang"
	"github.com/ardnew/cmstpl/pkg"
)

// Check reports the diagnostics of each template.
type Check struct {
	Strict bool `help:"Treat warnings as errors."                 short:"s"`
	Quiet  bool `help:"Print nothing for templates without problems." short:"q"`

	Files []string `arg:"" default:"-" help:"Template files or '-' for stdin." name:"file" optional:""`
}

// checkStyles colors diagnostic output. Styles are bound to a renderer for
// the output writer, so redirected output is plain text.
type checkStyles struct {
	file, pos, err, warn, ok, snippet lipgloss.Style
}

func newCheckStyles(w io.Writer) checkStyles {
	r := lipgloss.NewRenderer(w)

	return checkStyles{
		file:    r.NewStyle().Bold(true),
		pos:     r.NewStyle().Foreground(lipgloss.Color("8")),
		err:     r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")),
		snippet: r.NewStyle().Faint(true),
	}
}

func (s checkStyles) severity(sev lang.Severity) string {
	if sev == lang.SeverityError {
		return s.err.Render(sev.String())
	}

	return s.warn.Render(sev.String())
}

// Run executes the check command. It fails when any template has an
// error-severity diagnostic, or any diagnostic at all with --strict.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	w := outputFrom(ctx)
	styles := newCheckStyles(w)

	return parseSources(ctx, "check", c.Files,
		func(name string, doc *lang.Document) error {
			render := pkg.TypeCast[*lang.Diagnostic, string](
				func(d *lang.Diagnostic) string {
					return c.render(styles, name, doc.Source, d)
				})

			var errs, warnings int

			for _, d := range doc.Diagnostics {
				if d.Severity == lang.SeverityError {
					errs++
				} else {
					warnings++
				}
			}

			for text := range render.Values(doc.Diagnostics...) {
				if _, err := io.WriteString(w, text); err != nil {
					return err
				}
			}

			failed := errs > 0 || (c.Strict && warnings > 0)

			if !failed && warnings == 0 && !c.Quiet {
				_, err := fmt.Fprintf(w, "%s: %s\n", styles.file.Render(name),
					styles.ok.Render("ok"))
				if err != nil {
					return err
				}
			}

			if failed {
				return pkg.ErrInvalidTemplate.Wrapf("%s, %s",
					plural(errs, "error"), plural(warnings, "warning"))
			}

			return nil
		})
}

// render formats one diagnostic as "file:line:col: severity: message"
// followed by the offending source line and a caret.
func (*Check) render(
	s checkStyles,
	name, source string,
	d *lang.Diagnostic,
) string {
	var sb strings.Builder

	sb.WriteString(s.file.Render(name))
	sb.WriteString(s.pos.Render(":" + d.Span.Start.String()))
	sb.WriteString(": ")
	sb.WriteString(s.severity(d.Severity))
	sb.WriteString(": ")

	if d.Kind != nil {
		sb.WriteString(d.Kind.Error())
		sb.WriteString(": ")
	}

	sb.WriteString(d.Message)

	if d.Token != "" {
		sb.WriteString(" (near " + strconv.Quote(d.Token) + ")")
	}

	sb.WriteByte('\n')

	// Styled one line at a time; multi-line renders are padded to a block.
	for line := range strings.Lines(lang.Snippet(source, d.Span.Start)) {
		sb.WriteString(s.snippet.Render(strings.TrimSuffix(line, "\n")))
		sb.WriteByte('\n')
	}

	return sb.String()
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}

	return strconv.Itoa(n) + " " + noun + "s"
}
