package cmd

import (
	"context"

	"github.com/ardnew/cmstpl/lang"
	"github.com/ardnew/cmstpl/pkg"
)

// Config exports the configuration section of each template.
type Config struct {
	Format string `default:"ini" enum:"ini,json,yaml,toml" help:"Output format (${enum})." short:"f"`
	Indent int    `default:"2"                             help:"Indent width for JSON, YAML and TOML output." short:"i"`

	Files []string `arg:"" default:"-" help:"Template files or '-' for stdin." name:"file" optional:""`
}

// Run executes the config command. Templates without a configuration
// section fail with [pkg.ErrNoConfig].
func (c *Config) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	w := outputFrom(ctx)

	return readSources(ctx, "config", c.Files, func(_, text string) error {
		layout, _ := lang.Split(text)
		if layout.Config == nil {
			return pkg.ErrNoConfig
		}

		section, perr := lang.ParseConfig(ctx,
			layout.Config.Text(text), parseOptionsFrom(ctx)...)
		if perr != nil {
			return pkg.ErrInvalidTemplate.Wrap(perr)
		}

		switch c.Format {
		case "", "ini":
			return section.Format(ctx, w)
		case "json":
			return section.FormatJSON(ctx, w, c.Indent)
		case "yaml":
			return section.FormatYAML(ctx, w, c.Indent)
		case "toml":
			return section.FormatTOML(ctx, w, c.Indent)
		default:
			return pkg.ErrInvalidFormat.Wrapf("%q", c.Format)
		}
	})
}
