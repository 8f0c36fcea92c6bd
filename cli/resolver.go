package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cmstpl/lang"
	"github.com/ardnew/cmstpl/log"
)

// resolve returns a [kong.ConfigurationLoader] for configuration files
// written in the same syntax as a template's configuration section.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx, "cmstpl"), "/path/to/config")
//
// Keys before the first header apply to every invocation; keys under the
// header named group follow them and so override them. Other groups are
// ignored. Flag names may be written with hyphens
// or underscores, and a bare key sets a boolean flag.
//
//	log_level = debug
//	[cmstpl]
//	log-format = json
//	log_caller
//
// Malformed lines are logged and skipped. Command-line flags override config
// file values.
func resolve(ctx context.Context, group string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		section, err := lang.ParseConfig(ctx, string(data))
		if err != nil {
			log.WarnContext(ctx, "ignoring malformed configuration lines",
				slog.Any("error", err))
		}

		values := config{}

		for _, e := range section.Entries() {
			if e.Group != "" && e.Group != group {
				continue
			}

			var value any = "true"
			if e.Value != nil {
				value = e.Value.Text
			}

			values[configKey(e.Key)] = value
		}

		log.TraceContext(ctx, "loaded configuration",
			slog.String("group", group),
			slog.Int("keys", len(values)))

		return values, nil
	}
}

// config implements [kong.Resolver] for configuration sections.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[configKey(flag.Name)]; ok {
		return value, nil
	}

	return nil, nil
}

// configKey normalizes a flag name or configuration key, so "log-level" and
// "log_level" name the same flag.
func configKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
