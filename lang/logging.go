package lang

import (
	"log/slog"
)

// LogValue implements slog.LogValuer.
func (s Span) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("start", s.Start.Offset),
		slog.Int("end", s.End.Offset),
		slog.Int("line", s.Start.Line),
	)
}

// LogValue implements slog.LogValuer.
func (l *Layout) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("shape", l.Shape.String()),
		slog.Any("markup", l.Markup),
	}

	if l.Config != nil {
		attrs = append(attrs, slog.Any("config", *l.Config))
	}

	if l.Script != nil {
		attrs = append(attrs, slog.Any("script", *l.Script))
	}

	return slog.GroupValue(attrs...)
}

// LogValue implements slog.LogValuer.
func (d *Document) LogValue() slog.Value {
	var errs, warnings int

	for _, diag := range d.Diagnostics {
		if diag.Severity == SeverityError {
			errs++
		} else {
			warnings++
		}
	}

	attrs := []slog.Attr{
		slog.Int("source_bytes", len(d.Source)),
		slog.Any("layout", d.Layout),
		slog.Int("markup_nodes", len(d.Markup.Nodes)),
		slog.Int("errors", errs),
		slog.Int("warnings", warnings),
	}

	if d.Config != nil {
		attrs = append(attrs, slog.Int("config_items", len(d.Config.Items)))
	}

	if d.Script != nil {
		attrs = append(attrs, slog.Int("script_bytes", len(d.Script.Code)))
	}

	return slog.GroupValue(attrs...)
}
