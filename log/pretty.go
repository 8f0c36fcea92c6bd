package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by the pretty handlers. Styles are bound to
// a renderer for the handler's writer, so non-terminal output stays plain.
type palette struct {
	key, str, num, yes, no, dur, null lipgloss.Style

	trace, debug, info, warn, err lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		yes:   fg("2"),
		no:    fg("1"),
		dur:   fg("5"),
		null:  fg("8"),
		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3").Bold(true),
		err:   fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level, quote bool) string {
	name := quoteIf(quote, strings.ToUpper(Level(l).String()))

	switch {
	case l >= slog.LevelError:
		return p.err.Render(name)
	case l >= slog.LevelWarn:
		return p.warn.Render(name)
	case l >= slog.LevelInfo:
		return p.info.Render(name)
	case l >= slog.LevelDebug:
		return p.debug.Render(name)
	default:
		return p.trace.Render(name)
	}
}

// scalar renders a resolved non-group value. Strings are quoted when quote
// is set or when they would otherwise be ambiguous.
func (p palette) scalar(v slog.Value, quote bool) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if quote || s == "" || strings.ContainsAny(s, " \t\n\"=") {
			s = strconv.Quote(s)
		}

		return p.str.Render(s)

	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")

	case slog.KindDuration:
		return p.dur.Render(quoteIf(quote, v.Duration().String()))

	case slog.KindTime:
		return p.str.Render(quoteIf(quote, v.Time().Format("2006-01-02T15:04:05Z07:00")))

	default:
		a := v.Any()
		if a == nil {
			return p.null.Render("null")
		}

		if l, ok := a.(slog.Level); ok {
			return p.level(l, quote)
		}

		return p.str.Render(quoteIf(quote, fmt.Sprint(a)))
	}
}

func quoteIf(quote bool, s string) string {
	if quote {
		return strconv.Quote(s)
	}

	return s
}

// prettyTextHandler writes one colorized "key=value" line per record.
type prettyTextHandler struct {
	opts       *slog.HandlerOptions
	formatTime FormatTime
	pal        palette
	mu         *sync.Mutex
	w          io.Writer
	prefix     string // dotted group path, with trailing dot
	attrs      []byte // preformatted attributes from WithAttrs
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyTextHandler {
	return &prettyTextHandler{
		opts:       opts,
		formatTime: formatTime,
		pal:        newPalette(w),
		mu:         &sync.Mutex{},
		w:          w,
	}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		if ts := h.formatTime(r.Time); ts != "" {
			buf.WriteString(h.pal.key.Render(ts))
			buf.WriteByte(' ')
		}
	}

	buf.WriteString(h.pal.level(r.Level, false))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			buf.WriteByte(' ')
			buf.WriteString(h.pal.key.Render(src.File + ":" + strconv.Itoa(src.Line)))
		}
	}

	buf.WriteByte(' ')
	buf.WriteString(r.Message)
	buf.Write(h.attrs)

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h

	buf := bytes.NewBuffer(slices.Clone(h.attrs))
	for _, a := range attrs {
		c.writeAttr(buf, h.prefix, a)
	}

	c.attrs = buf.Bytes()

	return &c
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyTextHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range a.Value.Group() {
			h.writeAttr(buf, prefix, g)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.pal.key.Render(prefix + a.Key + "="))
	buf.WriteString(h.pal.scalar(a.Value, false))
}

// prettyJSONHandler writes each record as an indented, colorized JSON
// object. Groups become nested objects.
type prettyJSONHandler struct {
	opts       *slog.HandlerOptions
	formatTime FormatTime
	pal        palette
	mu         *sync.Mutex
	w          io.Writer
	groups     []string
	attrs      [][]slog.Attr // attrs added at each group depth
}

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyJSONHandler {
	return &prettyJSONHandler{
		opts:       opts,
		formatTime: formatTime,
		pal:        newPalette(w),
		mu:         &sync.Mutex{},
		w:          w,
		attrs:      [][]slog.Attr{nil},
	}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	top := make([]slog.Attr, 0, 4+len(h.attrs[0]))

	if !r.Time.IsZero() {
		if ts := h.formatTime(r.Time); ts != "" {
			top = append(top, slog.String(slog.TimeKey, ts))
		}
	}

	top = append(top, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			top = append(top, slog.String(slog.SourceKey,
				src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	top = append(top, slog.String(slog.MessageKey, r.Message))

	var own []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		own = append(own, a)

		return true
	})

	// Nest the record's own attributes inside the open groups, innermost
	// first.
	for depth := len(h.groups); depth > 0; depth-- {
		own = append(slices.Clone(h.attrs[depth]), own...)
		own = []slog.Attr{{Key: h.groups[depth-1], Value: slog.GroupValue(own...)}}
	}

	top = append(top, h.attrs[0]...)
	top = append(top, own...)

	var buf bytes.Buffer

	h.writeObject(&buf, top, 0)
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = slices.Clone(h.attrs)
	depth := len(c.groups)
	c.attrs[depth] = append(slices.Clone(c.attrs[depth]), attrs...)

	return &c
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(slices.Clone(h.groups), name)
	c.attrs = append(slices.Clone(h.attrs), nil)

	return &c
}

func (h *prettyJSONHandler) writeObject(buf *bytes.Buffer, attrs []slog.Attr, depth int) {
	indent := strings.Repeat("  ", depth+1)
	first := true

	buf.WriteByte('{')

	for _, a := range attrs {
		a.Value = a.Value.Resolve()
		if a.Equal(slog.Attr{}) {
			continue
		}

		if !first {
			buf.WriteByte(',')
		}

		first = false

		buf.WriteByte('\n')
		buf.WriteString(indent)
		buf.WriteString(h.pal.key.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")

		if a.Value.Kind() == slog.KindGroup {
			h.writeObject(buf, a.Value.Group(), depth+1)

			continue
		}

		buf.WriteString(h.pal.scalar(a.Value, true))
	}

	if !first {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat("  ", depth))
	}

	buf.WriteByte('}')
}
