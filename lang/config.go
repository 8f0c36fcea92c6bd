package lang

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// ValueKind classifies a configuration value.
type ValueKind int

const (
	ValueUnquoted ValueKind = iota
	ValueQuoted
	ValueNumber
)

// String returns the lowercase name of the value kind.
func (k ValueKind) String() string {
	switch k {
	case ValueUnquoted:
		return "unquoted"
	case ValueQuoted:
		return "quoted"
	case ValueNumber:
		return "number"
	default:
		return "unknown"
	}
}

// ConfigValue is the right-hand side of a configuration entry.
// Text holds the value with quotes stripped; Raw holds the original source
// text. Escape sequences inside quotes are not processed.
type ConfigValue struct {
	base

	Kind  ValueKind
	Text  string
	Raw   string
	Quote byte // '"' or '\'' for quoted values
}

// NodeKind implements Node.
func (*ConfigValue) NodeKind() NodeKind { return KindConfigValue }

// ConfigHeader is a "[name]" line that scopes the entries following it.
type ConfigHeader struct {
	base

	Name string
}

// NodeKind implements Node.
func (*ConfigHeader) NodeKind() NodeKind { return KindConfigHeader }

// ConfigEntry is a "key = value" line. Value is nil for a bare key, which
// denotes a flag that is present but unset.
type ConfigEntry struct {
	base

	Key     string
	Value   *ConfigValue
	Group   string // name of the enclosing header, or empty
	Comment string // text after the ';' following a quoted value
}

// NodeKind implements Node.
func (*ConfigEntry) NodeKind() NodeKind { return KindConfigEntry }

// ConfigComment is a line starting with ';'. Text follows the ';' verbatim.
type ConfigComment struct {
	base

	Text string
}

// NodeKind implements Node.
func (*ConfigComment) NodeKind() NodeKind { return KindConfigComment }

// ConfigItem is a *ConfigHeader, a *ConfigEntry or a *ConfigComment.
type ConfigItem interface {
	Node
	configItem()
}

func (*ConfigHeader) configItem()  {}
func (*ConfigEntry) configItem()   {}
func (*ConfigComment) configItem() {}

// ConfigSection is the ordered sequence of headers and entries of an
// INI-style configuration block. Keys need not be unique.
type ConfigSection struct {
	base

	Items []ConfigItem
}

// NodeKind implements Node.
func (*ConfigSection) NodeKind() NodeKind { return KindConfigSection }

// Entries returns every entry in declaration order.
func (c *ConfigSection) Entries() []*ConfigEntry {
	if c == nil {
		return nil
	}

	entries := make([]*ConfigEntry, 0, len(c.Items))

	for _, item := range c.Items {
		if e, ok := item.(*ConfigEntry); ok {
			entries = append(entries, e)
		}
	}

	return entries
}

// Groups returns the header names in declaration order, without repeats.
func (c *ConfigSection) Groups() []string {
	if c == nil {
		return nil
	}

	var groups []string

	seen := make(map[string]bool)

	for _, item := range c.Items {
		if h, ok := item.(*ConfigHeader); ok && !seen[h.Name] {
			seen[h.Name] = true
			groups = append(groups, h.Name)
		}
	}

	return groups
}

// Lookup returns the last entry declared with the given key in the given
// group. The empty group names the entries preceding the first header.
func (c *ConfigSection) Lookup(group, key string) (*ConfigEntry, bool) {
	entries := c.Entries()

	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Group == group && entries[i].Key == key {
			return entries[i], true
		}
	}

	return nil, false
}

// Map reconstructs the two-level structure of the section. Entries before the
// first header map their key to a string; each header maps its name to a
// nested map of its entries. Flags map to nil. Later declarations win.
func (c *ConfigSection) Map() map[string]any {
	out := make(map[string]any)

	for _, e := range c.Entries() {
		var value any
		if e.Value != nil {
			value = e.Value.Text
		}

		if e.Group == "" {
			out[e.Key] = value

			continue
		}

		group, ok := out[e.Group].(map[string]any)
		if !ok {
			group = make(map[string]any)
			out[e.Group] = group
		}

		group[e.Key] = value
	}

	for _, name := range c.Groups() {
		if _, ok := out[name].(map[string]any); !ok {
			out[name] = map[string]any{}
		}
	}

	return out
}

var (
	configKeyPattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-\[\]]*`)
	configNumberPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)
)

// ParseConfig parses src as a standalone configuration block.
// The returned section is never nil; any malformed line is reported as an
// [ErrConfig] diagnostic in the returned *[ParseError] and otherwise skipped.
func ParseConfig(
	ctx context.Context,
	src string,
	opts ...Option,
) (*ConfigSection, error) {
	o := applyOptions(opts...)
	idx := newLineIndex(src)

	section, diags := parseConfig(src, idx, 0, len(src))

	o.logger.TraceContext(ctx, "parsed config",
		slog.Int("items", len(section.Items)),
		slog.Int("diagnostics", len(diags)))

	if len(diags) > 0 {
		return section, &ParseError{Diagnostics: diags, Source: src}
	}

	return section, nil
}

// parseConfig parses src[start:end] as configuration lines.
func parseConfig(
	src string,
	idx lineIndex,
	start, end int,
) (*ConfigSection, []*Diagnostic) {
	section := &ConfigSection{base: base{span: idx.span(start, end)}}

	var (
		diags []*Diagnostic
		group string
	)

	for pos := start; pos < end; {
		ln := lineAt(src, pos, end)
		pos = ln.next

		text := ln.text(src)
		indent := leadingSpace(text)
		body := strings.TrimRight(text[indent:], " \t")
		at := ln.start + indent

		switch {
		case body == "":
			continue

		case body[0] == ';':
			section.Items = append(section.Items, &ConfigComment{
				base: base{span: idx.span(at, at+len(body))},
				Text: body[1:],
			})

		case body[0] == '[':
			name, ok := parseConfigHeader(body)
			if !ok {
				diags = append(diags, configError(idx, at, at+len(body),
					"malformed section header", body))

				continue
			}

			group = name
			section.Items = append(section.Items, &ConfigHeader{
				base: base{span: idx.span(at, at+len(body))},
				Name: name,
			})

		default:
			entry, next, diag := parseConfigEntry(src, idx, at, ln, end)
			if diag != nil {
				diags = append(diags, diag)

				continue
			}

			entry.Group = group
			section.Items = append(section.Items, entry)
			pos = next
		}
	}

	return section, diags
}

func parseConfigHeader(body string) (string, bool) {
	if len(body) < 3 || body[len(body)-1] != ']' {
		return "", false
	}

	name := strings.TrimSpace(body[1 : len(body)-1])
	if name == "" || strings.ContainsAny(name, "[]") {
		return "", false
	}

	return name, true
}

// parseConfigEntry parses the entry starting at offset at within ln. A quoted
// value may span several lines, so it also returns the offset of the line
// following the entry.
func parseConfigEntry(
	src string,
	idx lineIndex,
	at int,
	ln line,
	end int,
) (*ConfigEntry, int, *Diagnostic) {
	lineEnd := ln.start + len(ln.text(src))
	rest := src[at:lineEnd]

	key := configKeyPattern.FindString(rest)
	if key == "" {
		return nil, 0, configError(idx, at, lineEnd,
			"invalid configuration key", strings.TrimSpace(rest))
	}

	entry := &ConfigEntry{Key: key}
	i := at + len(key)
	i += leadingSpace(src[i:lineEnd])

	if i == lineEnd || strings.TrimSpace(src[i:lineEnd]) == "" {
		entry.span = idx.span(at, at+len(key))

		return entry, ln.next, nil
	}

	if src[i] != '=' {
		return nil, 0, configError(idx, i, lineEnd,
			"expected '=' after key", strings.TrimSpace(src[i:lineEnd]))
	}

	i++
	i += leadingSpace(src[i:lineEnd])

	if i < lineEnd && (src[i] == '"' || src[i] == '\'') {
		quote := src[i]

		closeAt := strings.IndexByte(src[i+1:end], quote)
		if closeAt < 0 {
			return nil, 0, configError(idx, i, i+1,
				"unterminated quoted value", string(quote))
		}

		closeAt += i + 1
		tail := lineAt(src, closeAt, end)

		trailing := strings.TrimSpace(src[closeAt+1 : tail.end])
		if trailing != "" && trailing[0] != ';' {
			return nil, 0, configError(idx, closeAt+1, tail.end,
				"unexpected text after quoted value", trailing)
		}

		if trailing != "" {
			entry.Comment = trailing[1:]
		}

		entry.Value = &ConfigValue{
			base:  base{span: idx.span(i, closeAt+1)},
			Kind:  ValueQuoted,
			Text:  src[i+1 : closeAt],
			Raw:   src[i : closeAt+1],
			Quote: quote,
		}
		entry.span = idx.span(at, closeAt+1)

		return entry, tail.next, nil
	}

	raw := strings.TrimRight(src[i:lineEnd], " \t")

	kind := ValueUnquoted
	if configNumberPattern.MatchString(raw) {
		kind = ValueNumber
	}

	entry.Value = &ConfigValue{
		base: base{span: idx.span(i, i+len(raw))},
		Kind: kind,
		Text: raw,
		Raw:  raw,
	}
	entry.span = idx.span(at, i+len(raw))

	return entry, ln.next, nil
}

func configError(idx lineIndex, start, end int, msg, tok string) *Diagnostic {
	return &Diagnostic{
		Kind:     ErrConfig,
		Severity: SeverityError,
		Message:  msg,
		Token:    tok,
		Span:     idx.span(start, end),
	}
}
