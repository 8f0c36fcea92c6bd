package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// Format writes the document in template syntax. Expressions are written in
// their canonical, fully parenthesized form, so the output parses to an
// equivalent tree. Malformed directives, which are absent from the tree, are
// not written.
func (d *Document) Format(_ context.Context, w io.Writer) error {
	var sb strings.Builder

	if d.Config != nil {
		d.Config.format(&sb)
		sb.WriteString("==\n")
	}

	if d.Script != nil {
		d.Script.format(&sb)
		sb.WriteString("==\n")
	}

	d.Markup.format(&sb)

	_, err := io.WriteString(w, sb.String())

	return err
}

// format writes one line per item. A run of blank lines between parsed items
// is written as a single blank line.
func (c *ConfigSection) format(sb *strings.Builder) {
	last := 0

	for _, item := range c.Items {
		span := item.Span()
		if last > 0 && span.Start.Line > last+1 {
			sb.WriteByte('\n')
		}

		last = span.End.Line

		switch item := item.(type) {
		case *ConfigHeader:
			sb.WriteString("[" + item.Name + "]\n")
		case *ConfigComment:
			sb.WriteString(";" + item.Text + "\n")
		case *ConfigEntry:
			sb.WriteString(item.Key)

			if item.Value != nil {
				sb.WriteString(" = ")
				sb.WriteString(item.Value.Raw)
			}

			if item.Comment != "" {
				sb.WriteString(" ;" + item.Comment)
			}

			sb.WriteByte('\n')
		}
	}
}

func (s *ScriptPayload) format(sb *strings.Builder) {
	if !s.HasOpen {
		sb.WriteString(s.Code)
	} else {
		sb.WriteString(s.OpenTag)
		sb.WriteString(s.Code)

		if s.HasClose {
			sb.WriteString("?>")
		}
	}

	if !strings.HasSuffix(sb.String(), "\n") {
		sb.WriteByte('\n')
	}
}

func (m *MarkupSection) format(sb *strings.Builder) {
	for _, node := range m.Nodes {
		switch node := node.(type) {
		case *ContentRun:
			sb.WriteString(node.Text)
		case *Comment:
			sb.WriteString("{#" + node.Text + "#}")
		case *OutputDirective:
			sb.WriteString("{{" + node.Trim.Open.String() + " ")
			sb.WriteString(node.Expr.String())
			sb.WriteString(" " + node.Trim.Close.String() + "}}")
		case *StatementDirective:
			sb.WriteString("{%" + node.Trim.Open.String() + " ")
			sb.WriteString(node.Stmt.String())
			sb.WriteString(" " + node.Trim.Close.String() + "%}")
		}
	}
}

// Print writes the document tree as an indented outline with one node per
// line: its kind, its span and its scalar attributes.
func (d *Document) Print(_ context.Context, w io.Writer) error {
	var sb strings.Builder

	printNode(&sb, d, 0)

	for _, diag := range d.Diagnostics {
		sb.WriteString(diag.Severity.String())
		sb.WriteString(" ")
		sb.WriteString(diag.Error())
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

func printNode(sb *strings.Builder, n Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.NodeKind().String())
	sb.WriteString(" ")
	sb.WriteString(n.Span().String())

	attrs := nodeAttrs(n)
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		sb.WriteString(" ")
		sb.WriteString(k)
		sb.WriteString("=")

		switch v := attrs[k].(type) {
		case string:
			sb.WriteString(strconv.Quote(v))
		default:
			fmt.Fprint(sb, v)
		}
	}

	sb.WriteByte('\n')

	for _, child := range Children(n) {
		printNode(sb, child, depth+1)
	}
}

// FormatJSON writes the document tree as JSON to the writer.
func (d *Document) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(d, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(d)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the document tree as YAML to the writer.
func (d *Document) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return formatYAML(ctx, w, indent, d.ToMap())
}

// FormatYAML writes the two-level key structure of the section as YAML.
func (c *ConfigSection) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return formatYAML(ctx, w, indent, c.native())
}

func formatYAML(ctx context.Context, w io.Writer, indent int, v any) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// FormatJSON writes the two-level key structure of the section as JSON.
func (c *ConfigSection) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	enc := json.NewEncoder(w)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}

	return enc.Encode(c.native())
}

// FormatTOML writes the two-level key structure of the section as TOML.
// Flags, which have no value, are written as true.
func (c *ConfigSection) FormatTOML(_ context.Context, w io.Writer, indent int) error {
	enc := toml.NewEncoder(w)
	enc.Indent = strings.Repeat(" ", indent)

	native := c.native()
	for k, v := range native {
		if v == nil {
			native[k] = true
		}

		if group, ok := v.(map[string]any); ok {
			for gk, gv := range group {
				if gv == nil {
					group[gk] = true
				}
			}
		}
	}

	return enc.Encode(native)
}

// native is like Map but converts numeric values to numbers.
func (c *ConfigSection) native() map[string]any {
	out := c.Map()

	for _, e := range c.Entries() {
		if e.Value == nil || e.Value.Kind != ValueNumber {
			continue
		}

		// Only the winning declaration of each key is kept in out.
		if last, ok := c.Lookup(e.Group, e.Key); !ok || last != e {
			continue
		}

		if e.Group == "" {
			out[e.Key] = e.Value.ToNative()
		} else if group, ok := out[e.Group].(map[string]any); ok {
			group[e.Key] = e.Value.ToNative()
		}
	}

	return out
}
