package lang

import (
	"encoding/json"
	"strconv"
)

// MarshalJSON implements json.Marshaler for Document.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ToMap())
}

// ToMap converts the document to a tree of native Go maps and slices.
func (d *Document) ToMap() map[string]any {
	m := ToMap(d)
	m["shape"] = d.Layout.Shape.String()

	if len(d.Diagnostics) > 0 {
		diags := make([]any, len(d.Diagnostics))
		for i, diag := range d.Diagnostics {
			diags[i] = diagnosticMap(diag)
		}

		m["diagnostics"] = diags
	}

	return m
}

// ToMap converts the tree rooted at n to native Go maps and slices. Every
// node map has a "kind" and a "span"; nodes with children list them under
// "children" in source order.
func ToMap(n Node) map[string]any {
	m := map[string]any{
		"kind": n.NodeKind().String(),
		"span": spanMap(n.Span()),
	}

	for k, v := range nodeAttrs(n) {
		m[k] = v
	}

	if kids := Children(n); len(kids) > 0 {
		list := make([]any, len(kids))
		for i, child := range kids {
			list[i] = ToMap(child)
		}

		m["children"] = list
	}

	return m
}

// nodeAttrs returns the scalar fields of n.
func nodeAttrs(n Node) map[string]any {
	switch n := n.(type) {
	case *ConfigHeader:
		return map[string]any{"name": n.Name}
	case *ConfigComment:
		return map[string]any{"text": n.Text}
	case *ConfigEntry:
		attrs := map[string]any{"key": n.Key}
		if n.Group != "" {
			attrs["group"] = n.Group
		}

		if n.Comment != "" {
			attrs["comment"] = n.Comment
		}

		return attrs
	case *ConfigValue:
		return map[string]any{
			"type":  n.Kind.String(),
			"value": n.ToNative(),
			"raw":   n.Raw,
		}
	case *ScriptPayload:
		return map[string]any{
			"code":      n.Code,
			"open_tag":  n.OpenTag,
			"has_open":  n.HasOpen,
			"has_close": n.HasClose,
		}
	case *ContentRun:
		return map[string]any{"text": n.Text}
	case *Comment:
		return map[string]any{"text": n.Text}
	case *OutputDirective:
		return trimAttrs(n.Trim)
	case *StatementDirective:
		return trimAttrs(n.Trim)
	case *Identifier:
		return map[string]any{"name": n.Name}
	case *IfStatement:
		return map[string]any{"branch": n.Branch.String()}
	case *IncludeStatement:
		return map[string]any{"tag": n.Kind.String()}
	case *IncludeModifier:
		return map[string]any{"modifier": n.Kind.String()}
	case *WithStatement:
		return map[string]any{"only": n.Only}
	case *GenericTag:
		return map[string]any{"name": n.Name}
	case *Argument:
		if n.Name == "" {
			return nil
		}

		return map[string]any{"name": n.Name}
	case *Literal:
		return map[string]any{
			"type":  n.Kind.String(),
			"value": n.ToNative(),
			"raw":   n.Raw,
		}
	case *Variable:
		return map[string]any{"name": n.Name}
	case *Unary:
		return map[string]any{"operator": n.Op}
	case *Binary:
		return map[string]any{"operator": n.Op}
	case *Ternary:
		return map[string]any{
			"elvis":   n.Then == nil,
			"no_else": n.Else == nil,
		}
	case *Filter:
		return map[string]any{"name": n.Name}
	case *Test:
		return map[string]any{"name": n.Name, "negated": n.Negated}
	case *Subscript:
		return map[string]any{"slice": n.Slice}
	case *MemberAccess:
		return map[string]any{"name": n.Name}
	default:
		return nil
	}
}

func trimAttrs(t TrimMarkers) map[string]any {
	attrs := map[string]any{}
	if t.Open != TrimNone {
		attrs["trim_open"] = t.Open.String()
	}

	if t.Close != TrimNone {
		attrs["trim_close"] = t.Close.String()
	}

	return attrs
}

func spanMap(s Span) map[string]any {
	return map[string]any{
		"start": s.Start.Offset,
		"end":   s.End.Offset,
		"line":  s.Start.Line,
		"col":   s.Start.Column,
	}
}

func diagnosticMap(d *Diagnostic) map[string]any {
	m := map[string]any{
		"severity": d.Severity.String(),
		"message":  d.Message,
		"span":     spanMap(d.Span),
	}

	if d.Kind != nil {
		m["kind"] = d.Kind.msg
	}

	if d.Token != "" {
		m["token"] = d.Token
	}

	return m
}

// ToNative converts the literal to its native Go type: string, int64,
// float64, bool, or nil.
func (e *Literal) ToNative() any {
	switch e.Kind {
	case LiteralNumber:
		return parseNumber(e.Value)
	case LiteralBool:
		return e.Value == "true"
	case LiteralNull:
		return nil
	default:
		return e.Value
	}
}

// ToNative converts the value to its native Go type. Numbers become int64 or
// float64; everything else is the unquoted text.
func (v *ConfigValue) ToNative() any {
	if v.Kind == ValueNumber {
		return parseNumber(v.Text)
	}

	return v.Text
}

// parseNumber parses s as an int64, falling back to float64, and finally to
// the string itself.
func parseNumber(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	return s
}
