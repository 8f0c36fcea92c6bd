package lang

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// NewConfigSection returns a section holding items in order. Nodes built
// this way have zero spans.
func NewConfigSection(items ...ConfigItem) *ConfigSection {
	return &ConfigSection{Items: items}
}

// NewConfigHeader returns a "[name]" header.
func NewConfigHeader(name string) *ConfigHeader {
	return &ConfigHeader{Name: name}
}

// NewConfigEntry returns an entry for key in group. A nil value makes a bare
// flag; booleans are written unquoted, numbers as numbers, and anything else
// as a quoted string.
func NewConfigEntry(group, key string, value any) *ConfigEntry {
	e := &ConfigEntry{Key: key, Group: group}

	switch v := value.(type) {
	case nil:
	case bool:
		s := strconv.FormatBool(v)
		e.Value = &ConfigValue{Kind: ValueUnquoted, Text: s, Raw: s}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64:
		s := fmt.Sprint(v)
		e.Value = &ConfigValue{Kind: ValueNumber, Text: s, Raw: s}
	default:
		e.Value = quotedValue(fmt.Sprint(v))
	}

	return e
}

// quotedValue quotes s with double quotes, or single quotes when s contains
// a double quote. Values are not escaped.
func quotedValue(s string) *ConfigValue {
	q := byte('"')
	if strings.IndexByte(s, '"') >= 0 {
		q = '\''
	}

	return &ConfigValue{
		Kind:  ValueQuoted,
		Text:  s,
		Raw:   string(q) + s + string(q),
		Quote: q,
	}
}

// Format writes the section in configuration syntax, one item per line.
func (c *ConfigSection) Format(_ context.Context, w io.Writer) error {
	var sb strings.Builder

	c.format(&sb)

	_, err := io.WriteString(w, sb.String())

	return err
}
