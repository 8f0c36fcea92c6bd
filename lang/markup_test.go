package lang

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_ConfigAndMarkup(t *testing.T) {
	src := "title = \"Blog\"\n==\n{{ title }}\n"
	doc := mustParse(t, src)

	if doc.Config == nil {
		t.Fatal("expected configuration section")
	}

	entries := doc.Config.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if entries[0].Key != "title" || entries[0].Value.Text != "Blog" {
		t.Errorf("expected title = Blog, got %s = %s", entries[0].Key, entries[0].Value.Text)
	}

	if entries[0].Value.Kind != ValueQuoted {
		t.Errorf("expected quoted value, got %v", entries[0].Value.Kind)
	}

	if doc.Script != nil {
		t.Errorf("expected no script, got %q", doc.Script.Code)
	}

	want := []string{"output", "content"}
	if diff := cmp.Diff(want, kinds(doc.Markup.Nodes)); diff != "" {
		t.Fatalf("markup kinds mismatch (-want +got):\n%s", diff)
	}

	out := doc.Markup.Nodes[0].(*OutputDirective)
	if v, ok := out.Expr.(*Variable); !ok || v.Name != "title" {
		t.Errorf("expected variable title, got %v", out.Expr)
	}

	if got := out.Span().Text(src); got != "{{ title }}" {
		t.Errorf("directive span: got %q", got)
	}
}

func TestParse_ScriptAndMarkup(t *testing.T) {
	src := "<?open?>\ncode\n?>\n==\n<h1>{{ x }}</h1>\n"
	doc := mustParse(t, src)

	if doc.Config != nil {
		t.Error("expected no configuration section")
	}

	if doc.Script == nil {
		t.Fatal("expected script section")
	}

	if doc.Script.Code != "\ncode\n" {
		t.Errorf("script code: got %q, want %q", doc.Script.Code, "\ncode\n")
	}

	want := []string{"content", "output", "content"}
	if diff := cmp.Diff(want, kinds(doc.Markup.Nodes)); diff != "" {
		t.Fatalf("markup kinds mismatch (-want +got):\n%s", diff)
	}

	if got := doc.Markup.Nodes[0].(*ContentRun).Text; got != "<h1>" {
		t.Errorf("first run: got %q", got)
	}

	if got := doc.Markup.Nodes[2].(*ContentRun).Text; got != "</h1>\n" {
		t.Errorf("last run: got %q", got)
	}
}

func TestParse_LoopMarkup(t *testing.T) {
	doc := mustParse(t, "{% for post in posts %}{{ post.title }}{% endfor %}")

	want := []string{"statement", "output", "statement"}
	if diff := cmp.Diff(want, kinds(doc.Markup.Nodes)); diff != "" {
		t.Fatalf("markup kinds mismatch (-want +got):\n%s", diff)
	}

	loop, ok := doc.Markup.Nodes[0].(*StatementDirective).Stmt.(*ForStatement)
	if !ok {
		t.Fatal("expected for-loop")
	}

	if loop.Variable.Name != "post" || loop.Iterable.String() != "posts" {
		t.Errorf("unexpected loop %s", loop)
	}

	member, ok := doc.Markup.Nodes[1].(*OutputDirective).Expr.(*MemberAccess)
	if !ok || member.Name != "title" || member.Operand.String() != "post" {
		t.Errorf("expected post.title, got %v", doc.Markup.Nodes[1])
	}

	end, ok := doc.Markup.Nodes[2].(*StatementDirective).Stmt.(*GenericTag)
	if !ok || end.Name != "endfor" {
		t.Errorf("expected endfor tag, got %v", doc.Markup.Nodes[2])
	}
}

func TestParseMarkup_Recovery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  *Error
		nodes []string
	}{
		{
			name:  "syntax error in output",
			input: "{{ 1 + }}<p>{{ ok }}</p>",
			kind:  ErrExpression,
			nodes: []string{"content", "output", "content"},
		},
		{
			name:  "lexical error in output",
			input: "{{ a @ b }}after",
			kind:  ErrLex,
			nodes: []string{"content"},
		},
		{
			name:  "unterminated string",
			input: "{{ 'abc }}{% endif %}",
			kind:  ErrLex,
			nodes: []string{"statement"},
		},
		{
			name:  "directive interrupted by another",
			input: "{{ a <p>{% if x %}ok",
			kind:  ErrStatement,
			nodes: []string{"statement", "content"},
		},
		{
			name:  "directive at end of input",
			input: "text {{ a",
			kind:  ErrStatement,
			nodes: []string{"content"},
		},
		{
			name:  "unterminated comment",
			input: "a{# note",
			kind:  ErrLex,
			nodes: []string{"content", "comment"},
		},
		{
			name:  "unclosed bracket in output",
			input: "{{ x[ }}<p>hello world</p>\n{{ y }}",
			kind:  ErrExpression,
			nodes: []string{"content", "output"},
		},
		{
			name:  "unclosed call before quoted content",
			input: "{{ f(a, }}don't stop{{ y }}",
			kind:  ErrExpression,
			nodes: []string{"content", "output"},
		},
		{
			name:  "unclosed verbatim",
			input: "{% verbatim %}{{ x",
			kind:  ErrStatement,
			nodes: []string{"statement", "content"},
		},
		{
			name:  "invalid UTF-8 in content",
			input: "a\xffb",
			kind:  ErrLex,
			nodes: []string{"content"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(context.Background(), tt.input)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}

			if len(doc.Diagnostics) != 1 {
				t.Errorf("expected 1 diagnostic, got %d: %v",
					len(doc.Diagnostics), doc.Diagnostics)
			}

			if diff := cmp.Diff(tt.nodes, kinds(doc.Markup.Nodes)); diff != "" {
				t.Errorf("markup kinds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseMarkup_UnclosedBracket(t *testing.T) {
	src := "{{ x[ }}<p>hello world</p>\n{{ {a: {b: 1}} }}"

	doc, _ := ParseString(context.Background(), src)

	if len(doc.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", doc.Diagnostics)
	}

	d := doc.Diagnostics[0]
	if d.Token != "[" || d.Span.Start.Offset != 4 {
		t.Errorf("diagnostic at %q offset %d, want \"[\" offset 4",
			d.Token, d.Span.Start.Offset)
	}

	run, ok := doc.Markup.Nodes[0].(*ContentRun)
	if !ok || run.Text != "<p>hello world</p>\n" {
		t.Fatalf("expected content run after the directive, got %#v", doc.Markup.Nodes[0])
	}

	out, ok := doc.Markup.Nodes[1].(*OutputDirective)
	if !ok {
		t.Fatalf("expected output directive, got %#v", doc.Markup.Nodes[1])
	}

	if got := out.Expr.NodeKind(); got != KindHash {
		t.Errorf("expression kind = %v, want %v", got, KindHash)
	}
}

func TestParseMarkup_DiagnosticOrder(t *testing.T) {
	src := "{{ 1 + }}\n{% if %}\n{{ @ }}"

	doc, err := ParseString(context.Background(), src)
	if err == nil {
		t.Fatal("expected error")
	}

	if len(doc.Diagnostics) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(doc.Diagnostics))
	}

	for i, d := range doc.Diagnostics {
		if d.Span.Start.Line != i+1 {
			t.Errorf("diagnostic %d: expected line %d, got %d", i, i+1, d.Span.Start.Line)
		}
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}

	if !strings.HasPrefix(perr.Error(), "parse error at line 1, column") {
		t.Errorf("unexpected error text %q", perr.Error())
	}
}

func TestParseMarkup_Trim(t *testing.T) {
	tests := []struct {
		input string
		want  TrimMarkers
	}{
		{"{{ x }}", TrimMarkers{}},
		{"{{- x }}", TrimMarkers{Open: TrimAll}},
		{"{{ x -}}", TrimMarkers{Close: TrimAll}},
		{"{{~ x ~}}", TrimMarkers{Open: TrimLine, Close: TrimLine}},
		{"{%- if x ~%}", TrimMarkers{Open: TrimAll, Close: TrimLine}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			doc := mustParse(t, tt.input)

			var got TrimMarkers

			switch n := doc.Markup.Nodes[0].(type) {
			case *OutputDirective:
				got = n.Trim
			case *StatementDirective:
				got = n.Trim
			default:
				t.Fatalf("unexpected node %T", n)
			}

			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParseMarkup_Content(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain text", "Hello, world", []string{"Hello, world"}},
		{"stray braces", "a { b } c {", []string{"a { b } c {"}},
		{"close delimiters in text", "50%} and }}", []string{"50%} and }}"}},
		{"comment", "a{# note #}b", []string{"a", " note ", "b"}},
		{"verbatim body", "{% verbatim %}{{ raw }}{% endverbatim %}", []string{"", "{{ raw }}", ""}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.input)

			got := make([]string, len(doc.Markup.Nodes))
			for i, n := range doc.Markup.Nodes {
				switch n := n.(type) {
				case *ContentRun:
					got[i] = n.Text
				case *Comment:
					got[i] = n.Text
				}
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("content mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseMarkup_NestedBraces(t *testing.T) {
	e := parseExpr(t, "{a: {b: [1, {c: 2}]}}")

	if got, want := e.String(), "{a: {b: [1, {c: 2}]}}"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
