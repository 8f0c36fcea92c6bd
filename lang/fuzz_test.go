package lang

import (
	"bytes"
	"context"
	"testing"
	"unicode/utf8"
)

// FuzzLexer tests the lexer with random inputs to find edge cases.
func FuzzLexer(f *testing.F) {
	f.Add("text")
	f.Add("{{ x }}")
	f.Add("{% if a %}")
	f.Add("{# c #}")
	f.Add(`{{ "a#{b}c" }}`)
	f.Add("{{ {a: {b: 1}} }}")
	f.Add("{{- x ~}}")
	f.Add("{{ 'unterminated }}")

	f.Fuzz(func(t *testing.T, input string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("lexer panicked on input %q: %v", input, r)
			}
		}()

		lex := NewLexer(input)
		last := 0

		for range 2*len(input) + 2 {
			tok, err := lex.Next()
			if err != nil && tok.Kind != TokenText && tok.Kind != TokenComment {
				lex.Resync(tok.End)
			}

			if tok.Start < last || tok.End < tok.Start || tok.End > len(input) {
				t.Fatalf("token %q has invalid range [%d, %d) after %d",
					tok.Value, tok.Start, tok.End, last)
			}

			if tok.Kind == TokenEOF && lex.Offset() >= len(input) {
				return
			}

			last = tok.Start
		}
	})
}

// FuzzParse tests the document parser with random inputs to find edge cases.
func FuzzParse(f *testing.F) {
	f.Add("title = \"Blog\"\n==\n{{ title }}\n")
	f.Add("<?open?>\ncode\n?>\n==\n<h1>{{ x }}</h1>\n")
	f.Add("{% for post in posts %}{{ post.title }}{% endfor %}")
	f.Add("a = 1\n==\nfn()\n==\n{{ a|f(1, k = 2) is not empty ? 'y' : 'n' }}")
	f.Add("{{ 1 + }}{% if %}{{ @ }}")
	f.Add("{% verbatim %}{{ raw }}{% endverbatim %}")
	f.Add("{{ [1, 2][0:1]|map(x => x ** 2) }}")
	f.Add("[g]\nk = 'multi\nline'\n==\n")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		defer func() {
			if r := recover(); r != nil {
				t.Errorf("parser panicked on input %q: %v", input, r)
			}
		}()

		doc, err := ParseString(context.Background(), input)
		if doc == nil || doc.Markup == nil {
			t.Fatal("ParseString must always return a document")
		}

		if (err != nil) != (doc.Err() != nil) {
			t.Fatalf("error %v disagrees with diagnostics %v", err, doc.Diagnostics)
		}

		for n := range All(doc) {
			s := n.Span()
			if s.Start.Offset < 0 || s.End.Offset > len(input) || s.Start.Offset > s.End.Offset {
				t.Fatalf("%s has invalid span %s", n.NodeKind(), s)
			}
		}

		if err != nil {
			return
		}

		var buf bytes.Buffer
		if err := doc.Format(context.Background(), &buf); err != nil {
			t.Fatalf("Format failed: %v", err)
		}
	})
}

// FuzzExpression checks that canonical expression text parses back to
// itself.
func FuzzExpression(f *testing.F) {
	f.Add("1 + 2 * 3")
	f.Add("a ?? b ?? c")
	f.Add("x|f(1)|g is not empty")
	f.Add("not a and b or c ? d : e")
	f.Add("{a: [1, 2], (k): v}[0:2]")
	f.Add("(a, b) => a ~ b")
	f.Add(`"x#{y|upper}z"`)

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		defer func() {
			if r := recover(); r != nil {
				t.Errorf("parser panicked on input %q: %v", input, r)
			}
		}()

		doc, err := ParseString(context.Background(), "{{ "+input+" }}")
		if err != nil || len(doc.Markup.Nodes) != 1 {
			return
		}

		out, ok := doc.Markup.Nodes[0].(*OutputDirective)
		if !ok {
			return
		}

		canonical := out.Expr.String()

		again, err := ParseString(context.Background(), "{{ "+canonical+" }}")
		if err != nil {
			t.Fatalf("canonical form %q of %q does not parse: %v", canonical, input, err)
		}

		if got := again.Markup.Nodes[0].(*OutputDirective).Expr.String(); got != canonical {
			t.Fatalf("canonical form is not stable: %q -> %q", canonical, got)
		}
	})
}
