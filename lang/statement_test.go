package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseStatement_Canonical(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set single", "set x = 1", "set x = 1"},
		{"set multiple", "set a, b = 1, c + 2", "set a, b = 1, (c + 2)"},
		{"set block", "set body", "set body"},
		{"for", "for post in posts", "for post in posts"},
		{"for with key", "for k, v in items", "for k, v in items"},
		{"for over filtered", "for post in posts|slice(0, 3)", "for post in (posts|slice(0, 3))"},
		{"for over range", "for i in 1..10", "for i in (1 .. 10)"},
		{"if", "if a and b", "if (a and b)"},
		{"elseif", "elseif x is defined", "elseif (x is defined)"},
		{"else", "else", "else"},
		{"macro", "macro card(title, size = 'md')", "macro card(title, size = 'md')"},
		{"macro without params", "macro hr()", "macro hr()"},
		{"macro with expression default", "macro m(n = 1 + 1)", "macro m(n = (1 + 1))"},
		{"import", "import 'macros' as m", "import 'macros' as m"},
		{"from import", "from 'forms' import input as field, button", "from 'forms' import input as field, button"},
		{"include", "include 'footer'", "include 'footer'"},
		{"include with modifiers", "include 'card' with {title: t} only", "include 'card' with {title: t} only"},
		{"include ignore missing", "include name ~ '.htm' ignore missing", "include (name ~ '.htm') ignore missing"},
		{"embed", "embed 'panel' with vars", "embed 'panel' with vars"},
		{"with", "with", "with"},
		{"with context", "with {a: 1}", "with {a: 1}"},
		{"with only", "with ctx only", "with ctx only"},
		{"with bare only", "with only", "with only"},
		{"closing tag", "endfor", "endfor"},
		{"domain tag", "partial 'card' title = 'x'", "partial 'card' title='x'"},
		{"domain tag with commas", "placeholder 'head', default = true", "placeholder 'head' default=true"},
		{"tag with bare argument", "flash success", "flash success"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseStmt(t, tt.input).String()
			if got != tt.want {
				t.Errorf("parse %q:\n got: %s\nwant: %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseStatement_Fields(t *testing.T) {
	t.Run("for", func(t *testing.T) {
		s, ok := parseStmt(t, "for k, v in items").(*ForStatement)
		if !ok {
			t.Fatal("expected *ForStatement")
		}

		if s.Key == nil || s.Key.Name != "k" {
			t.Errorf("expected key k, got %v", s.Key)
		}

		if s.Variable.Name != "v" {
			t.Errorf("expected variable v, got %s", s.Variable.Name)
		}

		if _, ok := s.Iterable.(*Variable); !ok {
			t.Errorf("expected variable iterable, got %T", s.Iterable)
		}
	})

	t.Run("set block", func(t *testing.T) {
		s, ok := parseStmt(t, "set body").(*SetStatement)
		if !ok {
			t.Fatal("expected *SetStatement")
		}

		if len(s.Values) != 0 {
			t.Errorf("block form has no values, got %d", len(s.Values))
		}
	})

	t.Run("else", func(t *testing.T) {
		s, ok := parseStmt(t, "else").(*IfStatement)
		if !ok {
			t.Fatal("expected *IfStatement")
		}

		if s.Branch != BranchElse || s.Condition != nil {
			t.Errorf("expected bare else, got %v %v", s.Branch, s.Condition)
		}
	})

	t.Run("include modifiers keep source order", func(t *testing.T) {
		s, ok := parseStmt(t, "include 'x' ignore missing with v only").(*IncludeStatement)
		if !ok {
			t.Fatal("expected *IncludeStatement")
		}

		var got []ModifierKind
		for _, m := range s.Modifiers {
			got = append(got, m.Kind)
		}

		want := []ModifierKind{ModifierIgnoreMissing, ModifierWith, ModifierOnly}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}

		for i := range want {
			if got[i] != want[i] {
				t.Errorf("modifier %d: expected %v, got %v", i, want[i], got[i])
			}
		}
	})

	t.Run("generic tag arguments", func(t *testing.T) {
		s, ok := parseStmt(t, "component 'list' limit = 5").(*GenericTag)
		if !ok {
			t.Fatal("expected *GenericTag")
		}

		if len(s.Args) != 2 {
			t.Fatalf("expected 2 arguments, got %d", len(s.Args))
		}

		if s.Args[0].Name != "" || s.Args[1].Name != "limit" {
			t.Errorf("unexpected argument names %q, %q", s.Args[0].Name, s.Args[1].Name)
		}
	})
}

func TestParseStatement_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    *Error
		message string
	}{
		{"empty", "", ErrStatement, "missing tag name"},
		{"not a name", "1", ErrStatement, "expected tag name"},
		{"too many loop names", "for a, b, c in x", ErrStatement, "at most two names"},
		{"for without in", "for x items", ErrExpression, "expected 'in'"},
		{"if without condition", "if", ErrExpression, "expected expression"},
		{"else with condition", "else x", ErrExpression, "unexpected token in else tag"},
		{"set without target", "set = 1", ErrExpression, "expected name"},
		{"macro without parens", "macro m", ErrExpression, "expected '('"},
		{"macro missing comma", "macro m(a b)", ErrExpression, "expected ')'"},
		{"import without alias", "import 'x'", ErrExpression, "expected 'as'"},
		{"unknown include modifier", "include 'x' bogus", ErrExpression, "expected 'with', 'only' or 'ignore missing'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(context.Background(), "{% "+tt.input+" %}")
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}

			if !errors.Is(err, tt.kind) {
				t.Errorf("expected %v, got %v", tt.kind, err)
			}

			if len(doc.Diagnostics) != 1 {
				t.Fatalf("expected 1 diagnostic, got %d", len(doc.Diagnostics))
			}

			if msg := doc.Diagnostics[0].Message; !strings.Contains(msg, tt.message) {
				t.Errorf("message: got %q, want substring %q", msg, tt.message)
			}

			if len(doc.Markup.Nodes) != 0 {
				t.Errorf("malformed directive should be dropped, got %v",
					kinds(doc.Markup.Nodes))
			}
		})
	}
}
