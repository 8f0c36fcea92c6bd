package lang

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
)

func TestDocument_NodeAt(t *testing.T) {
	src := "{{ user.name }}"
	doc := mustParse(t, src)

	tests := []struct {
		offset int
		kind   NodeKind
		text   string
	}{
		{0, KindOutput, src},
		{3, KindVariable, "user"},
		{7, KindMemberAccess, "user.name"},
		{9, KindMemberAccess, "user.name"},
		{13, KindOutput, src},
	}

	for _, tt := range tests {
		n := doc.NodeAt(tt.offset)
		if n == nil {
			t.Errorf("offset %d: no node", tt.offset)

			continue
		}

		if n.NodeKind() != tt.kind || n.Span().Text(src) != tt.text {
			t.Errorf("offset %d: expected %s %q, got %s %q",
				tt.offset, tt.kind, tt.text, n.NodeKind(), n.Span().Text(src))
		}
	}

	if n := doc.NodeAt(len(src) + 5); n != nil {
		t.Errorf("expected nil outside document, got %s", n.NodeKind())
	}
}

func TestDocument_Parent(t *testing.T) {
	doc := mustParse(t, "{{ a + b }}")

	out := doc.Markup.Nodes[0].(*OutputDirective)
	sum := out.Expr.(*Binary)

	if p := doc.Parent(sum.Left); p != sum {
		t.Errorf("parent of left operand: got %v", p)
	}

	if p := doc.Parent(sum); p != out {
		t.Errorf("parent of expression: got %v", p)
	}

	if p := doc.Parent(out); p != doc.Markup {
		t.Errorf("parent of directive: got %v", p)
	}

	if p := doc.Parent(doc.Markup); p != doc {
		t.Errorf("parent of markup: got %v", p)
	}

	if p := doc.Parent(doc); p != nil {
		t.Errorf("document has no parent, got %v", p)
	}

	siblings := doc.Siblings(sum.Right)
	if len(siblings) != 2 || siblings[0] != sum.Left || siblings[1] != sum.Right {
		t.Errorf("unexpected siblings %v", siblings)
	}

	if s := doc.Siblings(doc); s != nil {
		t.Errorf("document has no siblings, got %v", s)
	}
}

func TestDocument_ParentConcurrent(t *testing.T) {
	doc := mustParse(t, "{% for x in xs %}{{ x }}{% endfor %}")
	loop := doc.Markup.Nodes[0].(*StatementDirective)

	var wg sync.WaitGroup

	for range 8 {
		wg.Go(func() {
			if p := doc.Parent(loop.Stmt); p != loop {
				t.Errorf("unexpected parent %v", p)
			}
		})
	}

	wg.Wait()
}

func TestAll(t *testing.T) {
	src := "a = 1\n==\n{{ x|f(1) }}{# c #}"
	doc := mustParse(t, src)

	var got []string
	for n := range All(doc) {
		got = append(got, n.NodeKind().String())
	}

	want := []string{
		"document",
		"config_section", "config_entry", "config_value",
		"markup",
		"output", "filter", "variable", "argument", "literal",
		"comment",
	}

	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("walk order:\n got: %v\nwant: %v", got, want)
	}

	count := 0
	for range All(doc) {
		count++
		if count == 3 {
			break
		}
	}

	if count != 3 {
		t.Errorf("expected iteration to stop at 3, got %d", count)
	}
}

func TestWalk_SkipChildren(t *testing.T) {
	doc := mustParse(t, "{{ a + b }}{{ c }}")

	var vars []string

	Walk(doc, func(n Node) bool {
		if b, ok := n.(*Binary); ok && b.Op == "+" {
			return false
		}

		if v, ok := n.(*Variable); ok {
			vars = append(vars, v.Name)
		}

		return true
	})

	if strings.Join(vars, ",") != "c" {
		t.Errorf("expected only c, got %v", vars)
	}
}

func TestDocument_Err(t *testing.T) {
	doc, err := ParseString(context.Background(), "<?php x ?>\n<p>hi</p>")
	if err != nil {
		t.Fatalf("warnings are not errors: %v", err)
	}

	if len(doc.Diagnostics) != 1 || doc.Diagnostics[0].Severity != SeverityWarning {
		t.Errorf("expected one warning, got %v", doc.Diagnostics)
	}

	doc, err = ParseString(context.Background(), "{{ }}")
	if err == nil {
		t.Fatal("expected error")
	}

	if doc == nil || doc.Markup == nil {
		t.Fatal("document must be returned with errors")
	}

	var perr *ParseError
	if !errors.As(err, &perr) || len(perr.Diagnostics) != 1 {
		t.Fatalf("expected *ParseError with one diagnostic, got %v", err)
	}

	if !strings.Contains(err.Error(), "^") {
		t.Errorf("expected snippet in error, got %q", err.Error())
	}
}

func TestParse_Cache(t *testing.T) {
	ClearCache()
	defer ClearCache()

	ctx := context.Background()
	src := "{{ cached }}"

	first, err := ParseString(ctx, src, WithCache(true))
	if err != nil {
		t.Fatal(err)
	}

	second, _ := ParseString(ctx, src, WithCache(true))
	if first != second {
		t.Error("expected cached document to be reused")
	}

	other, _ := ParseString(ctx, src, WithCache(true), WithMaxDepth(8))
	if other == first {
		t.Error("different options must not share a cache entry")
	}

	uncached, _ := ParseString(ctx, src)
	if uncached == first {
		t.Error("parsing without the cache must return a fresh document")
	}

	ClearCache()

	third, _ := ParseString(ctx, src, WithCache(true))
	if third == first {
		t.Error("expected a fresh document after ClearCache")
	}
}

func TestParse_CacheConcurrent(t *testing.T) {
	ClearCache()
	defer ClearCache()

	src := "{% for i in 1..3 %}{{ i }}{% endfor %}"
	docs := make([]*Document, 16)

	var wg sync.WaitGroup

	for i := range docs {
		wg.Go(func() {
			docs[i], _ = ParseString(context.Background(), src, WithCache(true))
		})
	}

	wg.Wait()

	for i, doc := range docs {
		if doc != docs[0] {
			t.Errorf("goroutine %d got a different document", i)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestParseReader(t *testing.T) {
	ctx := context.Background()

	doc, err := ParseReader(ctx, strings.NewReader("title = x\n==\n{{ title }}"))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	if !doc.Layout.Shape.Has(ShapeConfig | ShapeMarkup) {
		t.Errorf("unexpected shape %s", doc.Layout.Shape)
	}

	doc, err = ParseReader(ctx, failingReader{})
	if !errors.Is(err, ErrReadInput) {
		t.Fatalf("expected ErrReadInput, got %v", err)
	}

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected wrapped read error, got %v", err)
	}

	if doc != nil {
		t.Error("expected nil document on read failure")
	}
}

func TestDocument_MarshalJSON(t *testing.T) {
	doc, _ := ParseString(context.Background(), "a = 1\n==\n{{ a }}{{ 1 + }}")

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}

	if m["kind"] != "document" || m["shape"] != "configuration+markup" {
		t.Errorf("unexpected document header %v %v", m["kind"], m["shape"])
	}

	diags, ok := m["diagnostics"].([]any)
	if !ok || len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", m["diagnostics"])
	}

	children, ok := m["children"].([]any)
	if !ok || len(children) != 2 {
		t.Fatalf("expected config and markup children, got %v", m["children"])
	}
}
