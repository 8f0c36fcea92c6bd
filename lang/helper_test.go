package lang

import (
	"context"
	"testing"
)

// mustParse parses src and fails the test on any error diagnostic.
func mustParse(t testing.TB, src string, opts ...Option) *Document {
	t.Helper()

	doc, err := ParseString(context.Background(), src, opts...)
	if err != nil {
		t.Fatalf("ParseString(%q) failed: %v", src, err)
	}

	return doc
}

// parseExpr parses src as the body of an output directive.
func parseExpr(t testing.TB, src string) Expr {
	t.Helper()

	doc := mustParse(t, "{{ "+src+" }}")

	if len(doc.Markup.Nodes) != 1 {
		t.Fatalf("expected 1 markup node, got %d", len(doc.Markup.Nodes))
	}

	out, ok := doc.Markup.Nodes[0].(*OutputDirective)
	if !ok {
		t.Fatalf("expected *OutputDirective, got %T", doc.Markup.Nodes[0])
	}

	return out.Expr
}

// parseStmt parses src as the body of a statement directive.
func parseStmt(t testing.TB, src string) Stmt {
	t.Helper()

	doc := mustParse(t, "{% "+src+" %}")

	if len(doc.Markup.Nodes) != 1 {
		t.Fatalf("expected 1 markup node, got %d", len(doc.Markup.Nodes))
	}

	sd, ok := doc.Markup.Nodes[0].(*StatementDirective)
	if !ok {
		t.Fatalf("expected *StatementDirective, got %T", doc.Markup.Nodes[0])
	}

	return sd.Stmt
}

// kinds returns the kind names of the markup nodes.
func kinds(nodes []MarkupNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.NodeKind().String()
	}

	return out
}
