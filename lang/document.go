package lang

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/ardnew/cmstpl/log"
)

// DefaultMaxDepth is the default limit on expression nesting.
const DefaultMaxDepth = 256

// Document is the root of a parsed template. Markup is never nil; Config and
// Script are nil when the document has no such section.
//
// A Document is immutable once returned and safe for concurrent reads.
type Document struct {
	base

	Source      string
	Layout      *Layout
	Config      *ConfigSection
	Script      *ScriptPayload
	Markup      *MarkupSection
	Diagnostics []*Diagnostic // in source order

	parentsOnce sync.Once
	parents     map[Node]Node
}

// Option configures parsing.
type Option func(*options)

// options holds the parse configuration. The logger does not affect the
// result of a parse and is excluded from cache keys.
type options struct {
	maxDepth int
	cache    bool
	logger   log.Logger
}

// WithMaxDepth limits expression nesting. A limit of zero disables the check.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithCache enables the process-wide parse cache for [ParseReader] and
// [ParseString]. Cached documents are shared between callers.
func WithCache(enable bool) Option {
	return func(o *options) {
		o.cache = enable
	}
}

// WithLogger sets the logger used for trace output.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	return o
}

// ParseString parses a complete template document. The returned Document is
// never nil. The error is a *[ParseError] holding every error-severity
// diagnostic, or nil if there were none; warnings are available only from
// [Document.Diagnostics].
func ParseString(ctx context.Context, s string, opts ...Option) (*Document, error) {
	o := applyOptions(opts...)
	if o.cache {
		return parseCached(ctx, s, o)
	}

	return parse(ctx, s, o)
}

func parse(ctx context.Context, src string, o *options) (*Document, error) {
	idx := newLineIndex(src)

	layout, diags := split(src, idx)

	doc := &Document{
		base:   base{span: idx.span(0, len(src))},
		Source: src,
		Layout: layout,
	}

	o.logger.TraceContext(ctx, "split document",
		slog.String("shape", layout.Shape.String()),
		slog.Int("separators", len(layout.Separators)))

	if layout.Config != nil {
		var configDiags []*Diagnostic

		doc.Config, configDiags = parseConfig(src, idx,
			layout.Config.Start.Offset, layout.Config.End.Offset)
		diags = append(diags, configDiags...)
	}

	if layout.Script != nil {
		doc.Script = extractScript(src, idx,
			layout.Script.Start.Offset, layout.Script.End.Offset)
	}

	markup, markupDiags := parseMarkup(src, idx,
		layout.Markup.Start.Offset, layout.Markup.End.Offset, o.maxDepth)
	doc.Markup = markup
	diags = append(diags, markupDiags...)

	slices.SortStableFunc(diags, func(a, b *Diagnostic) int {
		return a.Offset() - b.Offset()
	})

	doc.Diagnostics = diags

	o.logger.TraceContext(ctx, "parse complete",
		slog.Int("markup_nodes", len(markup.Nodes)),
		slog.Int("diagnostics", len(diags)))

	return doc, doc.Err()
}

// Err returns a *[ParseError] holding the error-severity diagnostics, or nil
// if there are none.
func (d *Document) Err() error {
	var errs []*Diagnostic

	for _, diag := range d.Diagnostics {
		if diag.Severity == SeverityError {
			errs = append(errs, diag)
		}
	}

	if len(errs) == 0 {
		return nil
	}

	return &ParseError{Diagnostics: errs, Source: d.Source}
}

// Parent returns the parent of n, or nil if n is the document itself or does
// not belong to it.
func (d *Document) Parent(n Node) Node {
	d.parentsOnce.Do(func() {
		d.parents = make(map[Node]Node)

		Walk(d, func(parent Node) bool {
			for _, child := range Children(parent) {
				d.parents[child] = parent
			}

			return true
		})
	})

	return d.parents[n]
}

// Siblings returns the children of the parent of n, including n itself.
func (d *Document) Siblings(n Node) []Node {
	parent := d.Parent(n)
	if parent == nil {
		return nil
	}

	return Children(parent)
}

// NodeAt returns the innermost node whose span contains the byte offset, or
// nil if the offset is outside the document.
func (d *Document) NodeAt(offset int) Node {
	var found Node

	Walk(d, func(n Node) bool {
		span := n.Span()
		if !span.Contains(offset) {
			return false
		}

		found = n

		return true
	})

	return found
}
