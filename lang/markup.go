package lang

import (
	"errors"
	"regexp"
)

// MarkupNode is a top-level node of the markup section: a *ContentRun,
// *Comment, *OutputDirective or *StatementDirective.
type MarkupNode interface {
	Node
	markupNode()
}

// ContentRun is literal text between directives. It is never interpreted.
type ContentRun struct {
	base

	Text string
}

// Comment is a "{# ... #}" comment; Text excludes the delimiters.
type Comment struct {
	base

	Text string
}

// OutputDirective is "{{ expr }}".
type OutputDirective struct {
	base

	Expr Expr
	Trim TrimMarkers
}

// StatementDirective is "{% stmt %}".
type StatementDirective struct {
	base

	Stmt Stmt
	Trim TrimMarkers
}

func (*ContentRun) markupNode()         {}
func (*Comment) markupNode()            {}
func (*OutputDirective) markupNode()    {}
func (*StatementDirective) markupNode() {}

// MarkupSection is the ordered node sequence of the markup block. The order
// of Nodes is the render order.
type MarkupSection struct {
	base

	Nodes []MarkupNode
}

// endVerbatim matches the tag that closes a verbatim block.
var endVerbatim = regexp.MustCompile(`\{%[-~]?\s*endverbatim\s*[-~]?%\}`)

type markupParser struct {
	src      string
	idx      lineIndex
	lex      *Lexer
	maxDepth int
	nodes    []MarkupNode
	diags    []*Diagnostic
}

// parseMarkup parses src[start:end] as markup. A malformed directive is
// reported and omitted; parsing resumes after its close delimiter.
func parseMarkup(
	src string,
	idx lineIndex,
	start, end int,
	maxDepth int,
) (*MarkupSection, []*Diagnostic) {
	p := &markupParser{
		src:      src,
		idx:      idx,
		lex:      newLexer(src, idx, start, end),
		maxDepth: maxDepth,
		nodes:    []MarkupNode{},
	}

	for {
		tok, err := p.lex.Next()
		if err != nil {
			p.report(err)
		}

		switch tok.Kind {
		case TokenEOF:
			return &MarkupSection{
				base:  base{span: idx.span(start, end)},
				Nodes: p.nodes,
			}, p.diags

		case TokenText:
			p.nodes = append(p.nodes, &ContentRun{
				base: base{span: idx.span(tok.Start, tok.End)},
				Text: tok.Value,
			})

		case TokenComment:
			p.nodes = append(p.nodes, &Comment{
				base: base{span: idx.span(tok.Start, tok.End)},
				Text: tok.Value,
			})

		case TokenOutputOpen:
			p.parseOutput(tok)

		case TokenStatementOpen:
			p.parseStatementDirective(tok)
		}
	}
}

// collect gathers the tokens of the directive opened by open. It reports
// false if the directive is malformed at the lexical level or unterminated,
// in which case a diagnostic has been recorded.
func (p *markupParser) collect(open Token) ([]Token, Token, bool) {
	var toks []Token

	for {
		tok, err := p.lex.Next()
		if err != nil || tok.Kind == TokenEOF {
			if closing, ok := p.lex.SkippedClose(); ok {
				p.unbalanced(open, toks, closing)
				p.lex.ResumeAfter(closing)

				return nil, Token{}, false
			}
		}

		if err != nil {
			p.report(err)
			p.lex.Resync(tok.End)

			return nil, Token{}, false
		}

		switch tok.Kind {
		case TokenClose:
			return toks, tok, true

		case TokenEOF:
			p.diags = append(p.diags, &Diagnostic{
				Kind:     ErrStatement,
				Severity: SeverityError,
				Message:  "unterminated directive",
				Token:    open.Value,
				Span:     p.idx.span(open.Start, tok.Start),
			})

			return nil, Token{}, false

		default:
			toks = append(toks, tok)
		}
	}
}

// unbalanced reports the bracket left open before closing, the "}}" that
// ends an output directive whose brackets do not balance.
func (p *markupParser) unbalanced(open Token, toks []Token, closing Token) {
	var stack []Token

	for _, tok := range toks {
		if tok.Start >= closing.Start {
			break
		}

		if tok.Kind != TokenPunct {
			continue
		}

		switch tok.Value {
		case "(", "[", "{":
			stack = append(stack, tok)
		case ")", "]", "}":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	at := open
	if len(stack) > 0 {
		at = stack[0]
	}

	p.diags = append(p.diags, &Diagnostic{
		Kind:     ErrExpression,
		Severity: SeverityError,
		Message:  "unclosed bracket in output directive",
		Token:    at.Value,
		Span:     p.idx.span(at.Start, at.End),
	})
}

func (p *markupParser) parseOutput(open Token) {
	toks, closing, ok := p.collect(open)
	if !ok {
		return
	}

	ep := p.exprParser(toks, closing)

	e, err := ep.parseExpression()
	if err == nil && !ep.atEnd() {
		err = ep.unexpected(ep.peek(), "unexpected token in output directive")
	}

	if err != nil {
		p.report(err)

		return
	}

	p.nodes = append(p.nodes, &OutputDirective{
		base: base{span: p.idx.span(open.Start, closing.End)},
		Expr: e,
		Trim: TrimMarkers{Open: open.Trim, Close: closing.Trim},
	})
}

func (p *markupParser) parseStatementDirective(open Token) {
	toks, closing, ok := p.collect(open)
	if !ok {
		return
	}

	stmt, err := p.exprParser(toks, closing).parseStatement()
	if err != nil {
		p.report(err)

		return
	}

	p.nodes = append(p.nodes, &StatementDirective{
		base: base{span: p.idx.span(open.Start, closing.End)},
		Stmt: stmt,
		Trim: TrimMarkers{Open: open.Trim, Close: closing.Trim},
	})

	if tag, ok := stmt.(*GenericTag); ok && tag.Name == "verbatim" {
		p.parseVerbatim(open)
	}
}

// parseVerbatim captures the body of a verbatim block as a single content
// run, leaving the closing tag to be parsed normally.
func (p *markupParser) parseVerbatim(open Token) {
	body, found := p.lex.RawUntil(endVerbatim)
	if body.End > body.Start {
		p.nodes = append(p.nodes, &ContentRun{
			base: base{span: p.idx.span(body.Start, body.End)},
			Text: body.Value,
		})
	}

	if !found {
		p.diags = append(p.diags, &Diagnostic{
			Kind:     ErrStatement,
			Severity: SeverityError,
			Message:  "unclosed verbatim block",
			Token:    "verbatim",
			Span:     p.idx.span(open.Start, body.End),
		})
	}
}

func (p *markupParser) exprParser(toks []Token, closing Token) *exprParser {
	end := Token{
		Kind:  TokenEOF,
		Value: closing.Value,
		Start: closing.Start,
		End:   closing.End,
	}

	return newExprParser(p.src, p.idx, toks, end, p.maxDepth)
}

func (p *markupParser) report(err error) {
	var d *Diagnostic
	if errors.As(err, &d) {
		p.diags = append(p.diags, d)

		return
	}

	p.diags = append(p.diags, &Diagnostic{
		Kind:     ErrStatement,
		Severity: SeverityError,
		Message:  err.Error(),
	})
}
