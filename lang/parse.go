package lang

import (
	"strings"
)

// exprParser is a recursive descent parser over the tokens of a single
// directive. Binary operators are parsed by precedence climbing.
type exprParser struct {
	src      string
	idx      lineIndex
	toks     []Token
	pos      int
	end      Token // returned by peek once toks is exhausted
	depth    int
	maxDepth int
}

func newExprParser(
	src string,
	idx lineIndex,
	toks []Token,
	end Token,
	maxDepth int,
) *exprParser {
	return &exprParser{
		src:      src,
		idx:      idx,
		toks:     toks,
		end:      end,
		maxDepth: maxDepth,
	}
}

// binaryPrecedence maps binary operators to their binding strength; higher
// binds tighter. All are left-associative except "**".
var binaryPrecedence = map[string]int{
	"or":          1,
	"and":         2,
	"b-or":        3,
	"b-xor":       4,
	"b-and":       5,
	"==":          6,
	"!=":          6,
	"<=>":         6,
	"<":           7,
	">":           7,
	">=":          7,
	"<=":          7,
	"not in":      7,
	"in":          7,
	"matches":     7,
	"starts with": 7,
	"ends with":   7,
	"..":          8,
	"+":           9,
	"-":           9,
	"~":           10,
	"*":           11,
	"/":           11,
	"//":          11,
	"%":           11,
	"**":          12,
	"??":          13,
}

func binaryOp(tok Token) (int, bool) {
	if tok.Kind != TokenOperator {
		return 0, false
	}

	prec, ok := binaryPrecedence[tok.Value]

	return prec, ok
}

// parseExpression parses a full expression, including the ternary forms that
// bind more loosely than any binary operator.
func (p *exprParser) parseExpression() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	cond, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}

	return p.parseTernary(cond)
}

func (p *exprParser) parseTernary(cond Expr) (Expr, error) {
	switch tok := p.peek(); {
	case tok.Is("?:"):
		p.advance()

		alt, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		return &Ternary{
			base: p.spanOf(cond, alt),
			Cond: cond,
			Else: alt,
		}, nil

	case tok.Is("?"):
		p.advance()

		then, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		t := &Ternary{base: p.spanOf(cond, then), Cond: cond, Then: then}

		if p.peek().Is(":") {
			p.advance()

			t.Else, err = p.parseExpression()
			if err != nil {
				return nil, err
			}

			t.base = p.spanOf(cond, t.Else)
		}

		return t, nil
	}

	return cond, nil
}

// parseBinary parses binary operators binding at least as tightly as
// minPrec.
func (p *exprParser) parseBinary(minPrec int) (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()

		prec, ok := binaryOp(tok)
		if !ok || prec < minPrec {
			return left, nil
		}

		p.advance()

		next := prec + 1
		if tok.Value == "**" {
			next = prec
		}

		right, err := p.parseBinary(next)
		if err != nil {
			return nil, err
		}

		left = &Binary{
			base:  p.spanOf(left, right),
			Op:    tok.Value,
			Left:  left,
			Right: right,
		}
	}
}

func (p *exprParser) parseUnary() (Expr, error) {
	tok := p.peek()
	if tok.Kind != TokenOperator ||
		(tok.Value != "not" && tok.Value != "-" && tok.Value != "+") {
		return p.parsePostfix()
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	p.advance()

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return &Unary{
		base:    p.spanFrom(tok.Start, operand),
		Op:      tok.Value,
		Operand: operand,
	}, nil
}

// parsePostfix parses a primary expression followed by any number of member
// accesses, subscripts, calls, filters and tests.
func (p *exprParser) parsePostfix() (Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()

		switch {
		case tok.Is("."):
			e, err = p.parseMember(e)
		case tok.Is("["):
			e, err = p.parseSubscript(e)
		case tok.Is("(") && isCallee(e):
			e, err = p.parseCall(e)
		case tok.Is("|"):
			e, err = p.parseFilter(e)
		case tok.Kind == TokenName && tok.Value == "is":
			e, err = p.parseTest(e)
		default:
			return e, nil
		}

		if err != nil {
			return nil, err
		}
	}
}

func isCallee(e Expr) bool {
	switch e.(type) {
	case *Variable, *MemberAccess:
		return true
	default:
		return false
	}
}

func (p *exprParser) parseMember(operand Expr) (Expr, error) {
	p.advance()

	tok := p.peek()
	if !isNameLike(tok) && tok.Kind != TokenNumber {
		return nil, p.unexpected(tok, "expected attribute name after '.'")
	}

	p.advance()

	return &MemberAccess{
		base:    p.spanTo(operand, tok.End),
		Operand: operand,
		Name:    tok.Value,
	}, nil
}

func (p *exprParser) parseSubscript(operand Expr) (Expr, error) {
	p.advance()

	s := &Subscript{Operand: operand}

	if !p.peek().Is(":") {
		index, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		s.Index = index
	}

	if p.peek().Is(":") {
		p.advance()

		s.Slice = true
		s.Low, s.Index = s.Index, nil

		if !p.peek().Is("]") {
			high, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			s.High = high
		}
	}

	closing, err := p.expect("]")
	if err != nil {
		return nil, err
	}

	s.base = p.spanTo(operand, closing.End)

	return s, nil
}

func (p *exprParser) parseCall(callee Expr) (Expr, error) {
	args, end, err := p.parseArguments()
	if err != nil {
		return nil, err
	}

	return &Call{
		base:   p.spanTo(callee, end),
		Callee: callee,
		Args:   args,
	}, nil
}

func (p *exprParser) parseFilter(operand Expr) (Expr, error) {
	p.advance()

	name := p.peek()
	if name.Kind != TokenName {
		return nil, p.unexpected(name, "expected filter name after '|'")
	}

	p.advance()

	f := &Filter{
		base:    p.spanTo(operand, name.End),
		Operand: operand,
		Name:    name.Value,
	}

	if p.peek().Is("(") {
		args, end, err := p.parseArguments()
		if err != nil {
			return nil, err
		}

		f.Args = args
		f.base = p.spanTo(operand, end)
	}

	return f, nil
}

// twoWordTests lists tests whose names are spelled with two words.
var twoWordTests = map[string]string{
	"divisible": "by",
	"same":      "as",
}

func (p *exprParser) parseTest(operand Expr) (Expr, error) {
	p.advance()

	t := &Test{Operand: operand}

	if p.peek().Is("not") {
		p.advance()

		t.Negated = true
	}

	name := p.peek()
	if !isNameLike(name) {
		return nil, p.unexpected(name, "expected test name after 'is'")
	}

	p.advance()

	t.Name = name.Value
	end := name.End

	if second, ok := twoWordTests[name.Value]; ok && p.peek().Is(second) {
		end = p.advance().End
		t.Name += " " + second
	}

	if p.peek().Is("(") {
		args, argsEnd, err := p.parseArguments()
		if err != nil {
			return nil, err
		}

		t.Args = args
		end = argsEnd
	}

	t.base = p.spanTo(operand, end)

	return t, nil
}

// parseArguments parses a parenthesized argument list. Positional and named
// arguments may be freely interleaved. It returns the offset just past the
// closing parenthesis.
func (p *exprParser) parseArguments() ([]*Argument, int, error) {
	p.advance()

	args := []*Argument{}

	for !p.peek().Is(")") {
		arg, err := p.parseArgument()
		if err != nil {
			return nil, 0, err
		}

		args = append(args, arg)

		if !p.peek().Is(",") {
			break
		}

		p.advance()
	}

	closing, err := p.expect(")")
	if err != nil {
		return nil, 0, err
	}

	return args, closing.End, nil
}

// parseArgument parses "name = expr" or a positional expression.
func (p *exprParser) parseArgument() (*Argument, error) {
	if tok := p.peek(); tok.Kind == TokenName && p.peekAt(1).Is("=") {
		p.advance()
		p.advance()

		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		return &Argument{
			base:  p.spanFrom(tok.Start, value),
			Name:  tok.Value,
			Value: value,
		}, nil
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &Argument{base: base{span: value.Span()}, Value: value}, nil
}

func (p *exprParser) parsePrimary() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	tok := p.peek()

	switch tok.Kind {
	case TokenNumber:
		p.advance()

		return &Literal{
			base:  p.tokenSpan(tok),
			Kind:  LiteralNumber,
			Value: tok.Value,
			Raw:   tok.Value,
		}, nil

	case TokenString:
		p.advance()

		return p.parseString(tok)

	case TokenName:
		return p.parseName()

	case TokenPunct:
		switch tok.Value {
		case "(":
			if p.isArrowParams() {
				return p.parseArrow()
			}

			return p.parseParen()
		case "[":
			return p.parseArray()
		case "{":
			return p.parseHash()
		}
	}

	return nil, p.unexpected(tok, "expected expression")
}

// keywordLiterals maps case-insensitive keyword spellings to literals.
var keywordLiterals = map[string]LiteralKind{
	"true":  LiteralBool,
	"false": LiteralBool,
	"null":  LiteralNull,
	"none":  LiteralNull,
}

func (p *exprParser) parseName() (Expr, error) {
	tok := p.advance()

	if p.peek().Is("=>") {
		p.advance()

		param := &Identifier{base: p.tokenSpan(tok), Name: tok.Value}

		body, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		return &Arrow{
			base:   p.spanFrom(tok.Start, body),
			Params: []*Identifier{param},
			Body:   body,
		}, nil
	}

	lower := strings.ToLower(tok.Value)
	if kind, ok := keywordLiterals[lower]; ok {
		value := lower
		if kind == LiteralNull {
			value = "null"
		}

		return &Literal{
			base:  p.tokenSpan(tok),
			Kind:  kind,
			Value: value,
			Raw:   tok.Value,
		}, nil
	}

	return &Variable{base: p.tokenSpan(tok), Name: tok.Value}, nil
}

// isArrowParams reports whether the '(' at the cursor opens the parameter
// list of an arrow function.
func (p *exprParser) isArrowParams() bool {
	i := 1

	for {
		tok := p.peekAt(i)

		switch {
		case tok.Is(")"):
			return p.peekAt(i + 1).Is("=>")
		case tok.Kind != TokenName:
			return false
		}

		i++

		switch next := p.peekAt(i); {
		case next.Is(","):
			i++
		case !next.Is(")"):
			return false
		}
	}
}

func (p *exprParser) parseArrow() (Expr, error) {
	open := p.advance()

	var params []*Identifier

	for !p.peek().Is(")") {
		tok := p.advance()
		params = append(params, &Identifier{
			base: p.tokenSpan(tok),
			Name: tok.Value,
		})

		if p.peek().Is(",") {
			p.advance()
		}
	}

	p.advance() // ')'
	p.advance() // '=>'

	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &Arrow{
		base:   p.spanFrom(open.Start, body),
		Params: params,
		Body:   body,
	}, nil
}

func (p *exprParser) parseParen() (Expr, error) {
	open := p.advance()

	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	closing, err := p.expect(")")
	if err != nil {
		return nil, err
	}

	return &Paren{
		base:  base{span: p.idx.span(open.Start, closing.End)},
		Inner: inner,
	}, nil
}

func (p *exprParser) parseArray() (Expr, error) {
	open := p.advance()

	elements := []Expr{}

	for !p.peek().Is("]") {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		elements = append(elements, e)

		if !p.peek().Is(",") {
			break
		}

		p.advance()
	}

	closing, err := p.expect("]")
	if err != nil {
		return nil, err
	}

	return &Array{
		base:     base{span: p.idx.span(open.Start, closing.End)},
		Elements: elements,
	}, nil
}

func (p *exprParser) parseHash() (Expr, error) {
	open := p.advance()

	entries := []*HashEntry{}

	for !p.peek().Is("}") {
		entry, err := p.parseHashEntry()
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)

		if p.peek().Is(",") {
			p.advance()
		}
	}

	closing, err := p.expect("}")
	if err != nil {
		return nil, err
	}

	return &Hash{
		base:    base{span: p.idx.span(open.Start, closing.End)},
		Entries: entries,
	}, nil
}

func (p *exprParser) parseHashEntry() (*HashEntry, error) {
	var (
		key Expr
		err error
	)

	switch tok := p.peek(); {
	case isNameLike(tok):
		p.advance()

		key = &Literal{
			base:  p.tokenSpan(tok),
			Kind:  LiteralString,
			Value: tok.Value,
			Raw:   tok.Value,
		}
	case tok.Kind == TokenString:
		p.advance()

		key, err = p.parseString(tok)
	case tok.Kind == TokenNumber:
		p.advance()

		key = &Literal{
			base:  p.tokenSpan(tok),
			Kind:  LiteralNumber,
			Value: tok.Value,
			Raw:   tok.Value,
		}
	case tok.Is("("):
		key, err = p.parseParen()
	default:
		return nil, p.unexpected(tok, "expected hash key")
	}

	if err != nil {
		return nil, err
	}

	if _, err := p.expect(":"); err != nil {
		return nil, err
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &HashEntry{
		base:  p.spanOf(key, value),
		Key:   key,
		Value: value,
	}, nil
}

// parseString decodes a string literal token. Double-quoted strings with
// "#{...}" segments become an *InterpolatedString whose expressions are
// parsed from their original source offsets.
func (p *exprParser) parseString(tok Token) (Expr, error) {
	quote := tok.Value[0]
	start, end := tok.Start+1, tok.End-1

	var (
		parts []Expr
		text  = start
	)

	for i := start; i < end; i++ {
		switch {
		case p.src[i] == '\\':
			i++
		case quote == '"' && p.src[i] == '#' && i+1 < end && p.src[i+1] == '{':
			if i > text {
				parts = append(parts, p.stringText(text, i))
			}

			lex := newExprLexer(p.src, p.idx, i+2, end)

			closeAt, _ := lex.skipInterpolation(i + 2)

			e, err := p.parseInterpolation(i, closeAt)
			if err != nil {
				return nil, err
			}

			parts = append(parts, e)
			i = closeAt - 1
			text = closeAt
		}
	}

	if parts == nil {
		return &Literal{
			base:  p.tokenSpan(tok),
			Kind:  LiteralString,
			Value: unescape(p.src[start:end]),
			Raw:   tok.Value,
		}, nil
	}

	if text < end {
		parts = append(parts, p.stringText(text, end))
	}

	return &InterpolatedString{base: p.tokenSpan(tok), Parts: parts}, nil
}

func (p *exprParser) stringText(start, end int) *Literal {
	return &Literal{
		base:  base{span: p.idx.span(start, end)},
		Kind:  LiteralString,
		Value: unescape(p.src[start:end]),
		Raw:   p.src[start:end],
	}
}

// parseInterpolation parses the "#{...}" segment spanning [start, end).
func (p *exprParser) parseInterpolation(start, end int) (*Interpolation, error) {
	toks, err := lexExpression(p.src, p.idx, start+2, end-1)
	if err != nil {
		return nil, err
	}

	closing := Token{Kind: TokenEOF, Value: "}", Start: end - 1, End: end}
	sub := newExprParser(p.src, p.idx, toks, closing, p.maxDepth)
	sub.depth = p.depth

	e, err := sub.parseExpression()
	if err != nil {
		return nil, err
	}

	if tok := sub.peek(); tok.Kind != TokenEOF {
		return nil, sub.unexpected(tok, "unexpected token in interpolation")
	}

	return &Interpolation{
		base: base{span: p.idx.span(start, end)},
		Expr: e,
	}, nil
}

// lexExpression lexes src[start:end] as expression text.
func lexExpression(src string, idx lineIndex, start, end int) ([]Token, error) {
	lex := newExprLexer(src, idx, start, end)

	var toks []Token

	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}

		if tok.Kind == TokenEOF {
			return toks, nil
		}

		toks = append(toks, tok)
	}
}

// unescape processes backslash escapes. An unknown escape yields the escaped
// character itself.
func unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)

			continue
		}

		i++

		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'v':
			sb.WriteByte('\v')
		case 'f':
			sb.WriteByte('\f')
		case 'e':
			sb.WriteByte(0x1b)
		case '0':
			sb.WriteByte(0)
		default:
			sb.WriteByte(s[i])
		}
	}

	return sb.String()
}

// Helper methods

func (p *exprParser) peek() Token { return p.peekAt(0) }

func (p *exprParser) peekAt(n int) Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}

	return p.end
}

func (p *exprParser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}

	return tok
}

func (p *exprParser) expect(value string) (Token, error) {
	tok := p.peek()
	if !tok.Is(value) {
		return tok, p.unexpected(tok, "expected '"+value+"'")
	}

	return p.advance(), nil
}

func (p *exprParser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *exprParser) enter() error {
	p.depth++
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		tok := p.peek()

		return &Diagnostic{
			Kind:     ErrMaxDepth,
			Severity: SeverityError,
			Message:  "expression nesting is too deep",
			Token:    tok.Value,
			Span:     p.tokenSpan(tok).span,
		}
	}

	return nil
}

func (p *exprParser) leave() { p.depth-- }

func (p *exprParser) unexpected(tok Token, msg string) *Diagnostic {
	if tok.Kind == TokenEOF && p.end.Value == "" {
		msg += ", found end of input"
	}

	return &Diagnostic{
		Kind:     ErrExpression,
		Severity: SeverityError,
		Message:  msg,
		Token:    tok.Value,
		Span:     p.tokenSpan(tok).span,
	}
}

func (p *exprParser) tokenSpan(tok Token) base {
	return base{span: p.idx.span(tok.Start, tok.End)}
}

func (p *exprParser) spanOf(first, last Node) base {
	return base{span: Span{Start: first.Span().Start, End: last.Span().End}}
}

func (p *exprParser) spanFrom(start int, last Node) base {
	return base{span: Span{Start: p.idx.position(start), End: last.Span().End}}
}

func (p *exprParser) spanTo(first Node, end int) base {
	return base{span: Span{Start: first.Span().Start, End: p.idx.position(end)}}
}

// isNameLike reports whether tok can serve as a name: an identifier or an
// operator spelled as a single word, such as "and" in "{and: 1}".
func isNameLike(tok Token) bool {
	switch tok.Kind {
	case TokenName:
		return true
	case TokenOperator:
		return tok.Value != "" && isASCIILetter(tok.Value[0]) &&
			!strings.Contains(tok.Value, " ")
	default:
		return false
	}
}
