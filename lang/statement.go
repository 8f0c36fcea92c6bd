package lang

import (
	"strings"
)

// Stmt is the body of a statement directive.
type Stmt interface {
	Node
	String() string
	stmt()
}

// Identifier is a name introduced by a statement, such as an assignment
// target or a loop variable.
type Identifier struct {
	base

	Name string
}

func (i *Identifier) String() string { return i.Name }

// SetStatement is "set a, b = x, y". Values is empty for the block form
// "set name", whose value is the body up to "endset".
type SetStatement struct {
	base

	Targets []*Identifier
	Values  []Expr
}

// ForStatement is "for value in iterable" or "for key, value in iterable".
type ForStatement struct {
	base

	Key      *Identifier // nil unless two names are bound
	Variable *Identifier
	Iterable Expr
}

// Branch identifies a form of the conditional statement.
type Branch int

const (
	BranchIf Branch = iota
	BranchElseIf
	BranchElse
)

// String returns the tag name of the branch.
func (b Branch) String() string {
	switch b {
	case BranchIf:
		return "if"
	case BranchElseIf:
		return "elseif"
	case BranchElse:
		return "else"
	default:
		return "unknown"
	}
}

// IfStatement is one of "if cond", "elseif cond" or "else". Condition is nil
// for BranchElse. The closing "endif" is a [GenericTag].
type IfStatement struct {
	base

	Branch    Branch
	Condition Expr
}

// MacroParam is a macro parameter with an optional default value.
type MacroParam struct {
	base

	Name    *Identifier
	Default Expr
}

// MacroStatement is "macro name(params)".
type MacroStatement struct {
	base

	Name   *Identifier
	Params []*MacroParam
}

// ImportStatement is "import template as alias".
type ImportStatement struct {
	base

	Template Expr
	Alias    *Identifier
}

// ImportItem is a single name imported by a from-import, with optional alias.
type ImportItem struct {
	base

	Name  *Identifier
	Alias *Identifier
}

// FromImportStatement is "from template import a as b, c".
type FromImportStatement struct {
	base

	Template Expr
	Items    []*ImportItem
}

// IncludeKind distinguishes "include" from "embed".
type IncludeKind int

const (
	IncludeInclude IncludeKind = iota
	IncludeEmbed
)

// String returns the tag name.
func (k IncludeKind) String() string {
	if k == IncludeEmbed {
		return "embed"
	}

	return "include"
}

// ModifierKind identifies an include modifier.
type ModifierKind int

const (
	ModifierWith ModifierKind = iota
	ModifierOnly
	ModifierIgnoreMissing
)

// String returns the modifier keywords.
func (k ModifierKind) String() string {
	switch k {
	case ModifierWith:
		return "with"
	case ModifierOnly:
		return "only"
	case ModifierIgnoreMissing:
		return "ignore missing"
	default:
		return "unknown"
	}
}

// IncludeModifier is one of "with expr", "only" or "ignore missing".
type IncludeModifier struct {
	base

	Kind  ModifierKind
	Value Expr // set for ModifierWith only
}

func (m *IncludeModifier) String() string {
	if m.Kind == ModifierWith {
		return "with " + m.Value.String()
	}

	return m.Kind.String()
}

// IncludeStatement is "include template" or "embed template" followed by
// modifiers in source order.
type IncludeStatement struct {
	base

	Kind      IncludeKind
	Template  Expr
	Modifiers []*IncludeModifier
}

// WithStatement is "with [context] [only]".
type WithStatement struct {
	base

	Context Expr // nil when omitted
	Only    bool
}

// GenericTag is any tag without a dedicated form: closing tags such as
// "endfor", and domain tags such as "partial" or "placeholder".
type GenericTag struct {
	base

	Name string
	Args []*Argument
}

func (*SetStatement) stmt()        {}
func (*ForStatement) stmt()        {}
func (*IfStatement) stmt()         {}
func (*MacroStatement) stmt()      {}
func (*ImportStatement) stmt()     {}
func (*FromImportStatement) stmt() {}
func (*IncludeStatement) stmt()    {}
func (*WithStatement) stmt()       {}
func (*GenericTag) stmt()          {}

func (s *SetStatement) String() string {
	names := make([]string, len(s.Targets))
	for i, t := range s.Targets {
		names[i] = t.Name
	}

	out := "set " + strings.Join(names, ", ")
	if len(s.Values) > 0 {
		out += " = " + joinExprs(s.Values)
	}

	return out
}

func (s *ForStatement) String() string {
	names := s.Variable.Name
	if s.Key != nil {
		names = s.Key.Name + ", " + names
	}

	return "for " + names + " in " + s.Iterable.String()
}

func (s *IfStatement) String() string {
	if s.Condition == nil {
		return s.Branch.String()
	}

	return s.Branch.String() + " " + s.Condition.String()
}

func (s *MacroStatement) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.Name.Name
		if p.Default != nil {
			params[i] += " = " + p.Default.String()
		}
	}

	return "macro " + s.Name.Name + "(" + strings.Join(params, ", ") + ")"
}

func (s *ImportStatement) String() string {
	return "import " + s.Template.String() + " as " + s.Alias.Name
}

func (s *FromImportStatement) String() string {
	items := make([]string, len(s.Items))
	for i, item := range s.Items {
		items[i] = item.Name.Name
		if item.Alias != nil {
			items[i] += " as " + item.Alias.Name
		}
	}

	return "from " + s.Template.String() + " import " + strings.Join(items, ", ")
}

func (s *IncludeStatement) String() string {
	out := s.Kind.String() + " " + s.Template.String()
	for _, m := range s.Modifiers {
		out += " " + m.String()
	}

	return out
}

func (s *WithStatement) String() string {
	out := "with"
	if s.Context != nil {
		out += " " + s.Context.String()
	}

	if s.Only {
		out += " only"
	}

	return out
}

func (s *GenericTag) String() string {
	if len(s.Args) == 0 {
		return s.Name
	}

	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}

	return s.Name + " " + strings.Join(parts, " ")
}

// parseStatement parses the tokens of a statement directive.
func (p *exprParser) parseStatement() (Stmt, error) {
	tok := p.peek()
	if tok.Kind == TokenEOF {
		return nil, p.statementError(tok, "missing tag name")
	}

	if tok.Kind != TokenName {
		return nil, p.statementError(tok, "expected tag name")
	}

	var (
		stmt Stmt
		err  error
	)

	switch tok.Value {
	case "set":
		stmt, err = p.parseSet()
	case "for":
		stmt, err = p.parseFor()
	case "if", "elseif", "else":
		stmt, err = p.parseIf()
	case "macro":
		stmt, err = p.parseMacro()
	case "import":
		stmt, err = p.parseImport()
	case "from":
		stmt, err = p.parseFromImport()
	case "include", "embed":
		stmt, err = p.parseInclude()
	case "with":
		stmt, err = p.parseWith()
	default:
		stmt, err = p.parseGenericTag()
	}

	if err != nil {
		return nil, err
	}

	if !p.atEnd() {
		return nil, p.unexpected(p.peek(), "unexpected token in "+tok.Value+" tag")
	}

	return stmt, nil
}

func (p *exprParser) parseSet() (Stmt, error) {
	start := p.advance().Start

	targets, err := p.parseIdentifiers()
	if err != nil {
		return nil, err
	}

	s := &SetStatement{Targets: targets}
	last := Node(targets[len(targets)-1])

	if p.peek().Is("=") {
		p.advance()

		for {
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			s.Values = append(s.Values, value)
			last = value

			if !p.peek().Is(",") {
				break
			}

			p.advance()
		}
	}

	s.base = p.spanFrom(start, last)

	return s, nil
}

func (p *exprParser) parseFor() (Stmt, error) {
	start := p.advance().Start

	names, err := p.parseIdentifiers()
	if err != nil {
		return nil, err
	}

	if len(names) > 2 {
		return nil, p.statementError(p.toks[p.pos-1],
			"for loop binds at most two names")
	}

	if _, err := p.expect("in"); err != nil {
		return nil, err
	}

	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	s := &ForStatement{
		base:     p.spanFrom(start, iterable),
		Variable: names[len(names)-1],
		Iterable: iterable,
	}

	if len(names) == 2 {
		s.Key = names[0]
	}

	return s, nil
}

func (p *exprParser) parseIf() (Stmt, error) {
	tok := p.advance()

	s := &IfStatement{base: p.tokenSpan(tok)}

	switch tok.Value {
	case "if":
		s.Branch = BranchIf
	case "elseif":
		s.Branch = BranchElseIf
	default:
		s.Branch = BranchElse

		return s, nil
	}

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	s.Condition = cond
	s.base = p.spanFrom(tok.Start, cond)

	return s, nil
}

func (p *exprParser) parseMacro() (Stmt, error) {
	start := p.advance().Start

	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect("("); err != nil {
		return nil, err
	}

	s := &MacroStatement{Name: name, Params: []*MacroParam{}}

	for !p.peek().Is(")") {
		param, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}

		mp := &MacroParam{base: param.base, Name: param}

		if p.peek().Is("=") {
			p.advance()

			mp.Default, err = p.parseExpression()
			if err != nil {
				return nil, err
			}

			mp.base = p.spanOf(param, mp.Default)
		}

		s.Params = append(s.Params, mp)

		if !p.peek().Is(",") {
			break
		}

		p.advance()
	}

	closing, err := p.expect(")")
	if err != nil {
		return nil, err
	}

	s.base = base{span: p.idx.span(start, closing.End)}

	return s, nil
}

func (p *exprParser) parseImport() (Stmt, error) {
	start := p.advance().Start

	template, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect("as"); err != nil {
		return nil, err
	}

	alias, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}

	return &ImportStatement{
		base:     p.spanFrom(start, alias),
		Template: template,
		Alias:    alias,
	}, nil
}

func (p *exprParser) parseFromImport() (Stmt, error) {
	start := p.advance().Start

	template, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect("import"); err != nil {
		return nil, err
	}

	s := &FromImportStatement{Template: template}

	for {
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}

		item := &ImportItem{base: name.base, Name: name}

		if p.peek().Is("as") {
			p.advance()

			item.Alias, err = p.parseIdentifier()
			if err != nil {
				return nil, err
			}

			item.base = p.spanOf(name, item.Alias)
		}

		s.Items = append(s.Items, item)

		if !p.peek().Is(",") {
			break
		}

		p.advance()
	}

	s.base = p.spanFrom(start, s.Items[len(s.Items)-1])

	return s, nil
}

func (p *exprParser) parseInclude() (Stmt, error) {
	tok := p.advance()

	template, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	s := &IncludeStatement{Template: template}
	if tok.Value == "embed" {
		s.Kind = IncludeEmbed
	}

	last := Node(template)

	for !p.atEnd() {
		mod := p.peek()

		var m *IncludeModifier

		switch {
		case mod.Is("with"):
			p.advance()

			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			m = &IncludeModifier{
				base:  p.spanFrom(mod.Start, value),
				Kind:  ModifierWith,
				Value: value,
			}
		case mod.Is("only"):
			p.advance()

			m = &IncludeModifier{base: p.tokenSpan(mod), Kind: ModifierOnly}
		case mod.Is("ignore") && p.peekAt(1).Is("missing"):
			p.advance()
			missing := p.advance()

			m = &IncludeModifier{
				base: base{span: p.idx.span(mod.Start, missing.End)},
				Kind: ModifierIgnoreMissing,
			}
		default:
			return nil, p.unexpected(mod,
				"expected 'with', 'only' or 'ignore missing'")
		}

		s.Modifiers = append(s.Modifiers, m)
		last = m
	}

	s.base = p.spanFrom(tok.Start, last)

	return s, nil
}

func (p *exprParser) parseWith() (Stmt, error) {
	tok := p.advance()

	s := &WithStatement{base: p.tokenSpan(tok)}

	if !p.atEnd() && !p.peek().Is("only") {
		context, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		s.Context = context
		s.base = p.spanFrom(tok.Start, context)
	}

	if only := p.peek(); only.Is("only") {
		p.advance()

		s.Only = true
		s.base = base{span: p.idx.span(tok.Start, only.End)}
	}

	return s, nil
}

// parseGenericTag parses "name arg*" where each argument is an expression or
// a named "key = expr" pair, optionally separated by commas.
func (p *exprParser) parseGenericTag() (Stmt, error) {
	tok := p.advance()

	s := &GenericTag{base: p.tokenSpan(tok), Name: tok.Value}

	for !p.atEnd() {
		arg, err := p.parseArgument()
		if err != nil {
			return nil, err
		}

		s.Args = append(s.Args, arg)
		s.base = p.spanFrom(tok.Start, arg)

		if p.peek().Is(",") {
			p.advance()
		}
	}

	return s, nil
}

// parseIdentifiers parses "name (',' name)*".
func (p *exprParser) parseIdentifiers() ([]*Identifier, error) {
	var names []*Identifier

	for {
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}

		names = append(names, name)

		if !p.peek().Is(",") {
			return names, nil
		}

		p.advance()
	}
}

func (p *exprParser) parseIdentifier() (*Identifier, error) {
	tok := p.peek()
	if tok.Kind != TokenName {
		return nil, p.unexpected(tok, "expected name")
	}

	p.advance()

	return &Identifier{base: p.tokenSpan(tok), Name: tok.Value}, nil
}

func (p *exprParser) statementError(tok Token, msg string) *Diagnostic {
	return &Diagnostic{
		Kind:     ErrStatement,
		Severity: SeverityError,
		Message:  msg,
		Token:    tok.Value,
		Span:     p.tokenSpan(tok).span,
	}
}
