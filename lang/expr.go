package lang

import (
	"strings"
)

// Expr is an expression node. String returns a canonical rendering in which
// every operator application is fully parenthesized.
type Expr interface {
	Node
	String() string
	expr()
}

// LiteralKind classifies a literal expression.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBool
	LiteralNull
)

// String returns the lowercase name of the literal kind.
func (k LiteralKind) String() string {
	switch k {
	case LiteralString:
		return "string"
	case LiteralNumber:
		return "number"
	case LiteralBool:
		return "bool"
	case LiteralNull:
		return "null"
	default:
		return "unknown"
	}
}

// Literal is a string, number, boolean or null constant. Value is the decoded
// value: escapes processed for strings, lowercase for booleans and null.
// Raw is the source text.
type Literal struct {
	base

	Kind  LiteralKind
	Value string
	Raw   string
}

// Variable is a bare identifier.
type Variable struct {
	base

	Name string
}

// Array is a "[a, b]" literal.
type Array struct {
	base

	Elements []Expr
}

// HashEntry is a single "key: value" pair of a hash literal. An identifier
// key is recorded as a string literal whose Raw text is unquoted.
type HashEntry struct {
	base

	Key   Expr
	Value Expr
}

// Hash is a "{key: value}" literal.
type Hash struct {
	base

	Entries []*HashEntry
}

// Unary is a prefix operator application: "not", "-" or "+".
type Unary struct {
	base

	Op      string
	Operand Expr
}

// Binary is an infix operator application.
type Binary struct {
	base

	Op    string
	Left  Expr
	Right Expr
}

// Ternary is "cond ? then : else". Then is nil for the "cond ?: else" form,
// and Else is nil for "cond ? then".
type Ternary struct {
	base

	Cond Expr
	Then Expr
	Else Expr
}

// Argument is a positional or named call argument. Name is empty for
// positional arguments.
type Argument struct {
	base

	Name  string
	Value Expr
}

// Call is a function or method call. Callee is a *Variable for "f()" and a
// *MemberAccess for "obj.method()".
type Call struct {
	base

	Callee Expr
	Args   []*Argument
}

// Filter applies a named filter to Operand: "operand|name(args)".
type Filter struct {
	base

	Operand Expr
	Name    string
	Args    []*Argument
}

// Test applies a named predicate to Operand: "operand is not name(args)".
type Test struct {
	base

	Operand Expr
	Negated bool
	Name    string
	Args    []*Argument
}

// Subscript is "operand[index]" or the slice form "operand[low:high]".
type Subscript struct {
	base

	Operand Expr
	Index   Expr // nil for slices
	Slice   bool
	Low     Expr // optional slice bound
	High    Expr // optional slice bound
}

// MemberAccess is "operand.name".
type MemberAccess struct {
	base

	Operand Expr
	Name    string
}

// Paren is a parenthesized expression.
type Paren struct {
	base

	Inner Expr
}

// Arrow is an arrow function "(a, b) => body".
type Arrow struct {
	base

	Params []*Identifier
	Body   Expr
}

// InterpolatedString is a double-quoted string with "#{expr}" segments.
// Each part is either a *Literal holding a run of text, whose Raw field is the
// undecoded source, or an *Interpolation.
type InterpolatedString struct {
	base

	Parts []Expr
}

// Interpolation is a "#{expr}" segment of an interpolated string.
type Interpolation struct {
	base

	Expr Expr
}

func (*Literal) expr()            {}
func (*Variable) expr()           {}
func (*Array) expr()              {}
func (*Hash) expr()               {}
func (*Unary) expr()              {}
func (*Binary) expr()             {}
func (*Ternary) expr()            {}
func (*Call) expr()               {}
func (*Filter) expr()             {}
func (*Test) expr()               {}
func (*Subscript) expr()          {}
func (*MemberAccess) expr()       {}
func (*Paren) expr()              {}
func (*Arrow) expr()              {}
func (*InterpolatedString) expr() {}
func (*Interpolation) expr()      {}

func (e *Literal) String() string {
	switch e.Kind {
	case LiteralBool, LiteralNull:
		return e.Value
	default:
		return e.Raw
	}
}

func (e *Variable) String() string { return e.Name }

func (e *Array) String() string {
	return "[" + joinExprs(e.Elements) + "]"
}

func (e *HashEntry) String() string {
	key := e.Key.String()
	if _, ok := e.Key.(*Literal); !ok {
		if _, ok := e.Key.(*Paren); !ok {
			key = "(" + key + ")"
		}
	}

	return key + ": " + e.Value.String()
}

func (e *Hash) String() string {
	parts := make([]string, len(e.Entries))
	for i, entry := range e.Entries {
		parts[i] = entry.String()
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

func (e *Unary) String() string {
	if e.Op == "not" {
		return "(not " + e.Operand.String() + ")"
	}

	return "(" + e.Op + e.Operand.String() + ")"
}

func (e *Binary) String() string {
	return "(" + e.Left.String() + " " + e.Op + " " + e.Right.String() + ")"
}

func (e *Ternary) String() string {
	switch {
	case e.Then == nil:
		return "(" + e.Cond.String() + " ?: " + e.Else.String() + ")"
	case e.Else == nil:
		return "(" + e.Cond.String() + " ? " + e.Then.String() + ")"
	default:
		return "(" + e.Cond.String() + " ? " + e.Then.String() +
			" : " + e.Else.String() + ")"
	}
}

func (e *Argument) String() string {
	if e.Name == "" {
		return e.Value.String()
	}

	return e.Name + "=" + e.Value.String()
}

func (e *Call) String() string {
	return e.Callee.String() + "(" + joinArgs(e.Args) + ")"
}

func (e *Filter) String() string {
	s := "(" + e.Operand.String() + "|" + e.Name
	if e.Args != nil {
		s += "(" + joinArgs(e.Args) + ")"
	}

	return s + ")"
}

func (e *Test) String() string {
	s := "(" + e.Operand.String() + " is "
	if e.Negated {
		s += "not "
	}

	s += e.Name
	if e.Args != nil {
		s += "(" + joinArgs(e.Args) + ")"
	}

	return s + ")"
}

func (e *Subscript) String() string {
	if !e.Slice {
		return e.Operand.String() + "[" + e.Index.String() + "]"
	}

	var low, high string
	if e.Low != nil {
		low = e.Low.String()
	}

	if e.High != nil {
		high = e.High.String()
	}

	return e.Operand.String() + "[" + low + ":" + high + "]"
}

func (e *MemberAccess) String() string {
	return e.Operand.String() + "." + e.Name
}

// String does not add a second pair of parentheses around forms that
// already print their own, so canonical text reparses to the same string.
func (e *Paren) String() string {
	switch e.Inner.(type) {
	case *Unary, *Binary, *Ternary, *Filter, *Test, *Arrow, *Paren:
		return e.Inner.String()
	default:
		return "(" + e.Inner.String() + ")"
	}
}

func (e *Arrow) String() string {
	names := make([]string, len(e.Params))
	for i, p := range e.Params {
		names[i] = p.Name
	}

	return "((" + strings.Join(names, ", ") + ") => " + e.Body.String() + ")"
}

func (e *InterpolatedString) String() string {
	var sb strings.Builder

	sb.WriteByte('"')

	for _, part := range e.Parts {
		sb.WriteString(part.String())
	}

	sb.WriteByte('"')

	return sb.String()
}

func (e *Interpolation) String() string { return "#{" + e.Expr.String() + "}" }

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}

	return strings.Join(parts, ", ")
}

func joinArgs(args []*Argument) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}

	return strings.Join(parts, ", ")
}
