package lang

import (
	"iter"
)

// Node is implemented by every element of a parsed document.
type Node interface {
	NodeKind() NodeKind
	Span() Span
}

// base records the source span of a node.
type base struct {
	span Span
}

// Span returns the source range of the node.
func (b base) Span() Span { return b.span }

// NodeKind identifies the concrete type of a Node.
type NodeKind int

const (
	KindDocument NodeKind = iota
	KindConfigSection
	KindConfigHeader
	KindConfigEntry
	KindConfigValue
	KindConfigComment
	KindScript
	KindMarkup
	KindContent
	KindComment
	KindOutput
	KindStatement
	KindIdentifier
	KindSet
	KindFor
	KindIf
	KindMacro
	KindMacroParam
	KindImport
	KindFromImport
	KindImportItem
	KindInclude
	KindIncludeModifier
	KindWith
	KindGenericTag
	KindArgument
	KindLiteral
	KindVariable
	KindArray
	KindHash
	KindHashEntry
	KindUnary
	KindBinary
	KindTernary
	KindCall
	KindFilter
	KindTest
	KindSubscript
	KindMemberAccess
	KindParen
	KindArrow
	KindInterpolatedString
	KindInterpolation
)

var nodeKindName = [...]string{
	KindDocument:           "document",
	KindConfigSection:      "config_section",
	KindConfigHeader:       "config_header",
	KindConfigEntry:        "config_entry",
	KindConfigValue:        "config_value",
	KindConfigComment:      "config_comment",
	KindScript:             "script",
	KindMarkup:             "markup",
	KindContent:            "content",
	KindComment:            "comment",
	KindOutput:             "output",
	KindStatement:          "statement",
	KindIdentifier:         "identifier",
	KindSet:                "set",
	KindFor:                "for",
	KindIf:                 "if",
	KindMacro:              "macro",
	KindMacroParam:         "macro_param",
	KindImport:             "import",
	KindFromImport:         "from_import",
	KindImportItem:         "import_item",
	KindInclude:            "include",
	KindIncludeModifier:    "include_modifier",
	KindWith:               "with",
	KindGenericTag:         "tag",
	KindArgument:           "argument",
	KindLiteral:            "literal",
	KindVariable:           "variable",
	KindArray:              "array",
	KindHash:               "hash",
	KindHashEntry:          "hash_entry",
	KindUnary:              "unary",
	KindBinary:             "binary",
	KindTernary:            "ternary",
	KindCall:               "call",
	KindFilter:             "filter",
	KindTest:               "test",
	KindSubscript:          "subscript",
	KindMemberAccess:       "member_access",
	KindParen:              "paren",
	KindArrow:              "arrow",
	KindInterpolatedString: "interpolated_string",
	KindInterpolation:      "interpolation",
}

// String returns the snake_case name of the kind.
func (k NodeKind) String() string {
	if k >= 0 && int(k) < len(nodeKindName) {
		return nodeKindName[k]
	}

	return "unknown"
}

func (*Document) NodeKind() NodeKind            { return KindDocument }
func (*MarkupSection) NodeKind() NodeKind       { return KindMarkup }
func (*ContentRun) NodeKind() NodeKind          { return KindContent }
func (*Comment) NodeKind() NodeKind             { return KindComment }
func (*OutputDirective) NodeKind() NodeKind     { return KindOutput }
func (*StatementDirective) NodeKind() NodeKind  { return KindStatement }
func (*Identifier) NodeKind() NodeKind          { return KindIdentifier }
func (*SetStatement) NodeKind() NodeKind        { return KindSet }
func (*ForStatement) NodeKind() NodeKind        { return KindFor }
func (*IfStatement) NodeKind() NodeKind         { return KindIf }
func (*MacroStatement) NodeKind() NodeKind      { return KindMacro }
func (*MacroParam) NodeKind() NodeKind          { return KindMacroParam }
func (*ImportStatement) NodeKind() NodeKind     { return KindImport }
func (*FromImportStatement) NodeKind() NodeKind { return KindFromImport }
func (*ImportItem) NodeKind() NodeKind          { return KindImportItem }
func (*IncludeStatement) NodeKind() NodeKind    { return KindInclude }
func (*IncludeModifier) NodeKind() NodeKind     { return KindIncludeModifier }
func (*WithStatement) NodeKind() NodeKind       { return KindWith }
func (*GenericTag) NodeKind() NodeKind          { return KindGenericTag }
func (*Argument) NodeKind() NodeKind            { return KindArgument }
func (*Literal) NodeKind() NodeKind             { return KindLiteral }
func (*Variable) NodeKind() NodeKind            { return KindVariable }
func (*Array) NodeKind() NodeKind               { return KindArray }
func (*Hash) NodeKind() NodeKind                { return KindHash }
func (*HashEntry) NodeKind() NodeKind           { return KindHashEntry }
func (*Unary) NodeKind() NodeKind               { return KindUnary }
func (*Binary) NodeKind() NodeKind              { return KindBinary }
func (*Ternary) NodeKind() NodeKind             { return KindTernary }
func (*Call) NodeKind() NodeKind                { return KindCall }
func (*Filter) NodeKind() NodeKind              { return KindFilter }
func (*Test) NodeKind() NodeKind                { return KindTest }
func (*Subscript) NodeKind() NodeKind           { return KindSubscript }
func (*MemberAccess) NodeKind() NodeKind        { return KindMemberAccess }
func (*Paren) NodeKind() NodeKind               { return KindParen }
func (*Arrow) NodeKind() NodeKind               { return KindArrow }
func (*InterpolatedString) NodeKind() NodeKind  { return KindInterpolatedString }
func (*Interpolation) NodeKind() NodeKind       { return KindInterpolation }

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	var c children

	switch n := n.(type) {
	case *Document:
		if n.Config != nil {
			c.add(n.Config)
		}

		if n.Script != nil {
			c.add(n.Script)
		}

		c.add(n.Markup)
	case *ConfigSection:
		for _, item := range n.Items {
			c.add(item)
		}
	case *ConfigEntry:
		if n.Value != nil {
			c.add(n.Value)
		}
	case *MarkupSection:
		for _, node := range n.Nodes {
			c.add(node)
		}
	case *OutputDirective:
		c.add(n.Expr)
	case *StatementDirective:
		c.add(n.Stmt)
	case *SetStatement:
		for _, t := range n.Targets {
			c.add(t)
		}

		c.exprs(n.Values...)
	case *ForStatement:
		if n.Key != nil {
			c.add(n.Key)
		}

		c.add(n.Variable)
		c.add(n.Iterable)
	case *IfStatement:
		c.exprs(n.Condition)
	case *MacroStatement:
		c.add(n.Name)

		for _, p := range n.Params {
			c.add(p)
		}
	case *MacroParam:
		c.add(n.Name)
		c.exprs(n.Default)
	case *ImportStatement:
		c.add(n.Template)
		c.add(n.Alias)
	case *FromImportStatement:
		c.add(n.Template)

		for _, item := range n.Items {
			c.add(item)
		}
	case *ImportItem:
		c.add(n.Name)

		if n.Alias != nil {
			c.add(n.Alias)
		}
	case *IncludeStatement:
		c.add(n.Template)

		for _, m := range n.Modifiers {
			c.add(m)
		}
	case *IncludeModifier:
		c.exprs(n.Value)
	case *WithStatement:
		c.exprs(n.Context)
	case *GenericTag:
		c.args(n.Args)
	case *Argument:
		c.add(n.Value)
	case *Array:
		c.exprs(n.Elements...)
	case *Hash:
		for _, e := range n.Entries {
			c.add(e)
		}
	case *HashEntry:
		c.add(n.Key)
		c.add(n.Value)
	case *Unary:
		c.add(n.Operand)
	case *Binary:
		c.add(n.Left)
		c.add(n.Right)
	case *Ternary:
		c.exprs(n.Cond, n.Then, n.Else)
	case *Call:
		c.add(n.Callee)
		c.args(n.Args)
	case *Filter:
		c.add(n.Operand)
		c.args(n.Args)
	case *Test:
		c.add(n.Operand)
		c.args(n.Args)
	case *Subscript:
		c.exprs(n.Operand, n.Index, n.Low, n.High)
	case *MemberAccess:
		c.add(n.Operand)
	case *Paren:
		c.add(n.Inner)
	case *Arrow:
		for _, p := range n.Params {
			c.add(p)
		}

		c.add(n.Body)
	case *InterpolatedString:
		c.exprs(n.Parts...)
	case *Interpolation:
		c.add(n.Expr)
	}

	return c
}

type children []Node

func (c *children) add(n Node) { *c = append(*c, n) }

// exprs adds the non-nil expressions.
func (c *children) exprs(exprs ...Expr) {
	for _, e := range exprs {
		if e != nil {
			*c = append(*c, e)
		}
	}
}

func (c *children) args(args []*Argument) {
	for _, a := range args {
		*c = append(*c, a)
	}
}

// Walk traverses the tree rooted at n in depth-first order, calling fn for
// each node before its children. If fn returns false, the children of that
// node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	for _, child := range Children(n) {
		Walk(child, fn)
	}
}

// All returns an iterator over every node of the tree rooted at n in
// depth-first order.
func All(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		stop := false

		Walk(n, func(node Node) bool {
			if stop {
				return false
			}

			if !yield(node) {
				stop = true
			}

			return !stop
		})
	}
}
