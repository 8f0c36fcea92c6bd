package lang

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	TokenEOF            TokenKind = iota // end of input
	TokenText                            // raw content run
	TokenComment                         // {# ... #}
	TokenOutputOpen                      // {{
	TokenStatementOpen                   // {%
	TokenClose                           // }} or %}
	TokenName                            // identifier
	TokenNumber                          // integer or decimal literal
	TokenString                          // quoted string literal
	TokenOperator                        // operator, symbolic or word
	TokenPunct                           // ( ) [ ] { } , . : |
)

var tokenKindName = [...]string{
	TokenEOF:           "end of input",
	TokenText:          "text",
	TokenComment:       "comment",
	TokenOutputOpen:    "output open",
	TokenStatementOpen: "statement open",
	TokenClose:         "directive close",
	TokenName:          "name",
	TokenNumber:        "number",
	TokenString:        "string",
	TokenOperator:      "operator",
	TokenPunct:         "punctuation",
}

// String returns a human-readable name of the token kind.
func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenKindName) {
		return tokenKindName[k]
	}

	return "unknown"
}

// Trim is a whitespace-control marker attached to a directive delimiter.
type Trim byte

const (
	TrimNone Trim = 0
	TrimAll  Trim = '-' // strip all adjacent whitespace
	TrimLine Trim = '~' // strip adjacent spaces and tabs, keep newlines
)

// String returns the marker character, or the empty string for TrimNone.
func (t Trim) String() string {
	if t == TrimNone {
		return ""
	}

	return string(rune(t))
}

// TrimMarkers records the whitespace-control markers used on the opening and
// closing delimiters of a directive.
type TrimMarkers struct {
	Open  Trim
	Close Trim
}

// Token is a lexical unit. Value holds the canonical token text: operators
// spelled with several words are normalized to single spaces ("not in").
type Token struct {
	Kind  TokenKind
	Value string
	Start int // byte offset of the first byte
	End   int // byte offset one past the last byte
	Trim  Trim
}

// Is reports whether the token is an operator, punctuation or name with the
// given value.
func (t Token) Is(value string) bool {
	switch t.Kind {
	case TokenOperator, TokenPunct, TokenName:
		return t.Value == value
	default:
		return false
	}
}
