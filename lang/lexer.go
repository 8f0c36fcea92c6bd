package lang

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexState int

const (
	stateData      lexState = iota // raw content between directives
	stateDirective                 // inside {{ }} or {% %}
	stateExpr                      // bounded expression text, no close delimiter
)

// Lexer converts markup text into tokens. Outside of directives it produces
// content runs, comments, and directive open delimiters; inside a directive
// it produces expression tokens up to and including the close delimiter.
//
// A Lexer is a single forward cursor over its input and must not be shared
// between goroutines.
type Lexer struct {
	src   string
	idx   lineIndex
	pos   int
	limit int
	state lexState
	open  TokenKind // directive kind while in stateDirective
	depth int       // bracket nesting within the current directive

	// skipped is the first "}}" passed over inside brackets in the current
	// output directive; its Kind is TokenEOF when there is none.
	skipped Token
}

// NewLexer returns a Lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return newLexer(src, newLineIndex(src), 0, len(src))
}

func newLexer(src string, idx lineIndex, start, end int) *Lexer {
	return &Lexer{src: src, idx: idx, pos: start, limit: end}
}

// newExprLexer returns a Lexer over src[start:end] that treats the whole
// range as expression text.
func newExprLexer(src string, idx lineIndex, start, end int) *Lexer {
	l := newLexer(src, idx, start, end)
	l.state = stateExpr

	return l
}

// Offset returns the byte offset of the cursor.
func (l *Lexer) Offset() int { return l.pos }

// Next returns the next token. A non-nil error is always a *[Diagnostic]
// of kind [ErrLex]. A text token is still returned with an error when the
// content run holds malformed UTF-8; for any other error the directive is
// broken and the caller should [Lexer.Resync].
func (l *Lexer) Next() (Token, error) {
	if l.state == stateData {
		return l.lexData()
	}

	return l.lexDirective()
}

// Resync abandons the current directive, skipping forward from offset to its
// close delimiter. It reports whether a close delimiter was found. When it
// was not, the cursor stops before the next directive opener, or at the end
// of input.
func (l *Lexer) Resync(offset int) bool {
	closer := "%}"
	if l.open == TokenOutputOpen {
		closer = "}}"
	}

	l.state = stateData

	for i := max(offset, l.pos); i < l.limit; i++ {
		if strings.HasPrefix(l.src[i:l.limit], closer) {
			l.pos = i + len(closer)

			return true
		}

		if l.isOpener(i) {
			l.pos = i

			return false
		}
	}

	l.pos = l.limit

	return false
}

// SkippedClose returns the first "}}" of the current output directive that
// was read as closing brackets because a bracket was still open.
func (l *Lexer) SkippedClose() (Token, bool) {
	return l.skipped, l.skipped.Kind == TokenClose
}

// ResumeAfter abandons the current directive and continues with content
// following tok.
func (l *Lexer) ResumeAfter(tok Token) {
	l.pos = tok.End
	l.state = stateData
	l.skipped = Token{}
}

// RawUntil consumes content up to the first match of end, which is left
// unconsumed. It reports whether end was found; if not, the rest of the input
// is consumed.
func (l *Lexer) RawUntil(end *regexp.Regexp) (Token, bool) {
	start := l.pos
	stop := l.limit
	found := false

	if loc := end.FindStringIndex(l.src[start:l.limit]); loc != nil {
		stop = start + loc[0]
		found = true
	}

	l.pos = stop
	l.state = stateData

	return Token{
		Kind:  TokenText,
		Value: l.src[start:stop],
		Start: start,
		End:   stop,
	}, found
}

func (l *Lexer) lexData() (Token, error) {
	if l.pos >= l.limit {
		return Token{Kind: TokenEOF, Start: l.limit, End: l.limit}, nil
	}

	switch {
	case l.hasPrefix("{#"):
		return l.lexComment()
	case l.hasPrefix("{{"):
		return l.lexOpen(TokenOutputOpen), nil
	case l.hasPrefix("{%"):
		return l.lexOpen(TokenStatementOpen), nil
	}

	start := l.pos
	l.pos = l.nextOpener(start)

	tok := Token{
		Kind:  TokenText,
		Value: l.src[start:l.pos],
		Start: start,
		End:   l.pos,
	}

	if !utf8.ValidString(tok.Value) {
		at := start + invalidUTF8At(tok.Value)

		return tok, l.errorf(at, at+1, "invalid UTF-8 encoding", "")
	}

	return tok, nil
}

// nextOpener returns the offset of the next directive or comment opener at
// or after from, or the limit if there is none.
func (l *Lexer) nextOpener(from int) int {
	for i := from; i < l.limit; i++ {
		j := strings.IndexByte(l.src[i:l.limit], '{')
		if j < 0 {
			break
		}

		i += j
		if l.isOpener(i) {
			return i
		}
	}

	return l.limit
}

func (l *Lexer) isOpener(i int) bool {
	if i+1 >= l.limit || l.src[i] != '{' {
		return false
	}

	switch l.src[i+1] {
	case '{', '%', '#':
		return true
	default:
		return false
	}
}

func (l *Lexer) lexComment() (Token, error) {
	start := l.pos

	end := strings.Index(l.src[start+2:l.limit], "#}")
	if end < 0 {
		l.pos = l.limit
		tok := Token{
			Kind:  TokenComment,
			Value: l.src[start+2 : l.limit],
			Start: start,
			End:   l.limit,
		}

		return tok, l.errorf(start, start+2, "unterminated comment", "{#")
	}

	end += start + 2
	l.pos = end + 2

	return Token{
		Kind:  TokenComment,
		Value: l.src[start+2 : end],
		Start: start,
		End:   l.pos,
	}, nil
}

func (l *Lexer) lexOpen(kind TokenKind) Token {
	start := l.pos
	l.pos += 2

	var trim Trim

	if l.pos < l.limit {
		if c := l.src[l.pos]; c == '-' || c == '~' {
			trim = Trim(c)
			l.pos++
		}
	}

	l.state = stateDirective
	l.open = kind
	l.depth = 0
	l.skipped = Token{}

	return Token{
		Kind:  kind,
		Value: l.src[start:l.pos],
		Start: start,
		End:   l.pos,
		Trim:  trim,
	}
}

func (l *Lexer) lexDirective() (Token, error) {
	l.skipSpace()

	if l.pos >= l.limit {
		return Token{Kind: TokenEOF, Start: l.pos, End: l.pos}, nil
	}

	if l.state == stateDirective {
		if tok, ok := l.lexClose(); ok {
			return tok, nil
		}

		// A new opener means the current directive was never closed.
		if l.isOpener(l.pos) {
			l.state = stateData

			return Token{Kind: TokenEOF, Start: l.pos, End: l.pos}, nil
		}
	}

	start := l.pos
	c := l.src[start]

	switch {
	case c == '"' || c == '\'':
		return l.lexString()
	case isDigit(c):
		return l.lexNumber(), nil
	}

	if tok, ok := l.lexWordOperator(); ok {
		return tok, nil
	}

	r, size := utf8.DecodeRuneInString(l.src[start:l.limit])
	if isNameStart(r) {
		return l.lexName(), nil
	}

	if tok, ok := l.lexSymbol(); ok {
		return tok, nil
	}

	if r == utf8.RuneError && size <= 1 {
		l.pos++

		return Token{Start: start, End: l.pos},
			l.errorf(start, l.pos, "invalid UTF-8 encoding", "")
	}

	l.pos += size

	return Token{Start: start, End: l.pos},
		l.errorf(start, l.pos, "unexpected character", string(r))
}

func (l *Lexer) lexClose() (Token, bool) {
	start := l.pos
	i := start

	var trim Trim

	if c := l.src[i]; c == '-' || c == '~' {
		trim = Trim(c)
		i++
	}

	closer := "%}"
	if l.open == TokenOutputOpen {
		closer = "}}"

		if l.depth > 0 {
			if l.skipped.Kind == TokenEOF && strings.HasPrefix(l.src[i:l.limit], closer) {
				l.skipped = Token{
					Kind:  TokenClose,
					Value: l.src[start : i+len(closer)],
					Start: start,
					End:   i + len(closer),
					Trim:  trim,
				}
			}

			return Token{}, false
		}
	}

	if !strings.HasPrefix(l.src[i:l.limit], closer) {
		return Token{}, false
	}

	l.pos = i + len(closer)
	l.state = stateData

	return Token{
		Kind:  TokenClose,
		Value: l.src[start:l.pos],
		Start: start,
		End:   l.pos,
		Trim:  trim,
	}, true
}

func (l *Lexer) skipSpace() {
	for l.pos < l.limit {
		switch l.src[l.pos] {
		case ' ', '\t', '\r', '\n', '\f', '\v':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) lexString() (Token, error) {
	start := l.pos

	end, ok := l.skipQuoted(start)
	if !ok {
		l.pos = start + 1

		return Token{Start: start, End: l.pos},
			l.errorf(start, start+1, "unterminated string literal",
				l.src[start:start+1])
	}

	l.pos = end

	return Token{
		Kind:  TokenString,
		Value: l.src[start:end],
		Start: start,
		End:   end,
	}, nil
}

// skipQuoted returns the offset just past the string literal starting at i.
func (l *Lexer) skipQuoted(i int) (int, bool) {
	quote := l.src[i]

	for i++; i < l.limit; i++ {
		switch c := l.src[i]; {
		case c == '\\':
			i++
		case c == quote:
			return i + 1, true
		case quote == '"' && c == '#' && i+1 < l.limit && l.src[i+1] == '{':
			end, ok := l.skipInterpolation(i + 2)
			if !ok {
				return l.limit, false
			}

			i = end - 1
		}
	}

	return l.limit, false
}

// skipInterpolation returns the offset just past the '}' that closes the
// interpolation whose body starts at i.
func (l *Lexer) skipInterpolation(i int) (int, bool) {
	depth := 1

	for i < l.limit {
		switch l.src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		case '"', '\'':
			end, ok := l.skipQuoted(i)
			if !ok {
				return l.limit, false
			}

			i = end

			continue
		}

		i++
	}

	return l.limit, false
}

func (l *Lexer) lexNumber() Token {
	start := l.pos
	l.skipDigits()

	if l.peekByte(0) == '.' && isDigit(l.peekByte(1)) {
		l.pos++
		l.skipDigits()
	}

	if c := l.peekByte(0); c == 'e' || c == 'E' {
		n := 1
		if s := l.peekByte(1); s == '+' || s == '-' {
			n = 2
		}

		if isDigit(l.peekByte(n)) {
			l.pos += n
			l.skipDigits()
		}
	}

	return Token{
		Kind:  TokenNumber,
		Value: l.src[start:l.pos],
		Start: start,
		End:   l.pos,
	}
}

func (l *Lexer) skipDigits() {
	for l.pos < l.limit && isDigit(l.src[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) lexName() Token {
	start := l.pos

	for l.pos < l.limit {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:l.limit])
		if !isNameContinue(r) {
			break
		}

		l.pos += size
	}

	return Token{
		Kind:  TokenName,
		Value: l.src[start:l.pos],
		Start: start,
		End:   l.pos,
	}
}

// wordOperators lists operators spelled with letters, longest first so that
// "not in" wins over "not".
var wordOperators = [][]string{
	{"not", "in"},
	{"starts", "with"},
	{"ends", "with"},
	{"b-and"},
	{"b-xor"},
	{"b-or"},
	{"matches"},
	{"and"},
	{"not"},
	{"or"},
	{"in"},
}

func (l *Lexer) lexWordOperator() (Token, bool) {
	start := l.pos

	for _, words := range wordOperators {
		i := start
		ok := true

		for n, word := range words {
			if n > 0 {
				j := i
				for j < l.limit && (l.src[j] == ' ' || l.src[j] == '\t') {
					j++
				}

				if j == i {
					ok = false

					break
				}

				i = j
			}

			if !strings.HasPrefix(l.src[i:l.limit], word) {
				ok = false

				break
			}

			i += len(word)
		}

		if !ok {
			continue
		}

		if i < l.limit {
			if r, _ := utf8.DecodeRuneInString(l.src[i:l.limit]); isNameContinue(r) {
				continue
			}
		}

		l.pos = i

		return Token{
			Kind:  TokenOperator,
			Value: strings.Join(words, " "),
			Start: start,
			End:   i,
		}, true
	}

	return Token{}, false
}

// symbolOperators lists multi-character operators, longest first.
var symbolOperators = []string{
	"<=>", "**", "//", "..", "==", "!=", "<=", ">=", "??", "?:", "=>",
}

const (
	singleOperators = "+-~*/%<>=?"
	punctuation     = "()[]{},.:|"
)

func (l *Lexer) lexSymbol() (Token, bool) {
	start := l.pos
	rest := l.src[start:l.limit]

	for _, op := range symbolOperators {
		if strings.HasPrefix(rest, op) {
			l.pos += len(op)

			return Token{
				Kind:  TokenOperator,
				Value: op,
				Start: start,
				End:   l.pos,
			}, true
		}
	}

	c := rest[0]

	kind := TokenOperator

	switch {
	case strings.IndexByte(singleOperators, c) >= 0:
	case strings.IndexByte(punctuation, c) >= 0:
		kind = TokenPunct

		switch c {
		case '(', '[', '{':
			l.depth++
		case ')', ']', '}':
			if l.depth > 0 {
				l.depth--
			}
		}
	default:
		return Token{}, false
	}

	l.pos++

	return Token{Kind: kind, Value: rest[:1], Start: start, End: l.pos}, true
}

func (l *Lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(l.src[l.pos:l.limit], s)
}

func (l *Lexer) peekByte(n int) byte {
	if l.pos+n < l.limit {
		return l.src[l.pos+n]
	}

	return 0
}

func (l *Lexer) errorf(start, end int, msg, tok string) *Diagnostic {
	return &Diagnostic{
		Kind:     ErrLex,
		Severity: SeverityError,
		Message:  msg,
		Token:    tok,
		Span:     l.idx.span(start, end),
	}
}

// invalidUTF8At returns the offset of the first invalid byte in s.
func invalidUTF8At(s string) int {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}

		i += size
	}

	return len(s)
}

// Character classification

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameStart(r rune) bool {
	return r == '_' || (r != utf8.RuneError && unicode.IsLetter(r))
}

func isNameContinue(r rune) bool {
	return isNameStart(r) || unicode.IsDigit(r)
}
