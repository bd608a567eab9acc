package sml

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/soup/pkg/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokColon
	tokEquals
	tokComma
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokColon:
		return "':'"
	case tokEquals:
		return "'='"
	case tokComma:
		return "','"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	}
	return "unknown token"
}

// token is a lexeme plus the trivia (whitespace and comments) preceding it.
// Tokens created by edits have auto set; their leading trivia is computed
// from the surrounding indentation when the document is written.
type token struct {
	kind    tokenKind
	text    string // raw source text, including quotes for strings
	value   string // decoded text for strings and identifiers
	leading string
	auto    bool
	line    int
	col     int
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) advance(n int) {
	for i := 0; i < n; i++ {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidSyntax, "line %d:%d: %s", line, col, fmt.Sprintf(format, args...))
}

// trivia consumes whitespace and comments.
func (l *lexer) trivia() string {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.advance(1)
		case c == '#':
			n := strings.IndexByte(l.src[l.pos:], '\n')
			if n < 0 {
				n = len(l.src) - l.pos
			}
			l.advance(n)
		default:
			return l.src[start:l.pos]
		}
	}
	return l.src[start:l.pos]
}

func (l *lexer) next() (*token, error) {
	lead := l.trivia()
	tok := &token{leading: lead, line: l.line, col: l.col}
	if l.pos >= len(l.src) {
		tok.kind = tokEOF
		return tok, nil
	}

	c := l.src[l.pos]
	switch c {
	case ':':
		tok.kind = tokColon
	case '=':
		tok.kind = tokEquals
	case ',':
		tok.kind = tokComma
	case '{':
		tok.kind = tokLBrace
	case '}':
		tok.kind = tokRBrace
	case '[':
		tok.kind = tokLBracket
	case ']':
		tok.kind = tokRBracket
	case '"':
		return l.lexString(tok)
	default:
		if !isIdentStart(c) {
			r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
			return nil, l.errorf(l.line, l.col, "unexpected character %q", r)
		}
		n := 1
		for l.pos+n < len(l.src) && isIdentPart(l.src[l.pos+n]) {
			n++
		}
		tok.kind = tokIdent
		tok.text = l.src[l.pos : l.pos+n]
		tok.value = tok.text
		l.advance(n)
		return tok, nil
	}
	tok.text = l.src[l.pos : l.pos+1]
	l.advance(1)
	return tok, nil
}

func (l *lexer) lexString(tok *token) (*token, error) {
	var sb strings.Builder
	i := l.pos + 1
	for {
		if i >= len(l.src) || l.src[i] == '\n' {
			return nil, l.errorf(tok.line, tok.col, "unterminated string")
		}
		c := l.src[i]
		if c == '"' {
			break
		}
		if c != '\\' {
			sb.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(l.src) {
			return nil, l.errorf(tok.line, tok.col, "unterminated string")
		}
		switch l.src[i+1] {
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		default:
			return nil, l.errorf(tok.line, tok.col+(i-l.pos), "invalid escape sequence \\%c", l.src[i+1])
		}
		i += 2
	}
	tok.kind = tokString
	tok.text = l.src[l.pos : i+1]
	tok.value = sb.String()
	l.advance(i + 1 - l.pos)
	return tok, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '.' || c == '-'
}

func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)

func quote(s string) string {
	return `"` + escaper.Replace(s) + `"`
}

func formatKey(name string) string {
	if isIdent(name) {
		return name
	}
	return quote(name)
}
