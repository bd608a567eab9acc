package sml

import (
	"fmt"
	"strings"

	"github.com/matzehuels/soup/pkg/errors"
)

// Parse parses an SML document. Syntax errors carry the INVALID_SYNTAX code
// and the line and column of the offending token.
// A leading UTF-8 byte order mark is skipped and written back by
// [Document.WriteTo].
func Parse(data []byte) (*Document, error) {
	src := string(data)
	bom := strings.HasPrefix(src, byteOrderMark)
	p := &parser{lx: newLexer(strings.TrimPrefix(src, byteOrderMark))}
	if err := p.advance(); err != nil {
		return nil, err
	}
	root := &Table{index: make(map[string]int)}
	if err := p.entries(root, tokEOF); err != nil {
		return nil, err
	}
	root.close = p.tok
	return &Document{Table: root, bom: bom}, nil
}

type parser struct {
	lx  *lexer
	tok *token
}

func (p *parser) advance() error {
	tok, err := p.lx.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(tok *token, format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidSyntax, "line %d:%d: %s", tok.line, tok.col, fmt.Sprintf(format, args...))
}

// separated reports whether the current token starts a new entry or item:
// the previous one ended with ',' or a newline precedes the current token.
func (p *parser) separated(prevSep *token) bool {
	return prevSep != nil || strings.Contains(p.tok.leading, "\n")
}

func (p *parser) entries(t *Table, end tokenKind) error {
	for p.tok.kind != end {
		if p.tok.kind == tokEOF {
			return p.errorf(p.tok, "expected %s, found %s", end, p.tok.kind)
		}
		if n := len(t.entries); n > 0 && !p.separated(t.entries[n-1].sep) {
			return p.errorf(p.tok, "expected newline or ',' before %s", p.tok.kind)
		}
		keyTok := p.tok
		e, err := p.entry()
		if err != nil {
			return err
		}
		if _, dup := t.index[e.Key]; dup {
			return p.errorf(keyTok, "duplicate key %q", e.Key)
		}
		t.index[e.Key] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return nil
}

func (p *parser) entry() (*Entry, error) {
	key := p.tok
	if key.kind != tokIdent && key.kind != tokString {
		return nil, p.errorf(key, "expected key, found %s", key.kind)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	assign := p.tok
	if assign.kind != tokColon && assign.kind != tokEquals {
		return nil, p.errorf(assign, "expected ':' or '=' after key %q, found %s", key.value, assign.kind)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	e := &Entry{Key: key.value, Value: v, key: key, assign: assign}
	if p.tok.kind == tokComma {
		e.sep = p.tok
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (p *parser) value() (Value, error) {
	tok := p.tok
	switch tok.kind {
	case tokString:
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		return Value{typ: StringType, str: tok.value, tok: tok}, nil

	case tokLBrace:
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		t := &Table{open: tok, index: make(map[string]int)}
		if err := p.entries(t, tokRBrace); err != nil {
			return Value{}, err
		}
		t.close = p.tok
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		return Value{typ: TableType, table: t}, nil

	case tokLBracket:
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		a := &Array{open: tok}
		if err := p.items(a); err != nil {
			return Value{}, err
		}
		a.close = p.tok
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		return Value{typ: ArrayType, array: a}, nil
	}
	return Value{}, p.errorf(tok, "expected value, found %s", tok.kind)
}

func (p *parser) items(a *Array) error {
	for p.tok.kind != tokRBracket {
		if p.tok.kind == tokEOF {
			return p.errorf(p.tok, "expected %s, found %s", tokRBracket, p.tok.kind)
		}
		if n := len(a.items); n > 0 && !p.separated(a.items[n-1].sep) {
			return p.errorf(p.tok, "expected newline or ',' before %s", p.tok.kind)
		}
		v, err := p.value()
		if err != nil {
			return err
		}
		it := &item{value: v}
		if p.tok.kind == tokComma {
			it.sep = p.tok
			if err := p.advance(); err != nil {
				return err
			}
		}
		a.items = append(a.items, it)
	}
	return nil
}
