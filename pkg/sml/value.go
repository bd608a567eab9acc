package sml

import (
	"github.com/matzehuels/soup/pkg/errors"
)

// ValueType identifies the variant held by a [Value].
type ValueType int

const (
	// InvalidType is the type of the zero Value.
	InvalidType ValueType = iota
	StringType
	TableType
	ArrayType
)

// String returns the lowercase name of the type.
func (t ValueType) String() string {
	switch t {
	case StringType:
		return "string"
	case TableType:
		return "table"
	case ArrayType:
		return "array"
	}
	return "invalid"
}

// Value is a tagged union over string, table and array. Values are
// immutable: changing a property replaces the Value stored in its table.
// Tables and arrays are held by reference, so a Value returned from a
// lookup can be used to edit the nested container in place.
type Value struct {
	typ   ValueType
	str   string
	tok   *token
	table *Table
	array *Array
}

// String returns a string Value.
func String(s string) Value {
	return Value{typ: StringType, str: s}
}

// TableValue wraps t in a Value. A nil t is replaced by an empty table.
func TableValue(t *Table) Value {
	if t == nil {
		t = NewTable()
	}
	return Value{typ: TableType, table: t}
}

// ArrayValue wraps a in a Value. A nil a is replaced by an empty array.
func ArrayValue(a *Array) Value {
	if a == nil {
		a = NewArray()
	}
	return Value{typ: ArrayType, array: a}
}

// Type returns the variant held by v.
func (v Value) Type() ValueType { return v.typ }

// AsString returns the string payload, or a TYPE_MISMATCH error.
func (v Value) AsString() (string, error) {
	if v.typ != StringType {
		return "", mismatch(StringType, v.typ)
	}
	return v.str, nil
}

// AsTable returns the table payload, or a TYPE_MISMATCH error.
func (v Value) AsTable() (*Table, error) {
	if v.typ != TableType {
		return nil, mismatch(TableType, v.typ)
	}
	return v.table, nil
}

// AsArray returns the array payload, or a TYPE_MISMATCH error.
func (v Value) AsArray() (*Array, error) {
	if v.typ != ArrayType {
		return nil, mismatch(ArrayType, v.typ)
	}
	return v.array, nil
}

// Equal reports whether v and o hold structurally equal payloads.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case StringType:
		return v.str == o.str
	case TableType:
		return v.table.Equal(o.table)
	case ArrayType:
		return v.array.Equal(o.array)
	}
	return true
}

func mismatch(want, got ValueType) error {
	return errors.New(errors.ErrCodeTypeMismatch, "expected %s, found %s", want, got)
}

// first returns the token that carries v's leading trivia.
func (v Value) first() *token {
	switch v.typ {
	case TableType:
		return v.table.open
	case ArrayType:
		return v.array.open
	}
	return v.tok
}

// attach returns v positioned after the given trivia. String values get a
// fresh token; containers are adopted and their opening token updated.
func attach(v Value, leading string, auto bool) Value {
	switch v.typ {
	case StringType:
		v.tok = &token{kind: tokString, text: quote(v.str), value: v.str, leading: leading, auto: auto}
	case TableType:
		if v.table.open == nil {
			v.table.open, v.table.close = braces(tokLBrace, tokRBrace)
		}
		v.table.open.leading, v.table.open.auto = leading, auto
	case ArrayType:
		v.array.open.leading, v.array.open.auto = leading, auto
	}
	return v
}
