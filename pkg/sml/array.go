package sml

import "strings"

type item struct {
	value Value
	sep   *token // optional trailing ','
}

// Array is an ordered sequence of values. The zero Array is not usable;
// create arrays with [NewArray] or obtain them from a parsed [Document].
type Array struct {
	open  *token
	close *token
	items []*item
}

// NewArray returns an empty array.
func NewArray() *Array {
	a := &Array{}
	a.open, a.close = braces(tokLBracket, tokRBracket)
	return a
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.items) }

// At returns the element at index i. It panics if i is out of range.
func (a *Array) At(i int) Value { return a.items[i].value }

// Values returns the elements in order.
func (a *Array) Values() []Value {
	out := make([]Value, len(a.items))
	for i, it := range a.items {
		out[i] = it.value
	}
	return out
}

// Append adds v to the end of the array. Multi-line arrays get the new
// element on its own line; single-line arrays stay on one line.
func (a *Array) Append(v Value) {
	if v.typ == InvalidType {
		return
	}
	n := len(a.items)
	switch {
	case n > 0 && !hasNewline(a.items[n-1].value.first()) && !strings.Contains(a.close.leading, "\n"):
		last := a.items[n-1]
		if last.sep == nil {
			last.sep = &token{kind: tokComma, text: ","}
		}
		v = attach(v, " ", false)
	case n > 0:
		detachTrailing(a.close, &a.items[n-1].sep)
		v = attach(v, "", true)
	default:
		resetClose(a.close)
		v = attach(v, "", true)
	}
	a.items = append(a.items, &item{value: v})
}

// AppendString appends a string element.
func (a *Array) AppendString(s string) { a.Append(String(s)) }

// Equal reports whether a and o hold structurally equal elements in the
// same order.
func (a *Array) Equal(o *Array) bool {
	if a == nil || o == nil {
		return a == o
	}
	if len(a.items) != len(o.items) {
		return false
	}
	for i, it := range a.items {
		if !it.value.Equal(o.items[i].value) {
			return false
		}
	}
	return true
}
