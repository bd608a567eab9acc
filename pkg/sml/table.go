package sml

import (
	"strings"

	"github.com/matzehuels/soup/pkg/errors"
)

// Entry is a named value inside a [Table] together with the syntax that
// introduced it.
type Entry struct {
	Key   string
	Value Value

	key    *token
	assign *token
	sep    *token // optional trailing ','
}

// Table is an ordered mapping from names to values. Insertion order is
// preserved on output. The zero Table is not usable; create tables with
// [NewTable] or obtain them from a parsed [Document].
type Table struct {
	open    *token // nil for the document root
	close   *token // end of input for the document root
	entries []*Entry
	index   map[string]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	t := &Table{index: make(map[string]int)}
	t.open, t.close = braces(tokLBrace, tokRBrace)
	return t
}

func braces(open, close tokenKind) (*token, *token) {
	o := &token{kind: open, text: "{"}
	c := &token{kind: close, text: "}", auto: true}
	if open == tokLBracket {
		o.text, c.text = "[", "]"
	}
	return o, c
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Has reports whether name is present.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Lookup returns the value stored under name.
func (t *Table) Lookup(name string) (Value, bool) {
	i, ok := t.index[name]
	if !ok {
		return Value{}, false
	}
	return t.entries[i].Value, true
}

// Get returns the value stored under name, or a MISSING_PROPERTY error.
func (t *Table) Get(name string) (Value, error) {
	v, ok := t.Lookup(name)
	if !ok {
		return Value{}, errors.New(errors.ErrCodeMissingProperty, "property %q not found", name)
	}
	return v, nil
}

// Keys returns the entry names in order.
func (t *Table) Keys() []string {
	keys := make([]string, len(t.entries))
	for i, e := range t.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = *e
	}
	return out
}

// EnsureValue sets name to v. An existing entry is replaced in place,
// keeping its position and its key syntax; otherwise a new entry is
// appended.
func (t *Table) EnsureValue(name string, v Value) error {
	if v.typ == InvalidType {
		return errors.New(errors.ErrCodeInvalidInput, "cannot set %q to an invalid value", name)
	}
	if i, ok := t.index[name]; ok {
		e := t.entries[i]
		old := e.Value.first()
		e.Value = attach(v, old.leading, old.auto)
		return nil
	}
	t.insert(name, v)
	return nil
}

// EnsureTable returns the table stored under name, creating and attaching
// an empty one if name is absent. A TYPE_MISMATCH error is returned when
// name holds a value of another type.
func (t *Table) EnsureTable(name string) (*Table, error) {
	if v, ok := t.Lookup(name); ok {
		tbl, err := v.AsTable()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeTypeMismatch, err, "property %q", name)
		}
		return tbl, nil
	}
	child := NewTable()
	t.insert(name, TableValue(child))
	return child, nil
}

// EnsureArray returns the array stored under name, creating and attaching
// an empty one if name is absent. A TYPE_MISMATCH error is returned when
// name holds a value of another type.
func (t *Table) EnsureArray(name string) (*Array, error) {
	if v, ok := t.Lookup(name); ok {
		arr, err := v.AsArray()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeTypeMismatch, err, "property %q", name)
		}
		return arr, nil
	}
	child := NewArray()
	t.insert(name, ArrayValue(child))
	return child, nil
}

func (t *Table) insert(name string, v Value) {
	e := &Entry{
		Key:    name,
		key:    &token{kind: tokIdent, text: formatKey(name), value: name, auto: true},
		assign: &token{kind: tokColon, text: ":"},
	}
	if n := len(t.entries); n > 0 {
		last := t.entries[n-1]
		e.assign.kind, e.assign.text, e.assign.leading = last.assign.kind, last.assign.text, last.assign.leading
		if t.open != nil && !hasNewline(last.key) && !strings.Contains(t.close.leading, "\n") {
			// Single-line table: keep it on one line.
			if last.sep == nil {
				last.sep = &token{kind: tokComma, text: ","}
			}
			e.key.auto, e.key.leading = false, " "
		} else {
			detachTrailing(t.close, &last.sep)
		}
	} else if t.open == nil && strings.TrimSpace(t.close.leading) != "" {
		// Keep a leading comment block above the first entry.
		lead := t.close.leading
		if !strings.HasSuffix(lead, "\n") {
			lead += "\n"
		}
		e.key.leading, e.key.auto = lead, false
		t.close.leading, t.close.auto = "", true
	} else {
		resetClose(t.close)
	}
	e.Value = attach(v, " ", false)
	t.index[name] = len(t.entries)
	t.entries = append(t.entries, e)
}

// detachTrailing moves trivia on the same line as the last element (a
// trailing comment) from the closing token onto the element's separator, so
// that an appended element is written after it.
func detachTrailing(close *token, sep **token) {
	if close.auto {
		return
	}
	nl := strings.IndexByte(close.leading, '\n')
	if nl <= 0 || strings.Trim(close.leading[:nl], " \t\r") == "" {
		return
	}
	if *sep == nil {
		*sep = &token{kind: tokComma}
	}
	(*sep).text += close.leading[:nl]
	close.leading = close.leading[nl:]
}

// resetClose lets the writer place the closing token of a container that
// is about to receive its first element.
func resetClose(close *token) {
	if strings.TrimSpace(close.leading) == "" && !strings.Contains(close.leading, "\n") {
		close.leading, close.auto = "", true
	}
}

func hasNewline(tok *token) bool {
	return tok.auto || strings.Contains(tok.leading, "\n")
}

// Equal reports whether t and o hold the same keys in the same order with
// structurally equal values.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.entries) != len(o.entries) {
		return false
	}
	for i, e := range t.entries {
		if e.Key != o.entries[i].Key || !e.Value.Equal(o.entries[i].Value) {
			return false
		}
	}
	return true
}
