package sml

import (
	"bytes"
	"io"
)

// Document is the root of a manifest file: a brace-less [Table] whose
// closing token is the end of input. All [Table] methods are available on
// a Document.
type Document struct {
	*Table
	bom bool
}

const byteOrderMark = "\uFEFF"

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{Table: &Table{
		index: make(map[string]int),
		close: &token{kind: tokEOF, auto: true},
	}}
}

// Root returns the document's top-level table.
func (d *Document) Root() *Table { return d.Table }

// Bytes serializes the document. An unmodified parsed document serializes
// to exactly its source bytes.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}

// String returns the serialized document.
func (d *Document) String() string { return string(d.Bytes()) }

// WriteTo writes the serialized document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	sw := &writer{w: w}
	if d.bom {
		sw.write(byteOrderMark)
	}
	sw.table(d.Table, "")
	return sw.n, sw.err
}

// Equal reports whether d and o hold structurally equal content.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.Table.Equal(o.Table)
}
