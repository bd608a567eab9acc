package sml

import (
	"io"
	"strings"
)

type writer struct {
	w    io.Writer
	n    int64
	err  error
	unit string // indentation step observed in the source, "\t" if none
}

func (w *writer) write(s string) {
	if w.err != nil || s == "" {
		return
	}
	n, err := io.WriteString(w.w, s)
	w.n += int64(n)
	w.err = err
}

// token writes tok preceded by its trivia, or by autoLead for tokens
// synthesized by edits.
func (w *writer) token(tok *token, autoLead string) {
	if tok.auto {
		w.write(autoLead)
	} else {
		w.write(tok.leading)
	}
	w.write(tok.text)
}

// value writes v. autoLead is used when v's first token was synthesized;
// indent is the indentation of the line v starts on.
func (w *writer) value(v Value, autoLead, indent string) {
	switch v.typ {
	case StringType:
		if v.tok == nil {
			w.write(autoLead + quote(v.str))
			return
		}
		w.token(v.tok, autoLead)
	case TableType:
		w.token(v.table.open, autoLead)
		w.table(v.table, indent)
	case ArrayType:
		w.token(v.array.open, autoLead)
		w.array(v.array, indent)
	}
}

// table writes the entries and the closing brace of t (the opening brace
// is written by value).
func (w *writer) table(t *Table, indent string) {
	root := t.open == nil
	firsts := make([]*token, len(t.entries))
	for i, e := range t.entries {
		firsts[i] = e.key
	}
	inner := w.childIndent(firsts, indent, root)
	for _, e := range t.entries {
		lead := "\n" + inner
		if root && w.n == 0 {
			lead = inner
		}
		w.token(e.key, lead)
		w.token(e.assign, "")
		w.value(e.Value, " ", inner)
		if e.sep != nil {
			w.token(e.sep, "")
		}
	}
	if t.close != nil {
		w.token(t.close, closeLead(len(t.entries), indent))
	}
}

func (w *writer) array(a *Array, indent string) {
	firsts := make([]*token, len(a.items))
	for i, it := range a.items {
		firsts[i] = it.value.first()
	}
	inner := w.childIndent(firsts, indent, false)
	for _, it := range a.items {
		w.value(it.value, "\n"+inner, inner)
		if it.sep != nil {
			w.token(it.sep, "")
		}
	}
	w.token(a.close, closeLead(len(a.items), indent))
}

func closeLead(n int, indent string) string {
	if n == 0 {
		return ""
	}
	return "\n" + indent
}

// childIndent derives the indentation of a container's children from the
// last child that starts on its own line. Containers without such a child
// indent one step deeper than their parent line.
func (w *writer) childIndent(firsts []*token, indent string, root bool) string {
	for i := len(firsts) - 1; i >= 0; i-- {
		tok := firsts[i]
		if tok == nil || tok.auto {
			continue
		}
		nl := strings.LastIndexByte(tok.leading, '\n')
		if nl < 0 {
			continue
		}
		if rest := tok.leading[nl+1:]; strings.Trim(rest, " \t") == "" {
			if w.unit == "" && len(rest) > len(indent) && strings.HasPrefix(rest, indent) {
				w.unit = rest[len(indent):]
			}
			return rest
		}
	}
	if root {
		return ""
	}
	if w.unit == "" {
		return indent + "\t"
	}
	return indent + w.unit
}
