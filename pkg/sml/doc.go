// Package sml implements the lossless structured document format used for
// package manifests.
//
// An SML document is an ordered set of named values. Values are strings,
// tables or arrays:
//
//	Name: "MyPackage"
//	Language: "C++@1.1.1"
//	Dependencies: {
//		Runtime: [
//			"../Shared/"
//			{ Reference: "Widgets@2.0.0" }
//		]
//	}
//
// Entries are separated by newlines or commas, keys are bare identifiers or
// quoted strings and either ':' or '=' assigns a value. Lines starting with
// '#' are comments.
//
// # Lossless Round-Trip
//
// The parser keeps every token together with the whitespace and comments
// that precede it. Serializing an unmodified [Document] therefore yields
// exactly the bytes it was parsed from:
//
//	doc, _ := sml.Parse(data)
//	bytes.Equal(doc.Bytes(), data) // true
//
// Edits made through [Table.EnsureValue], [Table.EnsureTable],
// [Table.EnsureArray] and [Array.Append] only touch the edited region. New
// entries follow the indentation of their siblings.
//
// # Equality
//
// [Value.Equal], [Table.Equal], [Array.Equal] and [Document.Equal] compare
// the semantic payload only; formatting and comments are ignored.
package sml
