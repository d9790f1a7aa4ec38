// Package canon turns JSON-like values into one deterministic form.
//
// Two values that differ only in object key order, or in the order of array
// elements, canonicalize to the same Value and therefore serialize to the
// same bytes. Marshal is the single serialization choke point: every digest
// in this module is computed over Marshal(Canonicalize(v)).
//
// The text follows ECMAScript JSON.stringify for scalars and escapes. Keys,
// scalar sort texts and serialized forms are ordered by code point.
// Changing any rule in this package changes digests.
//
// Everything here is pure: no logging, no I/O, no shared state.
package canon
