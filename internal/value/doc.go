// Package value provides the sealed value model stored in a state tree.
//
// Every value admitted into a container is one of a closed set of variants:
//
//   - Primitives: Null, String, Number, BigInt, Bool. Intrinsically immutable.
//   - *Object: an insertion-ordered mapping from string keys to values.
//   - *Array: an ordered, 0-indexed sequence of values.
//   - *Blob: an opaque binary payload with a MIME type. A blob with a name
//     is file-like.
//
// Containers and blobs are pointer types. A value graph is reference-agnostic:
// the same container may not be reachable twice from one root. Clone enforces
// this and reports ErrReferenceCycle on aliasing or cycles.
//
// Freeze write-locks containers in place. Frozen containers reject every
// mutation with ErrFrozen.
//
// Host Go values (maps, slices, structs, numbers) enter the model through
// From, which applies the admission rules for computed representations,
// hidden fields and embedded fields.
//
// Object keys are stored and compared byte-exact. Admission rejects an
// object holding two distinct keys with the same Unicode NFC form
// (ErrAmbiguousKey), so no key is ever silently merged into another.
package value
