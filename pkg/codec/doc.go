// Package codec reads and writes the binary container for resolved models.
//
// # Format
//
//	[magic "SLTB":4B][version:u32 little-endian][payload]
//
// The payload is a tag/length/value encoding of the [model.SystemDoc] in
// protobuf wire format: strings and nested messages are length-prefixed,
// sequences are repeated elements in order, nested systems are encoded
// recursively. Field numbers are listed in fields.go.
//
// # Compatibility
//
// Decoding is strict. A version newer than [model.CurrentFormatVersion]
// fails with UNSUPPORTED_VERSION. A wrong magic, a declared length past the
// end of input, an unknown field or an unexpected wire type fails with
// TRUNCATED_OR_CORRUPT. Nothing is guessed.
//
// The codec is stateless and safe for concurrent use. It performs no
// reference resolution.
package codec
