// Package resolver expands subsystem references across files into one
// cycle-free model tree.
//
// # Overview
//
// [Resolver.Resolve] reads the root system file, builds it, and for every
// block carrying <System Ref="..."/> resolves the referenced file the same
// way, recursively, attaching the result as the block's nested system.
//
// References are canonicalized relative to the directory of the file that
// contains them ([Canonical]). A reference without an extension gets ".xml"
// appended, any other extension is replaced by ".xml", and a leading slash
// addresses the source root.
//
// # Guarantees
//
//   - A file referenced more than once is read and built once. Every
//     referencing block receives its own deep copy.
//   - A reference back to a file that is still being resolved fails with
//     CYCLIC_REFERENCE naming the full chain.
//   - A missing file fails with UNRESOLVED_REFERENCE naming the path and the
//     referencing block.
//   - Blocks keep source order, so resolution is deterministic.
//
// # Concurrency
//
// With [Options].Workers greater than one, sibling references are resolved
// on separate goroutines and at most Workers files are parsed at a time.
// Shared state lives behind one mutex; a goroutine that would wait on a file
// whose resolution transitively waits on it fails with CYCLIC_REFERENCE
// instead of deadlocking. The result equals the sequential one.
package resolver
