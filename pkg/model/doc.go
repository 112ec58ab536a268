// Package model defines the resolved model tree.
//
// # Overview
//
// A [SystemDoc] owns one root [System]. A System holds ordered [Block]s and
// [Line]s; a Block owns its [Port]s and, for subsystems, exactly one nested
// System. The tree is strictly tree-shaped: when two blocks reference the
// same file, each receives its own deep copy, so mutating one subtree never
// affects another.
//
// # Ordering
//
// Blocks and lines keep source order. [Properties] are an ordered sequence
// with last-wins semantics: setting an existing key replaces its value but
// keeps the key at its first position.
//
// # Equality
//
// [System.Equal] compares structure and values. A nil slice and an empty
// slice are equal, so freshly built trees compare equal to decoded ones.
package model
