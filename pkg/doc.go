// Package pkg provides the core libraries for slinktree, a loader for
// hierarchical block-diagram models stored as system XML files.
//
// # Overview
//
// A model is split over many files: a root system whose subsystem blocks
// reference further system files, which may reference more in turn.
// slinktree reads those files, resolves every reference into one in-memory
// tree and can store that tree in a compact binary container that loads far
// faster than the XML it came from. The pkg directory is organized into
// three areas:
//
//  1. Domain: [model], [xmltree], [builder], [resolver]
//  2. Storage: [codec], [export], [cache]
//  3. Orchestration: [pipeline], [render], [source]
//
// # Architecture
//
// The typical data flow:
//
//	system XML files (plain directory or .slx archive)
//	         ↓
//	    [source] package (read files by canonical path)
//	         ↓
//	    [xmltree] package (raw element tree)
//	         ↓
//	    [builder] package (one System per file, references left open)
//	         ↓
//	    [resolver] package (follow references, detect cycles)
//	         ↓
//	    model.SystemDoc → [codec] container / [export] JSON / [render] DOT, SVG
//
// # Quick Start
//
//	import (
//	    "github.com/ulikoehler/slinktree/pkg/codec"
//	    "github.com/ulikoehler/slinktree/pkg/resolver"
//	    "github.com/ulikoehler/slinktree/pkg/source"
//	)
//
//	// 1. Resolve every reference below the root file
//	r := resolver.New(source.Dir("model"), resolver.Options{Workers: 4})
//	doc, _ := r.Resolve(ctx, "system_root.xml")
//
//	// 2. Store a binary container
//	_ = codec.SaveFile("model.sltb", doc)
//
//	// 3. Load it back without touching the XML
//	doc, _ = codec.LoadFile("model.sltb")
//
// # Main Packages
//
// [model] - The resolved tree: systems, blocks, ports, lines and their
// ordered properties, with deep Clone and Equal and a depth-first Walk.
//
// [xmltree] - Parses one system file into a generic element tree using
// antchfx/xmlquery. Documents are never validated against a schema here.
//
// [builder] - Turns an element tree into a System, checking block ids and
// line endpoints. Subsystem references are recorded but not followed.
//
// [resolver] - Follows references depth-first, sequentially or with a
// bounded worker pool, and records a BLAKE3 digest for every file read.
// Each file is parsed once; a file referenced twice yields two independent
// copies in the tree.
//
// [codec] - The binary container: "SLTB" magic, a little-endian version
// and a protowire payload, optionally xz-compressed on disk.
//
// [export] - JSON export and import of a resolved document.
//
// [cache] - Byte caches for resolved documents and rendered diagrams: a
// sharded file cache, Redis and a null cache.
//
// [pipeline] - Load a model from any input kind through an in-process memo
// and a persistent cache. Used by the CLI.
//
// [render] - Graphviz DOT and SVG diagrams of a single system.
//
// # Error Handling
//
// Every failure carries a code from [errors], e.g. CYCLIC_REFERENCE or
// TRUNCATED_OR_CORRUPT. No partial tree is returned alongside an error.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/resolver/...           # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// Set SLINKTREE_TEST_REDIS_URL to run the Redis cache tests.
//
// [model]: https://pkg.go.dev/github.com/ulikoehler/slinktree/pkg/model
// [xmltree]: https://pkg.go.dev/github.com/ulikoehler/slinktree/pkg/xmltree
// [builder]: https://pkg.go.dev/github.com/ulikoehler/slinktree/pkg/builder
// [resolver]: https://pkg.go.dev/github.com/ulikoehler/slinktree/pkg/resolver
// [codec]: https://pkg.go.dev/github.com/ulikoehler/slinktree/pkg/codec
// [export]: https://pkg.go.dev/github.com/ulikoehler/slinktree/pkg/export
// [cache]: https://pkg.go.dev/github.com/ulikoehler/slinktree/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/ulikoehler/slinktree/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/ulikoehler/slinktree/pkg/render
// [source]: https://pkg.go.dev/github.com/ulikoehler/slinktree/pkg/source
// [errors]: https://pkg.go.dev/github.com/ulikoehler/slinktree/pkg/errors
package pkg
