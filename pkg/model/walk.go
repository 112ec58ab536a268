package model

import "errors"

// SkipSystem can be returned by a WalkFunc to skip a block's nested system.
var SkipSystem = errors.New("skip system")

// WalkFunc is called for each block. path is the slash-separated block path
// from the walk root, including the block's own name.
type WalkFunc func(path string, b *Block) error

// Walk visits all blocks depth-first in source order. A nested system is
// visited right after its owning block.
func (s *System) Walk(fn WalkFunc) error {
	return s.walk("", fn)
}

func (s *System) walk(prefix string, fn WalkFunc) error {
	for _, b := range s.Blocks {
		p := b.Name
		if prefix != "" {
			p = prefix + "/" + b.Name
		}
		err := fn(p, b)
		if err == SkipSystem {
			continue
		}
		if err != nil {
			return err
		}
		if b.System != nil {
			if err := b.System.walk(p, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Match is a block found by a search, with its block path.
type Match struct {
	Path  string
	Block *Block
}

// FindBlocksByType returns all blocks of the given type, in walk order.
func (s *System) FindBlocksByType(blockType string) []Match {
	var out []Match
	_ = s.Walk(func(path string, b *Block) error {
		if b.Type == blockType {
			out = append(out, Match{Path: path, Block: b})
		}
		return nil
	})
	return out
}

// Stats summarizes the size of a tree.
type Stats struct {
	Systems int
	Blocks  int
	Ports   int
	Lines   int
}

// Stats counts systems, blocks, ports and lines in s and below.
func (s *System) Stats() Stats {
	st := Stats{Systems: 1, Lines: len(s.Lines)}
	for _, b := range s.Blocks {
		st.Blocks++
		st.Ports += len(b.Ports)
		if b.System != nil {
			sub := b.System.Stats()
			st.Systems += sub.Systems
			st.Blocks += sub.Blocks
			st.Ports += sub.Ports
			st.Lines += sub.Lines
		}
	}
	return st
}
