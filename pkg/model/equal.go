package model

// Equal reports whether s and o describe the same tree.
func (s *System) Equal(o *System) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Path != o.Path || !s.Properties.Equal(o.Properties) {
		return false
	}
	if len(s.Blocks) != len(o.Blocks) || len(s.Lines) != len(o.Lines) {
		return false
	}
	for i := range s.Blocks {
		if !s.Blocks[i].Equal(o.Blocks[i]) {
			return false
		}
	}
	for i := range s.Lines {
		if !s.Lines[i].Equal(o.Lines[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether b and o are structurally identical.
func (b *Block) Equal(o *Block) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.ID != o.ID || b.Name != o.Name || b.Type != o.Type || b.Tag != o.Tag || b.Ref != o.Ref {
		return false
	}
	if !b.Properties.Equal(o.Properties) || len(b.Ports) != len(o.Ports) {
		return false
	}
	for i := range b.Ports {
		if !b.Ports[i].equal(&o.Ports[i]) {
			return false
		}
	}
	if !b.InstanceData.Equal(o.InstanceData) || len(b.Mask) != len(o.Mask) {
		return false
	}
	for i := range b.Mask {
		if !b.Mask[i].equal(&o.Mask[i]) {
			return false
		}
	}
	return b.System.Equal(o.System)
}

// Equal reports whether l and o are structurally identical.
func (l *Line) Equal(o *Line) bool {
	if l == nil || o == nil {
		return l == o
	}
	if l.Source != o.Source || !l.Properties.Equal(o.Properties) {
		return false
	}
	if len(l.Destinations) != len(o.Destinations) {
		return false
	}
	for i := range l.Destinations {
		if l.Destinations[i] != o.Destinations[i] {
			return false
		}
	}
	return branchesEqual(l.Branches, o.Branches)
}

// Equal reports whether d and o hold equal trees and metadata.
func (d *SystemDoc) Equal(o *SystemDoc) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.FormatVersion != o.FormatVersion || d.Source != o.Source || len(d.Sources) != len(o.Sources) {
		return false
	}
	for i := range d.Sources {
		if d.Sources[i] != o.Sources[i] {
			return false
		}
	}
	return d.Root.Equal(o.Root)
}

func branchesEqual(a, b []Branch) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		da, db := a[i].Destination, b[i].Destination
		if (da == nil) != (db == nil) || (da != nil && *da != *db) {
			return false
		}
		if !a[i].Properties.Equal(b[i].Properties) || !branchesEqual(a[i].Branches, b[i].Branches) {
			return false
		}
	}
	return true
}
