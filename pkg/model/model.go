package model

import "strings"

// CurrentFormatVersion is the newest binary container version. Version 2
// added instance data and mask parameters to blocks.
const CurrentFormatVersion uint32 = 2

// SystemDoc is a fully resolved model.
type SystemDoc struct {
	FormatVersion uint32
	// Source is the canonical path of the root system file. Empty for
	// documents not loaded from a file.
	Source string
	// Sources lists every file read during resolution, sorted by path.
	Sources []SourceFile
	Root    *System
}

// SourceFile records a file that contributed to a SystemDoc.
type SourceFile struct {
	Path   string
	Digest string // hex BLAKE3 of the file contents
}

// System is a container of blocks and lines.
type System struct {
	// Path is the canonical path of the file the system was read from.
	// Empty for systems defined inline.
	Path       string
	Properties Properties
	Blocks     []*Block
	Lines      []*Line
}

// Name returns the system's Name property.
func (s *System) Name() string {
	return s.Properties.Value("Name")
}

// Block returns the block with the given SID, or nil.
func (s *System) Block(id string) *Block {
	for _, b := range s.Blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// BlockNamed returns the first block with the given name, or nil.
func (s *System) BlockNamed(name string) *Block {
	for _, b := range s.Blocks {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Block is a node in a System.
type Block struct {
	ID         string // SID, unique within the owning System
	Name       string
	Type       string // BlockType attribute, or "Reference"
	Tag        string // element name the block was read from
	Properties Properties
	Ports      []Port
	// InstanceData holds the <P> entries of an <InstanceData> child.
	InstanceData Properties
	// Mask lists the parameters declared by a <Mask> child.
	Mask []MaskParameter
	// Ref is the subsystem reference exactly as written in the file.
	Ref string
	// System is the owned nested system, if any.
	System *System
}

// Port returns the port with the given id ("in:1"), or nil.
func (b *Block) Port(id string) *Port {
	for i := range b.Ports {
		if b.Ports[i].ID() == id {
			return &b.Ports[i]
		}
	}
	return nil
}

// IsSubsystem reports whether the block owns a nested system.
func (b *Block) IsSubsystem() bool {
	return b.System != nil
}

// Line is a signal connection inside a System.
type Line struct {
	Source PortRef
	// Destinations lists every endpoint reached by the line, flattened in
	// source order with branches expanded depth-first.
	Destinations []PortRef
	Branches     []Branch
	Properties   Properties
}

// Name returns the line's Name property.
func (l *Line) Name() string {
	return l.Properties.Value("Name")
}

// Branch is a fork of a Line.
type Branch struct {
	Destination *PortRef
	Properties  Properties
	Branches    []Branch
}

// Lookup returns the system reached by following block names from s,
// separated by "/". An empty path returns s.
func (s *System) Lookup(blockPath string) *System {
	if blockPath == "" {
		return s
	}
	cur := s
	for _, name := range strings.Split(blockPath, "/") {
		b := cur.BlockNamed(name)
		if b == nil || b.System == nil {
			return nil
		}
		cur = b.System
	}
	return cur
}
