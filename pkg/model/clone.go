package model

// Clone returns a deep copy of s sharing no mutable state with it.
func (s *System) Clone() *System {
	if s == nil {
		return nil
	}
	c := &System{
		Path:       s.Path,
		Properties: s.Properties.Clone(),
	}
	if len(s.Blocks) > 0 {
		c.Blocks = make([]*Block, len(s.Blocks))
		for i, b := range s.Blocks {
			c.Blocks[i] = b.Clone()
		}
	}
	if len(s.Lines) > 0 {
		c.Lines = make([]*Line, len(s.Lines))
		for i, l := range s.Lines {
			c.Lines[i] = l.Clone()
		}
	}
	return c
}

// Clone returns a deep copy of b, including its nested system.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	c := *b
	c.Properties = b.Properties.Clone()
	c.Ports = nil
	if len(b.Ports) > 0 {
		c.Ports = make([]Port, len(b.Ports))
		for i := range b.Ports {
			c.Ports[i] = b.Ports[i].clone()
		}
	}
	c.InstanceData = b.InstanceData.Clone()
	c.Mask = nil
	if len(b.Mask) > 0 {
		c.Mask = make([]MaskParameter, len(b.Mask))
		for i := range b.Mask {
			c.Mask[i] = b.Mask[i].clone()
		}
	}
	c.System = b.System.Clone()
	return &c
}

// Clone returns a deep copy of l.
func (l *Line) Clone() *Line {
	if l == nil {
		return nil
	}
	return &Line{
		Source:       l.Source,
		Destinations: clonePortRefs(l.Destinations),
		Branches:     cloneBranches(l.Branches),
		Properties:   l.Properties.Clone(),
	}
}

// Clone returns a deep copy of d.
func (d *SystemDoc) Clone() *SystemDoc {
	if d == nil {
		return nil
	}
	c := *d
	if len(d.Sources) > 0 {
		c.Sources = append([]SourceFile(nil), d.Sources...)
	} else {
		c.Sources = nil
	}
	c.Root = d.Root.Clone()
	return &c
}

func clonePortRefs(refs []PortRef) []PortRef {
	if len(refs) == 0 {
		return nil
	}
	return append([]PortRef(nil), refs...)
}

func cloneBranches(bs []Branch) []Branch {
	if len(bs) == 0 {
		return nil
	}
	out := make([]Branch, len(bs))
	for i, b := range bs {
		out[i] = Branch{
			Properties: b.Properties.Clone(),
			Branches:   cloneBranches(b.Branches),
		}
		if b.Destination != nil {
			d := *b.Destination
			out[i].Destination = &d
		}
	}
	return out
}
