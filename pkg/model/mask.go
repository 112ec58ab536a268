package model

import "slices"

// MaskParameter is one parameter of a block mask.
type MaskParameter struct {
	Name   string
	Type   string // edit, popup, checkbox, or as written
	Prompt string
	Value  string
	// Options lists the choices of a popup parameter in document order.
	Options []string
}

func (m *MaskParameter) clone() MaskParameter {
	c := *m
	if len(m.Options) > 0 {
		c.Options = slices.Clone(m.Options)
	} else {
		c.Options = nil
	}
	return c
}

func (m *MaskParameter) equal(o *MaskParameter) bool {
	return m.Name == o.Name && m.Type == o.Type && m.Prompt == o.Prompt &&
		m.Value == o.Value && slices.Equal(m.Options, o.Options)
}

// MaskValue returns the value of the named mask parameter.
func (b *Block) MaskValue(name string) (string, bool) {
	for i := range b.Mask {
		if b.Mask[i].Name == name {
			return b.Mask[i].Value, true
		}
	}
	return "", false
}
