package codec

import (
	"bytes"
	"encoding/binary"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/ulikoehler/slinktree/pkg/errors"
	"github.com/ulikoehler/slinktree/pkg/model"
)

// maxDepth bounds nesting of systems and branches.
const maxDepth = 512

// IsContainer reports whether prefix starts with the container magic.
func IsContainer(prefix []byte) bool {
	return len(prefix) >= len(Magic) && bytes.Equal(prefix[:len(Magic)], Magic[:])
}

// Version returns the format version declared in a container header.
func Version(data []byte) (uint32, error) {
	if len(data) < headerSize {
		return 0, errors.New(errors.ErrCodeTruncatedOrCorrupt, "container shorter than its %d-byte header", headerSize)
	}
	if !IsContainer(data) {
		return 0, errors.New(errors.ErrCodeTruncatedOrCorrupt, "bad magic %q", data[:len(Magic)])
	}
	return binary.LittleEndian.Uint32(data[len(Magic):headerSize]), nil
}

// Decode parses a container produced by Encode.
func Decode(data []byte) (*model.SystemDoc, error) {
	v, err := Version(data)
	if err != nil {
		return nil, err
	}
	if v == 0 || v > model.CurrentFormatVersion {
		return nil, errors.New(errors.ErrCodeUnsupportedVersion,
			"container version %d not supported (this build reads up to %d)", v, model.CurrentFormatVersion)
	}

	doc := &model.SystemDoc{FormatVersion: v}
	err = fields(data[headerSize:], func(f field) error {
		switch f.num {
		case docSource:
			return f.str(&doc.Source)
		case docSources:
			var s model.SourceFile
			if err := f.message(func(g field) error {
				switch g.num {
				case srcPath:
					return g.str(&s.Path)
				case srcDigest:
					return g.str(&s.Digest)
				}
				return g.unknown()
			}); err != nil {
				return err
			}
			doc.Sources = append(doc.Sources, s)
			return nil
		case docRoot:
			doc.Root = &model.System{}
			return f.message(func(g field) error { return decodeSystem(g, doc.Root, 1) })
		}
		return f.unknown()
	})
	if err != nil {
		return nil, err
	}
	if doc.Root == nil {
		return nil, errors.New(errors.ErrCodeTruncatedOrCorrupt, "container has no root system")
	}
	return doc, nil
}

func decodeSystem(f field, s *model.System, depth int) error {
	if depth > maxDepth {
		return errors.New(errors.ErrCodeTruncatedOrCorrupt, "systems nested deeper than %d", maxDepth)
	}
	switch f.num {
	case sysPath:
		return f.str(&s.Path)
	case sysProps:
		return f.prop(&s.Properties)
	case sysBlocks:
		blk := &model.Block{}
		if err := f.message(func(g field) error { return decodeBlock(g, blk, depth) }); err != nil {
			return err
		}
		s.Blocks = append(s.Blocks, blk)
		return nil
	case sysLines:
		ln := &model.Line{}
		if err := f.message(func(g field) error { return decodeLine(g, ln) }); err != nil {
			return err
		}
		s.Lines = append(s.Lines, ln)
		return nil
	}
	return f.unknown()
}

func decodeBlock(f field, blk *model.Block, depth int) error {
	switch f.num {
	case blkID:
		return f.str(&blk.ID)
	case blkName:
		return f.str(&blk.Name)
	case blkType:
		return f.str(&blk.Type)
	case blkTag:
		return f.str(&blk.Tag)
	case blkProps:
		return f.prop(&blk.Properties)
	case blkPorts:
		var p model.Port
		if err := f.message(func(g field) error {
			switch g.num {
			case portKind:
				return g.str(&p.Kind)
			case portIndex:
				return g.int(&p.Index)
			case portName:
				return g.str(&p.Name)
			case portProps:
				return g.prop(&p.Properties)
			}
			return g.unknown()
		}); err != nil {
			return err
		}
		blk.Ports = append(blk.Ports, p)
		return nil
	case blkRef:
		return f.str(&blk.Ref)
	case blkData:
		return f.prop(&blk.InstanceData)
	case blkMask:
		var mp model.MaskParameter
		if err := f.message(func(g field) error {
			switch g.num {
			case maskName:
				return g.str(&mp.Name)
			case maskType:
				return g.str(&mp.Type)
			case maskPrompt:
				return g.str(&mp.Prompt)
			case maskValue:
				return g.str(&mp.Value)
			case maskOption:
				var o string
				if err := g.str(&o); err != nil {
					return err
				}
				mp.Options = append(mp.Options, o)
				return nil
			}
			return g.unknown()
		}); err != nil {
			return err
		}
		blk.Mask = append(blk.Mask, mp)
		return nil
	case blkSystem:
		blk.System = &model.System{}
		return f.message(func(g field) error { return decodeSystem(g, blk.System, depth+1) })
	}
	return f.unknown()
}

func decodeLine(f field, ln *model.Line) error {
	switch f.num {
	case lineSource:
		return f.portRef(&ln.Source)
	case lineDsts:
		var r model.PortRef
		if err := f.portRef(&r); err != nil {
			return err
		}
		ln.Destinations = append(ln.Destinations, r)
		return nil
	case lineBranches:
		br, err := decodeBranch(f, 1)
		if err != nil {
			return err
		}
		ln.Branches = append(ln.Branches, br)
		return nil
	case lineProps:
		return f.prop(&ln.Properties)
	}
	return f.unknown()
}

func decodeBranch(f field, depth int) (model.Branch, error) {
	var br model.Branch
	if depth > maxDepth {
		return br, errors.New(errors.ErrCodeTruncatedOrCorrupt, "branches nested deeper than %d", maxDepth)
	}
	err := f.message(func(g field) error {
		switch g.num {
		case brDst:
			var r model.PortRef
			if err := g.portRef(&r); err != nil {
				return err
			}
			br.Destination = &r
			return nil
		case brProps:
			return g.prop(&br.Properties)
		case brBranches:
			sub, err := decodeBranch(g, depth+1)
			if err != nil {
				return err
			}
			br.Branches = append(br.Branches, sub)
			return nil
		}
		return g.unknown()
	})
	return br, err
}

// field is one decoded tag/value pair.
type field struct {
	num protowire.Number
	typ protowire.Type
	raw []byte // BytesType payload
	v   uint64 // VarintType payload
}

// fields walks the tag/value pairs of one message.
func fields(b []byte, fn func(field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return corrupt(n, "tag")
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.BytesType:
			f.raw, n = protowire.ConsumeBytes(b)
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(b)
		default:
			return errors.New(errors.ErrCodeTruncatedOrCorrupt, "field %d: unexpected wire type %d", num, typ)
		}
		if n < 0 {
			return corrupt(n, "field value")
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func corrupt(n int, what string) error {
	return errors.Wrap(errors.ErrCodeTruncatedOrCorrupt, protowire.ParseError(n), "invalid %s", what)
}

func (f field) want(t protowire.Type) error {
	if f.typ != t {
		return errors.New(errors.ErrCodeTruncatedOrCorrupt, "field %d: wire type %d, want %d", f.num, f.typ, t)
	}
	return nil
}

func (f field) unknown() error {
	return errors.New(errors.ErrCodeTruncatedOrCorrupt, "unknown field %d", f.num)
}

func (f field) str(dst *string) error {
	if err := f.want(protowire.BytesType); err != nil {
		return err
	}
	*dst = string(f.raw)
	return nil
}

func (f field) int(dst *int) error {
	if err := f.want(protowire.VarintType); err != nil {
		return err
	}
	if f.v > 1<<31-1 {
		return errors.New(errors.ErrCodeTruncatedOrCorrupt, "field %d: value %d out of range", f.num, f.v)
	}
	*dst = int(f.v)
	return nil
}

func (f field) message(fn func(field) error) error {
	if err := f.want(protowire.BytesType); err != nil {
		return err
	}
	return fields(f.raw, fn)
}

func (f field) prop(props *model.Properties) error {
	var kv model.Property
	if err := f.message(func(g field) error {
		switch g.num {
		case propKey:
			return g.str(&kv.Key)
		case propValue:
			return g.str(&kv.Value)
		}
		return g.unknown()
	}); err != nil {
		return err
	}
	*props = append(*props, kv)
	return nil
}

func (f field) portRef(r *model.PortRef) error {
	return f.message(func(g field) error {
		switch g.num {
		case refBlock:
			return g.str(&r.Block)
		case refKind:
			return g.str(&r.Kind)
		case refIndex:
			return g.int(&r.Index)
		}
		return g.unknown()
	})
}
