package codec

import (
	"encoding/binary"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/ulikoehler/slinktree/pkg/errors"
	"github.com/ulikoehler/slinktree/pkg/model"
)

// Magic identifies a binary container.
var Magic = [4]byte{'S', 'L', 'T', 'B'}

const headerSize = 8

// Encode serializes doc into a container using the current format version.
func Encode(doc *model.SystemDoc) ([]byte, error) {
	if doc == nil || doc.Root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot encode a document without a root system")
	}
	b := make([]byte, headerSize, 4096)
	copy(b, Magic[:])
	binary.LittleEndian.PutUint32(b[4:], model.CurrentFormatVersion)

	b = appendString(b, docSource, doc.Source)
	for _, s := range doc.Sources {
		b = appendMessage(b, docSources, func(m []byte) []byte {
			m = appendString(m, srcPath, s.Path)
			return appendString(m, srcDigest, s.Digest)
		})
	}
	b = appendMessage(b, docRoot, func(m []byte) []byte { return appendSystem(m, doc.Root) })
	return b, nil
}

func appendSystem(b []byte, s *model.System) []byte {
	b = appendString(b, sysPath, s.Path)
	b = appendProps(b, sysProps, s.Properties)
	for _, blk := range s.Blocks {
		b = appendMessage(b, sysBlocks, func(m []byte) []byte { return appendBlock(m, blk) })
	}
	for _, ln := range s.Lines {
		b = appendMessage(b, sysLines, func(m []byte) []byte { return appendLine(m, ln) })
	}
	return b
}

func appendBlock(b []byte, blk *model.Block) []byte {
	b = appendString(b, blkID, blk.ID)
	b = appendString(b, blkName, blk.Name)
	b = appendString(b, blkType, blk.Type)
	b = appendString(b, blkTag, blk.Tag)
	b = appendProps(b, blkProps, blk.Properties)
	for i := range blk.Ports {
		p := &blk.Ports[i]
		b = appendMessage(b, blkPorts, func(m []byte) []byte {
			m = appendString(m, portKind, p.Kind)
			m = appendVarint(m, portIndex, uint64(p.Index))
			m = appendString(m, portName, p.Name)
			return appendProps(m, portProps, p.Properties)
		})
	}
	b = appendString(b, blkRef, blk.Ref)
	b = appendProps(b, blkData, blk.InstanceData)
	for i := range blk.Mask {
		mp := &blk.Mask[i]
		b = appendMessage(b, blkMask, func(m []byte) []byte {
			m = appendString(m, maskName, mp.Name)
			m = appendString(m, maskType, mp.Type)
			m = appendString(m, maskPrompt, mp.Prompt)
			m = appendString(m, maskValue, mp.Value)
			for _, o := range mp.Options {
				// Written even when empty: options are positional.
				m = protowire.AppendTag(m, maskOption, protowire.BytesType)
				m = protowire.AppendString(m, o)
			}
			return m
		})
	}
	if blk.System != nil {
		b = appendMessage(b, blkSystem, func(m []byte) []byte { return appendSystem(m, blk.System) })
	}
	return b
}

func appendLine(b []byte, ln *model.Line) []byte {
	b = appendMessage(b, lineSource, func(m []byte) []byte { return appendPortRef(m, ln.Source) })
	for _, d := range ln.Destinations {
		b = appendMessage(b, lineDsts, func(m []byte) []byte { return appendPortRef(m, d) })
	}
	b = appendBranches(b, lineBranches, ln.Branches)
	return appendProps(b, lineProps, ln.Properties)
}

func appendBranches(b []byte, num protowire.Number, branches []model.Branch) []byte {
	for i := range branches {
		br := &branches[i]
		b = appendMessage(b, num, func(m []byte) []byte {
			if br.Destination != nil {
				m = appendMessage(m, brDst, func(mm []byte) []byte { return appendPortRef(mm, *br.Destination) })
			}
			m = appendProps(m, brProps, br.Properties)
			return appendBranches(m, brBranches, br.Branches)
		})
	}
	return b
}

func appendPortRef(b []byte, r model.PortRef) []byte {
	b = appendString(b, refBlock, r.Block)
	b = appendString(b, refKind, r.Kind)
	return appendVarint(b, refIndex, uint64(r.Index))
}

func appendProps(b []byte, num protowire.Number, props model.Properties) []byte {
	for _, kv := range props {
		b = appendMessage(b, num, func(m []byte) []byte {
			m = appendString(m, propKey, kv.Key)
			return appendString(m, propValue, kv.Value)
		})
	}
	return b
}

// appendString omits empty strings; absent fields decode as "".
func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// appendMessage always writes the field, so an empty message still marks
// presence (an empty nested system stays non-nil).
func appendMessage(b []byte, num protowire.Number, fill func([]byte) []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, fill(nil))
}
