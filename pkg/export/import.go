package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ulikoehler/slinktree/pkg/builder"
	"github.com/ulikoehler/slinktree/pkg/errors"
	"github.com/ulikoehler/slinktree/pkg/model"
)

// UnmarshalJSON reads a properties object, keeping key order.
func (p *properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("properties must be an object")
	}
	var out model.Properties
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("property %q: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = properties(out)
	return nil
}

// ReadJSON decodes a document written by WriteJSON.
//
// Port references are parsed with the same grammar as model files. The
// document is not re-validated against its source files.
func ReadJSON(r io.Reader) (*model.SystemDoc, error) {
	var in document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	if in.FormatVersion == 0 || in.FormatVersion > model.CurrentFormatVersion {
		return nil, errors.New(errors.ErrCodeUnsupportedVersion, "format_version %d not supported (newest is %d)",
			in.FormatVersion, model.CurrentFormatVersion)
	}
	if in.Root == nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "document has no root system")
	}

	root, err := toSystem(in.Root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	doc := &model.SystemDoc{
		FormatVersion: in.FormatVersion,
		Source:        in.Source,
		Root:          root,
	}
	for _, sf := range in.Sources {
		doc.Sources = append(doc.Sources, model.SourceFile{Path: sf.Path, Digest: sf.Digest})
	}
	return doc, nil
}

// ImportJSON reads a JSON document from the file at path.
func ImportJSON(path string) (*model.SystemDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func toSystem(s *system) (*model.System, error) {
	out := &model.System{Path: s.Path, Properties: model.Properties(s.Properties)}
	for _, b := range s.Blocks {
		blk, err := toBlock(b)
		if err != nil {
			return nil, err
		}
		out.Blocks = append(out.Blocks, blk)
	}
	for i, ln := range s.Lines {
		l, err := toLine(ln)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		out.Lines = append(out.Lines, l)
	}
	return out, nil
}

func toBlock(b block) (*model.Block, error) {
	if b.ID == "" {
		return nil, fmt.Errorf("block %q has no id", b.Name)
	}
	out := &model.Block{
		ID:         b.ID,
		Name:       b.Name,
		Type:       b.Type,
		Tag:        b.Tag,
		Ref:        b.Ref,
		Properties: model.Properties(b.Properties),
	}
	for _, p := range b.Ports {
		out.Ports = append(out.Ports, model.Port{
			Kind:       p.Kind,
			Index:      p.Index,
			Name:       p.Name,
			Properties: model.Properties(p.Properties),
		})
	}
	out.InstanceData = model.Properties(b.InstanceData)
	for _, mp := range b.Mask {
		out.Mask = append(out.Mask, model.MaskParameter{
			Name:    mp.Name,
			Type:    mp.Type,
			Prompt:  mp.Prompt,
			Value:   mp.Value,
			Options: mp.Options,
		})
	}
	if b.System != nil {
		sys, err := toSystem(b.System)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", b.ID, err)
		}
		out.System = sys
	}
	return out, nil
}

func toLine(ln line) (*model.Line, error) {
	src, err := builder.ParseEndpoint(ln.Src)
	if err != nil {
		return nil, fmt.Errorf("src: %w", err)
	}
	out := &model.Line{Source: src, Properties: model.Properties(ln.Properties)}
	for _, d := range ln.Dst {
		ref, err := builder.ParseEndpoint(d)
		if err != nil {
			return nil, fmt.Errorf("dst: %w", err)
		}
		out.Destinations = append(out.Destinations, ref)
	}
	if out.Branches, err = toBranches(ln.Branches); err != nil {
		return nil, err
	}
	return out, nil
}

func toBranches(bs []branch) ([]model.Branch, error) {
	var out []model.Branch
	for _, b := range bs {
		br := model.Branch{Properties: model.Properties(b.Properties)}
		if b.Dst != "" {
			ref, err := builder.ParseEndpoint(b.Dst)
			if err != nil {
				return nil, fmt.Errorf("branch dst: %w", err)
			}
			br.Destination = &ref
		}
		children, err := toBranches(b.Branches)
		if err != nil {
			return nil, err
		}
		br.Branches = children
		out = append(out, br)
	}
	return out, nil
}
