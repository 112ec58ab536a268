package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ulikoehler/slinktree/pkg/model"
)

type document struct {
	FormatVersion uint32       `json:"format_version"`
	Source        string       `json:"source,omitempty"`
	Sources       []sourceFile `json:"sources,omitempty"`
	Root          *system      `json:"root"`
}

type sourceFile struct {
	Path   string `json:"path"`
	Digest string `json:"digest"`
}

type system struct {
	Path       string     `json:"path,omitempty"`
	Properties properties `json:"properties,omitempty"`
	Blocks     []block    `json:"blocks,omitempty"`
	Lines      []line     `json:"lines,omitempty"`
}

type block struct {
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	Type       string     `json:"type,omitempty"`
	Tag        string     `json:"tag,omitempty"`
	Ref        string     `json:"ref,omitempty"`
	Properties properties `json:"properties,omitempty"`
	Ports      []port     `json:"ports,omitempty"`
	// InstanceData is written as instance_data.
	InstanceData properties      `json:"instance_data,omitempty"`
	Mask         []maskParameter `json:"mask,omitempty"`
	System       *system         `json:"system,omitempty"`
}

type maskParameter struct {
	Name    string   `json:"name"`
	Type    string   `json:"type,omitempty"`
	Prompt  string   `json:"prompt,omitempty"`
	Value   string   `json:"value,omitempty"`
	Options []string `json:"options,omitempty"`
}

type port struct {
	Kind       string     `json:"kind"`
	Index      int        `json:"index"`
	Name       string     `json:"name,omitempty"`
	Properties properties `json:"properties,omitempty"`
}

type line struct {
	Src        string     `json:"src"`
	Dst        []string   `json:"dst,omitempty"`
	Properties properties `json:"properties,omitempty"`
	Points     []point    `json:"points,omitempty"`
	Branches   []branch   `json:"branches,omitempty"`
}

type branch struct {
	Dst        string     `json:"dst,omitempty"`
	Properties properties `json:"properties,omitempty"`
	Points     []point    `json:"points,omitempty"`
	Branches   []branch   `json:"branches,omitempty"`
}

// point is a vertex of a line's Points property, written as [x, y]. It is
// derived on export and ignored on import; the property stays authoritative.
type point [2]float64

// geometry parses a Points property. Values that are not a coordinate
// matrix export no geometry.
func geometry(props model.Properties) []point {
	pts, err := model.ParsePoints(props.Value("Points"))
	if err != nil || len(pts) == 0 {
		return nil
	}
	out := make([]point, len(pts))
	for i, p := range pts {
		out[i] = point{p.X, p.Y}
	}
	return out
}

// properties encodes as a JSON object in slice order.
type properties model.Properties

// MarshalJSON writes the properties as an object, preserving order.
func (p properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(prop.Key); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1) // Encode appends a newline
		buf.WriteByte(':')
		if err := enc.Encode(prop.Value); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteJSON encodes doc as indented JSON and writes it to w.
func WriteJSON(w io.Writer, doc *model.SystemDoc) error {
	if doc == nil || doc.Root == nil {
		return fmt.Errorf("encode: document has no root system")
	}
	out := document{
		FormatVersion: doc.FormatVersion,
		Source:        doc.Source,
		Root:          fromSystem(doc.Root),
	}
	for _, sf := range doc.Sources {
		out.Sources = append(out.Sources, sourceFile{Path: sf.Path, Digest: sf.Digest})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes doc to a JSON file at path.
func ExportJSON(doc *model.SystemDoc, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fromSystem(s *model.System) *system {
	out := &system{Path: s.Path, Properties: properties(s.Properties)}
	for _, b := range s.Blocks {
		out.Blocks = append(out.Blocks, fromBlock(b))
	}
	for _, ln := range s.Lines {
		out.Lines = append(out.Lines, fromLine(ln))
	}
	return out
}

func fromBlock(b *model.Block) block {
	out := block{
		ID:         b.ID,
		Name:       b.Name,
		Type:       b.Type,
		Tag:        b.Tag,
		Ref:        b.Ref,
		Properties: properties(b.Properties),
	}
	for _, p := range b.Ports {
		out.Ports = append(out.Ports, port{
			Kind:       p.Kind,
			Index:      p.Index,
			Name:       p.Name,
			Properties: properties(p.Properties),
		})
	}
	out.InstanceData = properties(b.InstanceData)
	for _, mp := range b.Mask {
		out.Mask = append(out.Mask, maskParameter{
			Name:    mp.Name,
			Type:    mp.Type,
			Prompt:  mp.Prompt,
			Value:   mp.Value,
			Options: mp.Options,
		})
	}
	if b.System != nil {
		out.System = fromSystem(b.System)
	}
	return out
}

func fromLine(ln *model.Line) line {
	out := line{
		Src:        ln.Source.String(),
		Properties: properties(ln.Properties),
		Points:     geometry(ln.Properties),
		Branches:   fromBranches(ln.Branches),
	}
	for _, d := range ln.Destinations {
		out.Dst = append(out.Dst, d.String())
	}
	return out
}

func fromBranches(bs []model.Branch) []branch {
	var out []branch
	for _, b := range bs {
		br := branch{
			Properties: properties(b.Properties),
			Points:     geometry(b.Properties),
			Branches:   fromBranches(b.Branches),
		}
		if b.Destination != nil {
			br.Dst = b.Destination.String()
		}
		out = append(out, br)
	}
	return out
}
