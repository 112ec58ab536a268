package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/ulikoehler/slinktree/pkg/errors"
	"github.com/ulikoehler/slinktree/pkg/model"
)

// Output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds block types to node labels and port ids to edge labels.
	Detailed bool
	// RankDir is the Graphviz rankdir. Defaults to "LR", the usual signal
	// flow direction.
	RankDir string
}

// ValidateFormat checks that format is a supported output format.
func ValidateFormat(format string) error {
	switch format {
	case FormatDOT, FormatSVG:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg)", format)
}

// ToDOT converts one system level to Graphviz DOT. Nested systems are not
// expanded; their owning block is drawn as a 3D box instead.
func ToDOT(sys *model.System, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "LR"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if name := sys.Name(); name != "" {
		fmt.Fprintf(&buf, "  label=%q;\n", name)
	}
	buf.WriteString("\n")

	for _, b := range sys.Blocks {
		fmt.Fprintf(&buf, "  %q [%s];\n", b.ID, strings.Join(fmtAttrs(b, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, ln := range sys.Lines {
		if sys.Block(ln.Source.Block) == nil {
			continue
		}
		for _, dst := range ln.Destinations {
			if sys.Block(dst.Block) == nil {
				continue
			}
			attrs := edgeAttrs(ln, dst, opts.Detailed)
			if len(attrs) == 0 {
				fmt.Fprintf(&buf, "  %q -> %q;\n", ln.Source.Block, dst.Block)
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", ln.Source.Block, dst.Block, strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(b *model.Block, detailed bool) string {
	label := b.Name
	if label == "" {
		label = b.ID
	}
	if detailed && b.Type != "" {
		label += "\n" + b.Type
	}
	return label
}

func fmtAttrs(b *model.Block, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(b, detailed))}
	switch {
	case b.IsSubsystem():
		attrs = append(attrs, "shape=box3d", "style=filled", "fillcolor=lightblue")
	case b.Type == "Inport" || b.Type == "Outport":
		attrs = append(attrs, "shape=ellipse", "fillcolor=lightgrey")
	}
	return attrs
}

func edgeAttrs(ln *model.Line, dst model.PortRef, detailed bool) []string {
	var attrs []string
	label := ln.Name()
	if detailed {
		ports := ln.Source.PortID() + " -> " + dst.PortID()
		if label != "" {
			label += "\n" + ports
		} else {
			label = ports
		}
	}
	if label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", label))
	}
	return attrs
}

// Render produces sys in the given format.
func Render(ctx context.Context, sys *model.System, format string, opts Options) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	dot := ToDOT(sys, opts)
	if format == FormatDOT {
		return []byte(dot), nil
	}
	return RenderSVG(ctx, dot)
}

// RenderSVG lays out a DOT graph and renders it to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg tag with a viewBox
// anchored at the origin so the output scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
