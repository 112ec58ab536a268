package builder

import (
	"strconv"
	"strings"

	"github.com/ulikoehler/slinktree/pkg/errors"
	"github.com/ulikoehler/slinktree/pkg/model"
	"github.com/ulikoehler/slinktree/pkg/xmltree"
)

// Element names understood by the builder.
const (
	tagSystem         = "System"
	tagBlock          = "Block"
	tagReference      = "Reference"
	tagProperty       = "P"
	tagPort           = "Port"
	tagPortCounts     = "PortCounts"
	tagPortProperties = "PortProperties"
	tagLine           = "Line"
	tagBranch         = "Branch"
	tagInstanceData   = "InstanceData"
	tagMask           = "Mask"
	tagMaskParameter  = "MaskParameter"
)

// Options configures a build.
type Options struct {
	// InferPorts adds a port to an existing block when a line endpoint names
	// a port the block does not declare. Endpoints naming unknown blocks
	// still fail.
	InferPorts bool
}

// PendingRef is a subsystem reference discovered while building.
type PendingRef struct {
	BlockID string       // SID of the referencing block
	Ref     string       // reference as written
	Block   *model.Block // block that will own the resolved system
}

// Result is the outcome of building one System element.
type Result struct {
	System  *model.System
	Pending []PendingRef
}

// BuildDocument parses data and builds its System element. The document
// element is used when it is a System; otherwise the first System found in
// document order.
func BuildDocument(data []byte, opts Options) (*Result, error) {
	doc, err := xmltree.Parse(data)
	if err != nil {
		return nil, err
	}
	el := doc.Root()
	if el.Name != tagSystem {
		if el, err = doc.SelectFirst("//" + tagSystem); err != nil {
			return nil, err
		}
		if el == nil {
			return nil, errors.New(errors.ErrCodeSchemaViolation, "no <System> element in document")
		}
	}
	return Build(el, opts)
}

// Build converts a System element into a model.System.
func Build(el *xmltree.Element, opts Options) (*Result, error) {
	if el == nil || el.Name != tagSystem {
		return nil, errors.New(errors.ErrCodeSchemaViolation, "expected <System> element")
	}
	b := &builder{opts: opts}
	sys, err := b.system(el)
	if err != nil {
		return nil, err
	}
	return &Result{System: sys, Pending: b.pending}, nil
}

type builder struct {
	opts    Options
	pending []PendingRef
}

func (b *builder) system(el *xmltree.Element) (*model.System, error) {
	sys := &model.System{}
	seen := make(map[string]bool)

	for _, c := range el.Children {
		switch c.Name {
		case tagProperty:
			if err := setProperty(&sys.Properties, c); err != nil {
				return nil, err
			}
		case tagBlock, tagReference:
			blk, err := b.block(c)
			if err != nil {
				return nil, err
			}
			if seen[blk.ID] {
				return nil, errors.New(errors.ErrCodeDuplicateID, "duplicate block SID %q", blk.ID)
			}
			seen[blk.ID] = true
			sys.Blocks = append(sys.Blocks, blk)
		}
	}

	// Lines are read after all blocks so endpoints can be checked regardless
	// of element order.
	for _, c := range el.ChildrenNamed(tagLine) {
		ln, err := line(c)
		if err != nil {
			return nil, err
		}
		if err := b.checkEndpoints(sys, ln); err != nil {
			return nil, err
		}
		sys.Lines = append(sys.Lines, ln)
	}
	return sys, nil
}

func (b *builder) block(el *xmltree.Element) (*model.Block, error) {
	sid, ok := el.Attr("SID")
	if !ok || strings.TrimSpace(sid) == "" {
		return nil, errors.New(errors.ErrCodeSchemaViolation, "<%s> %q has no SID", el.Name, el.AttrOr("Name", ""))
	}
	blk := &model.Block{
		ID:   sid,
		Name: el.AttrOr("Name", ""),
		Type: el.AttrOr("BlockType", ""),
		Tag:  el.Name,
	}
	if blk.Type == "" && el.Name == tagReference {
		blk.Type = tagReference
	}

	explicit := make(map[string]bool)
	for _, c := range el.Children {
		var err error
		switch c.Name {
		case tagProperty:
			err = setProperty(&blk.Properties, c)
		case tagPortCounts:
			err = portCounts(blk, c)
		case tagPortProperties:
			for _, p := range c.ChildrenNamed(tagPort) {
				if err = declarePort(blk, p, explicit); err != nil {
					break
				}
			}
		case tagPort:
			err = declarePort(blk, c, explicit)
		case tagInstanceData:
			for _, p := range c.ChildrenNamed(tagProperty) {
				if err = setProperty(&blk.InstanceData, p); err != nil {
					break
				}
			}
		case tagMask:
			for _, p := range c.ChildrenNamed(tagMaskParameter) {
				blk.Mask = append(blk.Mask, maskParameter(p))
			}
		case tagSystem:
			err = b.subsystem(blk, c)
		}
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "block %s: %s", sid, errors.UserMessage(err))
		}
	}
	return blk, nil
}

func (b *builder) subsystem(blk *model.Block, el *xmltree.Element) error {
	if blk.Ref != "" || blk.System != nil {
		return errors.New(errors.ErrCodeSchemaViolation, "more than one <System> child")
	}
	if ref, ok := el.Attr("Ref"); ok {
		if err := errors.ValidateReference(ref); err != nil {
			return errors.Wrap(errors.ErrCodeSchemaViolation, err, "bad subsystem reference")
		}
		blk.Ref = ref
		b.pending = append(b.pending, PendingRef{BlockID: blk.ID, Ref: ref, Block: blk})
		return nil
	}
	sys, err := b.system(el)
	if err != nil {
		return err
	}
	blk.System = sys
	return nil
}

func setProperty(props *model.Properties, el *xmltree.Element) error {
	name, ok := el.Attr("Name")
	if !ok || name == "" {
		return errors.New(errors.ErrCodeSchemaViolation, "<P> without Name")
	}
	value, ok := el.Attr("Ref")
	if !ok {
		value = strings.TrimSpace(el.Text)
	}
	props.Set(name, value)
	return nil
}

func maskParameter(el *xmltree.Element) model.MaskParameter {
	mp := model.MaskParameter{
		Name: el.AttrOr("Name", ""),
		Type: el.AttrOr("Type", ""),
	}
	switch t := strings.ToLower(mp.Type); t {
	case "edit", "popup", "checkbox":
		mp.Type = t
	}
	for _, c := range el.Children {
		switch c.Name {
		case "Prompt":
			mp.Prompt = strings.TrimSpace(c.Text)
		case "Value":
			mp.Value = strings.TrimSpace(c.Text)
		case "TypeOptions":
			for _, o := range c.ChildrenNamed("Option") {
				mp.Options = append(mp.Options, strings.TrimSpace(o.Text))
			}
		}
	}
	return mp
}

func portCounts(blk *model.Block, el *xmltree.Element) error {
	for _, a := range el.Attrs {
		n, err := strconv.Atoi(strings.TrimSpace(a.Value))
		if err != nil || n < 0 {
			return errors.New(errors.ErrCodeSchemaViolation, "PortCounts %s=%q is not a count", a.Name, a.Value)
		}
		for i := 1; i <= n; i++ {
			if blk.Port(model.PortID(a.Name, i)) == nil {
				blk.Ports = append(blk.Ports, model.Port{Kind: a.Name, Index: i})
			}
		}
	}
	return nil
}

func declarePort(blk *model.Block, el *xmltree.Element, explicit map[string]bool) error {
	kind, ok := el.Attr("Type")
	if !ok || kind == "" {
		return errors.New(errors.ErrCodeSchemaViolation, "<Port> without Type")
	}
	raw, ok := el.Attr("Index")
	if !ok {
		return errors.New(errors.ErrCodeSchemaViolation, "<Port> without Index")
	}
	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || idx < 1 {
		return errors.New(errors.ErrCodeSchemaViolation, "<Port> Index %q is not a positive integer", raw)
	}

	id := model.PortID(kind, idx)
	if explicit[id] {
		return errors.New(errors.ErrCodeDuplicateID, "duplicate port %s", id)
	}
	explicit[id] = true

	port := blk.Port(id)
	if port == nil {
		blk.Ports = append(blk.Ports, model.Port{Kind: kind, Index: idx})
		port = &blk.Ports[len(blk.Ports)-1]
	}
	for _, p := range el.ChildrenNamed(tagProperty) {
		if err := setProperty(&port.Properties, p); err != nil {
			return err
		}
	}
	port.Name = port.Properties.Value("Name")
	return nil
}

func line(el *xmltree.Element) (*model.Line, error) {
	ln := &model.Line{}
	var src string
	for _, c := range el.ChildrenNamed(tagProperty) {
		switch name := c.AttrOr("Name", ""); name {
		case "Src":
			src = strings.TrimSpace(c.Text)
		case "Dst":
			dst, err := endpoint(c.Text)
			if err != nil {
				return nil, err
			}
			ln.Destinations = append(ln.Destinations, dst)
		default:
			if err := setProperty(&ln.Properties, c); err != nil {
				return nil, err
			}
		}
	}
	if src == "" {
		return nil, errors.New(errors.ErrCodeSchemaViolation, "<Line> %q without Src", ln.Name())
	}
	s, err := endpoint(src)
	if err != nil {
		return nil, err
	}
	ln.Source = s

	for _, c := range el.ChildrenNamed(tagBranch) {
		br, err := branch(c, &ln.Destinations)
		if err != nil {
			return nil, err
		}
		ln.Branches = append(ln.Branches, br)
	}
	return ln, nil
}

// branch reads a Branch element and appends every destination it reaches
// to dsts, depth-first.
func branch(el *xmltree.Element, dsts *[]model.PortRef) (model.Branch, error) {
	var br model.Branch
	for _, c := range el.ChildrenNamed(tagProperty) {
		if c.AttrOr("Name", "") == "Dst" {
			dst, err := endpoint(c.Text)
			if err != nil {
				return br, err
			}
			br.Destination = &dst
			*dsts = append(*dsts, dst)
			continue
		}
		if err := setProperty(&br.Properties, c); err != nil {
			return br, err
		}
	}
	for _, c := range el.ChildrenNamed(tagBranch) {
		sub, err := branch(c, dsts)
		if err != nil {
			return br, err
		}
		br.Branches = append(br.Branches, sub)
	}
	return br, nil
}

func endpoint(s string) (model.PortRef, error) {
	ref, err := ParseEndpoint(s)
	if err != nil {
		return ref, errors.Wrap(errors.ErrCodeSchemaViolation, err, "malformed line endpoint")
	}
	return ref, nil
}

func (b *builder) checkEndpoints(sys *model.System, ln *model.Line) error {
	if err := b.resolvePort(sys, ln.Source); err != nil {
		return err
	}
	for _, d := range ln.Destinations {
		if err := b.resolvePort(sys, d); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) resolvePort(sys *model.System, ref model.PortRef) error {
	blk := sys.Block(ref.Block)
	if blk == nil {
		return errors.New(errors.ErrCodeSchemaViolation, "line endpoint %s names unknown block %q", ref, ref.Block)
	}
	if blk.Port(ref.PortID()) != nil {
		return nil
	}
	if !b.opts.InferPorts {
		return errors.New(errors.ErrCodeSchemaViolation, "line endpoint %s names unknown port %s of block %q", ref, ref.PortID(), ref.Block)
	}
	blk.Ports = append(blk.Ports, model.Port{Kind: ref.Kind, Index: ref.Index})
	return nil
}
