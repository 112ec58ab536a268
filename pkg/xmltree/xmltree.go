package xmltree

import (
	"bytes"
	"encoding/xml"
	stderrors "errors"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/ulikoehler/slinktree/pkg/errors"
)

// Attr is a single attribute in document order.
type Attr struct {
	Name  string
	Value string
}

// Element is a generic XML element.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
	// Text is the concatenated character data directly inside the element,
	// excluding text of descendants.
	Text string
}

// Attr returns the value of the named attribute and whether it was present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute or def when absent.
func (e *Element) AttrOr(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// Child returns the first direct child with the given tag name.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns direct children with the given tag name in order.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Document is a parsed XML document.
type Document struct {
	dom   *xmlquery.Node
	root  *Element
	index map[*xmlquery.Node]*Element
}

// Parse parses data into a Document.
//
// Malformed input fails with MALFORMED_DOCUMENT. When the decoder reports a
// position, the message includes the line number.
func Parse(data []byte) (*Document, error) {
	dom, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		var syn *xml.SyntaxError
		if stderrors.As(err, &syn) {
			return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "line %d: %s", syn.Line, syn.Msg)
		}
		return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "parse XML")
	}

	d := &Document{dom: dom, index: make(map[*xmlquery.Node]*Element)}
	for n := dom.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			d.root = d.convert(n)
			break
		}
	}
	if d.root == nil {
		return nil, errors.New(errors.ErrCodeMalformedDocument, "document has no root element")
	}
	return d, nil
}

// Root returns the document element.
func (d *Document) Root() *Element {
	return d.root
}

// Select evaluates an XPath expression and returns matching elements in
// document order. Non-element matches (attributes, text) are skipped.
func (d *Document) Select(expr string) ([]*Element, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid xpath %q", expr)
	}
	var out []*Element
	for _, n := range xmlquery.QuerySelectorAll(d.dom, compiled) {
		if el, ok := d.index[n]; ok {
			out = append(out, el)
		}
	}
	return out, nil
}

// SelectFirst returns the first element matching expr, or nil.
func (d *Document) SelectFirst(expr string) (*Element, error) {
	els, err := d.Select(expr)
	if err != nil || len(els) == 0 {
		return nil, err
	}
	return els[0], nil
}

func (d *Document) convert(n *xmlquery.Node) *Element {
	el := &Element{Name: qualified(n.Prefix, n.Data)}
	if len(n.Attr) > 0 {
		el.Attrs = make([]Attr, 0, len(n.Attr))
		for _, a := range n.Attr {
			el.Attrs = append(el.Attrs, Attr{Name: qualified(a.Name.Space, a.Name.Local), Value: a.Value})
		}
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			el.Children = append(el.Children, d.convert(c))
		case xmlquery.TextNode, xmlquery.CharDataNode:
			text.WriteString(c.Data)
		}
	}
	el.Text = text.String()
	d.index[n] = el
	return el
}

func qualified(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}
