// Package xmltree turns one XML document into a generic element tree.
//
// # Overview
//
// The parser knows nothing about systems, blocks or references. It yields
// [Element] values carrying a tag name, attributes in document order, child
// elements in document order and the element's own character data. The
// builder package interprets that tree.
//
// Parsing is delegated to github.com/antchfx/xmlquery, and [Document.Select]
// evaluates XPath expressions (github.com/antchfx/xpath) against the
// original DOM, returning the matching converted elements:
//
//	doc, err := xmltree.Parse(data)
//	if err != nil {
//	    return err // MALFORMED_DOCUMENT with line information
//	}
//	systems, _ := doc.Select("//System")
//
// Parse is pure: it performs no I/O and follows no references.
package xmltree
