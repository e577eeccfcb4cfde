// Package xmldoc wraps antchfx/xmlquery with the navigation and tree-building
// primitives used by the mapping engines.
package xmldoc

import (
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultDeclaration is written when a document carries no XML declaration
const DefaultDeclaration = `<?xml version="1.0" encoding="utf-8"?>`

// Document is a parsed XML document
type Document struct {
	root *xmlquery.Node
}

// Parse reads an XML document. A leading byte order mark is honoured and
// removed. Without one the bytes pass through untouched, so a declared
// non UTF-8 encoding is left to the parser's charset reader.
func Parse(r io.Reader) (*Document, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(transform.Nop))
	doc, err := xmlquery.Parse(decoded)
	if err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	if rootElement(doc) == nil {
		return nil, fmt.Errorf("parse xml: document has no root element")
	}
	return &Document{root: doc}, nil
}

// ParseString parses an XML document held in a string
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document element
func (d *Document) Root() *xmlquery.Node {
	return rootElement(d.root)
}

// Compile compiles an XPath expression so it can be validated ahead of a run
func Compile(expr string) (*xpath.Expr, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile xpath %q: %w", expr, err)
	}
	return compiled, nil
}

// Select returns the element nodes matched by expr, in document order
func (d *Document) Select(expr *xpath.Expr) []*xmlquery.Node {
	var out []*xmlquery.Node
	for _, n := range xmlquery.QuerySelectorAll(d.root, expr) {
		if n.Type == xmlquery.ElementNode {
			out = append(out, n)
		}
	}
	return out
}

// FindElement returns the first element, in document order, whose local name is name
func (d *Document) FindElement(name string) *xmlquery.Node {
	var found *xmlquery.Node
	var walk func(n *xmlquery.Node) bool
	walk = func(n *xmlquery.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != xmlquery.ElementNode {
				continue
			}
			if c.Data == name {
				found = c
				return true
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(d.root)
	return found
}

// String serializes the document: the declaration (or DefaultDeclaration),
// a newline, then the document element.
func (d *Document) String() string {
	decl := DefaultDeclaration
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.DeclarationNode {
			decl = c.OutputXML(true)
			break
		}
	}
	root := d.Root()
	if root == nil {
		return decl
	}
	return decl + "\n" + root.OutputXML(true)
}

func rootElement(doc *xmlquery.Node) *xmlquery.Node {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}
