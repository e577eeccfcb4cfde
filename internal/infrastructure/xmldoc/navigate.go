package xmldoc

import (
	"strings"

	"github.com/antchfx/xmlquery"
)

const parentSegment = ".."

// Navigate follows a "/"-separated path from node. ".." moves to the parent
// element; any other segment selects the first child element whose local name
// matches case-insensitively. It returns the text content of the element reached,
// or ok=false when a segment does not resolve.
func Navigate(node *xmlquery.Node, path string) (string, bool) {
	current := node
	for _, seg := range strings.Split(path, "/") {
		if current == nil {
			return "", false
		}
		seg = strings.TrimSpace(seg)
		if seg == parentSegment {
			current = parentElement(current)
			continue
		}
		current = childElement(current, seg)
	}
	if current == nil {
		return "", false
	}
	return current.InnerText(), true
}

// Lookup returns a lookup function resolving names as navigation paths relative to node
func Lookup(node *xmlquery.Node) func(name string) (string, bool) {
	return func(name string) (string, bool) {
		return Navigate(node, name)
	}
}

func parentElement(n *xmlquery.Node) *xmlquery.Node {
	p := n.Parent
	if p == nil || p.Type != xmlquery.ElementNode {
		return nil
	}
	return p
}

func childElement(n *xmlquery.Node, localName string) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && strings.EqualFold(c.Data, localName) {
			return c
		}
	}
	return nil
}
