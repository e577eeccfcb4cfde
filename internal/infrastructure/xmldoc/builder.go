package xmldoc

import (
	"strings"

	"github.com/antchfx/xmlquery"
)

// SetPath walks a "/"-separated path below parent, reusing children matched
// case-insensitively by local name and creating missing ones in the parent's
// namespace. The text of the last element is replaced by value.
func SetPath(parent *xmlquery.Node, path, value string) *xmlquery.Node {
	current := parent
	for _, seg := range strings.Split(path, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		next := childElement(current, seg)
		if next == nil {
			next = &xmlquery.Node{
				Type:         xmlquery.ElementNode,
				Data:         seg,
				Prefix:       current.Prefix,
				NamespaceURI: current.NamespaceURI,
			}
			xmlquery.AddChild(current, next)
		}
		current = next
	}
	setText(current, value)
	return current
}

// AppendElement adds a new, empty element named name as the last child of parent
func AppendElement(parent *xmlquery.Node, name string) *xmlquery.Node {
	n := &xmlquery.Node{Type: xmlquery.ElementNode, Data: name}
	xmlquery.AddChild(parent, n)
	return n
}

func setText(n *xmlquery.Node, value string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		xmlquery.RemoveFromTree(c)
		c = next
	}
	if value == "" {
		return
	}
	xmlquery.AddChild(n, &xmlquery.Node{Type: xmlquery.TextNode, Data: value})
}
