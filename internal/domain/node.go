package domain

import "strings"

// Attr is a single element attribute. Attribute order is preserved so that
// serialized markup stays byte-identical across renders.
type Attr struct {
	Key   string
	Value string
}

// Node is one element in a markup tree. A Node with a non-empty Text and no
// children is a pure text container; mixed content is modeled as child nodes.
type Node struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// NewNode creates an element node.
func NewNode(tag string) *Node {
	return &Node{Tag: tag}
}

// SetAttr appends or replaces an attribute, keeping first-set order.
func (n *Node) SetAttr(key, value string) *Node {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Value = value
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Value: value})
	return n
}

// Attr returns the value of an attribute and whether it is present.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// AddChild appends a child element and returns the parent for chaining.
func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return n
}

// SetText sets the node's text content.
func (n *Node) SetText(text string) *Node {
	n.Text = text
	return n
}

// HasClass reports whether the node's class attribute contains name as a
// whitespace-separated token.
func (n *Node) HasClass(name string) bool {
	class, ok := n.Attr("class")
	if !ok {
		return false
	}
	for _, token := range strings.Fields(class) {
		if token == name {
			return true
		}
	}
	return false
}

// Walk visits the node and all descendants in document order. Returning
// false from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// FindAll returns every node in the subtree matching pred, in document order.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	n.Walk(func(node *Node) bool {
		if pred(node) {
			out = append(out, node)
		}
		return true
	})
	return out
}

// FindFirst returns the first node matching pred, or nil.
func (n *Node) FindFirst(pred func(*Node) bool) *Node {
	var found *Node
	n.Walk(func(node *Node) bool {
		if pred(node) {
			found = node
			return false
		}
		return true
	})
	return found
}

// InnerText concatenates the text content of the subtree in document order.
func (n *Node) InnerText() string {
	var sb strings.Builder
	n.Walk(func(node *Node) bool {
		sb.WriteString(node.Text)
		return true
	})
	return sb.String()
}
