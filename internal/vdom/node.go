// Package vdom is the node tree components render into: elements, text,
// fragments and pre-rendered markup, serialisable to HTML.
package vdom

import "strings"

type Kind uint8

const (
	ElementNode Kind = iota
	TextNode
	FragmentNode
	RawNode
)

// Handler runs an event listener attached by a component.
type Handler func() error

type Attr struct {
	Key string
	Val string
}

type Node struct {
	Kind     Kind
	Tag      string
	Attrs    []Attr
	Children []*Node
	// Text holds the content of text nodes and the markup of raw nodes.
	Text     string
	Handlers map[string]Handler
}

func Element(tag string, attrs ...Attr) *Node {
	return &Node{Kind: ElementNode, Tag: strings.ToLower(tag), Attrs: attrs}
}

func Text(s string) *Node {
	return &Node{Kind: TextNode, Text: s}
}

func Fragment(children ...*Node) *Node {
	n := &Node{Kind: FragmentNode}
	n.Append(children...)
	return n
}

// Raw wraps markup that is emitted without escaping.
func Raw(markup string) *Node {
	return &Node{Kind: RawNode, Text: markup}
}

func (n *Node) IsElement() bool { return n != nil && n.Kind == ElementNode }

// Append adds children, inlining fragments and dropping nils.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		switch {
		case c == nil:
		case c.Kind == FragmentNode:
			n.Append(c.Children...)
		default:
			n.Children = append(n.Children, c)
		}
	}
	return n
}

func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr replaces an existing attribute in place or appends a new one.
func (n *Node) SetAttr(key, val string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Val: val})
}

func (n *Node) RemoveAttr(key string) {
	out := n.Attrs[:0]
	for _, a := range n.Attrs {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attrs = out
}

// On registers a handler for an event name such as "click".
func (n *Node) On(event string, h Handler) {
	if n.Handlers == nil {
		n.Handlers = make(map[string]Handler)
	}
	n.Handlers[event] = h
}

// Clone copies the tree. Handlers are shared.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Kind: n.Kind, Tag: n.Tag, Text: n.Text}
	if n.Attrs != nil {
		out.Attrs = append([]Attr(nil), n.Attrs...)
	}
	if n.Handlers != nil {
		out.Handlers = make(map[string]Handler, len(n.Handlers))
		for k, h := range n.Handlers {
			out.Handlers[k] = h
		}
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, c.Clone())
	}
	return out
}

// ElementChildren returns the element children, skipping text and raw nodes.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.IsElement() {
			out = append(out, c)
		}
	}
	return out
}

// TextContent concatenates the text below n.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	if n.Kind == TextNode {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Find returns the first node below root, root included, matching pred.
func Find(root *Node, pred func(*Node) bool) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if pred(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindByAttr finds the first element carrying key=val.
func FindByAttr(root *Node, key, val string) *Node {
	return Find(root, func(n *Node) bool {
		v, ok := n.Attr(key)
		return n.IsElement() && ok && v == val
	})
}
