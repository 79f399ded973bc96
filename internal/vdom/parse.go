package vdom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML reads a markup fragment into nodes under a fragment root.
// Comments and doctype declarations are dropped.
func ParseHTML(markup string) (*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	root := Fragment()
	for _, hn := range nodes {
		if n := convert(hn); n != nil {
			root.Children = append(root.Children, n)
		}
	}
	return root, nil
}

func convert(hn *html.Node) *Node {
	switch hn.Type {
	case html.TextNode:
		return Text(hn.Data)
	case html.ElementNode:
		n := Element(hn.Data)
		for _, a := range hn.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + key
			}
			n.Attrs = append(n.Attrs, Attr{Key: key, Val: a.Val})
		}
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			if child := convert(c); child != nil {
				n.Children = append(n.Children, child)
			}
		}
		return n
	}
	return nil
}
