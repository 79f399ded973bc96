package vdom

import (
	"html"
	"strings"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Render serialises the tree to HTML.
func Render(n *Node) string {
	var b strings.Builder
	write(&b, n)
	return b.String()
}

func write(b *strings.Builder, n *Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case TextNode:
		b.WriteString(html.EscapeString(n.Text))
	case RawNode:
		b.WriteString(n.Text)
	case FragmentNode:
		for _, c := range n.Children {
			write(b, c)
		}
	case ElementNode:
		b.WriteByte('<')
		b.WriteString(n.Tag)
		for _, a := range n.Attrs {
			b.WriteByte(' ')
			b.WriteString(a.Key)
			if a.Val != "" {
				b.WriteString(`="`)
				b.WriteString(html.EscapeString(a.Val))
				b.WriteByte('"')
			}
		}
		b.WriteByte('>')
		if voidElements[n.Tag] {
			return
		}
		for _, c := range n.Children {
			if c.Kind == TextNode && (n.Tag == "style" || n.Tag == "script") {
				b.WriteString(c.Text)
				continue
			}
			write(b, c)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteByte('>')
	}
}
