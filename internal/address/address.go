// Package address marks rendered elements with stable identifiers so the
// editor can point at them, and translates element edits back onto the
// owning component definition.
package address

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/vdom"
)

const (
	AttrID   = "data-element-id"
	AttrType = "data-element-type"
	AttrPath = "data-element-path"
)

var newID = uuid.NewString

var categories = map[string]core.ElementCategory{
	"h1": core.ElementHeading, "h2": core.ElementHeading, "h3": core.ElementHeading,
	"h4": core.ElementHeading, "h5": core.ElementHeading, "h6": core.ElementHeading,
	"p": core.ElementParagraph, "blockquote": core.ElementParagraph,
	"button": core.ElementButton,
	"a":      core.ElementLink,
	"img":    core.ElementImage, "picture": core.ElementImage, "svg": core.ElementImage,
	"div": core.ElementContainer, "section": core.ElementContainer, "header": core.ElementContainer,
	"footer": core.ElementContainer, "main": core.ElementContainer, "nav": core.ElementContainer,
	"article": core.ElementContainer, "aside": core.ElementContainer, "ul": core.ElementContainer,
	"ol": core.ElementContainer, "form": core.ElementContainer,
}

var roles = map[string]core.ElementCategory{
	"heading": core.ElementHeading,
	"button":  core.ElementButton,
	"link":    core.ElementLink,
	"img":     core.ElementImage,
}

// Category derives the element category from the explicit role, then the tag.
func Category(n *vdom.Node) core.ElementCategory {
	if role, ok := n.Attr("role"); ok {
		if c, ok := roles[strings.ToLower(role)]; ok {
			return c
		}
	}
	if c, ok := categories[n.Tag]; ok {
		return c
	}
	return core.ElementGeneric
}

// Assign walks root depth-first and marks every element that has no id yet.
// Elements marked by an earlier pass keep their id, type and path, so running
// it twice over the same tree changes nothing. Handles are returned for every
// element in walk order.
func Assign(componentID string, root *vdom.Node) []core.ElementHandle {
	if root == nil {
		return nil
	}
	var handles []core.ElementHandle
	var visit func(n *vdom.Node, path []int)
	visit = func(n *vdom.Node, path []int) {
		if n.IsElement() {
			handles = append(handles, mark(componentID, n, path))
		}
		i := 0
		for _, c := range n.Children {
			switch c.Kind {
			case vdom.ElementNode:
				visit(c, append(append([]int(nil), path...), i))
				i++
			case vdom.FragmentNode:
				visit(c, path)
			}
		}
	}
	visit(root, []int{})
	return handles
}

func mark(componentID string, n *vdom.Node, path []int) core.ElementHandle {
	if _, ok := n.Attr(AttrID); !ok {
		n.SetAttr(AttrID, newID())
		n.SetAttr(AttrType, string(Category(n)))
		n.SetAttr(AttrPath, FormatPath(path))
	}
	return Handle(componentID, n)
}

// Handle builds the transient view of an already-marked element.
func Handle(componentID string, n *vdom.Node) core.ElementHandle {
	id, _ := n.Attr(AttrID)
	kind, _ := n.Attr(AttrType)
	rawPath, _ := n.Attr(AttrPath)
	class, _ := n.Attr("class")
	css, _ := n.Attr("style")
	return core.ElementHandle{
		ElementID:   id,
		ElementType: core.ElementCategory(kind),
		Path:        ParsePath(rawPath),
		Content:     strings.TrimSpace(n.TextContent()),
		Classes:     strings.Fields(class),
		Style:       ParseStyle(css),
		ComponentID: componentID,
	}
}

// FormatPath writes a child-index path as dot-separated indices.
func FormatPath(path []int) string {
	return strings.Join(lo.Map(path, func(i int, _ int) string { return strconv.Itoa(i) }), ".")
}

func ParsePath(s string) []int {
	if s == "" {
		return []int{}
	}
	parts := strings.Split(s, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		i, err := strconv.Atoi(p)
		if err != nil {
			return []int{}
		}
		out = append(out, i)
	}
	return out
}

// ParseStyle reads an inline style attribute into a property map.
func ParseStyle(css string) map[string]string {
	out := map[string]string{}
	for _, decl := range strings.Split(css, ";") {
		k, v, ok := strings.Cut(decl, ":")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Lookup finds the element with the given id below root.
func Lookup(root *vdom.Node, elementID string) *vdom.Node {
	return vdom.FindByAttr(root, AttrID, elementID)
}
