package usecase

import (
	"context"
	"strings"

	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/logx"
	"github.com/3-lines-studio/studio/internal/templates"
	"github.com/3-lines-studio/studio/internal/vdom"
)

// ErrorClass marks inline error nodes and placeholders.
const ErrorClass = "studio-error"

// fallback fills res.Tree from the first source that works: the static
// template for the component type, the cached markup, an error placeholder.
func (s *RenderService) fallback(ctx context.Context, def core.ComponentDefinition, res *RenderResult) {
	log := logx.Ctx(ctx)

	if templates.HasFallback(def.Type) {
		markup, err := templates.RenderFallback(def.Type, res.Props)
		var tree *vdom.Node
		if err == nil {
			tree, err = vdom.ParseHTML(markup)
		}
		if err == nil {
			res.Tree = tree
			res.Fallback = FallbackTemplate
			res.enter(core.StageFallback)
			return
		}
		log.Warn("fallback template failed", "err", err)
	}

	if strings.TrimSpace(def.CachedMarkup) != "" {
		tree, err := vdom.ParseHTML(def.CachedMarkup)
		if err == nil {
			NeutralizeMarkup(tree)
			res.Tree = tree
			res.Fallback = FallbackMarkup
			res.enter(core.StageFallback)
			return
		}
		log.Debug("cached markup unreadable", "err", err)
	}

	rerr := res.Err
	if rerr == nil {
		rerr = &core.RenderError{
			Kind:    core.TransformFailure,
			Stage:   res.State,
			Message: "nothing to render",
			Detail:  "component has no source, no template for type " + quoteType(def.Type) + " and no cached markup",
		}
		res.Err = rerr
	}
	res.Tree = ErrorNode(rerr)
	res.Fallback = FallbackPlaceholder
	res.enter(core.StageFallback)
}

func quoteType(t string) string {
	if t == "" {
		return "(none)"
	}
	return `"` + t + `"`
}

// ErrorNode builds the visible placeholder for a failed component, with the
// detail behind a disclosure.
func ErrorNode(rerr *core.RenderError) *vdom.Node {
	title := "Component failed to render"
	switch rerr.Kind {
	case core.TransformFailure:
		title = "Component source could not be read"
	case core.RuntimeFailure:
		title = "Component threw an error"
	}
	box := vdom.Element("div",
		vdom.Attr{Key: "class", Val: ErrorClass},
		vdom.Attr{Key: "role", Val: "alert"},
		vdom.Attr{Key: "data-error-kind", Val: rerr.Kind.String()},
	)
	box.Append(vdom.Element("strong").Append(vdom.Text(title)))
	details := vdom.Element("details")
	details.Append(vdom.Element("summary").Append(vdom.Text(rerr.Message)))
	if rerr.Detail != "" {
		details.Append(vdom.Element("pre").Append(vdom.Text(rerr.Detail)))
	}
	return box.Append(details)
}

// NeutralizeMarkup makes stored markup inert: scripts and inline handlers are
// removed and links keep their target in data-href instead of navigating.
func NeutralizeMarkup(root *vdom.Node) {
	vdom.Walk(root, func(n *vdom.Node) bool {
		if !n.IsElement() && n.Kind != vdom.FragmentNode {
			return false
		}
		kept := n.Children[:0]
		for _, c := range n.Children {
			if c.IsElement() && c.Tag == "script" {
				continue
			}
			kept = append(kept, c)
		}
		n.Children = kept
		if !n.IsElement() {
			return true
		}
		for _, a := range append([]vdom.Attr(nil), n.Attrs...) {
			if strings.HasPrefix(a.Key, "on") {
				n.RemoveAttr(a.Key)
			}
		}
		if n.Tag == "a" {
			if href, ok := n.Attr("href"); ok && href != "" && !strings.HasPrefix(href, "#") {
				n.SetAttr("data-href", href)
				n.SetAttr("href", "#")
			}
			n.RemoveAttr("target")
		}
		return true
	})
}
