package usecase

import (
	"context"
	"fmt"

	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/logx"
	"github.com/3-lines-studio/studio/internal/style"
	"github.com/3-lines-studio/studio/internal/vdom"
)

const (
	AttrComponentID   = "data-component-id"
	AttrComponentType = "data-component-type"
)

type ComponentRender struct {
	Definition core.ComponentDefinition
	Result     RenderResult
	Style      style.Resolution
	Wrapper    *vdom.Node
}

type PageRender struct {
	Page       core.PageDefinition
	Rule       core.ResolutionRule
	Components []ComponentRender
	Root       *vdom.Node
}

func (p PageRender) HTML() string {
	return vdom.Render(p.Root)
}

// Failed counts the components that did not render from their own source.
func (p PageRender) Failed() int {
	n := 0
	for _, c := range p.Components {
		if c.Result.Err != nil {
			n++
		}
	}
	return n
}

type PageService struct {
	render *RenderService
}

func NewPageService(render *RenderService) *PageService {
	return &PageService{render: render}
}

// AssemblePage resolves path to a page and renders its components in order.
// Each component renders inside its own failure boundary, so one broken
// component never affects its siblings. Only an unresolvable page is an error.
func (s *PageService) AssemblePage(ctx context.Context, doc core.Document, path string, opts ...RenderOption) (PageRender, error) {
	decision := core.DecidePage(doc.Pages, path)
	page, err := core.ResolvePage(doc, path)
	if err != nil {
		return PageRender{Rule: decision.Rule}, fmt.Errorf("assemble %s: %w", core.NormalizePath(path), err)
	}

	log := logx.WithPage(ctx, page.ID)
	ctx = logx.ContextWithPage(ctx, log, page.ID)
	log.Debug("page resolved", "path", path, "rule", decision.Rule.String())

	out := PageRender{Page: page, Rule: decision.Rule, Root: vdom.Fragment()}
	for _, def := range core.SortComponents(page.Components) {
		cr := s.RenderInBoundary(ctx, def, opts...)
		out.Components = append(out.Components, cr)
		out.Root.Append(cr.Wrapper)
	}
	return out, nil
}

// RenderInBoundary renders one component and wraps it. A panic anywhere in
// the render becomes an error placeholder for that component only.
func (s *PageService) RenderInBoundary(ctx context.Context, def core.ComponentDefinition, opts ...RenderOption) (cr ComponentRender) {
	cr.Definition = def
	cr.Style = style.Resolve(def.Styles)
	defer func() {
		if r := recover(); r != nil {
			rerr := &core.RenderError{
				Kind:    core.RuntimeFailure,
				Stage:   core.StageFailed,
				Message: "component boundary caught a panic",
				Detail:  fmt.Sprint(r),
			}
			logx.WithComponent(ctx, def.ID, def.Type).Error("component render panicked", "panic", r)
			cr.Result = RenderResult{ComponentID: def.ID, Tree: ErrorNode(rerr), State: core.StageFallback, Fallback: FallbackPlaceholder, Err: rerr}
			cr.Wrapper = wrap(def, cr.Style, cr.Result.Tree)
		}
	}()
	cr.Result = s.render.RenderComponent(ctx, def, nil, opts...)
	cr.Wrapper = wrap(def, cr.Style, cr.Result.Tree)
	return cr
}

func wrap(def core.ComponentDefinition, res style.Resolution, tree *vdom.Node) *vdom.Node {
	w := vdom.Element("div",
		vdom.Attr{Key: AttrComponentID, Val: def.ID},
		vdom.Attr{Key: AttrComponentType, Val: def.Type},
	)
	if res.ClassTokens != "" {
		w.SetAttr("class", res.ClassTokens)
	}
	if css := style.InlineCSS(res.Residual); css != "" {
		w.SetAttr("style", css)
	}
	return w.Append(tree)
}
