package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/vdom"
)

const helloSource = `function Hello({ name }) {
  return <p>Hello {name}</p>;
}`

const boomSource = "function Boom() {\n  throw new Error(\"kaboom\");\n}"

func pageDoc(components ...core.ComponentDefinition) core.Document {
	return core.Document{
		ID:   "doc-1",
		Name: "Site",
		Pages: []core.PageDefinition{
			{ID: "home", Name: "Home", Path: "/", IsHomePage: true, Components: components},
			{ID: "about", Name: "About", Path: "/about"},
		},
	}
}

func wrapperIDs(root *vdom.Node) []string {
	var ids []string
	vdom.Walk(root, func(n *vdom.Node) bool {
		if id, ok := n.Attr(AttrComponentID); ok {
			ids = append(ids, id)
			return false
		}
		return true
	})
	return ids
}

func TestAssemblePageIsolatesFailures(t *testing.T) {
	doc := pageDoc(
		core.ComponentDefinition{ID: "a", Type: "widget", SourceText: helloSource, Properties: schemaOf("name", "Ada"), OrderIndex: 0},
		core.ComponentDefinition{ID: "b", Type: "widget", SourceText: boomSource, OrderIndex: 1},
		core.ComponentDefinition{ID: "c", Type: "widget", SourceText: helloSource, Properties: schemaOf("name", "Lin"), OrderIndex: 2},
	)
	svc := NewPageService(NewRenderService(DefaultRenderConfig()))

	out, err := svc.AssemblePage(context.Background(), doc, "/")
	if err != nil {
		t.Fatalf("AssemblePage() error = %v", err)
	}

	html := out.HTML()
	if n := strings.Count(html, `class="`+ErrorClass+`"`); n != 1 {
		t.Errorf("error nodes = %d, want 1\n%s", n, html)
	}
	for _, want := range []string{"<p>Hello Ada</p>", "<p>Hello Lin</p>"} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML() missing %q\n%s", want, html)
		}
	}
	if out.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", out.Failed())
	}
	if got := wrapperIDs(out.Root); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("component order = %v, want [a b c]", got)
	}
	for _, want := range []string{
		`<div data-component-id="b" data-component-type="widget"><div class="` + ErrorClass + `" role="alert" data-error-kind="runtime">`,
		"<strong>Component threw an error</strong>",
		"kaboom",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML() missing %q\n%s", want, html)
		}
	}
}

func TestAssemblePageOrdersStably(t *testing.T) {
	doc := pageDoc(
		core.ComponentDefinition{ID: "w", Type: "text", Properties: schemaOf("title", "W"), OrderIndex: 2},
		core.ComponentDefinition{ID: "x", Type: "text", Properties: schemaOf("title", "X"), OrderIndex: 0},
		core.ComponentDefinition{ID: "y", Type: "text", Properties: schemaOf("title", "Y"), OrderIndex: 2},
		core.ComponentDefinition{ID: "z", Type: "text", Properties: schemaOf("title", "Z"), OrderIndex: 1},
	)
	svc := NewPageService(NewRenderService(DefaultRenderConfig()))

	var out PageRender
	for i := 0; i < 3; i++ {
		var err error
		out, err = svc.AssemblePage(context.Background(), doc, "")
		if err != nil {
			t.Fatalf("AssemblePage() error = %v", err)
		}
		if got := wrapperIDs(out.Root); !reflect.DeepEqual(got, []string{"x", "z", "w", "y"}) {
			t.Errorf("pass %d order = %v, want [x z w y]", i, got)
		}
	}
	snaps.MatchSnapshot(t, out.HTML())
	if got := doc.Pages[0].Components[0].ID; got != "w" {
		t.Errorf("document reordered: first component = %q", got)
	}
}

func TestAssemblePageResolution(t *testing.T) {
	doc := pageDoc()
	svc := NewPageService(NewRenderService(DefaultRenderConfig()))

	tests := []struct {
		path     string
		wantPage string
		wantRule core.ResolutionRule
	}{
		{path: "/about", wantPage: "about", wantRule: core.RuleExactPath},
		{path: "about/", wantPage: "about", wantRule: core.RuleExactPath},
		{path: "/missing", wantPage: "home", wantRule: core.RuleHomeFlag},
		{path: "", wantPage: "home", wantRule: core.RuleHomeFlag},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			out, err := svc.AssemblePage(context.Background(), doc, tt.path)
			if err != nil {
				t.Fatalf("AssemblePage() error = %v", err)
			}
			if out.Page.ID != tt.wantPage {
				t.Errorf("Page.ID = %q, want %q", out.Page.ID, tt.wantPage)
			}
			if out.Rule != tt.wantRule {
				t.Errorf("Rule = %v, want %v", out.Rule, tt.wantRule)
			}
		})
	}
}

func TestAssemblePageNoPages(t *testing.T) {
	svc := NewPageService(NewRenderService(DefaultRenderConfig()))

	_, err := svc.AssemblePage(context.Background(), core.Document{ID: "empty"}, "/")
	if !errors.Is(err, core.ErrNoPage) {
		t.Errorf("AssemblePage() error = %v, want %v", err, core.ErrNoPage)
	}
	if !core.IsKind(err, core.ResolutionFailure) {
		t.Errorf("AssemblePage() error kind = %v, want resolution failure", err)
	}
}

func TestWrapperCarriesStyles(t *testing.T) {
	def := core.ComponentDefinition{
		ID:         "s",
		Type:       "text",
		Properties: schemaOf("title", "Styled"),
		Styles:     core.StyleMap{"textAlign": "center", "boxShadow": "0 0 2px red"},
	}
	svc := NewPageService(NewRenderService(DefaultRenderConfig()))

	cr := svc.RenderInBoundary(context.Background(), def)

	if id, _ := cr.Wrapper.Attr(AttrComponentID); id != "s" {
		t.Errorf("wrapper id = %q, want s", id)
	}
	if typ, _ := cr.Wrapper.Attr(AttrComponentType); typ != "text" {
		t.Errorf("wrapper type = %q, want text", typ)
	}
	if cr.Style.ClassTokens != "" {
		if class, _ := cr.Wrapper.Attr("class"); class != cr.Style.ClassTokens {
			t.Errorf("wrapper class = %q, want %q", class, cr.Style.ClassTokens)
		}
	}
	if len(cr.Style.Residual) > 0 {
		if _, ok := cr.Wrapper.Attr("style"); !ok {
			t.Error("wrapper has no inline style for residual entries")
		}
	}
}
