package preview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/3-lines-studio/studio/internal/address"
	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/usecase"
)

const counterSource = `function Counter() {
  const [n, setN] = useState(0);
  return <button onClick={() => setN(n + 1)}>Count: {n}</button>;
}`

const navSource = `function Nav() {
  return <nav><a href="/about"><span>About</span></a></nav>;
}`

const effectSource = `function Loader() {
  const [ready, setReady] = useState(false);
  useEffect(() => { setReady(true); }, []);
  return <p>{ready ? "ready" : "loading"}</p>;
}`

func newDoc(home ...core.ComponentDefinition) core.Document {
	return core.Document{
		ID: "doc",
		Pages: []core.PageDefinition{
			{ID: "home", Name: "Home", Path: "/", Components: home},
			{ID: "about", Name: "About", Path: "/about", Components: []core.ComponentDefinition{
				{ID: "about-text", Type: "text", Properties: schema("title", "About us")},
			}},
		},
	}
}

func schema(kv ...any) core.PropertySchema {
	s := core.NewPropertySchema()
	for i := 0; i+1 < len(kv); i += 2 {
		key := kv[i].(string)
		s.Set(key, core.NewRecord(key, kv[i+1]))
	}
	return s
}

func newSession(doc core.Document) *Session {
	pages := usecase.NewPageService(usecase.NewRenderService(usecase.DefaultRenderConfig()))
	return NewSession(pages, doc)
}

func renderAndFlush(t *testing.T, s *Session, path string) usecase.PageRender {
	t.Helper()
	page, err := s.Render(context.Background(), path)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	s.Flush(context.Background())
	return page
}

func findHandle(t *testing.T, s *Session, category core.ElementCategory) core.ElementHandle {
	t.Helper()
	for _, h := range s.Handles() {
		if h.ElementType == category {
			return h
		}
	}
	t.Fatalf("no %s element among %d handles", category, len(s.Handles()))
	return core.ElementHandle{}
}

func TestActivateRerendersDirtyComponent(t *testing.T) {
	s := newSession(newDoc(core.ComponentDefinition{ID: "counter", Type: "widget", SourceText: counterSource}))
	page := renderAndFlush(t, s, "/")
	if !strings.Contains(page.HTML(), "Count: 0") {
		t.Fatalf("initial HTML = %s", page.HTML())
	}

	for want := 1; want <= 2; want++ {
		btn := findHandle(t, s, core.ElementButton)
		res, err := s.Activate(context.Background(), btn.ElementID)
		if err != nil {
			t.Fatalf("Activate() error = %v", err)
		}
		if !res.Handled || !res.Rerendered {
			t.Errorf("Activate() = %+v, want handled and rerendered", res)
		}
		current, _ := s.Page()
		if got := current.HTML(); !strings.Contains(got, "Count: "+string(rune('0'+want))) {
			t.Errorf("after %d clicks HTML = %s", want, got)
		}
	}
}

func TestActivateFollowsLinks(t *testing.T) {
	s := newSession(newDoc(core.ComponentDefinition{ID: "nav", Type: "widget", SourceText: navSource}))
	var visited []string
	s.InstallNavigationHook(func(path string) { visited = append(visited, path) })
	renderAndFlush(t, s, "/")

	var spanID string
	for _, h := range s.Handles() {
		if h.Content == "About" && h.ElementType == core.ElementGeneric {
			spanID = h.ElementID
		}
	}
	if spanID == "" {
		t.Fatal("span not addressed")
	}

	res, err := s.Activate(context.Background(), spanID)
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if res.Navigated != "/about" {
		t.Errorf("Navigated = %q, want /about", res.Navigated)
	}
	if len(visited) != 1 || visited[0] != "/about" {
		t.Errorf("hook visits = %v, want [/about]", visited)
	}
	if s.Path() != "/about" {
		t.Errorf("Path() = %q, want /about", s.Path())
	}
	page, _ := s.Page()
	if page.Page.ID != "about" {
		t.Errorf("page after navigation = %q, want about", page.Page.ID)
	}
}

func TestActivateFallbackLink(t *testing.T) {
	s := newSession(newDoc(core.ComponentDefinition{
		ID:         "cta",
		Type:       "button",
		Properties: schema("label", "Contact", "href", "/about"),
	}))
	renderAndFlush(t, s, "/")

	btn := findHandle(t, s, core.ElementButton)
	res, err := s.Activate(context.Background(), btn.ElementID)
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if res.Navigated != "/about" {
		t.Errorf("Navigated = %q, want /about", res.Navigated)
	}
}

func TestClearNavigationHook(t *testing.T) {
	s := newSession(newDoc(core.ComponentDefinition{ID: "nav", Type: "widget", SourceText: navSource}))
	called := false
	s.InstallNavigationHook(func(string) { called = true })
	s.ClearNavigationHook()
	renderAndFlush(t, s, "/")

	link := findHandle(t, s, core.ElementLink)
	res, err := s.Activate(context.Background(), link.ElementID)
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if called {
		t.Error("cleared hook was called")
	}
	if res.Navigated != "/about" {
		t.Errorf("Navigated = %q, want /about", res.Navigated)
	}
}

func TestEffectsSettleBeforeReturn(t *testing.T) {
	s := newSession(newDoc(core.ComponentDefinition{ID: "loader", Type: "widget", SourceText: effectSource}))

	page, err := s.Render(context.Background(), "/")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := page.HTML(); !strings.Contains(got, "ready") || strings.Contains(got, "loading") {
		t.Errorf("HTML() = %s, want settled state", got)
	}
}

func TestActivateErrors(t *testing.T) {
	s := newSession(newDoc())
	if _, err := s.Activate(context.Background(), "x"); !errors.Is(err, ErrNotRendered) {
		t.Errorf("Activate() before render error = %v, want %v", err, ErrNotRendered)
	}
	renderAndFlush(t, s, "/")
	if _, err := s.Activate(context.Background(), "missing"); !errors.Is(err, ErrUnknownElement) {
		t.Errorf("Activate() error = %v, want %v", err, ErrUnknownElement)
	}
}

func TestFlushSkipsRemovedComponents(t *testing.T) {
	doc := newDoc(
		core.ComponentDefinition{ID: "a", Type: "text", Properties: schema("title", "A")},
		core.ComponentDefinition{ID: "b", Type: "text", Properties: schema("title", "B"), OrderIndex: 1},
	)
	s := newSession(doc)
	if _, err := s.Render(context.Background(), "/"); err != nil {
		t.Fatal(err)
	}

	next := newDoc(core.ComponentDefinition{ID: "a", Type: "text", Properties: schema("title", "A")})
	s.SetDocument(next)
	res := s.Flush(context.Background())

	if len(res.Skipped) != 1 || !core.IsKind(res.Skipped[0], core.AddressingSkip) {
		t.Fatalf("Skipped = %v, want one addressing skip", res.Skipped)
	}
	if len(res.Handles["a"]) == 0 {
		t.Error("component a was not addressed")
	}
	if _, ok := res.Handles["b"]; ok {
		t.Error("removed component b was addressed")
	}
}

func TestRenderMarksElements(t *testing.T) {
	s := newSession(newDoc(core.ComponentDefinition{ID: "a", Type: "text", Properties: schema("title", "A")}))
	page := renderAndFlush(t, s, "/")

	html := page.HTML()
	for _, attr := range []string{address.AttrID, address.AttrType, address.AttrPath} {
		if !strings.Contains(html, attr+`="`) {
			t.Errorf("HTML() missing %s: %s", attr, html)
		}
	}
	for _, h := range s.Handles() {
		if h.ComponentID != "a" {
			t.Errorf("handle component = %q, want a", h.ComponentID)
		}
		if got, ok := s.Handle(h.ElementID); !ok || got.ElementID != h.ElementID {
			t.Errorf("Handle(%q) = %v, %v", h.ElementID, got, ok)
		}
	}
}
