package studio

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/3-lines-studio/studio/internal/core"
)

const counterSource = `export default function Counter({ label }) {
  const [count, setCount] = useState(0);
  return <button onClick={() => setCount(count + 1)}>{label}: {count}</button>;
}`

func counter(id string) ComponentDefinition {
	schema := core.NewPropertySchema()
	schema.Set("label", core.NewRecord("label", "Count"))
	return ComponentDefinition{ID: id, Type: "counter", SourceText: counterSource, Properties: schema}
}

func document() Document {
	return Document{
		ID:   "doc",
		Name: "Site",
		Pages: []PageDefinition{
			{ID: "home", Name: "Home", Path: "/", IsHomePage: true, Components: []ComponentDefinition{counter("c1")}},
			{ID: "about", Name: "About", Path: "/about", Components: []ComponentDefinition{counter("c2")}},
		},
	}
}

func TestEngineRenderComponent(t *testing.T) {
	e := New()
	res := e.RenderComponent(context.Background(), counter("c1"), map[string]any{"label": "Clicks"})
	if res.Err != nil {
		t.Fatalf("RenderComponent() error = %v", res.Err)
	}
	if got := res.HTML(); !strings.Contains(got, "Clicks: 0") {
		t.Errorf("HTML() = %q", got)
	}
}

func TestEngineExtractAndStyles(t *testing.T) {
	e := New()
	schema := e.ExtractPropertySchema("const properties = { title: 'Hi', visible: true };")
	if rec, ok := schema.Get("visible"); !ok || rec.Type != core.TypeBoolean {
		t.Errorf("visible = %+v, %v", rec, ok)
	}

	res := e.ResolveStyleTokens(StyleMap{"textAlign": "center", "opacity": "0.5"})
	if res.ClassTokens != "text-center" {
		t.Errorf("ClassTokens = %q, want text-center", res.ClassTokens)
	}
	if res.Residual["opacity"] != "0.5" {
		t.Errorf("Residual = %v", res.Residual)
	}
}

func TestEngineResolvePage(t *testing.T) {
	e := New()
	page, err := e.ResolvePage(document(), "about/")
	if err != nil {
		t.Fatal(err)
	}
	if page.ID != "about" {
		t.Errorf("ResolvePage() = %s, want about", page.ID)
	}
	if _, err := e.ResolvePage(Document{}, "/"); !errors.Is(err, ErrNoPage) {
		t.Errorf("ResolvePage() error = %v, want ErrNoPage", err)
	}
}

func TestEngineSession(t *testing.T) {
	e := New()
	sess := e.NewSession(document())
	ctx := context.Background()
	if _, err := sess.Render(ctx, "/"); err != nil {
		t.Fatal(err)
	}
	sess.Flush(ctx)

	var button string
	for _, h := range sess.Handles() {
		if h.ElementType == core.ElementButton {
			button = h.ElementID
		}
	}
	if button == "" {
		t.Fatal("button was not addressed")
	}
	if _, err := sess.Activate(ctx, button); err != nil {
		t.Fatal(err)
	}
	page, _ := sess.Page()
	if got := page.HTML(); !strings.Contains(got, "Count: 1") {
		t.Errorf("after click = %q", got)
	}
}

type memorySource struct {
	mu  sync.Mutex
	doc Document
}

func (m *memorySource) Load(context.Context) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc, nil
}

func (m *memorySource) SaveComponent(_ context.Context, def ComponentDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, err := core.ReplaceComponent(m.doc, def)
	if err != nil {
		return err
	}
	m.doc = doc
	return nil
}

func TestEnginePreviewHandler(t *testing.T) {
	e := New()
	h, err := e.PreviewHandler(context.Background(), &memorySource{doc: document()}, false)
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/about", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Count: 0") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

//go:embed testdata/public
var publicAssets embed.FS

func TestPublicAssets(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := PublicAssets(publicAssets, "testdata/public", next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/site.css", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "body") {
		t.Errorf("asset status = %d body = %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("Content-Type = %q", ct)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("fallthrough status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}

func TestEngineOptions(t *testing.T) {
	loop := ComponentDefinition{ID: "l", Type: "widget", SourceText: "function Loop() { while (true) {} }"}

	e := New(WithDefaultStepLimit(500))
	res := e.RenderComponent(context.Background(), loop, nil)
	if res.Err == nil || !strings.Contains(res.Err.Message, "too many steps") {
		t.Errorf("Err = %v, want step budget failure", res.Err)
	}

	cfg := RenderConfig{StepLimit: 1000}
	e = New(WithRenderConfig(cfg), WithCache(0, 0))
	first := e.RenderComponent(context.Background(), counter("c1"), nil)
	second := e.RenderComponent(context.Background(), counter("c1"), nil)
	if first.Cached || second.Cached {
		t.Error("render was cached with the cache disabled")
	}
}
