package props

import (
	"reflect"
	"strings"
	"testing"

	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/literal"
)

const heroSource = `import React from 'react';

const properties = {
  title: 'Welcome',
  subtitle: "Build faster", // shown under the title
  backgroundColor: '#1a2b3c',
  contact: 'team@example.com',
  heroImage: 'https://cdn.test/hero.jpg',
  showButton: true,
  columns: 3,
  tags: ['a', 'b',],
};

export default function Hero(props) {
  return <section><h1>{props.title}</h1></section>;
}
`

func TestExtractFlatBinding(t *testing.T) {
	s := Extract(heroSource)

	want := []struct {
		key   string
		typ   core.PropertyType
		value any
	}{
		{key: "title", typ: core.TypeText, value: "Welcome"},
		{key: "subtitle", typ: core.TypeText, value: "Build faster"},
		{key: "backgroundColor", typ: core.TypeColor, value: "#1a2b3c"},
		{key: "contact", typ: core.TypeEmail, value: "team@example.com"},
		{key: "heroImage", typ: core.TypeImage, value: "https://cdn.test/hero.jpg"},
		{key: "showButton", typ: core.TypeBoolean, value: true},
		{key: "columns", typ: core.TypeNumber, value: 3.0},
	}

	if got := s.Keys(); len(got) != 8 || got[0] != "title" || got[7] != "tags" {
		t.Fatalf("Keys() = %v", got)
	}
	for _, w := range want {
		rec, _ := s.Get(w.key)
		if rec.Type != w.typ || rec.Value != w.value {
			t.Errorf("%s = %v %#v, want %v %#v", w.key, rec.Type, rec.Value, w.typ, w.value)
		}
		if !rec.Editable {
			t.Errorf("%s should be editable", w.key)
		}
	}
	if rec, _ := s.Get("backgroundColor"); rec.Label != "Background color" {
		t.Errorf("label = %q", rec.Label)
	}
}

func TestExtractStructuredBinding(t *testing.T) {
	src := `const propertySchema = {
  heading: { type: 'text', value: 'Hi', label: 'Main heading' },
  accent: { value: '#ff0000' },
  count: { type: 'number' },
  locked: { type: 'text', value: 'x', editable: false },
  nested: { type: 'object', value: { a: { b: [1, 2] } } },
};`

	s := Extract(src)
	checks := []struct {
		key      string
		typ      core.PropertyType
		label    string
		editable bool
	}{
		{key: "heading", typ: core.TypeText, label: "Main heading", editable: true},
		{key: "accent", typ: core.TypeColor, label: "Accent", editable: true},
		{key: "count", typ: core.TypeNumber, label: "Count", editable: true},
		{key: "locked", typ: core.TypeText, label: "Locked", editable: false},
		{key: "nested", typ: core.TypeObject, label: "Nested", editable: true},
	}
	for _, c := range checks {
		rec, ok := s.Get(c.key)
		if !ok {
			t.Errorf("missing %s", c.key)
			continue
		}
		if rec.Type != c.typ || rec.Label != c.label || rec.Editable != c.editable {
			t.Errorf("%s = %+v", c.key, rec)
		}
	}
	if rec, _ := s.Get("count"); rec.Value != 0.0 {
		t.Errorf("count zero value = %#v", rec.Value)
	}
}

func TestExtractBindingForms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		tier string
		mode literal.Mode
	}{
		{name: "json", src: `const properties = {"title": "A"}`, tier: "binding", mode: literal.Strict},
		{name: "let with type", src: "let propertyDefinitions: Record<string, any> = {title: 'A'}", tier: "binding", mode: literal.Relaxed},
		{name: "default props", src: "function Card() {}\nCard.defaultProps = {\n  /* c */ title: 'A',\n};", tier: "binding", mode: literal.Loose},
		{name: "expression values", src: "var defaultProps = { title: 'A', onClick: () => go('/x'), size: 2 * 4 }", tier: "binding", mode: literal.Loose},
		{name: "binding in comment ignored", src: "// const properties = { title: 'B' }\nexport default () => <h2>A</h2>", tier: "markup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Analyze(tt.src)
			if res.Tier != tt.tier {
				t.Fatalf("Tier = %s, want %s (err %v)", res.Tier, tt.tier, res.Err)
			}
			if tt.tier == "binding" && res.Mode != tt.mode {
				t.Errorf("Mode = %v, want %v", res.Mode, tt.mode)
			}
			rec, ok := res.Schema.Get("title")
			if !ok || rec.Value != "A" {
				t.Errorf("title = %+v", rec)
			}
		})
	}
}

func TestExtractMarkupFallback(t *testing.T) {
	src := `export default function Promo({ title }) {
  return (
    <div className="promo">
      <h2>{title}</h2>
      <h3 className="lead">Summer <em>sale</em> now</h3>
      <p>Everything &amp; more</p>
      <img src={props.img} />
      <img src="/banner.webp" alt="" />
      <button onClick={go}>Shop now</button>
    </div>
  );
}`

	s := Extract(src)
	want := map[string]any{
		"title":      "Summer sale now",
		"content":    "Everything & more",
		"buttonText": "Shop now",
		"imageUrl":   "/banner.webp",
	}
	if got := s.Keys(); !reflect.DeepEqual(got, []string{"title", "content", "buttonText", "imageUrl"}) {
		t.Errorf("Keys() = %v", got)
	}
	for k, v := range want {
		rec, _ := s.Get(k)
		if rec.Value != v {
			t.Errorf("%s = %#v, want %#v", k, rec.Value, v)
		}
	}
	if rec, _ := s.Get("imageUrl"); rec.Type != core.TypeImage {
		t.Errorf("imageUrl type = %v", rec.Type)
	}
}

func TestExtractDefaultSchema(t *testing.T) {
	for _, src := range []string{"", "const x = 1;", "const properties = { title: 'unterminated"} {
		s := Extract(src)
		if !s.Equal(core.DefaultSchema()) {
			t.Errorf("Extract(%q) = %v, want default schema", src, s.Keys())
		}
	}
}

func TestExtractIdempotent(t *testing.T) {
	sources := []string{heroSource, "const properties = { a: {", "<h1>x</h1>", ""}
	for _, src := range sources {
		first := Extract(src)
		second := Extract(src)
		if !first.Equal(second) {
			t.Errorf("Extract(%q) is not idempotent", src)
		}
	}
}

func TestAuthorRoundTrip(t *testing.T) {
	s := core.NewPropertySchema()
	s.Set("title", core.NewRecord("title", "Hello \"there\""))
	s.Set("accent", core.NewRecord("accent", "#abcdef"))
	s.Set("count", core.NewRecord("count", 2.5))
	s.Set("items", core.NewRecord("items", []any{"x", 1.0, true}))
	custom := core.NewRecord("note", "#notacolor")
	custom.Label = "Side note"
	custom.Editable = false
	s.Set("note", custom)
	forced := core.NewRecord("link", "plain")
	forced.Type = core.TypeURL
	s.Set("link", forced)
	obj := literal.NewObject()
	obj.Set("type", "inner")
	s.Set("meta", core.PropertyRecord{Type: core.TypeObject, Value: obj, Label: "Meta", Editable: true})

	text := Author(s)
	back := Extract(text)
	if !back.EqualValues(s) {
		t.Errorf("round trip changed schema:\n%s", text)
	}
	if !reflect.DeepEqual(back.Keys(), s.Keys()) {
		t.Errorf("round trip changed key order: %v", back.Keys())
	}
}

func TestReplace(t *testing.T) {
	s := core.NewPropertySchema()
	s.Set("title", core.NewRecord("title", "New"))

	got := Replace(heroSource, s)
	if !strings.Contains(got, "const properties = {\n  title: \"New\",\n};") {
		t.Errorf("Replace() did not swap the block:\n%s", got)
	}
	if !strings.Contains(got, "export default function Hero") {
		t.Error("Replace() dropped component code")
	}
	if Extract(got).Len() != 1 {
		t.Errorf("Replace() result extracts %v", Extract(got).Keys())
	}

	plain := Replace("export default () => <p>x</p>", s)
	if !strings.HasPrefix(plain, "const properties = {") {
		t.Errorf("Replace() should prepend a block:\n%s", plain)
	}

	defaults := Replace("function Card() {}\nCard.defaultProps = { title: 'Old' };", s)
	if !strings.Contains(defaults, `Card.defaultProps = {`) || !strings.Contains(defaults, `title: "New"`) {
		t.Errorf("Replace() on defaultProps:\n%s", defaults)
	}
}

func TestMerge(t *testing.T) {
	s := core.NewPropertySchema()
	s.Set("b", core.NewRecord("b", "schema-b"))
	s.Set("a", core.NewRecord("a", "schema-a"))

	got := Merge(s, map[string]any{"a": "override", "z": 1.0, "c": true})
	if keys := got.Keys(); !reflect.DeepEqual(keys, []string{"b", "a", "c", "z"}) {
		t.Errorf("Keys() = %v", keys)
	}
	if v, _ := got.Get("a"); v != "override" {
		t.Errorf("a = %v", v)
	}
	if v, _ := got.Get("b"); v != "schema-b" {
		t.Errorf("b = %v", v)
	}
}

func TestSchema(t *testing.T) {
	stored := core.NewPropertySchema()
	stored.Set("label", core.NewRecord("label", "Stored"))

	tests := []struct {
		name string
		def  core.ComponentDefinition
		keys []string
	}{
		{name: "stored wins", def: core.ComponentDefinition{Properties: stored, SourceText: heroSource}, keys: []string{"label"}},
		{name: "source only", def: core.ComponentDefinition{SourceText: `const properties = { title: "Hi", accent: "#ff0000" };`}, keys: []string{"title", "accent"}},
		{name: "neither", def: core.ComponentDefinition{Type: "text"}, keys: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Schema(tt.def).Keys()
			if len(got) != len(tt.keys) {
				t.Fatalf("Schema().Keys() = %v, want %v", got, tt.keys)
			}
			for i := range got {
				if got[i] != tt.keys[i] {
					t.Errorf("Schema().Keys() = %v, want %v", got, tt.keys)
				}
			}
		})
	}
}
