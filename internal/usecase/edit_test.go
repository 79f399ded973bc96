package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/3-lines-studio/studio/internal/address"
	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/props"
)

type memorySource struct {
	doc   core.Document
	saved []core.ComponentDefinition
	err   error
}

func (m *memorySource) Load(context.Context) (core.Document, error) { return m.doc, nil }

func (m *memorySource) SaveComponent(_ context.Context, def core.ComponentDefinition) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, def)
	return nil
}

type recordingEmitter struct {
	events []Event
}

func (r *recordingEmitter) Emit(_ context.Context, e Event) { r.events = append(r.events, e) }

const editableSource = `const properties = {
  title: 'Welcome',
  count: 2,
};

export default function Hero({ title }) {
  return <h1>{title}</h1>;
}`

func editFixture() (core.Document, *memorySource, *recordingEmitter, *EditService) {
	def := core.ComponentDefinition{
		ID:         "hero-1",
		Type:       "hero",
		SourceText: editableSource,
		Properties: props.Extract(editableSource),
		IsCustom:   true,
	}
	doc := pageDoc(def)
	src := &memorySource{doc: doc}
	events := &recordingEmitter{}
	svc := NewEditService(src, events)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return doc, src, events, svc
}

func TestApplyPanelEdit(t *testing.T) {
	doc, src, events, svc := editFixture()

	out, err := svc.ApplyPanelEdit(context.Background(), doc, "hero-1", "title", "Hello")
	if err != nil {
		t.Fatalf("ApplyPanelEdit() error = %v", err)
	}

	rec, _ := out.Component.Properties.Get("title")
	if rec.Value != "Hello" {
		t.Errorf("title = %v, want Hello", rec.Value)
	}
	reread, _ := props.Extract(out.Component.SourceText).Get("title")
	if reread.Value != "Hello" {
		t.Errorf("source title = %v, want Hello\n%s", reread.Value, out.Component.SourceText)
	}
	if got, _, _ := core.FindComponent(out.Document, "hero-1"); got.SourceText != out.Component.SourceText {
		t.Error("document not updated with the new definition")
	}
	if orig, _, _ := core.FindComponent(doc, "hero-1"); orig.SourceText != editableSource {
		t.Error("input document was mutated")
	}
	if len(src.saved) != 1 || src.saved[0].ID != "hero-1" {
		t.Errorf("saved = %v, want one save of hero-1", src.saved)
	}
	if len(events.events) != 1 {
		t.Fatalf("events = %d, want 1", len(events.events))
	}
	e := events.events[0]
	if e.Name != EventComponentUpdated || e.ComponentID != "hero-1" || e.DocumentID != "doc-1" {
		t.Errorf("event = %+v", e)
	}
}

func TestApplyPanelEditErrors(t *testing.T) {
	doc, src, events, svc := editFixture()

	if _, err := svc.ApplyPanelEdit(context.Background(), doc, "nope", "title", "x"); !errors.Is(err, core.ErrComponentAbsent) {
		t.Errorf("unknown component error = %v, want %v", err, core.ErrComponentAbsent)
	}
	if _, err := svc.ApplyPanelEdit(context.Background(), doc, "hero-1", "missing", "x"); err == nil {
		t.Error("unknown property should fail")
	}
	if len(src.saved) != 0 || len(events.events) != 0 {
		t.Errorf("failed edits should not save or emit: saved=%d events=%d", len(src.saved), len(events.events))
	}
}

func TestApplyElementEdit(t *testing.T) {
	doc, _, _, svc := editFixture()
	content := "Greetings"
	handle := core.ElementHandle{ElementID: "el-1", ComponentID: "hero-1", Content: "Welcome"}

	out, err := svc.ApplyElementEdit(context.Background(), doc, handle, address.Edit{
		Content: &content,
		Style:   map[string]string{"textAlign": "center"},
	})
	if err != nil {
		t.Fatalf("ApplyElementEdit() error = %v", err)
	}
	if rec, _ := out.Component.Properties.Get("title"); rec.Value != "Greetings" {
		t.Errorf("title = %v, want Greetings", rec.Value)
	}
	if out.Component.Styles["textAlign"] != "center" {
		t.Errorf("Styles = %v", out.Component.Styles)
	}
}

func TestSaveFailureKeepsDocument(t *testing.T) {
	doc, src, events, svc := editFixture()
	src.err = errors.New("disk full")

	out, err := svc.ApplyPanelEdit(context.Background(), doc, "hero-1", "title", "Hello")
	if err == nil {
		t.Fatal("expected save error")
	}
	if got, _, _ := core.FindComponent(out.Document, "hero-1"); got.SourceText != editableSource {
		t.Error("document changed despite failed save")
	}
	if len(events.events) != 0 {
		t.Error("failed save should not emit")
	}
}

func TestUpdateSource(t *testing.T) {
	doc, _, _, svc := editFixture()
	next := "const properties = { label: 'Go' };\nfunction Button({ label }) { return <button>{label}</button>; }"

	out, err := svc.UpdateSource(context.Background(), doc, "hero-1", next)
	if err != nil {
		t.Fatalf("UpdateSource() error = %v", err)
	}
	if out.Component.SourceText != next {
		t.Errorf("SourceText = %q", out.Component.SourceText)
	}
	if !out.Component.Properties.Has("label") || out.Component.Properties.Has("title") {
		t.Errorf("Properties keys = %v, want [label]", out.Component.Properties.Keys())
	}
}
