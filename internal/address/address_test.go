package address

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/vdom"
)

func sampleTree() *vdom.Node {
	root := vdom.Element("section", vdom.Attr{Key: "class", Val: "p-4 bg-white"})
	root.Append(
		vdom.Element("h1").Append(vdom.Text("Welcome")),
		vdom.Text(" "),
		vdom.Fragment(
			vdom.Element("p").Append(vdom.Text("Body")),
			vdom.Element("div", vdom.Attr{Key: "role", Val: "button"}).Append(vdom.Text("Go")),
		),
		vdom.Element("a", vdom.Attr{Key: "style", Val: "color: red; margin-top: 4px"}).Append(
			vdom.Element("img"),
		),
	)
	return root
}

func TestAssign(t *testing.T) {
	root := sampleTree()
	handles := Assign("c1", root)

	want := []struct {
		kind core.ElementCategory
		path []int
	}{
		{core.ElementContainer, []int{}},
		{core.ElementHeading, []int{0}},
		{core.ElementParagraph, []int{1}},
		{core.ElementButton, []int{2}},
		{core.ElementLink, []int{3}},
		{core.ElementImage, []int{3, 0}},
	}
	if len(handles) != len(want) {
		t.Fatalf("Assign() returned %d handles, want %d", len(handles), len(want))
	}
	ids := map[string]bool{}
	for i, w := range want {
		h := handles[i]
		if h.ElementType != w.kind {
			t.Errorf("handle %d type = %s, want %s", i, h.ElementType, w.kind)
		}
		if !reflect.DeepEqual(h.Path, w.path) {
			t.Errorf("handle %d path = %v, want %v", i, h.Path, w.path)
		}
		if h.ComponentID != "c1" {
			t.Errorf("handle %d component = %q", i, h.ComponentID)
		}
		if h.ElementID == "" || ids[h.ElementID] {
			t.Errorf("handle %d id %q is empty or duplicated", i, h.ElementID)
		}
		ids[h.ElementID] = true
	}
	if got := handles[0].Classes; !reflect.DeepEqual(got, []string{"p-4", "bg-white"}) {
		t.Errorf("classes = %v", got)
	}
	if got := handles[4].Style; got["margin-top"] != "4px" || got["color"] != "red" {
		t.Errorf("style = %v", got)
	}
	if got := handles[1].Content; got != "Welcome" {
		t.Errorf("content = %q, want Welcome", got)
	}
}

func TestAssignIsIdempotent(t *testing.T) {
	root := sampleTree()
	first := Assign("c1", root)
	before := vdom.Render(root)
	second := Assign("c1", root)

	if after := vdom.Render(root); after != before {
		t.Errorf("second walk changed the tree:\n%s\n%s", before, after)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("handles differ between walks")
	}
}

func TestAssignKeepsMarkedSubtreeAndMarksNewNodes(t *testing.T) {
	root := sampleTree()
	Assign("c1", root)
	added := vdom.Element("button").Append(vdom.Text("New"))
	root.Append(added)

	handles := Assign("c1", root)
	last := handles[len(handles)-1]
	if last.ElementType != core.ElementButton || !reflect.DeepEqual(last.Path, []int{4}) {
		t.Errorf("new element handle = %+v", last)
	}
	if Lookup(root, last.ElementID) != added {
		t.Error("Lookup() did not find the new element")
	}
}

func TestSchedulerSkipsRemovedComponents(t *testing.T) {
	s := NewScheduler()
	s.Schedule("kept", sampleTree())
	s.Schedule("gone", sampleTree())
	s.Schedule("kept", vdom.Element("p"))
	if got := s.Pending(); got != 2 {
		t.Fatalf("Pending() = %d, want 2", got)
	}

	res := s.Flush(context.Background(), func(id string) bool { return id == "kept" })
	if got := len(res.Handles["kept"]); got != 1 {
		t.Errorf("kept handles = %d, want 1 (latest tree)", got)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Kind != core.AddressingSkip {
		t.Fatalf("Skipped = %+v", res.Skipped)
	}
	if !errors.Is(res.Skipped[0], core.ErrComponentAbsent) {
		t.Error("skip should wrap ErrComponentAbsent")
	}
	if s.Pending() != 0 {
		t.Error("Flush() should drain the queue")
	}
}

func TestApplyEdit(t *testing.T) {
	def := core.ComponentDefinition{ID: "c1", Properties: core.NewPropertySchema(), Styles: core.StyleMap{"padding": "4"}}
	def.Properties.Set("count", core.NewRecord("count", 3.0))
	def.Properties.Set("title", core.NewRecord("title", "Welcome"))

	text := "Hello"
	handle := core.ElementHandle{ElementID: "e1", ComponentID: "c1", Content: " Welcome "}
	got, err := ApplyEdit(def, handle, Edit{Content: &text, Style: map[string]string{"padding": "", "textColor": "blue"}})
	if err != nil {
		t.Fatalf("ApplyEdit() error = %v", err)
	}
	if rec, _ := got.Properties.Get("title"); rec.Value != "Hello" {
		t.Errorf("title = %v, want Hello", rec.Value)
	}
	if rec, _ := def.Properties.Get("title"); rec.Value != "Welcome" {
		t.Error("ApplyEdit() mutated the input definition")
	}
	if !reflect.DeepEqual(got.Styles, core.StyleMap{"textColor": "blue"}) {
		t.Errorf("styles = %v", got.Styles)
	}

	_, err = ApplyEdit(def, core.ElementHandle{ComponentID: "c1", Content: "Missing"}, Edit{Content: &text})
	if !errors.Is(err, ErrNoMatchingProperty) {
		t.Errorf("ApplyEdit() error = %v, want ErrNoMatchingProperty", err)
	}
	_, err = ApplyEdit(def, core.ElementHandle{ComponentID: "other"}, Edit{})
	if !errors.Is(err, ErrWrongComponent) {
		t.Errorf("ApplyEdit() error = %v, want ErrWrongComponent", err)
	}
}

func TestPathRoundTrip(t *testing.T) {
	tests := []struct {
		path []int
		text string
	}{
		{path: []int{}, text: ""},
		{path: []int{0}, text: "0"},
		{path: []int{2, 0, 11}, text: "2.0.11"},
	}
	for _, tt := range tests {
		if got := FormatPath(tt.path); got != tt.text {
			t.Errorf("FormatPath(%v) = %q, want %q", tt.path, got, tt.text)
		}
		if got := ParsePath(tt.text); !reflect.DeepEqual(got, tt.path) {
			t.Errorf("ParsePath(%q) = %v, want %v", tt.text, got, tt.path)
		}
	}
}
