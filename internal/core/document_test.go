package core

import (
	"errors"
	"strings"
	"testing"
)

func TestRepairHomePages(t *testing.T) {
	doc := Document{Pages: []PageDefinition{
		{ID: "a", IsHomePage: false},
		{ID: "b", IsHomePage: true},
		{ID: "c", IsHomePage: true},
	}}

	repaired, changed := RepairHomePages(doc)
	if !changed {
		t.Fatal("expected a change")
	}
	if !repaired.Pages[1].IsHomePage || repaired.Pages[2].IsHomePage {
		t.Errorf("first flagged page should win: %+v", repaired.Pages)
	}
	if !doc.Pages[2].IsHomePage {
		t.Error("input document was modified")
	}

	if _, changed := RepairHomePages(repaired); changed {
		t.Error("repair should be idempotent")
	}
}

func TestReplaceComponent(t *testing.T) {
	doc := Document{Pages: []PageDefinition{{
		ID:         "p",
		Components: []ComponentDefinition{{ID: "c1", Type: "hero"}, {ID: "c2", Type: "text"}},
	}}}

	updated := doc.Pages[0].Components[1]
	updated.Type = "button"
	out, err := ReplaceComponent(doc, updated)
	if err != nil {
		t.Fatalf("ReplaceComponent() error = %v", err)
	}
	if out.Pages[0].Components[1].Type != "button" {
		t.Errorf("component not replaced")
	}
	if doc.Pages[0].Components[1].Type != "text" {
		t.Errorf("original document mutated")
	}

	_, err = ReplaceComponent(doc, ComponentDefinition{ID: "missing"})
	if !errors.Is(err, ErrComponentAbsent) {
		t.Errorf("expected ErrComponentAbsent, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	doc := Document{Pages: []PageDefinition{
		{Name: "Home", Path: "/", IsHomePage: true, Components: []ComponentDefinition{{OrderIndex: 1}, {OrderIndex: 1}}},
		{Name: "Dup", Path: "/", IsHomePage: true},
		{Name: "Bad", Path: "no-slash", Components: []ComponentDefinition{{}}},
	}}

	issues := Validate(doc)
	var messages []string
	for _, is := range issues {
		messages = append(messages, is.Page+": "+is.Message)
	}
	joined := strings.Join(messages, "\n")

	for _, want := range []string{
		"Home: order 1 shared by 2 components",
		"Dup: path / already used by Home",
		"Dup: page has no components",
		"Bad: path must start with /",
		": 2 pages flagged as home, only the first is kept",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing issue %q in:\n%s", want, joined)
		}
	}

	if issues := Validate(Document{}); len(issues) != 1 || issues[0].Severity != SeverityError {
		t.Errorf("empty document issues = %+v", issues)
	}
}
