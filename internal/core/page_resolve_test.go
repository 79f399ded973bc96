package core

import (
	"errors"
	"testing"
)

func TestResolvePage(t *testing.T) {
	doc := Document{Pages: []PageDefinition{
		{ID: "a", Path: "/a"},
		{ID: "root", Path: "/"},
		{ID: "b", Path: "/b", IsHomePage: true},
	}}

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "no path", path: "", want: "b"},
		{name: "exact", path: "/a", want: "a"},
		{name: "missing", path: "/missing", want: "b"},
		{name: "unnormalized", path: "a/", want: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := ResolvePage(doc, tt.path)
			if err != nil {
				t.Fatalf("ResolvePage() error = %v", err)
			}
			if page.ID != tt.want {
				t.Errorf("ResolvePage(%q) = %s, want %s", tt.path, page.ID, tt.want)
			}
		})
	}
}

func TestDecidePageOrder(t *testing.T) {
	tests := []struct {
		name  string
		pages []PageDefinition
		path  string
		want  ResolutionRule
		index int
	}{
		{
			name:  "root path without home flag",
			pages: []PageDefinition{{Path: "/x"}, {Path: "/"}},
			want:  RuleRootPath,
			index: 1,
		},
		{
			name:  "home by name",
			pages: []PageDefinition{{Path: "/x"}, {Path: "/y", Name: "HOME"}},
			want:  RuleHomeName,
			index: 1,
		},
		{
			name:  "first page",
			pages: []PageDefinition{{Path: "/x"}, {Path: "/y"}},
			path:  "/z",
			want:  RuleFirstPage,
			index: 0,
		},
		{
			name:  "no pages",
			pages: nil,
			want:  RuleNoPage,
			index: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecidePage(tt.pages, tt.path)
			if got.Rule != tt.want || got.Index != tt.index {
				t.Errorf("DecidePage() = %v/%d, want %v/%d", got.Rule, got.Index, tt.want, tt.index)
			}
		})
	}
}

func TestResolvePageEmptyDocument(t *testing.T) {
	_, err := ResolvePage(Document{}, "/")
	if !errors.Is(err, ErrNoPage) {
		t.Fatalf("expected ErrNoPage, got %v", err)
	}
	if !IsKind(err, ResolutionFailure) {
		t.Errorf("expected resolution failure kind, got %v", err)
	}
}

func TestSortComponentsStable(t *testing.T) {
	in := []ComponentDefinition{
		{ID: "first-two", OrderIndex: 2},
		{ID: "zero", OrderIndex: 0},
		{ID: "second-two", OrderIndex: 2},
		{ID: "one", OrderIndex: 1},
	}

	got := SortComponents(in)
	want := []string{"zero", "one", "first-two", "second-two"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("SortComponents()[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
	if in[0].ID != "first-two" {
		t.Error("input slice was modified")
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"":        "/",
		"/":       "/",
		"about":   "/about",
		"/about/": "/about",
		"//":      "/",
	}
	for in, want := range tests {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
