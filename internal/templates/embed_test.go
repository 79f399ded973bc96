package templates

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/literal"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

func TestProcessFilename(t *testing.T) {
	data := TemplateData{Name: "Site"}

	tests := []struct {
		name         string
		filename     string
		wantFilename string
		wantIsTmpl   bool
	}{
		{
			name:         "tmpl file gets processed",
			filename:     "document.json.tmpl",
			wantFilename: "document.json",
			wantIsTmpl:   true,
		},
		{
			name:         "regular file unchanged",
			filename:     ".env.example",
			wantFilename: ".env.example",
			wantIsTmpl:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotFilename, gotIsTmpl := ProcessFilename(tt.filename, data)
			if gotFilename != tt.wantFilename {
				t.Errorf("ProcessFilename(%q) filename = %q, want %q", tt.filename, gotFilename, tt.wantFilename)
			}
			if gotIsTmpl != tt.wantIsTmpl {
				t.Errorf("ProcessFilename(%q) isTmpl = %v, want %v", tt.filename, gotIsTmpl, tt.wantIsTmpl)
			}
		})
	}
}

func TestProcessContent(t *testing.T) {
	data := TemplateData{ID: "doc-1", Name: `My "site"`}

	tests := []struct {
		name       string
		content    string
		isTemplate bool
		want       string
	}{
		{
			name:       "non-template content unchanged",
			content:    `{"name": "{{.Name}}"}`,
			isTemplate: false,
			want:       `{"name": "{{.Name}}"}`,
		},
		{
			name:       "placeholders are JSON escaped",
			content:    `{"id": "{{.ID}}", "name": "{{.Name}}"}`,
			isTemplate: true,
			want:       `{"id": "doc-1", "name": "My \"site\""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(ProcessContent([]byte(tt.content), tt.isTemplate, data))
			if got != tt.want {
				t.Errorf("ProcessContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeriveDocumentName(t *testing.T) {
	tests := []struct {
		projectDir string
		want       string
	}{
		{projectDir: "/home/user/portfolio", want: "portfolio"},
		{projectDir: ".", want: "My site"},
		{projectDir: "/", want: "My site"},
		{projectDir: "", want: "My site"},
	}

	for _, tt := range tests {
		if got := DeriveDocumentName(tt.projectDir); got != tt.want {
			t.Errorf("DeriveDocumentName(%q) = %q, want %q", tt.projectDir, got, tt.want)
		}
	}
}

func TestGetTemplate(t *testing.T) {
	tests := []struct {
		template  string
		wantErr   bool
		errTarget error
	}{
		{template: "blank"},
		{template: "landing"},
		{template: "spa", wantErr: true, errTarget: ErrInvalidTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			templateFS, err := GetTemplate(tt.template)
			if tt.wantErr {
				if !errors.Is(err, tt.errTarget) {
					t.Errorf("GetTemplate(%q) error = %v, want %v", tt.template, err, tt.errTarget)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetTemplate(%q) error = %v", tt.template, err)
			}

			raw, err := fs.ReadFile(templateFS, "document.json.tmpl")
			if err != nil {
				t.Fatalf("read document.json.tmpl: %v", err)
			}
			content := ProcessContent(raw, true, TemplateData{ID: "doc-1", Name: "Demo"})
			var doc core.Document
			if err := json.Unmarshal(content, &doc); err != nil {
				t.Fatalf("starter document does not decode: %v", err)
			}
			if len(doc.Pages) == 0 || doc.ID != "doc-1" {
				t.Errorf("starter document = %+v", doc)
			}
			if issues := core.Validate(doc); len(issues) != 0 {
				t.Errorf("starter document has issues: %+v", issues)
			}
			if _, err := fs.ReadFile(templateFS, "studio.yaml.tmpl"); err != nil {
				t.Errorf("starter should include studio.yaml.tmpl: %v", err)
			}
			if _, err := fs.ReadFile(templateFS, ".env.example"); err != nil {
				t.Errorf("starter should include .env.example: %v", err)
			}
		})
	}
}

func obj(kv ...any) *literal.Object {
	o := literal.NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1])
	}
	return o
}

func TestRenderFallbackText(t *testing.T) {
	got, err := RenderFallback("TextBlock", obj("title", "About", "content", "One\n\nTwo"))
	if err != nil {
		t.Fatalf("RenderFallback() error = %v", err)
	}
	want := `<section class="px-6 py-8" data-template="text"><h2 class="text-2xl font-semibold">About</h2><p class="mt-2">One</p><p class="mt-2">Two</p></section>`
	if got != want {
		t.Errorf("RenderFallback() = %s, want %s", got, want)
	}
}

func TestRenderFallbackEscapes(t *testing.T) {
	got, err := RenderFallback("button", obj("buttonText", "<b>Go</b>", "href", "javascript:alert(1)"))
	if err != nil {
		t.Fatalf("RenderFallback() error = %v", err)
	}
	if strings.Contains(got, "<b>") || strings.Contains(got, "javascript:") {
		t.Errorf("RenderFallback() did not escape author values: %s", got)
	}
}

func TestRenderFallbackUnknownType(t *testing.T) {
	if _, err := RenderFallback("carousel", obj()); !errors.Is(err, ErrNoFallback) {
		t.Errorf("RenderFallback() error = %v, want ErrNoFallback", err)
	}
	if HasFallback("carousel") || !HasFallback("navbar") {
		t.Error("HasFallback() alias handling is wrong")
	}
}

func TestRenderFallbackSnapshots(t *testing.T) {
	props := obj(
		"title", "Acme",
		"subtitle", "Tools for builders",
		"content", "First paragraph.\n\nSecond paragraph.",
		"buttonText", "Start",
		"buttonLink", "/start",
		"imageUrl", "https://images.example.com/hero.png",
		"links", []any{"About", obj("label", "Blog", "href", "/blog")},
		"features", []any{obj("title", "Fast", "description", "Renders on save."), "Typed"},
	)
	for _, name := range FallbackTypes() {
		t.Run(name, func(t *testing.T) {
			got, err := RenderFallback(name, props)
			if err != nil {
				t.Fatalf("RenderFallback(%q) error = %v", name, err)
			}
			snaps.MatchSnapshot(t, got)
		})
	}
}
