// Package templates holds the static fallback markup used when a component
// cannot be rendered from source, and the starter documents for init.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"

	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/literal"
)

//go:embed fallback/*.html
var fallbackFS embed.FS

//go:embed all:starter/blank
var blankFS embed.FS

//go:embed all:starter/landing
var landingFS embed.FS

var validTemplates = []string{"blank", "landing"}

var (
	ErrInvalidTemplate = errors.New("invalid template name")
	ErrNoFallback      = errors.New("no fallback template for type")
)

var fallbacks = template.Must(template.New("fallback").Funcs(template.FuncMap{
	"pick":       pick,
	"links":      links,
	"features":   features,
	"paragraphs": paragraphs,
}).ParseFS(fallbackFS, "fallback/*.html"))

// FallbackTypes lists the canonical component types with a static template.
func FallbackTypes() []string {
	return []string{"header", "hero", "text", "image", "button", "features"}
}

// HasFallback reports whether componentType, or one of its aliases, has a
// static template.
func HasFallback(componentType string) bool {
	return core.CanonicalType(componentType) != ""
}

// RenderFallback executes the static template for componentType with the
// merged property object.
func RenderFallback(componentType string, props *literal.Object) (string, error) {
	name := core.CanonicalType(componentType)
	if name == "" {
		return "", fmt.Errorf("%q: %w", componentType, ErrNoFallback)
	}
	data := props.Map()
	if data == nil {
		data = map[string]any{}
	}
	var buf bytes.Buffer
	if err := fallbacks.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return "", fmt.Errorf("render %s fallback: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func GetTemplate(name string) (fs.FS, error) {
	switch name {
	case "blank":
		return fs.Sub(blankFS, "starter/blank")
	case "landing":
		return fs.Sub(landingFS, "starter/landing")
	default:
		return nil, ErrInvalidTemplate
	}
}

func TemplateNames() []string {
	return append([]string(nil), validTemplates...)
}

type TemplateData struct {
	ID   string
	Name string
}

func ProcessFilename(filename string, data TemplateData) (string, bool) {
	if before, ok := strings.CutSuffix(filename, ".tmpl"); ok {
		return before, true
	}
	return filename, false
}

// ProcessContent fills the placeholders of a .tmpl file. Values are written
// as JSON string bodies so they stay valid inside quoted fields.
func ProcessContent(content []byte, isTemplate bool, data TemplateData) []byte {
	if !isTemplate {
		return content
	}

	result := string(content)
	result = strings.ReplaceAll(result, "{{.ID}}", jsonBody(data.ID))
	result = strings.ReplaceAll(result, "{{.Name}}", jsonBody(data.Name))

	return []byte(result)
}

func jsonBody(s string) string {
	q := literal.Quote(s)
	return q[1 : len(q)-1]
}

func DeriveDocumentName(projectDir string) string {
	base := filepath.Base(projectDir)
	if base == "." || base == "/" || base == "" {
		return "My site"
	}
	return base
}

// pick returns the first non-empty value among keys, as text.
func pick(data map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := data[k]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(cast.ToString(v)); s != "" {
			return s
		}
	}
	return ""
}

type link struct {
	Label string
	Href  string
}

// links reads navigation entries given as strings or {label, href} objects.
func links(data map[string]any, keys ...string) []link {
	var out []link
	for _, item := range list(data, keys...) {
		switch x := item.(type) {
		case map[string]any:
			label := pick(x, "label", "text", "title", "name")
			href := pick(x, "href", "link", "url", "path")
			if href == "" {
				href = "#"
			}
			out = append(out, link{Label: label, Href: href})
		default:
			label := cast.ToString(x)
			if label == "" {
				continue
			}
			out = append(out, link{Label: label, Href: "/" + strings.ToLower(strings.ReplaceAll(label, " ", "-"))})
		}
	}
	return out
}

type feature struct {
	Title       string
	Description string
}

func features(data map[string]any, keys ...string) []feature {
	var out []feature
	for _, item := range list(data, keys...) {
		switch x := item.(type) {
		case map[string]any:
			out = append(out, feature{
				Title:       pick(x, "title", "name", "label", "heading"),
				Description: pick(x, "description", "text", "content", "body"),
			})
		default:
			if s := cast.ToString(x); s != "" {
				out = append(out, feature{Title: s})
			}
		}
	}
	return out
}

func list(data map[string]any, keys ...string) []any {
	for _, k := range keys {
		if xs, ok := data[k].([]any); ok && len(xs) > 0 {
			return xs
		}
	}
	return nil
}

// paragraphs splits text on blank lines.
func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
