package core

import (
	"testing"

	"github.com/3-lines-studio/studio/internal/literal"
)

func TestInferType(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  PropertyType
	}{
		{name: "hex color", value: "#1a2b3c", want: TypeColor},
		{name: "short hex", value: "#fff", want: TypeColor},
		{name: "rgba", value: "rgba(0, 0, 0, 0.5)", want: TypeColor},
		{name: "email", value: "user@example.com", want: TypeEmail},
		{name: "image url", value: "https://x.test/y.png", want: TypeImage},
		{name: "image query", value: "https://cdn.test/a.webp?w=200", want: TypeImage},
		{name: "image host", value: "https://images.unsplash.com/photo-1", want: TypeImage},
		{name: "url", value: "https://example.com/about", want: TypeURL},
		{name: "mailto", value: "mailto:hi@example.com", want: TypeURL},
		{name: "boolean", value: true, want: TypeBoolean},
		{name: "number", value: 42.0, want: TypeNumber},
		{name: "array", value: []any{"a"}, want: TypeArray},
		{name: "object", value: literal.NewObject(), want: TypeObject},
		{name: "null", value: nil, want: TypeText},
		{name: "plain text", value: "Hello world", want: TypeText},
		{name: "sentence with at", value: "meet @ noon. ok", want: TypeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferType(tt.value); got != tt.want {
				t.Errorf("InferType(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatLabel(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: "backgroundColor", want: "Background color"},
		{key: "button_text", want: "Button text"},
		{key: "title", want: "Title"},
		{key: "imageURL", want: "Image url"},
		{key: "cta2Link", want: "Cta2 link"},
		{key: "__private", want: "Private"},
		{key: "", want: ""},
	}

	for _, tt := range tests {
		if got := FormatLabel(tt.key); got != tt.want {
			t.Errorf("FormatLabel(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestRecordFromObjectRepairs(t *testing.T) {
	obj := literal.NewObject()
	obj.Set("value", "#ff0000")

	rec := RecordFromObject("accentColor", obj)
	if rec.Type != TypeColor {
		t.Errorf("Type = %v, want %v", rec.Type, TypeColor)
	}
	if rec.Label != "Accent color" {
		t.Errorf("Label = %q", rec.Label)
	}
	if !rec.Editable {
		t.Error("Editable should default to true")
	}

	typed := literal.NewObject()
	typed.Set("type", "number")
	typed.Set("editable", false)
	rec = RecordFromObject("count", typed)
	if rec.Value != 0.0 {
		t.Errorf("missing value should be zero, got %v", rec.Value)
	}
	if rec.Editable {
		t.Error("explicit editable=false should be kept")
	}

	unknown := literal.NewObject()
	unknown.Set("type", "fancy")
	unknown.Set("value", []any{1.0})
	if rec := RecordFromObject("items", unknown); rec.Type != TypeArray {
		t.Errorf("unknown type should be inferred, got %v", rec.Type)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		rec  PropertyRecord
		want any
	}{
		{rec: PropertyRecord{Type: TypeNumber, Value: "12.5"}, want: 12.5},
		{rec: PropertyRecord{Type: TypeNumber, Value: "abc"}, want: 0.0},
		{rec: PropertyRecord{Type: TypeBoolean, Value: "true"}, want: true},
		{rec: PropertyRecord{Type: TypeText, Value: 3.0}, want: "3"},
		{rec: PropertyRecord{Type: TypeText, Value: nil}, want: ""},
		{rec: PropertyRecord{Type: TypeColor, Value: "#000"}, want: "#000"},
	}

	for _, tt := range tests {
		rec := tt.rec
		rec.Normalize()
		if rec.Value != tt.want {
			t.Errorf("Normalize(%v %v) = %#v, want %#v", tt.rec.Type, tt.rec.Value, rec.Value, tt.want)
		}
	}

	arr := PropertyRecord{Type: TypeArray, Value: nil}
	arr.Normalize()
	if v, ok := arr.Value.([]any); !ok || len(v) != 0 {
		t.Errorf("array Normalize(nil) = %#v", arr.Value)
	}
}

func TestCanonicalType(t *testing.T) {
	tests := map[string]string{
		"Hero":         "hero",
		"feature-list": "features",
		"Text Block":   "text",
		"navbar":       "header",
		"CTA":          "button",
		"carousel":     "",
	}
	for in, want := range tests {
		if got := CanonicalType(in); got != want {
			t.Errorf("CanonicalType(%q) = %q, want %q", in, got, want)
		}
	}
}
