package core

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/cast"

	"github.com/3-lines-studio/studio/internal/literal"
)

type PropertyType string

const (
	TypeText    PropertyType = "text"
	TypeNumber  PropertyType = "number"
	TypeBoolean PropertyType = "boolean"
	TypeColor   PropertyType = "color"
	TypeImage   PropertyType = "image"
	TypeEmail   PropertyType = "email"
	TypeURL     PropertyType = "url"
	TypeArray   PropertyType = "array"
	TypeObject  PropertyType = "object"
)

var PropertyTypes = []PropertyType{
	TypeText, TypeNumber, TypeBoolean, TypeColor, TypeImage,
	TypeEmail, TypeURL, TypeArray, TypeObject,
}

func (t PropertyType) Valid() bool {
	for _, known := range PropertyTypes {
		if t == known {
			return true
		}
	}
	return false
}

// TextLike reports whether values of t are stored as strings.
func (t PropertyType) TextLike() bool {
	switch t {
	case TypeText, TypeColor, TypeImage, TypeEmail, TypeURL:
		return true
	}
	return false
}

// PropertyRecord is one typed entry of a component's property schema. Value
// always has the Go shape of Type once Normalize has run.
type PropertyRecord struct {
	Type     PropertyType `json:"type"`
	Value    any          `json:"value"`
	Label    string       `json:"label"`
	Editable bool         `json:"editable"`
}

// NewRecord promotes a flat literal value to a record with an inferred type.
func NewRecord(key string, v any) PropertyRecord {
	rec := PropertyRecord{
		Type:     InferType(v),
		Value:    v,
		Label:    FormatLabel(key),
		Editable: true,
	}
	rec.Normalize()
	return rec
}

// RecordFromObject repairs a structured {type, value, label, editable} entry.
// Missing or unknown types are inferred from the value, missing labels come
// from the key and editable defaults to true.
func RecordFromObject(key string, obj *literal.Object) PropertyRecord {
	value, hasValue := obj.Get("value")

	rec := PropertyRecord{Label: FormatLabel(key), Editable: true}
	if raw, ok := obj.Get("type"); ok {
		rec.Type = PropertyType(strings.ToLower(strings.TrimSpace(cast.ToString(raw))))
	}
	if !rec.Type.Valid() {
		if hasValue {
			rec.Type = InferType(value)
		} else {
			rec.Type = TypeText
		}
	}
	if hasValue {
		rec.Value = value
	} else {
		rec.Value = ZeroValue(rec.Type)
	}
	if raw, ok := obj.Get("label"); ok {
		if label := strings.TrimSpace(cast.ToString(raw)); label != "" {
			rec.Label = label
		}
	}
	if raw, ok := obj.Get("editable"); ok {
		if b, err := cast.ToBoolE(raw); err == nil {
			rec.Editable = b
		}
	}
	rec.Normalize()
	return rec
}

// IsStructured reports whether a literal entry uses the record shape.
func IsStructured(v any) (*literal.Object, bool) {
	obj, ok := v.(*literal.Object)
	if !ok {
		return nil, false
	}
	return obj, obj.Has("type") || obj.Has("value")
}

// ZeroValue returns the empty value for t.
func ZeroValue(t PropertyType) any {
	switch t {
	case TypeNumber:
		return 0.0
	case TypeBoolean:
		return false
	case TypeArray:
		return []any{}
	case TypeObject:
		return literal.NewObject()
	default:
		return ""
	}
}

// Normalize coerces Value into the shape of Type.
func (r *PropertyRecord) Normalize() {
	if !r.Type.Valid() {
		r.Type = InferType(r.Value)
	}
	switch r.Type {
	case TypeText, TypeColor, TypeImage, TypeEmail, TypeURL:
		r.Value = toText(r.Value)
	case TypeNumber:
		f, err := cast.ToFloat64E(r.Value)
		if err != nil {
			f = 0
		}
		r.Value = f
	case TypeBoolean:
		b, err := cast.ToBoolE(r.Value)
		if err != nil {
			b = false
		}
		r.Value = b
	case TypeArray:
		r.Value = toArray(r.Value)
	case TypeObject:
		r.Value = toObject(r.Value)
	}
}

func toText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return literal.FormatNumber(x)
	case *literal.Object, []any, map[string]any:
		data, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(data)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

func toArray(v any) []any {
	switch x := v.(type) {
	case nil:
		return []any{}
	case []any:
		return x
	case string:
		if x == "" {
			return []any{}
		}
		return []any{x}
	}
	if s, err := cast.ToSliceE(v); err == nil {
		return s
	}
	return []any{v}
}

func toObject(v any) *literal.Object {
	switch x := v.(type) {
	case *literal.Object:
		return x
	case map[string]any:
		obj := literal.NewObject()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.Set(k, x[k])
		}
		return obj
	}
	return literal.NewObject()
}

var (
	hexColorRe  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColorRe = regexp.MustCompile(`(?i)^(?:rgba?|hsla?)\([^()]*\)$`)
	schemeRe    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://\S+$`)
)

var imageHosts = []string{"unsplash.com", "images.", "cloudinary", "imgur", "picsum.photos", "placehold"}

// InferType derives a property type from the shape of a literal value,
// refining strings into the more specific text-like types.
func InferType(v any) PropertyType {
	switch x := v.(type) {
	case bool:
		return TypeBoolean
	case float64, float32, int, int64:
		return TypeNumber
	case []any:
		return TypeArray
	case *literal.Object, map[string]any:
		return TypeObject
	case string:
		return InferStringType(x)
	default:
		return TypeText
	}
}

func InferStringType(s string) PropertyType {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return TypeText
	case isImageRef(s):
		return TypeImage
	case hexColorRe.MatchString(s) || funcColorRe.MatchString(s):
		return TypeColor
	case isEmail(s):
		return TypeEmail
	case schemeRe.MatchString(s) || strings.HasPrefix(s, "mailto:") || strings.HasPrefix(s, "tel:"):
		return TypeURL
	default:
		return TypeText
	}
}

func isImageRef(s string) bool {
	if strings.ContainsAny(s, " \t\n") {
		return false
	}
	if IsImagePath(s) {
		return true
	}
	lower := strings.ToLower(s)
	for _, host := range imageHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}

func isEmail(s string) bool {
	if strings.ContainsAny(s, " \t\n") {
		return false
	}
	at := strings.Index(s, "@")
	if at <= 0 || strings.Contains(s[:at], ":") {
		return false
	}
	domain := s[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// FormatLabel turns a property key into a sentence-case label:
// backgroundColor becomes "Background color", button_text "Button text".
func FormatLabel(key string) string {
	runes := []rune(key)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case r == '_' || r == '-':
			b.WriteByte(' ')
			continue
		case unicode.IsUpper(r) && i > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	label := strings.Join(strings.Fields(b.String()), " ")
	if label == "" {
		return ""
	}
	first := []rune(label)
	first[0] = unicode.ToUpper(first[0])
	return string(first)
}
