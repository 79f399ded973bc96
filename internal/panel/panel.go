// Package panel describes the editing form for a property schema and
// coerces raw form input back into typed records.
package panel

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/literal"
)

type Control string

const (
	ControlText     Control = "text"
	ControlTextarea Control = "textarea"
	ControlNumber   Control = "number"
	ControlToggle   Control = "toggle"
	ControlColor    Control = "color"
	ControlImage    Control = "image"
	ControlEmail    Control = "email"
	ControlURL      Control = "url"
	ControlList     Control = "list"
	ControlJSON     Control = "json"
)

var (
	ErrUnknownProperty = errors.New("unknown property")
	ErrNotEditable     = errors.New("property is not editable")
	ErrInvalidValue    = errors.New("invalid value")
)

// Field is one row of the editing panel.
type Field struct {
	Key      string            `json:"key"`
	Label    string            `json:"label"`
	Type     core.PropertyType `json:"type"`
	Control  Control           `json:"control"`
	Value    any               `json:"value"`
	Display  string            `json:"display"`
	ReadOnly bool              `json:"readOnly,omitempty"`
}

// Fields lists the panel rows in schema order.
func Fields(schema core.PropertySchema) []Field {
	keys := schema.Keys()
	out := make([]Field, 0, len(keys))
	for _, key := range keys {
		rec, _ := schema.Get(key)
		out = append(out, Field{
			Key:      key,
			Label:    rec.Label,
			Type:     rec.Type,
			Control:  controlFor(rec),
			Value:    rec.Value,
			Display:  display(rec),
			ReadOnly: !rec.Editable,
		})
	}
	return out
}

func controlFor(rec core.PropertyRecord) Control {
	switch rec.Type {
	case core.TypeText:
		if s, _ := rec.Value.(string); len(s) > 80 || strings.Contains(s, "\n") {
			return ControlTextarea
		}
		return ControlText
	case core.TypeNumber:
		return ControlNumber
	case core.TypeBoolean:
		return ControlToggle
	case core.TypeColor:
		return ControlColor
	case core.TypeImage:
		return ControlImage
	case core.TypeEmail:
		return ControlEmail
	case core.TypeURL:
		return ControlURL
	case core.TypeArray:
		return ControlList
	case core.TypeObject:
		return ControlJSON
	}
	return ControlText
}

func display(rec core.PropertyRecord) string {
	switch rec.Type {
	case core.TypeText, core.TypeColor, core.TypeImage, core.TypeEmail, core.TypeURL:
		return cast.ToString(rec.Value)
	case core.TypeNumber:
		return literal.FormatNumber(cast.ToFloat64(rec.Value))
	case core.TypeBoolean:
		return cast.ToString(cast.ToBool(rec.Value))
	case core.TypeArray, core.TypeObject:
		return literal.Format(rec.Value, "  ")
	}
	return cast.ToString(rec.Value)
}

// Apply coerces raw into the record's type and returns a schema copy with the
// record replaced. Strings are accepted for every type, so form posts work.
func Apply(schema core.PropertySchema, key string, raw any) (core.PropertySchema, error) {
	rec, ok := schema.Get(key)
	if !ok {
		return schema, fmt.Errorf("%s: %w", key, ErrUnknownProperty)
	}
	if !rec.Editable {
		return schema, fmt.Errorf("%s: %w", key, ErrNotEditable)
	}
	v, err := Coerce(rec.Type, raw)
	if err != nil {
		return schema, fmt.Errorf("%s: %w", key, err)
	}
	out := schema.Clone()
	rec.Value = v
	out.Set(key, rec)
	return out, nil
}

// Coerce converts raw into the Go shape of t.
func Coerce(t core.PropertyType, raw any) (any, error) {
	switch t {
	case core.TypeText, core.TypeColor, core.TypeImage, core.TypeEmail, core.TypeURL:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return s, nil
	case core.TypeNumber:
		if s, ok := raw.(string); ok {
			raw = strings.TrimSpace(s)
		}
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return f, nil
	case core.TypeBoolean:
		if s, ok := raw.(string); ok {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "on", "yes":
				return true, nil
			case "off", "no", "":
				return false, nil
			}
		}
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return b, nil
	case core.TypeArray:
		v, err := structured(raw)
		if err != nil {
			return nil, err
		}
		xs, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected a list", ErrInvalidValue)
		}
		return xs, nil
	case core.TypeObject:
		v, err := structured(raw)
		if err != nil {
			return nil, err
		}
		switch x := v.(type) {
		case *literal.Object:
			return x, nil
		case map[string]any:
			keys := lo.Keys(x)
			sort.Strings(keys)
			obj := literal.NewObject()
			for _, k := range keys {
				obj.Set(k, x[k])
			}
			return obj, nil
		}
		return nil, fmt.Errorf("%w: expected an object", ErrInvalidValue)
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidValue, t)
}

// structured accepts an already-decoded value or literal text.
func structured(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return raw, nil
	}
	v, _, err := literal.ParseTolerant(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return v, nil
}
