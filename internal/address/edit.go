package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/3-lines-studio/studio/internal/core"
)

var (
	ErrNoMatchingProperty = errors.New("no property holds the element content")
	ErrWrongComponent     = errors.New("element belongs to another component")
)

// Edit is a direct change made through an element handle. A nil Content
// leaves text alone. Style entries with an empty value are removed.
type Edit struct {
	Content *string
	Style   map[string]string
}

// ApplyEdit translates an element edit into a copy of def with the matching
// property record and style entries replaced. Content edits target the first
// text-like property whose value equals the handle content.
func ApplyEdit(def core.ComponentDefinition, handle core.ElementHandle, edit Edit) (core.ComponentDefinition, error) {
	if handle.ComponentID != "" && handle.ComponentID != def.ID {
		return def, fmt.Errorf("edit %s: %w", handle.ElementID, ErrWrongComponent)
	}
	out := def.Clone()

	if edit.Content != nil {
		key, ok := matchProperty(out.Properties, handle.Content)
		if !ok {
			return def, fmt.Errorf("edit %s: %w", handle.ElementID, ErrNoMatchingProperty)
		}
		rec, _ := out.Properties.Get(key)
		rec.Value = *edit.Content
		out.Properties.Set(key, rec)
	}

	if len(edit.Style) > 0 {
		if out.Styles == nil {
			out.Styles = core.StyleMap{}
		}
		for k, v := range edit.Style {
			if strings.TrimSpace(v) == "" {
				delete(out.Styles, k)
				continue
			}
			out.Styles[k] = v
		}
	}
	return out, nil
}

func matchProperty(schema core.PropertySchema, content string) (string, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", false
	}
	for _, key := range schema.Keys() {
		rec, _ := schema.Get(key)
		if !rec.Type.TextLike() {
			continue
		}
		if s, ok := rec.Value.(string); ok && strings.TrimSpace(s) == content {
			return key, true
		}
	}
	return "", false
}
