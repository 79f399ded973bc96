package props

import (
	"strings"

	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/literal"
)

const indent = "  "

// Author writes schema as a properties declaration. Records whose type,
// label and editability can all be re-derived from the value are written as
// plain values; the rest keep their record shape.
func Author(schema core.PropertySchema) string {
	return "const properties = " + literal.Format(authorObject(schema), indent) + ";\n"
}

// Replace swaps the definition block in source for schema, or prepends one
// when source has none. defaultProps bindings receive plain values so the
// component keeps reading them as defaults.
func Replace(source string, schema core.PropertySchema) string {
	b, ok := Locate(source)
	if !ok {
		if strings.TrimSpace(source) == "" {
			return Author(schema)
		}
		return Author(schema) + "\n" + source
	}

	var obj *literal.Object
	if b.IsDefaults() {
		obj = schema.Values()
	} else {
		obj = authorObject(schema)
	}

	text := source[b.Start:b.Open] + literal.Format(obj, indent)
	if strings.HasSuffix(source[b.Start:b.End], ";") {
		text += ";"
	}
	return source[:b.Start] + text + source[b.End:]
}

func authorObject(schema core.PropertySchema) *literal.Object {
	obj := literal.NewObject()
	for _, key := range schema.Keys() {
		rec, _ := schema.Get(key)
		if derivable(key, rec) {
			obj.Set(key, literal.CloneValue(rec.Value))
			continue
		}
		entry := literal.NewObject()
		entry.Set("type", string(rec.Type))
		entry.Set("value", literal.CloneValue(rec.Value))
		entry.Set("label", rec.Label)
		entry.Set("editable", rec.Editable)
		obj.Set(key, entry)
	}
	return obj
}

func derivable(key string, rec core.PropertyRecord) bool {
	if !rec.Editable || rec.Label != core.FormatLabel(key) {
		return false
	}
	if _, structured := core.IsStructured(rec.Value); structured {
		return false
	}
	return core.InferType(rec.Value) == rec.Type
}
