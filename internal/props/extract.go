// Package props recovers a component's editable property schema from its
// source text and writes schemas back into source.
package props

import (
	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/literal"
)

// Result reports how a schema was recovered.
type Result struct {
	Schema core.PropertySchema
	// Tier is "binding", "markup" or "default".
	Tier string
	// Mode is the literal pass that read the binding, when Tier is binding.
	Mode literal.Mode
	// Err holds the parse failure that pushed extraction past the binding tier.
	Err error
}

// Extract returns the property schema for source. It never fails: when no
// definition block can be read it falls back to scanning the markup and then
// to a fixed default schema.
func Extract(source string) core.PropertySchema {
	return Analyze(source).Schema
}

// Schema returns the schema a definition edits and renders with: the stored
// properties, or the ones recovered from source when none are stored.
func Schema(def core.ComponentDefinition) core.PropertySchema {
	if def.Properties.Len() == 0 && def.HasSource() {
		return Extract(def.SourceText)
	}
	return def.Properties
}

// Analyze is Extract with the recovery details kept.
func Analyze(source string) Result {
	var parseErr error
	if b, ok := Locate(source); ok {
		v, mode, err := literal.ParseTolerant(b.Text)
		if err == nil {
			if obj, ok := v.(*literal.Object); ok {
				return Result{Schema: FromObject(obj), Tier: "binding", Mode: mode}
			}
		}
		parseErr = err
	}

	if s, ok := scanMarkup(source); ok {
		return Result{Schema: s, Tier: "markup", Err: parseErr}
	}
	return Result{Schema: core.DefaultSchema(), Tier: "default", Err: parseErr}
}

// FromObject converts a parsed definition block into records, repairing
// structured entries and promoting flat ones.
func FromObject(obj *literal.Object) core.PropertySchema {
	s := core.NewPropertySchema()
	for _, key := range obj.Keys() {
		v, _ := obj.Get(key)
		if rec, ok := core.IsStructured(v); ok {
			s.Set(key, core.RecordFromObject(key, rec))
			continue
		}
		s.Set(key, core.NewRecord(key, v))
	}
	return s
}
