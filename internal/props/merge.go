package props

import (
	"sort"

	"github.com/samber/lo"

	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/literal"
)

// Merge builds the property object a component is called with: schema values
// in schema order, then overrides applied on top. Override keys the schema
// does not know are appended in sorted order.
func Merge(schema core.PropertySchema, overrides map[string]any) *literal.Object {
	obj := schema.Values()
	if len(overrides) == 0 {
		return obj
	}
	for _, key := range schema.Keys() {
		if v, ok := overrides[key]; ok {
			obj.Set(key, literal.CloneValue(v))
		}
	}
	extra := lo.Filter(lo.Keys(overrides), func(key string, _ int) bool {
		return !obj.Has(key)
	})
	sort.Strings(extra)
	for _, key := range extra {
		obj.Set(key, literal.CloneValue(overrides[key]))
	}
	return obj
}
