// Package style maps a component's structured style description onto atomic
// utility class tokens. Every mapper is total: values it does not recognise
// resolve to "" and the entry is handed back as a residual inline style.
package style

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/3-lines-studio/studio/internal/core"
)

// Mapper resolves one raw value to a class token, or "" when the value is not
// part of the category's vocabulary.
type Mapper func(raw string) string

type Resolution struct {
	ClassTokens string            `json:"classTokens"`
	Residual    map[string]string `json:"residualStyles"`
}

// Tokens returns ClassTokens split into individual tokens.
func (r Resolution) Tokens() []string {
	return strings.Fields(r.ClassTokens)
}

var mappers = map[string]Mapper{
	"backgroundColor": colorMapper("bg"),
	"textColor":       colorMapper("text"),
	"color":           colorMapper("text"),
	"borderColor":     colorMapper("border"),

	"padding":       spacingMapper("p"),
	"paddingX":      spacingMapper("px"),
	"paddingY":      spacingMapper("py"),
	"paddingTop":    spacingMapper("pt"),
	"paddingRight":  spacingMapper("pr"),
	"paddingBottom": spacingMapper("pb"),
	"paddingLeft":   spacingMapper("pl"),
	"margin":        spacingMapper("m"),
	"marginX":       spacingMapper("mx"),
	"marginY":       spacingMapper("my"),
	"marginTop":     spacingMapper("mt"),
	"marginRight":   spacingMapper("mr"),
	"marginBottom":  spacingMapper("mb"),
	"marginLeft":    spacingMapper("ml"),
	"gap":           spacingMapper("gap"),

	"textAlign":      vocabMapper("text", textAlign),
	"fontSize":       vocabMapper("text", fontSize),
	"fontWeight":     vocabMapper("font", fontWeight),
	"borderRadius":   vocabMapper("rounded", borderRadius),
	"shadow":         vocabMapper("shadow", shadow),
	"boxShadow":      vocabMapper("shadow", shadow),
	"width":          sizeMapper("w"),
	"height":         sizeMapper("h"),
	"maxWidth":       vocabMapper("max-w", maxWidth),
	"display":        vocabMapper("", display),
	"flexDirection":  vocabMapper("flex", flexDirection),
	"justifyContent": vocabMapper("justify", justifyContent),
	"alignItems":     vocabMapper("items", alignItems),
	"borderWidth":    vocabMapper("border", borderWidth),
}

// Categories lists the style keys that have a mapper, sorted.
func Categories() []string {
	keys := lo.Keys(mappers)
	sort.Strings(keys)
	return keys
}

// MapperFor returns the mapper for a category.
func MapperFor(category string) (Mapper, bool) {
	m, ok := mappers[category]
	return m, ok
}

// Resolve maps every entry of styles. Tokens are emitted in sorted category
// order; entries with no mapper or an unrecognised value land in Residual
// unchanged.
func Resolve(styles core.StyleMap) Resolution {
	res := Resolution{Residual: map[string]string{}}
	keys := lo.Keys(styles)
	sort.Strings(keys)

	tokens := make([]string, 0, len(keys))
	for _, key := range keys {
		raw := styles[key]
		if strings.TrimSpace(raw) == "" {
			continue
		}
		m, ok := mappers[key]
		if !ok {
			res.Residual[key] = raw
			continue
		}
		token := m(raw)
		if token == "" {
			res.Residual[key] = raw
			continue
		}
		tokens = append(tokens, strings.Fields(token)...)
	}

	res.ClassTokens = strings.Join(lo.Uniq(lo.Compact(tokens)), " ")
	return res
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
