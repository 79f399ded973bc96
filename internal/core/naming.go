package core

import (
	"strings"
	"unicode"
)

var typeAliases = map[string]string{
	"header":      "header",
	"navbar":      "header",
	"nav":         "header",
	"navigation":  "header",
	"hero":        "hero",
	"banner":      "hero",
	"text":        "text",
	"textblock":   "text",
	"paragraph":   "text",
	"content":     "text",
	"image":       "image",
	"imageblock":  "image",
	"picture":     "image",
	"button":      "button",
	"cta":         "button",
	"features":    "features",
	"featurelist": "features",
	"feature":     "features",
	"grid":        "features",
}

// CanonicalType maps a component type tag, in any of its accepted spellings,
// to the name of its fallback template. Unknown tags return "".
func CanonicalType(tag string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(tag) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return typeAliases[b.String()]
}
