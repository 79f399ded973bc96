package style

import (
	"sort"
	"strings"
	"unicode"
)

// InlineCSS renders residual entries as a style attribute value with
// kebab-case property names in sorted order.
func InlineCSS(residual map[string]string) string {
	if len(residual) == 0 {
		return ""
	}
	keys := make([]string, 0, len(residual))
	for k := range residual {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.TrimSpace(residual[k])
		if v == "" {
			continue
		}
		v = strings.TrimSuffix(v, ";")
		parts = append(parts, kebab(k)+": "+v)
	}
	return strings.Join(parts, "; ")
}

func kebab(s string) string {
	if strings.HasPrefix(s, "--") {
		return s
	}
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
