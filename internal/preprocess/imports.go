package preprocess

import (
	"regexp"
	"strings"
)

var importRe = regexp.MustCompile(`(?m)^[ \t]*import\b(?:[\w*\s{},$]*?\bfrom\s*)?\s*(["'])([^"'\n]+)["'][ \t]*;?`)

var styleExts = []string{".css", ".scss", ".sass", ".less", ".styl"}

// IsStyleImport reports whether an import specifier pulls in styling that
// must survive preprocessing.
func IsStyleImport(spec string) bool {
	s := strings.ToLower(spec)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	for _, ext := range styleExts {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}
	return s == "styled-components" ||
		strings.HasPrefix(s, "styled-components/") ||
		strings.HasPrefix(s, "@emotion/") ||
		strings.Contains(s, "tailwind")
}

func stripImports(src string, res *Result) string {
	matches := matchesInCode(importRe, src)
	if len(matches) == 0 {
		return src
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		stmt := src[m[0]:m[1]]
		spec := src[m[4]:m[5]]
		if IsStyleImport(spec) {
			continue
		}
		b.WriteString(src[last:m[0]])
		echo := strings.Join(strings.Fields(stmt), " ")
		b.WriteString("// studio: removed import: " + echo)
		// keep line numbers stable for error positions
		b.WriteString(strings.Repeat("\n", strings.Count(stmt, "\n")))
		last = m[1]
		res.Rewrites = append(res.Rewrites, "remove import "+spec)
	}
	b.WriteString(src[last:])
	return b.String()
}
