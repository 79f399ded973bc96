// Package preprocess rewrites raw component source before it is parsed:
// navigation is routed through an injected shim, imports are dropped and the
// default export is unwrapped so the declaration can be looked up by name.
package preprocess

import (
	"regexp"
	"strings"

	"github.com/3-lines-studio/studio/internal/literal"
)

const (
	// ShimName is the function injected into every component.
	ShimName = "__studioNavigate"
	// HookName is the binding the shim delegates to when present.
	HookName = "__studioNavigationHook"
	// FallbackExport names the component when no default export is found.
	FallbackExport = "Component"
)

const shim = `function __studioNavigate(event, to) {
  if (event && event.preventDefault) event.preventDefault();
  if (typeof __studioNavigationHook === "function") __studioNavigationHook(to);
}
`

type Result struct {
	Text       string
	ExportName string
	Detected   bool
	Rewrites   []string
	// ShimLine is the 1-based line the shim starts on in Text, 0 when absent.
	ShimLine int
}

var shimLines = strings.Count(shim, "\n")

// SourceLine maps a line of Text back to the line of the original source.
func (r Result) SourceLine(line int) int {
	switch {
	case r.ShimLine == 0 || line < r.ShimLine:
		return line
	case line < r.ShimLine+shimLines:
		return r.ShimLine
	default:
		return line - shimLines
	}
}

// Process applies the rewrites in order. Each is a no-op when its pattern is
// absent, so processing already processed text changes nothing further.
func Process(source string) Result {
	res := Result{Text: source}
	res.Text = injectShim(res.Text, &res)
	res.Text = rewriteHrefs(res.Text, &res)
	res.Text = stripImports(res.Text, &res)
	res.Text = unwrapExports(res.Text, &res)
	if res.ExportName == "" {
		res.ExportName = FallbackExport
	}
	return res
}

// matchesInCode returns the matches of re that start outside strings and
// comments.
func matchesInCode(re *regexp.Regexp, src string) [][]int {
	mask := literal.CodeMask(src)
	var out [][]int
	for _, m := range re.FindAllStringSubmatchIndex(src, -1) {
		if m[0] < len(mask) && mask[m[0]] {
			out = append(out, m)
		}
	}
	return out
}

var declRe = regexp.MustCompile(`(?m)^[ \t]*(?:(?:export[ \t]+(?:default[ \t]+)?)?(?:async[ \t]+)?(?:function[ \t]+[A-Z]|(?:const|let|var|class)[ \t]+[A-Z])|export[ \t]+default\b)`)

func injectShim(src string, res *Result) string {
	if strings.Contains(src, "function "+ShimName+"(") {
		return src
	}
	matches := matchesInCode(declRe, src)
	if len(matches) == 0 {
		return src
	}
	at := matches[0][0]
	res.Rewrites = append(res.Rewrites, "inject navigation shim")
	res.ShimLine = strings.Count(src[:at], "\n") + 1
	return src[:at] + shim + src[at:]
}

var hrefRe = regexp.MustCompile(`(^|[^\w\-.])href\s*=\s*(\{|"|')`)

func rewriteHrefs(src string, res *Result) string {
	var b strings.Builder
	mask := literal.CodeMask(src)
	last := 0
	count := 0
	for _, m := range hrefRe.FindAllStringSubmatchIndex(src, -1) {
		attrStart := m[3]
		if attrStart < last || !mask[attrStart] {
			continue
		}
		open := m[4]
		var expr string
		var end int
		switch src[open] {
		case '{':
			close, ok := literal.MatchBrace(src, open)
			if !ok {
				continue
			}
			expr = strings.TrimSpace(src[open+1 : close])
			end = close + 1
		default:
			close := strings.IndexByte(src[open+1:], src[open])
			if close < 0 {
				continue
			}
			target := src[open+1 : open+1+close]
			if target == "" || strings.HasPrefix(target, "#") {
				continue
			}
			expr = literal.Quote(target)
			end = open + 1 + close + 1
		}
		if expr == "" {
			continue
		}
		b.WriteString(src[last:attrStart])
		b.WriteString(`href="#" data-href={` + expr + `} onClick={(event) => ` + ShimName + `(event, ` + expr + `)}`)
		last = end
		count++
	}
	if count == 0 {
		return src
	}
	b.WriteString(src[last:])
	res.Rewrites = append(res.Rewrites, "neutralize "+plural(count, "link"))
	return b.String()
}
