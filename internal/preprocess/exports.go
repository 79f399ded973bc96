package preprocess

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	exportDefaultDeclRe = regexp.MustCompile(`(?m)^([ \t]*)export[ \t]+default[ \t]+((?:async[ \t]+)?(?:function\b[ \t]*\*?[ \t]*|class\b[ \t]*))([A-Za-z_$][\w$]*)?`)
	exportDefaultNameRe = regexp.MustCompile(`(?m)^([ \t]*)export[ \t]+default[ \t]+([A-Za-z_$][\w$]*)[ \t]*;?[ \t]*$`)
	exportDefaultExprRe = regexp.MustCompile(`(?m)^([ \t]*)export[ \t]+default[ \t]+`)
	exportListRe        = regexp.MustCompile(`(?m)^[ \t]*export[ \t]*\{([^}]*)\}[ \t]*(?:from[ \t]*["'][^"'\n]*["'])?[ \t]*;?`)
	exportDeclRe        = regexp.MustCompile(`(?m)^([ \t]*)export[ \t]+((?:async[ \t]+)?(?:function|class|const|let|var)\b)`)
	defaultAliasRe      = regexp.MustCompile(`^([A-Za-z_$][\w$]*)\s+as\s+default$`)
)

// unwrapExports records the default-exported name and strips export keywords
// while keeping the declarations they introduce.
func unwrapExports(src string, res *Result) string {
	// export default function Name / class Name / anonymous function
	if m := firstInCode(exportDefaultDeclRe, src); m != nil {
		indent := src[m[2]:m[3]]
		kw := src[m[4]:m[5]]
		name := ""
		if m[6] >= 0 {
			name = src[m[6]:m[7]]
		}
		if name == "" {
			name = FallbackExport
			src = src[:m[0]] + indent + "const " + name + " = " + kw + src[m[1]:]
		} else {
			src = src[:m[0]] + indent + kw + name + src[m[1]:]
		}
		setExport(res, name)
	} else if m := firstInCode(exportDefaultNameRe, src); m != nil {
		name := src[m[4]:m[5]]
		src = src[:m[0]] + src[m[2]:m[3]] + "// studio: default export " + name + src[m[1]:]
		setExport(res, name)
	} else if m := firstInCode(exportDefaultExprRe, src); m != nil {
		src = src[:m[0]] + src[m[2]:m[3]] + "const " + FallbackExport + " = " + src[m[1]:]
		setExport(res, FallbackExport)
	}

	// export { A as default, B }
	for {
		m := firstInCode(exportListRe, src)
		if m == nil {
			break
		}
		for _, part := range strings.Split(src[m[2]:m[3]], ",") {
			if am := defaultAliasRe.FindStringSubmatch(strings.TrimSpace(part)); am != nil && !res.Detected {
				setExport(res, am[1])
			}
		}
		src = src[:m[0]] + src[m[1]:]
		res.Rewrites = append(res.Rewrites, "remove export list")
	}

	// export const / function / class
	stripped := 0
	for {
		m := firstInCode(exportDeclRe, src)
		if m == nil {
			break
		}
		src = src[:m[0]] + src[m[2]:m[3]] + src[m[4]:]
		stripped++
	}
	if stripped > 0 {
		res.Rewrites = append(res.Rewrites, "strip "+plural(stripped, "export"))
	}
	return src
}

func setExport(res *Result, name string) {
	res.ExportName = name
	res.Detected = true
	res.Rewrites = append(res.Rewrites, "default export "+name)
}

func firstInCode(re *regexp.Regexp, src string) []int {
	if ms := matchesInCode(re, src); len(ms) > 0 {
		return ms[0]
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
