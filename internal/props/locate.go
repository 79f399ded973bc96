package props

import (
	"regexp"
	"strings"

	"github.com/3-lines-studio/studio/internal/literal"
)

var bindingRe = regexp.MustCompile(`(?:\b(?:const|let|var)\s+(properties|propertyDefinitions|propertySchema|defaultProps)\b(?:\s*:\s*[^=\n]+)?|\b([A-Z][A-Za-z0-9_$]*)\.(defaultProps))\s*=\s*\{`)

// Binding is a property definition block found in component source.
type Binding struct {
	// Name is the bound identifier, e.g. properties or Hero.defaultProps.
	Name string
	// Text is the object literal including its braces.
	Text string
	// Start and End delimit the whole statement, trailing semicolon included.
	Start int
	End   int
	// Open is the offset of the object's opening brace.
	Open int
}

// IsDefaults reports whether the binding holds plain default values rather
// than property records.
func (b Binding) IsDefaults() bool {
	return strings.HasSuffix(b.Name, "defaultProps")
}

// Locate finds the first property definition binding outside strings and
// comments and extracts its brace-balanced object.
func Locate(source string) (Binding, bool) {
	mask := literal.CodeMask(source)
	for _, m := range bindingRe.FindAllStringSubmatchIndex(source, -1) {
		start := m[0]
		if !mask[start] {
			continue
		}
		open := m[1] - 1
		close, ok := literal.MatchBrace(source, open)
		if !ok {
			continue
		}

		name := ""
		switch {
		case m[2] >= 0:
			name = source[m[2]:m[3]]
		case m[4] >= 0:
			name = source[m[4]:m[5]] + ".defaultProps"
		}

		end := close + 1
		rest := strings.TrimLeft(source[end:], " \t")
		if strings.HasPrefix(rest, ";") {
			end = len(source) - len(rest) + 1
		}

		return Binding{
			Name:  name,
			Text:  source[open : close+1],
			Start: start,
			End:   end,
			Open:  open,
		}, true
	}
	return Binding{}, false
}
