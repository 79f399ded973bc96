package style

import "strings"

var textAlign = map[string]string{
	"left": "left", "center": "center", "right": "right",
	"justify": "justify", "start": "start", "end": "end",
}

var fontSize = map[string]string{
	"xs": "xs", "sm": "sm", "base": "base", "lg": "lg", "xl": "xl",
	"2xl": "2xl", "3xl": "3xl", "4xl": "4xl", "5xl": "5xl", "6xl": "6xl",
	"7xl": "7xl", "8xl": "8xl", "9xl": "9xl",
	"tiny": "xs", "small": "sm", "normal": "base", "medium": "base",
	"large": "lg", "xlarge": "xl", "huge": "4xl",
}

var fontWeight = map[string]string{
	"thin": "thin", "extralight": "extralight", "light": "light",
	"normal": "normal", "medium": "medium", "semibold": "semibold",
	"bold": "bold", "extrabold": "extrabold", "black": "black",
	"100": "thin", "200": "extralight", "300": "light", "400": "normal",
	"500": "medium", "600": "semibold", "700": "bold", "800": "extrabold",
	"900": "black",
}

// borderRadius maps to rounded-*; "default" is the bare token.
var borderRadius = map[string]string{
	"none": "none", "sm": "sm", "default": "", "md": "md", "lg": "lg",
	"xl": "xl", "2xl": "2xl", "3xl": "3xl", "full": "full",
	"small": "sm", "medium": "md", "large": "lg", "xlarge": "xl", "pill": "full",
}

var shadow = map[string]string{
	"none": "none", "sm": "sm", "default": "", "md": "md", "lg": "lg",
	"xl": "xl", "2xl": "2xl", "inner": "inner",
	"small": "sm", "medium": "md", "large": "lg", "xlarge": "xl",
}

var maxWidth = map[string]string{
	"none": "none", "xs": "xs", "sm": "sm", "md": "md", "lg": "lg", "xl": "xl",
	"2xl": "2xl", "3xl": "3xl", "4xl": "4xl", "5xl": "5xl", "6xl": "6xl",
	"7xl": "7xl", "full": "full", "prose": "prose",
	"small": "sm", "medium": "md", "large": "lg", "xlarge": "xl",
}

// display tokens have no prefix.
var display = map[string]string{
	"block": "block", "inline": "inline", "inline-block": "inline-block",
	"flex": "flex", "inline-flex": "inline-flex", "grid": "grid",
	"inline-grid": "inline-grid", "hidden": "hidden", "none": "hidden",
	"contents": "contents",
}

var flexDirection = map[string]string{
	"row": "row", "row-reverse": "row-reverse", "col": "col", "column": "col",
	"col-reverse": "col-reverse", "column-reverse": "col-reverse",
}

var justifyContent = map[string]string{
	"start": "start", "flex-start": "start", "end": "end", "flex-end": "end",
	"center": "center", "between": "between", "space-between": "between",
	"around": "around", "space-around": "around", "evenly": "evenly",
	"space-evenly": "evenly",
}

var alignItems = map[string]string{
	"start": "start", "flex-start": "start", "end": "end", "flex-end": "end",
	"center": "center", "baseline": "baseline", "stretch": "stretch",
}

var borderWidth = map[string]string{
	"default": "", "1": "", "1px": "", "thin": "",
	"0": "0", "none": "0", "2": "2", "2px": "2", "medium": "2",
	"4": "4", "4px": "4", "thick": "4", "8": "8", "8px": "8",
}

var sizeWords = map[string]string{
	"full": "full", "screen": "screen", "auto": "auto", "fit": "fit",
	"min": "min", "max": "max", "half": "1/2", "1/2": "1/2", "1/3": "1/3",
	"2/3": "2/3", "1/4": "1/4", "3/4": "3/4", "100%": "full", "50%": "1/2",
}

// vocabMapper maps through a fixed table. An empty table entry means the
// bare prefix token, e.g. rounded or shadow.
func vocabMapper(prefix string, table map[string]string) Mapper {
	return func(raw string) string {
		v := normalize(raw)
		if prefix != "" {
			if v == prefix {
				return prefix
			}
			if rest, ok := strings.CutPrefix(v, prefix+"-"); ok {
				if _, known := lookupValue(table, rest); known {
					return v
				}
			}
		}
		word, ok := table[v]
		if !ok {
			return ""
		}
		return join(prefix, word)
	}
}

// lookupValue reports whether token is one of the table's resolved values.
func lookupValue(table map[string]string, token string) (string, bool) {
	for _, v := range table {
		if v == token {
			return v, true
		}
	}
	return "", false
}

func sizeMapper(prefix string) Mapper {
	return func(raw string) string {
		v := normalize(raw)
		if rest, ok := strings.CutPrefix(v, prefix+"-"); ok {
			v = rest
		}
		if word, ok := sizeWords[v]; ok {
			return prefix + "-" + word
		}
		if p, ok := spacingBuckets[v]; ok {
			return prefix + "-" + p
		}
		if spacingScale[v] {
			return prefix + "-" + v
		}
		if point := fromLength(v); point != "" {
			return prefix + "-" + point
		}
		return ""
	}
}

func join(prefix, word string) string {
	switch {
	case prefix == "":
		return word
	case word == "":
		return prefix
	default:
		return prefix + "-" + word
	}
}
