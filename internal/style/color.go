package style

import "strings"

var palette = map[string]bool{
	"slate": true, "gray": true, "zinc": true, "neutral": true, "stone": true,
	"red": true, "orange": true, "amber": true, "yellow": true, "lime": true,
	"green": true, "emerald": true, "teal": true, "cyan": true, "sky": true,
	"blue": true, "indigo": true, "violet": true, "purple": true, "fuchsia": true,
	"pink": true, "rose": true,
}

var shades = map[string]bool{
	"50": true, "100": true, "200": true, "300": true, "400": true, "500": true,
	"600": true, "700": true, "800": true, "900": true, "950": true,
}

const defaultShade = "500"

var reservedColors = map[string]string{
	"white":        "white",
	"black":        "black",
	"transparent":  "transparent",
	"current":      "current",
	"currentcolor": "current",
	"inherit":      "inherit",
}

func colorMapper(prefix string) Mapper {
	return func(raw string) string {
		v := normalize(raw)
		if rest, ok := strings.CutPrefix(v, prefix+"-"); ok {
			if name := colorName(rest); name != "" {
				return prefix + "-" + name
			}
			return ""
		}
		if name := colorName(v); name != "" {
			return prefix + "-" + name
		}
		return ""
	}
}

// colorName resolves "blue", "blue-600" or "blue 600" to a palette entry.
func colorName(v string) string {
	if r, ok := reservedColors[v]; ok {
		return r
	}
	name, shade := v, defaultShade
	if i := strings.IndexAny(v, "- "); i > 0 {
		name, shade = v[:i], strings.TrimSpace(v[i+1:])
	}
	if !palette[name] || !shades[shade] {
		return ""
	}
	return name + "-" + shade
}
