package style

import (
	"strconv"
	"strings"
)

var spacingScale = map[string]bool{
	"0": true, "px": true, "0.5": true, "1": true, "1.5": true, "2": true,
	"2.5": true, "3": true, "3.5": true, "4": true, "5": true, "6": true,
	"7": true, "8": true, "9": true, "10": true, "11": true, "12": true,
	"14": true, "16": true, "20": true, "24": true, "28": true, "32": true,
	"36": true, "40": true, "44": true, "48": true, "52": true, "56": true,
	"60": true, "64": true, "72": true, "80": true, "96": true,
}

var spacingBuckets = map[string]string{
	"none":   "0",
	"small":  "2",
	"medium": "4",
	"large":  "8",
	"xlarge": "12",
}

func spacingMapper(prefix string) Mapper {
	return func(raw string) string {
		v := normalize(raw)
		if rest, ok := strings.CutPrefix(v, prefix+"-"); ok {
			v = rest
		}
		if point := spacingPoint(v); point != "" {
			return prefix + "-" + point
		}
		return ""
	}
}

func spacingPoint(v string) string {
	if p, ok := spacingBuckets[v]; ok {
		return p
	}
	if v == "auto" {
		return "auto"
	}
	if spacingScale[v] {
		return v
	}
	return fromLength(v)
}

// fromLength converts pixel and rem lengths that land on the scale.
func fromLength(v string) string {
	var px float64
	switch {
	case strings.HasSuffix(v, "rem"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(v, "rem"), 64)
		if err != nil {
			return ""
		}
		px = n * 16
	case strings.HasSuffix(v, "px"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
		if err != nil {
			return ""
		}
		px = n
	default:
		return ""
	}
	if px == 1 {
		return "px"
	}
	point := strconv.FormatFloat(px/4, 'f', -1, 64)
	if spacingScale[point] {
		return point
	}
	return ""
}
