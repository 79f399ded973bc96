package literal

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Format writes v as an object literal an author would type: bare keys where
// possible, double-quoted strings, one member per line. The output reads back
// through Parse in Relaxed mode to an equal value.
func Format(v any, indent string) string {
	var b strings.Builder
	writeValue(&b, v, indent, 0)
	return b.String()
}

// FormatNumber renders integral floats without a fractional part.
func FormatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "null"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Quote returns s as a double-quoted string literal without HTML escaping.
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func writeValue(b *strings.Builder, v any, indent string, level int) {
	switch x := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case float64:
		b.WriteString(FormatNumber(x))
	case int:
		b.WriteString(strconv.Itoa(x))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case string:
		b.WriteString(Quote(x))
	case []any:
		writeArray(b, x, indent, level)
	case *Object:
		writeObject(b, x, indent, level)
	case map[string]any:
		obj := NewObject()
		for _, k := range sortedKeys(x) {
			obj.Set(k, x[k])
		}
		writeObject(b, obj, indent, level)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			b.WriteString("null")
			return
		}
		b.Write(data)
	}
}

func writeArray(b *strings.Builder, xs []any, indent string, level int) {
	if len(xs) == 0 {
		b.WriteString("[]")
		return
	}
	if isFlat(xs) {
		b.WriteByte('[')
		for i, x := range xs {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, x, indent, level)
		}
		b.WriteByte(']')
		return
	}
	b.WriteString("[\n")
	for _, x := range xs {
		b.WriteString(strings.Repeat(indent, level+1))
		writeValue(b, x, indent, level+1)
		b.WriteString(",\n")
	}
	b.WriteString(strings.Repeat(indent, level))
	b.WriteByte(']')
}

func writeObject(b *strings.Builder, o *Object, indent string, level int) {
	if o.Len() == 0 {
		b.WriteString("{}")
		return
	}
	if level > 0 && isFlatObject(o) {
		b.WriteString("{ ")
		for i, k := range o.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			writeKey(b, k)
			b.WriteString(": ")
			writeValue(b, o.vals[k], indent, level)
		}
		b.WriteString(" }")
		return
	}
	b.WriteString("{\n")
	for _, k := range o.keys {
		b.WriteString(strings.Repeat(indent, level+1))
		writeKey(b, k)
		b.WriteString(": ")
		writeValue(b, o.vals[k], indent, level+1)
		b.WriteString(",\n")
	}
	b.WriteString(strings.Repeat(indent, level))
	b.WriteByte('}')
}

func writeKey(b *strings.Builder, k string) {
	if IsIdentifier(k) {
		b.WriteString(k)
		return
	}
	b.WriteString(Quote(k))
}

func isFlat(xs []any) bool {
	for _, x := range xs {
		switch x.(type) {
		case []any, *Object, map[string]any:
			return false
		}
	}
	return true
}

func isFlatObject(o *Object) bool {
	if o.Len() > 6 {
		return false
	}
	for _, k := range o.keys {
		switch o.vals[k].(type) {
		case []any, *Object, map[string]any:
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
