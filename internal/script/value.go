package script

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/3-lines-studio/studio/internal/literal"
	"github.com/3-lines-studio/studio/internal/vdom"
)

// Value is a runtime value: Undefined, nil (null), bool, float64, string,
// *Array, *literal.Object, *Function or *vdom.Node.
type Value = any

type undefined struct{}

// Undefined is the value of missing bindings and members.
var Undefined Value = undefined{}

type Array struct {
	Elems []Value
}

func NewArray(elems ...Value) *Array {
	if elems == nil {
		elems = []Value{}
	}
	return &Array{Elems: elems}
}

// NativeFunc implements a built-in. this is Undefined for plain calls.
type NativeFunc func(in *Interp, this Value, args []Value) (Value, error)

type Function struct {
	Name   string
	lit    *FuncLit
	env    *Env
	native NativeFunc
	// Props holds static members such as defaultProps or displayName.
	Props *literal.Object
	// errorType is set on the Error constructors.
	errorType string
}

func (f *Function) members() *literal.Object {
	if f.Props == nil {
		f.Props = literal.NewObject()
	}
	return f.Props
}

func native(name string, fn NativeFunc) *Function {
	return &Function{Name: name, native: fn}
}

func arg(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}

func isNullish(v Value) bool {
	return v == nil || v == Undefined
}

func typeOf(v Value) string {
	switch v.(type) {
	case undefined:
		return "undefined"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case *Function:
		return "function"
	default:
		return "object"
	}
}

func truthy(v Value) bool {
	switch x := v.(type) {
	case undefined, nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}

func toNumber(v Value) float64 {
	switch x := v.(type) {
	case undefined:
		return math.NaN()
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		return x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		lower := strings.ToLower(s)
		if strings.HasPrefix(lower, "0x") {
			if n, err := strconv.ParseInt(lower[2:], 16, 64); err == nil {
				return float64(n)
			}
			return math.NaN()
		}
		switch s {
		case "Infinity", "+Infinity":
			return math.Inf(1)
		case "-Infinity":
			return math.Inf(-1)
		}
		if strings.ContainsAny(lower, "abcdfghijklmnopqrstuvwxyz_") {
			return math.NaN()
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return n
	case *Array:
		switch len(x.Elems) {
		case 0:
			return 0
		case 1:
			return toNumber(toString(x.Elems[0]))
		}
	}
	return math.NaN()
}

func toInt(v Value) int {
	f := toNumber(v)
	if math.IsNaN(f) {
		return 0
	}
	if math.IsInf(f, 1) || f > math.MaxInt32 {
		return math.MaxInt32
	}
	if math.IsInf(f, -1) || f < math.MinInt32 {
		return math.MinInt32
	}
	return int(f)
}

// formatNumber prints a number the way script string conversion does.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// 1e+21 keeps the sign, 1e-07 loses the padding zero.
		if i := strings.Index(s, "e"); i >= 0 {
			exp := s[i+1:]
			sign := exp[0]
			digits := strings.TrimLeft(exp[1:], "0")
			s = s[:i+1] + string(sign) + digits
		}
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toString(v Value) string {
	switch x := v.(type) {
	case undefined:
		return "undefined"
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case string:
		return x
	case *Array:
		parts := make([]string, len(x.Elems))
		for i, e := range x.Elems {
			if !isNullish(e) {
				parts[i] = toString(e)
			}
		}
		return strings.Join(parts, ",")
	case *Function:
		return "function " + x.Name + "() { [native code] }"
	case *literal.Object:
		if x.Has("message") && x.Has("name") {
			name, _ := x.Get("name")
			msg, _ := x.Get("message")
			if toString(msg) == "" {
				return toString(name)
			}
			return toString(name) + ": " + toString(msg)
		}
		return "[object Object]"
	case *vdom.Node:
		return "[object Object]"
	}
	return ""
}

func strictEquals(a, b Value) bool {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case undefined:
		return b == Undefined
	case nil:
		return b == nil
	}
	return a == b
}

func looseEquals(a, b Value) bool {
	if isNullish(a) || isNullish(b) {
		return isNullish(a) && isNullish(b)
	}
	if typeOf(a) == typeOf(b) {
		return strictEquals(a, b)
	}
	_, aObj := a.(*literal.Object)
	_, bObj := b.(*literal.Object)
	_, aArr := a.(*Array)
	_, bArr := b.(*Array)
	if aObj || bObj || aArr || bArr {
		if aArr || aObj {
			a = toString(a)
		}
		if bArr || bObj {
			b = toString(b)
		}
		if typeOf(a) == typeOf(b) {
			return strictEquals(a, b)
		}
	}
	return toNumber(a) == toNumber(b)
}

// sameValueZero is the comparison used by includes and hook dependencies.
func sameValueZero(a, b Value) bool {
	x, xok := a.(float64)
	y, yok := b.(float64)
	if xok && yok && math.IsNaN(x) && math.IsNaN(y) {
		return true
	}
	return strictEquals(a, b)
}

// FromGo converts decoded data (maps, slices, numbers of any width) into
// runtime values.
func FromGo(v any) Value {
	switch x := v.(type) {
	case nil:
		return nil
	case bool, float64, string, *Function, *vdom.Node, undefined, *Array:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case []any:
		arr := NewArray()
		for _, e := range x {
			arr.Elems = append(arr.Elems, FromGo(e))
		}
		return arr
	case []string:
		arr := NewArray()
		for _, e := range x {
			arr.Elems = append(arr.Elems, e)
		}
		return arr
	case *literal.Object:
		out := literal.NewObject()
		for _, k := range x.Keys() {
			e, _ := x.Get(k)
			out.Set(k, FromGo(e))
		}
		return out
	case map[string]any:
		out := literal.NewObject()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out.Set(k, FromGo(x[k]))
		}
		return out
	}
	return Undefined
}

// ToGo converts a runtime value back to plain data. Functions and nodes
// become nil.
func ToGo(v Value) any {
	switch x := v.(type) {
	case undefined:
		return nil
	case *Array:
		out := make([]any, len(x.Elems))
		for i, e := range x.Elems {
			out[i] = ToGo(e)
		}
		return out
	case *literal.Object:
		out := literal.NewObject()
		for _, k := range x.Keys() {
			e, _ := x.Get(k)
			if _, fn := e.(*Function); fn || e == Undefined {
				continue
			}
			out.Set(k, ToGo(e))
		}
		return out
	case *Function, *vdom.Node:
		return nil
	}
	return v
}

func objectKeys(v Value) []string {
	switch x := v.(type) {
	case *literal.Object:
		return x.Keys()
	case *Array:
		keys := make([]string, len(x.Elems))
		for i := range x.Elems {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	case string:
		keys := make([]string, len([]rune(x)))
		for i := range keys {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	case *Function:
		return x.members().Keys()
	}
	return nil
}

// arrayIndex parses a canonical non-negative integer key.
func arrayIndex(key Value) (int, bool) {
	switch k := key.(type) {
	case float64:
		if k >= 0 && k == math.Trunc(k) && k < math.MaxInt32 {
			return int(k), true
		}
	case string:
		n, err := strconv.Atoi(k)
		if err == nil && n >= 0 && strconv.Itoa(n) == k {
			return n, true
		}
	}
	return 0, false
}
