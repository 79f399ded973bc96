package script

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

type arrayFunc func(in *Interp, a *Array, args []Value) (Value, error)

var arrayMethods map[string]arrayFunc

func init() {
	arrayMethods = map[string]arrayFunc{
		"map": func(in *Interp, a *Array, args []Value) (Value, error) {
			out := NewArray()
			err := in.eachElem(a, args, func(_ int, _ Value, r Value) bool {
				out.Elems = append(out.Elems, r)
				return true
			})
			return out, err
		},
		"filter": func(in *Interp, a *Array, args []Value) (Value, error) {
			out := NewArray()
			err := in.eachElem(a, args, func(_ int, v Value, r Value) bool {
				if truthy(r) {
					out.Elems = append(out.Elems, v)
				}
				return true
			})
			return out, err
		},
		"forEach": func(in *Interp, a *Array, args []Value) (Value, error) {
			return Undefined, in.eachElem(a, args, func(int, Value, Value) bool { return true })
		},
		"find": func(in *Interp, a *Array, args []Value) (Value, error) {
			var found Value = Undefined
			err := in.eachElem(a, args, func(_ int, v Value, r Value) bool {
				if truthy(r) {
					found = v
					return false
				}
				return true
			})
			return found, err
		},
		"findIndex": func(in *Interp, a *Array, args []Value) (Value, error) {
			found := -1.0
			err := in.eachElem(a, args, func(i int, _ Value, r Value) bool {
				if truthy(r) {
					found = float64(i)
					return false
				}
				return true
			})
			return found, err
		},
		"some": func(in *Interp, a *Array, args []Value) (Value, error) {
			found := false
			err := in.eachElem(a, args, func(_ int, _ Value, r Value) bool {
				found = truthy(r)
				return !found
			})
			return found, err
		},
		"every": func(in *Interp, a *Array, args []Value) (Value, error) {
			all := true
			err := in.eachElem(a, args, func(_ int, _ Value, r Value) bool {
				all = truthy(r)
				return all
			})
			return all, err
		},
		"reduce": func(in *Interp, a *Array, args []Value) (Value, error) {
			fn, ok := arg(args, 0).(*Function)
			if !ok {
				return nil, fmt.Errorf("%s is not a function", describe(arg(args, 0)))
			}
			elems := append([]Value(nil), a.Elems...)
			start := 0
			var acc Value
			if len(args) > 1 {
				acc = args[1]
			} else {
				if len(elems) == 0 {
					return nil, fmt.Errorf("reduce of empty array with no initial value")
				}
				acc, start = elems[0], 1
			}
			for i := start; i < len(elems); i++ {
				v, err := in.call(in.at, fn, Undefined, []Value{acc, elems[i], float64(i), a})
				if err != nil {
					return nil, err
				}
				acc = v
			}
			return acc, nil
		},
		"includes": func(_ *Interp, a *Array, args []Value) (Value, error) {
			for _, e := range a.Elems {
				if sameValueZero(e, arg(args, 0)) {
					return true, nil
				}
			}
			return false, nil
		},
		"indexOf": func(_ *Interp, a *Array, args []Value) (Value, error) {
			for i, e := range a.Elems {
				if strictEquals(e, arg(args, 0)) {
					return float64(i), nil
				}
			}
			return -1.0, nil
		},
		"join": func(_ *Interp, a *Array, args []Value) (Value, error) {
			sep := ","
			if s := arg(args, 0); s != Undefined {
				sep = toString(s)
			}
			parts := make([]string, len(a.Elems))
			for i, e := range a.Elems {
				if !isNullish(e) {
					parts[i] = toString(e)
				}
			}
			return strings.Join(parts, sep), nil
		},
		"slice": func(_ *Interp, a *Array, args []Value) (Value, error) {
			start, end := sliceBounds(len(a.Elems), args)
			return NewArray(append([]Value(nil), a.Elems[start:end]...)...), nil
		},
		"concat": func(_ *Interp, a *Array, args []Value) (Value, error) {
			out := NewArray(append([]Value(nil), a.Elems...)...)
			for _, x := range args {
				if other, ok := x.(*Array); ok {
					out.Elems = append(out.Elems, other.Elems...)
					continue
				}
				out.Elems = append(out.Elems, x)
			}
			return out, nil
		},
		"push": func(_ *Interp, a *Array, args []Value) (Value, error) {
			if len(a.Elems)+len(args) >= maxArrayLen {
				return nil, fmt.Errorf("invalid array length")
			}
			a.Elems = append(a.Elems, args...)
			return float64(len(a.Elems)), nil
		},
		"pop": func(_ *Interp, a *Array, _ []Value) (Value, error) {
			if len(a.Elems) == 0 {
				return Undefined, nil
			}
			last := a.Elems[len(a.Elems)-1]
			a.Elems = a.Elems[:len(a.Elems)-1]
			return last, nil
		},
		"shift": func(_ *Interp, a *Array, _ []Value) (Value, error) {
			if len(a.Elems) == 0 {
				return Undefined, nil
			}
			first := a.Elems[0]
			a.Elems = append([]Value(nil), a.Elems[1:]...)
			return first, nil
		},
		"unshift": func(_ *Interp, a *Array, args []Value) (Value, error) {
			a.Elems = append(append([]Value(nil), args...), a.Elems...)
			return float64(len(a.Elems)), nil
		},
		"reverse": func(_ *Interp, a *Array, _ []Value) (Value, error) {
			for i, j := 0, len(a.Elems)-1; i < j; i, j = i+1, j-1 {
				a.Elems[i], a.Elems[j] = a.Elems[j], a.Elems[i]
			}
			return a, nil
		},
		"flat": func(_ *Interp, a *Array, args []Value) (Value, error) {
			depth := 1
			if d := arg(args, 0); d != Undefined {
				depth = toInt(d)
			}
			return NewArray(flatten(a.Elems, depth)...), nil
		},
		"flatMap": func(in *Interp, a *Array, args []Value) (Value, error) {
			var mapped []Value
			err := in.eachElem(a, args, func(_ int, _ Value, r Value) bool {
				mapped = append(mapped, r)
				return true
			})
			return NewArray(flatten(mapped, 1)...), err
		},
		"sort": func(in *Interp, a *Array, args []Value) (Value, error) {
			cmp, hasCmp := arg(args, 0).(*Function)
			var sortErr error
			sort.SliceStable(a.Elems, func(i, j int) bool {
				x, y := a.Elems[i], a.Elems[j]
				if x == Undefined || y == Undefined {
					return y == Undefined && x != Undefined
				}
				if !hasCmp {
					return toString(x) < toString(y)
				}
				if sortErr != nil {
					return false
				}
				r, err := in.call(in.at, cmp, Undefined, []Value{x, y})
				if err != nil {
					sortErr = err
					return false
				}
				return toNumber(r) < 0
			})
			return a, sortErr
		},
		"fill": func(_ *Interp, a *Array, args []Value) (Value, error) {
			start, end := sliceBounds(len(a.Elems), args[min(1, len(args)):])
			for i := start; i < end; i++ {
				a.Elems[i] = arg(args, 0)
			}
			return a, nil
		},
		"at": func(_ *Interp, a *Array, args []Value) (Value, error) {
			i := toInt(arg(args, 0))
			if i < 0 {
				i += len(a.Elems)
			}
			if i < 0 || i >= len(a.Elems) {
				return Undefined, nil
			}
			return a.Elems[i], nil
		},
		"keys": func(_ *Interp, a *Array, _ []Value) (Value, error) {
			out := NewArray()
			for i := range a.Elems {
				out.Elems = append(out.Elems, float64(i))
			}
			return out, nil
		},
		"toString": func(_ *Interp, a *Array, _ []Value) (Value, error) {
			return toString(a), nil
		},
	}
}

func arrayMethod(a *Array, name string) *Function {
	m, ok := arrayMethods[name]
	if !ok {
		return nil
	}
	return native(name, func(in *Interp, _ Value, args []Value) (Value, error) {
		return m(in, a, args)
	})
}

// eachElem calls the callback in args[0] for each element and hands the
// result to visit until visit returns false.
func (in *Interp) eachElem(a *Array, args []Value, visit func(i int, v Value, r Value) bool) error {
	fn, ok := arg(args, 0).(*Function)
	if !ok {
		return fmt.Errorf("%s is not a function", describe(arg(args, 0)))
	}
	elems := append([]Value(nil), a.Elems...)
	for i, v := range elems {
		r, err := in.call(in.at, fn, arg(args, 1), []Value{v, float64(i), a})
		if err != nil {
			return err
		}
		if !visit(i, v, r) {
			return nil
		}
	}
	return nil
}

func flatten(elems []Value, depth int) []Value {
	out := make([]Value, 0, len(elems))
	for _, e := range elems {
		if inner, ok := e.(*Array); ok && depth > 0 {
			out = append(out, flatten(inner.Elems, depth-1)...)
			continue
		}
		out = append(out, e)
	}
	return out
}

// sliceBounds resolves slice(start, end) arguments against length n.
func sliceBounds(n int, args []Value) (int, int) {
	rel := func(v Value, def int) int {
		if v == Undefined {
			return def
		}
		i := toInt(v)
		if i < 0 {
			i += n
		}
		return max(0, min(i, n))
	}
	start := rel(arg(args, 0), 0)
	end := rel(arg(args, 1), n)
	if end < start {
		end = start
	}
	return start, end
}

type stringFunc func(in *Interp, s string, args []Value) (Value, error)

var stringMethods map[string]stringFunc

func init() {
	stringMethods = map[string]stringFunc{
		"toUpperCase": func(_ *Interp, s string, _ []Value) (Value, error) { return strings.ToUpper(s), nil },
		"toLowerCase": func(_ *Interp, s string, _ []Value) (Value, error) { return strings.ToLower(s), nil },
		"trim":        func(_ *Interp, s string, _ []Value) (Value, error) { return strings.TrimSpace(s), nil },
		"trimStart": func(_ *Interp, s string, _ []Value) (Value, error) {
			return strings.TrimLeftFunc(s, isSpace), nil
		},
		"trimEnd": func(_ *Interp, s string, _ []Value) (Value, error) {
			return strings.TrimRightFunc(s, isSpace), nil
		},
		"split": func(_ *Interp, s string, args []Value) (Value, error) {
			sep := arg(args, 0)
			out := NewArray()
			if sep == Undefined {
				out.Elems = append(out.Elems, s)
				return out, nil
			}
			for _, part := range strings.Split(s, toString(sep)) {
				out.Elems = append(out.Elems, part)
			}
			if limit := arg(args, 1); limit != Undefined {
				n := max(0, min(toInt(limit), len(out.Elems)))
				out.Elems = out.Elems[:n]
			}
			return out, nil
		},
		"includes": func(_ *Interp, s string, args []Value) (Value, error) {
			return strings.Contains(s, toString(arg(args, 0))), nil
		},
		"startsWith": func(_ *Interp, s string, args []Value) (Value, error) {
			return strings.HasPrefix(s, toString(arg(args, 0))), nil
		},
		"endsWith": func(_ *Interp, s string, args []Value) (Value, error) {
			return strings.HasSuffix(s, toString(arg(args, 0))), nil
		},
		"slice": func(_ *Interp, s string, args []Value) (Value, error) {
			runes := []rune(s)
			start, end := sliceBounds(len(runes), args)
			return string(runes[start:end]), nil
		},
		"substring": func(_ *Interp, s string, args []Value) (Value, error) {
			runes := []rune(s)
			clamp := func(v Value, def int) int {
				if v == Undefined {
					return def
				}
				return max(0, min(toInt(v), len(runes)))
			}
			start, end := clamp(arg(args, 0), 0), clamp(arg(args, 1), len(runes))
			if start > end {
				start, end = end, start
			}
			return string(runes[start:end]), nil
		},
		"replace": func(in *Interp, s string, args []Value) (Value, error) {
			return in.replaceString(s, args, 1)
		},
		"replaceAll": func(in *Interp, s string, args []Value) (Value, error) {
			return in.replaceString(s, args, -1)
		},
		"indexOf": func(_ *Interp, s string, args []Value) (Value, error) {
			i := strings.Index(s, toString(arg(args, 0)))
			if i < 0 {
				return -1.0, nil
			}
			return float64(utf8.RuneCountInString(s[:i])), nil
		},
		"lastIndexOf": func(_ *Interp, s string, args []Value) (Value, error) {
			i := strings.LastIndex(s, toString(arg(args, 0)))
			if i < 0 {
				return -1.0, nil
			}
			return float64(utf8.RuneCountInString(s[:i])), nil
		},
		"charAt": func(_ *Interp, s string, args []Value) (Value, error) {
			runes := []rune(s)
			i := toInt(arg(args, 0))
			if i < 0 || i >= len(runes) {
				return "", nil
			}
			return string(runes[i]), nil
		},
		"charCodeAt": func(_ *Interp, s string, args []Value) (Value, error) {
			runes := []rune(s)
			i := toInt(arg(args, 0))
			if i < 0 || i >= len(runes) {
				return math.NaN(), nil
			}
			return float64(runes[i]), nil
		},
		"padStart": func(_ *Interp, s string, args []Value) (Value, error) {
			return pad(s, args, true), nil
		},
		"padEnd": func(_ *Interp, s string, args []Value) (Value, error) {
			return pad(s, args, false), nil
		},
		"repeat": func(_ *Interp, s string, args []Value) (Value, error) {
			n := toInt(arg(args, 0))
			if n < 0 || len(s)*n > maxStringLen {
				return nil, fmt.Errorf("invalid count value: %d", n)
			}
			return strings.Repeat(s, n), nil
		},
		"concat": func(_ *Interp, s string, args []Value) (Value, error) {
			var b strings.Builder
			b.WriteString(s)
			for _, a := range args {
				b.WriteString(toString(a))
			}
			return b.String(), nil
		},
		"toString": func(_ *Interp, s string, _ []Value) (Value, error) { return s, nil },
	}
}

func stringMethod(s string, name string) *Function {
	m, ok := stringMethods[name]
	if !ok {
		return nil
	}
	return native(name, func(in *Interp, _ Value, args []Value) (Value, error) {
		return m(in, s, args)
	})
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v' || r == 0xA0 || r == 0xFEFF
}

// replaceString handles string patterns only; n is 1 for replace and -1 for
// replaceAll. A function replacement receives the match.
func (in *Interp) replaceString(s string, args []Value, n int) (Value, error) {
	pattern := toString(arg(args, 0))
	repl := arg(args, 1)
	fn, isFn := repl.(*Function)
	if !isFn {
		r := strings.ReplaceAll(toString(repl), "$&", pattern)
		return strings.Replace(s, pattern, r, n), nil
	}
	var b strings.Builder
	rest := s
	for n != 0 {
		i := strings.Index(rest, pattern)
		if i < 0 {
			break
		}
		v, err := in.call(in.at, fn, Undefined, []Value{pattern})
		if err != nil {
			return nil, err
		}
		b.WriteString(rest[:i])
		b.WriteString(toString(v))
		rest = rest[i+len(pattern):]
		if pattern == "" {
			if rest == "" {
				break
			}
			_, size := utf8.DecodeRuneInString(rest)
			b.WriteString(rest[:size])
			rest = rest[size:]
		}
		n--
	}
	b.WriteString(rest)
	return b.String(), nil
}

func pad(s string, args []Value, start bool) string {
	target := toInt(arg(args, 0))
	filler := " "
	if f := arg(args, 1); f != Undefined {
		filler = toString(f)
	}
	length := utf8.RuneCountInString(s)
	if target <= length || filler == "" || target > maxStringLen {
		return s
	}
	need := target - length
	fill := []rune(strings.Repeat(filler, need/utf8.RuneCountInString(filler)+1))[:need]
	if start {
		return string(fill) + s
	}
	return s + string(fill)
}

func numberMethod(f float64, name string) *Function {
	switch name {
	case "toFixed":
		return native(name, func(_ *Interp, _ Value, args []Value) (Value, error) {
			digits := toInt(arg(args, 0))
			if digits < 0 || digits > 100 {
				return nil, fmt.Errorf("toFixed() digits argument must be between 0 and 100")
			}
			if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1e21 {
				return formatNumber(f), nil
			}
			return strconv.FormatFloat(f, 'f', digits, 64), nil
		})
	case "toString":
		return native(name, func(_ *Interp, _ Value, args []Value) (Value, error) {
			radix := arg(args, 0)
			if radix == Undefined || toInt(radix) == 10 {
				return formatNumber(f), nil
			}
			r := toInt(radix)
			if r < 2 || r > 36 {
				return nil, fmt.Errorf("toString() radix must be between 2 and 36")
			}
			if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
				return formatNumber(f), nil
			}
			return strconv.FormatInt(int64(f), r), nil
		})
	case "toLocaleString":
		return native(name, func(*Interp, Value, []Value) (Value, error) {
			return groupThousands(f), nil
		})
	}
	return nil
}

// groupThousands formats with comma separators, as the en-US locale does.
func groupThousands(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return formatNumber(f)
	}
	s := strconv.FormatFloat(math.Abs(f), 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	if len(frac) > 3 {
		rounded := strconv.FormatFloat(math.Abs(f), 'f', 3, 64)
		intPart, frac, _ = strings.Cut(rounded, ".")
		frac = strings.TrimRight(frac, "0")
	}
	var b strings.Builder
	if f < 0 {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
