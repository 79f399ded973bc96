package script

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/3-lines-studio/studio/internal/literal"
	"github.com/3-lines-studio/studio/internal/style"
	"github.com/3-lines-studio/studio/internal/vdom"
)

// NavigationHookName is bound to the navigator passed in Options.
const NavigationHookName = "__studioNavigationHook"

func (in *Interp) installGlobals(navigate func(string)) {
	g := in.global
	def := func(name string, v Value) { g.declare(name, v, true) }

	in.fragment = native("Fragment", func(_ *Interp, _ Value, args []Value) (Value, error) {
		if props, ok := arg(args, 0).(*literal.Object); ok {
			children, _ := props.Get("children")
			return children, nil
		}
		return Undefined, nil
	})
	h := native("createElement", func(in *Interp, _ Value, args []Value) (Value, error) {
		return in.createElement(args)
	})
	identity := func(name string) *Function {
		return native(name, func(_ *Interp, _ Value, args []Value) (Value, error) {
			return arg(args, 0), nil
		})
	}

	hooks := map[string]*Function{
		"useState":    native("useState", hookUseState),
		"useReducer":  native("useReducer", hookUseReducer),
		"useEffect":   native("useEffect", hookUseEffect),
		"useMemo":     native("useMemo", hookUseMemo),
		"useCallback": native("useCallback", hookUseCallback),
		"useRef":      native("useRef", hookUseRef),
	}
	react := literal.NewObject()
	react.Set("createElement", h)
	react.Set("Fragment", in.fragment)
	react.Set("memo", identity("memo"))
	react.Set("forwardRef", identity("forwardRef"))
	for _, name := range sortedNames(hooks) {
		react.Set(name, hooks[name])
		def(name, hooks[name])
	}

	def(ElementFactory, h)
	def("h", h)
	def("React", react)
	def("Fragment", in.fragment)
	def("memo", identity("memo"))
	def("forwardRef", identity("forwardRef"))
	def("Math", mathObject())
	def("JSON", jsonObject())
	def("Object", objectCtor())
	def("Array", arrayCtor())
	def("String", native("String", func(_ *Interp, _ Value, args []Value) (Value, error) {
		if len(args) == 0 {
			return "", nil
		}
		return toString(args[0]), nil
	}))
	def("Number", numberCtor())
	def("Boolean", native("Boolean", func(_ *Interp, _ Value, args []Value) (Value, error) {
		return truthy(arg(args, 0)), nil
	}))
	def("parseInt", native("parseInt", builtinParseInt))
	def("parseFloat", native("parseFloat", builtinParseFloat))
	def("isNaN", native("isNaN", func(_ *Interp, _ Value, args []Value) (Value, error) {
		return math.IsNaN(toNumber(arg(args, 0))), nil
	}))
	def("isFinite", native("isFinite", func(_ *Interp, _ Value, args []Value) (Value, error) {
		f := toNumber(arg(args, 0))
		return !math.IsNaN(f) && !math.IsInf(f, 0), nil
	}))
	for _, kind := range []string{"Error", "TypeError", "RangeError", "SyntaxError", "ReferenceError"} {
		def(kind, &Function{Name: kind, errorType: kind})
	}

	console := literal.NewObject()
	for _, level := range []string{"log", "info", "debug", "warn", "error"} {
		console.Set(level, native(level, func(in *Interp, _ Value, args []Value) (Value, error) {
			in.logConsole(level, args)
			return Undefined, nil
		}))
	}
	def("console", console)
	g.declare("this", Undefined, true)

	if navigate != nil {
		def(NavigationHookName, native(NavigationHookName, func(_ *Interp, _ Value, args []Value) (Value, error) {
			to := arg(args, 0)
			if !isNullish(to) {
				navigate(toString(to))
			}
			return Undefined, nil
		}))
	}
}

func sortedNames(m map[string]*Function) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// withDefaults fills props missing from the component's defaultProps.
func withDefaults(fn *Function, props *literal.Object) *literal.Object {
	if props == nil {
		props = literal.NewObject()
	}
	defaults, ok := fn.members().Get("defaultProps")
	if !ok {
		return props
	}
	d, ok := defaults.(*literal.Object)
	if !ok {
		return props
	}
	out := literal.NewObject()
	for _, k := range props.Keys() {
		v, _ := props.Get(k)
		out.Set(k, v)
	}
	for _, k := range d.Keys() {
		if v, ok := out.Get(k); !ok || v == Undefined {
			dv, _ := d.Get(k)
			out.Set(k, dv)
		}
	}
	return out
}

// createElement implements the element factory markup is desugared to.
func (in *Interp) createElement(args []Value) (Value, error) {
	at := in.at
	tag := arg(args, 0)
	props := literal.NewObject()
	if p, ok := arg(args, 1).(*literal.Object); ok {
		for _, k := range p.Keys() {
			v, _ := p.Get(k)
			props.Set(k, v)
		}
	}
	var children []Value
	if len(args) > 2 {
		children = args[2:]
	}

	switch t := tag.(type) {
	case *Function:
		if t == in.fragment {
			frag := vdom.Fragment()
			if err := in.appendChildren(at, frag, children); err != nil {
				return nil, err
			}
			return frag, nil
		}
		switch len(children) {
		case 0:
		case 1:
			props.Set("children", children[0])
		default:
			props.Set("children", NewArray(children...))
		}
		return in.renderChild(at, t, props)
	case string:
		return in.intrinsic(at, t, props, children)
	}
	return nil, in.throw(at, "TypeError", "element type is invalid: expected a string or a function but got %s", describe(tag))
}

// renderChild calls a nested component with its own hook slots.
func (in *Interp) renderChild(at Pos, fn *Function, props *literal.Object) (Value, error) {
	parent := in.hooks
	if parent != nil {
		in.hooks = parent.child(fn.Name)
		in.hooks.begin()
		defer func() { in.hooks = parent }()
	}
	v, err := in.call(at, fn, Undefined, []Value{withDefaults(fn, props)})
	if err != nil {
		return nil, err
	}
	return in.toNode(at, v)
}

var attrNames = map[string]string{
	"className":                "class",
	"htmlFor":                  "for",
	"tabIndex":                 "tabindex",
	"readOnly":                 "readonly",
	"maxLength":                "maxlength",
	"autoComplete":             "autocomplete",
	"autoFocus":                "autofocus",
	"crossOrigin":              "crossorigin",
	"srcSet":                   "srcset",
	"colSpan":                  "colspan",
	"rowSpan":                  "rowspan",
	"strokeWidth":              "stroke-width",
	"strokeLinecap":            "stroke-linecap",
	"strokeLinejoin":           "stroke-linejoin",
	"fillRule":                 "fill-rule",
	"clipRule":                 "clip-rule",
	"defaultValue":             "value",
	"defaultChecked":           "checked",
	"contentEditable":          "contenteditable",
	"spellCheck":               "spellcheck",
	"encType":                  "enctype",
	"noValidate":               "novalidate",
	"referrerPolicy":           "referrerpolicy",
	"allowFullScreen":          "allowfullscreen",
	"suppressHydrationWarning": "",
}

func (in *Interp) intrinsic(at Pos, tag string, props *literal.Object, children []Value) (Value, error) {
	n := vdom.Element(tag)
	for _, k := range props.Keys() {
		v, _ := props.Get(k)
		switch {
		case k == "children":
			if len(children) == 0 {
				children = []Value{v}
			}
		case k == "key" || k == "ref":
		case k == "dangerouslySetInnerHTML":
			obj, ok := v.(*literal.Object)
			if !ok {
				continue
			}
			markup, _ := obj.Get("__html")
			if isNullish(markup) {
				continue
			}
			parsed, err := vdom.ParseHTML(toString(markup))
			if err != nil {
				n.Append(vdom.Raw(toString(markup)))
				continue
			}
			n.Append(parsed)
		case k == "style":
			if css := styleAttr(v); css != "" {
				n.SetAttr("style", css)
			}
		case isEventProp(k):
			fn, ok := v.(*Function)
			if !ok {
				continue
			}
			n.On(strings.ToLower(k[2:]), in.handler(fn))
		default:
			name := k
			if mapped, ok := attrNames[k]; ok {
				if mapped == "" {
					continue
				}
				name = mapped
			}
			switch x := v.(type) {
			case undefined, nil, *Function:
			case bool:
				switch {
				case strings.HasPrefix(name, "data-") || strings.HasPrefix(name, "aria-"):
					n.SetAttr(name, strconv.FormatBool(x))
				case x:
					n.SetAttr(name, "")
				}
			default:
				n.SetAttr(name, toString(x))
			}
		}
	}
	if err := in.appendChildren(at, n, children); err != nil {
		return nil, err
	}
	return n, nil
}

func (in *Interp) appendChildren(at Pos, n *vdom.Node, children []Value) error {
	for _, c := range children {
		child, err := in.toNode(at, c)
		if err != nil {
			return err
		}
		n.Append(child)
	}
	return nil
}

func isEventProp(k string) bool {
	return len(k) > 2 && strings.HasPrefix(k, "on") && k[2] >= 'A' && k[2] <= 'Z'
}

// handler wraps a script listener so the preview can dispatch to it.
func (in *Interp) handler(fn *Function) vdom.Handler {
	return func() error {
		_, err := in.Call(fn, newEvent())
		return err
	}
}

func newEvent() *literal.Object {
	ev := literal.NewObject()
	ev.Set("type", "click")
	ev.Set("defaultPrevented", false)
	ev.Set("preventDefault", native("preventDefault", func(_ *Interp, _ Value, _ []Value) (Value, error) {
		ev.Set("defaultPrevented", true)
		return Undefined, nil
	}))
	ev.Set("stopPropagation", native("stopPropagation", func(*Interp, Value, []Value) (Value, error) {
		return Undefined, nil
	}))
	target := literal.NewObject()
	target.Set("value", "")
	ev.Set("target", target)
	ev.Set("currentTarget", target)
	return ev
}

var unitless = map[string]bool{
	"opacity": true, "zIndex": true, "fontWeight": true, "lineHeight": true,
	"flex": true, "flexGrow": true, "flexShrink": true, "order": true,
	"zoom": true, "gridRow": true, "gridColumn": true, "columnCount": true,
	"aspectRatio": true, "scale": true, "tabSize": true,
}

func styleAttr(v Value) string {
	obj, ok := v.(*literal.Object)
	if !ok {
		if isNullish(v) {
			return ""
		}
		return toString(v)
	}
	decl := make(map[string]string, obj.Len())
	for _, k := range obj.Keys() {
		val, _ := obj.Get(k)
		switch x := val.(type) {
		case undefined, nil, bool:
		case float64:
			if unitless[k] || x == 0 {
				decl[k] = formatNumber(x)
			} else {
				decl[k] = formatNumber(x) + "px"
			}
		default:
			decl[k] = toString(x)
		}
	}
	return style.InlineCSS(decl)
}

func (in *Interp) toNode(at Pos, v Value) (*vdom.Node, error) {
	switch x := v.(type) {
	case undefined, nil, bool, *Function:
		return nil, nil
	case string:
		return vdom.Text(x), nil
	case float64:
		return vdom.Text(formatNumber(x)), nil
	case *vdom.Node:
		return x, nil
	case *Array:
		frag := vdom.Fragment()
		if err := in.appendChildren(at, frag, x.Elems); err != nil {
			return nil, err
		}
		return frag, nil
	case *literal.Object:
		return nil, in.throw(at, "Error", "Objects are not valid as a child (found: object with keys {%s})", strings.Join(x.Keys(), ", "))
	}
	return nil, in.throw(at, "Error", "cannot render %s", describe(v))
}

func mathObject() *literal.Object {
	m := literal.NewObject()
	m.Set("PI", math.Pi)
	m.Set("E", math.E)
	unary := map[string]func(float64) float64{
		"abs":   math.Abs,
		"ceil":  math.Ceil,
		"floor": math.Floor,
		"sqrt":  math.Sqrt,
		"trunc": math.Trunc,
		"round": func(f float64) float64 { return math.Floor(f + 0.5) },
		"sign": func(f float64) float64 {
			switch {
			case f > 0:
				return 1
			case f < 0:
				return -1
			}
			return f
		},
	}
	for _, name := range []string{"abs", "ceil", "floor", "round", "sign", "sqrt", "trunc"} {
		fn := unary[name]
		m.Set(name, native(name, func(_ *Interp, _ Value, args []Value) (Value, error) {
			return fn(toNumber(arg(args, 0))), nil
		}))
	}
	m.Set("pow", native("pow", func(_ *Interp, _ Value, args []Value) (Value, error) {
		return math.Pow(toNumber(arg(args, 0)), toNumber(arg(args, 1))), nil
	}))
	m.Set("max", native("max", func(_ *Interp, _ Value, args []Value) (Value, error) {
		out := math.Inf(-1)
		for _, a := range args {
			f := toNumber(a)
			if math.IsNaN(f) {
				return f, nil
			}
			out = math.Max(out, f)
		}
		return out, nil
	}))
	m.Set("min", native("min", func(_ *Interp, _ Value, args []Value) (Value, error) {
		out := math.Inf(1)
		for _, a := range args {
			f := toNumber(a)
			if math.IsNaN(f) {
				return f, nil
			}
			out = math.Min(out, f)
		}
		return out, nil
	}))
	return m
}

func numberCtor() *Function {
	fn := native("Number", func(_ *Interp, _ Value, args []Value) (Value, error) {
		if len(args) == 0 {
			return 0.0, nil
		}
		return toNumber(args[0]), nil
	})
	fn.members().Set("isInteger", native("isInteger", func(_ *Interp, _ Value, args []Value) (Value, error) {
		f, ok := arg(args, 0).(float64)
		return ok && !math.IsInf(f, 0) && f == math.Trunc(f), nil
	}))
	fn.members().Set("isFinite", native("isFinite", func(_ *Interp, _ Value, args []Value) (Value, error) {
		f, ok := arg(args, 0).(float64)
		return ok && !math.IsInf(f, 0) && !math.IsNaN(f), nil
	}))
	fn.members().Set("isNaN", native("isNaN", func(_ *Interp, _ Value, args []Value) (Value, error) {
		f, ok := arg(args, 0).(float64)
		return ok && math.IsNaN(f), nil
	}))
	fn.members().Set("parseFloat", native("parseFloat", builtinParseFloat))
	fn.members().Set("parseInt", native("parseInt", builtinParseInt))
	return fn
}

func builtinParseInt(_ *Interp, _ Value, args []Value) (Value, error) {
	s := strings.TrimSpace(toString(arg(args, 0)))
	radix := toInt(arg(args, 1))
	neg := false
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		neg = s[0] == '-'
		s = s[1:]
	}
	if (radix == 0 || radix == 16) && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s, radix = s[2:], 16
	}
	if radix == 0 {
		radix = 10
	}
	if radix < 2 || radix > 36 {
		return math.NaN(), nil
	}
	end := 0
	for end < len(s) {
		d := digitValue(s[end])
		if d < 0 || d >= radix {
			break
		}
		end++
	}
	if end == 0 {
		return math.NaN(), nil
	}
	var n float64
	for _, c := range []byte(s[:end]) {
		n = n*float64(radix) + float64(digitValue(c))
	}
	if neg {
		n = -n
	}
	return n, nil
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return -1
}

func builtinParseFloat(_ *Interp, _ Value, args []Value) (Value, error) {
	s := strings.TrimSpace(toString(arg(args, 0)))
	if strings.HasPrefix(s, "Infinity") || strings.HasPrefix(s, "+Infinity") {
		return math.Inf(1), nil
	}
	if strings.HasPrefix(s, "-Infinity") {
		return math.Inf(-1), nil
	}
	end := 0
	seenDot, seenExp, seenDigit := false, false, false
scan:
	for end < len(s) {
		c := s[end]
		switch {
		case isDigit(c):
			seenDigit = true
		case (c == '+' || c == '-') && (end == 0 || s[end-1] == 'e' || s[end-1] == 'E'):
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			break scan
		}
		end++
	}
	for end > 0 {
		if f, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return f, nil
		}
		end--
	}
	return math.NaN(), nil
}

func objectCtor() *Function {
	fn := native("Object", func(_ *Interp, _ Value, args []Value) (Value, error) {
		if v := arg(args, 0); !isNullish(v) {
			return v, nil
		}
		return literal.NewObject(), nil
	})
	m := fn.members()
	m.Set("keys", native("keys", func(_ *Interp, _ Value, args []Value) (Value, error) {
		out := NewArray()
		for _, k := range objectKeys(arg(args, 0)) {
			out.Elems = append(out.Elems, k)
		}
		return out, nil
	}))
	m.Set("values", native("values", func(in *Interp, _ Value, args []Value) (Value, error) {
		src := arg(args, 0)
		out := NewArray()
		for _, k := range objectKeys(src) {
			v, err := in.getMember(in.at, src, k)
			if err != nil {
				return nil, err
			}
			out.Elems = append(out.Elems, v)
		}
		return out, nil
	}))
	m.Set("entries", native("entries", func(in *Interp, _ Value, args []Value) (Value, error) {
		src := arg(args, 0)
		out := NewArray()
		for _, k := range objectKeys(src) {
			v, err := in.getMember(in.at, src, k)
			if err != nil {
				return nil, err
			}
			out.Elems = append(out.Elems, NewArray(k, v))
		}
		return out, nil
	}))
	m.Set("fromEntries", native("fromEntries", func(in *Interp, _ Value, args []Value) (Value, error) {
		items, err := in.iterate(in.at, arg(args, 0))
		if err != nil {
			return nil, err
		}
		out := literal.NewObject()
		for _, item := range items {
			pair, ok := item.(*Array)
			if !ok {
				return nil, fmt.Errorf("iterator value %s is not an entry object", toString(item))
			}
			out.Set(toString(arg(pair.Elems, 0)), arg(pair.Elems, 1))
		}
		return out, nil
	}))
	m.Set("assign", native("assign", func(in *Interp, _ Value, args []Value) (Value, error) {
		target, ok := arg(args, 0).(*literal.Object)
		if !ok {
			return nil, fmt.Errorf("assign target must be an object")
		}
		for _, src := range args[1:] {
			if err := in.spreadInto(in.at, target, src); err != nil {
				return nil, err
			}
		}
		return target, nil
	}))
	m.Set("freeze", native("freeze", func(_ *Interp, _ Value, args []Value) (Value, error) {
		return arg(args, 0), nil
	}))
	return fn
}

func arrayCtor() *Function {
	fn := native("Array", func(_ *Interp, _ Value, args []Value) (Value, error) {
		if len(args) == 1 {
			if n, ok := args[0].(float64); ok {
				size, valid := arrayIndex(n)
				if !valid || size >= maxArrayLen {
					return nil, fmt.Errorf("invalid array length")
				}
				out := make([]Value, size)
				for i := range out {
					out[i] = Undefined
				}
				return NewArray(out...), nil
			}
		}
		return NewArray(append([]Value(nil), args...)...), nil
	})
	fn.members().Set("isArray", native("isArray", func(_ *Interp, _ Value, args []Value) (Value, error) {
		_, ok := arg(args, 0).(*Array)
		return ok, nil
	}))
	fn.members().Set("from", native("from", func(in *Interp, _ Value, args []Value) (Value, error) {
		src := arg(args, 0)
		var items []Value
		switch x := src.(type) {
		case *Array, string:
			var err error
			if items, err = in.iterate(in.at, x); err != nil {
				return nil, err
			}
		case *literal.Object:
			length, _ := x.Get("length")
			n, ok := arrayIndex(toNumber(length))
			if !ok || n >= maxArrayLen {
				n = 0
			}
			for i := 0; i < n; i++ {
				v, ok := x.Get(strconv.Itoa(i))
				if !ok {
					v = Undefined
				}
				items = append(items, v)
			}
		}
		out := NewArray()
		mapFn, hasMap := arg(args, 1).(*Function)
		for i, item := range items {
			if hasMap {
				v, err := in.call(in.at, mapFn, Undefined, []Value{item, float64(i)})
				if err != nil {
					return nil, err
				}
				item = v
			}
			out.Elems = append(out.Elems, item)
		}
		return out, nil
	}))
	return fn
}

func objectMethod(o *literal.Object, name string) *Function {
	switch name {
	case "hasOwnProperty":
		return native(name, func(_ *Interp, _ Value, args []Value) (Value, error) {
			return o.Has(toString(arg(args, 0))), nil
		})
	case "toString":
		return native(name, func(*Interp, Value, []Value) (Value, error) {
			return toString(o), nil
		})
	}
	return nil
}

func jsonObject() *literal.Object {
	obj := literal.NewObject()
	obj.Set("stringify", native("stringify", func(_ *Interp, _ Value, args []Value) (Value, error) {
		v := arg(args, 0)
		if v == Undefined {
			return Undefined, nil
		}
		indent := ""
		switch sp := arg(args, 2).(type) {
		case float64:
			indent = strings.Repeat(" ", min(max(int(sp), 0), 10))
		case string:
			indent = sp
		}
		var b strings.Builder
		writeJSON(&b, v, indent, 0)
		return b.String(), nil
	}))
	obj.Set("parse", native("parse", func(_ *Interp, _ Value, args []Value) (Value, error) {
		v, err := literal.Parse(toString(arg(args, 0)), literal.Strict)
		if err != nil {
			return nil, fmt.Errorf("JSON.parse: %w", err)
		}
		return FromGo(v), nil
	}))
	return obj
}

func writeJSON(b *strings.Builder, v Value, indent string, level int) {
	newline := func(l int) {
		if indent != "" {
			b.WriteByte('\n')
			b.WriteString(strings.Repeat(indent, l))
		}
	}
	switch x := v.(type) {
	case undefined, nil, *Function, *vdom.Node:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			b.WriteString("null")
			return
		}
		b.WriteString(formatNumber(x))
	case string:
		b.WriteString(literal.Quote(x))
	case *Array:
		if len(x.Elems) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteByte('[')
		for i, e := range x.Elems {
			if i > 0 {
				b.WriteByte(',')
			}
			newline(level + 1)
			writeJSON(b, e, indent, level+1)
		}
		newline(level)
		b.WriteByte(']')
	case *literal.Object:
		first := true
		b.WriteByte('{')
		for _, k := range x.Keys() {
			e, _ := x.Get(k)
			switch e.(type) {
			case undefined, *Function:
				continue
			}
			if !first {
				b.WriteByte(',')
			}
			first = false
			newline(level + 1)
			b.WriteString(literal.Quote(k))
			b.WriteByte(':')
			if indent != "" {
				b.WriteByte(' ')
			}
			writeJSON(b, e, indent, level+1)
		}
		if !first {
			newline(level)
		}
		b.WriteByte('}')
	}
}

// inspect formats a value for console output.
func inspect(v Value) string {
	switch x := v.(type) {
	case string:
		return literal.Quote(x)
	case *Function:
		if x.Name == "" {
			return "[Function (anonymous)]"
		}
		return "[Function " + x.Name + "]"
	case *vdom.Node:
		return vdom.Render(x)
	case *Array, *literal.Object:
		var b strings.Builder
		writeJSON(&b, v, "", 0)
		return b.String()
	}
	return toString(v)
}
