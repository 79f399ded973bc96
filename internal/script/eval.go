package script

import (
	"math"
	"strings"

	"github.com/3-lines-studio/studio/internal/literal"
	"github.com/3-lines-studio/studio/internal/vdom"
)

func (in *Interp) eval(e Expr, env *Env) (Value, error) {
	if err := in.step(e.pos()); err != nil {
		return nil, err
	}
	switch x := e.(type) {
	case *NumberLit:
		return x.Value, nil
	case *StringLit:
		return x.Value, nil
	case *BoolLit:
		return x.Value, nil
	case *NullLit:
		return nil, nil
	case *TemplateLit:
		var b strings.Builder
		for i, q := range x.Quasis {
			b.WriteString(q)
			if i < len(x.Exprs) {
				v, err := in.eval(x.Exprs[i], env)
				if err != nil {
					return nil, err
				}
				b.WriteString(toString(v))
			}
		}
		return b.String(), nil
	case *Ident:
		return in.evalIdent(x, env)
	case *ArrayLit:
		return in.evalArray(x, env)
	case *ObjectLit:
		return in.evalObject(x, env)
	case *FuncLit:
		return &Function{Name: x.Name, lit: x, env: env}, nil
	case *UnaryExpr:
		return in.evalUnary(x, env)
	case *UpdateExpr:
		return in.evalUpdate(x, env)
	case *BinaryExpr:
		l, err := in.eval(x.L, env)
		if err != nil {
			return nil, err
		}
		r, err := in.eval(x.R, env)
		if err != nil {
			return nil, err
		}
		return in.binary(x.At, x.Op, l, r)
	case *LogicalExpr:
		l, err := in.eval(x.L, env)
		if err != nil {
			return nil, err
		}
		switch x.Op {
		case "&&":
			if !truthy(l) {
				return l, nil
			}
		case "||":
			if truthy(l) {
				return l, nil
			}
		case "??":
			if !isNullish(l) {
				return l, nil
			}
		}
		return in.eval(x.R, env)
	case *AssignExpr:
		return in.evalAssign(x, env)
	case *CondExpr:
		test, err := in.eval(x.Test, env)
		if err != nil {
			return nil, err
		}
		if truthy(test) {
			return in.eval(x.Then, env)
		}
		return in.eval(x.Else, env)
	case *CallExpr, *MemberExpr:
		v, _, err := in.evalChain(e, env)
		return v, err
	case *NewExpr:
		callee, err := in.eval(x.Callee, env)
		if err != nil {
			return nil, err
		}
		args, err := in.evalArgs(x.Args, env)
		if err != nil {
			return nil, err
		}
		fn, ok := callee.(*Function)
		if !ok {
			return nil, in.throw(x.At, "TypeError", "%s is not a constructor", describe(callee))
		}
		return in.construct(x.At, fn, args)
	case *SeqExpr:
		var v Value = Undefined
		for _, sub := range x.Exprs {
			var err error
			if v, err = in.eval(sub, env); err != nil {
				return nil, err
			}
		}
		return v, nil
	case *SpreadExpr:
		return nil, in.throw(x.At, "SyntaxError", "unexpected spread")
	}
	return nil, in.throw(e.pos(), "SyntaxError", "unsupported expression %T", e)
}

func (in *Interp) evalIdent(x *Ident, env *Env) (Value, error) {
	if b := env.lookup(x.Name); b != nil {
		return b.v, nil
	}
	switch x.Name {
	case "undefined":
		return Undefined, nil
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "this":
		return Undefined, nil
	}
	return nil, in.throw(x.At, "ReferenceError", "%s is not defined", x.Name)
}

func (in *Interp) evalArray(x *ArrayLit, env *Env) (Value, error) {
	arr := NewArray()
	for _, el := range x.Elems {
		if el == nil {
			arr.Elems = append(arr.Elems, Undefined)
			continue
		}
		if sp, ok := el.(*SpreadExpr); ok {
			v, err := in.eval(sp.X, env)
			if err != nil {
				return nil, err
			}
			items, err := in.iterate(sp.At, v)
			if err != nil {
				return nil, err
			}
			arr.Elems = append(arr.Elems, items...)
			continue
		}
		v, err := in.eval(el, env)
		if err != nil {
			return nil, err
		}
		arr.Elems = append(arr.Elems, v)
	}
	return arr, nil
}

func (in *Interp) evalObject(x *ObjectLit, env *Env) (Value, error) {
	obj := literal.NewObject()
	for _, p := range x.Props {
		if p.Spread {
			v, err := in.eval(p.Value, env)
			if err != nil {
				return nil, err
			}
			if err := in.spreadInto(p.At, obj, v); err != nil {
				return nil, err
			}
			continue
		}
		key, err := in.propertyKey(p.Key, p.Computed, env)
		if err != nil {
			return nil, err
		}
		v, err := in.eval(p.Value, env)
		if err != nil {
			return nil, err
		}
		nameFunction(v, key)
		obj.Set(key, v)
	}
	return obj, nil
}

func (in *Interp) spreadInto(at Pos, obj *literal.Object, v Value) error {
	if isNullish(v) {
		return nil
	}
	switch v.(type) {
	case bool, float64:
		return nil
	}
	for _, k := range objectKeys(v) {
		member, err := in.getMember(at, v, k)
		if err != nil {
			return err
		}
		obj.Set(k, member)
	}
	return nil
}

func (in *Interp) propertyKey(key Expr, computed bool, env *Env) (string, error) {
	if !computed {
		if s, ok := key.(*StringLit); ok {
			return s.Value, nil
		}
	}
	v, err := in.eval(key, env)
	if err != nil {
		return "", err
	}
	return toString(v), nil
}

func (in *Interp) evalUnary(x *UnaryExpr, env *Env) (Value, error) {
	switch x.Op {
	case "typeof":
		if id, ok := x.X.(*Ident); ok && env.lookup(id.Name) == nil {
			if id.Name == "NaN" || id.Name == "Infinity" {
				return "number", nil
			}
			return "undefined", nil
		}
	case "delete":
		m, ok := x.X.(*MemberExpr)
		if !ok {
			return true, nil
		}
		obj, err := in.eval(m.Object, env)
		if err != nil {
			return nil, err
		}
		key, err := in.memberKey(m, env)
		if err != nil {
			return nil, err
		}
		switch o := obj.(type) {
		case *literal.Object:
			o.Delete(toString(key))
		case *Array:
			if i, ok := arrayIndex(key); ok && i < len(o.Elems) {
				o.Elems[i] = Undefined
			}
		}
		return true, nil
	}
	v, err := in.eval(x.X, env)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case "typeof":
		return typeOf(v), nil
	case "void":
		return Undefined, nil
	case "!":
		return !truthy(v), nil
	case "-":
		return -toNumber(v), nil
	case "+":
		return toNumber(v), nil
	case "~":
		return float64(^toInt32(toNumber(v))), nil
	}
	return nil, in.throw(x.At, "SyntaxError", "unsupported operator %s", x.Op)
}

func (in *Interp) evalUpdate(x *UpdateExpr, env *Env) (Value, error) {
	old, err := in.eval(x.X, env)
	if err != nil {
		return nil, err
	}
	n := toNumber(old)
	next := n + 1
	if x.Op == "--" {
		next = n - 1
	}
	if err := in.store(x.X, next, env); err != nil {
		return nil, err
	}
	if x.Prefix {
		return next, nil
	}
	return n, nil
}

func (in *Interp) evalAssign(x *AssignExpr, env *Env) (Value, error) {
	if x.Op == "=" {
		v, err := in.eval(x.Value, env)
		if err != nil {
			return nil, err
		}
		if id, ok := x.Target.(*Ident); ok {
			nameFunction(v, id.Name)
		}
		return v, in.store(x.Target, v, env)
	}
	cur, err := in.eval(x.Target, env)
	if err != nil {
		return nil, err
	}
	op := strings.TrimSuffix(x.Op, "=")
	switch op {
	case "&&", "||", "??":
		keep := (op == "&&" && !truthy(cur)) || (op == "||" && truthy(cur)) || (op == "??" && !isNullish(cur))
		if keep {
			return cur, nil
		}
		v, err := in.eval(x.Value, env)
		if err != nil {
			return nil, err
		}
		return v, in.store(x.Target, v, env)
	}
	r, err := in.eval(x.Value, env)
	if err != nil {
		return nil, err
	}
	v, err := in.binary(x.At, op, cur, r)
	if err != nil {
		return nil, err
	}
	return v, in.store(x.Target, v, env)
}

// store writes v to an identifier or member target.
func (in *Interp) store(target Expr, v Value, env *Env) error {
	switch t := target.(type) {
	case *Ident:
		return in.assignName(t.At, t.Name, v, env)
	case *MemberExpr:
		obj, err := in.eval(t.Object, env)
		if err != nil {
			return err
		}
		key, err := in.memberKey(t, env)
		if err != nil {
			return err
		}
		return in.setMember(t.At, obj, key, v)
	}
	return in.throw(target.pos(), "SyntaxError", "invalid assignment target")
}

func (in *Interp) memberKey(m *MemberExpr, env *Env) (Value, error) {
	if !m.Computed {
		return m.Prop.(*StringLit).Value, nil
	}
	return in.eval(m.Prop, env)
}

// evalChain evaluates member and call expressions. short reports that an
// optional link met a nullish value, which ends the whole chain.
func (in *Interp) evalChain(e Expr, env *Env) (v Value, short bool, err error) {
	switch x := e.(type) {
	case *MemberExpr:
		obj, short, err := in.evalChain(x.Object, env)
		if err != nil || short {
			return Undefined, short, err
		}
		if x.Optional && isNullish(obj) {
			return Undefined, true, nil
		}
		key, err := in.memberKey(x, env)
		if err != nil {
			return nil, false, err
		}
		v, err := in.getMember(x.At, obj, key)
		return v, false, err
	case *CallExpr:
		var fn, this Value = nil, Undefined
		if m, ok := x.Callee.(*MemberExpr); ok {
			obj, short, err := in.evalChain(m.Object, env)
			if err != nil || short {
				return Undefined, short, err
			}
			if m.Optional && isNullish(obj) {
				return Undefined, true, nil
			}
			key, err := in.memberKey(m, env)
			if err != nil {
				return nil, false, err
			}
			if fn, err = in.getMember(m.At, obj, key); err != nil {
				return nil, false, err
			}
			this = obj
			if _, ok := fn.(*Function); !ok && !(x.Optional && isNullish(fn)) {
				return nil, false, in.throw(x.At, "TypeError", "%s.%s is not a function", calleeName(m.Object), toString(key))
			}
		} else {
			fn, short, err = in.evalChain(x.Callee, env)
			if err != nil || short {
				return Undefined, short, err
			}
			if _, ok := fn.(*Function); !ok && !(x.Optional && isNullish(fn)) {
				return nil, false, in.throw(x.At, "TypeError", "%s is not a function", calleeName(x.Callee))
			}
		}
		if x.Optional && isNullish(fn) {
			return Undefined, true, nil
		}
		args, err := in.evalArgs(x.Args, env)
		if err != nil {
			return nil, false, err
		}
		v, err := in.call(x.At, fn, this, args)
		return v, false, err
	}
	v, err = in.eval(e, env)
	return v, false, err
}

func calleeName(e Expr) string {
	switch x := e.(type) {
	case *Ident:
		return x.Name
	case *MemberExpr:
		if s, ok := x.Prop.(*StringLit); ok && !x.Computed {
			return calleeName(x.Object) + "." + s.Value
		}
		return calleeName(x.Object) + "[...]"
	case *CallExpr:
		return calleeName(x.Callee) + "(...)"
	}
	return "expression"
}

func (in *Interp) evalArgs(exprs []Expr, env *Env) ([]Value, error) {
	args := make([]Value, 0, len(exprs))
	for _, a := range exprs {
		if sp, ok := a.(*SpreadExpr); ok {
			v, err := in.eval(sp.X, env)
			if err != nil {
				return nil, err
			}
			items, err := in.iterate(sp.At, v)
			if err != nil {
				return nil, err
			}
			args = append(args, items...)
			continue
		}
		v, err := in.eval(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func (in *Interp) getMember(at Pos, obj Value, key Value) (Value, error) {
	name := toString(key)
	switch o := obj.(type) {
	case undefined, nil:
		return nil, in.throw(at, "TypeError", "Cannot read properties of %s (reading '%s')", toString(obj), name)
	case *literal.Object:
		if v, ok := o.Get(name); ok {
			return v, nil
		}
		if m := objectMethod(o, name); m != nil {
			return m, nil
		}
		return Undefined, nil
	case *Array:
		if i, ok := arrayIndex(key); ok {
			if i < len(o.Elems) {
				return o.Elems[i], nil
			}
			return Undefined, nil
		}
		if name == "length" {
			return float64(len(o.Elems)), nil
		}
		if m := arrayMethod(o, name); m != nil {
			return m, nil
		}
		return Undefined, nil
	case string:
		if i, ok := arrayIndex(key); ok {
			runes := []rune(o)
			if i < len(runes) {
				return string(runes[i]), nil
			}
			return Undefined, nil
		}
		if name == "length" {
			return float64(len([]rune(o))), nil
		}
		if m := stringMethod(o, name); m != nil {
			return m, nil
		}
		return Undefined, nil
	case float64:
		if m := numberMethod(o, name); m != nil {
			return m, nil
		}
		return Undefined, nil
	case bool:
		if name == "toString" {
			return native("toString", func(*Interp, Value, []Value) (Value, error) { return toString(o), nil }), nil
		}
		return Undefined, nil
	case *Function:
		if v, ok := o.members().Get(name); ok {
			return v, nil
		}
		switch name {
		case "name":
			return o.Name, nil
		case "call":
			return native("call", func(in *Interp, _ Value, args []Value) (Value, error) {
				var rest []Value
				if len(args) > 1 {
					rest = args[1:]
				}
				return in.call(in.at, o, arg(args, 0), rest)
			}), nil
		case "apply":
			return native("apply", func(in *Interp, _ Value, args []Value) (Value, error) {
				var list []Value
				if arr, ok := arg(args, 1).(*Array); ok {
					list = arr.Elems
				}
				return in.call(in.at, o, arg(args, 0), list)
			}), nil
		case "bind":
			return native("bind", func(in *Interp, _ Value, args []Value) (Value, error) {
				this := arg(args, 0)
				var bound []Value
				if len(args) > 1 {
					bound = append(bound, args[1:]...)
				}
				return native(o.Name, func(in *Interp, _ Value, more []Value) (Value, error) {
					return in.call(in.at, o, this, append(append([]Value(nil), bound...), more...))
				}), nil
			}), nil
		}
		return Undefined, nil
	case *vdom.Node:
		switch name {
		case "type":
			return o.Tag, nil
		case "props":
			props := literal.NewObject()
			for _, a := range o.Attrs {
				props.Set(a.Key, a.Val)
			}
			return props, nil
		}
		return Undefined, nil
	}
	return Undefined, nil
}

func (in *Interp) setMember(at Pos, obj Value, key Value, v Value) error {
	name := toString(key)
	switch o := obj.(type) {
	case undefined, nil:
		return in.throw(at, "TypeError", "Cannot set properties of %s (setting '%s')", toString(obj), name)
	case *literal.Object:
		nameFunction(v, name)
		o.Set(name, v)
	case *Array:
		if i, ok := arrayIndex(key); ok {
			if i >= maxArrayLen {
				return in.throw(at, "RangeError", "Invalid array length")
			}
			for len(o.Elems) <= i {
				o.Elems = append(o.Elems, Undefined)
			}
			o.Elems[i] = v
			return nil
		}
		if name == "length" {
			n, ok := arrayIndex(v)
			if !ok || n >= maxArrayLen {
				return in.throw(at, "RangeError", "Invalid array length")
			}
			for len(o.Elems) < n {
				o.Elems = append(o.Elems, Undefined)
			}
			o.Elems = o.Elems[:n]
		}
	case *Function:
		o.members().Set(name, v)
	}
	return nil
}

const maxArrayLen = 1 << 20

func (in *Interp) binary(at Pos, op string, l, r Value) (Value, error) {
	switch op {
	case "+":
		l, r = toPrimitive(l), toPrimitive(r)
		_, ls := l.(string)
		_, rs := r.(string)
		if ls || rs {
			s := toString(l) + toString(r)
			if len(s) > maxStringLen {
				return nil, in.throw(at, "RangeError", "Invalid string length")
			}
			return s, nil
		}
		return toNumber(l) + toNumber(r), nil
	case "==":
		return looseEquals(l, r), nil
	case "!=":
		return !looseEquals(l, r), nil
	case "===":
		return strictEquals(l, r), nil
	case "!==":
		return !strictEquals(l, r), nil
	case "<", ">", "<=", ">=":
		return compare(op, toPrimitive(l), toPrimitive(r)), nil
	case "instanceof":
		fn, ok := r.(*Function)
		if !ok {
			return nil, in.throw(at, "TypeError", "Right-hand side of 'instanceof' is not callable")
		}
		switch fn.Name {
		case "Array":
			_, isArr := l.(*Array)
			return isArr, nil
		case "Object":
			switch l.(type) {
			case *literal.Object, *Array, *Function:
				return true, nil
			}
			return false, nil
		}
		if fn.errorType != "" {
			obj, ok := l.(*literal.Object)
			if !ok {
				return false, nil
			}
			name, _ := obj.Get("name")
			return fn.errorType == "Error" || name == fn.errorType, nil
		}
		return false, nil
	case "in":
		switch o := r.(type) {
		case *literal.Object:
			return o.Has(toString(l)), nil
		case *Array:
			if i, ok := arrayIndex(l); ok {
				return i < len(o.Elems), nil
			}
			return toString(l) == "length", nil
		}
		return nil, in.throw(at, "TypeError", "Cannot use 'in' operator to search for '%s' in %s", toString(l), describe(r))
	}
	return numberOp(op, toNumber(l), toNumber(r)), nil
}

const maxStringLen = 1 << 24

func toPrimitive(v Value) Value {
	switch v.(type) {
	case *Array, *literal.Object, *Function, *vdom.Node:
		return toString(v)
	}
	return v
}

func compare(op string, l, r Value) bool {
	ls, lok := l.(string)
	rs, rok := r.(string)
	if lok && rok {
		switch op {
		case "<":
			return ls < rs
		case ">":
			return ls > rs
		case "<=":
			return ls <= rs
		default:
			return ls >= rs
		}
	}
	a, b := toNumber(l), toNumber(r)
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	default:
		return a >= b
	}
}
