package script

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"pkt.systems/pslog"

	"github.com/3-lines-studio/studio/internal/literal"
	"github.com/3-lines-studio/studio/internal/vdom"
)

const (
	// DefaultStepLimit bounds a single top-level evaluation.
	DefaultStepLimit = 200_000
	maxCallDepth     = 256
)

var (
	ErrBudget = errors.New("step budget exhausted")
	ErrDepth  = errors.New("maximum call depth exceeded")
)

// RuntimeError is raised while evaluating. Value carries the thrown script
// value; Err is set for failures scripts cannot catch.
type RuntimeError struct {
	Line  int
	Col   int
	Msg   string
	Value Value
	Err   error
}

func (e *RuntimeError) Error() string {
	if e.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s (at %d:%d)", e.Msg, e.Line, e.Col)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

func (e *RuntimeError) catchable() bool { return e.Err == nil }

type Options struct {
	// StepLimit bounds each top-level call. Zero means DefaultStepLimit.
	StepLimit int
	// Navigate is bound as the navigation hook when set.
	Navigate func(path string)
	// Globals adds extra read-only bindings, such as props.
	Globals map[string]Value
}

// Interp evaluates one parsed program. It is not safe for concurrent use.
type Interp struct {
	ctx      context.Context
	prog     *Program
	global   *Env
	limit    int
	steps    int
	depth    int
	at       Pos
	hooks    *HookState
	fragment *Function
	log      pslog.Logger
}

func New(ctx context.Context, prog *Program, opts Options) *Interp {
	in := &Interp{
		ctx:   ctx,
		prog:  prog,
		limit: opts.StepLimit,
		log:   pslog.Ctx(ctx).With("source", "component"),
	}
	if in.limit <= 0 {
		in.limit = DefaultStepLimit
	}
	in.global = newEnv(nil, true)
	in.installGlobals(opts.Navigate)
	for name, v := range opts.Globals {
		in.global.declare(name, FromGo(v), true)
	}
	return in
}

// Detach drops the cancellation and deadline of the context the interpreter
// was created with. Event handlers that outlive a render stay bounded by the
// step budget only.
func (in *Interp) Detach() {
	in.ctx = context.WithoutCancel(in.ctx)
}

// Run executes the program's top-level statements.
func (in *Interp) Run() (err error) {
	defer in.guard(&err)
	in.steps = 0
	in.hoist(in.prog.Body, in.global)
	ctl, _, err := in.execList(in.prog.Body, in.global)
	if err != nil {
		return err
	}
	if ctl != ctrlNone {
		return in.throw(0, "SyntaxError", "illegal %s at top level", ctl)
	}
	return nil
}

// Lookup returns a top-level binding.
func (in *Interp) Lookup(name string) (Value, bool) {
	b := in.global.lookup(name)
	if b == nil {
		return nil, false
	}
	return b.v, true
}

// Component resolves the function to render: name when it is bound to a
// function, else the program's own default export, else the last top-level
// component declaration.
func (in *Interp) Component(name string) (*Function, string, bool) {
	candidates := []string{name, in.prog.DefaultExport}
	names := in.prog.ComponentNames()
	for i := len(names) - 1; i >= 0; i-- {
		candidates = append(candidates, names[i])
	}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if v, ok := in.Lookup(c); ok {
			if fn, ok := v.(*Function); ok {
				return fn, c, true
			}
		}
	}
	return nil, "", false
}

// Call invokes fn with a fresh step budget.
func (in *Interp) Call(fn Value, args ...Value) (v Value, err error) {
	defer in.guard(&err)
	if in.depth == 0 {
		in.steps = 0
	}
	return in.call(in.at, fn, Undefined, args)
}

// Render calls a component with props and returns its node tree. Hook slots
// are read from and written to hooks.
func (in *Interp) Render(component Value, props *literal.Object, hooks *HookState) (node *vdom.Node, err error) {
	defer in.guard(&err)
	in.steps = 0
	fn, ok := component.(*Function)
	if !ok {
		return nil, in.throw(0, "TypeError", "component is not a function")
	}
	if hooks == nil {
		hooks = NewHookState()
	}
	prev := in.hooks
	in.hooks = hooks
	defer func() { in.hooks = prev }()
	hooks.begin()
	p, _ := FromGo(props).(*literal.Object)
	v, err := in.call(0, fn, Undefined, []Value{withDefaults(fn, p)})
	if err != nil {
		return nil, err
	}
	return in.toNode(0, v)
}

// guard turns panics and cancellation into a RuntimeError.
func (in *Interp) guard(errp *error) {
	if r := recover(); r != nil {
		line, col := in.prog.Position(in.at)
		*errp = &RuntimeError{Line: line, Col: col, Msg: fmt.Sprintf("internal error: %v", r), Err: fmt.Errorf("panic: %v", r)}
	}
}

func (in *Interp) step(at Pos) error {
	in.steps++
	in.at = at
	if in.steps > in.limit {
		return in.fatal(at, ErrBudget)
	}
	if in.steps&1023 == 0 {
		if err := in.ctx.Err(); err != nil {
			return in.fatal(at, err)
		}
	}
	return nil
}

func (in *Interp) fatal(at Pos, cause error) error {
	line, col := in.prog.Position(at)
	return &RuntimeError{Line: line, Col: col, Msg: cause.Error(), Err: cause}
}

// throw raises a new error object of the given kind.
func (in *Interp) throw(at Pos, kind, format string, args ...any) error {
	return in.raise(at, errorObject(kind, fmt.Sprintf(format, args...)))
}

func (in *Interp) raise(at Pos, v Value) error {
	line, col := in.prog.Position(at)
	return &RuntimeError{Line: line, Col: col, Msg: toString(v), Value: v}
}

func errorObject(kind, msg string) *literal.Object {
	obj := literal.NewObject()
	obj.Set("name", kind)
	obj.Set("message", msg)
	return obj
}

// environments

type binding struct {
	v        Value
	constant bool
}

type Env struct {
	vars   map[string]*binding
	parent *Env
	fn     bool
}

func newEnv(parent *Env, fn bool) *Env {
	return &Env{vars: make(map[string]*binding), parent: parent, fn: fn}
}

func (e *Env) lookup(name string) *binding {
	for s := e; s != nil; s = s.parent {
		if b, ok := s.vars[name]; ok {
			return b
		}
	}
	return nil
}

func (e *Env) declare(name string, v Value, constant bool) {
	e.vars[name] = &binding{v: v, constant: constant}
}

func (e *Env) function() *Env {
	s := e
	for !s.fn && s.parent != nil {
		s = s.parent
	}
	return s
}

// copy duplicates the bindings of a loop scope so closures created in one
// iteration keep their own values.
func (e *Env) copy() *Env {
	out := newEnv(e.parent, e.fn)
	for k, b := range e.vars {
		out.vars[k] = &binding{v: b.v, constant: b.constant}
	}
	return out
}

// statements

type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlReturn
	ctrlBreak
	ctrlContinue
)

func (c ctrl) String() string {
	switch c {
	case ctrlReturn:
		return "return"
	case ctrlBreak:
		return "break"
	case ctrlContinue:
		return "continue"
	}
	return "none"
}

func (in *Interp) hoist(body []Stmt, env *Env) {
	for _, st := range body {
		if fd, ok := st.(*FuncDecl); ok {
			env.declare(fd.Func.Name, &Function{Name: fd.Func.Name, lit: fd.Func, env: env}, false)
		}
	}
}

func (in *Interp) execList(body []Stmt, env *Env) (ctrl, Value, error) {
	for _, st := range body {
		ctl, v, err := in.exec(st, env)
		if err != nil || ctl != ctrlNone {
			return ctl, v, err
		}
	}
	return ctrlNone, nil, nil
}

func (in *Interp) execBlock(b *BlockStmt, env *Env) (ctrl, Value, error) {
	scope := newEnv(env, false)
	in.hoist(b.Body, scope)
	return in.execList(b.Body, scope)
}

func (in *Interp) exec(st Stmt, env *Env) (ctrl, Value, error) {
	if err := in.step(st.pos()); err != nil {
		return ctrlNone, nil, err
	}
	switch s := st.(type) {
	case *EmptyStmt, *FuncDecl:
		return ctrlNone, nil, nil
	case *ExprStmt:
		_, err := in.eval(s.X, env)
		return ctrlNone, nil, err
	case *VarDecl:
		return ctrlNone, nil, in.execVarDecl(s, env)
	case *ReturnStmt:
		if s.Value == nil {
			return ctrlReturn, Undefined, nil
		}
		v, err := in.eval(s.Value, env)
		return ctrlReturn, v, err
	case *BlockStmt:
		return in.execBlock(s, env)
	case *IfStmt:
		test, err := in.eval(s.Test, env)
		if err != nil {
			return ctrlNone, nil, err
		}
		if truthy(test) {
			return in.exec(s.Then, env)
		}
		if s.Else != nil {
			return in.exec(s.Else, env)
		}
		return ctrlNone, nil, nil
	case *ForStmt:
		return in.execFor(s, env)
	case *ForOfStmt:
		return in.execForOf(s, env)
	case *WhileStmt:
		return in.execWhile(s, env)
	case *BreakStmt:
		return ctrlBreak, nil, nil
	case *ContinueStmt:
		return ctrlContinue, nil, nil
	case *ThrowStmt:
		v, err := in.eval(s.Value, env)
		if err != nil {
			return ctrlNone, nil, err
		}
		return ctrlNone, nil, in.raise(s.At, v)
	case *TryStmt:
		return in.execTry(s, env)
	case *SwitchStmt:
		return in.execSwitch(s, env)
	}
	return ctrlNone, nil, in.throw(st.pos(), "SyntaxError", "unsupported statement %T", st)
}

func (in *Interp) execVarDecl(s *VarDecl, env *Env) error {
	target := env
	if s.Kind == "var" {
		target = env.function()
	}
	for _, d := range s.Decls {
		var v Value = Undefined
		if d.Init != nil {
			var err error
			if v, err = in.eval(d.Init, env); err != nil {
				return err
			}
			if id, ok := d.Target.(*Ident); ok {
				nameFunction(v, id.Name)
			}
		}
		constant := s.Kind == "const"
		err := in.bind(d.Target, v, env, func(name string, v Value) error {
			target.declare(name, v, constant)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func nameFunction(v Value, name string) {
	if fn, ok := v.(*Function); ok && fn.Name == "" {
		fn.Name = name
	}
}

func (in *Interp) execFor(s *ForStmt, env *Env) (ctrl, Value, error) {
	loop := newEnv(env, false)
	if s.Init != nil {
		if _, _, err := in.exec(s.Init, loop); err != nil {
			return ctrlNone, nil, err
		}
	}
	for {
		if s.Test != nil {
			test, err := in.eval(s.Test, loop)
			if err != nil {
				return ctrlNone, nil, err
			}
			if !truthy(test) {
				return ctrlNone, nil, nil
			}
		}
		ctl, v, err := in.exec(s.Body, loop)
		if err != nil {
			return ctrlNone, nil, err
		}
		switch ctl {
		case ctrlReturn:
			return ctl, v, nil
		case ctrlBreak:
			return ctrlNone, nil, nil
		}
		loop = loop.copy()
		if s.Update != nil {
			if _, err := in.eval(s.Update, loop); err != nil {
				return ctrlNone, nil, err
			}
		}
	}
}

func (in *Interp) execForOf(s *ForOfStmt, env *Env) (ctrl, Value, error) {
	iter, err := in.eval(s.Iter, env)
	if err != nil {
		return ctrlNone, nil, err
	}
	var items []Value
	if s.In {
		if !isNullish(iter) {
			for _, k := range objectKeys(iter) {
				items = append(items, k)
			}
		}
	} else {
		items, err = in.iterate(s.Iter.pos(), iter)
		if err != nil {
			return ctrlNone, nil, err
		}
	}
	for _, item := range items {
		scope := newEnv(env, false)
		err := in.bind(s.Target, item, scope, func(name string, v Value) error {
			if s.Kind == "" {
				return in.assignName(s.At, name, v, env)
			}
			scope.declare(name, v, s.Kind == "const")
			return nil
		})
		if err != nil {
			return ctrlNone, nil, err
		}
		ctl, v, err := in.exec(s.Body, scope)
		if err != nil {
			return ctrlNone, nil, err
		}
		switch ctl {
		case ctrlReturn:
			return ctl, v, nil
		case ctrlBreak:
			return ctrlNone, nil, nil
		}
	}
	return ctrlNone, nil, nil
}

func (in *Interp) execWhile(s *WhileStmt, env *Env) (ctrl, Value, error) {
	first := s.DoWhile
	for {
		if !first {
			test, err := in.eval(s.Test, env)
			if err != nil {
				return ctrlNone, nil, err
			}
			if !truthy(test) {
				return ctrlNone, nil, nil
			}
		}
		first = false
		ctl, v, err := in.exec(s.Body, env)
		if err != nil {
			return ctrlNone, nil, err
		}
		switch ctl {
		case ctrlReturn:
			return ctl, v, nil
		case ctrlBreak:
			return ctrlNone, nil, nil
		}
	}
}

func (in *Interp) execTry(s *TryStmt, env *Env) (ctl ctrl, v Value, err error) {
	ctl, v, err = in.execBlock(s.Block, env)
	var rerr *RuntimeError
	if err != nil && s.Handler != nil && errors.As(err, &rerr) && rerr.catchable() {
		scope := newEnv(env, false)
		if s.Param != nil {
			caught := rerr.Value
			if caught == nil {
				caught = errorObject("Error", rerr.Msg)
			}
			if berr := in.bind(s.Param, caught, scope, func(name string, v Value) error {
				scope.declare(name, v, false)
				return nil
			}); berr != nil {
				return ctrlNone, nil, berr
			}
		}
		ctl, v, err = in.execBlock(s.Handler, scope)
	}
	if s.Finally != nil {
		fctl, fv, ferr := in.execBlock(s.Finally, env)
		if ferr != nil || fctl != ctrlNone {
			return fctl, fv, ferr
		}
	}
	return ctl, v, err
}

func (in *Interp) execSwitch(s *SwitchStmt, env *Env) (ctrl, Value, error) {
	disc, err := in.eval(s.Disc, env)
	if err != nil {
		return ctrlNone, nil, err
	}
	start := -1
	for i, c := range s.Cases {
		if c.Test == nil {
			continue
		}
		v, err := in.eval(c.Test, env)
		if err != nil {
			return ctrlNone, nil, err
		}
		if strictEquals(disc, v) {
			start = i
			break
		}
	}
	if start < 0 {
		for i, c := range s.Cases {
			if c.Test == nil {
				start = i
			}
		}
	}
	if start < 0 {
		return ctrlNone, nil, nil
	}
	scope := newEnv(env, false)
	for _, c := range s.Cases[start:] {
		ctl, v, err := in.execList(c.Body, scope)
		if err != nil {
			return ctrlNone, nil, err
		}
		switch ctl {
		case ctrlBreak:
			return ctrlNone, nil, nil
		case ctrlReturn, ctrlContinue:
			return ctl, v, nil
		}
	}
	return ctrlNone, nil, nil
}

// bind destructures v into pattern p, calling declare for each name.
func (in *Interp) bind(p Pattern, v Value, env *Env, declare func(string, Value) error) error {
	switch t := p.(type) {
	case *Ident:
		return declare(t.Name, v)
	case *AssignPattern:
		if v == Undefined {
			var err error
			if v, err = in.eval(t.Default, env); err != nil {
				return err
			}
			if id, ok := t.Target.(*Ident); ok {
				nameFunction(v, id.Name)
			}
		}
		return in.bind(t.Target, v, env, declare)
	case *ObjectPattern:
		if isNullish(v) {
			return in.throw(t.At, "TypeError", "Cannot destructure '%s' as it is %s.", toString(v), toString(v))
		}
		used := map[string]bool{}
		for _, prop := range t.Props {
			key, err := in.propertyKey(prop.Key, prop.Computed, env)
			if err != nil {
				return err
			}
			used[key] = true
			member, err := in.getMember(t.At, v, key)
			if err != nil {
				return err
			}
			if err := in.bind(prop.Value, member, env, declare); err != nil {
				return err
			}
		}
		if t.Rest != nil {
			rest := literal.NewObject()
			for _, k := range objectKeys(v) {
				if used[k] {
					continue
				}
				member, err := in.getMember(t.At, v, k)
				if err != nil {
					return err
				}
				rest.Set(k, member)
			}
			return in.bind(t.Rest, rest, env, declare)
		}
		return nil
	case *ArrayPattern:
		items, err := in.iterate(t.At, v)
		if err != nil {
			return err
		}
		for i, elem := range t.Elems {
			if elem == nil {
				continue
			}
			if err := in.bind(elem, arg(items, i), env, declare); err != nil {
				return err
			}
		}
		if t.Rest != nil {
			var rest []Value
			if len(items) > len(t.Elems) {
				rest = append(rest, items[len(t.Elems):]...)
			}
			return in.bind(t.Rest, NewArray(rest...), env, declare)
		}
		return nil
	}
	return in.throw(p.pos(), "SyntaxError", "unsupported binding %T", p)
}

func (in *Interp) iterate(at Pos, v Value) ([]Value, error) {
	switch x := v.(type) {
	case *Array:
		return append([]Value(nil), x.Elems...), nil
	case string:
		var out []Value
		for _, r := range x {
			out = append(out, string(r))
		}
		return out, nil
	}
	return nil, in.throw(at, "TypeError", "%s is not iterable", describe(v))
}

func describe(v Value) string {
	switch v.(type) {
	case undefined, nil:
		return toString(v)
	case *literal.Object:
		return "object"
	case *Function:
		return "function"
	}
	return typeOf(v) + " " + toString(v)
}

func (in *Interp) assignName(at Pos, name string, v Value, env *Env) error {
	b := env.lookup(name)
	if b == nil {
		return in.throw(at, "ReferenceError", "%s is not defined", name)
	}
	if b.constant {
		return in.throw(at, "TypeError", "Assignment to constant variable.")
	}
	b.v = v
	return nil
}

// calls

func (in *Interp) call(at Pos, fnv Value, this Value, args []Value) (Value, error) {
	fn, ok := fnv.(*Function)
	if !ok {
		return nil, in.throw(at, "TypeError", "%s is not a function", describe(fnv))
	}
	in.depth++
	defer func() { in.depth-- }()
	if in.depth > maxCallDepth {
		return nil, in.fatal(at, ErrDepth)
	}
	if fn.native != nil {
		saved := in.at
		v, err := fn.native(in, this, args)
		in.at = saved
		if err != nil {
			var rerr *RuntimeError
			if errors.As(err, &rerr) {
				return nil, err
			}
			return nil, in.throw(at, "TypeError", "%s", err.Error())
		}
		return v, nil
	}
	if fn.errorType != "" {
		return in.construct(at, fn, args)
	}

	lit := fn.lit
	scope := newEnv(fn.env, true)
	if !lit.Arrow {
		scope.declare("this", this, false)
		scope.declare("arguments", NewArray(append([]Value(nil), args...)...), false)
	}
	if lit.Name != "" && !lit.Arrow && scope.lookup(lit.Name) == nil {
		scope.declare(lit.Name, fn, false)
	}
	declare := func(name string, v Value) error {
		scope.declare(name, v, false)
		return nil
	}
	for i, p := range lit.Params {
		if err := in.bind(p, arg(args, i), scope, declare); err != nil {
			return nil, err
		}
	}
	if lit.Rest != nil {
		var rest []Value
		if len(args) > len(lit.Params) {
			rest = append(rest, args[len(lit.Params):]...)
		}
		if err := in.bind(lit.Rest, NewArray(rest...), scope, declare); err != nil {
			return nil, err
		}
	}
	if lit.ExprBody != nil {
		return in.eval(lit.ExprBody, scope)
	}
	in.hoist(lit.Body.Body, scope)
	ctl, v, err := in.execList(lit.Body.Body, scope)
	if err != nil {
		return nil, err
	}
	if ctl == ctrlReturn {
		return v, nil
	}
	return Undefined, nil
}

// construct implements new for the Error family and plain functions.
func (in *Interp) construct(at Pos, fn *Function, args []Value) (Value, error) {
	if fn.errorType != "" {
		msg := ""
		if a := arg(args, 0); a != Undefined {
			msg = toString(a)
		}
		return errorObject(fn.errorType, msg), nil
	}
	if fn.native != nil || fn.lit.Arrow {
		return nil, in.throw(at, "TypeError", "%s is not a constructor", fn.Name)
	}
	obj := literal.NewObject()
	v, err := in.call(at, fn, obj, args)
	if err != nil {
		return nil, err
	}
	switch v.(type) {
	case *literal.Object, *Array, *Function:
		return v, nil
	}
	return obj, nil
}

func (in *Interp) logConsole(level string, args []Value) {
	parts := make([]string, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			parts[i] = s
			continue
		}
		parts[i] = inspect(a)
	}
	in.log.Debug("console."+level, "message", strings.Join(parts, " "))
}

func numberOp(op string, a, b float64) float64 {
	switch op {
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	case "%":
		if b == 0 {
			return math.NaN()
		}
		return math.Mod(a, b)
	case "**":
		return math.Pow(a, b)
	case "&":
		return float64(toInt32(a) & toInt32(b))
	case "|":
		return float64(toInt32(a) | toInt32(b))
	case "^":
		return float64(toInt32(a) ^ toInt32(b))
	case "<<":
		return float64(toInt32(a) << (uint32(toInt32(b)) & 31))
	case ">>":
		return float64(toInt32(a) >> (uint32(toInt32(b)) & 31))
	case ">>>":
		return float64(uint32(toInt32(a)) >> (uint32(toInt32(b)) & 31))
	}
	return math.NaN()
}

func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(int64(math.Trunc(f)))
}
