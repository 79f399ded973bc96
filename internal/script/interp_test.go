package script

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/3-lines-studio/studio/internal/literal"
	"github.com/3-lines-studio/studio/internal/vdom"
)

const navShim = `function __studioNavigate(event, to) {
  if (event && event.preventDefault) event.preventDefault();
  if (typeof __studioNavigationHook === "function") __studioNavigationHook(to);
}
`

func load(t *testing.T, src string, opts Options) *Interp {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	in := New(context.Background(), prog, opts)
	if err := in.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return in
}

func renderWith(t *testing.T, in *Interp, props *literal.Object, hooks *HookState) *vdom.Node {
	t.Helper()
	fn, _, ok := in.Component("")
	if !ok {
		t.Fatal("no component found")
	}
	node, err := in.Render(fn, props, hooks)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return node
}

func renderHTML(t *testing.T, src string, props *literal.Object) string {
	t.Helper()
	in := load(t, src, Options{})
	return vdom.Render(renderWith(t, in, props, NewHookState()))
}

func obj(kv ...any) *literal.Object {
	o := literal.NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1])
	}
	return o
}

func TestRenderComponents(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		props *literal.Object
		want  string
	}{
		{
			name:  "list",
			src:   `function Card({ title, items }) { return <div className="card"><h2>{title}</h2><ul>{items.map((it, i) => <li key={i}>{it}</li>)}</ul></div>; }`,
			props: obj("title", "Hi", "items", []any{"a", "b"}),
			want:  `<div class="card"><h2>Hi</h2><ul><li>a</li><li>b</li></ul></div>`,
		},
		{
			name: "destructuring",
			src: `const base = { a: 1, b: 2 };
function C({ label = "none", ...rest }) {
  const merged = { ...base, ...rest };
  const [first, , third = 9] = [1, 2];
  return <span data-x={Object.keys(merged).join(",")}>{label}-{first}-{third}</span>;
}`,
			props: obj("c", 3.0),
			want:  `<span data-x="a,b,c">none-1-9</span>`,
		},
		{
			name:  "fragment true",
			src:   `function F({ show }) { return <>{show && <b>yes</b>}{!show ? "no" : null}</>; }`,
			props: obj("show", true),
			want:  `<b>yes</b>`,
		},
		{
			name:  "fragment false",
			src:   `function F({ show }) { return <>{show && <b>yes</b>}{!show ? "no" : null}</>; }`,
			props: obj("show", false),
			want:  `no`,
		},
		{
			name:  "nested components",
			src:   "function Item({ label }) { const [n] = useState(label.length); return <li>{label}:{n}</li>; }\nfunction List() { return <ul><Item label=\"ab\" /><Item label=\"abc\" /></ul>; }",
			props: obj(),
			want:  `<ul><li>ab:2</li><li>abc:3</li></ul>`,
		},
		{
			name:  "default props",
			src:   "function D({ title }) { return <h1>{title}</h1>; }\nD.defaultProps = { title: \"Default\" };",
			props: obj(),
			want:  `<h1>Default</h1>`,
		},
		{
			name:  "style object",
			src:   `function S() { return <div style={{ marginTop: 4, opacity: 0.5, backgroundColor: "red" }} />; }`,
			props: obj(),
			want:  `<div style="background-color: red; margin-top: 4px; opacity: 0.5"></div>`,
		},
		{
			name:  "boolean attributes",
			src:   `function B() { return <input disabled={true} hidden={false} aria-hidden={true} />; }`,
			props: obj(),
			want:  `<input disabled aria-hidden="true">`,
		},
		{
			name:  "try catch",
			src:   `function C() { let msg = ""; try { throw new Error("boom"); } catch (e) { msg = e.message; } return <p>{msg}</p>; }`,
			props: obj(),
			want:  `<p>boom</p>`,
		},
		{
			name:  "inner html",
			src:   `function R() { return <div dangerouslySetInnerHTML={{ __html: "<em>hi</em>" }} />; }`,
			props: obj(),
			want:  `<div><em>hi</em></div>`,
		},
		{
			name:  "text escaping",
			src:   `function T() { return <p title={"a\"b"}>{"<x> & y"}</p>; }`,
			props: obj(),
			want:  `<p title="a&#34;b">&lt;x&gt; &amp; y</p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderHTML(t, tt.src, tt.props); got != tt.want {
				t.Errorf("render = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEvaluateExpressions(t *testing.T) {
	tests := []struct {
		expr string
		want Value
	}{
		{expr: `1 + 2 * 3`, want: 7.0},
		{expr: `2 ** 3 ** 2`, want: 512.0},
		{expr: `"a" + 1`, want: "a1"},
		{expr: `[1, 2, 3].map(x => x * 2).join("-")`, want: "2-4-6"},
		{expr: "`Hi ${\"bob\".toUpperCase()}!`", want: "Hi BOB!"},
		{expr: `null ?? "d"`, want: "d"},
		{expr: `0 || "x"`, want: "x"},
		{expr: `({ a: { b: 1 } }).a?.c?.d`, want: Undefined},
		{expr: `typeof notDeclared`, want: "undefined"},
		{expr: `[1, [2, [3]]].flat(Infinity).length`, want: 3.0},
		{expr: `(0.1 + 0.2).toFixed(2)`, want: "0.30"},
		{expr: `parseInt("42px")`, want: 42.0},
		{expr: `parseFloat("3.5rem")`, want: 3.5},
		{expr: `Math.max(1, 5, 3)`, want: 5.0},
		{expr: `"a,b".split(",").length`, want: 2.0},
		{expr: `JSON.stringify({ a: [1, "x"], b: null, f: () => 1 })`, want: `{"a":[1,"x"],"b":null}`},
		{expr: `[3, 1, 2].sort().join("")`, want: "123"},
		{expr: `[10, 9, 1].sort((a, b) => a - b).join(",")`, want: "1,9,10"},
		{expr: `String(12.5)`, want: "12.5"},
		{expr: `(() => { let n = 0; for (let i = 0; i < 5; i++) { if (i === 3) continue; n += i; } return n; })()`, want: 7.0},
		{expr: `(() => { switch (2) { case 1: return "one"; case 2: return "two"; default: return "d"; } })()`, want: "two"},
		{expr: `[..."ab", "c"].length`, want: 3.0},
		{expr: `Object.entries({ a: 1 }).map(([k, v]) => k + v).join()`, want: "a1"},
		{expr: `"hello".slice(-3).padStart(5, "*")`, want: "**llo"},
		{expr: `"a-b-c".replaceAll("-", "+")`, want: "a+b+c"},
		{expr: `[1, 2, 3].reduce((sum, x) => sum + x, 0)`, want: 6.0},
		{expr: `1 == "1" && null == undefined && 1 !== "1"`, want: true},
		{expr: `Array.from({ length: 3 }, (_, i) => i * i).join()`, want: "0,1,4"},
		{expr: `(1234567.891).toLocaleString()`, want: "1,234,567.891"},
		{expr: `"x" in { x: 1 }`, want: true},
		{expr: `new TypeError("t") instanceof Error`, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			in := load(t, "const result = "+tt.expr+";", Options{})
			got, ok := in.Lookup("result")
			if !ok {
				t.Fatal("result not bound")
			}
			if got != tt.want {
				t.Errorf("%s = %#v, want %#v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestNaNAndDivision(t *testing.T) {
	in := load(t, `const a = 1 / 0; const b = 0 / 0; const c = -"x";`, Options{})
	a, _ := in.Lookup("a")
	b, _ := in.Lookup("b")
	c, _ := in.Lookup("c")
	if !math.IsInf(a.(float64), 1) || !math.IsNaN(b.(float64)) || !math.IsNaN(c.(float64)) {
		t.Errorf("got %v %v %v", a, b, c)
	}
}

func TestStateAndHandlers(t *testing.T) {
	in := load(t, `function Counter() {
  const [count, setCount] = useState(0);
  return <button onClick={() => setCount(count + 1)}>Count: {count}</button>;
}`, Options{})
	hooks := NewHookState()
	node := renderWith(t, in, nil, hooks)
	if got := vdom.Render(node); got != "<button>Count: 0</button>" {
		t.Fatalf("first render = %s", got)
	}
	click := node.Handlers["click"]
	if click == nil {
		t.Fatal("expected click handler")
	}
	if err := click(); err != nil {
		t.Fatalf("click() error = %v", err)
	}
	if !hooks.Dirty() {
		t.Error("setter should mark hooks dirty")
	}
	hooks.MarkClean()
	node = renderWith(t, in, nil, hooks)
	if got := vdom.Render(node); got != "<button>Count: 1</button>" {
		t.Errorf("second render = %s", got)
	}
}

func TestEffectsRunWhenDepsChange(t *testing.T) {
	in := load(t, `function E() {
  const ref = useRef(0);
  useEffect(() => { ref.current = ref.current + 1; }, []);
  return <i>{ref.current}</i>;
}`, Options{})
	hooks := NewHookState()
	renderWith(t, in, nil, hooks)
	if got := hooks.PendingEffects(); got != 1 {
		t.Fatalf("PendingEffects() = %d, want 1", got)
	}
	if err := hooks.RunEffects(); err != nil {
		t.Fatalf("RunEffects() error = %v", err)
	}
	node := renderWith(t, in, nil, hooks)
	if got := hooks.PendingEffects(); got != 0 {
		t.Errorf("PendingEffects() after stable deps = %d, want 0", got)
	}
	if got := vdom.Render(node); got != "<i>1</i>" {
		t.Errorf("render = %s, want <i>1</i>", got)
	}
}

func TestNavigationHook(t *testing.T) {
	src := navShim + `function Nav() {
  return <a href="#" data-href={"/about"} onClick={(event) => __studioNavigate(event, "/about")}>About</a>;
}`
	var got string
	in := load(t, src, Options{Navigate: func(path string) { got = path }})
	node := renderWith(t, in, nil, nil)
	if html := vdom.Render(node); html != `<a href="#" data-href="/about">About</a>` {
		t.Errorf("render = %s", html)
	}
	if err := node.Handlers["click"](); err != nil {
		t.Fatalf("click() error = %v", err)
	}
	if got != "/about" {
		t.Errorf("navigated to %q, want /about", got)
	}

	quiet := load(t, src, Options{})
	node = renderWith(t, quiet, nil, nil)
	if err := node.Handlers["click"](); err != nil {
		t.Errorf("click() without hook error = %v", err)
	}
	if _, ok := quiet.Lookup(NavigationHookName); ok {
		t.Error("navigation hook should not be bound without a navigator")
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		opts    Options
		wantErr error
		line    int
	}{
		{name: "null member", src: "const x = null;\nfunction Broken() {\n  return x.value;\n}", line: 3},
		{name: "not a function", src: "function Broken() {\n  const f = 1;\n  return f();\n}", line: 3},
		{name: "thrown", src: "function Broken() {\n  throw new Error(\"nope\");\n}", line: 2},
		{name: "budget", src: "function Loop() { while (true) {} }", opts: Options{StepLimit: 1000}, wantErr: ErrBudget},
		{name: "recursion", src: "function R() { return R(); }", wantErr: ErrDepth},
		{name: "const assignment", src: "const a = 1;\nfunction C() {\n  a = 2;\n}", line: 3},
		{name: "object child", src: "function O() { return <p>{{ a: 1 }}</p>; }", line: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := load(t, tt.src, tt.opts)
			fn, _, ok := in.Component("")
			if !ok {
				t.Fatal("no component")
			}
			_, err := in.Render(fn, nil, nil)
			var rerr *RuntimeError
			if !errors.As(err, &rerr) {
				t.Fatalf("Render() error = %v, want *RuntimeError", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Render() error = %v, want %v", err, tt.wantErr)
			}
			if tt.line != 0 && rerr.Line != tt.line {
				t.Errorf("error line = %d, want %d (%v)", rerr.Line, tt.line, rerr)
			}
		})
	}
}

func TestCancelledContext(t *testing.T) {
	prog, err := Parse("function Loop() { for (;;) {} }")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := New(ctx, prog, Options{StepLimit: 1 << 30})
	if err := in.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	fn, _, _ := in.Component("")
	_, err = in.Render(fn, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

func TestComponentResolution(t *testing.T) {
	in := load(t, "function A() { return null; }\nfunction B() { return null; }\nconst notFn = 1;", Options{})
	tests := []struct {
		name string
		want string
	}{
		{name: "A", want: "A"},
		{name: "", want: "B"},
		{name: "Missing", want: "B"},
		{name: "notFn", want: "B"},
	}
	for _, tt := range tests {
		_, got, ok := in.Component(tt.name)
		if !ok || got != tt.want {
			t.Errorf("Component(%q) = %q, %v, want %q", tt.name, got, ok, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 1, want: "1"},
		{in: -0.5, want: "-0.5"},
		{in: 1e21, want: "1e+21"},
		{in: 1.5e-7, want: "1.5e-7"},
		{in: 123456789, want: "123456789"},
		{in: math.NaN(), want: "NaN"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSpaceBetweenExpressions(t *testing.T) {
	src := `function Name({ first, last }) {
  return <p>{first} {last}</p>;
}`
	got := renderHTML(t, src, obj("first", "Ada", "last", "Lovelace"))
	if got != "<p>Ada Lovelace</p>" {
		t.Errorf("render = %q, want %q", got, "<p>Ada Lovelace</p>")
	}
}
