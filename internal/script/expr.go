package script

import (
	"strings"
)

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "<<=": true, ">>=": true, ">>>=": true, "&=": true, "|=": true,
	"^=": true, "&&=": true, "||=": true, "??=": true,
}

var binaryPrec = map[string]int{
	"??": 1,
	"||": 2,
	"&&": 3,
	"|":  4,
	"^":  5,
	"&":  6,
	"==": 7, "!=": 7, "===": 7, "!==": 7,
	"<": 8, ">": 8, "<=": 8, ">=": 8, "instanceof": 8, "in": 8,
	"<<": 9, ">>": 9, ">>>": 9,
	"+": 10, "-": 10,
	"*": 11, "/": 11, "%": 11,
	"**": 12,
}

func (p *parser) expression() Expr {
	first := p.assign()
	if !p.is(",") {
		return first
	}
	seq := &SeqExpr{At: first.pos(), Exprs: []Expr{first}}
	for p.eat(",") {
		seq.Exprs = append(seq.Exprs, p.assign())
	}
	return seq
}

func (p *parser) assign() Expr {
	p.enter()
	defer p.leave()

	if fn := p.tryArrow(); fn != nil {
		return fn
	}
	left := p.conditional()
	if p.tok.kind == tPunct && assignOps[p.tok.text] {
		switch left.(type) {
		case *Ident, *MemberExpr:
		default:
			p.fail(p.tok.start, "invalid assignment target")
		}
		op := p.tok
		p.advance()
		return &AssignExpr{At: Pos(op.start), Op: op.text, Target: left, Value: p.assign()}
	}
	return left
}

// tryArrow parses an arrow function at the current token, or leaves the
// parser untouched and returns nil.
func (p *parser) tryArrow() *FuncLit {
	at := Pos(p.tok.start)
	saved := p.save()
	if p.isKw("async") {
		ahead := p.rawAhead()
		if strings.HasPrefix(ahead, "(") || (ahead != "" && isIdentStart(ahead[0])) {
			p.advance()
		}
	}
	switch {
	case p.tok.kind == tIdent && !isReserved(p.tok.text) && strings.HasPrefix(p.rawAhead(), "=>"):
		param := &Ident{At: Pos(p.tok.start), Name: p.tok.text}
		p.advance()
		p.expect("=>")
		return p.arrowBody(at, []Pattern{param}, nil)
	case p.is("("):
		params, rest, ok := p.arrowParams()
		if !ok || !p.is("=>") || p.tok.nl {
			p.restore(saved)
			return nil
		}
		p.advance()
		return p.arrowBody(at, params, rest)
	}
	p.restore(saved)
	return nil
}

func (p *parser) arrowParams() (params []Pattern, rest Pattern, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, syn := r.(*SyntaxError); !syn {
				panic(r)
			}
			ok = false
		}
	}()
	params, rest = p.params()
	return params, rest, true
}

func (p *parser) arrowBody(at Pos, params []Pattern, rest Pattern) *FuncLit {
	fn := &FuncLit{At: at, Params: params, Rest: rest, Arrow: true}
	if p.is("{") {
		fn.Body = p.block()
	} else {
		fn.ExprBody = p.assign()
	}
	return fn
}

func (p *parser) conditional() Expr {
	test := p.binary(1)
	if !p.is("?") {
		return test
	}
	at := Pos(p.tok.start)
	p.advance()
	noIn := p.noIn
	p.noIn = false
	then := p.assign()
	p.noIn = noIn
	p.expect(":")
	return &CondExpr{At: at, Test: test, Then: then, Else: p.assign()}
}

func (p *parser) binaryOp() (string, int) {
	switch p.tok.kind {
	case tPunct:
		return p.tok.text, binaryPrec[p.tok.text]
	case tIdent:
		if p.tok.text == "instanceof" || (p.tok.text == "in" && !p.noIn) {
			return p.tok.text, binaryPrec[p.tok.text]
		}
	}
	return "", 0
}

func (p *parser) binary(minPrec int) Expr {
	left := p.unary()
	for {
		op, prec := p.binaryOp()
		if prec == 0 || prec < minPrec {
			return left
		}
		at := Pos(p.tok.start)
		p.advance()
		next := prec + 1
		if op == "**" {
			next = prec
		}
		right := p.binary(next)
		switch op {
		case "&&", "||", "??":
			left = &LogicalExpr{At: at, Op: op, L: left, R: right}
		default:
			left = &BinaryExpr{At: at, Op: op, L: left, R: right}
		}
	}
}

func (p *parser) unary() Expr {
	at := Pos(p.tok.start)
	switch {
	case p.tok.kind == tPunct:
		switch p.tok.text {
		case "!", "-", "+", "~":
			op := p.tok.text
			p.advance()
			return &UnaryExpr{At: at, Op: op, X: p.unary()}
		case "++", "--":
			op := p.tok.text
			p.advance()
			return &UpdateExpr{At: at, Op: op, Prefix: true, X: p.updateTarget(p.unary())}
		}
	case p.tok.kind == tIdent:
		switch p.tok.text {
		case "typeof", "void", "delete":
			op := p.tok.text
			p.advance()
			return &UnaryExpr{At: at, Op: op, X: p.unary()}
		case "await":
			p.advance()
			return p.unary()
		}
	}
	x := p.callMember()
	if (p.is("++") || p.is("--")) && !p.tok.nl {
		op := p.tok.text
		p.advance()
		return &UpdateExpr{At: at, Op: op, X: p.updateTarget(x)}
	}
	return x
}

func (p *parser) updateTarget(x Expr) Expr {
	switch x.(type) {
	case *Ident, *MemberExpr:
		return x
	}
	p.fail(int(x.pos()), "invalid update target")
	return nil
}

func (p *parser) callMember() Expr {
	var x Expr
	if p.isKw("new") {
		at := Pos(p.tok.start)
		p.advance()
		callee := p.primary()
		for {
			if p.eat(".") {
				callee = &MemberExpr{At: callee.pos(), Object: callee, Prop: p.propertyName()}
				continue
			}
			if p.is("[") {
				p.advance()
				prop := p.expression()
				p.expect("]")
				callee = &MemberExpr{At: callee.pos(), Object: callee, Prop: prop, Computed: true}
				continue
			}
			break
		}
		var args []Expr
		if p.is("(") {
			args = p.arguments()
		}
		x = &NewExpr{At: at, Callee: callee, Args: args}
	} else {
		x = p.primary()
	}

	for {
		switch {
		case p.is("."):
			p.advance()
			x = &MemberExpr{At: x.pos(), Object: x, Prop: p.propertyName()}
		case p.is("?."):
			p.advance()
			switch {
			case p.is("("):
				x = &CallExpr{At: x.pos(), Callee: x, Args: p.arguments(), Optional: true}
			case p.is("["):
				p.advance()
				prop := p.expression()
				p.expect("]")
				x = &MemberExpr{At: x.pos(), Object: x, Prop: prop, Computed: true, Optional: true}
			default:
				x = &MemberExpr{At: x.pos(), Object: x, Prop: p.propertyName(), Optional: true}
			}
		case p.is("["):
			p.advance()
			prop := p.expression()
			p.expect("]")
			x = &MemberExpr{At: x.pos(), Object: x, Prop: prop, Computed: true}
		case p.is("("):
			x = &CallExpr{At: x.pos(), Callee: x, Args: p.arguments()}
		case p.tok.kind == tBacktick && !p.tok.nl:
			p.fail(p.tok.start, "tagged templates are not supported")
		case p.is("!") && !p.tok.nl && p.nonNullAssertion():
			p.advance()
		default:
			return x
		}
	}
}

// nonNullAssertion reports whether a "!" after an operand is a leftover
// type assertion rather than the start of "!=" or a new expression.
func (p *parser) nonNullAssertion() bool {
	ahead := p.rawAhead()
	if len(ahead) < 2 {
		return true
	}
	switch ahead[1] {
	case '.', ')', ']', ';', ',', '}', '\n', ' ':
		return true
	}
	return false
}

func (p *parser) propertyName() Expr {
	if p.tok.kind != tIdent {
		p.fail(p.tok.start, "property name expected, found %s", p.describe())
	}
	prop := &StringLit{At: Pos(p.tok.start), Value: p.tok.text}
	p.advance()
	return prop
}

func (p *parser) arguments() []Expr {
	p.expect("(")
	var args []Expr
	for !p.eat(")") {
		if p.is("...") {
			at := Pos(p.tok.start)
			p.advance()
			args = append(args, &SpreadExpr{At: at, X: p.assign()})
		} else {
			args = append(args, p.assign())
		}
		if !p.is(")") {
			p.expect(",")
		}
	}
	return args
}

func (p *parser) primary() Expr {
	t := p.tok
	at := Pos(t.start)
	switch t.kind {
	case tNum:
		p.advance()
		return &NumberLit{At: at, Value: t.num}
	case tStr:
		p.advance()
		return &StringLit{At: at, Value: t.text}
	case tBacktick:
		return p.template()
	case tIdent:
		switch t.text {
		case "true", "false":
			p.advance()
			return &BoolLit{At: at, Value: t.text == "true"}
		case "null":
			p.advance()
			return &NullLit{At: at}
		case "function":
			return p.function(false)
		case "async":
			if strings.HasPrefix(p.rawAhead(), "function") {
				p.advance()
				return p.function(false)
			}
		case "class":
			p.fail(t.start, "class expressions are not supported")
		case "import":
			p.fail(t.start, "dynamic import is not supported")
		}
		if isReserved(t.text) && t.text != "this" {
			p.fail(t.start, "unexpected keyword %q", t.text)
		}
		p.advance()
		return &Ident{At: at, Name: t.text}
	case tPunct:
		switch t.text {
		case "(":
			p.advance()
			noIn := p.noIn
			p.noIn = false
			e := p.expression()
			p.noIn = noIn
			p.expect(")")
			return e
		case "[":
			return p.arrayLiteral()
		case "{":
			return p.objectLiteral()
		case "<":
			return p.markup()
		}
	case tEOF:
		p.fail(t.start, "unexpected end of input")
	}
	p.fail(t.start, "unexpected %s", p.describe())
	return nil
}

func (p *parser) arrayLiteral() Expr {
	arr := &ArrayLit{At: Pos(p.tok.start)}
	p.advance()
	for !p.eat("]") {
		if p.eat(",") {
			arr.Elems = append(arr.Elems, nil)
			continue
		}
		if p.is("...") {
			at := Pos(p.tok.start)
			p.advance()
			arr.Elems = append(arr.Elems, &SpreadExpr{At: at, X: p.assign()})
		} else {
			arr.Elems = append(arr.Elems, p.assign())
		}
		if !p.is("]") {
			p.expect(",")
		}
	}
	return arr
}

func (p *parser) objectLiteral() Expr {
	obj := &ObjectLit{At: Pos(p.tok.start)}
	p.advance()
	for !p.eat("}") {
		at := Pos(p.tok.start)
		if p.eat("...") {
			obj.Props = append(obj.Props, &Property{At: at, Value: p.assign(), Spread: true})
			if !p.is("}") {
				p.expect(",")
			}
			continue
		}
		if p.isKw("async") && !strings.HasPrefix(p.rawAhead(), ":") && !strings.HasPrefix(p.rawAhead(), "(") {
			p.advance()
		}
		if (p.isKw("get") || p.isKw("set")) && !strings.HasPrefix(p.rawAhead(), ":") &&
			!strings.HasPrefix(p.rawAhead(), "(") && !strings.HasPrefix(p.rawAhead(), ",") &&
			!strings.HasPrefix(p.rawAhead(), "}") {
			p.fail(p.tok.start, "getters and setters are not supported")
		}
		prop := &Property{At: at}
		shorthand := ""
		switch {
		case p.is("["):
			p.advance()
			prop.Key = p.assign()
			prop.Computed = true
			p.expect("]")
		case p.tok.kind == tIdent:
			shorthand = p.tok.text
			prop.Key = &StringLit{At: at, Value: p.tok.text}
			p.advance()
		case p.tok.kind == tStr:
			prop.Key = &StringLit{At: at, Value: p.tok.text}
			p.advance()
		case p.tok.kind == tNum:
			prop.Key = &StringLit{At: at, Value: formatNumber(p.tok.num)}
			p.advance()
		default:
			p.fail(p.tok.start, "property key expected, found %s", p.describe())
		}
		switch {
		case p.eat(":"):
			prop.Value = p.assign()
		case p.is("("):
			params, rest := p.params()
			prop.Value = &FuncLit{At: at, Name: keyName(prop), Params: params, Rest: rest, Body: p.block()}
		case shorthand != "" && !isReserved(shorthand):
			prop.Value = &Ident{At: at, Name: shorthand}
		default:
			p.fail(p.tok.start, "expected ':' after property key")
		}
		obj.Props = append(obj.Props, prop)
		if !p.is("}") {
			p.expect(",")
		}
	}
	return obj
}

func keyName(prop *Property) string {
	if s, ok := prop.Key.(*StringLit); ok && !prop.Computed {
		return s.Value
	}
	return ""
}

// template reads a template literal from the raw source, switching back to
// tokens for each substitution.
func (p *parser) template() Expr {
	lit := &TemplateLit{At: Pos(p.tok.start)}
	src := p.lx.src
	i := p.tok.end
	var b strings.Builder
	for {
		if i >= len(src) {
			p.fail(int(lit.At), "unterminated template literal")
		}
		c := src[i]
		switch {
		case c == '`':
			lit.Quasis = append(lit.Quasis, b.String())
			p.resync(i + 1)
			return lit
		case c == '\\':
			n, err := p.lx.escape(&b, i)
			if err != nil {
				panic(err)
			}
			i = n
		case c == '$' && i+1 < len(src) && src[i+1] == '{':
			lit.Quasis = append(lit.Quasis, b.String())
			b.Reset()
			p.resync(i + 2)
			lit.Exprs = append(lit.Exprs, p.expression())
			if !p.is("}") {
				p.fail(p.tok.start, "expected '}' in template literal")
			}
			i = p.tok.end
		case c == '\r':
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
}
