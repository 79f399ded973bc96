package script

import (
	"fmt"
	"strings"
)

const maxNesting = 256

type parser struct {
	lx    *lexer
	tok   token
	prog  *Program
	depth int
	noIn  bool
}

type parserState struct {
	pos int
	tok token
}

// Parse reads a component module. Markup is desugared into calls to the
// element factory __h(tag, props, ...children).
func Parse(src string) (prog *Program, err error) {
	lines := lineStarts(src)
	p := &parser{lx: &lexer{src: src, lines: lines}, prog: &Program{lines: lines}}
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*SyntaxError)
			if !ok {
				panic(r)
			}
			prog, err = nil, se
		}
	}()

	p.advance()
	for p.tok.kind != tEOF {
		if st := p.statement(); st != nil {
			p.prog.Body = append(p.prog.Body, st)
		}
	}
	return p.prog, nil
}

func (p *parser) fail(off int, format string, args ...any) {
	line, col := position(p.lx.lines, off)
	panic(&SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) advance() {
	t, err := p.lx.next()
	if err != nil {
		panic(err)
	}
	p.tok = t
}

func (p *parser) resync(pos int) {
	p.lx.pos = pos
	p.advance()
}

func (p *parser) save() parserState { return parserState{pos: p.lx.pos, tok: p.tok} }

func (p *parser) restore(s parserState) {
	p.lx.pos = s.pos
	p.tok = s.tok
}

func (p *parser) is(punct string) bool {
	return p.tok.kind == tPunct && p.tok.text == punct
}

func (p *parser) isKw(word string) bool {
	return p.tok.kind == tIdent && p.tok.text == word
}

func (p *parser) eat(punct string) bool {
	if p.is(punct) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(punct string) token {
	if !p.is(punct) {
		p.fail(p.tok.start, "expected %q, found %s", punct, p.describe())
	}
	t := p.tok
	p.advance()
	return t
}

func (p *parser) describe() string {
	switch p.tok.kind {
	case tEOF:
		return "end of input"
	case tStr:
		return "string"
	case tNum:
		return "number " + p.tok.text
	default:
		return fmt.Sprintf("%q", p.tok.text)
	}
}

func (p *parser) enter() {
	p.depth++
	if p.depth > maxNesting {
		p.fail(p.tok.start, "nesting too deep")
	}
}

func (p *parser) leave() { p.depth-- }

func (p *parser) semicolon() {
	if p.eat(";") {
		return
	}
	if p.is("}") || p.tok.kind == tEOF || p.tok.nl {
		return
	}
	p.fail(p.tok.start, "expected ';', found %s", p.describe())
}

// rawAhead returns the source after the current token with spaces skipped.
func (p *parser) rawAhead() string {
	src := p.lx.src
	i := p.tok.end
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	return src[i:]
}

// statements

func (p *parser) statement() Stmt {
	p.enter()
	defer p.leave()

	t := p.tok
	at := Pos(t.start)
	if t.kind == tPunct {
		switch t.text {
		case "{":
			return p.block()
		case ";":
			p.advance()
			return &EmptyStmt{At: at}
		}
	}
	if t.kind == tIdent {
		switch t.text {
		case "var", "let", "const":
			d := p.varDecl()
			p.semicolon()
			return d
		case "function":
			return &FuncDecl{At: at, Func: p.function(true)}
		case "async":
			if strings.HasPrefix(p.rawAhead(), "function") {
				p.advance()
				return &FuncDecl{At: at, Func: p.function(true)}
			}
		case "return":
			p.advance()
			var v Expr
			if !p.is(";") && !p.is("}") && p.tok.kind != tEOF && !p.tok.nl {
				v = p.expression()
			}
			p.semicolon()
			return &ReturnStmt{At: at, Value: v}
		case "if":
			p.advance()
			p.expect("(")
			test := p.expression()
			p.expect(")")
			then := p.statement()
			var els Stmt
			if p.isKw("else") {
				p.advance()
				els = p.statement()
			}
			return &IfStmt{At: at, Test: test, Then: then, Else: els}
		case "for":
			return p.forStatement()
		case "while":
			p.advance()
			p.expect("(")
			test := p.expression()
			p.expect(")")
			return &WhileStmt{At: at, Test: test, Body: p.statement()}
		case "do":
			p.advance()
			body := p.statement()
			if !p.isKw("while") {
				p.fail(p.tok.start, "expected while after do body")
			}
			p.advance()
			p.expect("(")
			test := p.expression()
			p.expect(")")
			p.eat(";")
			return &WhileStmt{At: at, Test: test, Body: body, DoWhile: true}
		case "break":
			p.advance()
			p.labelNotSupported()
			p.semicolon()
			return &BreakStmt{At: at}
		case "continue":
			p.advance()
			p.labelNotSupported()
			p.semicolon()
			return &ContinueStmt{At: at}
		case "throw":
			p.advance()
			if p.tok.nl {
				p.fail(p.tok.start, "line break after throw")
			}
			v := p.expression()
			p.semicolon()
			return &ThrowStmt{At: at, Value: v}
		case "try":
			return p.tryStatement()
		case "switch":
			return p.switchStatement()
		case "import":
			if !strings.HasPrefix(p.rawAhead(), "(") {
				return p.importDecl()
			}
		case "export":
			return p.exportDecl()
		case "class":
			p.fail(t.start, "class declarations are not supported")
		}
	}
	e := p.expression()
	p.semicolon()
	return &ExprStmt{At: at, X: e}
}

func (p *parser) labelNotSupported() {
	if p.tok.kind == tIdent && !p.tok.nl {
		p.fail(p.tok.start, "labels are not supported")
	}
}

func (p *parser) block() *BlockStmt {
	at := Pos(p.expect("{").start)
	b := &BlockStmt{At: at}
	for !p.is("}") {
		if p.tok.kind == tEOF {
			p.fail(int(at), "unterminated block")
		}
		if st := p.statement(); st != nil {
			b.Body = append(b.Body, st)
		}
	}
	p.advance()
	return b
}

func (p *parser) varDecl() *VarDecl {
	d := &VarDecl{At: Pos(p.tok.start), Kind: p.tok.text}
	p.advance()
	for {
		target := p.bindingTarget()
		var init Expr
		if p.eat("=") {
			init = p.assign()
		}
		d.Decls = append(d.Decls, &Declarator{Target: target, Init: init})
		if !p.eat(",") {
			return d
		}
	}
}

func (p *parser) forStatement() Stmt {
	at := Pos(p.tok.start)
	p.advance()
	if p.isKw("await") {
		p.fail(p.tok.start, "for await is not supported")
	}
	p.expect("(")

	var init Stmt
	switch {
	case p.is(";"):
	case p.isKw("var") || p.isKw("let") || p.isKw("const"):
		kind := p.tok.text
		declAt := Pos(p.tok.start)
		p.advance()
		target := p.bindingTarget()
		if p.isKw("of") || p.isKw("in") {
			return p.forOfRest(at, kind, target)
		}
		var first Expr
		if p.eat("=") {
			p.noIn = true
			first = p.assign()
			p.noIn = false
		}
		d := &VarDecl{At: declAt, Kind: kind, Decls: []*Declarator{{Target: target, Init: first}}}
		for p.eat(",") {
			t := p.bindingTarget()
			var e Expr
			if p.eat("=") {
				e = p.assign()
			}
			d.Decls = append(d.Decls, &Declarator{Target: t, Init: e})
		}
		init = d
	default:
		p.noIn = true
		e := p.expression()
		p.noIn = false
		if p.isKw("of") || p.isKw("in") {
			id, ok := e.(*Ident)
			if !ok {
				p.fail(p.tok.start, "unsupported for-of target")
			}
			return p.forOfRest(at, "", id)
		}
		init = &ExprStmt{At: e.pos(), X: e}
	}

	p.expect(";")
	var test, update Expr
	if !p.is(";") {
		test = p.expression()
	}
	p.expect(";")
	if !p.is(")") {
		update = p.expression()
	}
	p.expect(")")
	return &ForStmt{At: at, Init: init, Test: test, Update: update, Body: p.statement()}
}

func (p *parser) forOfRest(at Pos, kind string, target Pattern) Stmt {
	in := p.tok.text == "in"
	p.advance()
	iter := p.assign()
	p.expect(")")
	return &ForOfStmt{At: at, Kind: kind, Target: target, Iter: iter, In: in, Body: p.statement()}
}

func (p *parser) tryStatement() Stmt {
	at := Pos(p.tok.start)
	p.advance()
	st := &TryStmt{At: at, Block: p.block()}
	if p.isKw("catch") {
		p.advance()
		if p.eat("(") {
			st.Param = p.bindingTarget()
			p.expect(")")
		}
		st.Handler = p.block()
	}
	if p.isKw("finally") {
		p.advance()
		st.Finally = p.block()
	}
	if st.Handler == nil && st.Finally == nil {
		p.fail(int(at), "try without catch or finally")
	}
	return st
}

func (p *parser) switchStatement() Stmt {
	at := Pos(p.tok.start)
	p.advance()
	p.expect("(")
	disc := p.expression()
	p.expect(")")
	p.expect("{")
	st := &SwitchStmt{At: at, Disc: disc}
	for !p.eat("}") {
		c := &SwitchCase{}
		switch {
		case p.isKw("case"):
			p.advance()
			c.Test = p.expression()
		case p.isKw("default"):
			p.advance()
		default:
			p.fail(p.tok.start, "expected case or default, found %s", p.describe())
		}
		p.expect(":")
		for !p.isKw("case") && !p.isKw("default") && !p.is("}") {
			if p.tok.kind == tEOF {
				p.fail(int(at), "unterminated switch")
			}
			c.Body = append(c.Body, p.statement())
		}
		st.Cases = append(st.Cases, c)
	}
	return st
}

// importDecl skips an import declaration up to its module specifier.
func (p *parser) importDecl() Stmt {
	at := Pos(p.tok.start)
	p.advance()
	for p.tok.kind != tStr {
		if p.tok.kind == tEOF {
			p.fail(int(at), "unterminated import")
		}
		p.advance()
	}
	p.advance()
	p.semicolon()
	return &EmptyStmt{At: at}
}

func (p *parser) exportDecl() Stmt {
	at := Pos(p.tok.start)
	p.advance()
	switch {
	case p.isKw("default"):
		p.advance()
		if p.isKw("function") || (p.isKw("async") && strings.HasPrefix(p.rawAhead(), "function")) {
			if p.isKw("async") {
				p.advance()
			}
			fn := p.function(false)
			if fn.Name != "" {
				p.prog.DefaultExport = fn.Name
				return &FuncDecl{At: at, Func: fn}
			}
			p.prog.DefaultExport = defaultComponent
			return anonymousComponent(at, fn)
		}
		if p.tok.kind == tIdent && !isReserved(p.tok.text) {
			name := p.tok.text
			save := p.save()
			p.advance()
			if p.is(";") || p.is("}") || p.tok.kind == tEOF || p.tok.nl {
				p.eat(";")
				p.prog.DefaultExport = name
				return &EmptyStmt{At: at}
			}
			p.restore(save)
		}
		e := p.assign()
		p.semicolon()
		p.prog.DefaultExport = defaultComponent
		return anonymousComponent(at, e)
	case p.is("{"):
		p.advance()
		for !p.eat("}") {
			if p.tok.kind != tIdent {
				p.fail(p.tok.start, "bad export list")
			}
			local := p.tok.text
			p.advance()
			if p.isKw("as") {
				p.advance()
				if p.tok.text == "default" {
					p.prog.DefaultExport = local
				}
				p.advance()
			}
			p.eat(",")
		}
		if p.isKw("from") {
			p.advance()
			p.advance()
		}
		p.semicolon()
		return &EmptyStmt{At: at}
	default:
		return p.statement()
	}
}

const defaultComponent = "Component"

func anonymousComponent(at Pos, e Expr) Stmt {
	return &VarDecl{At: at, Kind: "const", Decls: []*Declarator{{
		Target: &Ident{At: at, Name: defaultComponent},
		Init:   e,
	}}}
}

// functions

func (p *parser) function(requireName bool) *FuncLit {
	at := Pos(p.tok.start)
	p.advance()
	if p.is("*") {
		p.fail(p.tok.start, "generators are not supported")
	}
	fn := &FuncLit{At: at}
	if p.tok.kind == tIdent {
		fn.Name = p.tok.text
		p.advance()
	} else if requireName {
		p.fail(p.tok.start, "function name expected")
	}
	fn.Params, fn.Rest = p.params()
	fn.Body = p.block()
	return fn
}

func (p *parser) params() ([]Pattern, Pattern) {
	p.expect("(")
	var params []Pattern
	var rest Pattern
	for !p.eat(")") {
		if p.eat("...") {
			rest = p.bindingTarget()
			p.eat(",")
			continue
		}
		params = append(params, p.bindingElement())
		if !p.is(")") {
			p.expect(",")
		}
	}
	return params, rest
}

func (p *parser) bindingElement() Pattern {
	t := p.bindingTarget()
	if p.is("=") {
		at := Pos(p.tok.start)
		p.advance()
		return &AssignPattern{At: at, Target: t, Default: p.assign()}
	}
	return t
}

func (p *parser) bindingTarget() Pattern {
	at := Pos(p.tok.start)
	switch {
	case p.tok.kind == tIdent && !isReserved(p.tok.text):
		name := p.tok.text
		p.advance()
		return &Ident{At: at, Name: name}
	case p.is("{"):
		p.advance()
		pat := &ObjectPattern{At: at}
		for !p.eat("}") {
			if p.eat("...") {
				pat.Rest = p.bindingTarget()
				p.eat(",")
				continue
			}
			prop := &PatternProp{}
			keyAt := Pos(p.tok.start)
			switch {
			case p.is("["):
				p.advance()
				prop.Key = p.assign()
				prop.Computed = true
				p.expect("]")
			case p.tok.kind == tIdent || p.tok.kind == tStr:
				prop.Key = &StringLit{At: keyAt, Value: p.tok.text}
				p.advance()
			case p.tok.kind == tNum:
				prop.Key = &StringLit{At: keyAt, Value: formatNumber(p.tok.num)}
				p.advance()
			default:
				p.fail(p.tok.start, "bad destructuring key %s", p.describe())
			}
			if p.eat(":") {
				prop.Value = p.bindingElement()
			} else {
				key, ok := prop.Key.(*StringLit)
				if !ok || prop.Computed {
					p.fail(int(keyAt), "computed key needs a binding")
				}
				var target Pattern = &Ident{At: keyAt, Name: key.Value}
				if p.is("=") {
					defAt := Pos(p.tok.start)
					p.advance()
					target = &AssignPattern{At: defAt, Target: target, Default: p.assign()}
				}
				prop.Value = target
			}
			pat.Props = append(pat.Props, prop)
			if !p.is("}") {
				p.expect(",")
			}
		}
		return pat
	case p.is("["):
		p.advance()
		pat := &ArrayPattern{At: at}
		for !p.eat("]") {
			if p.eat(",") {
				pat.Elems = append(pat.Elems, nil)
				continue
			}
			if p.eat("...") {
				pat.Rest = p.bindingTarget()
				p.eat(",")
				continue
			}
			pat.Elems = append(pat.Elems, p.bindingElement())
			if !p.is("]") {
				p.expect(",")
			}
		}
		return pat
	}
	p.fail(p.tok.start, "binding expected, found %s", p.describe())
	return nil
}

var reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "default": true, "delete": true, "do": true, "else": true,
	"export": true, "extends": true, "false": true, "finally": true, "for": true,
	"function": true, "if": true, "import": true, "in": true, "instanceof": true,
	"new": true, "null": true, "return": true, "switch": true, "this": true,
	"throw": true, "true": true, "try": true, "typeof": true, "var": true,
	"void": true, "while": true, "let": true,
}

func isReserved(word string) bool { return reserved[word] }
