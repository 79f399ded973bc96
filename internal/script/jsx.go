package script

import (
	"html"
	"strings"
)

// ElementFactory is the name markup is desugared to.
const ElementFactory = "__h"

// markup reads an element starting at the current "<" token straight from
// the source and resumes tokenizing after it.
func (p *parser) markup() Expr {
	e, end := p.element(p.tok.start)
	p.resync(end)
	return e
}

func (p *parser) element(lt int) (Expr, int) {
	p.enter()
	defer p.leave()

	src := p.lx.src
	i := skipBlank(src, lt+1)
	if i < len(src) && src[i] == '>' {
		children, end := p.children(i+1, "", lt)
		return factoryCall(lt, &Ident{At: Pos(lt), Name: "Fragment"}, nil, children), end
	}
	name, i := readTagName(src, i)
	if name == "" {
		p.fail(lt, "element name expected")
	}
	tag := tagExpr(lt, name)

	var props []*Property
	for {
		i = p.skipAttrSpace(i)
		if i >= len(src) {
			p.fail(lt, "unterminated element <%s>", name)
		}
		switch c := src[i]; {
		case c == '/':
			j := skipBlank(src, i+1)
			if j >= len(src) || src[j] != '>' {
				p.fail(i, "expected '>' after '/'")
			}
			return factoryCall(lt, tag, props, nil), j + 1
		case c == '>':
			children, end := p.children(i+1, name, lt)
			return factoryCall(lt, tag, props, children), end
		case c == '{':
			p.resync(i + 1)
			at := Pos(p.tok.start)
			p.expect("...")
			props = append(props, &Property{At: at, Value: p.assign(), Spread: true})
			if !p.is("}") {
				p.fail(p.tok.start, "expected '}' after spread attribute")
			}
			i = p.tok.end
		default:
			attr, j := readTagName(src, i)
			if attr == "" {
				p.fail(i, "unexpected %q in element <%s>", c, name)
			}
			key := &StringLit{At: Pos(i), Value: attr}
			j = skipBlank(src, j)
			if j >= len(src) || src[j] != '=' {
				props = append(props, &Property{At: Pos(i), Key: key, Value: &BoolLit{At: Pos(i), Value: true}})
				i = j
				continue
			}
			j = skipBlank(src, j+1)
			if j >= len(src) {
				p.fail(j, "attribute value expected")
			}
			switch src[j] {
			case '"', '\'':
				end := strings.IndexByte(src[j+1:], src[j])
				if end < 0 {
					p.fail(j, "unterminated attribute value")
				}
				value := html.UnescapeString(src[j+1 : j+1+end])
				props = append(props, &Property{At: Pos(i), Key: key, Value: &StringLit{At: Pos(j), Value: value}})
				i = j + 1 + end + 1
			case '{':
				p.resync(j + 1)
				v := p.assign()
				if !p.is("}") {
					p.fail(p.tok.start, "expected '}' after attribute expression")
				}
				props = append(props, &Property{At: Pos(i), Key: key, Value: v})
				i = p.tok.end
			case '<':
				v, end := p.element(j)
				props = append(props, &Property{At: Pos(i), Key: key, Value: v})
				i = end
			default:
				p.fail(j, "attribute value expected")
			}
		}
	}
}

func (p *parser) children(i int, name string, lt int) ([]Expr, int) {
	src := p.lx.src
	var out []Expr
	for {
		if i >= len(src) {
			p.fail(lt, "unterminated element <%s>", name)
		}
		switch src[i] {
		case '<':
			j := skipBlank(src, i+1)
			if j < len(src) && src[j] == '/' {
				j = skipBlank(src, j+1)
				closing, k := readTagName(src, j)
				if closing != name {
					p.fail(i, "expected </%s>, found </%s>", name, closing)
				}
				k = skipBlank(src, k)
				if k >= len(src) || src[k] != '>' {
					p.fail(k, "expected '>' in closing tag")
				}
				return out, k + 1
			}
			e, end := p.element(i)
			out = append(out, e)
			i = end
		case '{':
			p.resync(i + 1)
			if p.is("}") {
				i = p.tok.end
				continue
			}
			var e Expr
			if p.is("...") {
				at := Pos(p.tok.start)
				p.advance()
				e = &SpreadExpr{At: at, X: p.assign()}
			} else {
				e = p.expression()
			}
			if !p.is("}") {
				p.fail(p.tok.start, "expected '}' after child expression")
			}
			out = append(out, e)
			i = p.tok.end
		default:
			j := i
			for j < len(src) && src[j] != '<' && src[j] != '{' {
				j++
			}
			if text := cleanText(src[i:j]); text != "" {
				out = append(out, &StringLit{At: Pos(i), Value: html.UnescapeString(text)})
			}
			i = j
		}
	}
}

// skipAttrSpace skips blanks and comments between attributes.
func (p *parser) skipAttrSpace(i int) int {
	src := p.lx.src
	for {
		i = skipBlank(src, i)
		if !strings.HasPrefix(src[i:], "/*") && !strings.HasPrefix(src[i:], "//") {
			return i
		}
		if src[i+1] == '/' {
			nl := strings.IndexByte(src[i:], '\n')
			if nl < 0 {
				return len(src)
			}
			i += nl
			continue
		}
		end := strings.Index(src[i+2:], "*/")
		if end < 0 {
			p.fail(i, "unterminated comment")
		}
		i += end + 4
	}
}

func skipBlank(src string, i int) int {
	for i < len(src) && strings.IndexByte(" \t\r\n", src[i]) >= 0 {
		i++
	}
	return i
}

func readTagName(src string, i int) (string, int) {
	start := i
	for i < len(src) {
		c := src[i]
		if isIdentPart(c) || c == '-' || c == '.' || c == ':' {
			i++
			continue
		}
		break
	}
	return src[start:i], i
}

// tagExpr turns an element name into the factory's first argument: a string
// for intrinsic elements, an identifier or member chain for components.
func tagExpr(at int, name string) Expr {
	if strings.Contains(name, "-") || (name[0] >= 'a' && name[0] <= 'z' && !strings.Contains(name, ".")) {
		return &StringLit{At: Pos(at), Value: name}
	}
	parts := strings.Split(name, ".")
	var e Expr = &Ident{At: Pos(at), Name: parts[0]}
	for _, part := range parts[1:] {
		e = &MemberExpr{At: Pos(at), Object: e, Prop: &StringLit{At: Pos(at), Value: part}}
	}
	return e
}

func factoryCall(at int, tag Expr, props []*Property, children []Expr) Expr {
	args := []Expr{tag}
	if props == nil {
		args = append(args, &NullLit{At: Pos(at)})
	} else {
		args = append(args, &ObjectLit{At: Pos(at), Props: props})
	}
	args = append(args, children...)
	return &CallExpr{At: Pos(at), Callee: &Ident{At: Pos(at), Name: ElementFactory}, Args: args}
}

// cleanText collapses markup text the way JSX does: lines are trimmed,
// blank lines dropped and the rest joined with single spaces.
func cleanText(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	lastNonEmpty := -1
	for i, line := range lines {
		if strings.TrimLeft(line, " \t") != "" {
			lastNonEmpty = i
		}
	}
	var b strings.Builder
	for i, line := range lines {
		line = strings.ReplaceAll(line, "\t", " ")
		if i > 0 {
			line = strings.TrimLeft(line, " ")
		}
		if i < len(lines)-1 {
			line = strings.TrimRight(line, " ")
		}
		if line == "" {
			continue
		}
		if i < lastNonEmpty {
			line += " "
		}
		b.WriteString(line)
	}
	return b.String()
}
