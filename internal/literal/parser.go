package literal

import (
	"errors"
	"fmt"
)

// errSkip marks a member value the loose pass could not read.
var errSkip = errors.New("skip value")

type parser struct {
	toks  []token
	pos   int
	mode  Mode
	depth int
}

// Parse reads a single literal value from src under the given mode.
// Objects come back as *Object, arrays as []any, numbers as float64.
func Parse(src string, mode Mode) (any, error) {
	toks, err := tokenize(src, mode)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, mode: mode}
	v, err := p.value()
	if err != nil {
		if errors.Is(err, errSkip) {
			return nil, &SyntaxError{Offset: p.peek().pos, Msg: "unreadable value"}
		}
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, &SyntaxError{Offset: p.peek().pos, Msg: "trailing content"}
	}
	return v, nil
}

// Passes is the order ParseTolerant tries modes in.
var Passes = []Mode{Strict, Relaxed, Loose}

// ParseTolerant retries src under progressively looser modes and returns the
// first success along with the mode that produced it.
func ParseTolerant(src string) (any, Mode, error) {
	var errs []error
	for _, mode := range Passes {
		v, err := Parse(src, mode)
		if err == nil {
			return v, mode, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", mode, err))
	}
	return nil, Loose, errors.Join(errs...)
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &SyntaxError{Offset: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) value() (any, error) {
	t := p.peek()
	switch t.kind {
	case tokLBrace:
		return p.object()
	case tokLBracket:
		return p.array()
	case tokString:
		p.next()
		return t.text, nil
	case tokNumber:
		p.next()
		return t.num, nil
	case tokIdent:
		switch t.text {
		case "true":
			p.next()
			return true, nil
		case "false":
			p.next()
			return false, nil
		case "null":
			p.next()
			return nil, nil
		case "undefined":
			if p.mode >= Relaxed {
				p.next()
				return nil, nil
			}
		}
		if p.mode == Loose {
			return nil, errSkip
		}
		return nil, p.errorf(t, "unexpected identifier %q", t.text)
	case tokEOF:
		return nil, p.errorf(t, "unexpected end of input")
	default:
		if p.mode == Loose {
			return nil, errSkip
		}
		return nil, p.errorf(t, "unexpected %q", t.text)
	}
}

func (p *parser) enter(t token) error {
	p.depth++
	if p.depth > MaxDepth {
		return p.errorf(t, "nesting deeper than %d", MaxDepth)
	}
	return nil
}

func (p *parser) object() (any, error) {
	open := p.next()
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	obj := NewObject()
	for {
		t := p.peek()
		if t.kind == tokRBrace {
			if obj.Len() > 0 && p.mode == Strict && p.toks[p.pos-1].kind == tokComma {
				return nil, p.errorf(t, "trailing comma")
			}
			p.next()
			return obj, nil
		}
		key, err := p.key()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokColon {
			if p.mode == Loose && (c.kind == tokComma || c.kind == tokRBrace) {
				// shorthand member such as { title, subtitle }
				if c.kind == tokRBrace {
					p.pos--
				}
				continue
			}
			return nil, p.errorf(c, "expected ':' after key %q", key)
		}
		start := p.pos
		v, err := p.value()
		switch {
		case errors.Is(err, errSkip):
			p.pos = start
			if err := p.skipValue(); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			if k := p.peek().kind; k != tokComma && k != tokRBrace && p.mode == Loose {
				p.pos = start
				if err := p.skipValue(); err != nil {
					return nil, err
				}
				break
			}
			obj.Set(key, v)
		}
		switch sep := p.peek(); sep.kind {
		case tokComma:
			p.next()
		case tokRBrace:
		default:
			return nil, p.errorf(sep, "expected ',' or '}'")
		}
	}
}

func (p *parser) key() (string, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return t.text, nil
	case tokIdent:
		if p.mode >= Relaxed {
			return t.text, nil
		}
	case tokNumber:
		if p.mode >= Relaxed {
			return t.text, nil
		}
	}
	return "", p.errorf(t, "expected key, got %q", t.text)
}

func (p *parser) array() (any, error) {
	open := p.next()
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	out := []any{}
	for {
		t := p.peek()
		if t.kind == tokRBracket {
			if len(out) > 0 && p.mode == Strict && p.toks[p.pos-1].kind == tokComma {
				return nil, p.errorf(t, "trailing comma")
			}
			p.next()
			return out, nil
		}
		start := p.pos
		v, err := p.value()
		switch {
		case errors.Is(err, errSkip):
			p.pos = start
			if err := p.skipValue(); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			if k := p.peek().kind; k != tokComma && k != tokRBracket && p.mode == Loose {
				p.pos = start
				if err := p.skipValue(); err != nil {
					return nil, err
				}
				break
			}
			out = append(out, v)
		}
		switch sep := p.peek(); sep.kind {
		case tokComma:
			p.next()
		case tokRBracket:
		default:
			return nil, p.errorf(sep, "expected ',' or ']'")
		}
	}
}

// skipValue advances past an unreadable expression, stopping at the comma or
// closing bracket that ends it.
func (p *parser) skipValue() error {
	depth := 0
	for {
		t := p.peek()
		switch t.kind {
		case tokEOF:
			return p.errorf(t, "unterminated value")
		case tokLBrace, tokLBracket:
			depth++
		case tokRBrace, tokRBracket:
			if depth == 0 {
				return nil
			}
			depth--
		case tokComma:
			if depth == 0 {
				return nil
			}
		case tokOther:
			switch t.text {
			case "(":
				depth++
			case ")":
				if depth > 0 {
					depth--
				}
			}
		}
		p.next()
	}
}
