package literal

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode selects how forgiving the tokenizer and parser are.
type Mode int

const (
	// Strict accepts JSON only.
	Strict Mode = iota
	// Relaxed adds single-quoted and backtick strings, bare keys, trailing
	// commas and undefined.
	Relaxed
	// Loose adds comments and skips member values it cannot read.
	Loose
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Relaxed:
		return "relaxed"
	case Loose:
		return "loose"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MaxDepth bounds nesting so hostile input cannot blow the stack.
const MaxDepth = 64

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokColon
	tokComma
	tokString
	tokNumber
	tokIdent
	tokOther
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// SyntaxError reports where a literal could not be read.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("literal: %s at offset %d", e.Msg, e.Offset)
}

func tokenize(src string, mode Mode) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '/' && i+1 < len(src) && (src[i+1] == '/' || src[i+1] == '*'):
			if mode < Loose {
				return nil, &SyntaxError{Offset: i, Msg: "comments not allowed"}
			}
			i = skipComment(src, i)
		case c == '{':
			toks = append(toks, token{kind: tokLBrace, text: "{", pos: i})
			i++
		case c == '}':
			toks = append(toks, token{kind: tokRBrace, text: "}", pos: i})
			i++
		case c == '[':
			toks = append(toks, token{kind: tokLBracket, text: "[", pos: i})
			i++
		case c == ']':
			toks = append(toks, token{kind: tokRBracket, text: "]", pos: i})
			i++
		case c == ':':
			toks = append(toks, token{kind: tokColon, text: ":", pos: i})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		case c == '"' || ((c == '\'' || c == '`') && mode >= Relaxed):
			s, next, err := readString(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, text: s, pos: i})
			i = next
		case c == '-' || c == '+' || c == '.' || isDigit(c):
			if c == '+' && mode == Strict {
				return nil, &SyntaxError{Offset: i, Msg: "unexpected '+'"}
			}
			j := scanNumber(src, i)
			if j == i || (j == i+1 && !isDigit(c)) {
				if mode < Loose {
					return nil, &SyntaxError{Offset: i, Msg: fmt.Sprintf("unexpected %q", c)}
				}
				toks = append(toks, token{kind: tokOther, text: string(c), pos: i})
				i++
				continue
			}
			text := src[i:j]
			n, err := parseNumber(text, mode)
			if err != nil {
				if mode < Loose {
					return nil, &SyntaxError{Offset: i, Msg: "bad number " + strconv.Quote(text)}
				}
				toks = append(toks, token{kind: tokOther, text: text, pos: i})
			} else {
				toks = append(toks, token{kind: tokNumber, text: text, num: n, pos: i})
			}
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: src[i:j], pos: i})
			i = j
		default:
			if mode < Loose {
				return nil, &SyntaxError{Offset: i, Msg: fmt.Sprintf("unexpected %q", c)}
			}
			toks = append(toks, token{kind: tokOther, text: string(c), pos: i})
			i++
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func skipComment(src string, i int) int {
	if src[i+1] == '/' {
		for i < len(src) && src[i] != '\n' {
			i++
		}
		return i
	}
	end := strings.Index(src[i+2:], "*/")
	if end < 0 {
		return len(src)
	}
	return i + 2 + end + 2
}

func readString(src string, start int) (string, int, error) {
	quote := src[start]
	var b strings.Builder
	i := start + 1
	for i < len(src) {
		c := src[i]
		if c == quote {
			return b.String(), i + 1, nil
		}
		if c == '\n' && quote != '`' {
			return "", 0, &SyntaxError{Offset: i, Msg: "newline in string"}
		}
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(src) {
			break
		}
		esc := src[i+1]
		i += 2
		switch esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '0':
			b.WriteByte(0)
		case 'u':
			if i+4 <= len(src) {
				if r, err := strconv.ParseUint(src[i:i+4], 16, 32); err == nil {
					b.WriteRune(rune(r))
					i += 4
					continue
				}
			}
			b.WriteString(`\u`)
		case '\n':
			// line continuation
		default:
			b.WriteByte(esc)
		}
	}
	return "", 0, &SyntaxError{Offset: start, Msg: "unterminated string"}
}

func scanNumber(src string, i int) int {
	j := i
	if j < len(src) && (src[j] == '-' || src[j] == '+') {
		j++
	}
	if j+1 < len(src) && src[j] == '0' && (src[j+1] == 'x' || src[j+1] == 'X') {
		j += 2
		for j < len(src) && isHex(src[j]) {
			j++
		}
		return j
	}
	for j < len(src) && (isDigit(src[j]) || src[j] == '.' || src[j] == '_') {
		j++
	}
	if j < len(src) && (src[j] == 'e' || src[j] == 'E') {
		k := j + 1
		if k < len(src) && (src[k] == '-' || src[k] == '+') {
			k++
		}
		if k < len(src) && isDigit(src[k]) {
			j = k
			for j < len(src) && isDigit(src[j]) {
				j++
			}
		}
	}
	return j
}

func parseNumber(text string, mode Mode) (float64, error) {
	if mode == Strict {
		if strings.ContainsAny(text, "_xX") || strings.HasPrefix(text, ".") || strings.HasPrefix(text, "-.") {
			return 0, fmt.Errorf("not a JSON number")
		}
	}
	clean := strings.ReplaceAll(text, "_", "")
	lower := strings.ToLower(clean)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "-0x") {
		neg := strings.HasPrefix(lower, "-")
		n, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimPrefix(lower, "-"), "0x"), 16, 64)
		if err != nil {
			return 0, err
		}
		if neg {
			n = -n
		}
		return float64(n), nil
	}
	return strconv.ParseFloat(strings.TrimPrefix(clean, "+"), 64)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// IsIdentifier reports whether s can be written as a bare object key.
func IsIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}
