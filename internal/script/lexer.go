package script

import (
	"fmt"
	"strconv"
	"strings"
)

type tokKind int

const (
	tEOF tokKind = iota
	tIdent
	tNum
	tStr
	tPunct
	tBacktick
)

type token struct {
	kind  tokKind
	text  string
	num   float64
	start int
	end   int
	nl    bool // a line break precedes the token
}

// SyntaxError is reported when source does not fit the supported dialect.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

var puncts = []string{
	">>>=", "...", "===", "!==", "**=", "<<=", ">>=", ">>>", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--", "+=", "-=",
	"*=", "/=", "%=", "&=", "|=", "^=", "**", "<<", ">>",
	"{", "}", "(", ")", "[", "]", ";", ",", "<", ">", "+", "-", "*", "/", "%",
	"&", "|", "^", "!", "~", "?", ":", "=", ".", "@",
}

type lexer struct {
	src   string
	pos   int
	lines []int
}

func (lx *lexer) errAt(off int, format string, args ...any) error {
	line, col := position(lx.lines, off)
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

// skipSpace skips whitespace and comments, reporting whether a line break
// was crossed.
func (lx *lexer) skipSpace() (bool, error) {
	nl := false
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\n':
			nl = true
			lx.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			lx.pos++
		case c == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '/':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}
		case c == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '*':
			end := strings.Index(lx.src[lx.pos+2:], "*/")
			if end < 0 {
				return nl, lx.errAt(lx.pos, "unterminated comment")
			}
			if strings.Contains(lx.src[lx.pos:lx.pos+2+end], "\n") {
				nl = true
			}
			lx.pos += end + 4
		case c == 0xC2 && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == 0xA0:
			lx.pos += 2
		default:
			return nl, nil
		}
	}
	return nl, nil
}

func (lx *lexer) next() (token, error) {
	nl, err := lx.skipSpace()
	if err != nil {
		return token{}, err
	}
	start := lx.pos
	if start >= len(lx.src) {
		return token{kind: tEOF, start: start, end: start, nl: nl}, nil
	}
	c := lx.src[start]
	switch {
	case isIdentStart(c):
		end := start + 1
		for end < len(lx.src) && isIdentPart(lx.src[end]) {
			end++
		}
		lx.pos = end
		return token{kind: tIdent, text: lx.src[start:end], start: start, end: end, nl: nl}, nil
	case isDigit(c) || (c == '.' && start+1 < len(lx.src) && isDigit(lx.src[start+1])):
		return lx.number(start, nl)
	case c == '"' || c == '\'':
		s, end, err := lx.readString(start)
		if err != nil {
			return token{}, err
		}
		lx.pos = end
		return token{kind: tStr, text: s, start: start, end: end, nl: nl}, nil
	case c == '`':
		lx.pos = start + 1
		return token{kind: tBacktick, text: "`", start: start, end: start + 1, nl: nl}, nil
	}
	for _, p := range puncts {
		if strings.HasPrefix(lx.src[start:], p) {
			if p == "?." && start+2 < len(lx.src) && isDigit(lx.src[start+2]) {
				p = "?"
			}
			lx.pos = start + len(p)
			return token{kind: tPunct, text: p, start: start, end: lx.pos, nl: nl}, nil
		}
	}
	return token{}, lx.errAt(start, "unexpected character %q", c)
}

func (lx *lexer) number(start int, nl bool) (token, error) {
	src := lx.src
	end := start
	if end+1 < len(src) && src[end] == '0' && strings.ContainsRune("xXbBoO", rune(src[end+1])) {
		base := 16
		switch src[end+1] {
		case 'b', 'B':
			base = 2
		case 'o', 'O':
			base = 8
		}
		end += 2
		for end < len(src) && (isHex(src[end]) || src[end] == '_') {
			end++
		}
		n, err := strconv.ParseInt(strings.ReplaceAll(src[start+2:end], "_", ""), base, 64)
		if err != nil {
			return token{}, lx.errAt(start, "bad number %q", src[start:end])
		}
		lx.pos = end
		return token{kind: tNum, num: float64(n), text: src[start:end], start: start, end: end, nl: nl}, nil
	}
	for end < len(src) && (isDigit(src[end]) || src[end] == '_') {
		end++
	}
	if end < len(src) && src[end] == '.' {
		end++
		for end < len(src) && (isDigit(src[end]) || src[end] == '_') {
			end++
		}
	}
	if end < len(src) && (src[end] == 'e' || src[end] == 'E') {
		k := end + 1
		if k < len(src) && (src[k] == '+' || src[k] == '-') {
			k++
		}
		if k < len(src) && isDigit(src[k]) {
			end = k
			for end < len(src) && isDigit(src[end]) {
				end++
			}
		}
	}
	if end < len(src) && src[end] == 'n' {
		return token{}, lx.errAt(start, "bigint literals are not supported")
	}
	text := src[start:end]
	n, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil {
		return token{}, lx.errAt(start, "bad number %q", text)
	}
	lx.pos = end
	return token{kind: tNum, num: n, text: text, start: start, end: end, nl: nl}, nil
}

func (lx *lexer) readString(start int) (string, int, error) {
	quote := lx.src[start]
	var b strings.Builder
	i := start + 1
	for i < len(lx.src) {
		c := lx.src[i]
		switch {
		case c == quote:
			return b.String(), i + 1, nil
		case c == '\n':
			return "", 0, lx.errAt(i, "unterminated string")
		case c == '\\':
			n, err := lx.escape(&b, i)
			if err != nil {
				return "", 0, err
			}
			i = n
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", 0, lx.errAt(start, "unterminated string")
}

// escape decodes the escape sequence at i and returns the offset after it.
func (lx *lexer) escape(b *strings.Builder, i int) (int, error) {
	if i+1 >= len(lx.src) {
		return 0, lx.errAt(i, "unterminated escape")
	}
	esc := lx.src[i+1]
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
	case 'v':
		b.WriteByte('\v')
	case '0':
		b.WriteByte(0)
	case '\r':
		if i < len(lx.src) && lx.src[i] == '\n' {
			i++
		}
	case '\n':
	case 'x':
		if i+2 > len(lx.src) {
			return 0, lx.errAt(i, "bad hex escape")
		}
		r, err := strconv.ParseUint(lx.src[i:i+2], 16, 8)
		if err != nil {
			return 0, lx.errAt(i, "bad hex escape")
		}
		b.WriteRune(rune(r))
		i += 2
	case 'u':
		var hex string
		if i < len(lx.src) && lx.src[i] == '{' {
			end := strings.IndexByte(lx.src[i:], '}')
			if end < 0 {
				return 0, lx.errAt(i, "bad unicode escape")
			}
			hex = lx.src[i+1 : i+end]
			i += end + 1
		} else {
			if i+4 > len(lx.src) {
				return 0, lx.errAt(i, "bad unicode escape")
			}
			hex = lx.src[i : i+4]
			i += 4
		}
		r, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, lx.errAt(i, "bad unicode escape")
		}
		b.WriteRune(rune(r))
	default:
		b.WriteByte(esc)
	}
	return i, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$' || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
