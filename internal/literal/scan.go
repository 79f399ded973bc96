package literal

// SkipString returns the offset just past the string, template or comment
// starting at i, or i when none starts there. Quote strings end at a newline
// so a stray apostrophe in markup text cannot swallow the rest of the file.
func SkipString(src string, i int) int {
	if i >= len(src) {
		return i
	}
	switch c := src[i]; {
	case c == '/' && i+1 < len(src) && src[i+1] == '/':
		for i < len(src) && src[i] != '\n' {
			i++
		}
		return i
	case c == '/' && i+1 < len(src) && src[i+1] == '*':
		for j := i + 2; j+1 < len(src); j++ {
			if src[j] == '*' && src[j+1] == '/' {
				return j + 2
			}
		}
		return len(src)
	case c == '"' || c == '\'':
		for j := i + 1; j < len(src); j++ {
			switch src[j] {
			case '\\':
				j++
			case c:
				return j + 1
			case '\n':
				return j
			}
		}
		return len(src)
	case c == '`':
		for j := i + 1; j < len(src); j++ {
			switch {
			case src[j] == '\\':
				j++
			case src[j] == '`':
				return j + 1
			case src[j] == '$' && j+1 < len(src) && src[j+1] == '{':
				end, ok := MatchBrace(src, j+1)
				if !ok {
					return len(src)
				}
				j = end
			}
		}
		return len(src)
	}
	return i
}

// MatchBrace finds the brace closing the one at open, skipping strings and
// comments. It returns the offset of the closing brace.
func MatchBrace(src string, open int) (int, bool) {
	if open >= len(src) {
		return 0, false
	}
	opener := src[open]
	var closer byte
	switch opener {
	case '{':
		closer = '}'
	case '[':
		closer = ']'
	case '(':
		closer = ')'
	default:
		return 0, false
	}
	depth := 0
	for i := open; i < len(src); {
		if next := SkipString(src, i); next != i {
			i = next
			continue
		}
		switch src[i] {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i, true
			}
		}
		i++
	}
	return 0, false
}

// CodeMask marks the bytes of src that lie outside strings and comments.
func CodeMask(src string) []bool {
	mask := make([]bool, len(src))
	for i := 0; i < len(src); {
		if next := SkipString(src, i); next != i {
			i = next
			continue
		}
		mask[i] = true
		i++
	}
	return mask
}
