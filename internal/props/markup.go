package props

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/3-lines-studio/studio/internal/core"
)

var markupKeys = []string{"title", "content", "buttonText", "imageUrl"}

func keyForTag(tag string) string {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "title"
	case "p":
		return "content"
	case "button":
		return "buttonText"
	}
	return ""
}

// scanMarkup pulls static text out of the first heading, paragraph and button
// and the first image source. Expression children are ignored.
func scanMarkup(source string) (core.PropertySchema, bool) {
	z := html.NewTokenizer(strings.NewReader(source))
	found := make(map[string]string)

	var (
		capture string
		tag     string
		depth   int
		buf     strings.Builder
	)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data == "img" && found["imageUrl"] == "" {
				for _, a := range tok.Attr {
					if a.Key == "src" && isStatic(a.Val) {
						found["imageUrl"] = strings.TrimSpace(a.Val)
					}
				}
			}
			if tt == html.SelfClosingTagToken {
				continue
			}
			if capture != "" {
				if tok.Data == tag {
					depth++
				}
				continue
			}
			if key := keyForTag(tok.Data); key != "" && found[key] == "" {
				capture, tag, depth = key, tok.Data, 0
				buf.Reset()
			}
		case html.EndTagToken:
			if capture == "" {
				continue
			}
			name, _ := z.TagName()
			if string(name) != tag {
				continue
			}
			if depth > 0 {
				depth--
				continue
			}
			if text := staticText(buf.String()); text != "" {
				found[capture] = text
			}
			capture = ""
		case html.TextToken:
			if capture != "" {
				buf.Write(z.Text())
			}
		}
	}

	s := core.NewPropertySchema()
	for _, key := range markupKeys {
		v, ok := found[key]
		if !ok {
			continue
		}
		rec := core.NewRecord(key, v)
		if key == "imageUrl" {
			rec.Type = core.TypeImage
		}
		s.Set(key, rec)
	}
	return s, s.Len() > 0
}

func isStatic(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.HasPrefix(v, "{")
}

// staticText drops {expression} segments and collapses whitespace.
func staticText(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '{':
			depth++
		case r == '}' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
