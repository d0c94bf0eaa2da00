package inline

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// generated is a <span> standing in for a ::before or ::after box.
type generated struct {
	parent *html.Node
	span   *html.Node
	before bool
}

func (g generated) insert() {
	if g.before {
		g.parent.InsertBefore(g.span, g.parent.FirstChild)
		return
	}
	g.parent.AppendChild(g.span)
}

// generate builds the spans for the ::before and ::after rules matching n.
func (sh *sheet) generate(n *html.Node, vars map[string]string) []generated {
	if len(sh.pseudos) == 0 {
		return nil
	}

	var out []generated
	for _, pseudo := range []string{"before", "after"} {
		span, ok := pseudoSpan(withVars(resolve(sh.match(n, sh.pseudos, pseudo)), vars), n)
		if ok {
			out = append(out, generated{parent: n, span: span, before: pseudo == "before"})
		}
	}
	return out
}

// pseudoSpan turns resolved pseudo-element declarations into a span. Boxes
// without a usable content value are not generated, as in browsers.
func pseudoSpan(decls []candidate, origin *html.Node) (*html.Node, bool) {
	var content string
	var found bool
	rest := make([]candidate, 0, len(decls))

	for _, d := range decls {
		if d.prop == "content" {
			content, found = contentText(d.value, origin)
			continue
		}
		rest = append(rest, d)
	}
	if !found {
		return nil, false
	}

	span := &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span}
	if len(rest) > 0 {
		span.Attr = []html.Attribute{{Key: "style", Val: formatDeclarations(rest)}}
	}
	if content != "" {
		span.AppendChild(&html.Node{Type: html.TextNode, Data: content})
	}
	return span, true
}

// contentText evaluates the string and attr() parts of a content value.
// Counters, quotes and images are not representable as text and are skipped.
// ok is false for none, normal, or values without any textual part.
func contentText(value string, origin *html.Node) (text string, ok bool) {
	v := strings.TrimSpace(value)
	switch strings.ToLower(v) {
	case "", "none", "normal":
		return "", false
	}

	var b strings.Builder
	for i := 0; i < len(v); {
		switch c := v[i]; {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case c == '"' || c == '\'':
			s, next := readString(v, i)
			b.WriteString(s)
			i = next
			ok = true
		case strings.HasPrefix(strings.ToLower(v[i:]), "attr("):
			end := strings.IndexByte(v[i:], ')')
			if end < 0 {
				return b.String(), ok
			}
			name := strings.TrimSpace(v[i+len("attr(") : i+end])
			b.WriteString(attr(origin, name))
			i += end + 1
			ok = true
		default:
			i = skipToken(v, i)
		}
	}
	return b.String(), ok
}

// readString decodes the quoted CSS string starting at v[start] and returns
// it with the index just past the closing quote.
func readString(v string, start int) (string, int) {
	quote := v[start]
	var b strings.Builder
	i := start + 1
	for i < len(v) {
		c := v[i]
		switch {
		case c == quote:
			return b.String(), i + 1
		case c == '\\' && i+1 < len(v):
			r, next := readEscape(v, i+1)
			b.WriteString(r)
			i = next
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), i
}

// readEscape decodes the escape whose first character is v[i].
func readEscape(v string, i int) (string, int) {
	if v[i] == '\n' {
		return "", i + 1
	}

	j := i
	for j < len(v) && j-i < 6 && isHex(v[j]) {
		j++
	}
	if j == i {
		return string(v[i]), i + 1
	}

	code, err := strconv.ParseUint(v[i:j], 16, 32)
	if err != nil || code == 0 || code > 0x10FFFF {
		code = 0xFFFD
	}
	if j < len(v) && (v[j] == ' ' || v[j] == '\t' || v[j] == '\n') {
		j++
	}
	return string(rune(code)), j
}

// skipToken advances past an unsupported token, including a balanced
// function call such as counter(item) or url("x.png").
func skipToken(v string, i int) int {
	depth := 0
	for i < len(v) {
		switch v[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth <= 0 {
				return i + 1
			}
		case ' ', '\t', '\n':
			if depth == 0 {
				return i
			}
		case '"', '\'':
			if depth > 0 {
				_, i = readString(v, i)
				continue
			}
			return i
		}
		i++
	}
	return i
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}
