package inline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxVarDepth bounds var() substitution, which also stops reference cycles.
const maxVarDepth = 16

// element is one element to style, with the custom properties in effect on it.
type element struct {
	node *html.Node
	vars map[string]string
}

// collectElements appends the body elements under n in document order.
// Custom properties are inherited through the whole tree, so declarations on
// :root or html reach the body.
func (sh *sheet) collectElements(n *html.Node, vars map[string]string, inBody bool, out *[]element) {
	if n.Type == html.ElementNode {
		if skipped[n.DataAtom] {
			return
		}
		vars = sh.customProperties(n, vars)
		if n.DataAtom == atom.Body {
			inBody = true
		}
		if inBody {
			*out = append(*out, element{node: n, vars: vars})
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sh.collectElements(c, vars, inBody, out)
	}
}

// customProperties returns the custom properties of n: those it inherits,
// overridden by the ones its own rules and style attribute declare.
func (sh *sheet) customProperties(n *html.Node, inherited map[string]string) map[string]string {
	style, hasStyle := styleAttr(n)
	hasStyle = hasStyle && strings.Contains(style, "--")
	if !sh.hasCustom && !hasStyle {
		return inherited
	}

	var own []candidate
	if sh.hasCustom {
		for _, c := range sh.match(n, sh.rules, "") {
			if isCustomProperty(c.prop) {
				own = append(own, c)
			}
		}
	}
	if hasStyle {
		if cands, ok := inlineCandidates(style); ok {
			for _, c := range cands {
				if isCustomProperty(c.prop) {
					own = append(own, c)
				}
			}
		}
	}
	if len(own) == 0 {
		return inherited
	}

	vars := make(map[string]string, len(inherited)+len(own))
	for k, v := range inherited {
		vars[k] = v
	}
	resolved := resolve(own)
	for _, c := range resolved {
		vars[c.prop] = c.value
	}
	for _, c := range resolved {
		vars[c.prop] = substituteVars(vars[c.prop], vars)
	}
	return vars
}

// withVars returns cands with var() references replaced in ordinary properties.
func withVars(cands []candidate, vars map[string]string) []candidate {
	for i, c := range cands {
		if !isCustomProperty(c.prop) && strings.Contains(strings.ToLower(c.value), "var(") {
			cands[i].value = substituteVars(c.value, vars)
		}
	}
	return cands
}

// substituteVars replaces var(--name) and var(--name, fallback) in value.
// References that resolve to nothing and have no fallback are left as written.
func substituteVars(value string, vars map[string]string) string {
	return substitute(value, vars, 0)
}

func substitute(value string, vars map[string]string, depth int) string {
	if depth > maxVarDepth {
		return value
	}

	var b strings.Builder
	for {
		i := indexVar(value)
		if i < 0 {
			b.WriteString(value)
			return b.String()
		}
		if i > 0 && isNameByte(value[i-1]) {
			b.WriteString(value[:i+len("var(")])
			value = value[i+len("var("):]
			continue
		}

		open := i + len("var")
		end := closingParen(value, open)
		if end < 0 {
			b.WriteString(value)
			return b.String()
		}

		b.WriteString(value[:i])
		name, fallback, hasFallback := strings.Cut(value[open+1:end], ",")
		name = strings.ToLower(strings.TrimSpace(name))
		switch v, ok := vars[name]; {
		case ok:
			b.WriteString(substitute(v, vars, depth+1))
		case hasFallback:
			b.WriteString(substitute(strings.TrimSpace(fallback), vars, depth+1))
		default:
			b.WriteString(value[i : end+1])
		}
		value = value[end+1:]
	}
}

// indexVar returns the index of the first "var(" in value, in any case.
func indexVar(value string) int {
	for i := 0; i+len("var(") <= len(value); i++ {
		if strings.EqualFold(value[i:i+len("var(")], "var(") {
			return i
		}
	}
	return -1
}

func isCustomProperty(prop string) bool {
	return strings.HasPrefix(prop, "--")
}

func isNameByte(c byte) bool {
	return c == '-' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func styleAttr(n *html.Node) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "style" {
			return a.Val, true
		}
	}
	return "", false
}
