package inline

import (
	"strings"

	"github.com/andybalholm/cascadia"
)

// splitSelectors cuts a selector list at its top-level commas. Commas inside
// parentheses, attribute brackets or strings belong to the selector around them.
func splitSelectors(list string) []string {
	var out []string
	depth := 0
	start := 0
	var quote byte

	for i := 0; i < len(list); i++ {
		c := list[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\\':
			i++
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			if depth > 0 {
				depth--
			}
		case c == ',' && depth == 0:
			out = appendSelector(out, list[start:i])
			start = i + 1
		}
	}
	return appendSelector(out, list[start:])
}

func appendSelector(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}

// closingParen returns the index of the parenthesis closing s[open], or -1.
func closingParen(s string, open int) int {
	depth := 0
	var quote byte

	for i := open; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\\':
			i++
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// rewriteMatchesAny turns :is(list) and :where(list) into :not(:not(list)),
// which the selector engine understands and matches identically. where holds
// the argument lists of the top-level :where() calls, whose specificity must
// not count.
func rewriteMatchesAny(sel string) (rewritten string, where []string) {
	var b strings.Builder
	b.Grow(len(sel) + 16)
	depth := 0
	var quote byte

	for i := 0; i < len(sel); i++ {
		c := sel[i]
		switch {
		case quote != 0:
			b.WriteByte(c)
			if c == '\\' && i+1 < len(sel) {
				i++
				b.WriteByte(sel[i])
			} else if c == quote {
				quote = 0
			}
			continue
		case c == '\\' && i+1 < len(sel):
			b.WriteByte(c)
			i++
			b.WriteByte(sel[i])
			continue
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ':' && (i == 0 || sel[i-1] != ':'):
			name, ok := matchesAnyAt(sel, i)
			if !ok {
				break
			}
			open := i + 1 + len(name)
			end := closingParen(sel, open)
			if end < 0 {
				break
			}
			inner, _ := rewriteMatchesAny(sel[open+1 : end])
			if name == "where" && depth == 0 {
				where = append(where, inner)
			}
			b.WriteString(":not(:not(")
			b.WriteString(inner)
			b.WriteString("))")
			i = end
			continue
		}
		b.WriteByte(c)
	}
	return b.String(), where
}

// matchesAnyAt reports whether sel[i:] starts with ":is(" or ":where(".
func matchesAnyAt(sel string, i int) (string, bool) {
	rest := strings.ToLower(sel[i+1:])
	for _, name := range []string{"is", "where"} {
		if strings.HasPrefix(rest, name+"(") {
			return name, true
		}
	}
	return "", false
}

// compileSelector parses one complex selector. The returned specificity
// leaves out whatever :where() contributes.
func compileSelector(selector string) (cascadia.Sel, cascadia.Specificity, error) {
	rewritten, where := rewriteMatchesAny(legacyPseudo.ReplaceAllString(selector, "$1::$2"))
	sel, err := cascadia.ParseWithPseudoElement(rewritten)
	if err != nil {
		return nil, cascadia.Specificity{}, err
	}

	spec := sel.Specificity()
	for _, list := range where {
		group, err := cascadia.ParseGroup(list)
		if err != nil {
			continue
		}
		spec = subtractSpecificity(spec, maxSpecificity(group))
	}
	return sel, spec, nil
}

func maxSpecificity(group cascadia.SelectorGroup) cascadia.Specificity {
	var top cascadia.Specificity
	for _, s := range group {
		if sp := s.Specificity(); top.Less(sp) {
			top = sp
		}
	}
	return top
}

func subtractSpecificity(a, b cascadia.Specificity) cascadia.Specificity {
	for i := range a {
		a[i] -= b[i]
		if a[i] < 0 {
			a[i] = 0
		}
	}
	return a
}
