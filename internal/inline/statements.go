package inline

import (
	"strings"

	"github.com/gorilla/css/scanner"
)

// statement is one top-level rule of a stylesheet, as source text.
type statement struct {
	text   string
	atName string // lowercase at-keyword, empty for style rules
	nested bool   // style rule whose block holds further rules
}

// splitStatements cuts src into top-level statements, recovering from errors
// as browsers do: a stray closing brace is dropped and blocks still open at
// the end of input are closed.
func splitStatements(src string) []statement {
	s := scanner.New(src)

	var (
		out     []statement
		cur     strings.Builder
		st      statement
		depth   int
		started bool
	)
	flush := func() {
		st.text = strings.TrimSpace(cur.String())
		if st.text != "" && st.text != ";" {
			out = append(out, st)
		}
		cur.Reset()
		st = statement{}
		started = false
	}

	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF, scanner.TokenError:
			if depth > 0 {
				cur.WriteString(strings.Repeat("}", depth))
			}
			flush()
			return out
		case scanner.TokenS, scanner.TokenComment, scanner.TokenCDO, scanner.TokenCDC:
			if depth == 0 && !started {
				continue
			}
		case scanner.TokenAtKeyword:
			if depth == 0 && !started {
				st.atName = strings.ToLower(tok.Value)
			}
		case scanner.TokenChar:
			switch tok.Value {
			case "{":
				depth++
				if depth == 2 && st.atName == "" {
					st.nested = true
				}
			case "}":
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 {
					cur.WriteString(tok.Value)
					flush()
					continue
				}
			case ";":
				if depth == 0 {
					cur.WriteString(tok.Value)
					flush()
					continue
				}
			}
		}
		started = true
		cur.WriteString(tok.Value)
	}
}

// nestedRule is a rule written inside another rule's block.
type nestedRule struct {
	prelude string
	body    string
}

// flattenNested rewrites a style rule holding nested rules as flat rules.
// "&" stands for the parent selector list, and a nested selector without it
// applies to descendants of the parent. A nested conditional at-rule wraps a
// copy of the parent rule.
func flattenNested(text string) []string {
	prelude, body := splitRule(text)
	if prelude == "" {
		return nil
	}
	return flattenRule(prelude, body)
}

func flattenRule(selector, body string) []string {
	decls, nested := splitBody(body)

	var out []string
	if decls != "" {
		out = append(out, selector+" { "+decls+" }")
	}
	for _, n := range nested {
		if strings.HasPrefix(n.prelude, "@") {
			inner := flattenRule(selector, n.body)
			out = append(out, n.prelude+" { "+strings.Join(inner, " ")+" }")
			continue
		}
		out = append(out, flattenRule(nestSelector(selector, n.prelude), n.body)...)
	}
	return out
}

// splitRule returns the prelude of a rule and the text inside its block.
func splitRule(text string) (prelude, body string) {
	s := scanner.New(text)

	var head, inner strings.Builder
	depth := 0
	for {
		tok := s.Next()
		if tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError {
			break
		}
		if tok.Type == scanner.TokenChar {
			switch tok.Value {
			case "{":
				depth++
				if depth == 1 {
					continue
				}
			case "}":
				depth--
				if depth == 0 {
					return strings.TrimSpace(head.String()), inner.String()
				}
			}
		}
		if depth == 0 {
			head.WriteString(tok.Value)
		} else {
			inner.WriteString(tok.Value)
		}
	}
	return strings.TrimSpace(head.String()), inner.String()
}

// splitBody separates the declarations of a block from the rules nested in it.
func splitBody(body string) (decls string, nested []nestedRule) {
	s := scanner.New(body)

	var (
		own     strings.Builder
		pending strings.Builder
		inner   strings.Builder
		prelude string
		depth   int
	)
	for {
		tok := s.Next()
		if tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError {
			break
		}
		if tok.Type == scanner.TokenChar {
			switch {
			case tok.Value == "{" && depth == 0:
				depth++
				prelude = strings.TrimSpace(pending.String())
				pending.Reset()
				continue
			case tok.Value == "{":
				depth++
			case tok.Value == "}" && depth == 1:
				depth--
				nested = append(nested, nestedRule{prelude: prelude, body: inner.String()})
				inner.Reset()
				continue
			case tok.Value == "}":
				depth--
			case tok.Value == ";" && depth == 0:
				if d := strings.TrimSpace(pending.String()); d != "" {
					own.WriteString(d)
					own.WriteString("; ")
				}
				pending.Reset()
				continue
			}
		}
		if depth == 0 {
			pending.WriteString(tok.Value)
		} else {
			inner.WriteString(tok.Value)
		}
	}
	if d := strings.TrimSpace(pending.String()); d != "" {
		own.WriteString(d)
		own.WriteString(";")
	}
	return strings.TrimSpace(own.String()), nested
}

// nestSelector resolves a nested selector list against its parent list.
func nestSelector(parent, child string) string {
	ref := parent
	if len(splitSelectors(parent)) > 1 {
		ref = ":is(" + parent + ")"
	}

	var out []string
	for _, c := range splitSelectors(child) {
		if strings.Contains(c, "&") {
			out = append(out, strings.ReplaceAll(c, "&", ref))
		} else {
			out = append(out, ref+" "+c)
		}
	}
	return strings.Join(out, ", ")
}
