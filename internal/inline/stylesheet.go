package inline

import (
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/gorilla/css/scanner"
	"golang.org/x/net/html"
)

// compiledRule is one selector of a qualified rule, ready for matching.
type compiledRule struct {
	sel    cascadia.Sel
	spec   cascadia.Specificity
	pseudo string // "", "before" or "after"
	decls  []*css.Declaration
	order  int // source position of the owning rule
}

// sheet is a parsed stylesheet split into what can be inlined and what cannot.
type sheet struct {
	rules     []compiledRule
	pseudos   []compiledRule
	leftover  []string
	hasCustom bool // some inlinable rule declares a custom property
}

// legacyPseudo matches CSS2 single-colon ::before/::after spellings.
var legacyPseudo = regexp.MustCompile(`(^|[^:]):(before|after)\b`)

// dynamicPseudo matches pseudo-classes that depend on user interaction. The
// selector engine parses them as never matching; they are kept as rules instead.
var dynamicPseudo = regexp.MustCompile(`(?i):(hover|active|focus|focus-within|focus-visible|visited|target)\b`)

// compile reads cssText one statement at a time. A statement the CSS parser
// cannot read is kept verbatim for the browser, which drops invalid rules one
// by one, so it never fails the whole stylesheet.
func compile(cssText string, opts Options) *sheet {
	sh := &sheet{}
	if strings.TrimSpace(cssText) == "" {
		return sh
	}

	order := 0
	for _, st := range splitStatements(unwrapLayers(cssText)) {
		if !st.nested {
			order = sh.addStatement(st, order, opts)
			continue
		}
		for _, flat := range splitStatements(strings.Join(flattenNested(st.text), "\n")) {
			order = sh.addStatement(flat, order, opts)
		}
	}
	return sh
}

// addStatement adds the rules of st and returns the next source position.
func (sh *sheet) addStatement(st statement, order int, opts Options) int {
	if st.atName != "" {
		sh.addAtRule(st, opts)
		return order
	}

	parsed, err := parser.Parse(st.text)
	if err != nil {
		sh.leftover = append(sh.leftover, st.text)
		return order
	}
	for _, rule := range parsed.Rules {
		if rule.Kind == css.QualifiedRule {
			sh.addQualified(rule, order, opts)
			order++
		}
	}
	return order
}

func (sh *sheet) addQualified(rule *css.Rule, order int, opts Options) {
	if len(rule.Declarations) == 0 {
		return
	}
	for _, d := range rule.Declarations {
		if isCustomProperty(d.Property) {
			sh.hasCustom = true
			break
		}
	}

	var kept []string
	for _, selector := range splitSelectors(rule.Prelude) {
		if dynamicPseudo.MatchString(selector) {
			kept = append(kept, selector)
			continue
		}
		sel, spec, err := compileSelector(selector)
		if err != nil {
			kept = append(kept, selector)
			continue
		}

		cr := compiledRule{
			sel:    sel,
			spec:   spec,
			pseudo: sel.PseudoElement(),
			decls:  rule.Declarations,
			order:  order,
		}
		switch {
		case cr.pseudo == "":
			sh.rules = append(sh.rules, cr)
		case opts.InlinePseudoElements && (cr.pseudo == "before" || cr.pseudo == "after"):
			sh.pseudos = append(sh.pseudos, cr)
		default:
			kept = append(kept, selector)
		}
	}

	if len(kept) > 0 {
		sh.leftover = append(sh.leftover, formatBlock(strings.Join(kept, ", "), rule.Declarations))
	}
}

// addAtRule keeps an at-rule as written. Nothing inside an at-rule is inlined.
func (sh *sheet) addAtRule(st statement, opts Options) {
	switch st.atName {
	case "@charset":
		// Meaningless inside a <style> element.
	case "@media":
		if opts.PreserveMediaQueries {
			sh.leftover = append(sh.leftover, st.text)
		}
	default:
		sh.leftover = append(sh.leftover, st.text)
	}
}

// match returns the declarations of rules whose selector matches n and whose
// pseudo-element equals pseudo.
func (sh *sheet) match(n *html.Node, rules []compiledRule, pseudo string) []candidate {
	var out []candidate
	for _, r := range rules {
		if r.pseudo != pseudo || !r.sel.Match(n) {
			continue
		}
		for i, d := range r.decls {
			out = append(out, candidate{
				prop:      strings.ToLower(d.Property),
				value:     d.Value,
				important: d.Important,
				spec:      r.spec,
				rule:      r.order,
				index:     i,
			})
		}
	}
	return out
}

// unwrapLayers removes @layer statements and the @layer wrapper around
// blocks, keeping the wrapped rules in place. The CSS parser does not know
// that @layer blocks hold rules rather than declarations.
func unwrapLayers(src string) string {
	if !strings.Contains(src, "@layer") {
		return src
	}

	s := scanner.New(src)
	var b strings.Builder
	depth := 0
	var layers []int // depths at which a layer block was opened

	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			return b.String()
		case scanner.TokenError:
			return src
		}

		if tok.Type == scanner.TokenAtKeyword && strings.EqualFold(tok.Value, "@layer") {
			if !skipLayerPrelude(s, &depth, &layers) {
				return b.String()
			}
			continue
		}

		if tok.Type == scanner.TokenChar {
			switch tok.Value {
			case "{":
				depth++
			case "}":
				if n := len(layers); n > 0 && layers[n-1] == depth {
					layers = layers[:n-1]
					depth--
					continue
				}
				depth--
			}
		}
		b.WriteString(tok.Value)
	}
}

// skipLayerPrelude consumes the layer names after @layer up to ";" (statement
// form) or "{" (block form). It reports false on end of input.
func skipLayerPrelude(s *scanner.Scanner, depth *int, layers *[]int) bool {
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF, scanner.TokenError:
			return false
		case scanner.TokenChar:
			switch tok.Value {
			case ";":
				return true
			case "{":
				*depth++
				*layers = append(*layers, *depth)
				return true
			}
		}
	}
}

// formatBlock renders "selector { decl; decl; }".
func formatBlock(prelude string, decls []*css.Declaration) string {
	var b strings.Builder
	b.WriteString(prelude)
	b.WriteString(" {")
	for _, d := range decls {
		b.WriteString(" ")
		b.WriteString(formatDeclaration(d.Property, d.Value, d.Important))
	}
	b.WriteString(" }")
	return b.String()
}

func formatDeclaration(prop, value string, important bool) string {
	if important {
		return prop + ": " + value + " !important;"
	}
	return prop + ": " + value + ";"
}
