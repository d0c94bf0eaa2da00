package inline

import (
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/parser"
)

// candidate is one declaration competing for a property on one element.
type candidate struct {
	prop      string
	value     string
	important bool
	inline    bool // came from the element's own style attribute
	spec      cascadia.Specificity
	rule      int
	index     int
}

// less reports whether c loses to o in the cascade.
func (c candidate) less(o candidate) bool {
	if c.important != o.important {
		return !c.important
	}
	if c.inline != o.inline {
		return !c.inline
	}
	if c.spec != o.spec {
		return c.spec.Less(o.spec)
	}
	if c.rule != o.rule {
		return c.rule < o.rule
	}
	return c.index < o.index
}

// resolve keeps the winning declaration per property, ordered from lowest to
// highest precedence.
func resolve(cands []candidate) []candidate {
	if len(cands) == 0 {
		return nil
	}

	winners := make(map[string]candidate, len(cands))
	for _, c := range cands {
		if w, ok := winners[c.prop]; !ok || w.less(c) {
			winners[c.prop] = c
		}
	}

	out := make([]candidate, 0, len(winners))
	for _, w := range winners {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].less(out[j]) {
			return true
		}
		if out[j].less(out[i]) {
			return false
		}
		return out[i].prop < out[j].prop
	})
	return out
}

// inlineCandidates parses a style attribute. ok is false when the attribute
// is not valid declaration syntax.
func inlineCandidates(style string) (cands []candidate, ok bool) {
	style = strings.TrimSpace(style)
	if style == "" {
		return nil, true
	}
	// The parser only commits a value at ";" or "}".
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}
	decls, err := parser.ParseDeclarations(style)
	if err != nil {
		return nil, false
	}
	for i, d := range decls {
		cands = append(cands, candidate{
			prop:      strings.ToLower(d.Property),
			value:     d.Value,
			important: d.Important,
			inline:    true,
			index:     i,
		})
	}
	return cands, true
}

func formatDeclarations(cands []candidate) string {
	parts := make([]string, len(cands))
	for i, c := range cands {
		parts[i] = formatDeclaration(c.prop, c.value, c.important)
	}
	return strings.Join(parts, " ")
}
