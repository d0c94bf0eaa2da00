package inline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sentinel errors for inlining.
var (
	ErrParseHTML = errors.New("parsing HTML")
	ErrRender    = errors.New("rendering HTML")
)

// Options controls which rules are inlined and what is kept aside.
type Options struct {
	PreserveMediaQueries bool   // keep @media blocks in a <style> element
	ApplyStyleTags       bool   // read and remove the document's <style> elements
	InlinePseudoElements bool   // turn ::before/::after content into <span> children
	ExtraCSS             string // applied after the document's own style blocks
}

// DefaultOptions enables every feature and adds no extra CSS.
func DefaultOptions() Options {
	return Options{
		PreserveMediaQueries: true,
		ApplyStyleTags:       true,
		InlinePseudoElements: true,
	}
}

// skipped elements never receive a style attribute.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
	atom.Noscript: true,
}

// Inline returns document with its CSS moved into style attributes.
func Inline(document string, opts Options) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParseHTML, err)
	}

	var cssText strings.Builder
	if opts.ApplyStyleTags {
		doc.Find("style").Each(func(_ int, s *goquery.Selection) {
			if _, embed := s.Attr("data-embed"); embed {
				return
			}
			cssText.WriteString(s.Text())
			cssText.WriteString("\n")
			s.Remove()
		})
	}
	if opts.ExtraCSS != "" {
		cssText.WriteString(opts.ExtraCSS)
	}

	sh := compile(cssText.String(), opts)

	var targets []element
	for _, root := range doc.Nodes {
		sh.collectElements(root, nil, false, &targets)
	}

	var spans []generated
	for _, el := range targets {
		applyStyle(el.node, resolve(sh.match(el.node, sh.rules, "")), el.vars)
		if opts.InlinePseudoElements && !isVoid(el.node) {
			spans = append(spans, sh.generate(el.node, el.vars)...)
		}
	}
	// The tree is only mutated once every element has been matched, so
	// generated spans never match selectors themselves.
	for _, g := range spans {
		g.insert()
	}

	if len(sh.leftover) > 0 {
		appendStyleElement(doc, strings.Join(sh.leftover, "\n"))
	}

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return out, nil
}

// applyStyle rewrites the style attribute of n. Declarations already present
// in the attribute take part in the cascade with inline precedence, and var()
// references are resolved against vars.
func applyStyle(n *html.Node, computed []candidate, vars map[string]string) {
	idx := -1
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == "style" {
			idx = i
			break
		}
	}

	if idx >= 0 {
		existing, ok := inlineCandidates(n.Attr[idx].Val)
		if !ok {
			// Unparseable attribute: keep it verbatim after the computed rules,
			// where browsers let it win anyway.
			if len(computed) > 0 {
				n.Attr[idx].Val = formatDeclarations(withVars(computed, vars)) + " " + n.Attr[idx].Val
			}
			return
		}
		computed = resolve(append(computed, existing...))
	}

	if len(computed) == 0 {
		return
	}
	computed = withVars(computed, vars)
	style := formatDeclarations(computed)
	if idx >= 0 {
		n.Attr[idx].Val = style
		return
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: style})
}

// appendStyleElement adds a <style> holding css to the document head.
func appendStyleElement(doc *goquery.Document, css string) {
	head := doc.Find("head")
	if head.Length() == 0 {
		return
	}
	style := &html.Node{Type: html.ElementNode, Data: "style", DataAtom: atom.Style}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: css})
	head.Nodes[0].AppendChild(style)
}

var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Source: true, atom.Track: true,
	atom.Wbr: true,
}

func isVoid(n *html.Node) bool {
	return voidElements[n.DataAtom]
}
