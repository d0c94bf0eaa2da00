// Package inline moves stylesheet rules into per-element style attributes.
//
// LMS page editors strip <style> and <link> elements, so a fragment pasted into
// one keeps only what its style attributes carry. Inline parses the document's
// <style> blocks, matches each rule against the body subtree, resolves the
// cascade per element (importance, inline origin, specificity, source order)
// and writes the winning declarations back as one style attribute.
//
// Rules that cannot become attributes stay in a single <style> element in the
// head: media queries (when PreserveMediaQueries is set), dynamic pseudo-classes
// such as :hover, pseudo-elements other than ::before/::after, and at-rules
// such as @font-face or @keyframes. @layer wrappers are flattened before
// parsing; layered rules then compete by source order only.
//
// With InlinePseudoElements, ::before and ::after rules that carry a content
// value become <span> children holding the generated text.
//
// The output is a pure function of the input: identical documents produce
// identical bytes.
package inline
