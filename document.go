package page2lms

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/alnah/go-page2lms/internal/inline"
)

// closingStyle matches an end tag that would terminate the wrapper's <style> early.
var closingStyle = regexp.MustCompile(`(?i)</style`)

// buildWrappedDocument places css and the main markup in a minimal document.
func buildWrappedDocument(css, mainHTML string) string {
	css = closingStyle.ReplaceAllString(css, `<\/style`)

	var b strings.Builder
	b.Grow(len(css) + len(mainHTML) + 128)
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">\n<style>")
	b.WriteString(css)
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString(mainHTML)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

// inlineCSS moves the document's styles into style attributes.
func inlineCSS(doc string, opts InlineOptions) (string, error) {
	out, err := inline.Inline(doc, opts.toInternal())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInline, err)
	}
	return out, nil
}

// extractScript returns the main element's markup, or the body's when absent.
const extractScript = `(selector) => {
	const main = document.querySelector(selector);
	if (main) {
		return main.outerHTML;
	}
	return document.body ? document.body.innerHTML : "";
}`

// extractMain loads the inlined document in a fresh session and reads the
// main content back, serialized by the browser.
func extractMain(ctx context.Context, opener sessionOpener, inlined, selector string) (string, error) {
	s, err := opener.Open(ctx)
	if err != nil {
		return "", err
	}
	defer s.Close()

	if err := s.SetContent(ctx, inlined); err != nil {
		return "", fmt.Errorf("%w: loading inlined document: %v", ErrEvaluate, err)
	}

	fragment, err := s.Eval(ctx, extractScript, selector)
	if err != nil {
		return "", fmt.Errorf("%w: extracting main content: %v", ErrEvaluate, err)
	}
	return fragment, nil
}
