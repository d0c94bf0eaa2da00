package page2lms

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// stylesheetTextScript reads a stylesheet the browser displays as a text document.
const stylesheetTextScript = `() => document.body ? document.body.innerText : ""`

// resolveExternalCSS fetches each stylesheet in order through s. A failed URL
// is recorded, logged once as a warning, and skipped. Only context
// cancellation stops the loop.
func resolveExternalCSS(ctx context.Context, s session, urls []string, log logrus.FieldLogger) ([]StylesheetResult, error) {
	results := make([]StylesheetResult, 0, len(urls))

	for _, u := range urls {
		res := fetchStylesheet(ctx, s, u)
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if !res.OK() {
			log.WithFields(logrus.Fields{
				"stylesheet": u,
				"error":      res.Err,
			}).Warn("skipping stylesheet")
		}
		results = append(results, res)
	}
	return results, nil
}

func fetchStylesheet(ctx context.Context, s session, url string) StylesheetResult {
	res := StylesheetResult{URL: url}

	status, err := s.Navigate(ctx, url)
	res.Status = status
	if err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrStylesheetFetch, err)
		return res
	}
	if status >= 400 {
		res.Err = fmt.Errorf("%w: HTTP %d", ErrStylesheetFetch, status)
		return res
	}

	css, err := s.Eval(ctx, stylesheetTextScript)
	if err != nil {
		res.Err = fmt.Errorf("%w: reading body: %v", ErrStylesheetFetch, err)
		return res
	}
	res.CSS = css
	return res
}

// concatCSS joins inline blocks, then each fetched stylesheet, newline separated.
// Failed stylesheets contribute nothing.
func concatCSS(bundle StyleBundle, sheets []StylesheetResult) string {
	var b strings.Builder
	b.WriteString(strings.Join(bundle.InlineStyles, "\n"))
	b.WriteString("\n")
	for _, s := range sheets {
		if !s.OK() {
			continue
		}
		b.WriteString(s.CSS)
		b.WriteString("\n")
	}
	return b.String()
}
