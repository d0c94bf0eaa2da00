package page2lms

import (
	"context"
	"encoding/json"
	"fmt"
)

// collectScript reads the style sources and the main markup of the live page
// in one evaluation. Hrefs come back absolute, resolved by the browser.
const collectScript = `(selector) => {
	const main = document.querySelector(selector);
	const body = document.body ? document.body.innerHTML : "";
	return JSON.stringify({
		inlineStyles: Array.from(document.querySelectorAll("style"), (s) => s.innerHTML),
		stylesheetURLs: Array.from(document.querySelectorAll('link[rel="stylesheet"]'), (l) => l.href).filter((h) => h),
		mainHTML: main ? main.outerHTML : body,
		mainFound: main !== null,
	});
}`

// collected is the decoded result of collectScript.
type collected struct {
	InlineStyles   []string `json:"inlineStyles"`
	StylesheetURLs []string `json:"stylesheetURLs"`
	MainHTML       string   `json:"mainHTML"`
	MainFound      bool     `json:"mainFound"`
}

// fetchPage navigates s to url. A navigation error or an HTTP error status is fatal.
func fetchPage(ctx context.Context, s session, url string) error {
	status, err := s.Navigate(ctx, url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s: %v", ErrPageLoad, url, err)
	}
	if status >= 400 {
		return fmt.Errorf("%w: %s: HTTP %d", ErrPageLoad, url, status)
	}
	return nil
}

// collectStyles reads the page currently loaded in s. When selector matches
// nothing the body markup is returned and found is false.
func collectStyles(ctx context.Context, s session, selector string) (bundle StyleBundle, mainHTML string, found bool, err error) {
	raw, err := s.Eval(ctx, collectScript, selector)
	if err != nil {
		return StyleBundle{}, "", false, fmt.Errorf("%w: collecting styles: %v", ErrEvaluate, err)
	}

	var c collected
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return StyleBundle{}, "", false, fmt.Errorf("%w: decoding collected styles: %v", ErrEvaluate, err)
	}

	bundle = StyleBundle{
		InlineStyles:   c.InlineStyles,
		StylesheetURLs: c.StylesheetURLs,
	}
	return bundle, c.MainHTML, c.MainFound, nil
}
