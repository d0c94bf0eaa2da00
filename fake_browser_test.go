package page2lms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// ---------------------------------------------------------------------------
// Fake browser: serves canned responses and "renders" documents with goquery
// ---------------------------------------------------------------------------

type fakeResponse struct {
	status int
	body   string
	err    error
}

type fakeBrowser struct {
	pages      map[string]fakeResponse
	openErr    error
	evalErr    error
	panicEval  bool
	setContErr error

	mu          sync.Mutex
	opened      int
	closed      int
	navigations []string
	browserDone bool
}

// Compile-time interface checks
var (
	_ sessionOpener = (*fakeBrowser)(nil)
	_ session       = (*fakeSession)(nil)
)

func newFakeBrowser(pages map[string]fakeResponse) *fakeBrowser {
	return &fakeBrowser{pages: pages}
}

func (b *fakeBrowser) Open(ctx context.Context) (session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.mu.Lock()
	b.opened++
	b.mu.Unlock()
	return &fakeSession{browser: b}, nil
}

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	b.browserDone = true
	b.mu.Unlock()
	return nil
}

func (b *fakeBrowser) counts() (opened, closed int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened, b.closed
}

type fakeSession struct {
	browser *fakeBrowser
	url     string
	doc     string
}

func (s *fakeSession) Navigate(ctx context.Context, u string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.browser.mu.Lock()
	s.browser.navigations = append(s.browser.navigations, u)
	s.browser.mu.Unlock()

	resp, ok := s.browser.pages[u]
	if !ok {
		return 0, errors.New("net::ERR_NAME_NOT_RESOLVED")
	}
	if resp.err != nil {
		return 0, resp.err
	}
	s.url = u
	s.doc = resp.body
	return resp.status, nil
}

func (s *fakeSession) SetContent(ctx context.Context, html string) error {
	if s.browser.setContErr != nil {
		return s.browser.setContErr
	}
	s.url = "about:blank"
	s.doc = html
	return nil
}

func (s *fakeSession) Eval(ctx context.Context, js string, args ...any) (string, error) {
	if s.browser.panicEval {
		panic("eval exploded")
	}
	if s.browser.evalErr != nil {
		return "", s.browser.evalErr
	}

	switch js {
	case collectScript:
		return s.collect(args[0].(string))
	case stylesheetTextScript:
		return s.doc, nil
	case extractScript:
		return s.extract(args[0].(string))
	}
	return "", fmt.Errorf("fake: unknown script %q", js)
}

func (s *fakeSession) Close() error {
	s.browser.mu.Lock()
	s.browser.closed++
	s.browser.mu.Unlock()
	return nil
}

func (s *fakeSession) parse() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(s.doc))
}

func (s *fakeSession) collect(selector string) (string, error) {
	doc, err := s.parse()
	if err != nil {
		return "", err
	}
	base, err := url.Parse(s.url)
	if err != nil {
		return "", err
	}

	c := collected{InlineStyles: []string{}, StylesheetURLs: []string{}}
	doc.Find("style").Each(func(_ int, sel *goquery.Selection) {
		c.InlineStyles = append(c.InlineStyles, sel.Text())
	})
	doc.Find(`link[rel="stylesheet"]`).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		c.StylesheetURLs = append(c.StylesheetURLs, base.ResolveReference(ref).String())
	})

	if main := doc.Find(selector).First(); main.Length() > 0 {
		c.MainHTML, err = goquery.OuterHtml(main)
		c.MainFound = true
	} else {
		c.MainHTML, err = doc.Find("body").Html()
	}
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(c)
	return string(out), err
}

func (s *fakeSession) extract(selector string) (string, error) {
	doc, err := s.parse()
	if err != nil {
		return "", err
	}
	if main := doc.Find(selector).First(); main.Length() > 0 {
		return goquery.OuterHtml(main)
	}
	return doc.Find("body").Html()
}
