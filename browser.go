package page2lms

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-page2lms/internal/process"
)

// sessionOpener hands out isolated browser sessions.
type sessionOpener interface {
	Open(ctx context.Context) (session, error)
	Close() error
}

// session is one isolated browser tab. Callers must Close it.
type session interface {
	// Navigate loads url and waits until the network is almost idle.
	// status is the HTTP status of the main document, 0 when the browser reported none.
	Navigate(ctx context.Context, url string) (status int, err error)
	// SetContent replaces the current document with html.
	SetContent(ctx context.Context, html string) error
	// Eval runs a JavaScript function expression and returns its string result.
	Eval(ctx context.Context, js string, args ...any) (string, error)
	Close() error
}

// Compile-time interface checks
var (
	_ sessionOpener = (*rodBrowser)(nil)
	_ session       = (*rodSession)(nil)
)

// rodBrowser implements sessionOpener with one headless Chrome process.
// Rod automatically downloads Chromium on first run if not found.
type rodBrowser struct {
	bin       string
	noSandbox bool

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func newRodBrowser(bin string, noSandbox bool) *rodBrowser {
	return &rodBrowser{bin: bin, noSandbox: noSandbox}
}

// ensureBrowser lazily launches and connects to the browser. Caller holds mu.
func (b *rodBrowser) ensureBrowser() error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New()

	// Explicit binary first, then the one preinstalled in containers
	bin := b.bin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if b.noSandbox || os.Getenv("ROD_NO_SANDBOX") != "" || os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b.launcher = l
	b.browser = browser
	return nil
}

// Open creates an incognito context with a single blank page.
func (b *rodBrowser) Open(ctx context.Context) (session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	err := b.ensureBrowser()
	browser := b.browser
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCreate, err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("%w: %v", ErrSessionCreate, err)
	}

	return &rodSession{incognito: incognito, page: page}, nil
}

// Close shuts the browser down and kills its process tree.
func (b *rodBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return nil
	}

	err := b.browser.Close()

	// Chrome helpers can outlive a clean shutdown
	if b.launcher != nil {
		process.KillGroup(b.launcher.PID())
		b.launcher.Kill()
		b.launcher.Cleanup()
	}

	b.browser = nil
	b.launcher = nil
	return err
}

// rodSession is a page inside its own incognito browser context.
type rodSession struct {
	incognito *rod.Browser
	page      *rod.Page
}

// Navigate implements session.
func (s *rodSession) Navigate(ctx context.Context, url string) (int, error) {
	page, cancel := s.page.Context(ctx).WithCancel()
	defer cancel()

	var (
		mu     sync.Mutex
		status int
	)
	// Subscribe before navigating so the document response is not missed
	watch := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		mu.Lock()
		status = e.Response.Status
		mu.Unlock()
		return true
	})
	watched := make(chan struct{})
	go func() {
		defer close(watched)
		watch()
	}()

	idle := page.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := page.Navigate(url); err != nil {
		cancel()
		<-watched
		return 0, err
	}
	idle()

	cancel()
	<-watched

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	mu.Lock()
	defer mu.Unlock()
	return status, nil
}

// SetContent implements session.
func (s *rodSession) SetContent(ctx context.Context, html string) error {
	return s.page.Context(ctx).SetDocumentContent(html)
}

// Eval implements session.
func (s *rodSession) Eval(ctx context.Context, js string, args ...any) (string, error) {
	res, err := s.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// Close disposes the page and its browser context.
func (s *rodSession) Close() error {
	return errors.Join(s.page.Close(), s.incognito.Close())
}
