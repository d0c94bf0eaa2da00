package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	page2lms "github.com/alnah/go-page2lms"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake exporter and pool
// ---------------------------------------------------------------------------

// fakePage is the canned outcome of exporting one URL.
type fakePage struct {
	html   string
	err    error
	report *page2lms.Report
}

// fakeExporter writes canned fragments instead of driving a browser.
type fakeExporter struct {
	pages map[string]fakePage

	mu    sync.Mutex
	calls []exportJob
}

func (f *fakeExporter) ExportToFile(ctx context.Context, sourceURL, path string) (*page2lms.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, exportJob{URL: sourceURL, OutputPath: path})
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, ok := f.pages[sourceURL]
	if !ok {
		return nil, errors.New("fake: no page for " + sourceURL)
	}
	if page.err != nil {
		return nil, page.err
	}

	if err := page2lms.WriteOutput(path, []byte(page.html)); err != nil {
		return nil, err
	}

	report := page.report
	if report == nil {
		report = &page2lms.Report{SourceURL: sourceURL, MainFound: true}
	}
	return &page2lms.Result{HTML: []byte(page.html), Report: report}, nil
}

func (f *fakeExporter) jobs() []exportJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]exportJob(nil), f.calls...)
}

// fakePool hands out one shared fakeExporter.
type fakePool struct {
	exporter   *fakeExporter
	size       int
	acquireErr error

	mu       sync.Mutex
	acquired int
	released int
	closed   int
}

func (p *fakePool) Acquire() (pageExporter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.mu.Lock()
	p.acquired++
	p.mu.Unlock()
	return p.exporter, nil
}

func (p *fakePool) Release(pageExporter) {
	p.mu.Lock()
	p.released++
	p.mu.Unlock()
}

func (p *fakePool) Size() int { return p.size }

func (p *fakePool) Close() error {
	p.mu.Lock()
	p.closed++
	p.mu.Unlock()
	return nil
}

// testEnv bundles an Environment with its captured output and pool.
type testEnv struct {
	*Environment
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	exporter *fakeExporter
	pool     *fakePool
	resolver *fakeResolver
}

// fakeResolver answers host lookups without the network.
type fakeResolver struct {
	addrs []string
	err   error

	mu    sync.Mutex
	hosts []string
}

func (r *fakeResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	r.mu.Lock()
	r.hosts = append(r.hosts, host)
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.addrs, nil
}

func (r *fakeResolver) lookups() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.hosts...)
}

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// newTestEnv returns an Environment whose pool serves pages.
// Options are checked against a real Exporter so invalid ones fail Acquire
// as they would in production.
func newTestEnv(pages map[string]fakePage) *testEnv {
	te := &testEnv{
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		exporter: &fakeExporter{pages: pages},
		resolver: &fakeResolver{addrs: []string{"192.0.2.10"}},
	}
	te.Environment = &Environment{
		Now:        func() time.Time { return testNow },
		Stdout:     te.stdout,
		Stderr:     te.stderr,
		LookupHost: te.resolver.LookupHost,
		NewPool: func(size int, opts ...page2lms.Option) Pool {
			te.pool = &fakePool{exporter: te.exporter, size: size}
			if _, err := page2lms.NewExporter(opts...); err != nil {
				te.pool.acquireErr = err
			}
			return te.pool
		},
	}
	return te
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
}
