package main

import (
	"context"
	"fmt"

	page2lms "github.com/alnah/go-page2lms"
)

// pageExporter is the part of page2lms.Exporter the CLI uses.
type pageExporter interface {
	ExportToFile(ctx context.Context, sourceURL, path string) (*page2lms.Result, error)
}

// Compile-time interface implementation check.
var _ pageExporter = (*page2lms.Exporter)(nil)

// Pool abstracts exporter pool operations for testability.
type Pool interface {
	Acquire() (pageExporter, error)
	Release(pageExporter)
	Size() int
	Close() error
}

// poolAdapter exposes page2lms.ExporterPool through Pool.
type poolAdapter struct {
	pool *page2lms.ExporterPool
}

// Compile-time check that poolAdapter implements Pool.
var _ Pool = (*poolAdapter)(nil)

func newPoolAdapter(size int, opts ...page2lms.Option) Pool {
	return &poolAdapter{pool: page2lms.NewExporterPool(size, opts...)}
}

func (a *poolAdapter) Acquire() (pageExporter, error) {
	e, err := a.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Release panics on a foreign exporter: only values from Acquire belong here.
func (a *poolAdapter) Release(e pageExporter) {
	exp, ok := e.(*page2lms.Exporter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", e))
	}
	a.pool.Release(exp)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

func (a *poolAdapter) Close() error {
	return a.pool.Close()
}
