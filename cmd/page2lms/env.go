package main

import (
	"context"
	"io"
	"net"
	"os"
	"time"

	page2lms "github.com/alnah/go-page2lms"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	NewPool func(size int, opts ...page2lms.Option) Pool

	// LookupHost resolves the source host for doctor. Nil uses the system resolver.
	LookupHost func(ctx context.Context, host string) ([]string, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:        time.Now,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		NewPool:    newPoolAdapter,
		LookupHost: net.DefaultResolver.LookupHost,
	}
}
