// Package iocontext provides injectable I/O streams via context for testability.
package iocontext

import (
	"context"
	"fmt"
	"io"
	"os"
)

// MaxInputSize bounds payloads read from files or stdin.
const MaxInputSize = 1 << 20

// IO holds the input/output streams for commands.
type IO struct {
	Out    io.Writer // stdout
	ErrOut io.Writer // stderr
	In     io.Reader // stdin
}

// DefaultIO returns the standard IO streams.
func DefaultIO() *IO {
	return &IO{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
		In:     os.Stdin,
	}
}

type ioKey struct{}

// WithIO adds IO streams to a context.
func WithIO(ctx context.Context, io *IO) context.Context {
	return context.WithValue(ctx, ioKey{}, io)
}

// GetIO retrieves IO streams from context, defaulting to standard streams.
func GetIO(ctx context.Context) *IO {
	if io, ok := ctx.Value(ioKey{}).(*IO); ok && io != nil {
		return io
	}
	return DefaultIO()
}

// ReadInput reads a file, or the context's stdin when path is "-".
func ReadInput(ctx context.Context, path string) ([]byte, error) {
	var r io.Reader
	if path == "-" {
		r = GetIO(ctx).In
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxInputSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxInputSize {
		return nil, fmt.Errorf("input exceeds %d bytes", MaxInputSize)
	}
	return data, nil
}
