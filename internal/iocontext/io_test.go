// internal/iocontext/io_test.go
package iocontext

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIO(t *testing.T) {
	io := DefaultIO()
	if io.Out == nil || io.ErrOut == nil || io.In == nil {
		t.Error("DefaultIO should return non-nil streams")
	}
}

func TestWithIO(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	io := &IO{Out: out, ErrOut: errOut}
	ctx := WithIO(context.Background(), io)

	if got := GetIO(ctx); got.Out != out || got.ErrOut != errOut {
		t.Error("GetIO should return the IO set with WithIO")
	}
}

func TestGetIO_DefaultsWhenNotSet(t *testing.T) {
	if GetIO(context.Background()) == nil {
		t.Error("GetIO should return default IO when not set")
	}
}

func TestReadInput(t *testing.T) {
	ctx := WithIO(context.Background(), &IO{In: strings.NewReader(`{"size":"1"}`)})
	data, err := ReadInput(ctx, "-")
	if err != nil || string(data) != `{"size":"1"}` {
		t.Errorf("stdin read = %q, %v", data, err)
	}

	path := filepath.Join(t.TempDir(), "fields.json")
	if err := os.WriteFile(path, []byte(`{"a":"b"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	data, err = ReadInput(context.Background(), path)
	if err != nil || string(data) != `{"a":"b"}` {
		t.Errorf("file read = %q, %v", data, err)
	}

	if _, err := ReadInput(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("missing file should fail")
	}

	big := WithIO(context.Background(), &IO{In: strings.NewReader(strings.Repeat("x", MaxInputSize+1))})
	if _, err := ReadInput(big, "-"); err == nil {
		t.Error("oversized input should fail")
	}
}
