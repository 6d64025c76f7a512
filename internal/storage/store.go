// Package storage holds uploaded audio blobs behind a small name-addressed interface.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

var ErrNotFound = errors.New("blob not found")

// ErrInvalidName is returned for names that could escape the store's namespace.
var ErrInvalidName = errors.New("invalid blob name")

// Store persists blobs by flat name.
type Store interface {
	// Put writes r under name and returns the number of bytes stored.
	// A failed Put leaves no blob behind.
	Put(ctx context.Context, name string, r io.Reader) (int64, error)
	// Open returns a seekable handle. The caller closes it.
	Open(ctx context.Context, name string) (*Object, error)
	// Delete removes the blob. A missing blob is not an error.
	Delete(ctx context.Context, name string) error
}

// Object is an open blob.
type Object struct {
	io.ReadSeekCloser
	Size int64
}

// ValidName reports whether name is a single path element.
func ValidName(name string) bool {
	if name == "" || name == "." || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}
