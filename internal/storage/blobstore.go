// Package storage persists opaque byte blobs (encrypted credential
// containers, uploaded captures) under string ids.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob not found")

// BlobStore replaces a blob wholesale on Put; readers see either the old or
// the new bytes, never a mix.
type BlobStore interface {
	Put(ctx context.Context, id string, data []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}
