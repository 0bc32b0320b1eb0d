package services

import (
	"context"
	"io"
)

//go:generate mockgen -source=blob.go -destination=mocks/blob_store.go -package=mocks

// BlobStore keeps the raw bytes behind catalog files.
type BlobStore interface {
	// Put stores everything read from r and returns its handle and length
	Put(ctx context.Context, r io.Reader) (handle string, size int64, err error)

	// Get opens the bytes stored under handle; the caller closes the reader
	Get(ctx context.Context, handle string) (io.ReadCloser, error)

	// Delete removes the bytes stored under handle
	Delete(ctx context.Context, handle string) error
}
