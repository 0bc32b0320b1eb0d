package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"filehub/internal/domain"
	"filehub/internal/domain/services"

	"github.com/google/uuid"
)

// NewHandle returns a fresh blob handle
func NewHandle() string {
	return "blobs/" + uuid.NewString()
}

// MemoryStore keeps blobs in a map. Used by tests and BLOB_DRIVER=memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory blob store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Put stores everything read from r
func (m *MemoryStore) Put(ctx context.Context, r io.Reader) (string, int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, fmt.Errorf("read blob: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	handle := NewHandle()
	m.mu.Lock()
	m.blobs[handle] = data
	m.mu.Unlock()

	return handle, int64(len(data)), nil
}

// Get returns a reader over the stored bytes
func (m *MemoryStore) Get(ctx context.Context, handle string) (io.ReadCloser, error) {
	m.mu.RLock()
	data, ok := m.blobs[handle]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("blob %s: %w", handle, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes a blob; deleting a missing handle is not an error
func (m *MemoryStore) Delete(ctx context.Context, handle string) error {
	m.mu.Lock()
	delete(m.blobs, handle)
	m.mu.Unlock()
	return nil
}

// Len reports how many blobs are stored
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

var _ services.BlobStore = (*MemoryStore)(nil)
