package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// BlobStore is the opaque file store the evidentiary engine writes
// into. The core hands over declared media type and bytes and gets back
// an opaque storage reference; it never inspects file contents.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
	PublicURL(ctx context.Context, ref string) (string, error)
}

// MemoryBlobStore keeps blobs in process memory. Used by the unit
// suites and local runs without object storage.
type MemoryBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	types map[string]string
}

// NewMemoryBlobStore initializes an empty blob store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		blobs: make(map[string][]byte),
		types: make(map[string]string),
	}
}

func (m *MemoryBlobStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	m.types[key] = contentType
	return key, nil
}

func (m *MemoryBlobStore) Delete(ctx context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, ref)
	delete(m.types, ref)
	return nil
}

func (m *MemoryBlobStore) PublicURL(ctx context.Context, ref string) (string, error) {
	return fmt.Sprintf("memory://%s", ref), nil
}

// Get returns blob bytes, for test assertions.
func (m *MemoryBlobStore) Get(ref string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[ref]
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}
