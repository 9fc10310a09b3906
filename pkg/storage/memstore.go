package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/dds-io/dds/pkg/core"
)

// MemoryStore keeps chunks and manifests in process memory. It satisfies
// the same contract as FileStore and doubles as the deterministic store for
// tests.
type MemoryStore struct {
	mu        sync.RWMutex
	chunks    map[string]*core.Chunk
	manifests map[string]*core.Manifest
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chunks:    make(map[string]*core.Chunk),
		manifests: make(map[string]*core.Manifest),
	}
}

func (s *MemoryStore) StoreChunk(ctx context.Context, chunk *core.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := make([]byte, len(chunk.Data))
	copy(data, chunk.Data)
	s.chunks[chunk.ID] = &core.Chunk{ID: chunk.ID, Data: data, Size: chunk.Size}
	return nil
}

func (s *MemoryStore) GetChunk(ctx context.Context, id string) (*core.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunk, ok := s.chunks[id]
	if !ok {
		return nil, fmt.Errorf("chunk %s: %w", id, core.ErrNotFound)
	}

	data := make([]byte, len(chunk.Data))
	copy(data, chunk.Data)
	return &core.Chunk{ID: chunk.ID, Data: data, Size: chunk.Size}, nil
}

func (s *MemoryStore) StoreManifest(ctx context.Context, manifest *core.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.manifests[manifest.ID] = manifest
	return nil
}

func (s *MemoryStore) GetManifest(ctx context.Context, id string) (*core.Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	manifest, ok := s.manifests[id]
	if !ok {
		return nil, fmt.Errorf("manifest %s: %w", id, core.ErrNotFound)
	}

	return manifest, nil
}

// Corrupt overwrites a stored chunk's bytes without touching its ID. Test
// hook for exercising integrity verification.
func (s *MemoryStore) Corrupt(id string, data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunk, ok := s.chunks[id]
	if !ok {
		return false
	}

	chunk.Data = data
	chunk.Size = len(data)
	return true
}
