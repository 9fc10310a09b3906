package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dds-io/dds/pkg/core"
)

// FileStore persists chunks and manifests on the local filesystem. Chunks
// are stored as raw bytes so hashes always cover the canonical content, and
// manifests are stored as JSON.
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a file store rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	for _, dir := range []string{"chunks", "manifests"} {
		if err := os.MkdirAll(filepath.Join(basePath, dir), 0755); err != nil {
			return nil, err
		}
	}

	return &FileStore{basePath: basePath}, nil
}

// StoreChunk writes a chunk's raw bytes under its content address.
func (s *FileStore) StoreChunk(ctx context.Context, chunk *core.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return os.WriteFile(s.chunkPath(chunk.ID), chunk.Data, 0644)
}

// GetChunk reads a chunk by its content address.
func (s *FileStore) GetChunk(ctx context.Context, id string) (*core.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.chunkPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("chunk %s: %w", id, core.ErrNotFound)
		}
		return nil, err
	}

	return &core.Chunk{ID: id, Data: data, Size: len(data)}, nil
}

// StoreManifest writes a manifest as JSON under its content address.
func (s *FileStore) StoreManifest(ctx context.Context, manifest *core.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(manifest)
	if err != nil {
		return err
	}

	return os.WriteFile(s.manifestPath(manifest.ID), data, 0644)
}

// GetManifest reads a manifest by its content address.
func (s *FileStore) GetManifest(ctx context.Context, id string) (*core.Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.manifestPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest %s: %w", id, core.ErrNotFound)
		}
		return nil, err
	}

	var manifest core.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}

	return &manifest, nil
}

// Status summarizes what the store currently holds.
type Status struct {
	ChunkCount    int    `json:"chunk_count"`
	ManifestCount int    `json:"manifest_count"`
	TotalSize     int64  `json:"total_size"`
	BasePath      string `json:"base_path"`
}

// GetStatus reports chunk and manifest counts plus total chunk bytes.
func (s *FileStore) GetStatus(ctx context.Context) (*Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := &Status{BasePath: s.basePath}

	chunks, err := os.ReadDir(filepath.Join(s.basePath, "chunks"))
	if err != nil {
		return nil, err
	}
	for _, entry := range chunks {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		status.ChunkCount++
		status.TotalSize += info.Size()
	}

	manifests, err := os.ReadDir(filepath.Join(s.basePath, "manifests"))
	if err != nil {
		return nil, err
	}
	status.ManifestCount = len(manifests)

	return status, nil
}

func (s *FileStore) chunkPath(id string) string {
	return filepath.Join(s.basePath, "chunks", id)
}

func (s *FileStore) manifestPath(id string) string {
	return filepath.Join(s.basePath, "manifests", id)
}
