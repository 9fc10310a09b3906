package storage

import (
	"context"

	"github.com/dds-io/dds/pkg/core"
)

// Store is the local persistence layer for chunks and manifests, keyed by
// content address. Writes trust the caller's hashes; reads surface
// core.ErrNotFound on a miss. Duplicate stores overwrite (last write wins).
type Store interface {
	StoreChunk(ctx context.Context, chunk *core.Chunk) error
	GetChunk(ctx context.Context, id string) (*core.Chunk, error)
	StoreManifest(ctx context.Context, manifest *core.Manifest) error
	GetManifest(ctx context.Context, id string) (*core.Manifest, error)
}
