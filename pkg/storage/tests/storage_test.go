package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dds-io/dds/pkg/core"
	"github.com/dds-io/dds/pkg/storage"
	"github.com/dds-io/dds/pkg/testutil"
)

func setupTestStore(t *testing.T) (*storage.FileStore, func()) {
	tmpDir, cleanup := testutil.CreateTempDir(t, "dds-storage-test-*")

	store, err := storage.NewFileStore(tmpDir)
	require.NoError(t, err)

	return store, cleanup
}

func TestStoreAndGetChunk(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	chunk := core.NewChunk([]byte("chunk payload"))

	require.NoError(t, store.StoreChunk(ctx, chunk))

	got, err := store.GetChunk(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, chunk.ID, got.ID)
	assert.Equal(t, chunk.Data, got.Data)
	assert.Equal(t, chunk.Size, got.Size)
}

func TestGetChunkNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetChunk(context.Background(), core.Hash([]byte("missing")))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStoreChunkOverwrite(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	chunk := core.NewChunk([]byte("same bytes"))

	// Duplicate stores are last-write-wins, not an error
	require.NoError(t, store.StoreChunk(ctx, chunk))
	require.NoError(t, store.StoreChunk(ctx, chunk))

	got, err := store.GetChunk(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, chunk.Data, got.Data)
}

func TestStoreAndGetManifest(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	chunk := core.NewChunk([]byte("manifest chunk"))
	manifest := &core.Manifest{
		ID:        core.ManifestID(core.Hash([]byte("manifest chunk")), []string{chunk.ID}),
		ContentID: core.Hash([]byte("manifest chunk")),
		ChunkIDs:  []string{chunk.ID},
		TotalSize: int64(chunk.Size),
	}

	require.NoError(t, store.StoreManifest(ctx, manifest))

	got, err := store.GetManifest(ctx, manifest.ID)
	require.NoError(t, err)
	assert.Equal(t, manifest.ID, got.ID)
	assert.Equal(t, manifest.ContentID, got.ContentID)
	assert.Equal(t, manifest.ChunkIDs, got.ChunkIDs)
	assert.Equal(t, manifest.TotalSize, got.TotalSize)
}

func TestGetManifestNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetManifest(context.Background(), core.Hash([]byte("missing")))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestFileStoreStatus(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	first := core.NewChunk([]byte("first"))
	second := core.NewChunk([]byte("second"))
	require.NoError(t, store.StoreChunk(ctx, first))
	require.NoError(t, store.StoreChunk(ctx, second))
	require.NoError(t, store.StoreManifest(ctx, &core.Manifest{
		ID:        "manifest",
		ContentID: "content",
		ChunkIDs:  []string{first.ID, second.ID},
		TotalSize: int64(first.Size + second.Size),
	}))

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.ChunkCount)
	assert.Equal(t, 1, status.ManifestCount)
	assert.Equal(t, int64(len("first")+len("second")), status.TotalSize)
}

func TestMemoryStoreContract(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	chunk := core.NewChunk([]byte("memory chunk"))
	require.NoError(t, store.StoreChunk(ctx, chunk))

	got, err := store.GetChunk(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, chunk.Data, got.Data)

	_, err = store.GetChunk(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = store.GetManifest(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryStoreCorrupt(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	chunk := core.NewChunk([]byte("pristine"))
	require.NoError(t, store.StoreChunk(ctx, chunk))
	require.True(t, store.Corrupt(chunk.ID, []byte("mangled")))

	got, err := store.GetChunk(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("mangled"), got.Data)
	assert.False(t, got.Verify())
}
