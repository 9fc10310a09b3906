package dds_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dds-io/dds/pkg/chunker"
	"github.com/dds-io/dds/pkg/core"
	"github.com/dds-io/dds/pkg/dds"
	"github.com/dds-io/dds/pkg/storage"
	"github.com/dds-io/dds/pkg/testutil"
)

func newPublisherFixture(t *testing.T) (*dds.Publisher, *storage.MemoryStore, *testutil.RecorderOriginator) {
	store := storage.NewMemoryStore()
	originator := testutil.NewRecorderOriginator()

	publisher := dds.NewPublisher(
		chunker.NewFixedSizeChunker(testChunkSize),
		store,
		originator,
		zap.NewNop(),
	)

	return publisher, store, originator
}

func TestPublishContent(t *testing.T) {
	publisher, store, originator := newPublisherFixture(t)
	ctx := context.Background()

	content := []byte("published through the facade")
	manifestID, err := publisher.PublishContent(ctx, content)
	require.NoError(t, err)

	// Manifest and all chunks are durable
	manifest, err := store.GetManifest(ctx, manifestID)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), manifest.TotalSize)
	for _, chunkID := range manifest.ChunkIDs {
		chunk, err := store.GetChunk(ctx, chunkID)
		require.NoError(t, err)
		assert.True(t, chunk.Verify())
	}

	assert.Equal(t, []string{manifestID}, originator.Calls())
}

func TestPublishContentEmpty(t *testing.T) {
	publisher, _, originator := newPublisherFixture(t)

	_, err := publisher.PublishContent(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrEmptyContent)
	assert.Empty(t, originator.Calls())
}

func TestIndependentPublishersConverge(t *testing.T) {
	first, _, _ := newPublisherFixture(t)
	second, _, _ := newPublisherFixture(t)
	ctx := context.Background()

	content := []byte("identical content, identical manifest id")

	id1, err := first.PublishContent(ctx, content)
	require.NoError(t, err)
	id2, err := second.PublishContent(ctx, content)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
}

func TestPublishContentSurvivesOriginatorFailure(t *testing.T) {
	publisher, store, originator := newPublisherFixture(t)
	originator.Err = assert.AnError
	ctx := context.Background()

	manifestID, err := publisher.PublishContent(ctx, []byte("durable regardless"))
	require.NoError(t, err)

	_, err = store.GetManifest(ctx, manifestID)
	require.NoError(t, err)
}
