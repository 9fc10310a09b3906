package dds

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dds-io/dds/pkg/chunker"
	"github.com/dds-io/dds/pkg/storage"
)

// Publisher is the narrow publish-only façade: chunk, persist and seed,
// with no retrieval or network transport. For collaborators that only ever
// push content into the store.
type Publisher struct {
	chunker    chunker.Chunker
	store      storage.Store
	originator Originator
	logger     *zap.Logger
}

func NewPublisher(c chunker.Chunker, store storage.Store, originator Originator, logger *zap.Logger) *Publisher {
	return &Publisher{
		chunker:    c,
		store:      store,
		originator: originator,
		logger:     logger,
	}
}

// PublishContent chunks and stores content, seeds the originator and
// returns the manifest ID. Same fatal/non-fatal split as Service.Publish.
func (p *Publisher) PublishContent(ctx context.Context, content []byte) (string, error) {
	chunks, err := p.chunker.ChunkContent(content)
	if err != nil {
		return "", err
	}

	manifest, err := p.chunker.GenerateManifest(chunks, content)
	if err != nil {
		return "", err
	}

	for _, chunk := range chunks {
		if err := p.store.StoreChunk(ctx, chunk); err != nil {
			return "", fmt.Errorf("failed to store chunk %s: %w", chunk.ID, err)
		}
	}

	if err := p.store.StoreManifest(ctx, manifest); err != nil {
		return "", fmt.Errorf("failed to store manifest %s: %w", manifest.ID, err)
	}

	if err := p.originator.Advertise(ctx, manifest.ID); err != nil {
		p.logger.Warn("Originator advertisement failed",
			zap.String("manifest_id", manifest.ID), zap.Error(err))
	}

	return manifest.ID, nil
}
