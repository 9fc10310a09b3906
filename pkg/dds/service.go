package dds

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dds-io/dds/pkg/chunker"
	"github.com/dds-io/dds/pkg/core"
	"github.com/dds-io/dds/pkg/discovery"
	"github.com/dds-io/dds/pkg/p2p"
	"github.com/dds-io/dds/pkg/storage"
)

// Service is the top-level DDS orchestrator. Publish splits content into
// chunks, persists them and announces the result; Retrieve resolves a
// manifest ID back to verified bytes, preferring local storage and falling
// back to discovered peers. Bytes are never returned unverified, and a
// single attempt is served all-local or all-network, never a mix.
type Service struct {
	chunker    chunker.Chunker
	store      storage.Store
	discovery  discovery.Discovery
	transport  p2p.Transport
	originator Originator
	logger     *zap.Logger
}

// NewService wires the service from its capability dependencies.
func NewService(c chunker.Chunker, store storage.Store, disc discovery.Discovery, transport p2p.Transport, originator Originator, logger *zap.Logger) *Service {
	return &Service{
		chunker:    c,
		store:      store,
		discovery:  disc,
		transport:  transport,
		originator: originator,
		logger:     logger,
	}
}

// Publish chunks content, stores it locally and advertises it, returning
// the manifest ID. Chunking and local storage failures are fatal;
// advertisement failures are logged only, since the content is already
// durable and retrievable locally.
func (s *Service) Publish(ctx context.Context, content []byte) (string, error) {
	chunks, err := s.chunker.ChunkContent(content)
	if err != nil {
		return "", err
	}

	manifest, err := s.chunker.GenerateManifest(chunks, content)
	if err != nil {
		return "", err
	}

	for _, chunk := range chunks {
		if err := s.store.StoreChunk(ctx, chunk); err != nil {
			return "", fmt.Errorf("failed to store chunk %s: %w", chunk.ID, err)
		}
	}

	if err := s.store.StoreManifest(ctx, manifest); err != nil {
		return "", fmt.Errorf("failed to store manifest %s: %w", manifest.ID, err)
	}

	if err := s.originator.Advertise(ctx, manifest.ID); err != nil {
		s.logger.Warn("Originator advertisement failed",
			zap.String("manifest_id", manifest.ID), zap.Error(err))
	}

	if err := s.transport.AdvertiseContent(ctx, manifest.ID); err != nil {
		s.logger.Warn("Network advertisement failed",
			zap.String("manifest_id", manifest.ID), zap.Error(err))
	}

	return manifest.ID, nil
}

// Retrieve resolves a manifest ID to its verified content bytes. The local
// store is tried first; a complete local copy is verified and returned
// without touching the network. A local integrity failure is fatal, never
// silently worked around via peers. An incomplete local copy falls through
// to discovery and peer fetch, after which the verified result is cached
// locally best-effort.
func (s *Service) Retrieve(ctx context.Context, manifestID string) ([]byte, error) {
	content, err := s.retrieveLocal(ctx, manifestID)
	if err == nil {
		return content, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	return s.retrieveNetwork(ctx, manifestID)
}

// retrieveLocal serves the manifest entirely from local storage. A missing
// manifest or chunk returns core.ErrNotFound so the caller can fall through
// to the network; verification failures are returned as-is.
func (s *Service) retrieveLocal(ctx context.Context, manifestID string) ([]byte, error) {
	manifest, err := s.store.GetManifest(ctx, manifestID)
	if err != nil {
		return nil, err
	}

	chunks := make([]*core.Chunk, 0, len(manifest.ChunkIDs))
	for _, chunkID := range manifest.ChunkIDs {
		chunk, err := s.store.GetChunk(ctx, chunkID)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	return assembleVerified(manifest, chunks)
}

// retrieveNetwork runs the discovery, manifest fetch, chunk fetch and
// verification stages, caching the verified result locally.
func (s *Service) retrieveNetwork(ctx context.Context, manifestID string) ([]byte, error) {
	peers, err := s.discovery.DiscoverPeers(ctx)
	if err != nil {
		return nil, fmt.Errorf("peer discovery failed: %w", err)
	}
	if len(peers) == 0 {
		return nil, fmt.Errorf("manifest %s: %w", manifestID, core.ErrNoPeers)
	}

	// First peer to answer wins; peers are tried in discovery order.
	var manifest *core.Manifest
	var provider *core.Node
	for _, peer := range peers {
		m, err := s.transport.RequestManifest(ctx, peer, manifestID)
		if err != nil {
			s.logger.Debug("Peer could not supply manifest",
				zap.String("peer", peer.ID),
				zap.String("manifest_id", manifestID),
				zap.Error(err))
			continue
		}
		manifest = m
		provider = peer
		break
	}
	if manifest == nil {
		return nil, fmt.Errorf("manifest %s: all %d peers exhausted: %w",
			manifestID, len(peers), core.ErrManifestUnavailable)
	}

	// Fetch every chunk from the peer that supplied the manifest. A single
	// failed chunk fails the whole attempt.
	chunks := make([]*core.Chunk, 0, len(manifest.ChunkIDs))
	for _, chunkID := range manifest.ChunkIDs {
		chunk, err := s.transport.RequestChunk(ctx, provider, chunkID)
		if err != nil {
			return nil, fmt.Errorf("chunk %s from peer %s: %w", chunkID, provider.ID, err)
		}
		if chunk.ID != chunkID {
			return nil, &core.IntegrityError{
				Subject:  "chunk",
				ID:       chunkID,
				Expected: chunkID,
				Actual:   chunk.ID,
			}
		}
		chunks = append(chunks, chunk)
	}

	content, err := assembleVerified(manifest, chunks)
	if err != nil {
		return nil, err
	}

	s.cache(ctx, manifest, chunks)

	return content, nil
}

// cache stores a verified network result locally, best-effort. The caller
// already holds correct bytes, so failures are logged and swallowed.
func (s *Service) cache(ctx context.Context, manifest *core.Manifest, chunks []*core.Chunk) {
	for _, chunk := range chunks {
		if err := s.store.StoreChunk(ctx, chunk); err != nil {
			s.logger.Warn("Failed to cache chunk",
				zap.String("chunk_id", chunk.ID), zap.Error(err))
			return
		}
	}

	if err := s.store.StoreManifest(ctx, manifest); err != nil {
		s.logger.Warn("Failed to cache manifest",
			zap.String("manifest_id", manifest.ID), zap.Error(err))
	}
}

// assembleVerified reassembles chunks in manifest order and verifies the
// result end to end: each chunk's hash, the declared total size, and the
// whole-content hash. Any mismatch is fatal.
func assembleVerified(manifest *core.Manifest, chunks []*core.Chunk) ([]byte, error) {
	content := make([]byte, 0, manifest.TotalSize)
	for _, chunk := range chunks {
		if actual := core.Hash(chunk.Data); actual != chunk.ID {
			return nil, &core.IntegrityError{
				Subject:  "chunk",
				ID:       chunk.ID,
				Expected: chunk.ID,
				Actual:   actual,
			}
		}
		content = append(content, chunk.Data...)
	}

	if int64(len(content)) != manifest.TotalSize {
		return nil, &core.SizeMismatchError{
			Expected: manifest.TotalSize,
			Actual:   int64(len(content)),
		}
	}

	if actual := core.Hash(content); actual != manifest.ContentID {
		return nil, &core.IntegrityError{
			Subject:  "content",
			ID:       manifest.ID,
			Expected: manifest.ContentID,
			Actual:   actual,
		}
	}

	return content, nil
}
