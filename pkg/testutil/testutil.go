package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dds-io/dds/pkg/core"
	"github.com/dds-io/dds/pkg/storage"
)

// CreateTempDir creates a temporary directory and returns its path along with a cleanup function
func CreateTempDir(t *testing.T, prefix string) (string, func()) {
	tmpDir, err := os.MkdirTemp("", prefix)
	require.NoError(t, err)

	cleanup := func() {
		os.RemoveAll(tmpDir)
	}

	return tmpDir, cleanup
}

// PeerTransport is an in-memory transport double: each registered peer is
// backed by its own store, and requests are served from it without any
// networking. Call counts let tests assert the network path was or was not
// taken.
type PeerTransport struct {
	mu               sync.Mutex
	stores           map[string]storage.Store
	advertised       []string
	manifestRequests int
	chunkRequests    int
}

func NewPeerTransport() *PeerTransport {
	return &PeerTransport{
		stores: make(map[string]storage.Store),
	}
}

// AddPeer registers a peer ID with the store backing it.
func (t *PeerTransport) AddPeer(id string, store storage.Store) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stores[id] = store
}

func (t *PeerTransport) RequestManifest(ctx context.Context, node *core.Node, manifestID string) (*core.Manifest, error) {
	t.mu.Lock()
	t.manifestRequests++
	store, ok := t.stores[node.ID]
	t.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("peer %s: %w", node.ID, core.ErrPeerNotFound)
	}

	manifest, err := store.GetManifest(ctx, manifestID)
	if err != nil {
		return nil, fmt.Errorf("manifest %s from peer %s: %w", manifestID, node.ID, core.ErrManifestUnavailable)
	}

	return manifest, nil
}

func (t *PeerTransport) RequestChunk(ctx context.Context, node *core.Node, chunkID string) (*core.Chunk, error) {
	t.mu.Lock()
	t.chunkRequests++
	store, ok := t.stores[node.ID]
	t.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("peer %s: %w", node.ID, core.ErrPeerNotFound)
	}

	chunk, err := store.GetChunk(ctx, chunkID)
	if err != nil {
		return nil, fmt.Errorf("chunk %s from peer %s: %w", chunkID, node.ID, core.ErrChunkUnavailable)
	}

	return chunk, nil
}

func (t *PeerTransport) AdvertiseContent(ctx context.Context, manifestID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.advertised = append(t.advertised, manifestID)
	return nil
}

// Advertised returns the manifest IDs advertised so far.
func (t *PeerTransport) Advertised() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, len(t.advertised))
	copy(ids, t.advertised)
	return ids
}

// ManifestRequests returns how many manifest requests were issued.
func (t *PeerTransport) ManifestRequests() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.manifestRequests
}

// ChunkRequests returns how many chunk requests were issued.
func (t *PeerTransport) ChunkRequests() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.chunkRequests
}

// RecorderOriginator records seed-time advertisements and can be primed to
// fail.
type RecorderOriginator struct {
	mu    sync.Mutex
	calls []string
	Err   error
}

func NewRecorderOriginator() *RecorderOriginator {
	return &RecorderOriginator{}
}

func (o *RecorderOriginator) Advertise(ctx context.Context, manifestID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, manifestID)
	return o.Err
}

// Calls returns the advertised manifest IDs in order.
func (o *RecorderOriginator) Calls() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	calls := make([]string, len(o.calls))
	copy(calls, o.calls)
	return calls
}

// FailingDiscovery always reports the discovery mechanism as unavailable.
type FailingDiscovery struct {
	Err error
}

func (d *FailingDiscovery) DiscoverPeers(ctx context.Context) ([]*core.Node, error) {
	return nil, d.Err
}
