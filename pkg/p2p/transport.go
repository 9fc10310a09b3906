package p2p

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"go.uber.org/zap"

	"github.com/dds-io/dds/pkg/core"
	"github.com/dds-io/dds/pkg/discovery"
	"github.com/dds-io/dds/pkg/storage"
)

const DefaultRequestTimeout = 10 * time.Second

// Transport provides the request/response primitives against a specific
// peer, plus outward advertisement of locally held content. Requests honor
// the context deadline; a default timeout applies when none is set so an
// unresponsive peer fails instead of stalling the caller.
type Transport interface {
	RequestManifest(ctx context.Context, node *core.Node, manifestID string) (*core.Manifest, error)
	RequestChunk(ctx context.Context, node *core.Node, chunkID string) (*core.Chunk, error)
	AdvertiseContent(ctx context.Context, manifestID string) error
}

// StreamTransport exchanges JSON messages over libp2p streams and publishes
// advertisements on the gossipsub topic. Incoming requests are served from
// the local store; incoming advertisements are recorded in the registry.
type StreamTransport struct {
	network  *Network
	store    storage.Store
	registry *discovery.Registry
	local    *core.Node
	logger   *zap.Logger
	timeout  time.Duration
}

// NewStreamTransport creates a transport bound to a started network.
func NewStreamTransport(net *Network, store storage.Store, registry *discovery.Registry, local *core.Node, logger *zap.Logger, timeout time.Duration) *StreamTransport {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &StreamTransport{
		network:  net,
		store:    store,
		registry: registry,
		local:    local,
		logger:   logger,
		timeout:  timeout,
	}
}

// Start registers the stream handler and begins consuming advertisements.
func (t *StreamTransport) Start(ctx context.Context) {
	t.network.GetHost().SetStreamHandler(protocol.ID(ProtocolID), t.handleStream)
	go t.listenAnnouncements(ctx)
}

// RequestManifest asks a specific peer for a manifest.
func (t *StreamTransport) RequestManifest(ctx context.Context, node *core.Node, manifestID string) (*core.Manifest, error) {
	resp, err := t.request(ctx, node, &Message{
		Type:      MessageTypeManifestRequest,
		RequestID: uuid.New().String(),
		ContentID: manifestID,
		From:      t.localID(),
	})
	if err != nil {
		return nil, err
	}

	if resp.NotFound || resp.Manifest == nil {
		return nil, fmt.Errorf("manifest %s from peer %s: %w", manifestID, node.ID, core.ErrManifestUnavailable)
	}

	return resp.Manifest, nil
}

// RequestChunk asks a specific peer for a chunk.
func (t *StreamTransport) RequestChunk(ctx context.Context, node *core.Node, chunkID string) (*core.Chunk, error) {
	resp, err := t.request(ctx, node, &Message{
		Type:      MessageTypeChunkRequest,
		RequestID: uuid.New().String(),
		ContentID: chunkID,
		From:      t.localID(),
	})
	if err != nil {
		return nil, err
	}

	if resp.NotFound || resp.Chunk == nil {
		return nil, fmt.Errorf("chunk %s from peer %s: %w", chunkID, node.ID, core.ErrChunkUnavailable)
	}

	return resp.Chunk, nil
}

// AdvertiseContent records the manifest in the local node's advertised set
// and broadcasts the announcement. Best-effort from the caller's
// perspective; publish must not fail on a broken broadcast.
func (t *StreamTransport) AdvertiseContent(ctx context.Context, manifestID string) error {
	t.local.AddAdvertisedContent(manifestID)

	data, err := json.Marshal(&Message{
		Type:      MessageTypeAdvertisement,
		ContentID: manifestID,
		From:      t.localID(),
	})
	if err != nil {
		return err
	}

	return t.network.Broadcast(ctx, data)
}

func (t *StreamTransport) request(ctx context.Context, node *core.Node, msg *Message) (*Message, error) {
	pid, err := peer.Decode(node.ID)
	if err != nil {
		return nil, fmt.Errorf("peer %s: %w", node.ID, core.ErrPeerNotFound)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	stream, err := t.network.GetHost().NewStream(ctx, pid, protocol.ID(ProtocolID))
	if err != nil {
		return nil, fmt.Errorf("peer %s: %s: %w", node.ID, err, core.ErrPeerNotFound)
	}
	defer stream.Close()

	if deadline, ok := ctx.Deadline(); ok {
		stream.SetDeadline(deadline)
	}

	if err := json.NewEncoder(stream).Encode(msg); err != nil {
		return nil, fmt.Errorf("failed to send request to peer %s: %w", node.ID, err)
	}

	var resp Message
	if err := json.NewDecoder(stream).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to read response from peer %s: %w", node.ID, err)
	}

	return &resp, nil
}

func (t *StreamTransport) handleStream(stream network.Stream) {
	defer stream.Close()

	var req Message
	if err := json.NewDecoder(stream).Decode(&req); err != nil {
		t.logger.Warn("Failed to decode peer request", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	resp := t.serve(ctx, &req)
	if err := json.NewEncoder(stream).Encode(resp); err != nil {
		t.logger.Warn("Failed to send peer response", zap.Error(err))
	}
}

func (t *StreamTransport) serve(ctx context.Context, req *Message) *Message {
	resp := &Message{
		RequestID: req.RequestID,
		ContentID: req.ContentID,
		From:      t.localID(),
	}

	switch req.Type {
	case MessageTypeManifestRequest:
		resp.Type = MessageTypeManifestResponse
		manifest, err := t.store.GetManifest(ctx, req.ContentID)
		if err != nil {
			if !errors.Is(err, core.ErrNotFound) {
				t.logger.Warn("Failed to read manifest for peer",
					zap.String("manifest_id", req.ContentID), zap.Error(err))
			}
			resp.NotFound = true
			return resp
		}
		resp.Manifest = manifest

	case MessageTypeChunkRequest:
		resp.Type = MessageTypeChunkResponse
		chunk, err := t.store.GetChunk(ctx, req.ContentID)
		if err != nil {
			if !errors.Is(err, core.ErrNotFound) {
				t.logger.Warn("Failed to read chunk for peer",
					zap.String("chunk_id", req.ContentID), zap.Error(err))
			}
			resp.NotFound = true
			return resp
		}
		resp.Chunk = chunk

	default:
		resp.NotFound = true
	}

	return resp
}

func (t *StreamTransport) listenAnnouncements(ctx context.Context) {
	sub := t.network.GetSubscription()
	selfID := t.network.GetHost().ID()

	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			// Handle context cancellation
			if ctx.Err() != nil {
				return
			}
			continue
		}

		// Skip messages from ourselves
		if msg.ReceivedFrom == selfID {
			continue
		}

		var adv Message
		if err := json.Unmarshal(msg.Data, &adv); err != nil {
			continue
		}

		if adv.Type != MessageTypeAdvertisement || adv.ContentID == "" {
			continue
		}

		t.registry.Record(msg.ReceivedFrom.String(), adv.ContentID)
		t.logger.Debug("Recorded content advertisement",
			zap.String("peer", msg.ReceivedFrom.String()),
			zap.String("manifest_id", adv.ContentID))
	}
}

func (t *StreamTransport) localID() string {
	if h := t.network.GetHost(); h != nil {
		return h.ID().String()
	}
	return t.local.ID
}
