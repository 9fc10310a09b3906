package p2p

import "github.com/dds-io/dds/pkg/core"

// Message types for network communication
type MessageType int

const (
	MessageTypeAdvertisement MessageType = iota
	MessageTypeManifestRequest
	MessageTypeManifestResponse
	MessageTypeChunkRequest
	MessageTypeChunkResponse
)

// Message is the logical request/response envelope exchanged between peers,
// encoded as JSON on the wire. Responses echo the request ID. Hashes are
// always computed over the raw content bytes carried inside, never over
// this envelope.
type Message struct {
	Type      MessageType    `json:"type"`
	RequestID string         `json:"request_id,omitempty"`
	ContentID string         `json:"content_id,omitempty"`
	Manifest  *core.Manifest `json:"manifest,omitempty"`
	Chunk     *core.Chunk    `json:"chunk,omitempty"`
	NotFound  bool           `json:"not_found,omitempty"`
	From      string         `json:"from,omitempty"`
}
