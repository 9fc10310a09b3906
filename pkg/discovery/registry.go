package discovery

import "sync"

// Registry tracks which peers advertise which content, in both directions.
// The transport records incoming advertisements here; discovery uses the
// content-to-peer index to order candidates for a retrieval. Entries are
// append-only (no expiry in this design).
type Registry struct {
	mu             sync.RWMutex
	peersByContent map[string][]string // content ID -> advertising peer IDs
	contentByPeer  map[string][]string // peer ID -> advertised content IDs
}

// NewRegistry creates an empty advertisement registry.
func NewRegistry() *Registry {
	return &Registry{
		peersByContent: make(map[string][]string),
		contentByPeer:  make(map[string][]string),
	}
}

// Record notes that peerID advertises contentID. Idempotent.
func (r *Registry) Record(peerID, contentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if contains(r.peersByContent[contentID], peerID) {
		return
	}

	r.peersByContent[contentID] = append(r.peersByContent[contentID], peerID)
	r.contentByPeer[peerID] = append(r.contentByPeer[peerID], contentID)
}

// PeersFor returns the peers known to advertise contentID.
func (r *Registry) PeersFor(contentID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	peers := make([]string, len(r.peersByContent[contentID]))
	copy(peers, r.peersByContent[contentID])
	return peers
}

// ContentOf returns the content IDs a peer has advertised.
func (r *Registry) ContentOf(peerID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content := make([]string, len(r.contentByPeer[peerID]))
	copy(content, r.contentByPeer[peerID])
	return content
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
