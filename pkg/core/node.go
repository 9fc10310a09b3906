package core

import "sync"

// Node describes a network participant: its identity, endpoint, the content
// it advertises and an externally supplied reputation hint used only for
// peer ordering.
type Node struct {
	ID              string `json:"id"`
	Address         string `json:"address"`
	ReputationScore int    `json:"reputation_score"`

	mu           sync.RWMutex
	knownContent map[string]struct{}
}

// NewNode creates a node with an empty advertised-content set.
func NewNode(id, address string) *Node {
	return &Node{
		ID:           id,
		Address:      address,
		knownContent: make(map[string]struct{}),
	}
}

// AddAdvertisedContent records that this node advertises the given content
// ID. Idempotent; the set only ever grows.
func (n *Node) AddAdvertisedContent(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.knownContent == nil {
		n.knownContent = make(map[string]struct{})
	}
	n.knownContent[id] = struct{}{}
}

// Knows reports whether this node has advertised the given content ID.
func (n *Node) Knows(id string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	_, ok := n.knownContent[id]
	return ok
}

// KnownContent returns a snapshot of the advertised content IDs.
func (n *Node) KnownContent() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	ids := make([]string, 0, len(n.knownContent))
	for id := range n.knownContent {
		ids = append(ids, id)
	}
	return ids
}
