package discovery

import (
	"context"

	"github.com/dds-io/dds/pkg/core"
)

// Discovery produces the currently known peer set. The returned slice is a
// best-effort snapshot: it may include unreachable peers, and an empty slice
// without error means "no known peers". Callers must not assume liveness.
type Discovery interface {
	DiscoverPeers(ctx context.Context) ([]*core.Node, error)
}

// Static returns a fixed peer list. Deterministic test double and seed for
// configurations with a known topology.
type Static struct {
	peers []*core.Node
}

func NewStatic(peers ...*core.Node) *Static {
	return &Static{peers: peers}
}

func (s *Static) DiscoverPeers(ctx context.Context) ([]*core.Node, error) {
	peers := make([]*core.Node, len(s.peers))
	copy(peers, s.peers)
	return peers, nil
}
