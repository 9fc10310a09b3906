package p2p

import (
	"context"
	"fmt"

	"github.com/dds-io/dds/pkg/core"
	"github.com/dds-io/dds/pkg/discovery"
)

// NetworkDiscovery exposes the network's connected peer set as discovery
// candidates, annotated with the content each peer has advertised. The
// snapshot is best-effort: a listed peer may already be unreachable.
type NetworkDiscovery struct {
	network  *Network
	registry *discovery.Registry
}

func NewNetworkDiscovery(net *Network, registry *discovery.Registry) *NetworkDiscovery {
	return &NetworkDiscovery{
		network:  net,
		registry: registry,
	}
}

func (d *NetworkDiscovery) DiscoverPeers(ctx context.Context) ([]*core.Node, error) {
	h := d.network.GetHost()
	if h == nil {
		return nil, fmt.Errorf("network not started: %w", core.ErrDiscovery)
	}

	ids := d.network.GetPeers()
	nodes := make([]*core.Node, 0, len(ids))
	for _, id := range ids {
		address := ""
		if addrs := h.Peerstore().Addrs(id); len(addrs) > 0 {
			address = addrs[0].String()
		}

		node := core.NewNode(id.String(), address)
		for _, contentID := range d.registry.ContentOf(id.String()) {
			node.AddAdvertisedContent(contentID)
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}
