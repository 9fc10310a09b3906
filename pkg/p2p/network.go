package p2p

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	"github.com/multiformats/go-multiaddr"

	"github.com/dds-io/dds/pkg/config"
)

const (
	ProtocolID         = "/dds/1.0.0"
	DiscoveryNamespace = "dds-network"
	PubsubTopic        = "dds-announcements"
	ConnectionTimeout  = 10 * time.Second
)

// Network owns the libp2p machinery: the host, the DHT used for peer
// routing, the gossipsub topic carrying content advertisements, and the
// set of connected peers.
type Network struct {
	cfg          *config.Config
	host         host.Host
	dht          *dht.IpfsDHT
	pubsub       *pubsub.PubSub
	topic        *pubsub.Topic
	subscription *pubsub.Subscription
	peers        map[peer.ID]peer.AddrInfo
	mu           sync.RWMutex
}

func NewNetwork(cfg *config.Config) (*Network, error) {
	return &Network{
		cfg:   cfg,
		peers: make(map[peer.ID]peer.AddrInfo),
	}, nil
}

func (n *Network) Start(ctx context.Context) error {
	// Create libp2p host
	h, err := n.createHost()
	if err != nil {
		return fmt.Errorf("failed to create host: %w", err)
	}
	n.host = h

	// Initialize DHT
	if err := n.initDHT(ctx); err != nil {
		return fmt.Errorf("failed to initialize DHT: %w", err)
	}

	// Initialize PubSub
	if err := n.initPubSub(ctx); err != nil {
		return fmt.Errorf("failed to initialize PubSub: %w", err)
	}

	// Start mDNS discovery
	if err := n.initMDNS(); err != nil {
		return fmt.Errorf("failed to initialize mDNS: %w", err)
	}

	// Connect to bootstrap peers
	if err := n.connectToBootstrapPeers(ctx); err != nil {
		return fmt.Errorf("failed to connect to bootstrap peers: %w", err)
	}

	return nil
}

func (n *Network) createHost() (host.Host, error) {
	// Create multiaddr
	addr, err := multiaddr.NewMultiaddr(fmt.Sprintf("/ip4/%s/tcp/%d", n.cfg.ListenAddress, n.cfg.Port))
	if err != nil {
		return nil, err
	}

	// Create libp2p options
	opts := []libp2p.Option{
		libp2p.ListenAddrs(addr),
		libp2p.EnableNATService(),
	}

	// Only enable auto relay if we have bootstrap peers configured
	if len(n.cfg.BootstrapPeers) > 0 {
		opts = append(opts, libp2p.EnableAutoRelay())
	}

	// Create libp2p host
	return libp2p.New(opts...)
}

func (n *Network) initDHT(ctx context.Context) error {
	var err error
	n.dht, err = dht.New(ctx, n.host,
		dht.Mode(dht.ModeServer),
		dht.ProtocolPrefix(protocol.ID(ProtocolID)),
	)
	if err != nil {
		return err
	}

	if err := n.dht.Bootstrap(ctx); err != nil {
		return err
	}

	return nil
}

func (n *Network) initPubSub(ctx context.Context) error {
	var err error
	// Create pubsub
	n.pubsub, err = pubsub.NewGossipSub(ctx, n.host)
	if err != nil {
		return err
	}

	// Join topic
	n.topic, err = n.pubsub.Join(PubsubTopic)
	if err != nil {
		return err
	}

	// Subscribe to topic
	n.subscription, err = n.topic.Subscribe()
	if err != nil {
		return err
	}

	return nil
}

func (n *Network) initMDNS() error {
	// Create mDNS service
	service := mdns.NewMdnsService(n.host, DiscoveryNamespace, n)
	return service.Start()
}

// HandlePeerFound implements the mdns.Notifee interface
func (n *Network) HandlePeerFound(pi peer.AddrInfo) {
	n.connectToPeer(context.Background(), pi)
}

func (n *Network) connectToBootstrapPeers(ctx context.Context) error {
	for _, addr := range n.cfg.BootstrapPeers {
		maddr, err := multiaddr.NewMultiaddr(addr)
		if err != nil {
			continue
		}

		peerInfo, err := peer.AddrInfoFromP2pAddr(maddr)
		if err != nil {
			continue
		}

		if err := n.connectToPeerWithBackoff(ctx, *peerInfo); err != nil {
			continue
		}
	}
	return nil
}

func (n *Network) connectToPeer(ctx context.Context, peerInfo peer.AddrInfo) error {
	ctx, cancel := context.WithTimeout(ctx, ConnectionTimeout)
	defer cancel()

	if err := n.host.Connect(ctx, peerInfo); err != nil {
		return err
	}

	n.mu.Lock()
	n.peers[peerInfo.ID] = peerInfo
	n.mu.Unlock()

	return nil
}

func (n *Network) connectToPeerWithBackoff(ctx context.Context, peerInfo peer.AddrInfo) error {
	backoff := time.Second
	maxBackoff := time.Minute

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			err := n.connectToPeer(ctx, peerInfo)
			if err == nil {
				return nil
			}

			if backoff > maxBackoff {
				return fmt.Errorf("max backoff reached: %w", err)
			}

			time.Sleep(backoff)
			backoff *= 2
		}
	}
}

// Broadcast publishes data on the advertisement topic.
func (n *Network) Broadcast(ctx context.Context, data []byte) error {
	return n.topic.Publish(ctx, data)
}

func (n *Network) GetPeers() []peer.ID {
	n.mu.RLock()
	defer n.mu.RUnlock()

	peers := make([]peer.ID, 0, len(n.peers))
	for id := range n.peers {
		peers = append(peers, id)
	}
	return peers
}

func (n *Network) Stop() error {
	if n.subscription != nil {
		n.subscription.Cancel()
	}

	if n.topic != nil {
		n.topic.Close()
	}

	if n.dht != nil {
		if err := n.dht.Close(); err != nil {
			return err
		}
	}

	if n.host != nil {
		return n.host.Close()
	}

	return nil
}

func (n *Network) GetHost() host.Host {
	return n.host
}

// ConnectToPeer exports the peer connection functionality
func (n *Network) ConnectToPeer(ctx context.Context, peerInfo peer.AddrInfo) error {
	return n.connectToPeer(ctx, peerInfo)
}

// GetSubscription returns the advertisement topic subscription
func (n *Network) GetSubscription() *pubsub.Subscription {
	return n.subscription
}
