package dds

import (
	"context"

	"go.uber.org/zap"

	"github.com/dds-io/dds/pkg/core"
)

// Originator performs the initial, non-network advertisement of newly
// published content, before any peer has asked for it.
type Originator interface {
	Advertise(ctx context.Context, manifestID string) error
}

// LocalOriginator seeds the local node's advertised-content set and logs
// the publication.
type LocalOriginator struct {
	node   *core.Node
	logger *zap.Logger
}

func NewLocalOriginator(node *core.Node, logger *zap.Logger) *LocalOriginator {
	return &LocalOriginator{
		node:   node,
		logger: logger,
	}
}

func (o *LocalOriginator) Advertise(ctx context.Context, manifestID string) error {
	o.node.AddAdvertisedContent(manifestID)
	o.logger.Info("Seeded local content advertisement",
		zap.String("node_id", o.node.ID),
		zap.String("manifest_id", manifestID))
	return nil
}
