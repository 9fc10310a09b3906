package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dds-io/dds/pkg/api"
	"github.com/dds-io/dds/pkg/chunker"
	"github.com/dds-io/dds/pkg/config"
	"github.com/dds-io/dds/pkg/core"
	"github.com/dds-io/dds/pkg/dds"
	"github.com/dds-io/dds/pkg/discovery"
	"github.com/dds-io/dds/pkg/p2p"
	"github.com/dds-io/dds/pkg/storage"
)

func main() {
	cfg := config.DefaultConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}

	network, err := p2p.NewNetwork(cfg)
	if err != nil {
		logger.Fatal("Failed to create network", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := network.Start(ctx); err != nil {
		logger.Fatal("Failed to start network", zap.Error(err))
	}

	localNode := core.NewNode(network.GetHost().ID().String(), cfg.ListenAddress)
	registry := discovery.NewRegistry()

	transport := p2p.NewStreamTransport(network, store, registry, localNode, logger,
		time.Duration(cfg.RequestTimeout)*time.Second)
	transport.Start(ctx)

	service := dds.NewService(
		chunker.NewFixedSizeChunker(cfg.ChunkSize),
		store,
		p2p.NewNetworkDiscovery(network, registry),
		transport,
		dds.NewLocalOriginator(localNode, logger),
		logger,
	)

	// Initialize API
	apiServer, err := api.NewAPI(service, network, store, logger, cfg.APIPort)
	if err != nil {
		logger.Fatal("Failed to create API", zap.Error(err))
	}

	// Start API server
	go func() {
		if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("API server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	// Graceful shutdown
	if err := network.Stop(); err != nil {
		logger.Error("Error during network shutdown", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Error("Error shutting down API server", zap.Error(err))
	}
}
