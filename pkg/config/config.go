package config

import "github.com/google/uuid"

type Config struct {
	// Node configuration
	NodeID        string
	ListenAddress string
	Port          int

	// Storage configuration
	StoragePath string
	ChunkSize   int

	// P2P configuration
	BootstrapPeers []string
	RequestTimeout int // seconds, per peer request when the caller sets no deadline

	// API configuration
	APIPort int
}

func DefaultConfig() *Config {
	return &Config{
		NodeID:         uuid.New().String(),
		ListenAddress:  "0.0.0.0",
		Port:           4001,
		StoragePath:    "./storage",
		ChunkSize:      1024, // 1KiB
		RequestTimeout: 10,
		APIPort:        8080,
	}
}
