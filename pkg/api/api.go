package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/dds-io/dds/pkg/core"
	"github.com/dds-io/dds/pkg/dds"
	"github.com/dds-io/dds/pkg/p2p"
	"github.com/dds-io/dds/pkg/storage"
)

// MaxContentSize bounds a single published payload.
const MaxContentSize = 32 << 20 // 32MB

type API struct {
	service *dds.Service
	network *p2p.Network
	store   *storage.FileStore
	logger  *zap.Logger
	server  *http.Server
}

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func NewAPI(service *dds.Service, network *p2p.Network, store *storage.FileStore, logger *zap.Logger, port int) (*API, error) {
	api := &API{
		service: service,
		network: network,
		store:   store,
		logger:  logger,
	}

	router := mux.NewRouter()
	api.setupRoutes(router)

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	api.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      corsHandler.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return api, nil
}

func (api *API) setupRoutes(router *mux.Router) {
	// Health check
	router.HandleFunc("/health", api.HealthCheck).Methods("GET")

	// Content
	router.HandleFunc("/content", api.PublishContent).Methods("POST")
	router.HandleFunc("/content/{id}", api.RetrieveContent).Methods("GET")
	router.HandleFunc("/content/{id}/manifest", api.GetManifest).Methods("GET")

	// Network status
	router.HandleFunc("/network/status", api.GetNetworkStatus).Methods("GET")
	router.HandleFunc("/network/peers", api.GetPeers).Methods("GET")

	// Storage status
	router.HandleFunc("/storage/status", api.GetStorageStatus).Methods("GET")
}

func (api *API) Start() error {
	api.logger.Info("Starting API server", zap.String("addr", api.server.Addr))
	return api.server.ListenAndServe()
}

func (api *API) Stop(ctx context.Context) error {
	return api.server.Shutdown(ctx)
}

// Health check handler
func (api *API) HealthCheck(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, APIResponse{
		Success: true,
		Data: map[string]string{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// Content publish handler. The request body is the raw content bytes.
func (api *API) PublishContent(w http.ResponseWriter, r *http.Request) {
	content, err := io.ReadAll(io.LimitReader(r.Body, MaxContentSize))
	if err != nil {
		api.sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	manifestID, err := api.service.Publish(r.Context(), content)
	if err != nil {
		if errors.Is(err, core.ErrEmptyContent) {
			api.sendError(w, "Content is empty", http.StatusBadRequest)
			return
		}
		api.logger.Error("Failed to publish content", zap.Error(err))
		api.sendError(w, "Failed to publish content", http.StatusInternalServerError)
		return
	}

	api.sendResponse(w, APIResponse{
		Success: true,
		Data: map[string]string{
			"manifest_id": manifestID,
		},
	})
}

// Content retrieval handler
func (api *API) RetrieveContent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	manifestID := vars["id"]

	content, err := api.service.Retrieve(r.Context(), manifestID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNoPeers), errors.Is(err, core.ErrManifestUnavailable):
			api.sendError(w, "Content not found", http.StatusNotFound)
		default:
			api.logger.Error("Failed to retrieve content",
				zap.String("manifest_id", manifestID), zap.Error(err))
			api.sendError(w, "Failed to retrieve content", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(content)))
	if _, err := w.Write(content); err != nil {
		api.logger.Error("Failed to write content response", zap.Error(err))
	}
}

// Manifest lookup handler
func (api *API) GetManifest(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	manifestID := vars["id"]

	manifest, err := api.store.GetManifest(r.Context(), manifestID)
	if err != nil {
		api.sendError(w, "Manifest not found", http.StatusNotFound)
		return
	}

	api.sendResponse(w, APIResponse{
		Success: true,
		Data:    manifest,
	})
}

// Network status handler
func (api *API) GetNetworkStatus(w http.ResponseWriter, r *http.Request) {
	peers := api.network.GetPeers()

	api.sendResponse(w, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"peer_count": len(peers),
			"node_id":    api.network.GetHost().ID().String(),
			"addresses":  api.network.GetHost().Addrs(),
		},
	})
}

// Get peers handler
func (api *API) GetPeers(w http.ResponseWriter, r *http.Request) {
	peers := api.network.GetPeers()
	peerInfo := make([]map[string]interface{}, 0, len(peers))

	for _, peer := range peers {
		peerInfo = append(peerInfo, map[string]interface{}{
			"id":        peer.String(),
			"addresses": api.network.GetHost().Peerstore().Addrs(peer),
		})
	}

	api.sendResponse(w, APIResponse{
		Success: true,
		Data:    peerInfo,
	})
}

// Storage status handler
func (api *API) GetStorageStatus(w http.ResponseWriter, r *http.Request) {
	status, err := api.store.GetStatus(r.Context())
	if err != nil {
		api.sendError(w, "Failed to get storage status", http.StatusInternalServerError)
		return
	}

	api.sendResponse(w, APIResponse{
		Success: true,
		Data:    status,
	})
}

// Helper functions
func (api *API) sendResponse(w http.ResponseWriter, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (api *API) sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error:   message,
	})
}
