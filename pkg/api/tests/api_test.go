package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dds-io/dds/pkg/api"
	"github.com/dds-io/dds/pkg/chunker"
	"github.com/dds-io/dds/pkg/dds"
	"github.com/dds-io/dds/pkg/discovery"
	"github.com/dds-io/dds/pkg/p2p"
	"github.com/dds-io/dds/pkg/storage"
	"github.com/dds-io/dds/pkg/testutil"
)

// Add APIResponse type or use the qualified name
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func setupTestAPI(t *testing.T) (*api.API, func()) {
	// Create temporary directory for storage
	tmpDir, cleanup := testutil.CreateTempDir(t, "dds-api-test-*")

	store, err := storage.NewFileStore(tmpDir)
	require.NoError(t, err)

	service := dds.NewService(
		chunker.NewFixedSizeChunker(chunker.DefaultChunkSize),
		store,
		discovery.NewStatic(),
		testutil.NewPeerTransport(),
		testutil.NewRecorderOriginator(),
		zap.NewNop(),
	)

	network := &p2p.Network{}

	// Create API instance
	apiInstance, err := api.NewAPI(service, network, store, zap.NewNop(), 0)
	require.NoError(t, err)

	return apiInstance, cleanup
}

func TestHealthCheck(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	// Create test request
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	// Call health check handler
	api.HealthCheck(w, req)

	// Assert response
	assert.Equal(t, http.StatusOK, w.Code)

	var response APIResponse
	err := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)
	assert.True(t, response.Success)
}

func TestPublishAndRetrieveContent(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	content := []byte("content published over HTTP")

	// Publish
	req := httptest.NewRequest("POST", "/content", bytes.NewReader(content))
	w := httptest.NewRecorder()
	api.PublishContent(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.True(t, response.Success)

	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	manifestID, ok := data["manifest_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, manifestID)

	// Retrieve
	req = httptest.NewRequest("GET", "/content/"+manifestID, nil)
	req = mux.SetURLVars(req, map[string]string{"id": manifestID})
	w = httptest.NewRecorder()
	api.RetrieveContent(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, content, w.Body.Bytes())
}

func TestPublishEmptyBody(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	req := httptest.NewRequest("POST", "/content", bytes.NewReader(nil))
	w := httptest.NewRecorder()
	api.PublishContent(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.False(t, response.Success)
}

func TestRetrieveUnknownContent(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	req := httptest.NewRequest("GET", "/content/deadbeef", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "deadbeef"})
	w := httptest.NewRecorder()
	api.RetrieveContent(w, req)

	// Empty local store and zero peers is a not-found, not a crash
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetManifest(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	content := []byte("content with a manifest to look up")
	req := httptest.NewRequest("POST", "/content", bytes.NewReader(content))
	w := httptest.NewRecorder()
	api.PublishContent(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	manifestID := response.Data.(map[string]interface{})["manifest_id"].(string)

	req = httptest.NewRequest("GET", "/content/"+manifestID+"/manifest", nil)
	req = mux.SetURLVars(req, map[string]string{"id": manifestID})
	w = httptest.NewRecorder()
	api.GetManifest(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.True(t, response.Success)

	manifest, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, manifestID, manifest["id"])
	assert.Equal(t, float64(len(content)), manifest["total_size"])
}

func TestGetStorageStatus(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	content := []byte("stored content")
	req := httptest.NewRequest("POST", "/content", bytes.NewReader(content))
	w := httptest.NewRecorder()
	api.PublishContent(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/storage/status", nil)
	w = httptest.NewRecorder()
	api.GetStorageStatus(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.True(t, response.Success)

	status, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), status["chunk_count"])
	assert.Equal(t, float64(1), status["manifest_count"])
	assert.Equal(t, float64(len(content)), status["total_size"])
}
