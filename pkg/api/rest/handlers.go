package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/arjunmehta/opticscore/internal/runs"
	"github.com/arjunmehta/opticscore/pkg/observability"
)

// Handler serves the OPTICS HTTP API directly against a run manager, run
// store, and result cache.
type Handler struct {
	manager *runs.Manager
	store   *runs.Store
	cache   *runs.ResultCache
	metrics *observability.Metrics
	logger  *observability.Logger
}

// NewHandler creates a new REST API handler.
func NewHandler(manager *runs.Manager, store *runs.Store, cache *runs.ResultCache, metrics *observability.Metrics, logger *observability.Logger) *Handler {
	return &Handler{
		manager: manager,
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// HealthCheck handles GET /v1/health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]interface{}{
		"status": "ok",
		"runs":   h.store.Len(),
	}, http.StatusOK)
}

// GetStats handles GET /v1/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]interface{}{
		"run_count":  h.store.Len(),
		"cache":      h.cache.Stats(),
		"owner_list": h.manager.ListOwners(),
	}, http.StatusOK)
}

// ownerRequest is the JSON body for POST /v1/owners.
type ownerRequest struct {
	ID    string     `json:"id"`
	Quota runs.Quota `json:"quota"`
}

// Owners handles POST /v1/owners (create) and GET /v1/owners (list).
func (h *Handler) Owners(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, h.manager.ListOwners(), http.StatusOK)
	case http.MethodPost:
		var req ownerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
			return
		}
		if req.ID == "" {
			writeError(w, "owner id is required", http.StatusBadRequest)
			return
		}

		owner, err := h.manager.CreateOwner(req.ID, req.Quota)
		if err != nil {
			writeError(w, err.Error(), http.StatusConflict)
			return
		}
		writeJSON(w, owner, http.StatusCreated)
	default:
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// OwnerByID handles GET/DELETE /v1/owners/{id}.
func (h *Handler) OwnerByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/owners/")
	if id == "" {
		writeError(w, "owner id is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		owner, err := h.manager.GetOwner(id)
		if err != nil {
			writeError(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, owner, http.StatusOK)
	case http.MethodDelete:
		if err := h.manager.DeleteOwner(id); err != nil {
			writeError(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]string{"status": "deleted"}, http.StatusOK)
	default:
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// runRequest is the JSON body for POST /v1/runs.
type runRequest struct {
	OwnerID string      `json:"owner_id"`
	Dataset [][]float64 `json:"dataset"`
	Params  runs.Params `json:"params"`
}

// Runs handles POST /v1/runs: submit a new OPTICS run.
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.OwnerID == "" {
		writeError(w, "owner_id is required", http.StatusBadRequest)
		return
	}

	req.Params = req.Params.Normalize()

	owner, err := h.manager.GetOwner(req.OwnerID)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}

	if err := owner.CheckRateLimit(); err != nil {
		h.metrics.RecordError("POST /v1/runs", "rate_limited")
		writeError(w, err.Error(), http.StatusTooManyRequests)
		return
	}
	if err := owner.CheckPointQuota(int64(len(req.Dataset))); err != nil {
		writeError(w, err.Error(), http.StatusForbidden)
		return
	}
	if len(req.Dataset) > 0 {
		if err := owner.CheckDimensionQuota(len(req.Dataset[0])); err != nil {
			writeError(w, err.Error(), http.StatusForbidden)
			return
		}
	}

	key := runs.Key(req.OwnerID, req.Dataset, req.Params)
	if cached, found := h.cache.Get(key); found {
		h.metrics.RecordCacheHit()
		writeJSON(w, cached, http.StatusOK)
		return
	}
	h.metrics.RecordCacheMiss()

	h.metrics.RecordRunSubmitted()
	run, err := h.store.Submit(req.OwnerID, req.Dataset, req.Params)
	if err != nil {
		h.metrics.RecordRunFailed()
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if run.Status == runs.StatusFailed {
		h.metrics.RecordRunFailed()
		writeError(w, run.Err, http.StatusBadRequest)
		return
	}

	owner.RecordRun(int64(run.NumPoints))
	h.metrics.RecordClusterExtraction(run.ID, len(run.Clusters), clusterOutlierCount(run))
	h.cache.Put(key, run)

	writeJSON(w, run, http.StatusCreated)
}

// RunByID handles GET/DELETE /v1/runs/{id} and GET /v1/runs/{id}/clusters.
func (h *Handler) RunByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/runs/")

	wantClusters := false
	if strings.HasSuffix(path, "/clusters") {
		wantClusters = true
		path = strings.TrimSuffix(path, "/clusters")
	}

	id := path
	if id == "" {
		writeError(w, "run id is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		run, err := h.store.Get(id)
		if err != nil {
			writeError(w, err.Error(), http.StatusNotFound)
			return
		}
		if wantClusters {
			writeJSON(w, run.Clusters, http.StatusOK)
			return
		}
		writeJSON(w, run, http.StatusOK)
	case http.MethodDelete:
		if err := h.store.Delete(id); err != nil {
			writeError(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]string{"status": "deleted"}, http.StatusOK)
	default:
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// batchRunRequest is the JSON body for POST /v1/runs/batch.
type batchRunRequest struct {
	Requests []runs.BatchRequest `json:"requests"`
}

// BatchRuns handles POST /v1/runs/batch.
func (h *Handler) BatchRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req batchRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	for i := range req.Requests {
		req.Requests[i].Params = req.Requests[i].Params.Normalize()
	}

	start := time.Now()
	result := h.store.BatchSubmit(req.Requests, nil)
	h.metrics.RecordBatchRun(time.Since(start), result.TotalProcessed)

	writeJSON(w, result, http.StatusOK)
}

func clusterOutlierCount(run *runs.Run) int {
	if len(run.Clusters) == 0 {
		return 0
	}
	return len(run.Clusters[0])
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  message,
		"status": statusCode,
	})
}

// ServeDocs serves the OpenAPI/Swagger documentation.
func ServeDocs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	content, err := os.ReadFile("docs/api/openapi.yaml")
	if err != nil {
		writeError(w, "OpenAPI spec not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// ServeSwaggerUI serves the Swagger UI HTML page.
func ServeSwaggerUI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	html := `<!DOCTYPE html>
<html>
<head>
    <title>OpticsCore API Documentation</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: "/docs/openapi.yaml",
                dom_id: '#swagger-ui',
                presets: [
                    SwaggerUIBundle.presets.apis,
                    SwaggerUIBundle.SwaggerUIStandalonePreset
                ],
                layout: "BaseLayout"
            });
        };
    </script>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}
