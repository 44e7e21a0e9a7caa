// Package api implements the hosted Recipescope REST API.
// It provides ingest and read endpoints backed by Postgres and blob storage.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/recipescope/recipescope/internal/catalog"
	"github.com/recipescope/recipescope/internal/ingestion"
)

// Catalog is the read side of the project/evaluation catalog.
type Catalog interface {
	ListProjects(ctx context.Context) ([]catalog.Project, error)
	GetProject(ctx context.Context, projectID string) (*catalog.Project, error)
	ListEvaluations(ctx context.Context, projectID string) ([]catalog.EvaluationRow, error)
	GetEvaluation(ctx context.Context, evaluationID string) (*catalog.EvaluationRow, error)
	LatestEvaluationForReport(ctx context.Context, reportID string) (*catalog.EvaluationRow, error)
	ListReports(ctx context.Context, projectID string) ([]catalog.ReportRef, error)
}

// Handler is the top-level API handler for the hosted Recipescope service.
type Handler struct {
	catalog      Catalog
	ingestionSvc *ingestion.Service
	cache        *ReportCache

	// RescoreParallelism bounds concurrent re-evaluations.
	RescoreParallelism int
	// Health, when set, backs /healthz.
	Health func(ctx context.Context) error
}

// NewHandler creates a new API handler.
func NewHandler(cat Catalog, ingestionSvc *ingestion.Service, cache *ReportCache) *Handler {
	if cache == nil {
		cache = NewReportCacheFromEnv()
	}
	return &Handler{
		catalog:            cat,
		ingestionSvc:       ingestionSvc,
		cache:              cache,
		RescoreParallelism: 4,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux. Write
// endpoints require apiKey when it is non-empty.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, apiKey string) {
	auth := APIKeyAuth(apiKey)

	// Write endpoints (auth-protected)
	mux.Handle("POST /api/v1/reports", auth(http.HandlerFunc(h.handleUploadReport)))
	mux.Handle("POST /api/v1/rescore", auth(http.HandlerFunc(h.handleRescore)))

	// Read endpoints
	mux.HandleFunc("GET /api/projects", h.handleListProjects)
	mux.HandleFunc("GET /api/projects/{projectID}/evaluations", h.handleListEvaluations)
	mux.HandleFunc("GET /api/evaluations/{evaluationID}", h.handleGetEvaluation)
	mux.HandleFunc("GET /api/reports/{reportID}/statistics", h.handleReportStatistics)
	mux.HandleFunc("GET /api/reports/{reportID}/recipes", h.handleReportRecipes)
	mux.HandleFunc("GET /api/reports/{reportID}/recipes/{recipe}/metrics", h.handleRecipeMetrics)

	// Operations
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /metrics", metricsHandler())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeLookupError answers 404 for missing rows or blobs and 500 otherwise.
func writeLookupError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, ingestion.ErrNotFound) {
		writeError(w, http.StatusNotFound, what+" not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "failed to load "+what+": "+err.Error())
}
