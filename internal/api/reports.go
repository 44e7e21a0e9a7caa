package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/recipescope/recipescope/pkg/metrics"
	"github.com/recipescope/recipescope/pkg/report"
)

// loadReport loads a report by ID, checking the cache first, then falling
// back to the catalog for its project and to blob storage for its body.
func (h *Handler) loadReport(ctx context.Context, reportID string) (*report.Report, error) {
	if rep, _, ok := h.cache.Get(reportID); ok {
		return rep, nil
	}

	row, err := h.catalog.LatestEvaluationForReport(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("report metadata: %w", err)
	}

	rep, err := h.ingestionSvc.LoadReport(ctx, row.ProjectID, reportID)
	if err != nil {
		return nil, err
	}

	h.cache.Put(row.ProjectID, rep)
	return rep, nil
}

type statisticsResponse struct {
	ReportID   string                          `json:"report_id"`
	Statistics *metrics.MetricStatistics       `json:"statistics"`
	Counts     *metrics.QualifiedRecipeCounter `json:"counts"`
}

func (h *Handler) handleReportStatistics(w http.ResponseWriter, r *http.Request) {
	rep, err := h.loadReport(r.Context(), r.PathValue("reportID"))
	if err != nil {
		writeLookupError(w, "report", err)
		return
	}

	criteria := h.ingestionSvc.Criteria()
	recipes := rep.Containers()

	stats := metrics.NewMetricStatistics(criteria)
	stats.Parse(recipes)
	counts := metrics.NewQualifiedRecipeCounter(criteria)
	counts.Parse(recipes)

	writeJSON(w, http.StatusOK, statisticsResponse{ReportID: rep.ID, Statistics: stats, Counts: counts})
}

type recipesResponse struct {
	ReportID  string           `json:"report_id"`
	Category  metrics.Category `json:"category,omitempty"`
	Qualified *bool            `json:"qualified,omitempty"`
	Recipes   []string         `json:"recipes"`
}

// handleReportRecipes lists recipe names, optionally filtered by category
// and qualification. Without a qualified filter it lists every recipe (or,
// with a category, every recipe where that category has data).
func (h *Handler) handleReportRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var category metrics.Category
	if name := q.Get("category"); name != "" {
		cat, ok := metrics.ParseCategory(name)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown category: "+name)
			return
		}
		category = cat
	}

	var qualified *bool
	if v := q.Get("qualified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "qualified must be a boolean")
			return
		}
		qualified = &b
	}

	rep, err := h.loadReport(r.Context(), r.PathValue("reportID"))
	if err != nil {
		writeLookupError(w, "report", err)
		return
	}

	names := metrics.NewQualifiedRecipes(rep.Containers(), h.ingestionSvc.Criteria()).Select(category, qualified)

	writeJSON(w, http.StatusOK, recipesResponse{
		ReportID:  rep.ID,
		Category:  category,
		Qualified: qualified,
		Recipes:   names,
	})
}

type recipeMetricsResponse struct {
	ReportID  string           `json:"report_id"`
	Recipe    string           `json:"recipe"`
	Qualified bool             `json:"qualified"`
	Stable    bool             `json:"stable"`
	Metrics   *metrics.Metrics `json:"metrics"`
}

func (h *Handler) handleRecipeMetrics(w http.ResponseWriter, r *http.Request) {
	rep, err := h.loadReport(r.Context(), r.PathValue("reportID"))
	if err != nil {
		writeLookupError(w, "report", err)
		return
	}

	name := r.PathValue("recipe")
	recipe := rep.Recipe(name)
	if recipe == nil {
		writeError(w, http.StatusNotFound, "recipe not found: "+name)
		return
	}

	m := metrics.NewMetrics(h.ingestionSvc.Criteria())
	m.Parse(recipe)

	writeJSON(w, http.StatusOK, recipeMetricsResponse{
		ReportID:  rep.ID,
		Recipe:    name,
		Qualified: m.Qualified(),
		Stable:    m.Stable(),
		Metrics:   m,
	})
}
