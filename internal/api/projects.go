package api

import (
	"encoding/json"
	"net/http"

	"github.com/recipescope/recipescope/internal/catalog"
)

type evaluationResponse struct {
	Evaluation *catalog.EvaluationRow `json:"evaluation"`
	Result     json.RawMessage        `json:"result"`
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.catalog.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list projects: "+err.Error())
		return
	}
	if projects == nil {
		projects = []catalog.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *Handler) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")

	if _, err := h.catalog.GetProject(r.Context(), projectID); err != nil {
		writeLookupError(w, "project", err)
		return
	}

	evals, err := h.catalog.ListEvaluations(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list evaluations: "+err.Error())
		return
	}
	if evals == nil {
		evals = []catalog.EvaluationRow{}
	}
	writeJSON(w, http.StatusOK, evals)
}

// handleGetEvaluation returns the catalog row together with the full stored
// result document.
func (h *Handler) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	evaluationID := r.PathValue("evaluationID")

	row, err := h.catalog.GetEvaluation(r.Context(), evaluationID)
	if err != nil {
		writeLookupError(w, "evaluation", err)
		return
	}

	result, err := h.ingestionSvc.LoadResult(r.Context(), row.ProjectID, row.ID)
	if err != nil {
		writeLookupError(w, "evaluation result", err)
		return
	}

	writeJSON(w, http.StatusOK, evaluationResponse{Evaluation: row, Result: result})
}
