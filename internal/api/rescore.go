package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

type rescoreRequest struct {
	ProjectID string `json:"project_id"` // optional filter
}

type rescoreResponse struct {
	Rescored int64 `json:"rescored"`
	Errors   int64 `json:"errors"`
}

// handleRescore re-evaluates every stored report with the service's current
// criteria and records a new evaluation for each. Reports are processed in
// parallel up to RescoreParallelism; a failing report is logged and counted
// but does not stop the others.
func (h *Handler) handleRescore(w http.ResponseWriter, r *http.Request) {
	var req rescoreRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	ctx := r.Context()
	refs, err := h.catalog.ListReports(ctx, req.ProjectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list reports: "+err.Error())
		return
	}

	var rescored, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(h.RescoreParallelism, 1))
	for _, ref := range refs {
		g.Go(func() error {
			started := time.Now()
			out, err := h.ingestionSvc.Rescore(gctx, ref.ProjectID, ref.ReportID)
			if err != nil {
				log.Printf("rescore report %s: %v", ref.ReportID, err)
				rescoreFailures.Inc()
				failed.Add(1)
				return nil
			}
			observeEvaluation(out.Result, started)
			rescored.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	writeJSON(w, http.StatusOK, rescoreResponse{Rescored: rescored.Load(), Errors: failed.Load()})
}
