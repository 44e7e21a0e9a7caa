package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/recipescope/recipescope/internal/ingestion"
	ghsurface "github.com/recipescope/recipescope/internal/surface"
	"github.com/recipescope/recipescope/pkg/report"
)

// maxReportBytes caps a decompressed upload.
const maxReportBytes = 64 << 20

// uploadRequest is the JSON body for POST /api/v1/reports.
type uploadRequest struct {
	Report *report.Report            `json:"report"`
	GitHub *ghsurface.CheckRunTarget `json:"github,omitempty"`
}

type uploadResponse struct {
	ProjectID    string `json:"project_id"`
	ReportID     string `json:"report_id"`
	EvaluationID string `json:"evaluation_id"`
	Qualified    bool   `json:"qualified"`
	Stable       bool   `json:"stable"`
	Available    int    `json:"available"`
	Qualifying   int    `json:"qualifying"`
}

// handleUploadReport handles POST /api/v1/reports: it validates the report,
// stores it, evaluates it and records the evaluation.
func (h *Handler) handleUploadReport(w http.ResponseWriter, r *http.Request) {
	// Support gzip-compressed request bodies
	var body io.Reader = r.Body
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid gzip body: "+err.Error())
			return
		}
		defer gz.Close()
		body = gz
	}
	body = io.LimitReader(body, maxReportBytes)

	var req uploadRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Report == nil {
		writeError(w, http.StatusBadRequest, "report is required")
		return
	}
	if err := req.Report.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid report: "+err.Error())
		return
	}
	if req.GitHub != nil {
		if err := req.GitHub.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Report.ID == "" {
		req.Report.ID = uuid.New().String()
	}

	started := time.Now()
	out, err := h.ingestionSvc.Ingest(r.Context(), ingestion.Request{Report: req.Report, GitHub: req.GitHub})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to ingest report: "+err.Error())
		return
	}
	observeEvaluation(out.Result, started)
	h.cache.Put(out.ProjectID, req.Report)

	writeJSON(w, http.StatusCreated, uploadResponse{
		ProjectID:    out.ProjectID,
		ReportID:     out.ReportID,
		EvaluationID: out.EvaluationID,
		Qualified:    out.Result.Qualified,
		Stable:       out.Result.Stable,
		Available:    out.Result.Metrics.Denominator(),
		Qualifying:   out.Result.Metrics.Numerator(),
	})
}
