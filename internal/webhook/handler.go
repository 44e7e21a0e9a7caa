package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/recipescope/recipescope/internal/catalog"
	"github.com/recipescope/recipescope/internal/ingestion"
	ghsurface "github.com/recipescope/recipescope/internal/surface"
)

// ReportLocator finds the project a report was ingested under.
type ReportLocator interface {
	LatestEvaluationForReport(ctx context.Context, reportID string) (*catalog.EvaluationRow, error)
}

// Rerunner rescores a stored report and publishes a new check run.
type Rerunner interface {
	Rerun(ctx context.Context, projectID, reportID string, target ghsurface.CheckRunTarget) (*ingestion.Outcome, error)
}

// Handler processes incoming GitHub webhook events.
type Handler struct {
	webhookSecret []byte
	reports       ReportLocator
	rerunner      Rerunner
}

// NewHandler creates a new webhook Handler.
func NewHandler(webhookSecret []byte, reports ReportLocator, rerunner Rerunner) *Handler {
	return &Handler{
		webhookSecret: webhookSecret,
		reports:       reports,
		rerunner:      rerunner,
	}
}

// ServeHTTP handles incoming webhook requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 10<<20)) // 10 MB limit
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if err := VerifySignature(body, r.Header.Get("X-Hub-Signature-256"), h.webhookSecret); err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	if eventType == "" {
		http.Error(w, "missing X-GitHub-Event header", http.StatusBadRequest)
		return
	}

	event, err := ParseEvent(eventType, body)
	if err != nil {
		log.Printf("webhook parse error for %s: %v", eventType, err)
		http.Error(w, "unsupported event", http.StatusBadRequest)
		return
	}

	status := "accepted"
	switch e := event.(type) {
	case *PingEvent:
		log.Printf("webhook ping from hook %d", e.HookID)
		status = "pong"

	case *CheckRunEvent:
		handled, err := h.handleCheckRun(r.Context(), e)
		if err != nil {
			log.Printf("handle check_run event: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !handled {
			status = "ignored"
		}
	}

	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// handleCheckRun re-evaluates the report behind a Recipescope check run
// when a user asks GitHub to re-run it. It reports whether anything ran.
func (h *Handler) handleCheckRun(ctx context.Context, e *CheckRunEvent) (bool, error) {
	if e.Action != "rerequested" || e.CheckRun.Name != ghsurface.CheckRunName {
		return false, nil
	}
	reportID := e.CheckRun.ExternalID
	if reportID == "" {
		log.Printf("check run %d has no report id, ignoring re-run", e.CheckRun.ID)
		return false, nil
	}

	row, err := h.reports.LatestEvaluationForReport(ctx, reportID)
	if errors.Is(err, catalog.ErrNotFound) {
		log.Printf("check run %d references unknown report %s", e.CheckRun.ID, reportID)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("locate report %s: %w", reportID, err)
	}

	target := ghsurface.CheckRunTarget{
		InstallationID: e.Installation.ID,
		Owner:          e.Repository.Owner.Login,
		Repo:           e.Repository.Name,
		HeadSHA:        e.CheckRun.HeadSHA,
	}
	if err := target.Validate(); err != nil {
		return false, err
	}

	out, err := h.rerunner.Rerun(ctx, row.ProjectID, reportID, target)
	if err != nil {
		return false, fmt.Errorf("rerun report %s: %w", reportID, err)
	}
	log.Printf("re-ran check run %d on %s (report %s, evaluation %s)",
		e.CheckRun.ID, e.Repository.FullName, reportID, out.EvaluationID)
	return true, nil
}
