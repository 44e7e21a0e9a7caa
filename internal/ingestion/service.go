package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/recipescope/recipescope/internal/catalog"
	ghsurface "github.com/recipescope/recipescope/internal/surface"
	"github.com/recipescope/recipescope/pkg/metrics"
	"github.com/recipescope/recipescope/pkg/report"
	"github.com/recipescope/recipescope/pkg/surface"
)

// Catalog is the subset of the catalog the pipeline writes to.
type Catalog interface {
	EnsureProject(ctx context.Context, name string) (*catalog.Project, error)
	InsertEvaluation(ctx context.Context, e catalog.NewEvaluation) (string, error)
}

// Publisher posts check runs for evaluated reports.
type Publisher interface {
	PublishCheckRun(ctx context.Context, target ghsurface.CheckRunTarget, data surface.CheckRunData) error
}

// Request describes one uploaded report.
type Request struct {
	Report *report.Report
	// GitHub, when set, receives a check run for the evaluation.
	GitHub *ghsurface.CheckRunTarget
}

// Outcome is what an ingest or rescore produced.
type Outcome struct {
	ProjectID    string          `json:"project_id"`
	ReportID     string          `json:"report_id"`
	EvaluationID string          `json:"evaluation_id"`
	Result       *metrics.Result `json:"result"`
}

// Service orchestrates the ingestion pipeline.
type Service struct {
	catalog   Catalog
	storage   StorageClient
	engine    *metrics.Engine
	publisher Publisher
}

// NewService creates a new ingestion Service. publisher may be nil.
func NewService(cat Catalog, storage StorageClient, engine *metrics.Engine, publisher Publisher) *Service {
	return &Service{
		catalog:   cat,
		storage:   storage,
		engine:    engine,
		publisher: publisher,
	}
}

// Criteria returns the criteria reports are evaluated against.
func (s *Service) Criteria() metrics.Criteria { return s.engine.Criteria() }

// Ingest stores a report, evaluates it and records the evaluation.
func (s *Service) Ingest(ctx context.Context, req Request) (*Outcome, error) {
	rep := req.Report
	if rep == nil {
		return nil, fmt.Errorf("ingest: report is nil")
	}
	if err := rep.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report: %w", err)
	}

	project, err := s.catalog.EnsureProject(ctx, rep.Project)
	if err != nil {
		return nil, fmt.Errorf("ensure project: %w", err)
	}

	data, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	if err := s.storage.PutReport(ctx, project.ID, rep.ID, data); err != nil {
		return nil, fmt.Errorf("put report blob: %w", err)
	}

	out, err := s.evaluate(ctx, project.ID, rep)
	if err != nil {
		return nil, err
	}
	log.Printf("ingested report %s for %s: evaluation %s qualified=%v stable=%v",
		rep.ID, rep.Project, out.EvaluationID, out.Result.Qualified, out.Result.Stable)

	s.publish(ctx, req.GitHub, out)
	return out, nil
}

// Rerun rescores a stored report and publishes a fresh check run to target.
func (s *Service) Rerun(ctx context.Context, projectID, reportID string, target ghsurface.CheckRunTarget) (*Outcome, error) {
	out, err := s.Rescore(ctx, projectID, reportID)
	if err != nil {
		return nil, err
	}
	log.Printf("re-ran report %s: evaluation %s qualified=%v", reportID, out.EvaluationID, out.Result.Qualified)
	s.publish(ctx, &target, out)
	return out, nil
}

// publish posts a check run when a target and publisher are set. A failed
// check run does not undo the evaluation.
func (s *Service) publish(ctx context.Context, target *ghsurface.CheckRunTarget, out *Outcome) {
	if target == nil || s.publisher == nil {
		return
	}
	data := (&surface.CheckRunRenderer{}).BuildCheckRunData(out.Result)
	if err := s.publisher.PublishCheckRun(ctx, *target, data); err != nil {
		log.Printf("publish check run for report %s: %v", out.ReportID, err)
	}
}

// Rescore re-evaluates a stored report with the service's current criteria
// and records a new evaluation.
func (s *Service) Rescore(ctx context.Context, projectID, reportID string) (*Outcome, error) {
	rep, err := s.LoadReport(ctx, projectID, reportID)
	if err != nil {
		return nil, err
	}
	return s.evaluate(ctx, projectID, rep)
}

// LoadReport reads and validates a stored report.
func (s *Service) LoadReport(ctx context.Context, projectID, reportID string) (*report.Report, error) {
	data, err := s.storage.GetReport(ctx, projectID, reportID)
	if err != nil {
		return nil, fmt.Errorf("get report blob: %w", err)
	}
	rep, err := report.DecodeReport(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode report %s: %w", reportID, err)
	}
	return rep, nil
}

// LoadResult returns the stored result document of an evaluation.
func (s *Service) LoadResult(ctx context.Context, projectID, evaluationID string) (json.RawMessage, error) {
	data, err := s.storage.GetResult(ctx, projectID, evaluationID)
	if err != nil {
		return nil, fmt.Errorf("get result blob: %w", err)
	}
	return data, nil
}

func (s *Service) evaluate(ctx context.Context, projectID string, rep *report.Report) (*Outcome, error) {
	result, err := s.engine.Evaluate(rep)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	row, err := catalog.EvaluationFromResult(projectID, result)
	if err != nil {
		return nil, err
	}
	evaluationID, err := s.catalog.InsertEvaluation(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("record evaluation: %w", err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	if err := s.storage.PutResult(ctx, projectID, evaluationID, data); err != nil {
		return nil, fmt.Errorf("put result blob: %w", err)
	}

	return &Outcome{
		ProjectID:    projectID,
		ReportID:     rep.ID,
		EvaluationID: evaluationID,
		Result:       result,
	}, nil
}
