// Package catalog keeps the Postgres index of projects and their
// evaluations. Report and result bodies live in blob storage; the catalog only
// holds what the API lists and filters on.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/recipescope/recipescope/pkg/metrics"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Service provides project and evaluation bookkeeping backed by Postgres.
type Service struct {
	db *sql.DB
}

// Project groups the reports of one build tree.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// EvaluationRow is one evaluated report. Its ID doubles as the result blob ID.
type EvaluationRow struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"project_id"`
	Build     *string         `json:"build,omitempty"`
	ReportID  string          `json:"report_id"`
	Qualified bool            `json:"qualified"`
	Stable    bool            `json:"stable"`
	Ratio     float64         `json:"ratio"`
	Available int             `json:"available"`
	Breakdown json.RawMessage `json:"breakdown"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewService creates a new catalog Service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// EnsureProject returns the project with the given name, creating it on
// first use.
func (s *Service) EnsureProject(ctx context.Context, name string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("ensure project: empty name")
	}
	p := &Project{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO projects (name)
		 VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name, created_at`,
		name,
	).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ensure project %s: %w", name, err)
	}
	return p, nil
}

// GetProject looks up a project by ID.
func (s *Service) GetProject(ctx context.Context, projectID string) (*Project, error) {
	p := &Project{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM projects WHERE id::text = $1`,
		projectID,
	).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", projectID, notFound(err))
	}
	return p, nil
}

// ListProjects returns every project ordered by name.
func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM projects ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// NewEvaluation is the catalog projection of an evaluation result.
type NewEvaluation struct {
	ProjectID string
	Build     string
	ReportID  string
	Qualified bool
	Stable    bool
	Ratio     float64
	Available int
	Breakdown json.RawMessage
}

// EvaluationFromResult projects a result onto a catalog row. The breakdown
// column keeps the per-category project metrics.
func EvaluationFromResult(projectID string, result *metrics.Result) (NewEvaluation, error) {
	breakdown, err := json.Marshal(result.Metrics)
	if err != nil {
		return NewEvaluation{}, fmt.Errorf("marshal metrics: %w", err)
	}
	return NewEvaluation{
		ProjectID: projectID,
		Build:     result.Build,
		ReportID:  result.ReportID,
		Qualified: result.Qualified,
		Stable:    result.Stable,
		Ratio:     result.Metrics.Ratio(),
		Available: result.Metrics.Denominator(),
		Breakdown: breakdown,
	}, nil
}

// InsertEvaluation records an evaluation and returns its ID.
func (s *Service) InsertEvaluation(ctx context.Context, e NewEvaluation) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO evaluations (project_id, build, report_id, qualified, stable, ratio, available, breakdown)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		e.ProjectID, nilIfEmpty(e.Build), e.ReportID, e.Qualified, e.Stable, e.Ratio, e.Available, []byte(e.Breakdown),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert evaluation: %w", err)
	}
	return id, nil
}

const evaluationColumns = `id, project_id, build, report_id, qualified, stable, ratio, available, breakdown, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scanner) (EvaluationRow, error) {
	var e EvaluationRow
	var breakdown []byte
	err := row.Scan(&e.ID, &e.ProjectID, &e.Build, &e.ReportID, &e.Qualified, &e.Stable,
		&e.Ratio, &e.Available, &breakdown, &e.CreatedAt)
	e.Breakdown = breakdown
	return e, err
}

// ListEvaluations returns all evaluations for a project, newest first.
func (s *Service) ListEvaluations(ctx context.Context, projectID string) ([]EvaluationRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+evaluationColumns+`
		 FROM evaluations WHERE project_id::text = $1 ORDER BY created_at DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	evals := []EvaluationRow{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		evals = append(evals, e)
	}
	return evals, rows.Err()
}

// GetEvaluation returns a single evaluation by ID.
func (s *Service) GetEvaluation(ctx context.Context, evaluationID string) (*EvaluationRow, error) {
	e, err := scanEvaluation(s.db.QueryRowContext(ctx,
		`SELECT `+evaluationColumns+` FROM evaluations WHERE id::text = $1`,
		evaluationID,
	))
	if err != nil {
		return nil, fmt.Errorf("get evaluation %s: %w", evaluationID, notFound(err))
	}
	return &e, nil
}

// LatestEvaluationForReport returns the newest evaluation of a report.
func (s *Service) LatestEvaluationForReport(ctx context.Context, reportID string) (*EvaluationRow, error) {
	e, err := scanEvaluation(s.db.QueryRowContext(ctx,
		`SELECT `+evaluationColumns+`
		 FROM evaluations WHERE report_id = $1
		 ORDER BY created_at DESC LIMIT 1`,
		reportID,
	))
	if err != nil {
		return nil, fmt.Errorf("get evaluation for report %s: %w", reportID, notFound(err))
	}
	return &e, nil
}

// ReportRef locates a stored report blob.
type ReportRef struct {
	ProjectID string
	ReportID  string
}

// ListReports returns every distinct evaluated report, optionally limited
// to one project.
func (s *Service) ListReports(ctx context.Context, projectID string) ([]ReportRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT project_id, report_id FROM evaluations
		 WHERE $1 = '' OR project_id::text = $1
		 ORDER BY project_id, report_id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var refs []ReportRef
	for rows.Next() {
		var r ReportRef
		if err := rows.Scan(&r.ProjectID, &r.ReportID); err != nil {
			return nil, fmt.Errorf("scan report ref: %w", err)
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
