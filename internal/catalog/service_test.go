package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/recipescope/recipescope/pkg/metrics"
	"github.com/recipescope/recipescope/pkg/report"
)

func TestEvaluationFromResult(t *testing.T) {
	rep, err := report.LoadReport("../../testdata/report_small.json")
	if err != nil {
		t.Fatalf("loading report: %v", err)
	}
	result, err := metrics.NewEngine(metrics.DefaultCriteria()).Evaluate(rep)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	e, err := EvaluationFromResult("project-1", result)
	if err != nil {
		t.Fatalf("EvaluationFromResult: %v", err)
	}
	if e.ProjectID != "project-1" || e.ReportID != rep.ID || e.Build != "42" {
		t.Errorf("identity = (%s, %s, %s)", e.ProjectID, e.ReportID, e.Build)
	}
	if e.Qualified || !e.Stable {
		t.Errorf("qualified/stable = %v/%v, want false/true", e.Qualified, e.Stable)
	}
	if e.Available != 9 || math.Abs(e.Ratio-5.0/9.0) > 1e-9 {
		t.Errorf("available/ratio = %d/%f, want 9/%f", e.Available, e.Ratio, 5.0/9.0)
	}

	var breakdown map[string]json.RawMessage
	if err := json.Unmarshal(e.Breakdown, &breakdown); err != nil {
		t.Fatalf("breakdown is not a JSON object: %v", err)
	}
	for _, cat := range metrics.Categories() {
		if _, ok := breakdown[string(cat)]; !ok {
			t.Errorf("breakdown missing %s", cat)
		}
	}
}

func TestNotFound(t *testing.T) {
	if !errors.Is(notFound(sql.ErrNoRows), ErrNotFound) {
		t.Error("sql.ErrNoRows should map to ErrNotFound")
	}
	wrapped := fmt.Errorf("get project x: %w", notFound(sql.ErrNoRows))
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("wrapped error should still match ErrNotFound")
	}
	other := errors.New("connection refused")
	if notFound(other) != other {
		t.Error("other errors should pass through unchanged")
	}
}

func TestNilIfEmpty(t *testing.T) {
	if nilIfEmpty("") != nil {
		t.Error("empty string should map to nil")
	}
	if got := nilIfEmpty("42"); got == nil || *got != "42" {
		t.Errorf("nilIfEmpty(42) = %v", got)
	}
}

func TestNewService(t *testing.T) {
	// NewService should not panic with nil db (it just stores the reference).
	if svc := NewService(nil); svc == nil {
		t.Fatal("NewService returned nil")
	}
}
