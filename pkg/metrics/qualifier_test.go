package metrics_test

import (
	"encoding/json"
	"testing"

	"github.com/recipescope/recipescope/pkg/metrics"
	"github.com/recipescope/recipescope/pkg/report"
)

func TestViolationQualifier_MajorOnly(t *testing.T) {
	q := metrics.NewCodeViolationQualifier(criteriaWith(metrics.CategoryCodeViolations, 0.1))
	metrics.Dispatch(q,
		metrics.CodeSizeList{{File: "a.c", Lines: 10}},
		metrics.CodeViolationList{
			{File: "a.c", Severity: report.SeverityMajor},
			{File: "a.c", Severity: report.SeverityMinor},
			{File: "a.c", Severity: report.SeverityMinor},
			{File: "a.c", Severity: report.SeverityInfo},
		},
		// Recipe lists belong to the other flavour and are ignored.
		metrics.RecipeViolationList{{File: "r.bb", Severity: report.SeverityMajor}},
		metrics.RecipeSizeList{{File: "r.bb", Lines: 100}},
	)

	assertCounter(t, "qualifier", q, 10, 1, 0.1)
	assertCounter(t, "minor", q.Minor(), 10, 2, 0.2)
	assertCounter(t, "info", q.Info(), 10, 1, 0.1)
	if !q.Available() {
		t.Error("expected available")
	}
	if !q.Qualified() {
		t.Error("major ratio at the negative threshold should qualify")
	}
}

func TestViolationQualifier_RecipeFlavour(t *testing.T) {
	q := metrics.NewRecipeViolationQualifier(criteriaWith(metrics.CategoryRecipeViolations, 0.1))
	metrics.Dispatch(q,
		metrics.RecipeViolationList{{Severity: report.SeverityMajor}, {Severity: report.SeverityMajor}},
		metrics.CodeSizeList{{Lines: 1000}},
	)
	// No recipe size list yet: counts are kept but nothing qualifies.
	assertCounter(t, "qualifier", q, 0, 2, 0)
	if q.Available() || q.Qualified() {
		t.Error("recipe qualifier without size data must not qualify")
	}

	metrics.Dispatch(q, metrics.RecipeSizeList{{Lines: 5}, {Lines: 5}})
	assertCounter(t, "qualifier", q, 10, 2, 0.2)
	if q.Qualified() {
		t.Error("0.2 > 0.1 should not qualify")
	}
}

func TestTestQualifier(t *testing.T) {
	q := metrics.NewTestQualifier(criteriaWith(metrics.CategoryTests, 0.5))
	metrics.Dispatch(q,
		metrics.TestList{{Status: report.TestPassed}, {Status: report.TestFailed}},
		metrics.TestList{{Status: report.TestSkipped}, {Status: report.TestPassed}},
		metrics.CoverageList{{Type: report.CoverageStatement, Covered: true}},
	)
	assertCounter(t, "tests", q, 4, 2, 0.5)
	assertCounter(t, "failed", q.Failed(), 4, 1, 0.25)
	assertCounter(t, "skipped", q.Skipped(), 4, 1, 0.25)
	if !q.Qualified() {
		t.Error("ratio at the positive threshold should qualify")
	}
}

func TestCoverageQualifier_Summation(t *testing.T) {
	q := metrics.NewCoverageQualifier(criteriaWith(metrics.CategoryCoverage, 0.5))
	metrics.Dispatch(q,
		metrics.CoverageList{
			{Type: report.CoverageStatement, Covered: true},
			{Type: report.CoverageStatement, Covered: false},
			{Type: report.CoverageBranch, Covered: true},
		},
	)
	assertCounter(t, "coverage", q, 3, 2, 2.0/3.0)
	assertCounter(t, "statement", q.Statement(), 2, 1, 0.5)
	assertCounter(t, "branch", q.Branch(), 1, 1, 1.0)
	if q.Qualified() {
		t.Error("coverage without test results should not qualify")
	}

	metrics.Dispatch(q, metrics.TestList{})
	if !q.Qualified() {
		t.Error("0.667 >= 0.5 should qualify once tests were seen")
	}
}

func TestMutationQualifier(t *testing.T) {
	q := metrics.NewMutationQualifier(criteriaWith(metrics.CategoryMutationTests, 0.8))
	metrics.Dispatch(q, metrics.MutationTestList{
		{Status: report.MutationKilled},
		{Status: report.MutationSurvived},
		{Status: report.MutationSkipped},
	})
	assertCounter(t, "mutations", q, 3, 1, 1.0/3.0)
	assertCounter(t, "survived", q.Survived(), 3, 1, 1.0/3.0)
	if q.Qualified() {
		t.Error("0.333 < 0.8 should not qualify")
	}
}

func TestQualifiersMatchEvaluators(t *testing.T) {
	rep := loadReport(t)
	criteria := metrics.DefaultCriteria()

	for _, name := range rep.Names() {
		t.Run(name, func(t *testing.T) {
			c := rep.Recipe(name)
			b := metrics.NewBreakdown(criteria, c)

			tests := metrics.NewTestEvaluator(criteria)
			tests.Parse(c)
			if b.Tests.Ratio() != tests.Ratio() || b.Tests.Available() != tests.Available() {
				t.Errorf("test qualifier %f/%v, evaluator %f/%v",
					b.Tests.Ratio(), b.Tests.Available(), tests.Ratio(), tests.Available())
			}

			coverage := metrics.NewCoverageEvaluator(criteria)
			coverage.Parse(c)
			if b.Coverage.Ratio() != coverage.Ratio() || b.Coverage.Available() != coverage.Available() {
				t.Errorf("coverage qualifier %f/%v, evaluator %f/%v",
					b.Coverage.Ratio(), b.Coverage.Available(), coverage.Ratio(), coverage.Available())
			}

			mutations := metrics.NewMutationTestEvaluator(criteria)
			mutations.Parse(c)
			if b.MutationTests.Ratio() != mutations.Ratio() {
				t.Errorf("mutation qualifier %f, evaluator %f", b.MutationTests.Ratio(), mutations.Ratio())
			}
		})
	}
}

func TestBreakdown_JSON(t *testing.T) {
	b := metrics.NewBreakdown(metrics.DefaultCriteria(), loadReport(t).Merged())
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got struct {
		CodeViolations map[string]json.RawMessage `json:"code_violations"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"available", "qualified", "ratio", "major", "minor", "info"} {
		if _, ok := got.CodeViolations[key]; !ok {
			t.Errorf("code_violations missing %q", key)
		}
	}
	assertCounter(t, "major", b.CodeViolations.Major(), 100, 1, 0.01)
	if len(b.Qualifiers()) != 5 {
		t.Errorf("Qualifiers() = %d, want 5", len(b.Qualifiers()))
	}
}
