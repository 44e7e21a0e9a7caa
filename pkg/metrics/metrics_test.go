package metrics_test

import (
	"encoding/json"
	"testing"

	"github.com/recipescope/recipescope/pkg/metrics"
	"github.com/recipescope/recipescope/pkg/report"
)

func loadReport(t *testing.T) *report.Report {
	t.Helper()
	rep, err := report.LoadReport("../../testdata/report_small.json")
	if err != nil {
		t.Fatalf("loading report: %v", err)
	}
	return rep
}

func TestMetrics_AggregationLaw(t *testing.T) {
	rep := loadReport(t)

	for _, name := range rep.Names() {
		t.Run(name, func(t *testing.T) {
			m := metrics.NewMetrics(metrics.DefaultCriteria())
			m.Parse(rep.Recipe(name))

			available, qualified := 0, 0
			for _, e := range m.Evaluators() {
				if e.Available() {
					available++
					if e.Qualified() {
						qualified++
					}
				}
			}
			if m.Denominator() != available {
				t.Errorf("denominator = %d, want %d", m.Denominator(), available)
			}
			if m.Numerator() != qualified {
				t.Errorf("numerator = %d, want %d", m.Numerator(), qualified)
			}
		})
	}
}

func TestMetrics_Testdata(t *testing.T) {
	rep := loadReport(t)

	tests := []struct {
		recipe   string
		den, num int
	}{
		// cache, code violations, comments, complexity, coverage, duplications, tests
		{"libfoo", 7, 5},
		// comments, mutation tests, recipe violations, tests
		{"libbar", 4, 2},
		// cache only
		{"zlib-native", 1, 0},
	}
	for _, tc := range tests {
		t.Run(tc.recipe, func(t *testing.T) {
			m := metrics.NewMetrics(metrics.DefaultCriteria())
			m.Parse(rep.Recipe(tc.recipe))
			assertCounter(t, tc.recipe, m, tc.den, tc.num, float64(tc.num)/float64(tc.den))
			if m.Qualified() {
				t.Error("overall threshold 1.0 requires every category to qualify")
			}
		})
	}
}

func TestMetrics_OverallThreshold(t *testing.T) {
	criteria := metrics.DefaultCriteria()
	criteria.Overall = 0.5

	m := metrics.NewMetrics(criteria)
	m.Parse(loadReport(t).Recipe("libbar"))
	if !m.Qualified() {
		t.Error("2 of 4 categories at overall 0.5 should qualify")
	}
	if m.Threshold() != 0.5 {
		t.Errorf("Threshold() = %f, want 0.5", m.Threshold())
	}
}

func TestMetrics_EmptyContainer(t *testing.T) {
	m := metrics.NewMetrics(metrics.DefaultCriteria())
	m.Parse(&report.Recipe{Name: "empty"})
	assertCounter(t, "metrics", m, 0, 0, 0)
	if m.Available() || m.Qualified() {
		t.Error("no categories available: metrics must be unavailable and unqualified")
	}
	if !m.Stable() {
		t.Error("missing data never makes a build unstable")
	}
}

func TestMetrics_ReparseRebuilds(t *testing.T) {
	rep := loadReport(t)
	m := metrics.NewMetrics(metrics.DefaultCriteria())
	m.Parse(rep.Recipe("libfoo"))
	first := m.Tests

	m.Parse(rep.Recipe("zlib-native"))
	if m.Tests == first {
		t.Error("sub-evaluators should be rebuilt on every parse")
	}
	assertCounter(t, "metrics", m, 1, 0, 0)
	if m.Tests.Available() {
		t.Error("zlib-native has no tests")
	}
}

func TestMetrics_GetAndOrder(t *testing.T) {
	m := metrics.NewMetrics(metrics.DefaultCriteria())
	evaluators := m.Evaluators()
	for i, cat := range metrics.Categories() {
		if evaluators[i].Category() != cat {
			t.Errorf("Evaluators()[%d] = %s, want %s", i, evaluators[i].Category(), cat)
		}
		if m.Get(cat) != evaluators[i] {
			t.Errorf("Get(%s) does not match Evaluators()", cat)
		}
	}
	if m.Get("bogus") != nil {
		t.Error("expected nil for unknown category")
	}
}

func TestMetrics_Stable(t *testing.T) {
	criteria := metrics.DefaultCriteria().With(metrics.CategoryComments, metrics.Threshold{Value: 0.3, MarkUnstable: true})
	m := metrics.NewMetrics(criteria)

	m.Parse(loadReport(t).Recipe("libbar")) // comments 0.1
	if m.Stable() {
		t.Error("failed comment check marked unstable should make metrics unstable")
	}

	m.Parse(loadReport(t).Recipe("libfoo")) // comments 0.34
	if !m.Stable() {
		t.Error("qualified comments should keep metrics stable")
	}
}

func TestMetrics_JSON(t *testing.T) {
	m := metrics.NewMetrics(metrics.DefaultCriteria())
	m.Parse(loadReport(t).Recipe("libfoo"))

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got map[string]json.RawMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"available", "qualified", "denominator", "numerator", "ratio", "threshold"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	for _, cat := range metrics.Categories() {
		if _, ok := got[string(cat)]; !ok {
			t.Errorf("missing category %q", cat)
		}
	}

	var cache map[string]json.RawMessage
	if err := json.Unmarshal(got["cache"], &cache); err != nil {
		t.Fatalf("cache: %v", err)
	}
	for _, key := range []string{"premirror", "shared_state"} {
		if _, ok := cache[key]; !ok {
			t.Errorf("cache missing %q", key)
		}
	}
}
