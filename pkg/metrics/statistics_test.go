package metrics_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/recipescope/recipescope/pkg/metrics"
	"github.com/recipescope/recipescope/pkg/report"
)

func assertStatistic(t *testing.T, name string, got metrics.Statistic, count int, min, max, avg float64) {
	t.Helper()
	if got.Count != count {
		t.Errorf("%s: count = %d, want %d", name, got.Count, count)
	}
	if math.Abs(got.Min-min) > epsilon || math.Abs(got.Max-max) > epsilon || math.Abs(got.Average-avg) > epsilon {
		t.Errorf("%s: (min, max, avg) = (%f, %f, %f), want (%f, %f, %f)",
			name, got.Min, got.Max, got.Average, min, max, avg)
	}
}

func TestMetricStatistics_Scenario(t *testing.T) {
	recipes := map[string]report.Container{
		"a": &report.Recipe{Name: "a", Comment: []report.Comment{{Lines: 10, CommentLines: 0}}},
		"b": &report.Recipe{Name: "b", Comment: []report.Comment{{Lines: 10, CommentLines: 5}}},
		"c": &report.Recipe{Name: "c", Test: []report.Test{{Status: report.TestPassed}}},
	}

	s := metrics.NewMetricStatistics(metrics.DefaultCriteria())
	s.Parse(recipes)

	// c has no comment data and must not pull the average down.
	assertStatistic(t, "comments", s.Get(metrics.CategoryComments), 2, 0.0, 0.5, 0.25)
	assertStatistic(t, "tests", s.Get(metrics.CategoryTests), 1, 1.0, 1.0, 1.0)
	assertStatistic(t, "coverage", s.Get(metrics.CategoryCoverage), 0, 0, 0, 0)
}

func TestMetricStatistics_ParseRebuilds(t *testing.T) {
	s := metrics.NewMetricStatistics(metrics.DefaultCriteria())
	s.Parse(map[string]report.Container{
		"a": &report.Recipe{Name: "a", Comment: []report.Comment{{Lines: 10, CommentLines: 10}}},
	})
	s.Parse(map[string]report.Container{
		"b": &report.Recipe{Name: "b", Comment: []report.Comment{{Lines: 4, CommentLines: 1}}},
	})
	assertStatistic(t, "comments", s.Get(metrics.CategoryComments), 1, 0.25, 0.25, 0.25)
}

func TestMetricStatistics_ParseMetrics(t *testing.T) {
	rep := loadReport(t)
	var all []*metrics.Metrics
	for _, name := range rep.Names() {
		m := metrics.NewMetrics(metrics.DefaultCriteria())
		m.Parse(rep.Recipe(name))
		all = append(all, m)
	}

	fromMetrics := metrics.NewMetricStatistics(metrics.DefaultCriteria())
	fromMetrics.ParseMetrics(all)

	fromRecipes := metrics.NewMetricStatistics(metrics.DefaultCriteria())
	fromRecipes.Parse(rep.Containers())

	for _, cat := range metrics.Categories() {
		if fromMetrics.Get(cat) != fromRecipes.Get(cat) {
			t.Errorf("%s: ParseMetrics %+v != Parse %+v", cat, fromMetrics.Get(cat), fromRecipes.Get(cat))
		}
	}

	assertStatistic(t, "comments", fromMetrics.Get(metrics.CategoryComments), 2, 0.1, 0.34, 0.22)
	assertStatistic(t, "tests", fromMetrics.Get(metrics.CategoryTests), 2, 0.5, 1.0, 0.75)
	assertStatistic(t, "cache", fromMetrics.Get(metrics.CategoryCache), 2, 0.0, 2.0/3.0, 1.0/3.0)
}

func TestMetricStatistics_JSON(t *testing.T) {
	s := metrics.NewMetricStatistics(metrics.DefaultCriteria())
	s.Parse(loadReport(t).Containers())

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got map[string]metrics.Statistic
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got) != len(metrics.Categories()) {
		t.Errorf("got %d categories, want %d", len(got), len(metrics.Categories()))
	}
	if got["mutation_tests"].Count != 1 {
		t.Errorf("mutation_tests count = %d, want 1", got["mutation_tests"].Count)
	}
}
