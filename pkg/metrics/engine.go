package metrics

import (
	"fmt"
	"sort"

	"github.com/recipescope/recipescope/pkg/report"
)

// Result is the complete evaluation of one report.
type Result struct {
	ReportID   string                  `json:"report_id"`
	Project    string                  `json:"project"`
	Build      string                  `json:"build,omitempty"`
	Qualified  bool                    `json:"qualified"`
	Stable     bool                    `json:"stable"`
	Metrics    *Metrics                `json:"metrics"` // over the merged project
	Breakdown  *Breakdown              `json:"breakdown"`
	Recipes    []RecipeResult          `json:"recipes"`
	Statistics *MetricStatistics       `json:"statistics"`
	Counts     *QualifiedRecipeCounter `json:"counts"`
}

// RecipeResult is the verdict for a single recipe.
type RecipeResult struct {
	Name      string   `json:"name"`
	Qualified bool     `json:"qualified"`
	Stable    bool     `json:"stable"`
	Metrics   *Metrics `json:"metrics"`
}

// Failures returns the project categories that had data but missed their
// threshold.
func (r *Result) Failures() []Category {
	var failed []Category
	for _, cat := range Categories() {
		e := r.Metrics.Get(cat)
		if e.Available() && !e.Qualified() {
			failed = append(failed, cat)
		}
	}
	return failed
}

// Recipe returns the named recipe's result, or nil.
func (r *Result) Recipe(name string) *RecipeResult {
	i := sort.Search(len(r.Recipes), func(i int) bool { return r.Recipes[i].Name >= name })
	if i < len(r.Recipes) && r.Recipes[i].Name == name {
		return &r.Recipes[i]
	}
	return nil
}

// Engine evaluates reports against fixed criteria.
type Engine struct {
	criteria Criteria
}

// NewEngine creates an engine for the given criteria.
func NewEngine(criteria Criteria) *Engine {
	return &Engine{criteria: criteria}
}

func (e *Engine) Criteria() Criteria { return e.criteria }

// Evaluate computes project metrics over all recipes merged, metrics per
// recipe, and the cross-recipe statistics and counts.
func (e *Engine) Evaluate(rep *report.Report) (*Result, error) {
	if rep == nil {
		return nil, fmt.Errorf("report is nil")
	}

	merged := rep.Merged()
	project := NewMetrics(e.criteria)
	project.Parse(merged)

	result := &Result{
		ReportID:  rep.ID,
		Project:   rep.Project,
		Build:     rep.Build,
		Qualified: project.Qualified(),
		Stable:    project.Stable(),
		Metrics:   project,
		Breakdown: NewBreakdown(e.criteria, merged),
	}

	all := make([]*Metrics, 0, len(rep.Recipes))
	for _, name := range rep.Names() {
		m := NewMetrics(e.criteria)
		m.Parse(rep.Recipe(name))
		all = append(all, m)
		result.Recipes = append(result.Recipes, RecipeResult{
			Name:      name,
			Qualified: m.Qualified(),
			Stable:    m.Stable(),
			Metrics:   m,
		})
	}

	result.Statistics = NewMetricStatistics(e.criteria)
	result.Statistics.ParseMetrics(all)

	result.Counts = NewQualifiedRecipeCounter(e.criteria)
	result.Counts.Parse(rep.Containers())

	return result, nil
}
