package metrics

import (
	"encoding/json"

	"github.com/recipescope/recipescope/pkg/report"
)

// RecipeViolationEvaluator is the recipe-metadata counterpart of
// CodeViolationEvaluator: recipe lint findings over recipe file lines.
type RecipeViolationEvaluator struct {
	Evaluator
	severities SeverityCounters
}

func NewRecipeViolationEvaluator(criteria Criteria) *RecipeViolationEvaluator {
	return &RecipeViolationEvaluator{Evaluator: newEvaluator(Negative, criteria.RecipeViolations)}
}

func (e *RecipeViolationEvaluator) Category() Category { return CategoryRecipeViolations }

func (e *RecipeViolationEvaluator) Major() Counter { return e.severities.Major }
func (e *RecipeViolationEvaluator) Minor() Counter { return e.severities.Minor }
func (e *RecipeViolationEvaluator) Info() Counter  { return e.severities.Info }

func (e *RecipeViolationEvaluator) Parse(c report.Container) {
	e.reset()

	lines := 0
	for _, s := range c.RecipeSizes() {
		lines += s.Lines
	}
	e.severities.reset(lines)
	for _, v := range c.RecipeViolations() {
		e.severities.count(v.Severity)
	}

	e.Increment(lines, e.severities.total())
	e.available = c.Has(report.KindRecipeViolation) && c.Has(report.KindRecipeSize)
}

func (e *RecipeViolationEvaluator) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		evaluatorJSON
		SeverityCounters
	}{e.toJSON(), e.severities})
}
