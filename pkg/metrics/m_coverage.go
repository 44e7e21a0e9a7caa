package metrics

import (
	"encoding/json"

	"github.com/recipescope/recipescope/pkg/report"
)

// CoverageEvaluator measures covered statements and branches over all
// coverage points. Coverage without test results is not trusted, so the
// evaluator needs both reports to be available.
type CoverageEvaluator struct {
	Evaluator
	statement Counter
	branch    Counter
}

func NewCoverageEvaluator(criteria Criteria) *CoverageEvaluator {
	return &CoverageEvaluator{Evaluator: newEvaluator(Positive, criteria.Coverage)}
}

func (e *CoverageEvaluator) Category() Category { return CategoryCoverage }

// Statement and Branch each use their own kind's point count as denominator.
func (e *CoverageEvaluator) Statement() Counter { return e.statement }
func (e *CoverageEvaluator) Branch() Counter    { return e.branch }

func (e *CoverageEvaluator) Parse(c report.Container) {
	e.reset()
	e.statement.Reset()
	e.branch.Reset()

	for _, r := range c.Coverages() {
		covered := 0
		if r.Covered {
			covered = 1
		}
		switch r.Type {
		case report.CoverageStatement:
			e.statement.Increment(1, covered)
		case report.CoverageBranch:
			e.branch.Increment(1, covered)
		}
	}

	e.Add(e.statement)
	e.Add(e.branch)
	e.available = c.Has(report.KindTest) && c.Has(report.KindCoverage)
}

func (e *CoverageEvaluator) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		evaluatorJSON
		Statement Counter `json:"statement"`
		Branch    Counter `json:"branch"`
	}{e.toJSON(), e.statement, e.branch})
}
