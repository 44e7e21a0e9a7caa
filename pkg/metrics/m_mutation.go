package metrics

import (
	"encoding/json"

	"github.com/recipescope/recipescope/pkg/report"
)

// MutationTestEvaluator measures the mutant kill rate. Skipped mutants stay
// in the denominator.
type MutationTestEvaluator struct {
	Evaluator
	killed   Counter
	survived Counter
	skipped  Counter
}

func NewMutationTestEvaluator(criteria Criteria) *MutationTestEvaluator {
	return &MutationTestEvaluator{Evaluator: newEvaluator(Positive, criteria.MutationTests)}
}

func (e *MutationTestEvaluator) Category() Category { return CategoryMutationTests }

func (e *MutationTestEvaluator) Killed() Counter   { return e.killed }
func (e *MutationTestEvaluator) Survived() Counter { return e.survived }
func (e *MutationTestEvaluator) Skipped() Counter  { return e.skipped }

func (e *MutationTestEvaluator) Parse(c report.Container) {
	e.reset()
	mutations := c.MutationTests()
	total := len(mutations)
	e.killed = NewCounter(total, 0)
	e.survived = NewCounter(total, 0)
	e.skipped = NewCounter(total, 0)

	for _, m := range mutations {
		switch m.Status {
		case report.MutationKilled:
			e.killed.Increment(0, 1)
		case report.MutationSurvived:
			e.survived.Increment(0, 1)
		case report.MutationSkipped:
			e.skipped.Increment(0, 1)
		}
	}

	e.Increment(total, e.killed.Numerator())
	e.available = c.Has(report.KindMutationTest)
}

func (e *MutationTestEvaluator) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		evaluatorJSON
		Killed   Counter `json:"killed"`
		Survived Counter `json:"survived"`
		Skipped  Counter `json:"skipped"`
	}{e.toJSON(), e.killed, e.survived, e.skipped})
}
