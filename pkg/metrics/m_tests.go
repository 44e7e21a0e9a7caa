package metrics

import (
	"encoding/json"

	"github.com/recipescope/recipescope/pkg/report"
)

// TestEvaluator measures the test pass rate.
type TestEvaluator struct {
	Evaluator
	passed  Counter
	failed  Counter
	skipped Counter
}

func NewTestEvaluator(criteria Criteria) *TestEvaluator {
	return &TestEvaluator{Evaluator: newEvaluator(Positive, criteria.Tests)}
}

func (e *TestEvaluator) Category() Category { return CategoryTests }

func (e *TestEvaluator) Passed() Counter  { return e.passed }
func (e *TestEvaluator) Failed() Counter  { return e.failed }
func (e *TestEvaluator) Skipped() Counter { return e.skipped }

func (e *TestEvaluator) Parse(c report.Container) {
	e.reset()
	tests := c.Tests()
	total := len(tests)
	e.passed = NewCounter(total, 0)
	e.failed = NewCounter(total, 0)
	e.skipped = NewCounter(total, 0)

	for _, t := range tests {
		switch t.Status {
		case report.TestPassed:
			e.passed.Increment(0, 1)
		case report.TestFailed:
			e.failed.Increment(0, 1)
		case report.TestSkipped:
			e.skipped.Increment(0, 1)
		}
	}

	e.Increment(total, e.passed.Numerator())
	e.available = c.Has(report.KindTest)
}

func (e *TestEvaluator) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		evaluatorJSON
		Passed  Counter `json:"passed"`
		Failed  Counter `json:"failed"`
		Skipped Counter `json:"skipped"`
	}{e.toJSON(), e.passed, e.failed, e.skipped})
}
