package metrics

import "github.com/recipescope/recipescope/pkg/report"

// ComplexityEvaluator measures the share of functions whose cyclomatic
// complexity reaches the configured level. Functions are deduplicated by
// file, name and span, so a function reported twice counts once; if the
// duplicates disagree, the highest value wins.
type ComplexityEvaluator struct {
	Evaluator
	level int
}

func NewComplexityEvaluator(criteria Criteria) *ComplexityEvaluator {
	return &ComplexityEvaluator{
		Evaluator: newEvaluator(Negative, criteria.Complexity),
		level:     criteria.ComplexityLevel,
	}
}

func (e *ComplexityEvaluator) Category() Category { return CategoryComplexity }

// Level returns the complexity at or above which a function is counted.
func (e *ComplexityEvaluator) Level() int { return e.level }

func (e *ComplexityEvaluator) Parse(c report.Container) {
	e.reset()
	if !c.Has(report.KindComplexity) {
		return
	}
	e.available = true

	values := make(map[report.ComplexityKey]int)
	for _, r := range c.Complexities() {
		key := r.Key()
		if v, ok := values[key]; !ok || r.Value > v {
			values[key] = r.Value
		}
	}
	for _, v := range values {
		if v >= e.level {
			e.Increment(1, 1)
		} else {
			e.Increment(1, 0)
		}
	}
}
