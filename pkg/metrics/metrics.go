package metrics

import (
	"encoding/json"

	"github.com/recipescope/recipescope/pkg/report"
)

// Metrics rolls the nine category evaluators into one verdict. Its
// denominator is the number of available categories and its numerator the
// number of those that qualified, compared against Criteria.Overall.
type Metrics struct {
	Evaluator
	criteria Criteria

	Cache            *CacheEvaluator
	CodeViolations   *CodeViolationEvaluator
	Comments         *CommentEvaluator
	Complexity       *ComplexityEvaluator
	Coverage         *CoverageEvaluator
	Duplications     *DuplicationEvaluator
	MutationTests    *MutationTestEvaluator
	RecipeViolations *RecipeViolationEvaluator
	Tests            *TestEvaluator
}

// NewMetrics returns unparsed metrics for the given criteria.
func NewMetrics(criteria Criteria) *Metrics {
	m := &Metrics{
		Evaluator: newEvaluator(Positive, Threshold{Value: criteria.Overall}),
		criteria:  criteria,
	}
	m.build()
	return m
}

func (m *Metrics) build() {
	c := m.criteria
	m.Cache = NewCacheEvaluator(c)
	m.CodeViolations = NewCodeViolationEvaluator(c)
	m.Comments = NewCommentEvaluator(c)
	m.Complexity = NewComplexityEvaluator(c)
	m.Coverage = NewCoverageEvaluator(c)
	m.Duplications = NewDuplicationEvaluator(c)
	m.MutationTests = NewMutationTestEvaluator(c)
	m.RecipeViolations = NewRecipeViolationEvaluator(c)
	m.Tests = NewTestEvaluator(c)
}

// Criteria returns the criteria the metrics were built with.
func (m *Metrics) Criteria() Criteria { return m.criteria }

// Parse rebuilds every category evaluator, parses c with each and counts the
// available and qualified ones.
func (m *Metrics) Parse(c report.Container) {
	m.reset()
	m.build()
	for _, e := range m.Evaluators() {
		e.Parse(c)
		if !e.Available() {
			continue
		}
		if e.Qualified() {
			m.Increment(1, 1)
		} else {
			m.Increment(1, 0)
		}
	}
	m.available = m.Denominator() > 0
}

// Evaluators returns the category evaluators in Categories order.
func (m *Metrics) Evaluators() []CategoryEvaluator {
	return []CategoryEvaluator{
		m.Cache,
		m.CodeViolations,
		m.Comments,
		m.Complexity,
		m.Coverage,
		m.Duplications,
		m.MutationTests,
		m.RecipeViolations,
		m.Tests,
	}
}

// Get returns the evaluator for cat, or nil for an unknown category.
func (m *Metrics) Get(cat Category) CategoryEvaluator {
	switch cat {
	case CategoryCache:
		return m.Cache
	case CategoryCodeViolations:
		return m.CodeViolations
	case CategoryComments:
		return m.Comments
	case CategoryComplexity:
		return m.Complexity
	case CategoryCoverage:
		return m.Coverage
	case CategoryDuplications:
		return m.Duplications
	case CategoryMutationTests:
		return m.MutationTests
	case CategoryRecipeViolations:
		return m.RecipeViolations
	case CategoryTests:
		return m.Tests
	default:
		return nil
	}
}

// Stable reports whether every category evaluator is stable.
func (m *Metrics) Stable() bool {
	for _, e := range m.Evaluators() {
		if !e.Stable() {
			return false
		}
	}
	return true
}

func (m *Metrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		evaluatorJSON
		Cache            *CacheEvaluator           `json:"cache"`
		CodeViolations   *CodeViolationEvaluator   `json:"code_violations"`
		Comments         *CommentEvaluator         `json:"comments"`
		Complexity       *ComplexityEvaluator      `json:"complexity"`
		Coverage         *CoverageEvaluator        `json:"coverage"`
		Duplications     *DuplicationEvaluator     `json:"duplications"`
		MutationTests    *MutationTestEvaluator    `json:"mutation_tests"`
		RecipeViolations *RecipeViolationEvaluator `json:"recipe_violations"`
		Tests            *TestEvaluator            `json:"tests"`
	}{
		m.toJSON(),
		m.Cache,
		m.CodeViolations,
		m.Comments,
		m.Complexity,
		m.Coverage,
		m.Duplications,
		m.MutationTests,
		m.RecipeViolations,
		m.Tests,
	})
}
