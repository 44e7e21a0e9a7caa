package metrics

import (
	"encoding/json"

	"github.com/recipescope/recipescope/pkg/report"
)

// Category names one metric family.
type Category string

const (
	CategoryCache            Category = "cache"
	CategoryCodeViolations   Category = "code_violations"
	CategoryComments         Category = "comments"
	CategoryComplexity       Category = "complexity"
	CategoryCoverage         Category = "coverage"
	CategoryDuplications     Category = "duplications"
	CategoryMutationTests    Category = "mutation_tests"
	CategoryRecipeViolations Category = "recipe_violations"
	CategoryTests            Category = "tests"
)

// Categories returns every category in reporting order.
func Categories() []Category {
	return []Category{
		CategoryCache,
		CategoryCodeViolations,
		CategoryComments,
		CategoryComplexity,
		CategoryCoverage,
		CategoryDuplications,
		CategoryMutationTests,
		CategoryRecipeViolations,
		CategoryTests,
	}
}

// ParseCategory maps a category name to its Category.
func ParseCategory(name string) (Category, bool) {
	for _, c := range Categories() {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// Polarity decides which side of the threshold qualifies.
type Polarity int

const (
	// Positive evaluators qualify when ratio >= threshold.
	Positive Polarity = iota
	// Negative evaluators qualify when ratio <= threshold.
	Negative
)

func (p Polarity) String() string {
	if p == Negative {
		return "negative"
	}
	return "positive"
}

// Evaluator is a Counter with a threshold, a polarity and an availability
// flag. Category evaluators embed it and reset it at the start of every parse.
type Evaluator struct {
	Counter
	threshold    float64
	polarity     Polarity
	available    bool
	markUnstable bool
}

func newEvaluator(polarity Polarity, t Threshold) Evaluator {
	return Evaluator{
		threshold:    t.Value,
		polarity:     polarity,
		markUnstable: t.MarkUnstable,
	}
}

func (e Evaluator) Threshold() float64 { return e.threshold }
func (e Evaluator) Polarity() Polarity { return e.polarity }
func (e Evaluator) Available() bool    { return e.available }

// Qualified reports whether the ratio satisfies the threshold. Both
// comparisons are inclusive; unavailable evaluators never qualify.
func (e Evaluator) Qualified() bool {
	if !e.available {
		return false
	}
	if e.polarity == Negative {
		return e.Ratio() <= e.threshold
	}
	return e.Ratio() >= e.threshold
}

// Stable reports whether this evaluator lets the build stay stable. Missing
// data never destabilizes a build; only a failed check of present data does,
// and only when the category is configured to mark builds unstable.
func (e Evaluator) Stable() bool {
	return !e.markUnstable || !e.available || e.Qualified()
}

func (e *Evaluator) reset() {
	e.Counter.Reset()
	e.available = false
}

type evaluatorJSON struct {
	Available   bool    `json:"available"`
	Qualified   bool    `json:"qualified"`
	Denominator int     `json:"denominator"`
	Numerator   int     `json:"numerator"`
	Ratio       float64 `json:"ratio"`
	Threshold   float64 `json:"threshold"`
}

func (e Evaluator) toJSON() evaluatorJSON {
	return evaluatorJSON{
		Available:   e.available,
		Qualified:   e.Qualified(),
		Denominator: e.denominator,
		Numerator:   e.numerator,
		Ratio:       e.Ratio(),
		Threshold:   e.threshold,
	}
}

func (e Evaluator) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.toJSON())
}

// CategoryEvaluator is implemented by every category evaluator.
type CategoryEvaluator interface {
	Category() Category
	// Parse replaces the evaluator's state with counts from c.
	Parse(c report.Container)

	Denominator() int
	Numerator() int
	Ratio() float64
	Threshold() float64
	Polarity() Polarity
	Available() bool
	Qualified() bool
	Stable() bool
}

// NewCategoryEvaluator returns a fresh evaluator for cat.
func NewCategoryEvaluator(cat Category, criteria Criteria) CategoryEvaluator {
	switch cat {
	case CategoryCache:
		return NewCacheEvaluator(criteria)
	case CategoryCodeViolations:
		return NewCodeViolationEvaluator(criteria)
	case CategoryComments:
		return NewCommentEvaluator(criteria)
	case CategoryComplexity:
		return NewComplexityEvaluator(criteria)
	case CategoryCoverage:
		return NewCoverageEvaluator(criteria)
	case CategoryDuplications:
		return NewDuplicationEvaluator(criteria)
	case CategoryMutationTests:
		return NewMutationTestEvaluator(criteria)
	case CategoryRecipeViolations:
		return NewRecipeViolationEvaluator(criteria)
	case CategoryTests:
		return NewTestEvaluator(criteria)
	default:
		return nil
	}
}
