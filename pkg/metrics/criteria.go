package metrics

// Threshold configures one category.
type Threshold struct {
	Value        float64 `json:"threshold"`
	MarkUnstable bool    `json:"mark_unstable"` // a failed check marks the build unstable
}

// Criteria holds the thresholds for every category plus the overall
// threshold used by Metrics. It is a plain value and safe to share.
type Criteria struct {
	Cache            Threshold `json:"cache"`
	CodeViolations   Threshold `json:"code_violations"`
	Comments         Threshold `json:"comments"`
	Complexity       Threshold `json:"complexity"`
	Coverage         Threshold `json:"coverage"`
	Duplications     Threshold `json:"duplications"`
	MutationTests    Threshold `json:"mutation_tests"`
	RecipeViolations Threshold `json:"recipe_violations"`
	Tests            Threshold `json:"tests"`

	// ComplexityLevel is the value at or above which a function counts as
	// too complex.
	ComplexityLevel int     `json:"complexity_level"`
	Overall         float64 `json:"overall"`
}

// DefaultCriteria returns the default thresholds.
func DefaultCriteria() Criteria {
	return Criteria{
		Cache:            Threshold{Value: 0.9},
		CodeViolations:   Threshold{Value: 0.1},
		Comments:         Threshold{Value: 0.3},
		Complexity:       Threshold{Value: 0.1},
		Coverage:         Threshold{Value: 0.6},
		Duplications:     Threshold{Value: 0.05},
		MutationTests:    Threshold{Value: 0.5},
		RecipeViolations: Threshold{Value: 0.1},
		Tests:            Threshold{Value: 0.95},

		ComplexityLevel: 10,
		Overall:         1.0,
	}
}

// For returns the threshold configured for cat.
func (c Criteria) For(cat Category) Threshold {
	switch cat {
	case CategoryCache:
		return c.Cache
	case CategoryCodeViolations:
		return c.CodeViolations
	case CategoryComments:
		return c.Comments
	case CategoryComplexity:
		return c.Complexity
	case CategoryCoverage:
		return c.Coverage
	case CategoryDuplications:
		return c.Duplications
	case CategoryMutationTests:
		return c.MutationTests
	case CategoryRecipeViolations:
		return c.RecipeViolations
	case CategoryTests:
		return c.Tests
	default:
		return Threshold{}
	}
}

// With returns a copy of c with cat's threshold replaced.
func (c Criteria) With(cat Category, t Threshold) Criteria {
	switch cat {
	case CategoryCache:
		c.Cache = t
	case CategoryCodeViolations:
		c.CodeViolations = t
	case CategoryComments:
		c.Comments = t
	case CategoryComplexity:
		c.Complexity = t
	case CategoryCoverage:
		c.Coverage = t
	case CategoryDuplications:
		c.Duplications = t
	case CategoryMutationTests:
		c.MutationTests = t
	case CategoryRecipeViolations:
		c.RecipeViolations = t
	case CategoryTests:
		c.Tests = t
	}
	return c
}
