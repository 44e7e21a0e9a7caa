// Package surface defines output rendering interfaces for Recipescope results.
// Implementations handle different output targets: terminal, GitHub Check Run, JSON.
package surface

import (
	"io"

	"github.com/recipescope/recipescope/pkg/metrics"
)

// Renderer produces formatted output from an evaluation Result.
type Renderer interface {
	// Render writes the formatted result to the writer.
	Render(w io.Writer, result *metrics.Result) error
}

// CheckRunData holds the data needed to create a GitHub Check Run.
type CheckRunData struct {
	Title      string `json:"title"`
	Summary    string `json:"summary"`               // Markdown body
	Conclusion string `json:"conclusion"`            // success, neutral, failure
	ExternalID string `json:"external_id,omitempty"` // report ID, echoed back on re-run requests
}

// CategoryName returns the human-readable name of a category.
func CategoryName(cat metrics.Category) string {
	switch cat {
	case metrics.CategoryCache:
		return "Cache hit rate"
	case metrics.CategoryCodeViolations:
		return "Code violations"
	case metrics.CategoryComments:
		return "Comments"
	case metrics.CategoryComplexity:
		return "Complexity"
	case metrics.CategoryCoverage:
		return "Coverage"
	case metrics.CategoryDuplications:
		return "Duplications"
	case metrics.CategoryMutationTests:
		return "Mutation tests"
	case metrics.CategoryRecipeViolations:
		return "Recipe violations"
	case metrics.CategoryTests:
		return "Tests"
	default:
		return string(cat)
	}
}

// comparator renders the qualifying side of the threshold.
func comparator(e metrics.CategoryEvaluator) string {
	if e.Polarity() == metrics.Negative {
		return "<="
	}
	return ">="
}

// verdict is a one-word summary of a result.
func verdict(result *metrics.Result) string {
	switch {
	case !result.Metrics.Available():
		return "NO DATA"
	case result.Qualified:
		return "QUALIFIED"
	default:
		return "UNQUALIFIED"
	}
}
