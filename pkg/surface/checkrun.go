package surface

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/recipescope/recipescope/pkg/metrics"
)

// maxListedRecipes caps the recipe names shown per category in a summary.
const maxListedRecipes = 10

// CheckRunRenderer produces GitHub Check Run data from a Result.
type CheckRunRenderer struct{}

func (r *CheckRunRenderer) Render(w io.Writer, result *metrics.Result) error {
	data := r.BuildCheckRunData(result)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// BuildCheckRunData creates the CheckRunData struct from a Result.
func (r *CheckRunRenderer) BuildCheckRunData(result *metrics.Result) CheckRunData {
	return CheckRunData{
		Title:      checkRunTitle(result),
		Summary:    buildMarkdownSummary(result),
		Conclusion: conclusion(result),
		ExternalID: result.ReportID,
	}
}

func checkRunTitle(result *metrics.Result) string {
	return fmt.Sprintf("Recipescope: %s (%d/%d categories qualified)",
		verdict(result), result.Metrics.Numerator(), result.Metrics.Denominator())
}

// conclusion maps a result onto a check run conclusion. Only an unstable
// build fails the check; an unqualified but stable build is neutral.
func conclusion(result *metrics.Result) string {
	switch {
	case !result.Metrics.Available():
		return "neutral"
	case result.Qualified:
		return "success"
	case !result.Stable:
		return "failure"
	default:
		return "neutral"
	}
}

func buildMarkdownSummary(result *metrics.Result) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## %s\n\n", checkRunTitle(result)))
	if result.Build != "" {
		sb.WriteString(fmt.Sprintf("Project `%s`, build `%s`.\n\n", result.Project, result.Build))
	} else {
		sb.WriteString(fmt.Sprintf("Project `%s`.\n\n", result.Project))
	}

	sb.WriteString("### Categories\n\n")
	sb.WriteString("| | Category | Ratio | Count | Threshold |\n|---|---|---|---|---|\n")
	for _, cat := range metrics.Categories() {
		e := result.Metrics.Get(cat)
		if !e.Available() {
			sb.WriteString(fmt.Sprintf("| :white_circle: | %s | - | - | %s %s |\n",
				CategoryName(cat), comparator(e), percent(e.Threshold())))
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d/%d | %s %s |\n",
			statusIcon(e), CategoryName(cat), percent(e.Ratio()), e.Numerator(), e.Denominator(),
			comparator(e), percent(e.Threshold())))
	}
	sb.WriteString("\n")

	if b := result.Breakdown; b != nil {
		var lines []string
		if b.CodeViolations.Available() {
			lines = append(lines, fmt.Sprintf("- **Code violations**: %d major, %d minor, %d info over %d lines",
				b.CodeViolations.Major().Numerator(), b.CodeViolations.Minor().Numerator(),
				b.CodeViolations.Info().Numerator(), b.CodeViolations.Denominator()))
		}
		if b.RecipeViolations.Available() {
			lines = append(lines, fmt.Sprintf("- **Recipe violations**: %d major, %d minor, %d info over %d lines",
				b.RecipeViolations.Major().Numerator(), b.RecipeViolations.Minor().Numerator(),
				b.RecipeViolations.Info().Numerator(), b.RecipeViolations.Denominator()))
		}
		if b.Tests.Available() {
			lines = append(lines, fmt.Sprintf("- **Tests**: %d passed, %d failed, %d skipped",
				b.Tests.Passed().Numerator(), b.Tests.Failed().Numerator(), b.Tests.Skipped().Numerator()))
		}
		if b.Coverage.Available() {
			lines = append(lines, fmt.Sprintf("- **Coverage**: statements %d/%d, branches %d/%d",
				b.Coverage.Statement().Numerator(), b.Coverage.Statement().Denominator(),
				b.Coverage.Branch().Numerator(), b.Coverage.Branch().Denominator()))
		}
		if b.MutationTests.Available() {
			lines = append(lines, fmt.Sprintf("- **Mutation tests**: %d killed, %d survived, %d skipped",
				b.MutationTests.Killed().Numerator(), b.MutationTests.Survived().Numerator(),
				b.MutationTests.Skipped().Numerator()))
		}
		if len(lines) > 0 {
			sb.WriteString("### Breakdown\n\n")
			sb.WriteString(strings.Join(lines, "\n"))
			sb.WriteString("\n\n")
		}
	}

	failures := result.Failures()
	if len(failures) > 0 {
		sb.WriteString("### Unqualified recipes\n\n")
		for _, cat := range failures {
			var names []string
			for _, rr := range result.Recipes {
				e := rr.Metrics.Get(cat)
				if e.Available() && !e.Qualified() {
					names = append(names, rr.Name)
				}
			}
			if len(names) == 0 {
				continue
			}
			shown := names
			if len(shown) > maxListedRecipes {
				shown = shown[:maxListedRecipes]
			}
			sb.WriteString(fmt.Sprintf("- **%s**: `%s`", CategoryName(cat), strings.Join(shown, "`, `")))
			if extra := len(names) - len(shown); extra > 0 {
				sb.WriteString(fmt.Sprintf(" _... and %d more_", extra))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if !result.Stable {
		sb.WriteString(":warning: This build is marked **unstable**.\n")
	}

	return sb.String()
}

func statusIcon(e metrics.CategoryEvaluator) string {
	if e.Qualified() {
		return ":white_check_mark:"
	}
	return ":x:"
}
