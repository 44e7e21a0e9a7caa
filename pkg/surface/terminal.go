package surface

import (
	"fmt"
	"io"
	"os"

	"github.com/recipescope/recipescope/pkg/metrics"
)

// TerminalRenderer renders a Result as colored terminal output.
type TerminalRenderer struct {
	// Recipes lists every recipe verdict after the project summary.
	Recipes bool
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func verdictColor(result *metrics.Result) string {
	if noColor() {
		return ""
	}
	switch {
	case !result.Metrics.Available():
		return colorYellow
	case result.Qualified:
		return colorGreen
	default:
		return colorRed
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

// mark is the status glyph for one evaluator.
func mark(e metrics.CategoryEvaluator) string {
	switch {
	case !e.Available():
		return dim("-")
	case e.Qualified():
		return colored("✓", colorGreen)
	default:
		return colored("✗", colorRed)
	}
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func (r *TerminalRenderer) Render(w io.Writer, result *metrics.Result) error {
	m := result.Metrics

	// Header
	title := "Recipescope: " + result.Project
	if result.Build != "" {
		title += " build " + result.Build
	}
	fmt.Fprintf(w, "%s\n\n", bold(fmt.Sprintf("%s - %s (%d/%d categories qualified)",
		title, colored(verdict(result), verdictColor(result)), m.Numerator(), m.Denominator())))

	fmt.Fprintln(w, "Categories:")
	for _, cat := range metrics.Categories() {
		e := m.Get(cat)
		if !e.Available() {
			fmt.Fprintf(w, "  %s %-18s %s\n", mark(e), CategoryName(cat), dim("no data"))
			continue
		}
		fmt.Fprintf(w, "  %s %-18s %7s  (%d/%d)  %s\n",
			mark(e), CategoryName(cat), percent(e.Ratio()), e.Numerator(), e.Denominator(),
			dim(comparator(e)+" "+percent(e.Threshold())))
	}
	fmt.Fprintln(w)

	renderBreakdown(w, result.Breakdown)

	if r.Recipes && len(result.Recipes) > 0 {
		fmt.Fprintln(w, "Recipes:")
		for _, rr := range result.Recipes {
			glyph := colored("✗", colorRed)
			switch {
			case !rr.Metrics.Available():
				glyph = dim("-")
			case rr.Qualified:
				glyph = colored("✓", colorGreen)
			}
			fmt.Fprintf(w, "  %s %-30s %d/%d\n", glyph, rr.Name, rr.Metrics.Numerator(), rr.Metrics.Denominator())
		}
		fmt.Fprintln(w)
	}

	if !result.Stable {
		var names []string
		for _, e := range m.Evaluators() {
			if !e.Stable() {
				names = append(names, CategoryName(e.Category()))
			}
		}
		fmt.Fprintf(w, "%s %v\n", colored("Build marked UNSTABLE by:", colorYellow), names)
	}

	return nil
}

func renderBreakdown(w io.Writer, b *metrics.Breakdown) {
	if b == nil {
		return
	}
	hasAny := false
	header := func() {
		if !hasAny {
			fmt.Fprintln(w, "Breakdown:")
			hasAny = true
		}
	}

	for _, v := range []struct {
		name string
		q    *metrics.ViolationQualifier
	}{
		{"Code violations", b.CodeViolations},
		{"Recipe violations", b.RecipeViolations},
	} {
		if !v.q.Available() {
			continue
		}
		header()
		fmt.Fprintf(w, "  %-18s major %d, minor %d, info %d over %d lines\n",
			v.name, v.q.Major().Numerator(), v.q.Minor().Numerator(), v.q.Info().Numerator(), v.q.Denominator())
	}
	if b.Tests.Available() {
		header()
		fmt.Fprintf(w, "  %-18s %d passed, %d failed, %d skipped\n", "Tests",
			b.Tests.Passed().Numerator(), b.Tests.Failed().Numerator(), b.Tests.Skipped().Numerator())
	}
	if b.Coverage.Available() {
		header()
		st, br := b.Coverage.Statement(), b.Coverage.Branch()
		fmt.Fprintf(w, "  %-18s statements %d/%d, branches %d/%d\n", "Coverage",
			st.Numerator(), st.Denominator(), br.Numerator(), br.Denominator())
	}
	if b.MutationTests.Available() {
		header()
		fmt.Fprintf(w, "  %-18s %d killed, %d survived, %d skipped\n", "Mutation tests",
			b.MutationTests.Killed().Numerator(), b.MutationTests.Survived().Numerator(), b.MutationTests.Skipped().Numerator())
	}
	if hasAny {
		fmt.Fprintln(w)
	}
}

// RenderStatistics prints the per-category ratio spread across recipes.
func RenderStatistics(w io.Writer, stats *metrics.MetricStatistics, counts *metrics.QualifiedRecipeCounter) {
	fmt.Fprintf(w, "%s\n\n", bold(fmt.Sprintf("Recipes: %d (%d tested, %d/%d qualified)",
		counts.Recipes(), counts.Tested(), counts.Overall().Qualified, counts.Overall().Available)))

	fmt.Fprintf(w, "  %-18s %8s %8s %8s %8s %10s\n", "Category", "Recipes", "Min", "Max", "Average", "Qualified")
	for _, cat := range metrics.Categories() {
		s := stats.Get(cat)
		if s.Count == 0 {
			fmt.Fprintf(w, "  %-18s %8d %s\n", CategoryName(cat), 0, dim("no data"))
			continue
		}
		c := counts.Get(cat)
		fmt.Fprintf(w, "  %-18s %8d %8s %8s %8s %10s\n", CategoryName(cat), s.Count,
			percent(s.Min), percent(s.Max), percent(s.Average), fmt.Sprintf("%d/%d", c.Qualified, c.Available))
	}
}
