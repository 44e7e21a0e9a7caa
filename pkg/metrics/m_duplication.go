package metrics

import (
	"cmp"
	"slices"

	"github.com/recipescope/recipescope/pkg/report"
)

// DuplicationEvaluator measures duplicated lines over lines of code.
// Overlapping spans in the same file count each line once.
type DuplicationEvaluator struct {
	Evaluator
}

func NewDuplicationEvaluator(criteria Criteria) *DuplicationEvaluator {
	return &DuplicationEvaluator{Evaluator: newEvaluator(Negative, criteria.Duplications)}
}

func (e *DuplicationEvaluator) Category() Category { return CategoryDuplications }

func (e *DuplicationEvaluator) Parse(c report.Container) {
	e.reset()

	lines := 0
	for _, s := range c.CodeSizes() {
		lines += s.Lines
	}

	e.Increment(lines, duplicatedLines(c.Duplications()))
	e.available = c.Has(report.KindDuplication) && c.Has(report.KindCodeSize)
}

// duplicatedLines counts the distinct lines covered by the spans, per file.
// Spans are sorted and merged, so the cost does not depend on span length.
// Inverted spans cover nothing.
func duplicatedLines(spans []report.Duplication) int {
	sorted := slices.DeleteFunc(slices.Clone(spans), func(d report.Duplication) bool {
		return d.End < d.Start
	})
	slices.SortFunc(sorted, func(a, b report.Duplication) int {
		return cmp.Or(cmp.Compare(a.File, b.File), cmp.Compare(a.Start, b.Start))
	})

	total := 0
	for i := 0; i < len(sorted); {
		file := sorted[i].File
		start, end := sorted[i].Start, sorted[i].End
		for i++; i < len(sorted) && sorted[i].File == file; i++ {
			if sorted[i].Start > end+1 {
				total += end - start + 1
				start = sorted[i].Start
			}
			end = max(end, sorted[i].End)
		}
		total += end - start + 1
	}
	return total
}
