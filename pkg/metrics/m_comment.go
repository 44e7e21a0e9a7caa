package metrics

import "github.com/recipescope/recipescope/pkg/report"

// CommentEvaluator measures comment lines over total lines.
type CommentEvaluator struct {
	Evaluator
}

func NewCommentEvaluator(criteria Criteria) *CommentEvaluator {
	return &CommentEvaluator{Evaluator: newEvaluator(Positive, criteria.Comments)}
}

func (e *CommentEvaluator) Category() Category { return CategoryComments }

func (e *CommentEvaluator) Parse(c report.Container) {
	e.reset()
	if !c.Has(report.KindComment) {
		return
	}
	e.available = true
	for _, r := range c.Comments() {
		e.Increment(r.Lines, r.CommentLines)
	}
}
