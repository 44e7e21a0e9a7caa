package metrics

import (
	"encoding/json"

	"github.com/recipescope/recipescope/pkg/report"
)

// SeverityCounters breaks violations down by severity. All three share the
// size denominator of the owning evaluator.
type SeverityCounters struct {
	Major Counter `json:"major"`
	Minor Counter `json:"minor"`
	Info  Counter `json:"info"`
}

func (s *SeverityCounters) reset(denominator int) {
	s.Major = NewCounter(denominator, 0)
	s.Minor = NewCounter(denominator, 0)
	s.Info = NewCounter(denominator, 0)
}

func (s *SeverityCounters) count(sev report.Severity) {
	switch sev {
	case report.SeverityMajor:
		s.Major.Increment(0, 1)
	case report.SeverityMinor:
		s.Minor.Increment(0, 1)
	case report.SeverityInfo:
		s.Info.Increment(0, 1)
	}
}

func (s *SeverityCounters) total() int {
	return s.Major.Numerator() + s.Minor.Numerator() + s.Info.Numerator()
}

// CodeViolationEvaluator measures violation density in source code: total
// violations over total lines of code. It needs both the violation and the
// code size report to be available, but counts violations regardless.
type CodeViolationEvaluator struct {
	Evaluator
	severities SeverityCounters
}

func NewCodeViolationEvaluator(criteria Criteria) *CodeViolationEvaluator {
	return &CodeViolationEvaluator{Evaluator: newEvaluator(Negative, criteria.CodeViolations)}
}

func (e *CodeViolationEvaluator) Category() Category { return CategoryCodeViolations }

func (e *CodeViolationEvaluator) Major() Counter { return e.severities.Major }
func (e *CodeViolationEvaluator) Minor() Counter { return e.severities.Minor }
func (e *CodeViolationEvaluator) Info() Counter  { return e.severities.Info }

func (e *CodeViolationEvaluator) Parse(c report.Container) {
	e.reset()

	lines := 0
	for _, s := range c.CodeSizes() {
		lines += s.Lines
	}
	e.severities.reset(lines)
	for _, v := range c.CodeViolations() {
		e.severities.count(v.Severity)
	}

	e.Increment(lines, e.severities.total())
	e.available = c.Has(report.KindCodeViolation) && c.Has(report.KindCodeSize)
}

func (e *CodeViolationEvaluator) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		evaluatorJSON
		SeverityCounters
	}{e.toJSON(), e.severities})
}
