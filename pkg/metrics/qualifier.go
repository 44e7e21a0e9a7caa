package metrics

import (
	"encoding/json"

	"github.com/recipescope/recipescope/pkg/report"
)

// RecordList is a typed list of raw records pushed into a Qualifier. The set
// of list types is closed.
type RecordList interface {
	recordList()
}

type (
	CodeViolationList   []report.CodeViolation
	CodeSizeList        []report.CodeSize
	RecipeViolationList []report.RecipeViolation
	RecipeSizeList      []report.RecipeSize
	TestList            []report.Test
	CoverageList        []report.Coverage
	MutationTestList    []report.MutationTest
)

func (CodeViolationList) recordList()   {}
func (CodeSizeList) recordList()        {}
func (RecipeViolationList) recordList() {}
func (RecipeSizeList) recordList()      {}
func (TestList) recordList()            {}
func (CoverageList) recordList()        {}
func (MutationTestList) recordList()    {}

// Qualifier accumulates counts from record lists pushed into it, as opposed
// to an Evaluator which pulls them from a container. Visiting is additive;
// lists a qualifier does not care about are ignored.
type Qualifier interface {
	Visit(list RecordList)

	Denominator() int
	Numerator() int
	Ratio() float64
	Threshold() float64
	Available() bool
	Qualified() bool
}

// Dispatch visits every list with q, in order.
func Dispatch(q Qualifier, lists ...RecordList) {
	for _, l := range lists {
		if l != nil {
			q.Visit(l)
		}
	}
}

// qualifierBase holds the threshold rule shared by all qualifiers.
type qualifierBase struct {
	threshold float64
	polarity  Polarity
}

func (q qualifierBase) Threshold() float64 { return q.threshold }

func (q qualifierBase) qualified(available bool, c Counter) bool {
	if !available {
		return false
	}
	if q.polarity == Negative {
		return c.Ratio() <= q.threshold
	}
	return c.Ratio() >= q.threshold
}

func (q qualifierBase) toJSON(available bool, c Counter) evaluatorJSON {
	return evaluatorJSON{
		Available:   available,
		Qualified:   q.qualified(available, c),
		Denominator: c.Denominator(),
		Numerator:   c.Numerator(),
		Ratio:       c.Ratio(),
		Threshold:   q.threshold,
	}
}

// ViolationQualifier tracks violations per severity against the lines of the
// matching size lists. Only major violations decide qualification; minor and
// info are reported but do not count.
type ViolationQualifier struct {
	qualifierBase
	recipe     bool // recipe lint instead of source code
	severities SeverityCounters
	sawSize    bool
	sawFinding bool
}

// NewCodeViolationQualifier counts CodeViolationList against CodeSizeList.
func NewCodeViolationQualifier(criteria Criteria) *ViolationQualifier {
	return &ViolationQualifier{qualifierBase: qualifierBase{criteria.CodeViolations.Value, Negative}}
}

// NewRecipeViolationQualifier counts RecipeViolationList against RecipeSizeList.
func NewRecipeViolationQualifier(criteria Criteria) *ViolationQualifier {
	return &ViolationQualifier{
		qualifierBase: qualifierBase{criteria.RecipeViolations.Value, Negative},
		recipe:        true,
	}
}

func (q *ViolationQualifier) Visit(list RecordList) {
	switch l := list.(type) {
	case CodeViolationList:
		if !q.recipe {
			q.sawFinding = true
			for _, v := range l {
				q.severities.count(v.Severity)
			}
		}
	case CodeSizeList:
		if !q.recipe {
			q.sawSize = true
			for _, s := range l {
				q.addLines(s.Lines)
			}
		}
	case RecipeViolationList:
		if q.recipe {
			q.sawFinding = true
			for _, v := range l {
				q.severities.count(v.Severity)
			}
		}
	case RecipeSizeList:
		if q.recipe {
			q.sawSize = true
			for _, s := range l {
				q.addLines(s.Lines)
			}
		}
	}
}

func (q *ViolationQualifier) addLines(n int) {
	q.severities.Major.Increment(n, 0)
	q.severities.Minor.Increment(n, 0)
	q.severities.Info.Increment(n, 0)
}

func (q *ViolationQualifier) Major() Counter { return q.severities.Major }
func (q *ViolationQualifier) Minor() Counter { return q.severities.Minor }
func (q *ViolationQualifier) Info() Counter  { return q.severities.Info }

func (q *ViolationQualifier) Denominator() int { return q.severities.Major.Denominator() }
func (q *ViolationQualifier) Numerator() int   { return q.severities.Major.Numerator() }
func (q *ViolationQualifier) Ratio() float64   { return q.severities.Major.Ratio() }
func (q *ViolationQualifier) Available() bool  { return q.sawFinding && q.sawSize }
func (q *ViolationQualifier) Qualified() bool {
	return q.qualified(q.Available(), q.severities.Major)
}

func (q *ViolationQualifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		evaluatorJSON
		SeverityCounters
	}{q.toJSON(q.Available(), q.severities.Major), q.severities})
}

// TestQualifier tracks test outcomes; passed tests form the numerator.
type TestQualifier struct {
	qualifierBase
	passed, failed, skipped Counter
	seen                    bool
}

func NewTestQualifier(criteria Criteria) *TestQualifier {
	return &TestQualifier{qualifierBase: qualifierBase{criteria.Tests.Value, Positive}}
}

func (q *TestQualifier) Visit(list RecordList) {
	l, ok := list.(TestList)
	if !ok {
		return
	}
	q.seen = true
	for _, t := range l {
		q.passed.Increment(1, 0)
		q.failed.Increment(1, 0)
		q.skipped.Increment(1, 0)
		switch t.Status {
		case report.TestPassed:
			q.passed.Increment(0, 1)
		case report.TestFailed:
			q.failed.Increment(0, 1)
		case report.TestSkipped:
			q.skipped.Increment(0, 1)
		}
	}
}

func (q *TestQualifier) Passed() Counter  { return q.passed }
func (q *TestQualifier) Failed() Counter  { return q.failed }
func (q *TestQualifier) Skipped() Counter { return q.skipped }

func (q *TestQualifier) Denominator() int { return q.passed.Denominator() }
func (q *TestQualifier) Numerator() int   { return q.passed.Numerator() }
func (q *TestQualifier) Ratio() float64   { return q.passed.Ratio() }
func (q *TestQualifier) Available() bool  { return q.seen }
func (q *TestQualifier) Qualified() bool  { return q.qualified(q.seen, q.passed) }

func (q *TestQualifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		evaluatorJSON
		Passed  Counter `json:"passed"`
		Failed  Counter `json:"failed"`
		Skipped Counter `json:"skipped"`
	}{q.toJSON(q.seen, q.passed), q.passed, q.failed, q.skipped})
}

// CoverageQualifier tracks statement and branch coverage and combines them by
// summation. Like CoverageEvaluator it needs test results to be available.
type CoverageQualifier struct {
	qualifierBase
	statement, branch     Counter
	sawTests, sawCoverage bool
}

func NewCoverageQualifier(criteria Criteria) *CoverageQualifier {
	return &CoverageQualifier{qualifierBase: qualifierBase{criteria.Coverage.Value, Positive}}
}

func (q *CoverageQualifier) Visit(list RecordList) {
	switch l := list.(type) {
	case TestList:
		q.sawTests = true
	case CoverageList:
		q.sawCoverage = true
		for _, r := range l {
			covered := 0
			if r.Covered {
				covered = 1
			}
			switch r.Type {
			case report.CoverageStatement:
				q.statement.Increment(1, covered)
			case report.CoverageBranch:
				q.branch.Increment(1, covered)
			}
		}
	}
}

func (q *CoverageQualifier) Statement() Counter { return q.statement }
func (q *CoverageQualifier) Branch() Counter    { return q.branch }

func (q *CoverageQualifier) combined() Counter {
	c := q.statement
	c.Add(q.branch)
	return c
}

func (q *CoverageQualifier) Denominator() int { return q.combined().Denominator() }
func (q *CoverageQualifier) Numerator() int   { return q.combined().Numerator() }
func (q *CoverageQualifier) Ratio() float64   { return q.combined().Ratio() }
func (q *CoverageQualifier) Available() bool  { return q.sawTests && q.sawCoverage }
func (q *CoverageQualifier) Qualified() bool  { return q.qualified(q.Available(), q.combined()) }

func (q *CoverageQualifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		evaluatorJSON
		Statement Counter `json:"statement"`
		Branch    Counter `json:"branch"`
	}{q.toJSON(q.Available(), q.combined()), q.statement, q.branch})
}

// MutationQualifier tracks mutant outcomes; killed mutants form the numerator.
type MutationQualifier struct {
	qualifierBase
	killed, survived, skipped Counter
	seen                      bool
}

func NewMutationQualifier(criteria Criteria) *MutationQualifier {
	return &MutationQualifier{qualifierBase: qualifierBase{criteria.MutationTests.Value, Positive}}
}

func (q *MutationQualifier) Visit(list RecordList) {
	l, ok := list.(MutationTestList)
	if !ok {
		return
	}
	q.seen = true
	for _, m := range l {
		q.killed.Increment(1, 0)
		q.survived.Increment(1, 0)
		q.skipped.Increment(1, 0)
		switch m.Status {
		case report.MutationKilled:
			q.killed.Increment(0, 1)
		case report.MutationSurvived:
			q.survived.Increment(0, 1)
		case report.MutationSkipped:
			q.skipped.Increment(0, 1)
		}
	}
}

func (q *MutationQualifier) Killed() Counter   { return q.killed }
func (q *MutationQualifier) Survived() Counter { return q.survived }
func (q *MutationQualifier) Skipped() Counter  { return q.skipped }

func (q *MutationQualifier) Denominator() int { return q.killed.Denominator() }
func (q *MutationQualifier) Numerator() int   { return q.killed.Numerator() }
func (q *MutationQualifier) Ratio() float64   { return q.killed.Ratio() }
func (q *MutationQualifier) Available() bool  { return q.seen }
func (q *MutationQualifier) Qualified() bool  { return q.qualified(q.seen, q.killed) }

func (q *MutationQualifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		evaluatorJSON
		Killed   Counter `json:"killed"`
		Survived Counter `json:"survived"`
		Skipped  Counter `json:"skipped"`
	}{q.toJSON(q.seen, q.killed), q.killed, q.survived, q.skipped})
}

// Lists returns the record lists of c in the form Dispatch accepts. Kinds
// missing from c are left out.
func Lists(c report.Container) []RecordList {
	var lists []RecordList
	if c.Has(report.KindCodeViolation) {
		lists = append(lists, CodeViolationList(c.CodeViolations()))
	}
	if c.Has(report.KindCodeSize) {
		lists = append(lists, CodeSizeList(c.CodeSizes()))
	}
	if c.Has(report.KindRecipeViolation) {
		lists = append(lists, RecipeViolationList(c.RecipeViolations()))
	}
	if c.Has(report.KindRecipeSize) {
		lists = append(lists, RecipeSizeList(c.RecipeSizes()))
	}
	if c.Has(report.KindTest) {
		lists = append(lists, TestList(c.Tests()))
	}
	if c.Has(report.KindCoverage) {
		lists = append(lists, CoverageList(c.Coverages()))
	}
	if c.Has(report.KindMutationTest) {
		lists = append(lists, MutationTestList(c.MutationTests()))
	}
	return lists
}

// Breakdown is the per-severity and per-outcome view of a container, built
// by pushing its record lists through one qualifier per family.
type Breakdown struct {
	CodeViolations   *ViolationQualifier `json:"code_violations"`
	RecipeViolations *ViolationQualifier `json:"recipe_violations"`
	Tests            *TestQualifier      `json:"tests"`
	Coverage         *CoverageQualifier  `json:"coverage"`
	MutationTests    *MutationQualifier  `json:"mutation_tests"`
}

// NewBreakdown dispatches the record lists of c to a fresh set of qualifiers.
func NewBreakdown(criteria Criteria, c report.Container) *Breakdown {
	b := &Breakdown{
		CodeViolations:   NewCodeViolationQualifier(criteria),
		RecipeViolations: NewRecipeViolationQualifier(criteria),
		Tests:            NewTestQualifier(criteria),
		Coverage:         NewCoverageQualifier(criteria),
		MutationTests:    NewMutationQualifier(criteria),
	}
	lists := Lists(c)
	for _, q := range b.Qualifiers() {
		Dispatch(q, lists...)
	}
	return b
}

// Qualifiers returns the breakdown's qualifiers in a fixed order.
func (b *Breakdown) Qualifiers() []Qualifier {
	return []Qualifier{b.CodeViolations, b.RecipeViolations, b.Tests, b.Coverage, b.MutationTests}
}
