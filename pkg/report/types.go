// Package report defines the raw measurement records produced by the report
// parsers and the Container abstraction the metrics evaluators read from.
// Records are immutable once created; evaluators never mutate them.
package report

// Kind identifies one family of raw records in a report.
type Kind string

const (
	KindPremirrorCache   Kind = "premirror_cache"
	KindSharedStateCache Kind = "shared_state_cache"
	KindCodeViolation    Kind = "code_violation"
	KindCodeSize         Kind = "code_size"
	KindRecipeViolation  Kind = "recipe_violation"
	KindRecipeSize       Kind = "recipe_size"
	KindComment          Kind = "comment"
	KindComplexity       Kind = "complexity"
	KindCoverage         Kind = "coverage"
	KindDuplication      Kind = "duplication"
	KindMutationTest     Kind = "mutation_test"
	KindTest             Kind = "test"
)

// Kinds returns every record kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindPremirrorCache,
		KindSharedStateCache,
		KindCodeViolation,
		KindCodeSize,
		KindRecipeViolation,
		KindRecipeSize,
		KindComment,
		KindComplexity,
		KindCoverage,
		KindDuplication,
		KindMutationTest,
		KindTest,
	}
}

// Severity grades a code or recipe violation.
type Severity string

const (
	SeverityMajor Severity = "major"
	SeverityMinor Severity = "minor"
	SeverityInfo  Severity = "info"
)

// CoverageType distinguishes statement from branch coverage lines.
type CoverageType string

const (
	CoverageStatement CoverageType = "statement"
	CoverageBranch    CoverageType = "branch"
)

// MutationStatus is the outcome of a single mutant.
type MutationStatus string

const (
	MutationKilled   MutationStatus = "killed"
	MutationSurvived MutationStatus = "survived"
	MutationSkipped  MutationStatus = "skipped"
)

// TestStatus is the outcome of a single test case.
type TestStatus string

const (
	TestPassed  TestStatus = "passed"
	TestFailed  TestStatus = "failed"
	TestSkipped TestStatus = "skipped"
)

// PremirrorCache is one source lookup against the download premirror.
type PremirrorCache struct {
	Recipe string `json:"recipe"`
	URL    string `json:"url"`
	Found  bool   `json:"found"`
}

// SharedStateCache is one lookup against the shared-state cache.
// Signature identifies the cached object across recipes.
type SharedStateCache struct {
	Recipe    string `json:"recipe"`
	Signature string `json:"signature"`
	Task      string `json:"task,omitempty"`
	Found     bool   `json:"found"`
}

// CodeViolation is a static-analysis finding in recipe source code.
type CodeViolation struct {
	Recipe   string   `json:"recipe"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Rule     string   `json:"rule,omitempty"`
	Severity Severity `json:"severity"`
}

// CodeSize describes the size of one source file.
type CodeSize struct {
	Recipe    string `json:"recipe"`
	File      string `json:"file"`
	Lines     int    `json:"lines"`
	Functions int    `json:"functions,omitempty"`
	Classes   int    `json:"classes,omitempty"`
}

// RecipeViolation is a lint finding in the recipe metadata itself.
type RecipeViolation struct {
	Recipe   string   `json:"recipe"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Rule     string   `json:"rule,omitempty"`
	Severity Severity `json:"severity"`
}

// RecipeSize describes the size of one recipe metadata file.
type RecipeSize struct {
	Recipe string `json:"recipe"`
	File   string `json:"file"`
	Lines  int    `json:"lines"`
}

// Comment holds the comment line count of one source file.
type Comment struct {
	Recipe       string `json:"recipe"`
	File         string `json:"file"`
	Lines        int    `json:"lines"`
	CommentLines int    `json:"comment_lines"`
}

// Complexity is the cyclomatic complexity of one function.
type Complexity struct {
	Recipe   string `json:"recipe"`
	File     string `json:"file"`
	Function string `json:"function"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Value    int    `json:"value"`
}

// ComplexityKey identifies a measured function independent of its value.
type ComplexityKey struct {
	File     string
	Function string
	Start    int
	End      int
}

// Key returns the identity of the measured function, so the same function
// submitted twice collapses to one entry.
func (c Complexity) Key() ComplexityKey {
	return ComplexityKey{File: c.File, Function: c.Function, Start: c.Start, End: c.End}
}

// Coverage is one statement or branch coverage point.
type Coverage struct {
	Recipe  string       `json:"recipe"`
	File    string       `json:"file"`
	Line    int          `json:"line"`
	Type    CoverageType `json:"type"`
	Index   int          `json:"index,omitempty"` // branch index on the line
	Covered bool         `json:"covered"`
}

// Duplication marks a span of duplicated lines in a file.
type Duplication struct {
	Recipe string `json:"recipe"`
	File   string `json:"file"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// MutationTest is the result of one mutant.
type MutationTest struct {
	Recipe  string         `json:"recipe"`
	File    string         `json:"file"`
	Line    int            `json:"line"`
	Mutator string         `json:"mutator,omitempty"`
	Status  MutationStatus `json:"status"`
}

// Test is the result of one test case.
type Test struct {
	Recipe string     `json:"recipe"`
	Suite  string     `json:"suite,omitempty"`
	Name   string     `json:"name"`
	Status TestStatus `json:"status"`
}
