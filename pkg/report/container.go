package report

// Container is a queryable collection of records for one recipe or for a
// whole project. Has reports whether a kind's report was present at all,
// which is different from the kind having records: a present kind may be
// empty. Accessors return finite slices that callers must not modify.
type Container interface {
	Has(kind Kind) bool

	PremirrorCaches() []PremirrorCache
	SharedStateCaches() []SharedStateCache
	CodeViolations() []CodeViolation
	CodeSizes() []CodeSize
	RecipeViolations() []RecipeViolation
	RecipeSizes() []RecipeSize
	Comments() []Comment
	Complexities() []Complexity
	Coverages() []Coverage
	Duplications() []Duplication
	MutationTests() []MutationTest
	Tests() []Test
}

// Recipe holds the records of one recipe. A nil slice means the kind's
// report is missing; an empty non-nil slice means it was present but empty.
// JSON keeps that distinction: absent or null decodes to nil, [] to empty.
type Recipe struct {
	Name string `json:"name"`

	PremirrorCache   []PremirrorCache   `json:"premirror_cache"`
	SharedStateCache []SharedStateCache `json:"shared_state_cache"`
	CodeViolation    []CodeViolation    `json:"code_violation"`
	CodeSize         []CodeSize         `json:"code_size"`
	RecipeViolation  []RecipeViolation  `json:"recipe_violation"`
	RecipeSize       []RecipeSize       `json:"recipe_size"`
	Comment          []Comment          `json:"comment"`
	Complexity       []Complexity       `json:"complexity"`
	Coverage         []Coverage         `json:"coverage"`
	Duplication      []Duplication      `json:"duplication"`
	MutationTest     []MutationTest     `json:"mutation_test"`
	Test             []Test             `json:"test"`
}

var _ Container = (*Recipe)(nil)

// Has implements Container.
func (r *Recipe) Has(kind Kind) bool {
	switch kind {
	case KindPremirrorCache:
		return r.PremirrorCache != nil
	case KindSharedStateCache:
		return r.SharedStateCache != nil
	case KindCodeViolation:
		return r.CodeViolation != nil
	case KindCodeSize:
		return r.CodeSize != nil
	case KindRecipeViolation:
		return r.RecipeViolation != nil
	case KindRecipeSize:
		return r.RecipeSize != nil
	case KindComment:
		return r.Comment != nil
	case KindComplexity:
		return r.Complexity != nil
	case KindCoverage:
		return r.Coverage != nil
	case KindDuplication:
		return r.Duplication != nil
	case KindMutationTest:
		return r.MutationTest != nil
	case KindTest:
		return r.Test != nil
	default:
		return false
	}
}

func (r *Recipe) PremirrorCaches() []PremirrorCache     { return r.PremirrorCache }
func (r *Recipe) SharedStateCaches() []SharedStateCache { return r.SharedStateCache }
func (r *Recipe) CodeViolations() []CodeViolation       { return r.CodeViolation }
func (r *Recipe) CodeSizes() []CodeSize                 { return r.CodeSize }
func (r *Recipe) RecipeViolations() []RecipeViolation   { return r.RecipeViolation }
func (r *Recipe) RecipeSizes() []RecipeSize             { return r.RecipeSize }
func (r *Recipe) Comments() []Comment                   { return r.Comment }
func (r *Recipe) Complexities() []Complexity            { return r.Complexity }
func (r *Recipe) Coverages() []Coverage                 { return r.Coverage }
func (r *Recipe) Duplications() []Duplication           { return r.Duplication }
func (r *Recipe) MutationTests() []MutationTest         { return r.MutationTest }
func (r *Recipe) Tests() []Test                         { return r.Test }

// Merge combines several containers into one project-level container.
// A kind is present when any input has it; records are concatenated in
// input order. Inputs are copied, so the result does not alias them.
func Merge(containers ...Container) *Recipe {
	merged := &Recipe{}
	for _, c := range containers {
		if c == nil {
			continue
		}
		if c.Has(KindPremirrorCache) {
			merged.PremirrorCache = append(nonNil(merged.PremirrorCache), c.PremirrorCaches()...)
		}
		if c.Has(KindSharedStateCache) {
			merged.SharedStateCache = append(nonNil(merged.SharedStateCache), c.SharedStateCaches()...)
		}
		if c.Has(KindCodeViolation) {
			merged.CodeViolation = append(nonNil(merged.CodeViolation), c.CodeViolations()...)
		}
		if c.Has(KindCodeSize) {
			merged.CodeSize = append(nonNil(merged.CodeSize), c.CodeSizes()...)
		}
		if c.Has(KindRecipeViolation) {
			merged.RecipeViolation = append(nonNil(merged.RecipeViolation), c.RecipeViolations()...)
		}
		if c.Has(KindRecipeSize) {
			merged.RecipeSize = append(nonNil(merged.RecipeSize), c.RecipeSizes()...)
		}
		if c.Has(KindComment) {
			merged.Comment = append(nonNil(merged.Comment), c.Comments()...)
		}
		if c.Has(KindComplexity) {
			merged.Complexity = append(nonNil(merged.Complexity), c.Complexities()...)
		}
		if c.Has(KindCoverage) {
			merged.Coverage = append(nonNil(merged.Coverage), c.Coverages()...)
		}
		if c.Has(KindDuplication) {
			merged.Duplication = append(nonNil(merged.Duplication), c.Duplications()...)
		}
		if c.Has(KindMutationTest) {
			merged.MutationTest = append(nonNil(merged.MutationTest), c.MutationTests()...)
		}
		if c.Has(KindTest) {
			merged.Test = append(nonNil(merged.Test), c.Tests()...)
		}
	}
	return merged
}

// nonNil turns a nil slice into an empty one so that appending zero records
// still marks the kind as present.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
