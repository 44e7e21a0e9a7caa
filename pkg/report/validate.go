package report

import (
	"errors"
	"fmt"
	"strings"
)

// Validate rejects malformed reports before they reach the evaluators.
// All problems are collected and returned together.
func (r *Report) Validate() error {
	var errs []error
	if r.Project == "" {
		errs = append(errs, errors.New("project is required"))
	}
	// An empty ID is assigned on ingest; a given one names the stored blob.
	if r.ID != "" && (r.ID == "." || r.ID == ".." || strings.ContainsAny(r.ID, `/\`)) {
		errs = append(errs, fmt.Errorf("id %q must be a single path segment", r.ID))
	}

	seen := make(map[string]bool, len(r.Recipes))
	for i, rec := range r.Recipes {
		if rec == nil {
			errs = append(errs, fmt.Errorf("recipe #%d: null entry", i))
			continue
		}
		if rec.Name == "" {
			errs = append(errs, fmt.Errorf("recipe #%d: name is required", i))
			continue
		}
		if seen[rec.Name] {
			errs = append(errs, fmt.Errorf("recipe %q: duplicate name", rec.Name))
			continue
		}
		seen[rec.Name] = true
		errs = append(errs, rec.validate()...)
	}
	return errors.Join(errs...)
}

func (rec *Recipe) validate() []error {
	var errs []error
	fail := func(kind Kind, i int, format string, args ...any) {
		errs = append(errs, fmt.Errorf("recipe %q: %s #%d: %s", rec.Name, kind, i, fmt.Sprintf(format, args...)))
	}
	owner := func(kind Kind, i int, recipe string) {
		if recipe != "" && recipe != rec.Name {
			fail(kind, i, "belongs to recipe %q", recipe)
		}
	}

	for i, c := range rec.PremirrorCache {
		owner(KindPremirrorCache, i, c.Recipe)
	}
	for i, c := range rec.SharedStateCache {
		owner(KindSharedStateCache, i, c.Recipe)
		if c.Signature == "" {
			fail(KindSharedStateCache, i, "signature is required")
		}
	}
	for i, v := range rec.CodeViolation {
		owner(KindCodeViolation, i, v.Recipe)
		if !validSeverity(v.Severity) {
			fail(KindCodeViolation, i, "unknown severity %q", v.Severity)
		}
	}
	for i, s := range rec.CodeSize {
		owner(KindCodeSize, i, s.Recipe)
		if s.Lines < 0 {
			fail(KindCodeSize, i, "negative line count %d", s.Lines)
		}
	}
	for i, v := range rec.RecipeViolation {
		owner(KindRecipeViolation, i, v.Recipe)
		if !validSeverity(v.Severity) {
			fail(KindRecipeViolation, i, "unknown severity %q", v.Severity)
		}
	}
	for i, s := range rec.RecipeSize {
		owner(KindRecipeSize, i, s.Recipe)
		if s.Lines < 0 {
			fail(KindRecipeSize, i, "negative line count %d", s.Lines)
		}
	}
	for i, c := range rec.Comment {
		owner(KindComment, i, c.Recipe)
		if c.Lines < 0 || c.CommentLines < 0 {
			fail(KindComment, i, "negative line count")
		}
	}
	for i, c := range rec.Complexity {
		owner(KindComplexity, i, c.Recipe)
		if c.Start < 0 || c.End < c.Start {
			fail(KindComplexity, i, "span %d-%d is inverted", c.Start, c.End)
		}
	}
	for i, c := range rec.Coverage {
		owner(KindCoverage, i, c.Recipe)
		if c.Type != CoverageStatement && c.Type != CoverageBranch {
			fail(KindCoverage, i, "unknown coverage type %q", c.Type)
		}
	}
	for i, d := range rec.Duplication {
		owner(KindDuplication, i, d.Recipe)
		if d.Start < 0 {
			fail(KindDuplication, i, "negative start %d", d.Start)
		}
		if d.End < d.Start {
			fail(KindDuplication, i, "span %d-%d is inverted", d.Start, d.End)
		}
	}
	for i, m := range rec.MutationTest {
		owner(KindMutationTest, i, m.Recipe)
		switch m.Status {
		case MutationKilled, MutationSurvived, MutationSkipped:
		default:
			fail(KindMutationTest, i, "unknown status %q", m.Status)
		}
	}
	for i, t := range rec.Test {
		owner(KindTest, i, t.Recipe)
		switch t.Status {
		case TestPassed, TestFailed, TestSkipped:
		default:
			fail(KindTest, i, "unknown status %q", t.Status)
		}
	}
	return errs
}

func validSeverity(s Severity) bool {
	switch s {
	case SeverityMajor, SeverityMinor, SeverityInfo:
		return true
	}
	return false
}
