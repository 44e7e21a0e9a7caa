package report_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/recipescope/recipescope/pkg/report"
)

func TestLoadReport_Testdata(t *testing.T) {
	rep, err := report.LoadReport("../../testdata/report_small.json")
	if err != nil {
		t.Fatalf("LoadReport: %v", err)
	}
	if rep.Project != "meta-demo" {
		t.Errorf("Project = %q, want meta-demo", rep.Project)
	}

	names := rep.Names()
	want := []string{"libbar", "libfoo", "zlib-native"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Names() = %v, want %v", names, want)
	}

	bar := rep.Recipe("libbar")
	if bar == nil {
		t.Fatal("expected libbar recipe")
	}
	if bar.Has(report.KindCoverage) {
		t.Error("libbar has no coverage report")
	}
	if !bar.Has(report.KindMutationTest) {
		t.Error("libbar has a mutation report")
	}
	if rep.Recipe("missing") != nil {
		t.Error("expected nil for unknown recipe")
	}
}

func TestSaveLoadRoundTrip_PreservesPresence(t *testing.T) {
	rep := report.NewReport("proj", "7")
	rep.Recipes = []*report.Recipe{
		{Name: "a", Test: []report.Test{}},
		{Name: "b"},
	}

	path := filepath.Join(t.TempDir(), "out", "report.json")
	if err := report.SaveReport(path, rep); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	loaded, err := report.LoadReport(path)
	if err != nil {
		t.Fatalf("LoadReport: %v", err)
	}
	if loaded.ID != rep.ID {
		t.Errorf("ID = %q, want %q", loaded.ID, rep.ID)
	}
	if !loaded.Recipe("a").Has(report.KindTest) {
		t.Error("empty test list must stay present after round trip")
	}
	if loaded.Recipe("b").Has(report.KindTest) {
		t.Error("missing test list must stay missing after round trip")
	}
}

func TestDecodeReport_NullMeansMissing(t *testing.T) {
	in := `{"project":"p","recipes":[{"name":"r","test":null,"coverage":[]}]}`
	rep, err := report.DecodeReport(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeReport: %v", err)
	}
	r := rep.Recipe("r")
	if r.Has(report.KindTest) {
		t.Error("null test list should be missing")
	}
	if !r.Has(report.KindCoverage) {
		t.Error("empty coverage list should be present")
	}
}

func TestMerge(t *testing.T) {
	a := &report.Recipe{
		Name:    "a",
		Comment: []report.Comment{{Recipe: "a", File: "a.c", Lines: 10, CommentLines: 1}},
		Test:    []report.Test{},
	}
	b := &report.Recipe{
		Name:    "b",
		Comment: []report.Comment{{Recipe: "b", File: "b.c", Lines: 5, CommentLines: 2}},
	}

	merged := report.Merge(a, b)
	if got := len(merged.Comments()); got != 2 {
		t.Fatalf("merged comments = %d, want 2", got)
	}
	if merged.Comments()[0].Recipe != "a" || merged.Comments()[1].Recipe != "b" {
		t.Error("merge must keep input order")
	}
	if !merged.Has(report.KindTest) {
		t.Error("test kind present in one input should be present in the merge")
	}
	if merged.Has(report.KindCoverage) {
		t.Error("coverage absent everywhere should be absent in the merge")
	}

	// The merge must not alias its inputs.
	merged.Comment[0].Lines = 99
	if a.Comment[0].Lines != 10 {
		t.Error("merge aliased the input slice")
	}
}

func TestMerge_Empty(t *testing.T) {
	merged := report.Merge()
	for _, k := range report.Kinds() {
		if merged.Has(k) {
			t.Errorf("empty merge has %s", k)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		recipes []*report.Recipe
		wantErr string
	}{
		{
			name:    "valid",
			recipes: []*report.Recipe{{Name: "a", Test: []report.Test{{Name: "t", Status: report.TestPassed}}}},
		},
		{
			name:    "empty name",
			recipes: []*report.Recipe{{}},
			wantErr: "name is required",
		},
		{
			name:    "duplicate name",
			recipes: []*report.Recipe{{Name: "a"}, {Name: "a"}},
			wantErr: "duplicate name",
		},
		{
			name: "foreign record",
			recipes: []*report.Recipe{{Name: "a", Comment: []report.Comment{
				{Recipe: "b", File: "x.c", Lines: 1},
			}}},
			wantErr: `belongs to recipe "b"`,
		},
		{
			name: "bad severity",
			recipes: []*report.Recipe{{Name: "a", CodeViolation: []report.CodeViolation{
				{File: "x.c", Severity: "blocker"},
			}}},
			wantErr: `unknown severity "blocker"`,
		},
		{
			name: "negative size",
			recipes: []*report.Recipe{{Name: "a", RecipeSize: []report.RecipeSize{
				{File: "a.bb", Lines: -1},
			}}},
			wantErr: "negative line count",
		},
		{
			name: "inverted span",
			recipes: []*report.Recipe{{Name: "a", Duplication: []report.Duplication{
				{File: "x.c", Start: 9, End: 3},
			}}},
			wantErr: "inverted",
		},
		{
			name: "negative span start",
			recipes: []*report.Recipe{{Name: "a", Duplication: []report.Duplication{
				{File: "x.c", Start: -4, End: 3},
			}}},
			wantErr: "negative start -4",
		},
		{
			name:    "id with separator",
			id:      "a/b",
			recipes: []*report.Recipe{{Name: "a"}},
			wantErr: `id "a/b" must be a single path segment`,
		},
		{
			name:    "dot-dot id",
			id:      "..",
			recipes: []*report.Recipe{{Name: "a"}},
			wantErr: "single path segment",
		},
		{
			name:    "plain id",
			id:      "7d0c3a52-2f7e-4d0b-9b8e-1b7a1c0de001",
			recipes: []*report.Recipe{{Name: "a"}},
		},
		{
			name: "bad coverage type",
			recipes: []*report.Recipe{{Name: "a", Coverage: []report.Coverage{
				{File: "x.c", Type: "line"},
			}}},
			wantErr: `unknown coverage type "line"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rep := &report.Report{ID: tc.id, Project: "p", Recipes: tc.recipes}
			err := rep.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	rep := &report.Report{Recipes: []*report.Recipe{{Name: "a", Test: []report.Test{
		{Name: "x", Status: "flaky"},
		{Name: "y", Status: "broken"},
	}}}}
	err := rep.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		t.Fatalf("expected joined error, got %T", err)
	}
	// project missing + two bad statuses
	if got := len(joined.Unwrap()); got != 3 {
		t.Errorf("collected %d errors, want 3: %v", got, err)
	}
}
