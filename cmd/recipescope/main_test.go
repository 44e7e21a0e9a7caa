package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/recipescope/recipescope/pkg/config"
)

const fixture = "../../testdata/report_small.json"

func TestEvaluateCmdFlags(t *testing.T) {
	cmd := newEvaluateCmd()
	f := cmd.Flags()

	outputFmt, _ := f.GetString("output")
	if outputFmt != "text" {
		t.Errorf("default output = %q, want text", outputFmt)
	}

	for _, flag := range []string{"report", "config", "output", "recipes", "fail-unstable", "no-save"} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestRecipesCmdFlags(t *testing.T) {
	f := newRecipesCmd().Flags()
	for _, flag := range []string{"report", "config", "category", "qualified", "unqualified"} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestUploadCmdFlags(t *testing.T) {
	f := newUploadCmd().Flags()

	timeout, _ := f.GetDuration("timeout")
	if timeout != time.Minute {
		t.Errorf("default timeout = %v, want 1m", timeout)
	}
	for _, flag := range []string{"report", "server", "api-key", "github-installation", "github-owner", "github-repo", "github-sha"} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		vals []string
		want string
	}{
		{[]string{"a", "b"}, "a"},
		{[]string{"", "b"}, "b"},
		{[]string{"", ""}, ""},
		{nil, ""},
	}
	for _, tc := range tests {
		if got := firstNonEmpty(tc.vals...); got != tc.want {
			t.Errorf("firstNonEmpty(%v) = %q, want %q", tc.vals, got, tc.want)
		}
	}
}

func TestRendererFor(t *testing.T) {
	for _, format := range []string{"", "text", "json", "checkrun"} {
		if _, err := rendererFor(format, false); err != nil {
			t.Errorf("rendererFor(%q): %v", format, err)
		}
	}
	if _, err := rendererFor("yaml", false); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRunEvaluate_JSON(t *testing.T) {
	var out bytes.Buffer
	err := runEvaluate(&out, evaluateOpts{reportPath: fixture, outputFmt: "json", noSave: true})
	if err != nil {
		t.Fatalf("runEvaluate: %v", err)
	}

	var result struct {
		Project   string `json:"project"`
		Qualified bool   `json:"qualified"`
		Metrics   struct {
			Denominator int `json:"denominator"`
			Numerator   int `json:"numerator"`
		} `json:"metrics"`
	}
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Project != "meta-demo" || result.Qualified || result.Metrics.Denominator != 9 || result.Metrics.Numerator != 5 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestRunEvaluate_FailUnstable(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfgYAML := "criteria:\n  tests:\n    threshold: 0.95\n    mark_unstable: true\n"
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := evaluateOpts{reportPath: fixture, configPath: cfgPath, outputFmt: "json", noSave: true}
	if err := runEvaluate(&bytes.Buffer{}, opts); err != nil {
		t.Fatalf("without --fail-unstable: %v", err)
	}

	opts.failUnstable = true
	if err := runEvaluate(&bytes.Buffer{}, opts); !errors.Is(err, errUnstable) {
		t.Errorf("err = %v, want errUnstable", err)
	}
}

func TestRunEvaluate_MissingReport(t *testing.T) {
	err := runEvaluate(&bytes.Buffer{}, evaluateOpts{reportPath: "does-not-exist.json", noSave: true})
	if err == nil || !strings.Contains(err.Error(), "loading report") {
		t.Errorf("err = %v, want loading report error", err)
	}
}

func TestSaveResultAndHistory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := runEvaluate(&bytes.Buffer{}, evaluateOpts{reportPath: fixture, outputFmt: "json"}); err != nil {
		t.Fatalf("runEvaluate: %v", err)
	}

	entries, err := loadHistory(config.ResultDir("meta-demo"))
	if err != nil {
		t.Fatalf("loadHistory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.ReportID != "7d0c3a52-2f7e-4d0b-9b8e-1b7a1c0de001" || e.Build != "42" || e.Metrics.Denominator != 9 || e.EvaluatedAt == "" {
		t.Errorf("unexpected entry %+v", e)
	}

	var out bytes.Buffer
	if err := runHistory(&out, config.ResultDir("meta-demo"), 10); err != nil {
		t.Fatalf("runHistory: %v", err)
	}
	if !strings.Contains(out.String(), "unqualified") || !strings.Contains(out.String(), "5/9") {
		t.Errorf("history output:\n%s", out.String())
	}
}

func TestRunHistory_Empty(t *testing.T) {
	var out bytes.Buffer
	if err := runHistory(&out, filepath.Join(t.TempDir(), "none"), 10); err != nil {
		t.Fatalf("runHistory: %v", err)
	}
	if !strings.HasPrefix(out.String(), "No saved results") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunRecipes(t *testing.T) {
	tests := []struct {
		name string
		opts recipesOpts
		want string
	}{
		{"all", recipesOpts{}, "libbar\nlibfoo\nzlib-native\n"},
		{"unqualified tests", recipesOpts{category: "tests", unqualified: true}, "libbar\n"},
		{"qualified tests", recipesOpts{category: "tests", qualified: true}, "libfoo\n"},
		{"mutation data", recipesOpts{category: "mutation_tests"}, "libbar\n"},
		{"qualified overall", recipesOpts{qualified: true}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.opts.reportPath = fixture
			var out bytes.Buffer
			if err := runRecipes(&out, tc.opts); err != nil {
				t.Fatalf("runRecipes: %v", err)
			}
			if out.String() != tc.want {
				t.Errorf("output = %q, want %q", out.String(), tc.want)
			}
		})
	}

	if err := runRecipes(&bytes.Buffer{}, recipesOpts{reportPath: fixture, category: "bogus"}); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestRunStats_JSON(t *testing.T) {
	var out bytes.Buffer
	if err := runStats(&out, fixture, "", "json"); err != nil {
		t.Fatalf("runStats: %v", err)
	}
	var got struct {
		Counts struct {
			Recipes int `json:"recipes"`
			Tested  int `json:"tested"`
		} `json:"counts"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Counts.Recipes != 3 || got.Counts.Tested != 2 {
		t.Errorf("counts = %+v", got.Counts)
	}
}

func TestRunUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/reports" || r.Header.Get("X-API-Key") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var req uploadRequest
		if err := json.NewDecoder(gz).Decode(&req); err != nil || req.Report == nil || req.GitHub == nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"report_id": req.Report.ID, "evaluation_id": "e1",
			"qualified": false, "stable": true, "available": 9, "qualifying": 5,
		})
	}))
	defer srv.Close()

	opts := uploadOpts{reportPath: fixture, server: srv.URL + "/", apiKey: "k", timeout: 5 * time.Second}
	opts.target.InstallationID = 7
	opts.target.Owner = "acme"
	opts.target.Repo = "meta-demo"
	opts.target.HeadSHA = "abc123"

	var out bytes.Buffer
	if err := runUpload(context.Background(), &out, opts); err != nil {
		t.Fatalf("runUpload: %v", err)
	}
	if !strings.Contains(out.String(), "UNQUALIFIED (5/9 categories qualified)") {
		t.Errorf("output = %q", out.String())
	}

	opts.apiKey = "wrong"
	if err := runUpload(context.Background(), &out, opts); err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("err = %v, want 401", err)
	}
}

func TestRunUpload_Validation(t *testing.T) {
	t.Setenv("RECIPESCOPE_API_KEY", "")
	if err := runUpload(context.Background(), &bytes.Buffer{}, uploadOpts{reportPath: fixture, timeout: time.Second}); err == nil {
		t.Error("expected error without a server")
	}

	opts := uploadOpts{reportPath: fixture, server: "http://127.0.0.1:1", timeout: time.Second}
	opts.target.Owner = "acme"
	if err := runUpload(context.Background(), &bytes.Buffer{}, opts); err == nil || !strings.Contains(err.Error(), "installation_id") {
		t.Errorf("err = %v, want incomplete target error", err)
	}
}
