package surface_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/recipescope/recipescope/pkg/metrics"
	"github.com/recipescope/recipescope/pkg/report"
	"github.com/recipescope/recipescope/pkg/surface"
)

func TestBuildCheckRunData(t *testing.T) {
	unstable := metrics.DefaultCriteria().With(metrics.CategoryTests, metrics.Threshold{Value: 0.95, MarkUnstable: true})
	lenient := metrics.DefaultCriteria()
	lenient.Overall = 0.5

	tests := []struct {
		name       string
		criteria   metrics.Criteria
		conclusion string
		title      string
	}{
		{"unqualified but stable", metrics.DefaultCriteria(), "neutral", "Recipescope: UNQUALIFIED (5/9 categories qualified)"},
		{"unstable", unstable, "failure", "Recipescope: UNQUALIFIED (5/9 categories qualified)"},
		{"qualified", lenient, "success", "Recipescope: QUALIFIED (5/9 categories qualified)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := (&surface.CheckRunRenderer{}).BuildCheckRunData(evaluate(t, tc.criteria))
			if data.Conclusion != tc.conclusion {
				t.Errorf("Conclusion = %q, want %q", data.Conclusion, tc.conclusion)
			}
			if data.Title != tc.title {
				t.Errorf("Title = %q, want %q", data.Title, tc.title)
			}
		})
	}
}

func TestBuildCheckRunData_NoData(t *testing.T) {
	result, err := metrics.NewEngine(metrics.DefaultCriteria()).Evaluate(report.NewReport("empty", ""))
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	data := (&surface.CheckRunRenderer{}).BuildCheckRunData(result)
	if data.Conclusion != "neutral" {
		t.Errorf("Conclusion = %q, want neutral", data.Conclusion)
	}
	if strings.Contains(data.Summary, "### Breakdown") || strings.Contains(data.Summary, "### Unqualified recipes") {
		t.Errorf("empty report summary should only hold the category table:\n%s", data.Summary)
	}
}

func TestCheckRunSummary(t *testing.T) {
	data := (&surface.CheckRunRenderer{}).BuildCheckRunData(evaluate(t, metrics.DefaultCriteria()))

	for _, want := range []string{
		"Project `meta-demo`, build `42`.",
		"| :x: | Tests | 75.0% | 3/4 | >= 95.0% |",
		"| :white_check_mark: | Code violations | 2.0% | 2/100 | <= 10.0% |",
		"- **Tests**: 3 passed, 1 failed, 0 skipped",
		"- **Tests**: `libbar`",
		"- **Cache hit rate**: `libfoo`, `zlib-native`",
	} {
		if !strings.Contains(data.Summary, want) {
			t.Errorf("summary missing %q:\n%s", want, data.Summary)
		}
	}
	if strings.Contains(data.Summary, "unstable") {
		t.Error("stable build should not carry the unstable warning")
	}
}

func TestCheckRunRenderer_Render(t *testing.T) {
	var buf bytes.Buffer
	if err := (&surface.CheckRunRenderer{}).Render(&buf, evaluate(t, metrics.DefaultCriteria())); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	var data surface.CheckRunData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if data.Conclusion != "neutral" || data.Summary == "" {
		t.Errorf("unexpected check run data %+v", data)
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := (&surface.JSONRenderer{}).Render(&buf, evaluate(t, metrics.DefaultCriteria())); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	var got struct {
		Project   string `json:"project"`
		Qualified bool   `json:"qualified"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Project != "meta-demo" || got.Qualified {
		t.Errorf("unexpected JSON result %+v", got)
	}
}
