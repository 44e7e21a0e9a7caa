package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recipescope/recipescope/pkg/config"
)

func newHistoryCmd() *cobra.Command {
	var (
		project string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List results saved by previous evaluate runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.OutOrStdout(), config.ResultDir(project), limit)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project name (required)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results to show")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

// historyEntry is the subset of a saved result shown in the listing.
type historyEntry struct {
	ReportID    string `json:"report_id"`
	Build       string `json:"build"`
	Qualified   bool   `json:"qualified"`
	Stable      bool   `json:"stable"`
	EvaluatedAt string `json:"evaluated_at"`
	Metrics     struct {
		Denominator int `json:"denominator"`
		Numerator   int `json:"numerator"`
	} `json:"metrics"`
}

func loadHistory(dir string) ([]historyEntry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading results dir: %w", err)
	}

	var entries []historyEntry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, f.Name()))
		if err != nil {
			continue
		}
		var e historyEntry
		if err := json.Unmarshal(data, &e); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", f.Name(), err)
			continue
		}
		entries = append(entries, e)
	}

	// Newest first; RFC 3339 UTC timestamps sort lexically.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EvaluatedAt > entries[j].EvaluatedAt
	})
	return entries, nil
}

func runHistory(w io.Writer, dir string, limit int) error {
	entries, err := loadHistory(dir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(w, "No saved results in %s\n", dir)
		return nil
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	fmt.Fprintf(w, "%-20s  %-12s  %-38s  %-11s  %s\n", "EVALUATED", "BUILD", "REPORT", "VERDICT", "CATEGORIES")
	for _, e := range entries {
		verdict := "unqualified"
		switch {
		case e.Metrics.Denominator == 0:
			verdict = "no data"
		case e.Qualified:
			verdict = "qualified"
		}
		if !e.Stable {
			verdict += "*"
		}
		fmt.Fprintf(w, "%-20s  %-12s  %-38s  %-11s  %d/%d\n",
			e.EvaluatedAt, firstNonEmpty(e.Build, "-"), e.ReportID, verdict, e.Metrics.Numerator, e.Metrics.Denominator)
	}
	return nil
}
