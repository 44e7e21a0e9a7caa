package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recipescope/recipescope/pkg/metrics"
	"github.com/recipescope/recipescope/pkg/surface"
)

func newStatsCmd() *cobra.Command {
	var (
		reportPath string
		configPath string
		outputFmt  string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-category statistics across recipes",
		Long:  `Prints, for every category, how many recipes have data and qualify, and the min, max and average ratio.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.OutOrStdout(), reportPath, configPath, outputFmt)
		},
	}

	cmd.Flags().StringVar(&reportPath, "report", "", "Path to the report JSON (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config.yaml")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("report")

	return cmd
}

func runStats(w io.Writer, reportPath, configPath, outputFmt string) error {
	rep, cfg, err := loadInputs(reportPath, configPath)
	if err != nil {
		return err
	}

	criteria := cfg.MetricsCriteria()
	recipes := rep.Containers()
	stats := metrics.NewMetricStatistics(criteria)
	stats.Parse(recipes)
	counts := metrics.NewQualifiedRecipeCounter(criteria)
	counts.Parse(recipes)

	switch outputFmt {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Statistics *metrics.MetricStatistics       `json:"statistics"`
			Counts     *metrics.QualifiedRecipeCounter `json:"counts"`
		}{stats, counts})
	case "text", "":
		surface.RenderStatistics(w, stats, counts)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", outputFmt)
	}
}

func newRecipesCmd() *cobra.Command {
	var (
		reportPath  string
		configPath  string
		category    string
		qualified   bool
		unqualified bool
	)

	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List recipes, optionally filtered by category and verdict",
		Long: `Lists recipe names. With --category, only recipes where that category has
data are listed; --qualified and --unqualified filter by verdict.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipes(cmd.OutOrStdout(), recipesOpts{
				reportPath:  reportPath,
				configPath:  configPath,
				category:    category,
				qualified:   qualified,
				unqualified: unqualified,
			})
		},
	}

	cmd.Flags().StringVar(&reportPath, "report", "", "Path to the report JSON (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config.yaml")
	cmd.Flags().StringVar(&category, "category", "", "Category: "+categoryList())
	cmd.Flags().BoolVar(&qualified, "qualified", false, "Only qualified recipes")
	cmd.Flags().BoolVar(&unqualified, "unqualified", false, "Only unqualified recipes")
	cmd.MarkFlagsMutuallyExclusive("qualified", "unqualified")
	_ = cmd.MarkFlagRequired("report")

	return cmd
}

type recipesOpts struct {
	reportPath  string
	configPath  string
	category    string
	qualified   bool
	unqualified bool
}

func runRecipes(w io.Writer, opts recipesOpts) error {
	var cat metrics.Category
	if opts.category != "" {
		c, ok := metrics.ParseCategory(opts.category)
		if !ok {
			return fmt.Errorf("unknown category %q (want one of %s)", opts.category, categoryList())
		}
		cat = c
	}

	rep, cfg, err := loadInputs(opts.reportPath, opts.configPath)
	if err != nil {
		return err
	}

	var verdict *bool
	switch {
	case opts.qualified:
		verdict = &opts.qualified
	case opts.unqualified:
		v := false
		verdict = &v
	}

	for _, name := range metrics.NewQualifiedRecipes(rep.Containers(), cfg.MetricsCriteria()).Select(cat, verdict) {
		fmt.Fprintln(w, name)
	}
	return nil
}

func categoryList() string {
	names := make([]string, 0, len(metrics.Categories()))
	for _, c := range metrics.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
