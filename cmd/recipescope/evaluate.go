package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/recipescope/recipescope/pkg/config"
	"github.com/recipescope/recipescope/pkg/metrics"
	"github.com/recipescope/recipescope/pkg/report"
	"github.com/recipescope/recipescope/pkg/surface"
)

var errUnstable = errors.New("build marked unstable")

func newEvaluateCmd() *cobra.Command {
	var opts evaluateOpts

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a report against the configured thresholds",
		Long: `Loads a report, evaluates every category at project level and per recipe,
and renders the verdict. The result is saved to the local results cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Path to the report JSON (required)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config.yaml (default: search for .recipescope/config.yaml)")
	cmd.Flags().StringVar(&opts.outputFmt, "output", "text", "Output format: text, json or checkrun")
	cmd.Flags().BoolVar(&opts.recipes, "recipes", false, "Also list per-recipe verdicts (text output)")
	cmd.Flags().BoolVar(&opts.failUnstable, "fail-unstable", false, "Exit non-zero when the build is marked unstable")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "Do not save the result to the local cache")
	_ = cmd.MarkFlagRequired("report")

	return cmd
}

type evaluateOpts struct {
	reportPath   string
	configPath   string
	outputFmt    string
	recipes      bool
	failUnstable bool
	noSave       bool
}

func runEvaluate(w io.Writer, opts evaluateOpts) error {
	renderer, err := rendererFor(opts.outputFmt, opts.recipes)
	if err != nil {
		return err
	}

	rep, cfg, err := loadInputs(opts.reportPath, opts.configPath)
	if err != nil {
		return err
	}

	result, err := metrics.NewEngine(cfg.MetricsCriteria()).Evaluate(rep)
	if err != nil {
		return fmt.Errorf("evaluating: %w", err)
	}

	if !opts.noSave {
		saveResult(result)
	}

	if err := renderer.Render(w, result); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}

	if opts.failUnstable && !result.Stable {
		return errUnstable
	}
	return nil
}

func rendererFor(format string, recipes bool) (surface.Renderer, error) {
	switch format {
	case "text", "":
		return &surface.TerminalRenderer{Recipes: recipes}, nil
	case "json":
		return &surface.JSONRenderer{}, nil
	case "checkrun":
		return &surface.CheckRunRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or checkrun)", format)
	}
}

// loadInputs reads the report and the config that applies to it.
func loadInputs(reportPath, configPath string) (*report.Report, *config.Config, error) {
	rep, err := report.LoadReport(reportPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading report: %w", err)
	}
	cfg, err := loadConfig(configPath, filepath.Dir(reportPath))
	if err != nil {
		return nil, nil, err
	}
	return rep, cfg, nil
}

// loadConfig loads an explicit config file, or searches upward from dir.
// A discovered file that fails to load falls back to the defaults.
func loadConfig(path, dir string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfgFile := config.FindConfigFile(dir)
	if cfgFile == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		return config.DefaultConfig(), nil
	}
	return cfg, nil
}

// savedResult wraps a result with the time it was evaluated.
type savedResult struct {
	*metrics.Result
	EvaluatedAt string `json:"evaluated_at"`
}

// saveResult persists a result to the project's results cache directory.
func saveResult(result *metrics.Result) {
	dir := config.ResultDir(result.Project)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create results dir: %v\n", err)
		return
	}

	now := time.Now().UTC()
	data, err := json.MarshalIndent(savedResult{Result: result, EvaluatedAt: now.Format(time.RFC3339)}, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to marshal result: %v\n", err)
		return
	}

	name := firstNonEmpty(result.ReportID, now.Format("20060102T150405Z"))
	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save result: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Result saved: %s\n", path)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
