package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"

	ghsurface "github.com/recipescope/recipescope/internal/surface"
	"github.com/recipescope/recipescope/pkg/report"
)

func newUploadCmd() *cobra.Command {
	var opts uploadOpts

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a report to a recipescoped server",
		Long: `Sends a report to the hosted service, which stores and evaluates it.
With --github-owner, --github-repo, --github-sha and --github-installation the
server also publishes a GitHub check run for the commit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Path to the report JSON (required)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to config.yaml")
	cmd.Flags().StringVar(&opts.server, "server", "", "Server URL (default: server.url from config)")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "API key (default: $RECIPESCOPE_API_KEY or server.api_key)")
	cmd.Flags().Int64Var(&opts.target.InstallationID, "github-installation", 0, "GitHub App installation ID")
	cmd.Flags().StringVar(&opts.target.Owner, "github-owner", "", "GitHub repository owner")
	cmd.Flags().StringVar(&opts.target.Repo, "github-repo", "", "GitHub repository name")
	cmd.Flags().StringVar(&opts.target.HeadSHA, "github-sha", "", "Commit SHA for the check run")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "Request timeout")
	_ = cmd.MarkFlagRequired("report")

	return cmd
}

type uploadOpts struct {
	reportPath string
	configPath string
	server     string
	apiKey     string
	target     ghsurface.CheckRunTarget
	timeout    time.Duration
}

type uploadRequest struct {
	Report *report.Report            `json:"report"`
	GitHub *ghsurface.CheckRunTarget `json:"github,omitempty"`
}

func runUpload(ctx context.Context, w io.Writer, opts uploadOpts) error {
	rep, cfg, err := loadInputs(opts.reportPath, opts.configPath)
	if err != nil {
		return err
	}

	server := strings.TrimRight(firstNonEmpty(opts.server, cfg.Server.URL), "/")
	if server == "" {
		return fmt.Errorf("no server: pass --server or set server.url in config")
	}
	apiKey := firstNonEmpty(opts.apiKey, os.Getenv("RECIPESCOPE_API_KEY"), cfg.Server.APIKey)

	req := uploadRequest{Report: rep}
	if opts.target != (ghsurface.CheckRunTarget{}) {
		if err := opts.target.Validate(); err != nil {
			return err
		}
		req.GitHub = &opts.target
	}

	body, err := gzipJSON(req)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, server+"/api/v1/reports", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Content-Encoding", "gzip")
	if apiKey != "" {
		httpReq.Header.Set("X-API-Key", apiKey)
	}

	fmt.Fprintf(os.Stderr, "Uploading %s (%d recipes) to %s\n", opts.reportPath, len(rep.Recipes), server)
	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("uploading report: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out struct {
		ProjectID    string `json:"project_id"`
		ReportID     string `json:"report_id"`
		EvaluationID string `json:"evaluation_id"`
		Qualified    bool   `json:"qualified"`
		Stable       bool   `json:"stable"`
		Available    int    `json:"available"`
		Qualifying   int    `json:"qualifying"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	verdict := "UNQUALIFIED"
	switch {
	case out.Available == 0:
		verdict = "NO DATA"
	case out.Qualified:
		verdict = "QUALIFIED"
	}
	fmt.Fprintf(w, "Report %s: %s (%d/%d categories qualified)\n", out.ReportID, verdict, out.Qualifying, out.Available)
	fmt.Fprintf(w, "  Evaluation: %s\n", out.EvaluationID)
	if !out.Stable {
		fmt.Fprintf(w, "  Build marked UNSTABLE\n")
	}
	return nil
}

func gzipJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(v); err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("compressing report: %w", err)
	}
	return buf.Bytes(), nil
}
