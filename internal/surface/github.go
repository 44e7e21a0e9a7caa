// Package surface publishes Recipescope results to external systems.
package surface

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/recipescope/recipescope/pkg/surface"
)

const defaultGitHubAPI = "https://api.github.com"

// CheckRunName is the name every published check run carries.
const CheckRunName = "Recipescope"

// CheckRunTarget identifies the commit a check run is attached to.
type CheckRunTarget struct {
	InstallationID int64  `json:"installation_id"`
	Owner          string `json:"owner"`
	Repo           string `json:"repo"`
	HeadSHA        string `json:"head_sha"`
}

// Validate reports a missing field.
func (t CheckRunTarget) Validate() error {
	switch {
	case t.InstallationID <= 0:
		return fmt.Errorf("github target: installation_id is required")
	case t.Owner == "" || t.Repo == "":
		return fmt.Errorf("github target: owner and repo are required")
	case t.HeadSHA == "":
		return fmt.Errorf("github target: head_sha is required")
	}
	return nil
}

// GitHubPublisher publishes Check Runs to the GitHub API using
// GitHub App authentication (JWT -> installation token).
type GitHubPublisher struct {
	appID      int64
	privateKey *rsa.PrivateKey
	httpClient *http.Client
	baseURL    string
}

// NewGitHubPublisher creates a publisher from the App ID and PEM-encoded
// private key (PKCS#1 or PKCS#8).
func NewGitHubPublisher(appID int64, privateKeyPEM []byte) (*GitHubPublisher, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return &GitHubPublisher{
		appID:      appID,
		privateKey: key,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultGitHubAPI,
	}, nil
}

// WithBaseURL points the publisher at a GitHub Enterprise (or test) API root.
func (p *GitHubPublisher) WithBaseURL(url string) *GitHubPublisher {
	p.baseURL = strings.TrimRight(url, "/")
	return p
}

// PublishCheckRun creates a completed GitHub Check Run on the target commit.
func (p *GitHubPublisher) PublishCheckRun(ctx context.Context, target CheckRunTarget, data surface.CheckRunData) error {
	if err := target.Validate(); err != nil {
		return err
	}

	token, err := p.getInstallationToken(ctx, target.InstallationID)
	if err != nil {
		return fmt.Errorf("get installation token: %w", err)
	}

	body := map[string]interface{}{
		"name":       CheckRunName,
		"head_sha":   target.HeadSHA,
		"status":     "completed",
		"conclusion": data.Conclusion,
		"output": map[string]string{
			"title":   data.Title,
			"summary": data.Summary,
		},
	}

	if data.ExternalID != "" {
		body["external_id"] = data.ExternalID
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal check run: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/check-runs", p.baseURL, target.Owner, target.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post check run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("github API error %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// getInstallationToken generates a JWT and exchanges it for an installation access token.
func (p *GitHubPublisher) getInstallationToken(ctx context.Context, installationID int64) (string, error) {
	appJWT, err := p.generateJWT(time.Now())
	if err != nil {
		return "", fmt.Errorf("generate JWT: %w", err)
	}

	url := fmt.Sprintf("%s/app/installations/%d/access_tokens", p.baseURL, installationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+appJWT)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request installation token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request failed %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	return result.Token, nil
}

// generateJWT creates a short-lived RS256 JWT for GitHub App authentication.
// GitHub rejects tokens that live longer than ten minutes, and iat is
// backdated to absorb clock drift.
func (p *GitHubPublisher) generateJWT(now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": p.appID,
		"iat": now.Add(-60 * time.Second).Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
	})
	return token.SignedString(p.privateKey)
}
