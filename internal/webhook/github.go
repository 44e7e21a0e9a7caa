// Package webhook handles incoming GitHub webhook events.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// VerifySignature validates the X-Hub-Signature-256 header against the payload.
func VerifySignature(payload []byte, signature string, secret []byte) error {
	hexSig, ok := strings.CutPrefix(signature, "sha256=")
	if !ok {
		return errors.New("invalid signature format")
	}
	sig, err := hex.DecodeString(hexSig)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return errors.New("signature mismatch")
	}
	return nil
}

// CheckRunEvent is sent when a check run is created, completed or when a
// user asks GitHub to re-run it.
type CheckRunEvent struct {
	Action       string              `json:"action"`
	CheckRun     CheckRunPayload     `json:"check_run"`
	Repository   GitHubRepository    `json:"repository"`
	Installation InstallationPayload `json:"installation"`
}

// CheckRunPayload carries the fields of a check run the service needs.
type CheckRunPayload struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	HeadSHA    string `json:"head_sha"`
	ExternalID string `json:"external_id"`
}

// PingEvent is sent once when a webhook is configured.
type PingEvent struct {
	Zen    string `json:"zen"`
	HookID int64  `json:"hook_id"`
}

// InstallationPayload identifies the GitHub App installation.
type InstallationPayload struct {
	ID int64 `json:"id"`
}

// GitHubRepository is the repository a check run belongs to.
type GitHubRepository struct {
	Name     string     `json:"name"`
	FullName string     `json:"full_name"`
	Owner    GitHubUser `json:"owner"`
}

// GitHubUser is a GitHub user or organization.
type GitHubUser struct {
	Login string `json:"login"`
}

// ParseEvent parses a webhook payload based on the event type.
func ParseEvent(eventType string, payload []byte) (any, error) {
	switch eventType {
	case "check_run":
		var e CheckRunEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("parse check_run event: %w", err)
		}
		return &e, nil
	case "ping":
		var e PingEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("parse ping event: %w", err)
		}
		return &e, nil
	default:
		return nil, fmt.Errorf("unsupported event type: %s", eventType)
	}
}
