package hometools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/germanamz/cresthome/pkg/tools/toolbox"
)

type authenticateInput struct {
	Host      string `json:"host"`
	AuthToken string `json:"auth_token"`
}

func (t *Tools) authenticateTool() toolbox.Tool {
	return toolbox.Tool{
		Name: "crestron_authenticate",
		Description: "Authenticate with a Crestron Home controller and establish a session. " +
			"Must be called before any other crestron tool. The session expires after 10 minutes of inactivity. " +
			"Generate the auth token in the Crestron Home app under Installer Settings > System Control Options > Web API Settings.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"host":{"type":"string","description":"Controller hostname or IP address (e.g. '192.168.1.100')"},"auth_token":{"type":"string","description":"Authorization token from the Crestron Home app"}},"required":["host","auth_token"]}`),
		Idempotent:  true,
		Handler:     t.handleAuthenticate,
	}
}

func (t *Tools) handleAuthenticate(ctx context.Context, input json.RawMessage) (string, error) {
	var in authenticateInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("crestron_authenticate: invalid input: %w", err)
	}

	if in.Host == "" {
		return "", fmt.Errorf("crestron_authenticate: host is required")
	}
	if in.AuthToken == "" {
		return "", fmt.Errorf("crestron_authenticate: auth_token is required")
	}

	info, err := t.sessions.Authenticate(ctx, in.Host, in.AuthToken)
	if err != nil {
		return jsonResponse(map[string]any{
			"status":  "error",
			"error":   "Authentication failed",
			"details": err.Error(),
			"help": "Verify that: (1) The host is correct and reachable, " +
				"(2) The auth token is valid and not expired, " +
				"(3) Web API is enabled in Crestron Home settings",
		})
	}

	version := info.Version
	if version == "" {
		version = "unknown"
	}

	return jsonResponse(map[string]any{
		"status":            "success",
		"host":              in.Host,
		"authenticated":     true,
		"session_valid_for": "10 minutes",
		"api_version":       version,
		"message":           "Successfully authenticated with Crestron Home. You can now use other tools.",
	})
}
