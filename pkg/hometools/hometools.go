// Package hometools provides the MCP tools that expose a Crestron Home
// controller: discovery (rooms, devices, shades, scenes, thermostats,
// sensors), control (shade positions, scene recall, thermostat setpoints
// and modes), authentication, and natural-language device resolution.
//
// Tools return JSON payloads (or markdown for listings when requested).
// Failures of the controller or the session come back as structured JSON
// with actionable guidance; malformed tool input is returned as a tool
// error.
package hometools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/germanamz/cresthome/pkg/crestron"
	"github.com/germanamz/cresthome/pkg/tools/toolbox"
)

// Tools owns the core components and exposes them as a ToolBox.
type Tools struct {
	sessions   *crestron.SessionManager
	dispatcher *crestron.Dispatcher
	resolver   *crestron.Resolver
}

// New creates the tool set on top of the given core components.
func New(sessions *crestron.SessionManager, dispatcher *crestron.Dispatcher) *Tools {
	return &Tools{
		sessions:   sessions,
		dispatcher: dispatcher,
		resolver:   crestron.NewResolver(dispatcher),
	}
}

// Tools returns the full tool set: authentication first, discovery next,
// control after, resolution last.
func (t *Tools) Tools() *toolbox.ToolBox {
	tb := toolbox.New()
	tb.Register(
		t.authenticateTool(),
		t.listRoomsTool(),
		t.listDevicesTool(),
		t.getShadesTool(),
		t.setShadePositionTool(),
		t.listScenesTool(),
		t.activateSceneTool(),
		t.getThermostatsTool(),
		t.setThermostatSetpointTool(),
		t.setThermostatModeTool(),
		t.setThermostatFanTool(),
		t.getSensorsTool(),
		t.resolveDeviceTool(),
	)

	return tb
}

// responseFormat selects between human-readable and machine-readable output.
type responseFormat string

const (
	formatMarkdown responseFormat = "markdown"
	formatJSON     responseFormat = "json"
)

func (f responseFormat) validate() (responseFormat, error) {
	switch f {
	case "", formatMarkdown:
		return formatMarkdown, nil
	case formatJSON:
		return formatJSON, nil
	default:
		return "", fmt.Errorf("invalid response_format %q, use \"markdown\" or \"json\"", f)
	}
}

// jsonResponse marshals v with indentation for readable tool output.
func jsonResponse(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode response: %w", err)
	}

	return string(data), nil
}

// coreError maps a core failure to tool output. Caller mistakes
// (ValidationError) surface as tool errors; session and controller failures
// come back as structured JSON payloads so the client sees what failed and
// what to do about it.
func coreError(action string, err error) (string, error) {
	var validation *crestron.ValidationError
	if errors.As(err, &validation) {
		return "", err
	}

	if errors.Is(err, crestron.ErrNotAuthenticated) {
		return jsonResponse(map[string]any{
			"error": err.Error(),
			"help":  "Authenticate first using the crestron_authenticate tool.",
		})
	}

	var remote *crestron.RemoteError
	if errors.As(err, &remote) {
		return jsonResponse(map[string]any{
			"error":       "Failed to " + action,
			"status_code": remote.StatusCode,
			"details":     remote.Error(),
		})
	}

	var timeout *crestron.TimeoutError
	if errors.As(err, &timeout) {
		return jsonResponse(map[string]any{
			"error":     "Failed to " + action,
			"details":   timeout.Error(),
			"transient": true,
			"help":      "The controller did not respond in time. Check that it is reachable and retry.",
		})
	}

	return jsonResponse(map[string]any{
		"error":   "Failed to " + action,
		"details": err.Error(),
	})
}
