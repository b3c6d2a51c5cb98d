package hometools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/germanamz/cresthome/pkg/crestron"
	"github.com/germanamz/cresthome/pkg/tools/toolbox"
)

type getShadesInput struct {
	ShadeID        int            `json:"shade_id"`
	ResponseFormat responseFormat `json:"response_format"`
}

func (t *Tools) getShadesTool() toolbox.Tool {
	return toolbox.Tool{
		Name: "crestron_get_shades",
		Description: "Get current status of shades/blinds including position and connection status. " +
			"Position 0 = fully closed, 100 = fully open. Omit shade_id to get all shades.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"shade_id":{"type":"integer","minimum":1,"description":"Specific shade ID; omit for all shades"},"response_format":{"type":"string","enum":["markdown","json"],"description":"Output format (default markdown)"}}}`),
		ReadOnly:    true,
		Idempotent:  true,
		Handler:     t.handleGetShades,
	}
}

func (t *Tools) handleGetShades(ctx context.Context, input json.RawMessage) (string, error) {
	var in getShadesInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("crestron_get_shades: invalid input: %w", err)
	}

	format, err := in.ResponseFormat.validate()
	if err != nil {
		return "", fmt.Errorf("crestron_get_shades: %w", err)
	}

	shades, err := t.dispatcher.Shades(ctx, in.ShadeID)
	if err != nil {
		return coreError("retrieve shades", err)
	}

	var result string
	if format == formatJSON {
		result, err = jsonResponse(map[string]any{"shades": shades, "count": len(shades)})
		if err != nil {
			return "", err
		}
	} else if len(shades) == 0 {
		result = "No shades found."
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "# Shades (%d total)\n\n", len(shades))
		for _, shade := range shades {
			fmt.Fprintf(&b, "### %s (ID: %d)\n", shade.Name, shade.ID)
			position, connection := 0, "unknown"
			if shade.Shade != nil {
				position = crestron.RawToPercent(shade.Shade.Position)
				if shade.Shade.ConnectionStatus != "" {
					connection = shade.Shade.ConnectionStatus
				}
			}
			fmt.Fprintf(&b, "- **Position**: %d%% open\n", position)
			fmt.Fprintf(&b, "- **Connection**: %s\n", connection)
			fmt.Fprintf(&b, "- **Room ID**: %d\n", shade.RoomID)
			fmt.Fprintf(&b, "- **Subtype**: %s\n\n", shade.SubType)
		}
		result = b.String()
	}

	return crestron.Truncate(result, len(shades)), nil
}

type setShadePositionInput struct {
	Shades []crestron.ShadePosition `json:"shades"`
}

func (t *Tools) setShadePositionTool() toolbox.Tool {
	return toolbox.Tool{
		Name: "crestron_set_shade_position",
		Description: "Control one or more shades/blinds by setting their position (0 = fully closed, 100 = fully open). " +
			"Supports batch operations; each shade succeeds or fails independently.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"shades":{"type":"array","minItems":1,"maxItems":50,"items":{"type":"object","properties":{"id":{"type":"integer","minimum":1,"description":"Shade device ID"},"position":{"type":"integer","minimum":0,"maximum":100,"description":"Target position, 0 (closed) to 100 (open)"}},"required":["id","position"]},"description":"Shade positions to set"}},"required":["shades"]}`),
		Idempotent:  true,
		Handler:     t.handleSetShadePosition,
	}
}

func (t *Tools) handleSetShadePosition(ctx context.Context, input json.RawMessage) (string, error) {
	var in setShadePositionInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("crestron_set_shade_position: invalid input: %w", err)
	}

	result, err := t.dispatcher.SetShades(ctx, in.Shades)
	if err != nil {
		return coreError("set shade positions", err)
	}

	return batchResponse(result, "shade")
}

// batchResponse renders a BatchResult as the tool's JSON payload. A partial
// outcome is a successful call that the client must interpret, so it is
// returned as a normal result with both id lists.
func batchResponse(result crestron.BatchResult, noun string) (string, error) {
	payload := map[string]any{
		"status":        string(result.Outcome),
		"succeeded_ids": result.SucceededIDs,
		"failed_ids":    result.FailedIDs,
	}

	switch result.Outcome {
	case crestron.BatchSuccess:
		payload["message"] = fmt.Sprintf("Successfully updated %d %s(s)", len(result.SucceededIDs), noun)
	case crestron.BatchPartial:
		payload["message"] = fmt.Sprintf(
			"Some %ss failed to update. Verify the failed IDs are correct and the devices are online.", noun)
	case crestron.BatchFailure:
		payload["message"] = fmt.Sprintf(
			"All %ss failed to update. Verify the IDs are correct and the devices are online.", noun)
	}

	return jsonResponse(payload)
}
