package hometools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/germanamz/cresthome/pkg/tools/toolbox"
)

type resolveDeviceInput struct {
	Utterance       string `json:"utterance"`
	PreferredRoomID int    `json:"preferred_room_id"`
}

func (t *Tools) resolveDeviceTool() toolbox.Tool {
	return toolbox.Tool{
		Name: "crestron_resolve_device",
		Description: "Resolve a natural-language device description (any language) to a specific device. " +
			"Returns a single device with a confidence score when the match is unambiguous, " +
			"or a list of candidates needing clarification otherwise.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"utterance":{"type":"string","minLength":1,"maxLength":500,"description":"Natural language device description, e.g. 'lampadario in soggiorno' or 'bedroom lights'"},"preferred_room_id":{"type":"integer","minimum":1,"description":"Optional room ID to narrow the search"}},"required":["utterance"]}`),
		ReadOnly:    true,
		Idempotent:  true,
		Handler:     t.handleResolveDevice,
	}
}

func (t *Tools) handleResolveDevice(ctx context.Context, input json.RawMessage) (string, error) {
	var in resolveDeviceInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("crestron_resolve_device: invalid input: %w", err)
	}
	if in.Utterance == "" {
		return "", fmt.Errorf("crestron_resolve_device: utterance is required")
	}

	resolution, err := t.resolver.Resolve(ctx, in.Utterance, in.PreferredRoomID)
	if err != nil {
		return coreError("resolve device", err)
	}

	switch {
	case resolution.Resolved:
		d := resolution.Device

		return jsonResponse(map[string]any{
			"resolved":           true,
			"confidence":         resolution.Confidence,
			"device_id":          d.ID,
			"device_name":        d.Name,
			"device_type":        d.Type,
			"room_id":            d.RoomID,
			"original_utterance": in.Utterance,
			"message":            "Device successfully resolved",
		})

	case len(resolution.Candidates) == 0:
		return jsonResponse(map[string]any{
			"resolved":           false,
			"confidence":         0.0,
			"original_utterance": in.Utterance,
			"message":            "No devices matched the description",
			"help":               "Try using crestron_list_devices to see available devices",
		})

	default:
		candidates := make([]map[string]any, 0, len(resolution.Candidates))
		for _, c := range resolution.Candidates {
			candidates = append(candidates, map[string]any{
				"device_id":  c.Device.ID,
				"name":       c.Device.Name,
				"type":       c.Device.Type,
				"subType":    c.Device.SubType,
				"room_id":    c.Device.RoomID,
				"confidence": math.Round(c.Score*100) / 100,
			})
		}

		return jsonResponse(map[string]any{
			"resolved":             false,
			"confidence":           resolution.Confidence,
			"original_utterance":   in.Utterance,
			"clarification_needed": true,
			"candidates":           candidates,
			"message": fmt.Sprintf(
				"Found %d possible matches. Please clarify which device you mean by providing more specific information (room name, device type, etc.)",
				len(candidates)),
		})
	}
}
