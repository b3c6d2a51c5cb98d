package hometools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/germanamz/cresthome/pkg/crestron"
	"github.com/germanamz/cresthome/pkg/tools/toolbox"
)

type listDevicesInput struct {
	RoomID         int            `json:"room_id"`
	DeviceType     string         `json:"device_type"`
	ResponseFormat responseFormat `json:"response_format"`
}

func (t *Tools) listDevicesTool() toolbox.Tool {
	return toolbox.Tool{
		Name: "crestron_list_devices",
		Description: "Discover all devices, optionally filtered by room and/or device type. " +
			"This is the primary discovery tool: use it to find the device IDs needed for control operations. " +
			"Types include 'light', 'shade', 'thermostat', 'sensor', 'lock'.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"room_id":{"type":"integer","minimum":1,"description":"Filter devices by room ID"},"device_type":{"type":"string","description":"Filter by device type, e.g. 'light', 'shade', 'thermostat', 'sensor'"},"response_format":{"type":"string","enum":["markdown","json"],"description":"Output format (default markdown)"}}}`),
		ReadOnly:    true,
		Idempotent:  true,
		Handler:     t.handleListDevices,
	}
}

func (t *Tools) handleListDevices(ctx context.Context, input json.RawMessage) (string, error) {
	var in listDevicesInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("crestron_list_devices: invalid input: %w", err)
	}

	format, err := in.ResponseFormat.validate()
	if err != nil {
		return "", fmt.Errorf("crestron_list_devices: %w", err)
	}

	devices, err := t.dispatcher.Devices(ctx)
	if err != nil {
		return coreError("retrieve devices", err)
	}

	filtered := devices[:0:0]
	for _, d := range devices {
		if in.RoomID > 0 && d.RoomID != in.RoomID {
			continue
		}
		if in.DeviceType != "" && string(d.Type) != in.DeviceType {
			continue
		}
		filtered = append(filtered, d)
	}

	var result string
	if format == formatJSON {
		result, err = jsonResponse(map[string]any{
			"devices": filtered,
			"count":   len(filtered),
			"filters": map[string]any{"room_id": in.RoomID, "device_type": in.DeviceType},
		})
		if err != nil {
			return "", err
		}
	} else {
		result = devicesMarkdown(filtered, in)
	}

	return crestron.Truncate(result, len(filtered)), nil
}

func devicesMarkdown(devices []crestron.Device, in listDevicesInput) string {
	if len(devices) == 0 {
		var filters []string
		if in.RoomID > 0 {
			filters = append(filters, fmt.Sprintf("room %d", in.RoomID))
		}
		if in.DeviceType != "" {
			filters = append(filters, fmt.Sprintf("type %q", in.DeviceType))
		}
		if len(filters) > 0 {
			return fmt.Sprintf("No devices found with %s.", strings.Join(filters, " and "))
		}

		return "No devices found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Devices (%d total)\n\n", len(devices))

	keys, groups := groupDevices(devices, func(d crestron.Device) string { return string(d.Type) })
	for _, k := range keys {
		fmt.Fprintf(&b, "## %s (%d)\n\n", titleCase(k), len(groups[k]))
		for _, d := range groups[k] {
			b.WriteString(deviceMarkdown(d))
		}
	}

	return b.String()
}
