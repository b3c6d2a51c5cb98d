package hometools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/germanamz/cresthome/pkg/crestron"
	"github.com/germanamz/cresthome/pkg/tools/toolbox"
)

type getSensorsInput struct {
	SensorID       int            `json:"sensor_id"`
	SensorSubtype  string         `json:"sensor_subtype"`
	ResponseFormat responseFormat `json:"response_format"`
}

func (t *Tools) getSensorsTool() toolbox.Tool {
	return toolbox.Tool{
		Name: "crestron_get_sensors",
		Description: "Get current readings from sensors: presence, light level, door status, battery. " +
			"Sensors are read-only devices. Subtypes: 'OccupancySensor', 'PhotoSensor', 'DoorSensor'.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"sensor_id":{"type":"integer","minimum":1,"description":"Specific sensor ID; omit for all"},"sensor_subtype":{"type":"string","description":"Filter by subtype: 'OccupancySensor', 'PhotoSensor', 'DoorSensor'"},"response_format":{"type":"string","enum":["markdown","json"],"description":"Output format (default markdown)"}}}`),
		ReadOnly:    true,
		Idempotent:  true,
		Handler:     t.handleGetSensors,
	}
}

func (t *Tools) handleGetSensors(ctx context.Context, input json.RawMessage) (string, error) {
	var in getSensorsInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("crestron_get_sensors: invalid input: %w", err)
	}

	format, err := in.ResponseFormat.validate()
	if err != nil {
		return "", fmt.Errorf("crestron_get_sensors: %w", err)
	}

	sensors, err := t.dispatcher.Sensors(ctx, in.SensorID)
	if err != nil {
		return coreError("retrieve sensors", err)
	}

	if in.SensorSubtype != "" {
		filtered := sensors[:0:0]
		for _, s := range sensors {
			if s.SubType == in.SensorSubtype {
				filtered = append(filtered, s)
			}
		}
		sensors = filtered
	}

	var result string
	if format == formatJSON {
		result, err = jsonResponse(map[string]any{"sensors": sensors, "count": len(sensors)})
		if err != nil {
			return "", err
		}
	} else {
		result = sensorsMarkdown(sensors)
	}

	return crestron.Truncate(result, len(sensors)), nil
}

func sensorsMarkdown(sensors []crestron.Device) string {
	if len(sensors) == 0 {
		return "No sensors found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Sensors (%d total)\n\n", len(sensors))

	keys, groups := groupDevices(sensors, func(d crestron.Device) string { return d.SubType })
	for _, k := range keys {
		fmt.Fprintf(&b, "## %s (%d)\n\n", k, len(groups[k]))
		for _, d := range groups[k] {
			fmt.Fprintf(&b, "### %s (ID: %d)\n", d.Name, d.ID)
			if d.Sensor != nil {
				b.WriteString(sensorFields(d.Sensor))
			}
			fmt.Fprintf(&b, "- **Room ID**: %d\n\n", d.RoomID)
		}
	}

	return b.String()
}
