package hometools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/germanamz/cresthome/pkg/crestron"
	"github.com/germanamz/cresthome/pkg/tools/toolbox"
)

type getThermostatsInput struct {
	ThermostatID   int            `json:"thermostat_id"`
	ResponseFormat responseFormat `json:"response_format"`
}

func (t *Tools) getThermostatsTool() toolbox.Tool {
	return toolbox.Tool{
		Name: "crestron_get_thermostats",
		Description: "Get current status and capabilities of thermostats: temperature, setpoints, " +
			"system mode, fan mode, schedule state, and the modes each unit supports.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"thermostat_id":{"type":"integer","minimum":1,"description":"Specific thermostat ID; omit for all"},"response_format":{"type":"string","enum":["markdown","json"],"description":"Output format (default markdown)"}}}`),
		ReadOnly:    true,
		Idempotent:  true,
		Handler:     t.handleGetThermostats,
	}
}

func (t *Tools) handleGetThermostats(ctx context.Context, input json.RawMessage) (string, error) {
	var in getThermostatsInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("crestron_get_thermostats: invalid input: %w", err)
	}

	format, err := in.ResponseFormat.validate()
	if err != nil {
		return "", fmt.Errorf("crestron_get_thermostats: %w", err)
	}

	thermostats, err := t.dispatcher.Thermostats(ctx)
	if err != nil {
		return coreError("retrieve thermostats", err)
	}

	if in.ThermostatID > 0 {
		filtered := thermostats[:0:0]
		for _, ts := range thermostats {
			if ts.ID == in.ThermostatID {
				filtered = append(filtered, ts)
			}
		}
		thermostats = filtered
	}

	var result string
	if format == formatJSON {
		result, err = jsonResponse(map[string]any{"thermostats": thermostats, "count": len(thermostats)})
		if err != nil {
			return "", err
		}
	} else {
		result = thermostatsMarkdown(thermostats)
	}

	return crestron.Truncate(result, len(thermostats)), nil
}

func thermostatsMarkdown(thermostats []crestron.Device) string {
	if len(thermostats) == 0 {
		return "No thermostats found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Thermostats (%d total)\n\n", len(thermostats))
	for _, d := range thermostats {
		fmt.Fprintf(&b, "### %s (ID: %d)\n", d.Name, d.ID)
		ts := d.Thermostat
		if ts == nil {
			b.WriteString("\n")

			continue
		}
		fmt.Fprintf(&b, "- **Current Temperature**: %d° %s\n", ts.CurrentTemperature, ts.TemperatureUnits)
		fmt.Fprintf(&b, "- **Mode**: %s\n", ts.Mode)
		fmt.Fprintf(&b, "- **Fan Mode**: %s\n", ts.CurrentFanMode)
		if ts.SetPoint != nil {
			fmt.Fprintf(&b, "- **Setpoint**: %d° (%s)\n", ts.SetPoint.Temperature, ts.SetPoint.Type)
			fmt.Fprintf(&b, "  - Range: %d° - %d°\n", ts.SetPoint.MinValue, ts.SetPoint.MaxValue)
		}
		if ts.SchedulerState != "" {
			fmt.Fprintf(&b, "- **Schedule**: %s\n", ts.SchedulerState)
		}
		if len(ts.AvailableSystemModes) > 0 {
			fmt.Fprintf(&b, "- **Available Modes**: %s\n", strings.Join(ts.AvailableSystemModes, ", "))
		}
		fmt.Fprintf(&b, "- **Room ID**: %d\n\n", d.RoomID)
	}

	return b.String()
}

type setSetpointInput struct {
	ThermostatID int                 `json:"thermostat_id"`
	Setpoints    []crestron.Setpoint `json:"setpoints"`
}

func (t *Tools) setThermostatSetpointTool() toolbox.Tool {
	return toolbox.Tool{
		Name: "crestron_set_thermostat_setpoint",
		Description: "Set temperature setpoints for a thermostat (Heat, Cool, or Auto). " +
			"Temperatures use the unit configured on the thermostat; check valid ranges with crestron_get_thermostats first.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"thermostat_id":{"type":"integer","minimum":1,"description":"Thermostat device ID"},"setpoints":{"type":"array","minItems":1,"maxItems":3,"items":{"type":"object","properties":{"type":{"type":"string","enum":["Heat","Cool","Auto"],"description":"Setpoint type"},"temperature":{"type":"integer","minimum":0,"maximum":1000,"description":"Target temperature in the thermostat's configured units"}},"required":["type","temperature"]},"description":"Setpoints to configure"}},"required":["thermostat_id","setpoints"]}`),
		Idempotent:  true,
		Handler:     t.handleSetThermostatSetpoint,
	}
}

func (t *Tools) handleSetThermostatSetpoint(ctx context.Context, input json.RawMessage) (string, error) {
	var in setSetpointInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("crestron_set_thermostat_setpoint: invalid input: %w", err)
	}

	details, err := t.dispatcher.SetThermostatSetpoints(ctx, in.ThermostatID, in.Setpoints)
	if err != nil {
		return coreError("set thermostat setpoint", err)
	}

	return jsonResponse(map[string]any{
		"status":            "success",
		"thermostat_id":     in.ThermostatID,
		"setpoints_updated": len(in.Setpoints),
		"message":           fmt.Sprintf("Successfully updated %d setpoint(s)", len(in.Setpoints)),
		"details":           json.RawMessage(details),
	})
}

type setModesInput struct {
	Thermostats []crestron.ModeCommand `json:"thermostats"`
}

func (t *Tools) setThermostatModeTool() toolbox.Tool {
	return toolbox.Tool{
		Name: "crestron_set_thermostat_mode",
		Description: "Set the system mode (HEAT, COOL, AUTO, OFF) for one or more thermostats. " +
			"Available modes vary per unit; check with crestron_get_thermostats first.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"thermostats":{"type":"array","minItems":1,"maxItems":50,"items":{"type":"object","properties":{"id":{"type":"integer","minimum":1,"description":"Thermostat device ID"},"mode":{"type":"string","enum":["HEAT","COOL","AUTO","OFF"],"description":"Target system mode"}},"required":["id","mode"]},"description":"Thermostats and their target modes"}},"required":["thermostats"]}`),
		Idempotent:  true,
		Handler:     t.handleSetThermostatMode,
	}
}

func (t *Tools) handleSetThermostatMode(ctx context.Context, input json.RawMessage) (string, error) {
	var in setModesInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("crestron_set_thermostat_mode: invalid input: %w", err)
	}

	result, err := t.dispatcher.SetThermostatModes(ctx, in.Thermostats)
	if err != nil {
		return coreError("set thermostat mode", err)
	}

	return batchResponse(result, "thermostat")
}

func (t *Tools) setThermostatFanTool() toolbox.Tool {
	return toolbox.Tool{
		Name: "crestron_set_thermostat_fan",
		Description: "Set the fan mode for one or more thermostats. " +
			"AUTO runs the fan only while heating or cooling; ON runs it continuously.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"thermostats":{"type":"array","minItems":1,"maxItems":50,"items":{"type":"object","properties":{"id":{"type":"integer","minimum":1,"description":"Thermostat device ID"},"mode":{"type":"string","enum":["AUTO","ON"],"description":"Target fan mode"}},"required":["id","mode"]},"description":"Thermostats and their target fan modes"}},"required":["thermostats"]}`),
		Idempotent:  true,
		Handler:     t.handleSetThermostatFan,
	}
}

func (t *Tools) handleSetThermostatFan(ctx context.Context, input json.RawMessage) (string, error) {
	var in setModesInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("crestron_set_thermostat_fan: invalid input: %w", err)
	}

	result, err := t.dispatcher.SetThermostatFanModes(ctx, in.Thermostats)
	if err != nil {
		return coreError("set thermostat fan mode", err)
	}

	return batchResponse(result, "thermostat")
}
