package hometools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/germanamz/cresthome/pkg/crestron"
)

// deviceMarkdown renders one device with its type-specific attributes.
func deviceMarkdown(d crestron.Device) string {
	var b strings.Builder

	fmt.Fprintf(&b, "### %s (ID: %d)\n", d.Name, d.ID)
	fmt.Fprintf(&b, "- **Type**: %s\n", d.Type)
	if d.SubType != "" {
		fmt.Fprintf(&b, "- **Subtype**: %s\n", d.SubType)
	}
	if d.RoomID != 0 {
		fmt.Fprintf(&b, "- **Room ID**: %d\n", d.RoomID)
	}

	switch {
	case d.Light != nil:
		fmt.Fprintf(&b, "- **Brightness**: %d%%\n", crestron.RawToPercent(d.Light.Level))
	case d.Shade != nil:
		fmt.Fprintf(&b, "- **Position**: %d%% open\n", crestron.RawToPercent(d.Shade.Position))
		if d.Shade.ConnectionStatus != "" {
			fmt.Fprintf(&b, "- **Connection**: %s\n", d.Shade.ConnectionStatus)
		}
	case d.Thermostat != nil:
		ts := d.Thermostat
		if ts.Mode != "" {
			fmt.Fprintf(&b, "- **Mode**: %s\n", ts.Mode)
		}
		fmt.Fprintf(&b, "- **Current Temp**: %d°\n", ts.CurrentTemperature)
		if ts.SetPoint != nil {
			fmt.Fprintf(&b, "- **Setpoint**: %d° (%s)\n", ts.SetPoint.Temperature, ts.SetPoint.Type)
		}
		if ts.CurrentFanMode != "" {
			fmt.Fprintf(&b, "- **Fan Mode**: %s\n", ts.CurrentFanMode)
		}
	case d.Sensor != nil:
		b.WriteString(sensorFields(d.Sensor))
	}

	b.WriteString("\n")

	return b.String()
}

// sensorFields renders the readings a sensor actually reports.
func sensorFields(s *crestron.SensorState) string {
	var b strings.Builder

	if s.Presence != "" {
		fmt.Fprintf(&b, "- **Presence**: %s\n", s.Presence)
	}
	if s.Level != nil {
		fmt.Fprintf(&b, "- **Light Level**: %d\n", *s.Level)
	}
	if s.DoorStatus != "" {
		fmt.Fprintf(&b, "- **Door Status**: %s\n", s.DoorStatus)
	}
	if s.BatteryLevel != "" {
		fmt.Fprintf(&b, "- **Battery**: %s\n", s.BatteryLevel)
	}
	if s.ConnectionStatus != "" {
		fmt.Fprintf(&b, "- **Connection**: %s\n", s.ConnectionStatus)
	}

	return b.String()
}

// groupDevices buckets devices by the given key, returning the keys sorted.
func groupDevices(devices []crestron.Device, key func(crestron.Device) string) ([]string, map[string][]crestron.Device) {
	groups := make(map[string][]crestron.Device)
	for _, d := range devices {
		k := key(d)
		if k == "" {
			k = "unknown"
		}
		groups[k] = append(groups[k], d)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys, groups
}

// titleCase uppercases the first letter, matching the section headers of the
// markdown listings.
func titleCase(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
