package crestron

import (
	"encoding/json"
	"sort"
)

// DeviceType identifies the broad class of a device.
type DeviceType string

const (
	TypeLight      DeviceType = "light"
	TypeShade      DeviceType = "shade"
	TypeThermostat DeviceType = "thermostat"
	TypeSensor     DeviceType = "sensor"
	TypeLock       DeviceType = "lock"
)

// Room is a spatial grouping of devices.
type Room struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Scene is a pre-configured automation scenario.
type Scene struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	RoomID int    `json:"roomId"`
	Status bool   `json:"status"`
}

// LightState holds light-specific attributes. Level is on the controller's
// raw 0-65535 scale.
type LightState struct {
	Level int `json:"level"`
}

// ShadeState holds shade-specific attributes. Position is on the raw
// 0-65535 scale where 0 is fully closed.
type ShadeState struct {
	Position         int    `json:"position"`
	ConnectionStatus string `json:"connectionStatus"`
}

// Setpoint is a thermostat target temperature of a given type.
type Setpoint struct {
	Type        string `json:"type"`
	Temperature int    `json:"temperature"`
	MinValue    int    `json:"minValue,omitempty"`
	MaxValue    int    `json:"maxValue,omitempty"`
}

// ThermostatState holds thermostat-specific attributes.
type ThermostatState struct {
	Mode                 string    `json:"mode"`
	CurrentTemperature   int       `json:"currentTemperature"`
	TemperatureUnits     string    `json:"temperatureUnits"`
	SetPoint             *Setpoint `json:"setPoint"`
	CurrentFanMode       string    `json:"currentFanMode"`
	SchedulerState       string    `json:"schedulerState"`
	AvailableSystemModes []string  `json:"availableSystemModes"`
	AvailableFanModes    []string  `json:"availableFanModes"`
}

// SensorState holds sensor readings. The controller's wire keys for door
// status and battery level contain spaces.
type SensorState struct {
	Presence         string `json:"presence,omitempty"`
	Level            *int   `json:"level,omitempty"`
	DoorStatus       string `json:"door status,omitempty"`
	BatteryLevel     string `json:"battery level,omitempty"`
	ConnectionStatus string `json:"connectionStatus,omitempty"`
}

// Device is an immutable snapshot of one device as reported by the
// controller. Type-specific attributes live in exactly one of the variant
// fields, selected by Type, so code switching on the class of a device gets
// compile-time field checking instead of a loose attribute map. Raw retains
// the controller's original JSON for passthrough output.
type Device struct {
	ID      int        `json:"id"`
	Name    string     `json:"name"`
	Type    DeviceType `json:"type"`
	SubType string     `json:"subType,omitempty"`
	RoomID  int        `json:"roomId"`

	Light      *LightState      `json:"-"`
	Shade      *ShadeState      `json:"-"`
	Thermostat *ThermostatState `json:"-"`
	Sensor     *SensorState     `json:"-"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the common fields and then the variant matching the
// device type. Unknown types keep only the common fields.
func (d *Device) UnmarshalJSON(data []byte) error {
	type common struct {
		ID      int        `json:"id"`
		Name    string     `json:"name"`
		Type    DeviceType `json:"type"`
		SubType string     `json:"subType"`
		RoomID  int        `json:"roomId"`
	}

	var c common
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}

	*d = Device{
		ID:      c.ID,
		Name:    c.Name,
		Type:    c.Type,
		SubType: c.SubType,
		RoomID:  c.RoomID,
		Raw:     append(json.RawMessage(nil), data...),
	}

	switch c.Type {
	case TypeLight:
		var s LightState
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		d.Light = &s
	case TypeShade:
		var s ShadeState
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		d.Shade = &s
	case TypeThermostat:
		var s ThermostatState
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		d.Thermostat = &s
	case TypeSensor:
		var s SensorState
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		d.Sensor = &s
	}

	return nil
}

// MarshalJSON emits the controller's original JSON when available so
// passthrough output keeps fields the typed model does not carry.
func (d Device) MarshalJSON() ([]byte, error) {
	if len(d.Raw) > 0 {
		return d.Raw, nil
	}

	type plain struct {
		ID      int        `json:"id"`
		Name    string     `json:"name"`
		Type    DeviceType `json:"type"`
		SubType string     `json:"subType,omitempty"`
		RoomID  int        `json:"roomId"`
	}

	return json.Marshal(plain{ID: d.ID, Name: d.Name, Type: d.Type, SubType: d.SubType, RoomID: d.RoomID})
}

// BatchOutcome classifies the result of a batch operation.
type BatchOutcome string

const (
	BatchSuccess BatchOutcome = "success"
	BatchPartial BatchOutcome = "partial"
	BatchFailure BatchOutcome = "failure"
)

// BatchResult aggregates the per-item results of one batch operation.
// SucceededIDs and FailedIDs are disjoint and sorted.
type BatchResult struct {
	Outcome      BatchOutcome `json:"status"`
	SucceededIDs []int        `json:"succeeded_ids"`
	FailedIDs    []int        `json:"failed_ids"`
}

// NewBatchResult classifies a batch from the ids that succeeded and failed.
// The outcome is a pure function of the two sets: failure when nothing
// succeeded, success when nothing failed and something succeeded, partial
// otherwise. An id reported in both sets counts as failed.
func NewBatchResult(succeeded, failed []int) BatchResult {
	failedSet := make(map[int]bool, len(failed))
	for _, id := range failed {
		failedSet[id] = true
	}

	seen := make(map[int]bool, len(succeeded))
	ok := make([]int, 0, len(succeeded))
	for _, id := range succeeded {
		if failedSet[id] || seen[id] {
			continue
		}
		seen[id] = true
		ok = append(ok, id)
	}

	bad := make([]int, 0, len(failedSet))
	for id := range failedSet {
		bad = append(bad, id)
	}

	sort.Ints(ok)
	sort.Ints(bad)

	outcome := BatchPartial
	switch {
	case len(ok) == 0:
		outcome = BatchFailure
	case len(bad) == 0:
		outcome = BatchSuccess
	}

	return BatchResult{Outcome: outcome, SucceededIDs: ok, FailedIDs: bad}
}
