package crestron

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"time"
)

// APITimeout is the per-call bound on how long the dispatcher waits for the
// controller to respond.
const APITimeout = 30 * time.Second

// Thermostat system modes accepted by the controller.
var SystemModes = []string{"HEAT", "COOL", "AUTO", "OFF"}

// Thermostat fan modes accepted by the controller.
var FanModes = []string{"AUTO", "ON"}

// Setpoint types accepted by the controller.
var SetpointTypes = []string{"Heat", "Cool", "Auto"}

// ShadePosition is one item of a shade batch: a target shade and its desired
// position as a caller-facing percentage (0 closed, 100 open).
type ShadePosition struct {
	ID       int `json:"id"`
	Position int `json:"position"`
}

// ModeCommand is one item of a thermostat mode or fan-mode batch.
type ModeCommand struct {
	ID   int    `json:"id"`
	Mode string `json:"mode"`
}

// batchReply is the controller's response to a batch write.
type batchReply struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
	ErrorDevices []int  `json:"errorDevices"`
}

// Dispatcher performs authenticated calls against the controller and
// interprets multi-item batch replies into BatchResult outcomes. It holds no
// mutable state of its own; the session is read through the SessionManager,
// so dispatch calls may run concurrently. Nothing here retries: a failed
// call, a timeout, or a partial batch is surfaced to the caller as is.
type Dispatcher struct {
	sessions *SessionManager
	client   *http.Client
}

// NewDispatcher creates a Dispatcher sharing the SessionManager's view of
// the single session. The client should carry the per-call timeout and the
// TLS settings for the controller's self-signed certificate.
func NewDispatcher(sessions *SessionManager, client *http.Client) *Dispatcher {
	return &Dispatcher{sessions: sessions, client: client}
}

// Call performs one request against the controller API. When requireAuth is
// set and the session is invalid it fails with ErrNotAuthenticated before
// touching the network. Non-2xx responses become *RemoteError; a missing
// response within the per-call bound becomes *TimeoutError. Method must be
// GET or POST.
func (d *Dispatcher) Call(ctx context.Context, endpoint, method string, body any, requireAuth bool) (json.RawMessage, error) {
	host, authKey, ok := d.sessions.Credentials()
	if requireAuth && !ok {
		return nil, ErrNotAuthenticated
	}

	if method != http.MethodGet && method != http.MethodPost {
		return nil, fmt.Errorf("crestron: unsupported HTTP method %q", method)
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("crestron: encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	url := fmt.Sprintf("https://%s%s%s", host, apiBasePath, endpoint)

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("crestron: create request: %w", err)
	}

	if requireAuth {
		req.Header.Set(authKeyHeader, authKey)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Endpoint: endpoint, Err: err}
		}

		return nil, fmt.Errorf("crestron: request to %s: %w", endpoint, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("crestron: read response from %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	return data, nil
}

// isTimeout reports whether err is a deadline or I/O timeout rather than an
// ordinary transport failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

// get performs an authenticated GET and unwraps the single collection field
// the controller nests every listing under.
func get[T any](ctx context.Context, d *Dispatcher, endpoint, collection string) ([]T, error) {
	data, err := d.Call(ctx, endpoint, http.MethodGet, nil, true)
	if err != nil {
		return nil, err
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("crestron: decode %s response: %w", endpoint, err)
	}

	raw, ok := wrapper[collection]
	if !ok {
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("crestron: decode %s items: %w", endpoint, err)
	}

	return items, nil
}

// Rooms fetches all rooms.
func (d *Dispatcher) Rooms(ctx context.Context) ([]Room, error) {
	return get[Room](ctx, d, "/rooms", "rooms")
}

// Devices fetches a snapshot of every device. Nothing is cached across
// calls.
func (d *Dispatcher) Devices(ctx context.Context) ([]Device, error) {
	return get[Device](ctx, d, "/devices", "devices")
}

// Shades fetches all shades, or a single shade when id > 0.
func (d *Dispatcher) Shades(ctx context.Context, id int) ([]Device, error) {
	endpoint := "/shades"
	if id > 0 {
		endpoint = fmt.Sprintf("/shades/%d", id)
	}

	return get[Device](ctx, d, endpoint, "shades")
}

// Scenes fetches all scenes.
func (d *Dispatcher) Scenes(ctx context.Context) ([]Scene, error) {
	return get[Scene](ctx, d, "/scenes", "scenes")
}

// Thermostats fetches all thermostats.
func (d *Dispatcher) Thermostats(ctx context.Context) ([]Device, error) {
	return get[Device](ctx, d, "/thermostats", "thermostats")
}

// Sensors fetches all sensors, or a single sensor when id > 0.
func (d *Dispatcher) Sensors(ctx context.Context, id int) ([]Device, error) {
	endpoint := "/sensors"
	if id > 0 {
		endpoint = fmt.Sprintf("/sensors/%d", id)
	}

	return get[Device](ctx, d, endpoint, "sensors")
}

// SetShades sets the positions of one or more shades in a single wire call.
// Positions are percentages and are converted to the controller's raw scale
// before sending. The controller applies each item independently and reports
// the ids that failed; the reply is classified into a BatchResult. Failed
// items are never resubmitted.
func (d *Dispatcher) SetShades(ctx context.Context, shades []ShadePosition) (BatchResult, error) {
	if len(shades) == 0 {
		return BatchResult{}, &ValidationError{Msg: "shade batch is empty"}
	}

	ids := make([]int, 0, len(shades))
	commands := make([]ShadePosition, 0, len(shades))
	for _, s := range shades {
		if s.ID < 1 {
			return BatchResult{}, &ValidationError{Msg: fmt.Sprintf("invalid shade id %d", s.ID)}
		}
		if s.Position < 0 || s.Position > 100 {
			return BatchResult{}, &ValidationError{Msg: fmt.Sprintf("shade %d position %d outside 0-100", s.ID, s.Position)}
		}
		ids = append(ids, s.ID)
		commands = append(commands, ShadePosition{ID: s.ID, Position: PercentToRaw(s.Position)})
	}

	data, err := d.Call(ctx, "/shades/SetState", http.MethodPost, map[string]any{"shades": commands}, true)
	if err != nil {
		return BatchResult{}, err
	}

	return classifyBatch(data, ids)
}

// SetThermostatModes sets the system mode of one or more thermostats in a
// single wire call.
func (d *Dispatcher) SetThermostatModes(ctx context.Context, commands []ModeCommand) (BatchResult, error) {
	if err := validateModeBatch(commands, SystemModes, "system mode"); err != nil {
		return BatchResult{}, err
	}

	data, err := d.Call(ctx, "/thermostats/mode", http.MethodPost, map[string]any{"thermostats": commands}, true)
	if err != nil {
		return BatchResult{}, err
	}

	return classifyBatch(data, commandIDs(commands))
}

// SetThermostatFanModes sets the fan mode of one or more thermostats in a
// single wire call.
func (d *Dispatcher) SetThermostatFanModes(ctx context.Context, commands []ModeCommand) (BatchResult, error) {
	if err := validateModeBatch(commands, FanModes, "fan mode"); err != nil {
		return BatchResult{}, err
	}

	data, err := d.Call(ctx, "/thermostats/fanmode", http.MethodPost, map[string]any{"thermostats": commands}, true)
	if err != nil {
		return BatchResult{}, err
	}

	return classifyBatch(data, commandIDs(commands))
}

// SetThermostatSetpoints configures target temperatures on one thermostat.
// Single-target: no batch semantics on the wire.
func (d *Dispatcher) SetThermostatSetpoints(ctx context.Context, thermostatID int, setpoints []Setpoint) (json.RawMessage, error) {
	if thermostatID < 1 {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid thermostat id %d", thermostatID)}
	}
	if len(setpoints) == 0 {
		return nil, &ValidationError{Msg: "setpoint list is empty"}
	}
	for _, sp := range setpoints {
		if !slices.Contains(SetpointTypes, sp.Type) {
			return nil, &ValidationError{Msg: fmt.Sprintf("invalid setpoint type %q", sp.Type)}
		}
	}

	body := map[string]any{"id": thermostatID, "setpoints": setpoints}

	return d.Call(ctx, "/thermostats/SetPoint", http.MethodPost, body, true)
}

// RecallScene activates a scene. Single-target: the controller answers with
// plain success or 404, no per-item error list.
func (d *Dispatcher) RecallScene(ctx context.Context, sceneID int) (json.RawMessage, error) {
	if sceneID < 1 {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid scene id %d", sceneID)}
	}

	return d.Call(ctx, fmt.Sprintf("/scenes/recall/%d", sceneID), http.MethodPost, nil, true)
}

func validateModeBatch(commands []ModeCommand, allowed []string, kind string) error {
	if len(commands) == 0 {
		return &ValidationError{Msg: "thermostat batch is empty"}
	}
	for _, c := range commands {
		if c.ID < 1 {
			return &ValidationError{Msg: fmt.Sprintf("invalid thermostat id %d", c.ID)}
		}
		if !slices.Contains(allowed, c.Mode) {
			return &ValidationError{Msg: fmt.Sprintf("invalid %s %q for thermostat %d", kind, c.Mode, c.ID)}
		}
	}

	return nil
}

func commandIDs(commands []ModeCommand) []int {
	ids := make([]int, 0, len(commands))
	for _, c := range commands {
		ids = append(ids, c.ID)
	}

	return ids
}

// classifyBatch interprets the controller's batch reply against the ids that
// were sent. Items named in errorDevices failed; everything else succeeded.
func classifyBatch(data json.RawMessage, sentIDs []int) (BatchResult, error) {
	var reply batchReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return BatchResult{}, fmt.Errorf("crestron: decode batch reply: %w", err)
	}

	failed := make(map[int]bool, len(reply.ErrorDevices))
	for _, id := range reply.ErrorDevices {
		failed[id] = true
	}

	succeeded := make([]int, 0, len(sentIDs))
	for _, id := range sentIDs {
		if !failed[id] {
			succeeded = append(succeeded, id)
		}
	}

	return NewBatchResult(succeeded, reply.ErrorDevices), nil
}
