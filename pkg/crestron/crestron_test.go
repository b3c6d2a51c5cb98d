package crestron

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testAuthToken = "test-token-123"
	testAuthKey   = "session-key-abc"
)

// mockController is a minimal in-process stand-in for a Crestron Home
// controller, backed by an httptest TLS server (the real controller only
// speaks HTTPS with a self-signed certificate).
type mockController struct {
	server   *httptest.Server
	requests atomic.Int64

	// failingShadeIDs are reported in errorDevices on /shades/SetState.
	failingShadeIDs []int
}

func newMockController(t *testing.T) *mockController {
	t.Helper()

	m := &mockController{}
	m.server = httptest.NewTLSServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.server.Close)

	return m
}

// host returns the host:port the SessionManager expects.
func (m *mockController) host() string {
	return strings.TrimPrefix(m.server.URL, "https://")
}

func (m *mockController) client() *http.Client {
	return m.server.Client()
}

func (m *mockController) handle(w http.ResponseWriter, r *http.Request) {
	m.requests.Add(1)

	path := strings.TrimPrefix(r.URL.Path, "/cws/api")

	if path == "/login" {
		if r.Header.Get(authTokenHeader) != testAuthToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid token"})

			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"AuthKey": testAuthKey, "version": "2.0"})

		return
	}

	if r.Header.Get(authKeyHeader) != testAuthKey {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Not authenticated"})

		return
	}

	switch {
	case path == "/rooms":
		writeJSON(w, http.StatusOK, map[string]any{"rooms": testRooms()})
	case path == "/devices":
		writeJSON(w, http.StatusOK, map[string]any{"devices": testDevices()})
	case path == "/shades":
		writeJSON(w, http.StatusOK, map[string]any{"shades": testShades()})
	case path == "/scenes":
		writeJSON(w, http.StatusOK, map[string]any{"scenes": testScenes()})
	case path == "/thermostats":
		writeJSON(w, http.StatusOK, map[string]any{"thermostats": testThermostats()})
	case path == "/sensors":
		writeJSON(w, http.StatusOK, map[string]any{"sensors": testSensors()})
	case path == "/shades/SetState" && r.Method == http.MethodPost:
		m.handleSetShades(w, r)
	case path == "/thermostats/mode" && r.Method == http.MethodPost,
		path == "/thermostats/fanmode" && r.Method == http.MethodPost:
		writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
	case path == "/thermostats/SetPoint" && r.Method == http.MethodPost:
		writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
	case strings.HasPrefix(path, "/scenes/recall/"):
		id := strings.TrimPrefix(path, "/scenes/recall/")
		if id == "999" {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "Scene with ID 999 not found in the system."})

			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
	case path == "/boom":
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal failure"})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Endpoint not found"})
	}
}

func (m *mockController) handleSetShades(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Shades []struct {
			ID       int `json:"id"`
			Position int `json:"position"`
		} `json:"shades"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid JSON"})

		return
	}

	failing := make(map[int]bool, len(m.failingShadeIDs))
	for _, id := range m.failingShadeIDs {
		failing[id] = true
	}

	var succeeded, failed []int
	for _, cmd := range body.Shades {
		if failing[cmd.ID] {
			failed = append(failed, cmd.ID)
		} else {
			succeeded = append(succeeded, cmd.ID)
		}
	}

	if len(failed) > 0 {
		status := "partial"
		if len(succeeded) == 0 {
			status = "failure"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":       status,
			"errorMessage": fmt.Sprintf("Shade(s) with ID(s) %v failed to update.", failed),
			"errorDevices": failed,
		})

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func testRooms() []map[string]any {
	return []map[string]any{
		{"id": 1, "name": "Soggiorno"},
		{"id": 2, "name": "Cucina"},
		{"id": 3, "name": "Camera da Letto"},
	}
}

func testDevices() []map[string]any {
	return []map[string]any{
		{"id": 100, "name": "Lampadario Soggiorno", "type": "light", "roomId": 1, "level": 32768},
		{"id": 101, "name": "Applique Cucina", "type": "light", "roomId": 2, "level": 0},
		{"id": 200, "name": "Tenda Soggiorno", "type": "shade", "subType": "Roller", "roomId": 1, "position": 65535, "connectionStatus": "online"},
		{"id": 300, "name": "Termostato", "type": "thermostat", "roomId": 1, "mode": "HEAT", "currentTemperature": 21, "temperatureUnits": "C", "currentFanMode": "AUTO"},
		{"id": 400, "name": "Sensore Porta", "type": "sensor", "subType": "DoorSensor", "roomId": 3, "door status": "closed", "battery level": "ok"},
	}
}

func testShades() []map[string]any {
	return []map[string]any{
		{"id": 200, "name": "Tenda Soggiorno", "type": "shade", "subType": "Roller", "roomId": 1, "position": 65535, "connectionStatus": "online"},
		{"id": 201, "name": "Tenda Cucina", "type": "shade", "subType": "Roller", "roomId": 2, "position": 0, "connectionStatus": "offline"},
	}
}

func testScenes() []map[string]any {
	return []map[string]any{
		{"id": 1, "name": "Film", "type": "Lighting", "roomId": 1, "status": false},
		{"id": 2, "name": "Notte", "type": "Lighting", "roomId": 3, "status": true},
	}
}

func testThermostats() []map[string]any {
	return []map[string]any{
		{
			"id": 300, "name": "Termostato", "type": "thermostat", "roomId": 1,
			"mode": "HEAT", "currentTemperature": 21, "temperatureUnits": "C",
			"currentFanMode": "AUTO", "schedulerState": "RUN",
			"setPoint":             map[string]any{"type": "Heat", "temperature": 22, "minValue": 5, "maxValue": 35},
			"availableSystemModes": []string{"HEAT", "OFF"},
		},
	}
}

func testSensors() []map[string]any {
	return []map[string]any{
		{"id": 400, "name": "Sensore Porta", "type": "sensor", "subType": "DoorSensor", "roomId": 3, "door status": "closed", "battery level": "ok"},
		{"id": 401, "name": "Sensore Presenza", "type": "sensor", "subType": "OccupancySensor", "roomId": 1, "presence": "occupied"},
	}
}

// newTestDispatcher authenticates against the mock controller and returns a
// ready dispatcher.
func newTestDispatcher(t *testing.T, mock *mockController) (*SessionManager, *Dispatcher) {
	t.Helper()

	sessions := NewSessionManager(mock.client())
	_, err := sessions.Authenticate(context.Background(), mock.host(), testAuthToken)
	require.NoError(t, err)

	return sessions, NewDispatcher(sessions, mock.client())
}
