package hometools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDeviceHighConfidence(t *testing.T) {
	tools := newTestTools(t, newTestController(t), true)

	result, err := call(t, tools, "crestron_resolve_device",
		`{"utterance":"soggiorno lampadario"}`)
	require.NoError(t, err)

	p := payload(t, result)
	assert.Equal(t, true, p["resolved"])
	assert.EqualValues(t, 100, p["device_id"])
	assert.Equal(t, "Lampadario Soggiorno", p["device_name"])
	assert.GreaterOrEqual(t, p["confidence"], 0.8)
	assert.Equal(t, "soggiorno lampadario", p["original_utterance"])
}

func TestResolveDeviceClarification(t *testing.T) {
	tools := newTestTools(t, newTestController(t), true)

	result, err := call(t, tools, "crestron_resolve_device", `{"utterance":"light"}`)
	require.NoError(t, err)

	p := payload(t, result)
	assert.Equal(t, false, p["resolved"])
	assert.Equal(t, true, p["clarification_needed"])

	candidates, ok := p["candidates"].([]any)
	require.True(t, ok)
	require.Len(t, candidates, 2)

	first, ok := candidates[0].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 100, first["device_id"])
	assert.InDelta(t, 0.3, first["confidence"].(float64), 1e-9)
}

func TestResolveDeviceNoMatch(t *testing.T) {
	tools := newTestTools(t, newTestController(t), true)

	result, err := call(t, tools, "crestron_resolve_device", `{"utterance":"piscina"}`)
	require.NoError(t, err)

	p := payload(t, result)
	assert.Equal(t, false, p["resolved"])
	assert.Equal(t, "No devices matched the description", p["message"])
	assert.Contains(t, p["help"], "crestron_list_devices")
}

func TestResolveDeviceRoomHint(t *testing.T) {
	tools := newTestTools(t, newTestController(t), true)

	// The hint narrows two type-matched lights: the one in room 2 gains the
	// room bonus and leads the candidate list.
	result, err := call(t, tools, "crestron_resolve_device",
		`{"utterance":"light","preferred_room_id":2}`)
	require.NoError(t, err)

	p := payload(t, result)
	assert.Equal(t, false, p["resolved"])

	candidates, ok := p["candidates"].([]any)
	require.True(t, ok)
	first, ok := candidates[0].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 101, first["device_id"])
	assert.InDelta(t, 0.5, first["confidence"].(float64), 1e-9)
}

func TestResolveDeviceMissingUtterance(t *testing.T) {
	tools := newTestTools(t, newTestController(t), true)

	_, err := call(t, tools, "crestron_resolve_device", `{}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "utterance is required")
}

func TestResolveDeviceNotAuthenticated(t *testing.T) {
	tools := newTestTools(t, newTestController(t), false)

	result, err := call(t, tools, "crestron_resolve_device", `{"utterance":"lampadario"}`)
	require.NoError(t, err)
	assert.Contains(t, payload(t, result)["error"], "not authenticated")
}
