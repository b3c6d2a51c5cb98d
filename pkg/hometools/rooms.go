package hometools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/germanamz/cresthome/pkg/crestron"
	"github.com/germanamz/cresthome/pkg/tools/toolbox"
)

type listRoomsInput struct {
	ResponseFormat responseFormat `json:"response_format"`
}

func (t *Tools) listRoomsTool() toolbox.Tool {
	return toolbox.Tool{
		Name: "crestron_list_rooms",
		Description: "Retrieve all rooms configured in the Crestron Home system. " +
			"Rooms are spatial groupings that contain devices; list them first to understand the home's organization.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"response_format":{"type":"string","enum":["markdown","json"],"description":"Output format (default markdown)"}}}`),
		ReadOnly:    true,
		Idempotent:  true,
		Handler:     t.handleListRooms,
	}
}

func (t *Tools) handleListRooms(ctx context.Context, input json.RawMessage) (string, error) {
	var in listRoomsInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("crestron_list_rooms: invalid input: %w", err)
	}

	format, err := in.ResponseFormat.validate()
	if err != nil {
		return "", fmt.Errorf("crestron_list_rooms: %w", err)
	}

	rooms, err := t.dispatcher.Rooms(ctx)
	if err != nil {
		return coreError("retrieve rooms", err)
	}

	var result string
	if format == formatJSON {
		result, err = jsonResponse(map[string]any{"rooms": rooms, "count": len(rooms)})
		if err != nil {
			return "", err
		}
	} else if len(rooms) == 0 {
		result = "No rooms found in the Crestron Home system."
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "# Rooms (%d total)\n\n", len(rooms))
		for _, room := range rooms {
			fmt.Fprintf(&b, "- **%s** (ID: %d)\n", room.Name, room.ID)
		}
		result = b.String()
	}

	return crestron.Truncate(result, len(rooms)), nil
}
