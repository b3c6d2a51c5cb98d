package hometools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/germanamz/cresthome/pkg/crestron"
	"github.com/germanamz/cresthome/pkg/tools/toolbox"
)

type listScenesInput struct {
	RoomID         int            `json:"room_id"`
	SceneType      string         `json:"scene_type"`
	ResponseFormat responseFormat `json:"response_format"`
}

func (t *Tools) listScenesTool() toolbox.Tool {
	return toolbox.Tool{
		Name: "crestron_list_scenes",
		Description: "List all scenes with their current status and type. " +
			"Scenes are pre-configured scenarios controlling multiple devices at once. " +
			"Types include 'Lighting', 'Shade', 'Media', 'Climate', 'Lock'.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"room_id":{"type":"integer","minimum":1,"description":"Filter scenes by room ID"},"scene_type":{"type":"string","description":"Filter by scene type, e.g. 'Lighting', 'Shade'"},"response_format":{"type":"string","enum":["markdown","json"],"description":"Output format (default markdown)"}}}`),
		ReadOnly:    true,
		Idempotent:  true,
		Handler:     t.handleListScenes,
	}
}

func (t *Tools) handleListScenes(ctx context.Context, input json.RawMessage) (string, error) {
	var in listScenesInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("crestron_list_scenes: invalid input: %w", err)
	}

	format, err := in.ResponseFormat.validate()
	if err != nil {
		return "", fmt.Errorf("crestron_list_scenes: %w", err)
	}

	scenes, err := t.dispatcher.Scenes(ctx)
	if err != nil {
		return coreError("retrieve scenes", err)
	}

	filtered := scenes[:0:0]
	for _, s := range scenes {
		if in.RoomID > 0 && s.RoomID != in.RoomID {
			continue
		}
		if in.SceneType != "" && s.Type != in.SceneType {
			continue
		}
		filtered = append(filtered, s)
	}

	var result string
	if format == formatJSON {
		result, err = jsonResponse(map[string]any{
			"scenes": filtered,
			"count":  len(filtered),
			"filters": map[string]any{
				"room_id":    in.RoomID,
				"scene_type": in.SceneType,
			},
		})
		if err != nil {
			return "", err
		}
	} else {
		result = scenesMarkdown(filtered)
	}

	return crestron.Truncate(result, len(filtered)), nil
}

func scenesMarkdown(scenes []crestron.Scene) string {
	if len(scenes) == 0 {
		return "No scenes found."
	}

	groups := make(map[string][]crestron.Scene)
	for _, s := range scenes {
		k := s.Type
		if k == "" {
			k = "unknown"
		}
		groups[k] = append(groups[k], s)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "# Scenes (%d total)\n\n", len(scenes))
	for _, k := range keys {
		fmt.Fprintf(&b, "## %s Scenes (%d)\n\n", k, len(groups[k]))
		for _, s := range groups[k] {
			marker := "off"
			if s.Status {
				marker = "active"
			}
			fmt.Fprintf(&b, "- **%s** (ID: %d, %s) - Room %d\n", s.Name, s.ID, marker, s.RoomID)
		}
		b.WriteString("\n")
	}

	return b.String()
}

type activateSceneInput struct {
	SceneID int `json:"scene_id"`
}

func (t *Tools) activateSceneTool() toolbox.Tool {
	return toolbox.Tool{
		Name: "crestron_activate_scene",
		Description: "Activate (recall) a scene, applying all device states configured for it. " +
			"Use crestron_list_scenes to find scene IDs.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"scene_id":{"type":"integer","minimum":1,"description":"ID of the scene to activate"}},"required":["scene_id"]}`),
		Handler:     t.handleActivateScene,
	}
}

func (t *Tools) handleActivateScene(ctx context.Context, input json.RawMessage) (string, error) {
	var in activateSceneInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("crestron_activate_scene: invalid input: %w", err)
	}

	details, err := t.dispatcher.RecallScene(ctx, in.SceneID)
	if err != nil {
		var remote *crestron.RemoteError
		if errors.As(err, &remote) && remote.StatusCode == http.StatusNotFound {
			return jsonResponse(map[string]any{
				"status": "error",
				"error":  fmt.Sprintf("Scene with ID %d not found", in.SceneID),
				"help":   "Use crestron_list_scenes to see available scenes",
			})
		}

		return coreError("activate scene", err)
	}

	return jsonResponse(map[string]any{
		"status":   "success",
		"scene_id": in.SceneID,
		"message":  "Scene activated successfully",
		"details":  json.RawMessage(details),
	})
}
