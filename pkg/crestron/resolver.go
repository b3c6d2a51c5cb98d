package crestron

import (
	"context"
	"math"
	"sort"
	"strings"
)

// resolveThreshold is the confidence a top candidate needs to be returned as
// the single resolved device. The weights below are tuned so an exact name
// match plus any secondary signal (type or room) clears the bar, while a
// bare type-only or room-only match does not — "turn on the light" in a
// multi-light room must come back as a clarification, not a guess.
const resolveThreshold = 0.8

// maxCandidates caps how many alternatives a clarification carries.
const maxCandidates = 5

const (
	nameWeight    = 0.5
	typeWeight    = 0.3
	roomWeight    = 0.2
	overlapWeight = 0.1
)

// Candidate is one scored device from a resolution pass. Ephemeral: computed
// per call, never persisted.
type Candidate struct {
	Device Device
	Score  float64
}

// Resolution is the outcome of resolving an utterance. Either Resolved is
// true and Device is the single confident match, or the caller needs to
// clarify using Candidates (which may be empty when nothing matched at all).
type Resolution struct {
	Resolved   bool
	Confidence float64
	Device     *Device
	Candidates []Candidate
}

// Resolver maps free-text device descriptions to device identifiers using
// multi-factor substring and token-overlap scoring over a fresh device and
// room listing. Matching is case-insensitive and language-agnostic: it only
// compares the utterance against whatever names the controller reports.
type Resolver struct {
	dispatcher *Dispatcher
}

// NewResolver creates a Resolver reading through the given dispatcher.
func NewResolver(dispatcher *Dispatcher) *Resolver {
	return &Resolver{dispatcher: dispatcher}
}

// Resolve scores every device against the utterance and decides between a
// single confident match and a clarification set.
//
// Per-device scoring, clamped to 1.0:
//   - +0.5 when the device name is a substring of the utterance or vice
//     versa, or when every token of the name appears in the utterance
//     (names are word-order-insensitive: "soggiorno lampadario" names the
//     device "Lampadario Soggiorno")
//   - +0.3 when the device type appears in the utterance
//   - +0.2 when preferredRoomID matches the device's room; otherwise +0.2
//     when the device's room name appears in the utterance (the explicit
//     hint takes precedence; the two bonuses never stack)
//   - +0.1 per distinct whitespace token shared by utterance and device name
//
// Devices scoring zero are dropped. The sort is stable, so ties keep the
// controller's listing order, and the result is deterministic for a given
// listing.
func (r *Resolver) Resolve(ctx context.Context, utterance string, preferredRoomID int) (Resolution, error) {
	if strings.TrimSpace(utterance) == "" {
		return Resolution{}, &ValidationError{Msg: "utterance is empty"}
	}

	devices, err := r.dispatcher.Devices(ctx)
	if err != nil {
		return Resolution{}, err
	}

	rooms, err := r.dispatcher.Rooms(ctx)
	if err != nil {
		return Resolution{}, err
	}

	roomNames := make(map[int]string, len(rooms))
	for _, room := range rooms {
		roomNames[room.ID] = strings.ToLower(room.Name)
	}

	lowered := strings.ToLower(utterance)

	candidates := make([]Candidate, 0, len(devices))
	for _, device := range devices {
		score := scoreDevice(device, lowered, preferredRoomID, roomNames)
		if score > 0 {
			candidates = append(candidates, Candidate{Device: device, Score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) == 0 {
		return Resolution{}, nil
	}

	if candidates[0].Score >= resolveThreshold {
		top := candidates[0]

		return Resolution{
			Resolved:   true,
			Confidence: top.Score,
			Device:     &top.Device,
		}, nil
	}

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	return Resolution{
		Confidence: candidates[0].Score,
		Candidates: candidates,
	}, nil
}

func scoreDevice(device Device, utterance string, preferredRoomID int, roomNames map[int]string) float64 {
	score := 0.0
	name := strings.ToLower(device.Name)
	deviceType := strings.ToLower(string(device.Type))

	if nameMatches(utterance, name) {
		score += nameWeight
	}

	if deviceType != "" && strings.Contains(utterance, deviceType) {
		score += typeWeight
	}

	if preferredRoomID > 0 && device.RoomID == preferredRoomID {
		score += roomWeight
	} else if roomName, ok := roomNames[device.RoomID]; ok && roomName != "" && strings.Contains(utterance, roomName) {
		score += roomWeight
	}

	score += overlapWeight * float64(tokenOverlap(utterance, name))

	return math.Min(score, 1.0)
}

// nameMatches reports whether the device name and the utterance name the
// same thing: one is a substring of the other, or the utterance contains
// every token of the name regardless of word order.
func nameMatches(utterance, name string) bool {
	if name == "" {
		return false
	}
	if strings.Contains(utterance, name) || strings.Contains(name, utterance) {
		return true
	}

	nameTokens := strings.Fields(name)
	if len(nameTokens) == 0 {
		return false
	}

	tokens := make(map[string]bool)
	for _, t := range strings.Fields(utterance) {
		tokens[t] = true
	}
	for _, t := range nameTokens {
		if !tokens[t] {
			return false
		}
	}

	return true
}

// tokenOverlap counts distinct whitespace-separated tokens the two strings
// share; repeats count once.
func tokenOverlap(a, b string) int {
	tokens := make(map[string]bool)
	for _, t := range strings.Fields(a) {
		tokens[t] = true
	}

	seen := make(map[string]bool)
	count := 0
	for _, t := range strings.Fields(b) {
		if tokens[t] && !seen[t] {
			seen[t] = true
			count++
		}
	}

	return count
}
