// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package generation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// DefaultWeight replaces a missing or non-numeric weight.
const DefaultWeight = 0.5

// Selection is one validated track choice from the backend, in the order
// the backend returned it. TrackID is not yet checked against the catalog.
type Selection struct {
	TrackID string  `json:"id"`
	Weight  float64 `json:"weight"`
}

// ParseSelections turns raw backend text into selections.
//
// Surrounding code fences and prose are stripped before parsing. The
// result must be an object with a non-empty "tracks" array. Records
// without a usable id are skipped; weights default to DefaultWeight when
// missing or non-numeric and are clamped to [0,1].
func ParseSelections(raw string) ([]Selection, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidGenerationResponse)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &top); err != nil {
		// Tolerate prose around a single JSON object.
		obj, ok := extractObject(text)
		if !ok {
			return nil, fmt.Errorf("%w: not a JSON object: %v", ErrInvalidGenerationResponse, err)
		}
		if err := json.Unmarshal([]byte(obj), &top); err != nil {
			return nil, fmt.Errorf("%w: not a JSON object: %v", ErrInvalidGenerationResponse, err)
		}
	}

	tracksRaw, ok := top["tracks"]
	if !ok {
		return nil, fmt.Errorf("%w: missing \"tracks\" field", ErrInvalidGenerationResponse)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(tracksRaw, &records); err != nil || records == nil {
		return nil, fmt.Errorf("%w: \"tracks\" is not an array", ErrInvalidGenerationResponse)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: \"tracks\" is empty", ErrInvalidGenerationResponse)
	}

	selections := make([]Selection, 0, len(records))
	for _, rec := range records {
		sel, ok := parseRecord(rec)
		if !ok {
			continue
		}
		selections = append(selections, sel)
	}

	if len(selections) == 0 {
		return nil, fmt.Errorf("%w: no record carries a track id", ErrInvalidGenerationResponse)
	}
	return selections, nil
}

func parseRecord(rec json.RawMessage) (Selection, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rec, &fields); err != nil {
		return Selection{}, false
	}

	id := stringField(fields["id"])
	if id == "" {
		id = stringField(fields["track_id"])
	}
	if id == "" {
		return Selection{}, false
	}

	return Selection{TrackID: id, Weight: parseWeight(fields["weight"])}, true
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// parseWeight accepts JSON numbers and numeric strings.
func parseWeight(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return DefaultWeight
	}

	var w float64
	if err := json.Unmarshal(raw, &w); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return DefaultWeight
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return DefaultWeight
		}
		w = parsed
	}

	if math.IsNaN(w) || math.IsInf(w, 0) {
		return DefaultWeight
	}
	return math.Min(1, math.Max(0, w))
}

// stripCodeFence removes a surrounding ``` or ```lang fence and whitespace.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		// Drop the info string ("json") on the opening line.
		if !strings.ContainsAny(text[:nl], "{[") {
			text = text[nl+1:]
		}
	} else {
		text = strings.TrimPrefix(text, "json")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// extractObject returns the text from the first '{' to the last '}'.
func extractObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
