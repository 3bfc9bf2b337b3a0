// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package generation

import (
	"fmt"
	"strings"

	"github.com/tomtom215/moodmix/internal/models"
)

// Selection bounds requested from the backend.
const (
	MinSelection = 3
	MaxSelection = 6
)

// SystemPrompt is sent as the system message with every prompt.
const SystemPrompt = "You are a music curator. You only answer with JSON."

// lineSanitizer keeps catalog fields on a single prompt line.
var lineSanitizer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "|", "/")

// BuildPrompt renders the instruction for mood over catalog. It is
// deterministic: the same mood and catalog order produce identical output.
func BuildPrompt(mood string, catalog []models.Track) (string, error) {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return "", ErrEmptyMood
	}
	if len(catalog) == 0 {
		return "", ErrEmptyCatalog
	}

	lo, hi := selectionBounds(len(catalog))

	var b strings.Builder
	fmt.Fprintf(&b, "Create a playlist for the mood %q.\n\n", lineSanitizer.Replace(mood))
	b.WriteString("Available tracks:\n")
	for i := range catalog {
		writeTrackLine(&b, &catalog[i])
	}

	b.WriteString("\nInstructions:\n")
	if lo == hi {
		fmt.Fprintf(&b, "- Select exactly %d tracks from the list above that fit the mood.\n", lo)
	} else {
		fmt.Fprintf(&b, "- Select between %d and %d tracks from the list above that fit the mood.\n", lo, hi)
	}
	b.WriteString("- Use only ids that appear in the list.\n")
	b.WriteString("- Give each selected track a weight between 0 and 1 for how strongly it fits the mood.\n")
	b.WriteString("- Order the tracks for a cohesive listening experience.\n")
	b.WriteString("- Respond ONLY with JSON of exactly this shape, with no prose and no code fences:\n")
	b.WriteString(`{"tracks":[{"id":"<track id>","weight":0.0}]}`)
	b.WriteString("\n")

	return b.String(), nil
}

func writeTrackLine(b *strings.Builder, t *models.Track) {
	b.WriteString("- id: ")
	b.WriteString(t.ID)
	b.WriteString(" | name: ")
	b.WriteString(lineSanitizer.Replace(t.Name))
	if t.Artist != "" {
		b.WriteString(" | artist: ")
		b.WriteString(lineSanitizer.Replace(t.Artist))
	}
	if t.Genre != "" {
		b.WriteString(" | genre: ")
		b.WriteString(lineSanitizer.Replace(t.Genre))
	}
	b.WriteString("\n")
}

// selectionBounds clamps the requested range to the catalog size.
func selectionBounds(n int) (lo, hi int) {
	lo, hi = MinSelection, MaxSelection
	if n < hi {
		hi = n
	}
	if n < lo {
		lo = n
	}
	return lo, hi
}
