package pipeline

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

// maxLineSize bounds a single transcript line
const maxLineSize = 1 << 20

// ErrMissingSpeaker is returned for a transcript line without a speaker id
var ErrMissingSpeaker = errors.New("missing speaker_id")

// ParseJSONL decodes a newline-delimited JSON transcript. Blank lines are
// skipped; any other line that is not an object carrying a speaker id fails
// the parse.
func ParseJSONL(raw string) ([]entities.TranscriptItem, error) {
	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	items := make([]entities.TranscriptItem, 0)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var item *entities.TranscriptItem
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("transcript line %d: %w", lineNo, err)
		}
		if item == nil || item.SpeakerID == "" {
			return nil, fmt.Errorf("transcript line %d: %w", lineNo, ErrMissingSpeaker)
		}
		items = append(items, *item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	return items, nil
}

// EncodeJSONL is the inverse of ParseJSONL for enriched items
func EncodeJSONL(items []entities.EnrichedTranscriptItem) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// SpeakerIDs returns the distinct speaker ids in order of first appearance
func SpeakerIDs(items []entities.TranscriptItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0)
	for _, item := range items {
		if _, ok := seen[item.SpeakerID]; ok {
			continue
		}
		seen[item.SpeakerID] = struct{}{}
		ids = append(ids, item.SpeakerID)
	}
	return ids
}

// Enrich attaches a speaker name to every item. Users take precedence over
// agents with the same id; unresolved speakers are named "Unknown".
func Enrich(items []entities.TranscriptItem, users []*entities.User, agents []*entities.Agent) []entities.EnrichedTranscriptItem {
	names := make(map[string]string, len(users)+len(agents))
	for _, a := range agents {
		names[a.ID] = a.Name
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}

	out := make([]entities.EnrichedTranscriptItem, 0, len(items))
	for _, item := range items {
		name, ok := names[item.SpeakerID]
		if !ok {
			name = entities.UnknownSpeakerName
		}
		out = append(out, entities.EnrichedTranscriptItem{
			TranscriptItem: item,
			User:           entities.Speaker{Name: name},
		})
	}
	return out
}
