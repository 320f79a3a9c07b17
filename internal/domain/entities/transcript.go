package entities

// UnknownSpeakerName is used when a speaker id matches neither a user nor an agent
const UnknownSpeakerName = "Unknown"

// TranscriptItem is one line of the provider's JSONL transcript
type TranscriptItem struct {
	SpeakerID string `json:"speaker_id"`
	Type      string `json:"type"`
	Text      string `json:"text"`
	StartTS   int64  `json:"start_ts"`
	StopTS    int64  `json:"stop_ts"`
}

// Speaker is the display identity attached to an enriched item
type Speaker struct {
	Name string `json:"name"`
}

// EnrichedTranscriptItem is a transcript item with its speaker resolved
type EnrichedTranscriptItem struct {
	TranscriptItem
	User Speaker `json:"user"`
}
