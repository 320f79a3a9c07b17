package lifecycle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-agent/pkg/validator"
)

// EventType is the provider's wire name for a webhook event
type EventType string

const (
	EventSessionStarted     EventType = "call.session_started"
	EventParticipantLeft    EventType = "call.session_participant_left"
	EventSessionEnded       EventType = "call.session_ended"
	EventTranscriptionReady EventType = "call.transcription_ready"
	EventRecordingReady     EventType = "call.recording_ready"
)

// ErrMalformedEvent is returned for bodies that are not a valid event
var ErrMalformedEvent = errors.New("malformed event payload")

// Event is one decoded webhook event. MeetingID is derived the way each
// kind carries it and may be empty.
type Event interface {
	Type() EventType
	MeetingID() string
}

// CallCustom is the custom data attached to a call when it was created
type CallCustom struct {
	MeetingID string `json:"meetingId"`
}

// CallInfo is the call object embedded in session events
type CallInfo struct {
	CID    string     `json:"cid"`
	Custom CallCustom `json:"custom"`
}

// SessionStarted is sent when the first participant joins the call
type SessionStarted struct {
	CallCID string   `json:"call_cid" validate:"omitempty,call_cid"`
	Call    CallInfo `json:"call"`
}

func (e *SessionStarted) Type() EventType   { return EventSessionStarted }
func (e *SessionStarted) MeetingID() string { return e.Call.Custom.MeetingID }

// SessionEnded is sent when the call session closes
type SessionEnded struct {
	CallCID string   `json:"call_cid" validate:"omitempty,call_cid"`
	Call    CallInfo `json:"call"`
}

func (e *SessionEnded) Type() EventType   { return EventSessionEnded }
func (e *SessionEnded) MeetingID() string { return e.Call.Custom.MeetingID }

// ParticipantRef identifies who left
type ParticipantRef struct {
	User struct {
		ID string `json:"id"`
	} `json:"user"`
}

// ParticipantLeft is sent whenever a participant leaves the call
type ParticipantLeft struct {
	CallCID     string         `json:"call_cid" validate:"omitempty,call_cid"`
	Participant ParticipantRef `json:"participant"`
}

func (e *ParticipantLeft) Type() EventType   { return EventParticipantLeft }
func (e *ParticipantLeft) MeetingID() string { return meetingIDFromCID(e.CallCID) }

// Artifact points at a file produced by the provider
type Artifact struct {
	URL string `json:"url" validate:"required,url"`
}

// TranscriptionReady is sent once the call transcript has been uploaded
type TranscriptionReady struct {
	CallCID           string   `json:"call_cid" validate:"omitempty,call_cid"`
	CallTranscription Artifact `json:"call_transcription"`
}

func (e *TranscriptionReady) Type() EventType   { return EventTranscriptionReady }
func (e *TranscriptionReady) MeetingID() string { return meetingIDFromCID(e.CallCID) }

// RecordingReady is sent once the call recording has been uploaded
type RecordingReady struct {
	CallCID       string   `json:"call_cid" validate:"omitempty,call_cid"`
	CallRecording Artifact `json:"call_recording"`
}

func (e *RecordingReady) Type() EventType   { return EventRecordingReady }
func (e *RecordingReady) MeetingID() string { return meetingIDFromCID(e.CallCID) }

// Unknown is any event kind the service does not act on
type Unknown struct {
	Kind EventType
}

func (e *Unknown) Type() EventType   { return e.Kind }
func (e *Unknown) MeetingID() string { return "" }

// meetingIDFromCID extracts the call id from "<call type>:<call id>"
func meetingIDFromCID(cid string) string {
	_, id, ok := strings.Cut(cid, ":")
	if !ok {
		return ""
	}
	return id
}

// EventParser decodes raw webhook bodies into typed events
type EventParser struct {
	validator *validator.CustomValidator
}

// NewEventParser creates a parser validating with v
func NewEventParser(v *validator.CustomValidator) *EventParser {
	if v == nil {
		v = validator.New()
	}
	return &EventParser{validator: v}
}

// Parse decodes body. A missing or unrecognised type yields *Unknown.
func (p *EventParser) Parse(body []byte) (Event, error) {
	var envelope struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	var event Event
	switch envelope.Type {
	case EventSessionStarted:
		event = &SessionStarted{}
	case EventParticipantLeft:
		event = &ParticipantLeft{}
	case EventSessionEnded:
		event = &SessionEnded{}
	case EventTranscriptionReady:
		event = &TranscriptionReady{}
	case EventRecordingReady:
		event = &RecordingReady{}
	default:
		return &Unknown{Kind: envelope.Type}, nil
	}

	if err := json.Unmarshal(body, event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := p.validator.Validate(event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	return event, nil
}
