package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventParser_Parse(t *testing.T) {
	parser := NewEventParser(nil)

	tests := []struct {
		name      string
		body      string
		wantType  EventType
		meetingID string
	}{
		{
			name:      "session started reads custom meeting id",
			body:      `{"type":"call.session_started","call_cid":"default:ignored","call":{"cid":"default:ignored","custom":{"meetingId":"m-1"}}}`,
			wantType:  EventSessionStarted,
			meetingID: "m-1",
		},
		{
			name:      "session ended reads custom meeting id",
			body:      `{"type":"call.session_ended","call":{"custom":{"meetingId":"m-2"}}}`,
			wantType:  EventSessionEnded,
			meetingID: "m-2",
		},
		{
			name:      "participant left reads call cid",
			body:      `{"type":"call.session_participant_left","call_cid":"default:m-3","participant":{"user":{"id":"u-1"}}}`,
			wantType:  EventParticipantLeft,
			meetingID: "m-3",
		},
		{
			name:      "transcription ready reads call cid",
			body:      `{"type":"call.transcription_ready","call_cid":"default:m-4","call_transcription":{"url":"https://cdn.example.com/t.jsonl"}}`,
			wantType:  EventTranscriptionReady,
			meetingID: "m-4",
		},
		{
			name:      "recording ready reads call cid",
			body:      `{"type":"call.recording_ready","call_cid":"default:m-5","call_recording":{"url":"https://cdn.example.com/r.mp4"}}`,
			wantType:  EventRecordingReady,
			meetingID: "m-5",
		},
		{
			name:      "session started without custom data",
			body:      `{"type":"call.session_started","call":{}}`,
			wantType:  EventSessionStarted,
			meetingID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := parser.Parse([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, event.Type())
			assert.Equal(t, tt.meetingID, event.MeetingID())
		})
	}
}

func TestEventParser_Unknown(t *testing.T) {
	parser := NewEventParser(nil)

	event, err := parser.Parse([]byte(`{"type":"call.member_added"}`))
	require.NoError(t, err)
	assert.IsType(t, &Unknown{}, event)
	assert.Equal(t, EventType("call.member_added"), event.Type())

	event, err = parser.Parse([]byte(`{"call_cid":"default:m-1"}`))
	require.NoError(t, err)
	assert.IsType(t, &Unknown{}, event)
}

func TestEventParser_Malformed(t *testing.T) {
	parser := NewEventParser(nil)

	bodies := []string{
		`not json`,
		`{"type":"call.transcription_ready","call_cid":"default:m-1"}`,
		`{"type":"call.transcription_ready","call_cid":"default:m-1","call_transcription":{"url":"not a url"}}`,
		`{"type":"call.recording_ready","call_cid":"no-separator","call_recording":{"url":"https://x.example.com/r"}}`,
		`{"type":"call.session_started","call":"oops"}`,
	}

	for _, body := range bodies {
		_, err := parser.Parse([]byte(body))
		assert.ErrorIs(t, err, ErrMalformedEvent, body)
	}
}
