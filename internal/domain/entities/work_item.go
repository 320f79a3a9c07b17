package entities

import (
	"strings"

	"github.com/google/uuid"
)

// EventMeetingProcessing names the transcript post-processing job
const EventMeetingProcessing = "meetings/processing"

// pipelineNamespace seeds deterministic job ids
var pipelineNamespace = uuid.MustParse("6f1c2a52-8f0e-4d4b-9a57-3f7de0b1c9a4")

// ProcessingData is the payload of a meetings/processing work item
type ProcessingData struct {
	MeetingID     string `json:"meetingId"`
	TranscriptURL string `json:"transcriptUrl"`
}

// WorkItem is a unit of asynchronous work handed to the pipeline
type WorkItem struct {
	ID        string         `json:"id"`
	EventName string         `json:"eventName"`
	Data      ProcessingData `json:"data"`
}

// NewProcessingWorkItem builds a work item whose id is stable for the same
// meeting and transcript, so redeliveries resume the same job instance.
func NewProcessingWorkItem(meetingID, transcriptURL string) WorkItem {
	key := strings.Join([]string{EventMeetingProcessing, meetingID, transcriptURL}, "|")
	return WorkItem{
		ID:        uuid.NewSHA1(pipelineNamespace, []byte(key)).String(),
		EventName: EventMeetingProcessing,
		Data: ProcessingData{
			MeetingID:     meetingID,
			TranscriptURL: transcriptURL,
		},
	}
}
