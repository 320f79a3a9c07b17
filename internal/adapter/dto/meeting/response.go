package meeting

import "time"

// MeetingResponse represents a meeting in responses
type MeetingResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	UserID        string     `json:"user_id"`
	AgentID       string     `json:"agent_id"`
	Status        string     `json:"status"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	Duration      *int64     `json:"duration,omitempty"`
	TranscriptURL *string    `json:"transcript_url,omitempty"`
	RecordingURL  *string    `json:"recording_url,omitempty"`
	Summary       *string    `json:"summary,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ProcessMeetingResponse reports the enqueued pipeline job
type ProcessMeetingResponse struct {
	JobID         string `json:"job_id"`
	MeetingID     string `json:"meeting_id"`
	TranscriptURL string `json:"transcript_url"`
}
