package meeting

// ProcessMeetingRequest represents the request to re-run the transcript pipeline
type ProcessMeetingRequest struct {
	// Force starts a fresh job instead of resuming the previous one
	Force bool `json:"force"`
}
