package entities

import "errors"

// Domain errors
var (
	// Meeting errors
	ErrMeetingNotFound     = errors.New("meeting not found")
	ErrMissingMeetingID    = errors.New("missing meeting id")
	ErrMeetingInvalidState = errors.New("meeting is in invalid state")
	ErrTranscriptMissing   = errors.New("meeting has no transcript")

	// Agent errors
	ErrAgentNotFound = errors.New("agent not found")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidName  = errors.New("invalid name")
)
