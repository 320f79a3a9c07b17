package repositories

import (
	"context"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// FindByID finds a meeting by ID
	FindByID(ctx context.Context, id string) (*entities.Meeting, error)

	// Transition moves the meeting to status when its current status passes
	// guard, writing fields in the same statement. It returns
	// entities.ErrMeetingNotFound when no row matched.
	Transition(ctx context.Context, id string, guard entities.StatusGuard, status entities.MeetingStatus, fields map[string]interface{}) (*entities.Meeting, error)

	// SetTranscriptURL records where the transcript artifact lives
	SetTranscriptURL(ctx context.Context, id, url string) (*entities.Meeting, error)

	// SetRecordingURL records where the recording artifact lives
	SetRecordingURL(ctx context.Context, id, url string) (*entities.Meeting, error)

	// SaveSummary stores the summary and marks the meeting completed
	SaveSummary(ctx context.Context, id, summary string) error
}
