package lifecycle

import (
	"context"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

// Service defines the interface for the meeting lifecycle use case
type Service interface {
	// Dispatch applies one webhook event to the meeting it refers to
	Dispatch(ctx context.Context, event Event) error

	// GetMeeting returns a meeting by id
	GetMeeting(ctx context.Context, meetingID string) (*entities.Meeting, error)

	// EnqueueProcessing publishes a pipeline work item for a meeting that has
	// a transcript. With force the item gets a fresh id so no checkpoint is reused.
	EnqueueProcessing(ctx context.Context, meetingID string, force bool) (entities.WorkItem, error)

	// Cancel moves an upcoming meeting to cancelled
	Cancel(ctx context.Context, meetingID string) (*entities.Meeting, error)
}

// Bridge attaches a meeting's agent to the live call
type Bridge interface {
	Connect(ctx context.Context, meeting *entities.Meeting) (AgentHookup, error)
}

// Publisher hands work items to the pipeline
type Publisher interface {
	Publish(ctx context.Context, item entities.WorkItem) error
}
