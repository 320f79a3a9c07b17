package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/domain/repositories"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/external/livekit"
)

// ErrEnqueueFailed wraps work item publish failures
var ErrEnqueueFailed = errors.New("enqueue processing failed")

// LifecycleService drives meeting status from call provider events
type LifecycleService struct {
	meetings  repositories.MeetingRepository
	bridge    Bridge
	provider  livekit.Client
	publisher Publisher
	callType  string
	logger    *zap.Logger
	now       func() time.Time
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(
	meetings repositories.MeetingRepository,
	bridge Bridge,
	provider livekit.Client,
	publisher Publisher,
	callType string,
	logger *zap.Logger,
) *LifecycleService {
	return &LifecycleService{
		meetings:  meetings,
		bridge:    bridge,
		provider:  provider,
		publisher: publisher,
		callType:  callType,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var _ Service = (*LifecycleService)(nil)

// Dispatch applies event. Unknown kinds are ignored.
func (s *LifecycleService) Dispatch(ctx context.Context, event Event) error {
	switch ev := event.(type) {
	case *SessionStarted:
		return s.handleSessionStarted(ctx, ev)
	case *ParticipantLeft:
		return s.handleParticipantLeft(ctx, ev)
	case *SessionEnded:
		return s.handleSessionEnded(ctx, ev)
	case *TranscriptionReady:
		return s.handleTranscriptionReady(ctx, ev)
	case *RecordingReady:
		return s.handleRecordingReady(ctx, ev)
	default:
		s.debug("lifecycle.event.ignored", zap.String("type", string(event.Type())))
		return nil
	}
}

func (s *LifecycleService) handleSessionStarted(ctx context.Context, ev *SessionStarted) error {
	meetingID := ev.MeetingID()
	if meetingID == "" {
		return entities.ErrMissingMeetingID
	}

	meeting, err := s.meetings.Transition(ctx, meetingID, entities.GuardStartable, entities.MeetingStatusActive, map[string]interface{}{
		"started_at": s.now(),
	})
	if err != nil {
		return err
	}
	s.info("lifecycle.meeting.active", zap.String("meeting_id", meetingID))

	// The status change stays committed whatever the bridge does.
	hookup, err := s.bridge.Connect(ctx, meeting)
	if err != nil {
		return err
	}
	if hookup.Err != nil && s.logger != nil {
		s.logger.Warn("lifecycle.agent.connect_failed",
			zap.String("meeting_id", meetingID),
			zap.String("agent_id", hookup.AgentID),
			zap.Error(hookup.Err),
		)
	}
	return nil
}

func (s *LifecycleService) handleParticipantLeft(ctx context.Context, ev *ParticipantLeft) error {
	meetingID := ev.MeetingID()
	if meetingID == "" {
		return entities.ErrMissingMeetingID
	}

	call := s.provider.Call(s.callType, meetingID)
	state, err := call.Query(ctx)
	if err != nil {
		s.warn("lifecycle.call.query_failed", meetingID, err)
		return nil
	}

	if len(state.Participants) > 0 {
		s.debug("lifecycle.call.still_occupied",
			zap.String("meeting_id", meetingID),
			zap.Int("participants", len(state.Participants)),
		)
		return nil
	}

	if err := call.End(ctx); err != nil {
		s.warn("lifecycle.call.end_failed", meetingID, err)
		return nil
	}
	s.info("lifecycle.call.ended", zap.String("meeting_id", meetingID))
	return nil
}

func (s *LifecycleService) handleSessionEnded(ctx context.Context, ev *SessionEnded) error {
	meetingID := ev.MeetingID()
	if meetingID == "" {
		return entities.ErrMissingMeetingID
	}

	_, err := s.meetings.Transition(ctx, meetingID, entities.GuardEndable, entities.MeetingStatusProcessing, map[string]interface{}{
		"ended_at": s.now(),
	})
	if err != nil {
		return err
	}
	s.info("lifecycle.meeting.processing", zap.String("meeting_id", meetingID))
	return nil
}

func (s *LifecycleService) handleTranscriptionReady(ctx context.Context, ev *TranscriptionReady) error {
	meetingID := ev.MeetingID()
	if meetingID == "" {
		return entities.ErrMissingMeetingID
	}

	meeting, err := s.meetings.SetTranscriptURL(ctx, meetingID, ev.CallTranscription.URL)
	if err != nil {
		return err
	}

	item := entities.NewProcessingWorkItem(meeting.ID, ev.CallTranscription.URL)
	if err := s.publisher.Publish(ctx, item); err != nil {
		return fmt.Errorf("%w: %w", ErrEnqueueFailed, err)
	}
	s.info("lifecycle.pipeline.enqueued",
		zap.String("meeting_id", meetingID),
		zap.String("job_id", item.ID),
	)
	return nil
}

func (s *LifecycleService) handleRecordingReady(ctx context.Context, ev *RecordingReady) error {
	meetingID := ev.MeetingID()
	if meetingID == "" {
		return entities.ErrMissingMeetingID
	}

	if _, err := s.meetings.SetRecordingURL(ctx, meetingID, ev.CallRecording.URL); err != nil {
		return err
	}
	s.info("lifecycle.recording.stored", zap.String("meeting_id", meetingID))
	return nil
}

// GetMeeting returns a meeting by id
func (s *LifecycleService) GetMeeting(ctx context.Context, meetingID string) (*entities.Meeting, error) {
	return s.meetings.FindByID(ctx, meetingID)
}

// EnqueueProcessing publishes a work item for the meeting's stored transcript
func (s *LifecycleService) EnqueueProcessing(ctx context.Context, meetingID string, force bool) (entities.WorkItem, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return entities.WorkItem{}, err
	}
	if meeting.TranscriptURL == nil || *meeting.TranscriptURL == "" {
		return entities.WorkItem{}, entities.ErrTranscriptMissing
	}

	item := entities.NewProcessingWorkItem(meeting.ID, *meeting.TranscriptURL)
	if force {
		item.ID = uuid.NewString()
	}

	if err := s.publisher.Publish(ctx, item); err != nil {
		return entities.WorkItem{}, fmt.Errorf("%w: %w", ErrEnqueueFailed, err)
	}
	s.info("lifecycle.pipeline.enqueued",
		zap.String("meeting_id", meetingID),
		zap.String("job_id", item.ID),
		zap.Bool("force", force),
	)
	return item, nil
}

// Cancel moves an upcoming meeting to cancelled
func (s *LifecycleService) Cancel(ctx context.Context, meetingID string) (*entities.Meeting, error) {
	meeting, err := s.meetings.Transition(ctx, meetingID, entities.GuardCancellable, entities.MeetingStatusCancelled, nil)
	if err == nil {
		s.info("lifecycle.meeting.cancelled", zap.String("meeting_id", meetingID))
		return meeting, nil
	}
	if !errors.Is(err, entities.ErrMeetingNotFound) {
		return nil, err
	}

	// Tell "no such meeting" apart from "not cancellable".
	current, findErr := s.meetings.FindByID(ctx, meetingID)
	if findErr != nil {
		return nil, findErr
	}
	return current, fmt.Errorf("%w: %s", entities.ErrMeetingInvalidState, current.Status)
}

func (s *LifecycleService) info(msg string, fields ...zap.Field) {
	if s.logger != nil {
		s.logger.Info(msg, fields...)
	}
}

func (s *LifecycleService) debug(msg string, fields ...zap.Field) {
	if s.logger != nil {
		s.logger.Debug(msg, fields...)
	}
}

func (s *LifecycleService) warn(msg, meetingID string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, zap.String("meeting_id", meetingID), zap.Error(err))
	}
}
