package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

// MeetingRepository implements the meeting repository interface using GORM
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// FindByID finds a meeting by ID
func (r *MeetingRepository) FindByID(ctx context.Context, id string) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to find meeting: %w", err)
	}
	return &meeting, nil
}

// Transition performs a guarded status update. The guard is part of the
// WHERE clause, so concurrent deliveries of the same event race on the row
// and only one of them sees RowsAffected == 1.
func (r *MeetingRepository) Transition(ctx context.Context, id string, guard entities.StatusGuard, status entities.MeetingStatus, fields map[string]interface{}) (*entities.Meeting, error) {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range fields {
		updates[k] = v
	}

	query := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id)
	if len(guard.In) > 0 {
		query = query.Where("status IN ?", guard.In)
	}
	if len(guard.NotIn) > 0 {
		query = query.Where("status NOT IN ?", guard.NotIn)
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to transition meeting to %s: %w", status, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, entities.ErrMeetingNotFound
	}

	return r.FindByID(ctx, id)
}

// SetTranscriptURL records where the transcript artifact lives
func (r *MeetingRepository) SetTranscriptURL(ctx context.Context, id, url string) (*entities.Meeting, error) {
	return r.setColumn(ctx, id, "transcript_url", url)
}

// SetRecordingURL records where the recording artifact lives
func (r *MeetingRepository) SetRecordingURL(ctx context.Context, id, url string) (*entities.Meeting, error) {
	return r.setColumn(ctx, id, "recording_url", url)
}

// SaveSummary stores the summary and marks the meeting completed. Writing
// the same summary twice leaves the row unchanged.
func (r *MeetingRepository) SaveSummary(ctx context.Context, id, summary string) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"summary":    summary,
			"status":     entities.MeetingStatusCompleted,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save summary: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrMeetingNotFound
	}
	return nil
}

func (r *MeetingRepository) setColumn(ctx context.Context, id, column, value string) (*entities.Meeting, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			column:       value,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, entities.ErrMeetingNotFound
	}
	return r.FindByID(ctx, id)
}

// Create creates a new meeting
func (r *MeetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting.Status == "" {
		meeting.Status = entities.MeetingStatusUpcoming
	}
	if err := r.db.WithContext(ctx).Create(meeting).Error; err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}
	return nil
}
