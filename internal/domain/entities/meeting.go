package entities

import (
	"time"
)

// MeetingStatus represents the lifecycle state of a meeting
type MeetingStatus string

const (
	MeetingStatusUpcoming   MeetingStatus = "upcoming"
	MeetingStatusActive     MeetingStatus = "active"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusProcessing MeetingStatus = "processing"
	MeetingStatusCancelled  MeetingStatus = "cancelled"
)

// IsValid reports whether s is a known status
func (s MeetingStatus) IsValid() bool {
	switch s {
	case MeetingStatusUpcoming, MeetingStatusActive, MeetingStatusCompleted,
		MeetingStatusProcessing, MeetingStatusCancelled:
		return true
	}
	return false
}

// Meeting is a scheduled call between a user and one of their agents
type Meeting struct {
	ID            string        `gorm:"type:text;primaryKey" json:"id"`
	Name          string        `gorm:"type:text;not null" json:"name"`
	UserID        string        `gorm:"type:text;not null;index" json:"user_id"`
	AgentID       string        `gorm:"type:text;not null;index" json:"agent_id"`
	Status        MeetingStatus `gorm:"type:varchar(20);not null;default:'upcoming';index" json:"status"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	EndedAt       *time.Time    `json:"ended_at,omitempty"`
	TranscriptURL *string       `gorm:"type:text" json:"transcript_url,omitempty"`
	RecordingURL  *string       `gorm:"type:text" json:"recording_url,omitempty"`
	Summary       *string       `gorm:"type:text" json:"summary,omitempty"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Meeting
func (Meeting) TableName() string {
	return "meetings"
}

// StatusGuard restricts a status transition to meetings whose current
// status is in In (when set) and not in NotIn.
type StatusGuard struct {
	In    []MeetingStatus
	NotIn []MeetingStatus
}

// Allows reports whether a meeting currently in status may transition
func (g StatusGuard) Allows(status MeetingStatus) bool {
	if len(g.In) > 0 && !containsStatus(g.In, status) {
		return false
	}
	return !containsStatus(g.NotIn, status)
}

func containsStatus(list []MeetingStatus, status MeetingStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

// Guards used by the lifecycle handler.
var (
	// GuardStartable admits everything that has not already started, finished or been cancelled.
	GuardStartable = StatusGuard{NotIn: []MeetingStatus{
		MeetingStatusCompleted,
		MeetingStatusActive,
		MeetingStatusCancelled,
		MeetingStatusProcessing,
	}}
	GuardEndable     = StatusGuard{In: []MeetingStatus{MeetingStatusActive}}
	GuardCancellable = StatusGuard{In: []MeetingStatus{MeetingStatusUpcoming}}
)
