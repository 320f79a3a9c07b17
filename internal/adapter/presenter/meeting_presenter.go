package presenter

import (
	"github.com/johnquangdev/meeting-agent/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

// ToMeetingResponse converts a Meeting entity to MeetingResponse DTO
func ToMeetingResponse(m *entities.Meeting) *meeting.MeetingResponse {
	if m == nil {
		return nil
	}

	response := &meeting.MeetingResponse{
		ID:            m.ID,
		Name:          m.Name,
		UserID:        m.UserID,
		AgentID:       m.AgentID,
		Status:        string(m.Status),
		StartedAt:     m.StartedAt,
		EndedAt:       m.EndedAt,
		TranscriptURL: m.TranscriptURL,
		RecordingURL:  m.RecordingURL,
		Summary:       m.Summary,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}

	// Duration in seconds once both ends are known
	if m.StartedAt != nil && m.EndedAt != nil {
		d := int64(m.EndedAt.Sub(*m.StartedAt).Seconds())
		response.Duration = &d
	}

	return response
}

// ToProcessMeetingResponse converts an enqueued work item to its DTO
func ToProcessMeetingResponse(item entities.WorkItem) *meeting.ProcessMeetingResponse {
	return &meeting.ProcessMeetingResponse{
		JobID:         item.ID,
		MeetingID:     item.Data.MeetingID,
		TranscriptURL: item.Data.TranscriptURL,
	}
}
