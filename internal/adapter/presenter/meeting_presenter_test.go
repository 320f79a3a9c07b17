package presenter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

func TestToMeetingResponse(t *testing.T) {
	assert.Nil(t, ToMeetingResponse(nil))

	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(25 * time.Minute)
	resp := ToMeetingResponse(&entities.Meeting{
		ID:        "m-1",
		Status:    entities.MeetingStatusProcessing,
		StartedAt: &start,
		EndedAt:   &end,
	})

	assert.Equal(t, "processing", resp.Status)
	if assert.NotNil(t, resp.Duration) {
		assert.Equal(t, int64(1500), *resp.Duration)
	}

	assert.Nil(t, ToMeetingResponse(&entities.Meeting{ID: "m-2"}).Duration)
}
