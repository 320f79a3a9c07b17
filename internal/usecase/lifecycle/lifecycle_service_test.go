package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/external/livekit"
)

type harness struct {
	meetings  *fakeMeetingRepo
	provider  *livekit.MockClient
	publisher *fakePublisher
	service   *LifecycleService
}

func newHarness(meetings ...*entities.Meeting) *harness {
	repo := newFakeMeetingRepo(meetings...)
	agents := newFakeAgentRepo(&entities.Agent{ID: "agent-1", Name: "Bot", Instructions: "take notes"})
	provider := livekit.NewMockClient()
	publisher := &fakePublisher{}
	bridge := NewAgentBridge(agents, provider, "default", "sk-test", zap.NewNop())

	return &harness{
		meetings:  repo,
		provider:  provider,
		publisher: publisher,
		service:   NewLifecycleService(repo, bridge, provider, publisher, "default", zap.NewNop()),
	}
}

func meeting(id string, status entities.MeetingStatus) *entities.Meeting {
	return &entities.Meeting{ID: id, Name: "Weekly sync", UserID: "user-1", AgentID: "agent-1", Status: status}
}

func sessionStarted(id string) *SessionStarted {
	return &SessionStarted{Call: CallInfo{Custom: CallCustom{MeetingID: id}}}
}

func TestSessionStarted_ActivatesAndConnectsAgent(t *testing.T) {
	h := newHarness(meeting("m-1", entities.MeetingStatusUpcoming))

	require.NoError(t, h.service.Dispatch(context.Background(), sessionStarted("m-1")))

	stored := h.meetings.get("m-1")
	assert.Equal(t, entities.MeetingStatusActive, stored.Status)
	assert.NotNil(t, stored.StartedAt)

	agent, ok := h.provider.ConnectedAgent("m-1")
	assert.True(t, ok)
	assert.Equal(t, "agent-1", agent)
	assert.Equal(t, "take notes", h.provider.Instructions("m-1"))
}

func TestSessionStarted_IneligibleStatusesAreUntouched(t *testing.T) {
	for _, status := range []entities.MeetingStatus{
		entities.MeetingStatusActive,
		entities.MeetingStatusCompleted,
		entities.MeetingStatusProcessing,
		entities.MeetingStatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			h := newHarness(meeting("m-1", status))

			err := h.service.Dispatch(context.Background(), sessionStarted("m-1"))
			assert.ErrorIs(t, err, entities.ErrMeetingNotFound)

			assert.Equal(t, status, h.meetings.get("m-1").Status)
			assert.Zero(t, h.meetings.writes)
			_, connected := h.provider.ConnectedAgent("m-1")
			assert.False(t, connected)
		})
	}
}

func TestSessionStarted_MissingMeetingID(t *testing.T) {
	h := newHarness()

	err := h.service.Dispatch(context.Background(), sessionStarted(""))
	assert.ErrorIs(t, err, entities.ErrMissingMeetingID)
}

func TestSessionStarted_UnknownMeeting(t *testing.T) {
	h := newHarness()

	err := h.service.Dispatch(context.Background(), sessionStarted("nope"))
	assert.ErrorIs(t, err, entities.ErrMeetingNotFound)
}

func TestSessionStarted_MissingAgentKeepsStatus(t *testing.T) {
	m := meeting("m-1", entities.MeetingStatusUpcoming)
	m.AgentID = "ghost"
	h := newHarness(m)

	err := h.service.Dispatch(context.Background(), sessionStarted("m-1"))
	assert.ErrorIs(t, err, entities.ErrAgentNotFound)
	assert.Equal(t, entities.MeetingStatusActive, h.meetings.get("m-1").Status)
}

func TestSessionStarted_ProviderFailureIsSoft(t *testing.T) {
	repo := newFakeMeetingRepo(meeting("m-1", entities.MeetingStatusUpcoming))
	agents := newFakeAgentRepo(&entities.Agent{ID: "agent-1", Name: "Bot"})
	provider := failingProvider{livekit.NewMockClient()}
	bridge := NewAgentBridge(agents, provider, "default", "sk-test", nil)
	service := NewLifecycleService(repo, bridge, provider, &fakePublisher{}, "default", nil)

	require.NoError(t, service.Dispatch(context.Background(), sessionStarted("m-1")))
	assert.Equal(t, entities.MeetingStatusActive, repo.get("m-1").Status)
}

func TestAgentBridge_ReportsProviderError(t *testing.T) {
	agents := newFakeAgentRepo(&entities.Agent{ID: "agent-1"})
	bridge := NewAgentBridge(agents, failingProvider{livekit.NewMockClient()}, "default", "sk-test", nil)

	hookup, err := bridge.Connect(context.Background(), meeting("m-1", entities.MeetingStatusActive))
	require.NoError(t, err)
	assert.False(t, hookup.Connected)
	assert.ErrorIs(t, hookup.Err, errProviderDown)
	assert.Equal(t, "agent-1", hookup.AgentID)
}

func TestParticipantLeft(t *testing.T) {
	t.Run("empty call is ended", func(t *testing.T) {
		h := newHarness()

		require.NoError(t, h.service.Dispatch(context.Background(), &ParticipantLeft{CallCID: "default:m-1"}))
		assert.Equal(t, []string{"m-1"}, h.provider.Ended())
	})

	t.Run("occupied call keeps running", func(t *testing.T) {
		h := newHarness()
		h.provider.SetParticipants("m-1", livekit.ParticipantInfo{Identity: "user-2"})

		require.NoError(t, h.service.Dispatch(context.Background(), &ParticipantLeft{CallCID: "default:m-1"}))
		assert.Empty(t, h.provider.Ended())
	})

	t.Run("missing cid", func(t *testing.T) {
		h := newHarness()

		err := h.service.Dispatch(context.Background(), &ParticipantLeft{})
		assert.ErrorIs(t, err, entities.ErrMissingMeetingID)
	})
}

func TestSessionEnded(t *testing.T) {
	t.Run("active meeting moves to processing", func(t *testing.T) {
		h := newHarness(meeting("m-1", entities.MeetingStatusActive))
		ev := &SessionEnded{Call: CallInfo{Custom: CallCustom{MeetingID: "m-1"}}}

		require.NoError(t, h.service.Dispatch(context.Background(), ev))
		stored := h.meetings.get("m-1")
		assert.Equal(t, entities.MeetingStatusProcessing, stored.Status)
		assert.NotNil(t, stored.EndedAt)
	})

	t.Run("non-active meeting is rejected", func(t *testing.T) {
		h := newHarness(meeting("m-1", entities.MeetingStatusUpcoming))
		ev := &SessionEnded{Call: CallInfo{Custom: CallCustom{MeetingID: "m-1"}}}

		assert.ErrorIs(t, h.service.Dispatch(context.Background(), ev), entities.ErrMeetingNotFound)
		assert.Equal(t, entities.MeetingStatusUpcoming, h.meetings.get("m-1").Status)
	})
}

func TestTranscriptionReady_StoresURLAndEnqueues(t *testing.T) {
	h := newHarness(meeting("m-1", entities.MeetingStatusProcessing))
	url := "https://cdn.example.com/m-1.jsonl"
	ev := &TranscriptionReady{CallCID: "default:m-1", CallTranscription: Artifact{URL: url}}

	require.NoError(t, h.service.Dispatch(context.Background(), ev))
	require.NoError(t, h.service.Dispatch(context.Background(), ev))

	assert.Equal(t, url, *h.meetings.get("m-1").TranscriptURL)

	items := h.publisher.published()
	require.Len(t, items, 2)
	assert.Equal(t, entities.EventMeetingProcessing, items[0].EventName)
	assert.Equal(t, entities.ProcessingData{MeetingID: "m-1", TranscriptURL: url}, items[0].Data)
	assert.Equal(t, items[0].ID, items[1].ID)
}

func TestTranscriptionReady_UnknownMeetingDoesNotEnqueue(t *testing.T) {
	h := newHarness()
	ev := &TranscriptionReady{CallCID: "default:m-9", CallTranscription: Artifact{URL: "https://x.example.com/t"}}

	assert.ErrorIs(t, h.service.Dispatch(context.Background(), ev), entities.ErrMeetingNotFound)
	assert.Empty(t, h.publisher.published())
}

func TestTranscriptionReady_PublishFailure(t *testing.T) {
	h := newHarness(meeting("m-1", entities.MeetingStatusProcessing))
	h.publisher.err = errors.New("redis down")
	ev := &TranscriptionReady{CallCID: "default:m-1", CallTranscription: Artifact{URL: "https://x.example.com/t"}}

	assert.ErrorIs(t, h.service.Dispatch(context.Background(), ev), ErrEnqueueFailed)
}

func TestRecordingReady(t *testing.T) {
	h := newHarness(meeting("m-1", entities.MeetingStatusCompleted))
	ev := &RecordingReady{CallCID: "default:m-1", CallRecording: Artifact{URL: "https://cdn.example.com/r.mp4"}}

	require.NoError(t, h.service.Dispatch(context.Background(), ev))
	stored := h.meetings.get("m-1")
	assert.Equal(t, "https://cdn.example.com/r.mp4", *stored.RecordingURL)
	assert.Equal(t, entities.MeetingStatusCompleted, stored.Status)
}

func TestUnknownEventIsNoop(t *testing.T) {
	h := newHarness(meeting("m-1", entities.MeetingStatusUpcoming))

	require.NoError(t, h.service.Dispatch(context.Background(), &Unknown{Kind: "call.member_added"}))
	assert.Zero(t, h.meetings.writes)
	assert.Empty(t, h.publisher.published())
}

func TestEnqueueProcessing(t *testing.T) {
	url := "https://cdn.example.com/m-1.jsonl"
	withTranscript := meeting("m-1", entities.MeetingStatusCompleted)
	withTranscript.TranscriptURL = &url
	h := newHarness(withTranscript, meeting("m-2", entities.MeetingStatusActive))
	ctx := context.Background()

	item, err := h.service.EnqueueProcessing(ctx, "m-1", false)
	require.NoError(t, err)
	assert.Equal(t, entities.NewProcessingWorkItem("m-1", url).ID, item.ID)

	forced, err := h.service.EnqueueProcessing(ctx, "m-1", true)
	require.NoError(t, err)
	assert.NotEqual(t, item.ID, forced.ID)
	assert.Equal(t, item.Data, forced.Data)

	_, err = h.service.EnqueueProcessing(ctx, "m-2", false)
	assert.ErrorIs(t, err, entities.ErrTranscriptMissing)

	_, err = h.service.EnqueueProcessing(ctx, "m-404", false)
	assert.ErrorIs(t, err, entities.ErrMeetingNotFound)

	assert.Len(t, h.publisher.published(), 2)
}

func TestCancel(t *testing.T) {
	h := newHarness(meeting("m-1", entities.MeetingStatusUpcoming), meeting("m-2", entities.MeetingStatusActive))
	ctx := context.Background()

	cancelled, err := h.service.Cancel(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, entities.MeetingStatusCancelled, cancelled.Status)

	_, err = h.service.Cancel(ctx, "m-2")
	assert.ErrorIs(t, err, entities.ErrMeetingInvalidState)
	assert.Equal(t, entities.MeetingStatusActive, h.meetings.get("m-2").Status)

	_, err = h.service.Cancel(ctx, "m-404")
	assert.ErrorIs(t, err, entities.ErrMeetingNotFound)
}
