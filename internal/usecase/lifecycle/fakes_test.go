package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/external/livekit"
)

type fakeMeetingRepo struct {
	mu       sync.Mutex
	meetings map[string]*entities.Meeting
	writes   int
}

func newFakeMeetingRepo(meetings ...*entities.Meeting) *fakeMeetingRepo {
	repo := &fakeMeetingRepo{meetings: make(map[string]*entities.Meeting)}
	for _, m := range meetings {
		repo.meetings[m.ID] = m
	}
	return repo
}

func (r *fakeMeetingRepo) get(id string) *entities.Meeting {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil
	}
	clone := *m
	return &clone
}

func (r *fakeMeetingRepo) FindByID(_ context.Context, id string) (*entities.Meeting, error) {
	if m := r.get(id); m != nil {
		return m, nil
	}
	return nil, entities.ErrMeetingNotFound
}

func (r *fakeMeetingRepo) Transition(_ context.Context, id string, guard entities.StatusGuard, status entities.MeetingStatus, fields map[string]interface{}) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.meetings[id]
	if !ok || !guard.Allows(m.Status) {
		return nil, entities.ErrMeetingNotFound
	}
	m.Status = status
	if v, ok := fields["started_at"].(time.Time); ok {
		m.StartedAt = &v
	}
	if v, ok := fields["ended_at"].(time.Time); ok {
		m.EndedAt = &v
	}
	r.writes++
	clone := *m
	return &clone, nil
}

func (r *fakeMeetingRepo) SetTranscriptURL(_ context.Context, id, url string) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil, entities.ErrMeetingNotFound
	}
	m.TranscriptURL = &url
	r.writes++
	clone := *m
	return &clone, nil
}

func (r *fakeMeetingRepo) SetRecordingURL(_ context.Context, id, url string) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil, entities.ErrMeetingNotFound
	}
	m.RecordingURL = &url
	r.writes++
	clone := *m
	return &clone, nil
}

func (r *fakeMeetingRepo) SaveSummary(_ context.Context, id, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return entities.ErrMeetingNotFound
	}
	m.Summary = &summary
	m.Status = entities.MeetingStatusCompleted
	r.writes++
	return nil
}

type fakeAgentRepo struct {
	agents map[string]*entities.Agent
}

func newFakeAgentRepo(agents ...*entities.Agent) *fakeAgentRepo {
	repo := &fakeAgentRepo{agents: make(map[string]*entities.Agent)}
	for _, a := range agents {
		repo.agents[a.ID] = a
	}
	return repo
}

func (r *fakeAgentRepo) FindByID(_ context.Context, id string) (*entities.Agent, error) {
	if a, ok := r.agents[id]; ok {
		return a, nil
	}
	return nil, entities.ErrAgentNotFound
}

func (r *fakeAgentRepo) FindByIDs(_ context.Context, ids []string) ([]*entities.Agent, error) {
	var out []*entities.Agent
	for _, id := range ids {
		if a, ok := r.agents[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakePublisher struct {
	mu    sync.Mutex
	items []entities.WorkItem
	err   error
}

func (p *fakePublisher) Publish(_ context.Context, item entities.WorkItem) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, item)
	return nil
}

func (p *fakePublisher) published() []entities.WorkItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entities.WorkItem(nil), p.items...)
}

var errProviderDown = errors.New("provider unavailable")

// failingProvider refuses every agent connection
type failingProvider struct {
	*livekit.MockClient
}

func (p failingProvider) ConnectRealtimeAgent(context.Context, livekit.Call, string, string) (livekit.AgentSession, error) {
	return nil, errProviderDown
}
