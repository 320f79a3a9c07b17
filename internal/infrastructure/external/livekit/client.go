package livekit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	livekit "github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
)

// ErrMissingAPIKey is returned when an agent connection has no model API key
var ErrMissingAPIKey = errors.New("realtime agent api key is required")

// Client wraps the call provider. A call is a LiveKit room named after the meeting id.
type Client interface {
	Call(callType, id string) Call
	// ConnectRealtimeAgent attaches the realtime AI participant identified by
	// agentUserID to call.
	ConnectRealtimeAgent(ctx context.Context, call Call, apiKey, agentUserID string) (AgentSession, error)
}

// Call is a handle to one call
type Call interface {
	ID() string
	Type() string
	End(ctx context.Context) error
	Query(ctx context.Context) (*CallState, error)
}

// AgentSession is a connected realtime agent
type AgentSession interface {
	UpdateInstructions(ctx context.Context, instructions string) error
}

// CallState is the provider's current view of a call
type CallState struct {
	Participants []ParticipantInfo
}

// ParticipantInfo holds participant information
type ParticipantInfo struct {
	SID      string
	Identity string
	Name     string
	JoinedAt time.Time
}

// agentMetadata is attached to the dispatch and room so the agent worker can
// pick up its identity and instructions
type agentMetadata struct {
	AgentUserID  string `json:"agent_user_id"`
	Instructions string `json:"instructions,omitempty"`
}

// NewClient creates a new LiveKit client
func NewClient(url, apiKey, apiSecret, agentName string, useMock bool) Client {
	if useMock {
		return NewMockClient()
	}

	return &realClient{
		roomClient:     lksdk.NewRoomServiceClient(url, apiKey, apiSecret),
		dispatchClient: lksdk.NewAgentDispatchServiceClient(url, apiKey, apiSecret),
		agentName:      agentName,
	}
}

// realClient is the real LiveKit client implementation
type realClient struct {
	roomClient     *lksdk.RoomServiceClient
	dispatchClient *lksdk.AgentDispatchClient
	agentName      string
}

func (c *realClient) Call(callType, id string) Call {
	return &realCall{client: c, callType: callType, id: id}
}

// ConnectRealtimeAgent dispatches the configured agent worker into the room
func (c *realClient) ConnectRealtimeAgent(ctx context.Context, call Call, apiKey, agentUserID string) (AgentSession, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	metadata, err := json.Marshal(agentMetadata{AgentUserID: agentUserID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode agent metadata: %w", err)
	}

	_, err = c.dispatchClient.CreateDispatch(ctx, &livekit.CreateAgentDispatchRequest{
		AgentName: c.agentName,
		Room:      call.ID(),
		Metadata:  string(metadata),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dispatch agent: %w", err)
	}

	return &realAgentSession{client: c, room: call.ID(), agentUserID: agentUserID}, nil
}

type realCall struct {
	client   *realClient
	callType string
	id       string
}

func (c *realCall) ID() string   { return c.id }
func (c *realCall) Type() string { return c.callType }

// End deletes the room, disconnecting everyone in it
func (c *realCall) End(ctx context.Context) error {
	_, err := c.client.roomClient.DeleteRoom(ctx, &livekit.DeleteRoomRequest{
		Room: c.id,
	})
	if err != nil {
		return fmt.Errorf("failed to end call: %w", err)
	}
	return nil
}

// Query lists the participants currently in the room
func (c *realCall) Query(ctx context.Context) (*CallState, error) {
	resp, err := c.client.roomClient.ListParticipants(ctx, &livekit.ListParticipantsRequest{
		Room: c.id,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query call: %w", err)
	}

	state := &CallState{Participants: make([]ParticipantInfo, 0, len(resp.Participants))}
	for _, p := range resp.Participants {
		state.Participants = append(state.Participants, ParticipantInfo{
			SID:      p.Sid,
			Identity: p.Identity,
			Name:     p.Name,
			JoinedAt: time.Unix(p.JoinedAt, 0),
		})
	}
	return state, nil
}

type realAgentSession struct {
	client      *realClient
	room        string
	agentUserID string
}

// UpdateInstructions publishes the instructions through the room metadata
func (s *realAgentSession) UpdateInstructions(ctx context.Context, instructions string) error {
	metadata, err := json.Marshal(agentMetadata{AgentUserID: s.agentUserID, Instructions: instructions})
	if err != nil {
		return fmt.Errorf("failed to encode agent metadata: %w", err)
	}

	_, err = s.client.roomClient.UpdateRoomMetadata(ctx, &livekit.UpdateRoomMetadataRequest{
		Room:     s.room,
		Metadata: string(metadata),
	})
	if err != nil {
		return fmt.Errorf("failed to update agent instructions: %w", err)
	}
	return nil
}

// MockClient records calls instead of talking to LiveKit. Query reports an
// empty room unless participants were set with SetParticipants.
type MockClient struct {
	mu           sync.Mutex
	participants map[string][]ParticipantInfo
	ended        []string
	connected    map[string]string
	instructions map[string]string
}

// NewMockClient creates an empty mock
func NewMockClient() *MockClient {
	return &MockClient{
		participants: make(map[string][]ParticipantInfo),
		connected:    make(map[string]string),
		instructions: make(map[string]string),
	}
}

func (m *MockClient) Call(callType, id string) Call {
	return &mockCall{client: m, callType: callType, id: id}
}

// ConnectRealtimeAgent (mock) records the connection
func (m *MockClient) ConnectRealtimeAgent(_ context.Context, call Call, apiKey, agentUserID string) (AgentSession, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	m.mu.Lock()
	m.connected[call.ID()] = agentUserID
	m.mu.Unlock()
	return &mockAgentSession{client: m, room: call.ID()}, nil
}

// SetParticipants sets what Query returns for call id
func (m *MockClient) SetParticipants(id string, participants ...ParticipantInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.participants[id] = participants
}

// Ended returns the ids of ended calls in order
func (m *MockClient) Ended() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ended...)
}

// ConnectedAgent returns the agent user id connected to call id
func (m *MockClient) ConnectedAgent(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agent, ok := m.connected[id]
	return agent, ok
}

// Instructions returns the last instructions sent to the agent in call id
func (m *MockClient) Instructions(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.instructions[id]
}

type mockCall struct {
	client   *MockClient
	callType string
	id       string
}

func (c *mockCall) ID() string   { return c.id }
func (c *mockCall) Type() string { return c.callType }

func (c *mockCall) End(_ context.Context) error {
	c.client.mu.Lock()
	defer c.client.mu.Unlock()
	c.client.ended = append(c.client.ended, c.id)
	delete(c.client.participants, c.id)
	return nil
}

func (c *mockCall) Query(_ context.Context) (*CallState, error) {
	c.client.mu.Lock()
	defer c.client.mu.Unlock()
	return &CallState{Participants: append([]ParticipantInfo{}, c.client.participants[c.id]...)}, nil
}

type mockAgentSession struct {
	client *MockClient
	room   string
}

func (s *mockAgentSession) UpdateInstructions(_ context.Context, instructions string) error {
	s.client.mu.Lock()
	defer s.client.mu.Unlock()
	s.client.instructions[s.room] = instructions
	return nil
}
