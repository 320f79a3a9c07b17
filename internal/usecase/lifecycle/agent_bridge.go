package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/domain/repositories"
	"github.com/johnquangdev/meeting-agent/internal/infrastructure/external/livekit"
)

// AgentHookup reports the outcome of attaching an agent to a call. Err holds
// a provider failure, which callers log but do not surface to the webhook.
type AgentHookup struct {
	AgentID   string
	Connected bool
	Err       error
}

// AgentBridge joins a meeting's agent to its live call
type AgentBridge struct {
	agents   repositories.AgentRepository
	provider livekit.Client
	callType string
	apiKey   string
	logger   *zap.Logger
}

// NewAgentBridge creates a new agent bridge
func NewAgentBridge(agents repositories.AgentRepository, provider livekit.Client, callType, apiKey string, logger *zap.Logger) *AgentBridge {
	return &AgentBridge{
		agents:   agents,
		provider: provider,
		callType: callType,
		apiKey:   apiKey,
		logger:   logger,
	}
}

// Connect loads the meeting's agent, connects it to the call and sends it
// the agent's instructions. A missing agent is returned as an error; a
// provider failure is returned in AgentHookup.Err.
func (b *AgentBridge) Connect(ctx context.Context, meeting *entities.Meeting) (AgentHookup, error) {
	agent, err := b.agents.FindByID(ctx, meeting.AgentID)
	if err != nil {
		return AgentHookup{AgentID: meeting.AgentID}, err
	}

	hookup := AgentHookup{AgentID: agent.ID}

	call := b.provider.Call(b.callType, meeting.ID)
	session, err := b.provider.ConnectRealtimeAgent(ctx, call, b.apiKey, agent.ID)
	if err != nil {
		hookup.Err = fmt.Errorf("connect agent: %w", err)
		return hookup, nil
	}
	hookup.Connected = true

	if err := session.UpdateInstructions(ctx, agent.Instructions); err != nil {
		hookup.Err = fmt.Errorf("update agent instructions: %w", err)
		return hookup, nil
	}

	if b.logger != nil {
		b.logger.Info("lifecycle.agent.connected",
			zap.String("meeting_id", meeting.ID),
			zap.String("agent_id", agent.ID),
			zap.String("agent_name", agent.Name),
		)
	}

	return hookup, nil
}
