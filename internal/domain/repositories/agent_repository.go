package repositories

import (
	"context"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

// AgentRepository defines the interface for agent data access
type AgentRepository interface {
	// FindByID finds an agent by ID
	FindByID(ctx context.Context, id string) (*entities.Agent, error)

	// FindByIDs returns the agents matching ids; unknown ids are skipped
	FindByIDs(ctx context.Context, ids []string) ([]*entities.Agent, error)
}
