package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

// AgentRepository implements the agent repository interface using GORM
type AgentRepository struct {
	db *gorm.DB
}

// NewAgentRepository creates a new agent repository
func NewAgentRepository(db *gorm.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

// FindByID finds an agent by ID
func (r *AgentRepository) FindByID(ctx context.Context, id string) (*entities.Agent, error) {
	var agent entities.Agent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to find agent: %w", err)
	}
	return &agent, nil
}

// FindByIDs returns the agents matching ids
func (r *AgentRepository) FindByIDs(ctx context.Context, ids []string) ([]*entities.Agent, error) {
	if len(ids) == 0 {
		return []*entities.Agent{}, nil
	}
	var agents []*entities.Agent
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("failed to find agents: %w", err)
	}
	return agents, nil
}

// Create creates a new agent
func (r *AgentRepository) Create(ctx context.Context, agent *entities.Agent) error {
	if err := r.db.WithContext(ctx).Create(agent).Error; err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}
	return nil
}
