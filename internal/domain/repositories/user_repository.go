package repositories

import (
	"context"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*entities.User, error)

	// FindByIDs returns the users matching ids; unknown ids are skipped
	FindByIDs(ctx context.Context, ids []string) ([]*entities.User, error)
}
