package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorkflowCheckpoint is the persisted output of one pipeline step
type WorkflowCheckpoint struct {
	InstanceID string         `gorm:"type:text;primaryKey"`
	StepName   string         `gorm:"type:text;primaryKey"`
	Output     datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for WorkflowCheckpoint
func (WorkflowCheckpoint) TableName() string {
	return "workflow_checkpoints"
}

// CheckpointRepository stores workflow checkpoints in Postgres
type CheckpointRepository struct {
	db *gorm.DB
}

// NewCheckpointRepository creates a new checkpoint repository
func NewCheckpointRepository(db *gorm.DB) *CheckpointRepository {
	return &CheckpointRepository{db: db}
}

// Load returns the checkpointed output of step, if any
func (r *CheckpointRepository) Load(ctx context.Context, instanceID, step string) ([]byte, bool, error) {
	var cp WorkflowCheckpoint
	err := r.db.WithContext(ctx).
		Where("instance_id = ? AND step_name = ?", instanceID, step).
		First(&cp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return []byte(cp.Output), true, nil
}

// Save upserts the output of step
func (r *CheckpointRepository) Save(ctx context.Context, instanceID, step string, output []byte) error {
	cp := WorkflowCheckpoint{
		InstanceID: instanceID,
		StepName:   step,
		Output:     datatypes.JSON(output),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "instance_id"}, {Name: "step_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"output", "updated_at"}),
		}).
		Create(&cp).Error
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// PurgeOlderThan removes checkpoints created before cutoff
func (r *CheckpointRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&WorkflowCheckpoint{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge checkpoints: %w", result.Error)
	}
	return result.RowsAffected, nil
}
