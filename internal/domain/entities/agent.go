package entities

import "time"

// Agent is an AI participant owned by a user
type Agent struct {
	ID           string    `gorm:"type:text;primaryKey" json:"id"`
	Name         string    `gorm:"type:text;not null" json:"name"`
	UserID       string    `gorm:"type:text;not null;index" json:"user_id"`
	Instructions string    `gorm:"type:text;not null" json:"instructions"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Agent
func (Agent) TableName() string {
	return "agents"
}
