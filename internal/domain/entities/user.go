package entities

import (
	"time"
)

// User is an account holder. Users own agents and meetings and may appear
// as speakers in transcripts.
type User struct {
	ID            string    `json:"id" gorm:"type:text;primaryKey"`
	Name          string    `json:"name" gorm:"type:text;not null"`
	Email         string    `json:"email" gorm:"type:text;uniqueIndex;not null"`
	EmailVerified bool      `json:"email_verified" gorm:"default:false;not null"`
	Image         *string   `json:"image,omitempty" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Validate validates user data
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrInvalidEmail
	}
	if u.Name == "" {
		return ErrInvalidName
	}
	return nil
}
