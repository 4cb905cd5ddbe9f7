package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values for User.Role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered principal. Users with role "user" carry a
// tracking identifier (HD + digits) that packages reference as owner; admin
// accounts have none.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FirstName    string    `json:"first_name" gorm:"size:100;not null"`
	LastName     string    `json:"last_name" gorm:"size:100;not null"`
	Phone        string    `json:"phone" gorm:"size:32"`
	Role         string    `json:"role" gorm:"size:16;not null;default:'user';index"`
	// Uniqueness is enforced by the registration flow rather than the schema
	// because admin accounts all share the empty value.
	TrackingID string `json:"tracking_id,omitempty" gorm:"size:16;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName returns the full name shown in the UI.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
