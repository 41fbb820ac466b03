package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role tags a user account. ADMIN grants nothing beyond USER today.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents an authenticated account. Its email is the token subject.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:100;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	DisplayName  string    `json:"display_name" gorm:"size:100;not null"`
	Role         Role      `json:"role" gorm:"size:20;not null"`
	Enabled      bool      `json:"enabled" gorm:"not null"`
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
