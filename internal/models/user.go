package models

import "time"

// User & session related models
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Email     string `gorm:"unique;not null;index" json:"email"`
	Password  string `gorm:"not null" json:"-"` // bcrypt hash
	Name      string `gorm:"size:255" json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserClient links a user to a client they may access.
// Reserved for per-user client scoping; no screen reads or writes it yet.
type UserClient struct {
	UserID    uint `gorm:"primaryKey" json:"user_id"`
	ClientID  uint `gorm:"primaryKey" json:"client_id"`
	CreatedAt time.Time `json:"created_at"`
}
