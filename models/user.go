package models

import "time"

// Roles assignable to a user. Role changes are an admin-only operation.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"size:50;not null" json:"name"`
	Email         string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash  string `gorm:"size:255;not null" json:"-"`
	Avatar        string `gorm:"size:512" json:"avatar,omitempty"`
	AvatarAssetID string `gorm:"size:512" json:"-"`
	Role          string `gorm:"size:16;default:'user'" json:"role"`
	Bio           string `gorm:"size:500" json:"bio,omitempty"`
	// Password reset state: sha256 hex of the emailed token plus its expiry.
	ResetPasswordToken  string     `gorm:"size:64;index" json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicUser is the reduced author shape embedded in post and comment payloads.
type PublicUser struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Public strips private fields for embedding in content payloads.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}
