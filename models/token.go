package models

import "time"

// AuthToken kinds.
const (
	TokenRefresh       = "refresh"
	TokenPasswordReset = "password_reset"
)

// AuthToken is a stored credential artifact: a refresh token (verbatim JWT)
// or a password-reset token (sha256 hex of the emailed value). Multiple
// refresh tokens may coexist per user for multi-device sessions. Expired
// rows are swept by the background token cleaner.
type AuthToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Token     string    `gorm:"size:512;index;not null" json:"-"`
	Kind      string    `gorm:"size:24;index;not null" json:"kind"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
