package models

import "time"

// RefreshToken is the single stored refresh-token record for a user. The
// token column holds the current signed value; issuing a new pair replaces
// it, which is what invalidates the previous value.
type RefreshToken struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
