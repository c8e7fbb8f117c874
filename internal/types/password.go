package types

import (
	"time"

	"github.com/google/uuid"
)

// PasswordRecord is a stored sample weak-password submission. These are
// intentionally bad example passwords, not real credentials of the
// submitting account.
type PasswordRecord struct {
	ID        uuid.UUID  `json:"id"`
	Password  string     `json:"password"`
	Site      string     `json:"site,omitempty"`
	Username  string     `json:"username"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	OwnerName *string    `json:"owner_name,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// SubmitPasswordRequest represents the expected JSON body for submitting
// or replacing a weak-password record.
type SubmitPasswordRequest struct {
	Password string `json:"password"`
	Site     string `json:"site,omitempty"`
	Username string `json:"username,omitempty"`
}

// RandomPasswordResponse mirrors the shape the dashboard preview expects.
type RandomPasswordResponse struct {
	RandomPassword string `json:"randomPassword"`
}

// LeaderboardEntry is one row of the most-common-passwords ranking.
type LeaderboardEntry struct {
	Password string `json:"password"`
	Count    int    `json:"count"`
}
