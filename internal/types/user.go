package types

import (
	"time"

	"github.com/google/uuid"
)

// User is the public view of an account. The stored bcrypt hash is
// carried internally and always excluded from JSON responses.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
