package types

import (
	"time"

	"github.com/google/uuid"
)

// PasswordOfTheDay is the featured record shown on the landing page.
// At most one row is current at any time.
type PasswordOfTheDay struct {
	ID        uuid.UUID `json:"id"`
	Password  string    `json:"password"`
	Username  string    `json:"username"`
	IsCurrent bool      `json:"isCurrent"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SetPasswordOfTheDayRequest represents the expected JSON body for setting
// or replacing the password of the day.
type SetPasswordOfTheDayRequest struct {
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// CurrentPasswordOfTheDayResponse is the read shape for the current record.
type CurrentPasswordOfTheDayResponse struct {
	PasswordOfTheDay string `json:"passwordOfTheDay"`
	Username         string `json:"username"`
}
