package types

import (
	"github.com/google/uuid"
)

// Entity is a seeded demo resource owned by a user.
type Entity struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedBy   uuid.UUID `json:"created_by"`
	OwnerName   string    `json:"owner_name,omitempty"`
}
