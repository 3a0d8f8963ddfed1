package models

import (
	"time"

	"github.com/google/uuid"
)

// Reservation is a time-boxed hold a session has on a unique piece.
type Reservation struct {
	ID        string    `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
