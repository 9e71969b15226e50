package models

import (
	"time"

	"github.com/google/uuid"
)

// WaitlistEntry is one waitlist signup. Repeated signups for the same email are kept.
type WaitlistEntry struct {
	ID          uuid.UUID `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	IPAddress   string    `json:"ipAddress,omitempty"`
}
