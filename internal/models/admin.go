package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin is an operator account. MFASecret holds the encrypted active TOTP secret;
// MFAPendingSecret holds one awaiting confirmation.
type Admin struct {
	ID               uuid.UUID
	CreatedAt        time.Time
	Username         string
	Email            string
	PasswordHash     string
	MFASecret        string
	MFAPendingSecret string
	MFAEnabled       bool
	IsActive         bool
}
