package mfa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/lkhn/wealth-backend/internal/models"
	"github.com/lkhn/wealth-backend/pkg/utils"
)

const Issuer = "LKHN Universal Wealth"

var (
	ErrNotEnrolled  = errors.New("mfa not enrolled")
	ErrInvalidCode  = errors.New("invalid code")
	ErrNoEncryption = errors.New("mfa unavailable: encryption key not configured")
)

var validateOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// SecretStore persists the encrypted TOTP secret of an admin.
type SecretStore interface {
	ByID(ctx context.Context, id uuid.UUID) (models.Admin, error)
	SetPendingMFASecret(ctx context.Context, id uuid.UUID, encrypted string) error
	PromotePendingMFA(ctx context.Context, id uuid.UUID, pending string) (bool, error)
}

// Enrollment is returned once, when a secret is generated.
type Enrollment struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauthUrl"`
}

// Service manages TOTP enrollment and verification. Secrets are stored AES-GCM encrypted.
type Service struct {
	store SecretStore
	key   []byte
	now   func() time.Time
}

// NewService returns a service; a nil key disables enrollment and verification.
func NewService(store SecretStore, key []byte) *Service {
	return &Service{store: store, key: key, now: time.Now}
}

// Enroll generates a pending secret for admin. An already active secret keeps
// working until Confirm replaces it.
func (s *Service) Enroll(ctx context.Context, admin models.Admin) (Enrollment, error) {
	if s.key == nil {
		return Enrollment{}, ErrNoEncryption
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      Issuer,
		AccountName: admin.Username,
		Period:      validateOpts.Period,
		Digits:      validateOpts.Digits,
		Algorithm:   validateOpts.Algorithm,
	})
	if err != nil {
		return Enrollment{}, fmt.Errorf("generate totp secret: %w", err)
	}

	sealed, err := utils.Seal(s.key, key.Secret(), admin.ID.String())
	if err != nil {
		return Enrollment{}, fmt.Errorf("encrypt totp secret: %w", err)
	}
	if err := s.store.SetPendingMFASecret(ctx, admin.ID, sealed); err != nil {
		return Enrollment{}, fmt.Errorf("store totp secret: %w", err)
	}

	return Enrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// Confirm promotes the pending secret to active once the admin proves possession of it.
func (s *Service) Confirm(ctx context.Context, adminID uuid.UUID, code string) error {
	admin, err := s.store.ByID(ctx, adminID)
	if err != nil {
		return err
	}
	if admin.MFAPendingSecret == "" {
		return ErrNotEnrolled
	}
	ok, err := s.check(admin.MFAPendingSecret, admin.ID, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCode
	}
	promoted, err := s.store.PromotePendingMFA(ctx, adminID, admin.MFAPendingSecret)
	if err != nil {
		return fmt.Errorf("enable mfa: %w", err)
	}
	if !promoted {
		// A newer enrollment replaced the secret this code was checked against.
		return ErrNotEnrolled
	}
	return nil
}

// Verify checks code against the admin's active secret.
func (s *Service) Verify(admin models.Admin, code string) (bool, error) {
	if admin.MFASecret == "" {
		return false, ErrNotEnrolled
	}
	return s.check(admin.MFASecret, admin.ID, code)
}

func (s *Service) check(sealed string, owner uuid.UUID, code string) (bool, error) {
	if s.key == nil {
		return false, ErrNoEncryption
	}

	secret, err := utils.Open(s.key, sealed, owner.String())
	if err != nil {
		return false, fmt.Errorf("decrypt totp secret: %w", err)
	}

	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, s.now().UTC(), validateOpts)
	if err != nil {
		// Malformed codes are just wrong codes.
		return false, nil
	}
	return ok, nil
}
