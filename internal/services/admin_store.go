package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lkhn/wealth-backend/internal/models"
)

var ErrAdminNotFound = errors.New("admin not found")

// AdminStore reads admin accounts. Accounts are provisioned directly in the database.
type AdminStore struct {
	db *sql.DB
}

func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{db: db}
}

const adminColumns = `id, created_at, username, email, password_hash, mfa_secret_encrypted, mfa_pending_secret_encrypted, mfa_enabled, is_active`

func scanAdmin(row *sql.Row) (models.Admin, error) {
	var a models.Admin
	var secret, pending sql.NullString
	err := row.Scan(&a.ID, &a.CreatedAt, &a.Username, &a.Email, &a.PasswordHash, &secret, &pending, &a.MFAEnabled, &a.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Admin{}, ErrAdminNotFound
	}
	if err != nil {
		return models.Admin{}, fmt.Errorf("scan admin: %w", err)
	}
	a.MFASecret = secret.String
	a.MFAPendingSecret = pending.String
	return a, nil
}

// ByUsername looks up an active admin, case-insensitively.
func (s *AdminStore) ByUsername(ctx context.Context, username string) (models.Admin, error) {
	return scanAdmin(s.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE LOWER(username) = LOWER($1) AND is_active = TRUE`, username))
}

func (s *AdminStore) ByID(ctx context.Context, id uuid.UUID) (models.Admin, error) {
	return scanAdmin(s.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = $1 AND is_active = TRUE`, id))
}

// SetPendingMFASecret stores a secret awaiting confirmation. The active secret
// and mfa_enabled are left as they are.
func (s *AdminStore) SetPendingMFASecret(ctx context.Context, id uuid.UUID, encrypted string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE admins SET mfa_pending_secret_encrypted = $2, updated_at = NOW() WHERE id = $1`,
		id, encrypted)
	return err
}

// PromotePendingMFA makes pending the active secret and enables MFA. It reports
// false when the stored pending secret is no longer pending.
func (s *AdminStore) PromotePendingMFA(ctx context.Context, id uuid.UUID, pending string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE admins
		SET mfa_secret_encrypted = mfa_pending_secret_encrypted,
			mfa_pending_secret_encrypted = NULL,
			mfa_enabled = TRUE,
			updated_at = NOW()
		WHERE id = $1 AND mfa_pending_secret_encrypted = $2
	`, id, pending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Create inserts a new active admin with MFA disabled.
func (s *AdminStore) Create(ctx context.Context, username, email, passwordHash string) (models.Admin, error) {
	a := models.Admin{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO admins (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, a.ID, a.Username, a.Email, a.PasswordHash).Scan(&a.CreatedAt)
	if err != nil {
		return models.Admin{}, fmt.Errorf("insert admin: %w", err)
	}
	return a, nil
}
