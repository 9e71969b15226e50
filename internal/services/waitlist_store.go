package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lkhn/wealth-backend/internal/models"
)

// WaitlistStore persists waitlist signups in PostgreSQL.
type WaitlistStore struct {
	db *sql.DB
}

func NewWaitlistStore(db *sql.DB) *WaitlistStore {
	return &WaitlistStore{db: db}
}

// Insert stores a signup. Duplicate emails are accepted.
func (s *WaitlistStore) Insert(ctx context.Context, entry models.WaitlistEntry) (models.WaitlistEntry, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.SubmittedAt.IsZero() {
		entry.SubmittedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO waitlist (id, created_at, name, email, ip_address)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ID, entry.SubmittedAt, entry.Name, entry.Email, entry.IPAddress)
	if err != nil {
		return models.WaitlistEntry{}, fmt.Errorf("insert waitlist entry: %w", err)
	}
	return entry, nil
}

// List returns the newest signups first.
func (s *WaitlistStore) List(ctx context.Context, limit int64) ([]models.WaitlistEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, name, email, ip_address
		FROM waitlist
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query waitlist: %w", err)
	}
	defer rows.Close()

	entries := []models.WaitlistEntry{}
	for rows.Next() {
		var e models.WaitlistEntry
		var ip sql.NullString
		if err := rows.Scan(&e.ID, &e.SubmittedAt, &e.Name, &e.Email, &ip); err != nil {
			return nil, fmt.Errorf("scan waitlist entry: %w", err)
		}
		e.IPAddress = ip.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
