package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// ConnectPostgres opens the PostgreSQL pool and creates the tables if they don't exist.
func ConnectPostgres(ctx context.Context, postgresURI string) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	zap.S().Info("connected to postgresql")

	if err = InitPostgresTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables(ctx context.Context, db *sql.DB) error {
	queries := []string{
		// Waitlist signups. No unique constraint on email: repeat signups are kept.
		`CREATE TABLE IF NOT EXISTS waitlist (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			ip_address VARCHAR(255)
		)`,

		`CREATE TABLE IF NOT EXISTS admins (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			username VARCHAR(50) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			mfa_secret_encrypted TEXT,
			mfa_pending_secret_encrypted TEXT,
			mfa_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		`ALTER TABLE admins ADD COLUMN IF NOT EXISTS mfa_pending_secret_encrypted TEXT`,

		`CREATE INDEX IF NOT EXISTS idx_waitlist_created_at ON waitlist(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_waitlist_email ON waitlist(email)`,
		`CREATE INDEX IF NOT EXISTS idx_admins_username ON admins(username)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return err
		}
	}

	zap.S().Info("postgresql tables initialized")
	return nil
}
