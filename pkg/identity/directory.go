// Package identity reads caller profiles mirrored from the external identity
// provider. The provider owns sign-in; this package only answers "who is this
// user id" with the primary email and the admin capability flag.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ghuser/showcase/pkg/database"
)

// ErrProfileNotFound is returned when no profile exists for a user id.
var ErrProfileNotFound = errors.New("identity: profile not found")

// Profile is the directory entry for one user.
type Profile struct {
	UserID       string
	PrimaryEmail string // empty when the provider has none on file
	DisplayName  string
	IsAdmin      bool
	UpdatedAt    time.Time
}

// Directory looks up profiles. Implementations must not cache admin flags:
// every call reflects the provider's current state.
type Directory interface {
	Profile(ctx context.Context, userID string) (*Profile, error)
}

// PostgresDirectory serves profiles from the identity_profiles table.
type PostgresDirectory struct {
	db *database.Database
}

// NewPostgresDirectory returns a Directory over the identity_profiles table.
func NewPostgresDirectory(db *database.Database) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

const getProfile = `
SELECT user_id, primary_email, display_name, is_admin, updated_at
FROM identity_profiles WHERE user_id = $1`

// Profile returns the profile for userID or ErrProfileNotFound.
func (d *PostgresDirectory) Profile(ctx context.Context, userID string) (*Profile, error) {
	var (
		p            Profile
		email, label sql.NullString
	)
	err := d.db.DB().QueryRowContext(ctx, getProfile, userID).
		Scan(&p.UserID, &email, &label, &p.IsAdmin, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("identity: query profile: %w", err)
	}
	p.PrimaryEmail = email.String
	p.DisplayName = label.String
	return &p, nil
}

const upsertProfile = `
INSERT INTO identity_profiles (user_id, primary_email, display_name, is_admin, updated_at)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, now())
ON CONFLICT (user_id) DO UPDATE
SET primary_email = EXCLUDED.primary_email,
    display_name  = EXCLUDED.display_name,
    is_admin      = EXCLUDED.is_admin,
    updated_at    = now()`

// Upsert writes a profile as received from the provider sync.
func (d *PostgresDirectory) Upsert(ctx context.Context, p Profile) error {
	if p.UserID == "" {
		return errors.New("identity: user id is required")
	}
	if _, err := d.db.DB().ExecContext(ctx, upsertProfile, p.UserID, p.PrimaryEmail, p.DisplayName, p.IsAdmin); err != nil {
		return fmt.Errorf("identity: upsert profile: %w", err)
	}
	return nil
}
