// Copyright (c) 2026 TradeCraft. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// # Registration Store (Postgres)

// PostgresRegistrationStore implements [RegistrationStore] over the
// marketplace onboarding tables.
type PostgresRegistrationStore struct {
	pool *pgxpool.Pool
}

// NewPostgresRegistrationStore creates a registration store backed by pgx.
func NewPostgresRegistrationStore(pool *pgxpool.Pool) *PostgresRegistrationStore {
	return &PostgresRegistrationStore{pool: pool}
}

// HasVendorRegistration checks the pending queue first, then approved vendors.
func (store *PostgresRegistrationStore) HasVendorRegistration(ctx context.Context, uid string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM pending_vendors WHERE uid = $1)
		    OR EXISTS (SELECT 1 FROM vendors WHERE uid = $1)`

	var exists bool
	if err := store.pool.QueryRow(ctx, query, uid).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_vendor_registration_lookup_failed: %w", err)
	}
	return exists, nil
}

// HasClientRegistration checks the pending queue first, then completed users.
func (store *PostgresRegistrationStore) HasClientRegistration(ctx context.Context, uid string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM pending_clients WHERE uid = $1)
		    OR EXISTS (SELECT 1 FROM users WHERE uid = $1)`

	var exists bool
	if err := store.pool.QueryRow(ctx, query, uid).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_client_registration_lookup_failed: %w", err)
	}
	return exists, nil
}

// # Profile Store (Postgres)

// PostgresProfileStore implements [ProfileStore] over the users table.
type PostgresProfileStore struct {
	pool *pgxpool.Pool
}

// NewPostgresProfileStore creates a profile store backed by pgx.
func NewPostgresProfileStore(pool *pgxpool.Pool) *PostgresProfileStore {
	return &PostgresProfileStore{pool: pool}
}

// VerifiedFlag reads the profile's verification flag. A missing row is not
// an error; it reports present=false so the caller can fall back.
func (store *PostgresProfileStore) VerifiedFlag(ctx context.Context, uid string) (bool, bool, error) {
	query := `SELECT emailverified FROM users WHERE uid = $1`

	var verified bool
	err := store.pool.QueryRow(ctx, query, uid).Scan(&verified)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("postgres_profile_flag_lookup_failed: %w", err)
	}
	return verified, true, nil
}

// # Setting Store (Postgres)

// settingEmailVerification is the admin_settings key for the enforcement toggle.
const settingEmailVerification = "emailVerification"

// PostgresSettingStore implements [SettingStore] over the admin_settings table.
type PostgresSettingStore struct {
	pool *pgxpool.Pool
}

// NewPostgresSettingStore creates a setting store backed by pgx.
func NewPostgresSettingStore(pool *pgxpool.Pool) *PostgresSettingStore {
	return &PostgresSettingStore{pool: pool}
}

// EmailVerification reads the enforcement toggle. A missing row reports
// present=false; the caller decides the default.
func (store *PostgresSettingStore) EmailVerification(ctx context.Context) (bool, bool, error) {
	query := `SELECT value FROM admin_settings WHERE key = $1`

	var required bool
	err := store.pool.QueryRow(ctx, query, settingEmailVerification).Scan(&required)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("postgres_setting_lookup_failed: %w", err)
	}
	return required, true, nil
}

// SetEmailVerification upserts the enforcement toggle.
func (store *PostgresSettingStore) SetEmailVerification(ctx context.Context, required bool) error {
	query := `
		INSERT INTO admin_settings (key, value, updatedat)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updatedat = now()`

	if _, err := store.pool.Exec(ctx, query, settingEmailVerification, required); err != nil {
		return fmt.Errorf("postgres_setting_write_failed: %w", err)
	}
	return nil
}
