// Copyright (c) 2026 TradeCraft. All rights reserved.

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// # Principal Directory (PostgreSQL)

// PostgresDirectory implements the [Directory] interface using pgx.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

// NewDirectory creates a new PostgreSQL implementation of the principal directory.
func NewDirectory(pool *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{pool: pool}
}

/*
Find retrieves a principal record by UID.

Parameters:
  - ctx: context.Context
  - uid: string

Returns:
  - *Principal: Hydrated directory record
  - error: ErrPrincipalNotFound or database errors
*/
func (directory *PostgresDirectory) Find(ctx context.Context, uid string) (*Principal, error) {
	const query = `
		SELECT uid, email, emailverified, disabled, roleclaim, tokenversion, createdat, updatedat
		FROM auth.principal
		WHERE uid = $1`

	principal := &Principal{}
	var roleClaim string
	err := directory.pool.QueryRow(ctx, query, uid).Scan(
		&principal.UID,
		&principal.Email,
		&principal.EmailVerified,
		&principal.Disabled,
		&roleClaim,
		&principal.TokenVersion,
		&principal.CreatedAt,
		&principal.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("postgres_directory_find_failed: %w", err)
	}

	principal.RoleClaim = ParseRole(roleClaim)
	return principal, nil
}

/*
Create persists a brand-new principal record.

New principals start at token version 1 with no durable role claim; role
resolution assigns the claim on first session establishment.
*/
func (directory *PostgresDirectory) Create(ctx context.Context, principal *Principal) error {
	const query = `
		INSERT INTO auth.principal (
			uid, email, emailverified, disabled, roleclaim, tokenversion, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	if principal.CreatedAt.IsZero() {
		principal.CreatedAt = now
	}
	principal.UpdatedAt = now
	if principal.TokenVersion == 0 {
		principal.TokenVersion = 1
	}

	_, err := directory.pool.Exec(ctx, query,
		principal.UID,
		principal.Email,
		principal.EmailVerified,
		principal.Disabled,
		string(principal.RoleClaim),
		principal.TokenVersion,
		principal.CreatedAt,
		principal.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_directory_create_failed: %w", err)
	}

	return nil
}

/*
SetRoleClaim durably writes the role claim for a principal.
*/
func (directory *PostgresDirectory) SetRoleClaim(ctx context.Context, uid string, role Role) error {
	const query = `
		UPDATE auth.principal
		SET roleclaim = $2, updatedat = $3
		WHERE uid = $1`

	tag, err := directory.pool.Exec(ctx, query, uid, string(role), time.Now())
	if err != nil {
		return fmt.Errorf("postgres_directory_set_claim_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPrincipalNotFound
	}

	return nil
}

/*
BumpTokenVersion invalidates all outstanding credentials for a principal.
*/
func (directory *PostgresDirectory) BumpTokenVersion(ctx context.Context, uid string) error {
	const query = `
		UPDATE auth.principal
		SET tokenversion = tokenversion + 1, updatedat = $2
		WHERE uid = $1`

	tag, err := directory.pool.Exec(ctx, query, uid, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_directory_bump_version_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPrincipalNotFound
	}

	return nil
}

/*
SetDisabled flips the disabled flag for a principal (back-office action).
*/
func (directory *PostgresDirectory) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	const query = `
		UPDATE auth.principal
		SET disabled = $2, updatedat = $3
		WHERE uid = $1`

	tag, err := directory.pool.Exec(ctx, query, uid, disabled, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_directory_set_disabled_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPrincipalNotFound
	}

	return nil
}
