// Copyright (c) 2026 TradeCraft. All rights reserved.

/*
Package identity models the external identity provider for the TradeCraft
marketplace: a principal directory plus an RS256 token service.

It is the authority for who a caller is. Role RESOLUTION (deciding what a
principal may become) lives in the session package; this package only stores
and reports durable facts about principals.

# Architecture

  - Principal: the directory record (email, verified/disabled flags, durable
    role claim, token version).
  - TokenService: signs and verifies short-lived identity tokens and
    long-lived session artifacts.
  - Provider: combines both, adding revocation checks against the directory.

# Revocation

Every principal carries a token version. Tokens embed the version current at
mint time; bumping the version invalidates all previously issued credentials
without a server-side revocation list.
*/
package identity

import (
	"context"
	"errors"
	"time"
)

// # Domain Entities

// Principal is the authoritative directory record for one account.
type Principal struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	Disabled      bool      `json:"disabled"`
	RoleClaim     Role      `json:"role_claim"`
	TokenVersion  int64     `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Token is the decoded payload of a verified identity token or session
// artifact. Its Role reflects the claim embedded at MINT time, which may lag
// behind the directory's durable claim until the client re-authenticates.
type Token struct {
	UID           string
	Email         string
	EmailVerified bool
	Role          Role
	Version       int64
}

// SessionUser is the per-request view of an authenticated principal,
// injected into the request context by the session middleware.
type SessionUser struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	Role          Role   `json:"role"`
	EmailVerified bool   `json:"email_verified"`
}

// # Errors

var (
	// ErrInvalidToken marks a malformed, mis-typed, expired, or unsigned token.
	ErrInvalidToken = errors.New("identity: invalid token")

	// ErrRevoked marks a structurally valid token whose version predates the
	// principal's current token version.
	ErrRevoked = errors.New("identity: token revoked")

	// ErrPrincipalNotFound marks a token whose subject has no directory record.
	ErrPrincipalNotFound = errors.New("identity: principal not found")
)

// # Directory Contract

// Directory defines the data access contract for principal records.
type Directory interface {
	// Find returns the principal with the given UID, or [ErrPrincipalNotFound].
	Find(ctx context.Context, uid string) (*Principal, error)

	// SetRoleClaim durably writes the role claim for the principal.
	SetRoleClaim(ctx context.Context, uid string, role Role) error

	// BumpTokenVersion invalidates all previously issued tokens for the
	// principal by incrementing its token version.
	BumpTokenVersion(ctx context.Context, uid string) error
}
