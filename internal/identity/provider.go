// Copyright (c) 2026 TradeCraft. All rights reserved.

package identity

import (
	"context"
	"fmt"

	"github.com/farhetkoun/tradecraft/internal/platform/constants"
)

// Provider is the façade the session flow talks to: token verification
// backed by the principal directory.
//
// # Read vs Write

// Verification methods are read-only against the directory. The claim
// persistence methods mutate it and are the ONLY writers of the durable
// role claim in the whole system.
type Provider struct {
	tokens    *TokenService
	directory Directory
}

// NewProvider constructs a [Provider] from its token service and directory.
func NewProvider(tokens *TokenService, directory Directory) *Provider {
	return &Provider{tokens: tokens, directory: directory}
}

/*
VerifyIDToken validates a short-lived identity token and loads its principal.

The returned Token carries the claims embedded at mint time (including the
possibly stale role claim); the Principal carries the directory's current
state (disabled / verified flags, durable claim, token version).

Returns:
  - *Token, *Principal on success
  - ErrInvalidToken for malformed/expired/mis-typed tokens
  - ErrPrincipalNotFound when the subject has no directory record
*/
func (provider *Provider) VerifyIDToken(ctx context.Context, rawToken string) (*Token, *Principal, error) {
	token, err := provider.tokens.Verify(rawToken, TokenTypeID)
	if err != nil {
		return nil, nil, err
	}

	principal, err := provider.directory.Find(ctx, token.UID)
	if err != nil {
		return nil, nil, err
	}

	return token, principal, nil
}

/*
MintSessionToken exchanges a verified identity token for a session artifact.

The artifact lifetime is [constants.SessionTTL], the maximum the identity
backend supports. The embedded token version pins the artifact to the
principal's credential generation so revocation takes effect passively.

The version is re-read from the directory at mint time. Role bootstrap may
revoke credentials between identity-token verification and session mint;
stamping the current version keeps the fresh artifact valid while still
killing everything issued earlier.
*/
func (provider *Provider) MintSessionToken(ctx context.Context, token *Token) (string, error) {
	principal, err := provider.directory.Find(ctx, token.UID)
	if err != nil {
		return "", err
	}

	stamped := *token
	stamped.Version = principal.TokenVersion
	return provider.tokens.Resign(&stamped, TokenTypeSession, constants.SessionTTL)
}

/*
VerifySessionToken validates a session artifact from the session cookie.

When checkRevoked is true the artifact's token version is compared against
the directory's current version; a stale version fails with [ErrRevoked].
*/
func (provider *Provider) VerifySessionToken(ctx context.Context, rawToken string, checkRevoked bool) (*Token, *Principal, error) {
	token, err := provider.tokens.Verify(rawToken, TokenTypeSession)
	if err != nil {
		return nil, nil, err
	}

	principal, err := provider.directory.Find(ctx, token.UID)
	if err != nil {
		return nil, nil, err
	}

	if checkRevoked && token.Version != principal.TokenVersion {
		return nil, nil, fmt.Errorf("%w: version %d, current %d", ErrRevoked, token.Version, principal.TokenVersion)
	}

	return token, principal, nil
}

/*
PersistRoleClaim durably writes a role claim and revokes all previously
issued credentials so the new claim propagates on the next sign-in.

Idempotence: when the stored claim already equals the requested role the call
is a no-op and reports already=true — specifically to avoid a needless
credential invalidation on repeat logins.
*/
func (provider *Provider) PersistRoleClaim(ctx context.Context, uid string, role string) (already bool, err error) {
	principal, err := provider.directory.Find(ctx, uid)
	if err != nil {
		return false, err
	}

	if principal.RoleClaim == Role(role) {
		return true, nil
	}

	if err := provider.directory.SetRoleClaim(ctx, uid, Role(role)); err != nil {
		return false, fmt.Errorf("identity_persist_claim_failed: %w", err)
	}

	if err := provider.directory.BumpTokenVersion(ctx, uid); err != nil {
		return false, fmt.Errorf("identity_revoke_after_claim_failed: %w", err)
	}

	return false, nil
}

// RevokeCredentials invalidates every outstanding token for the principal.
func (provider *Provider) RevokeCredentials(ctx context.Context, uid string) error {
	if err := provider.directory.BumpTokenVersion(ctx, uid); err != nil {
		return fmt.Errorf("identity_revoke_failed: %w", err)
	}
	return nil
}
