// Copyright (c) 2026 TradeCraft. All rights reserved.

/*
Package session implements login session establishment and role resolution
for the TradeCraft marketplace.

# Flow

A client exchanges a short-lived identity token for a 14-day session cookie:

	Anonymous -> Verifying -> {Denied | Active}

Establishment verifies the credential, resolves a role (claim, admin email
override, or one-time registration bootstrap), enforces the email
verification gate, and mints the session artifact. Every mutating endpoint
sits behind a double-submit CSRF check and a per-IP rate limit.

# Components

  - Resolver: ordered role resolution with best-effort claim persistence.
  - Gate: email-verification policy, fail-safe on read errors.
  - Service: orchestrates both over the identity provider.
  - Handler: the chi route surface under /api/auth.
*/
package session

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/farhetkoun/tradecraft/internal/identity"
	"github.com/farhetkoun/tradecraft/internal/platform/apperr"
	"github.com/farhetkoun/tradecraft/internal/platform/ctxutil"
)

// IdentityProvider is the identity backend surface the service needs.
// Satisfied by [identity.Provider].
type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, rawToken string) (*identity.Token, *identity.Principal, error)
	MintSessionToken(ctx context.Context, token *identity.Token) (string, error)
	VerifySessionToken(ctx context.Context, rawToken string, checkRevoked bool) (*identity.Token, *identity.Principal, error)
	PersistRoleClaim(ctx context.Context, uid string, role string) (already bool, err error)
	RevokeCredentials(ctx context.Context, uid string) error
}

// backendErrorPattern distinguishes service misconfiguration from a bad
// caller token by inspecting the error text. The identity layer has no
// structured code for "my own key material is broken", so keyword matching
// is the operator signal.
var backendErrorPattern = regexp.MustCompile(`(?i)credential|private key|certificate|service account`)

// Service orchestrates the session lifecycle.
type Service struct {
	provider      IdentityProvider
	resolver      *Resolver
	gate          *Gate
	registrations RegistrationStore
	adminEmail    string
}

// NewService constructs a [Service].
func NewService(provider IdentityProvider, resolver *Resolver, gate *Gate, registrations RegistrationStore, adminEmail string) *Service {
	return &Service{
		provider:      provider,
		resolver:      resolver,
		gate:          gate,
		registrations: registrations,
		adminEmail:    strings.ToLower(adminEmail),
	}
}

// EstablishResult is the successful outcome of a login.
type EstablishResult struct {
	Role     identity.Role
	Redirect string
	Artifact string
}

/*
Establish exchanges a verified identity token for a session artifact.

Order of checks mirrors the login contract: credential validity, account
status, role resolution, verification gate, then mint. The resolved role is
embedded in the artifact so later inspections need no re-resolution.

Returns an [*apperr.AppError] from the session error vocabulary on denial.
*/
func (service *Service) Establish(ctx context.Context, idToken string) (*EstablishResult, error) {
	token, principal, err := service.provider.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, classifyVerifyError(err)
	}

	if principal.Disabled {
		return nil, errAccountDisabled()
	}

	role := service.resolver.Resolve(ctx, token, principal)
	if !role.IsAssigned() {
		return nil, errNoRoleAssigned()
	}

	if service.gate.Blocks(ctx, principal, role) {
		return nil, errVerificationRequired()
	}

	stamped := *token
	stamped.Role = role
	artifact, err := service.provider.MintSessionToken(ctx, &stamped)
	if err != nil {
		return nil, classifyVerifyError(fmt.Errorf("session_mint_failed: %w", err))
	}

	return &EstablishResult{
		Role:     role,
		Redirect: role.LandingPath(),
		Artifact: artifact,
	}, nil
}

/*
Inspect resolves a session cookie into the authenticated user, or nil.

Unlike Establish it never bootstraps from registrations and never persists
anything; role derivation here is the claim plus the admin email override.
All failure modes (expired, revoked, disabled, unknown principal) collapse
to nil so callers cannot distinguish them.
*/
func (service *Service) Inspect(ctx context.Context, sessionCookie string) *identity.SessionUser {
	token, principal, err := service.provider.VerifySessionToken(ctx, sessionCookie, true)
	if err != nil {
		return nil
	}
	if principal.Disabled {
		return nil
	}

	role := token.Role
	if !role.IsAssigned() {
		role = principal.RoleClaim
	}
	if !role.IsAssigned() && service.adminEmail != "" && strings.EqualFold(principal.Email, service.adminEmail) {
		role = identity.RoleAdmin
	}

	return &identity.SessionUser{
		UID:           principal.UID,
		Email:         principal.Email,
		Role:          role,
		EmailVerified: principal.EmailVerified,
	}
}

// Logout revokes the session's credentials best-effort. It never fails:
// an invalid or absent session is already the desired end state, and
// reporting the difference would leak session validity.
func (service *Service) Logout(ctx context.Context, sessionCookie string) {
	if sessionCookie == "" {
		return
	}

	token, _, err := service.provider.VerifySessionToken(ctx, sessionCookie, true)
	if err != nil {
		return
	}

	if err := service.provider.RevokeCredentials(ctx, token.UID); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "logout_revoke_failed",
			slog.String("uid", token.UID),
			slog.Any("error", err),
		)
	}
}

/*
AssignRole durably writes a client- or vendor-role claim for the caller.

Guards, in order: the credential must verify; principals that are already
admins (by claim or configured email) cannot change roles through this
endpoint; and the requested role must be backed by a matching registration
record, so possession of a valid token alone cannot escalate anyone.

Returns the assigned role and whether the claim was already current.
*/
func (service *Service) AssignRole(ctx context.Context, idToken string, requested identity.Role) (identity.Role, bool, error) {
	token, principal, err := service.provider.VerifyIDToken(ctx, idToken)
	if err != nil {
		return identity.RoleUnassigned, false, classifyVerifyError(err)
	}

	if token.Role == identity.RoleAdmin ||
		(service.adminEmail != "" && strings.EqualFold(principal.Email, service.adminEmail)) {
		return identity.RoleUnassigned, false,
			apperr.Forbidden("Admin role changes must be server-managed")
	}

	switch requested {
	case identity.RoleVendor:
		registered, err := service.registrations.HasVendorRegistration(ctx, principal.UID)
		if err != nil {
			return identity.RoleUnassigned, false, apperr.Internal(err)
		}
		if !registered {
			return identity.RoleUnassigned, false, apperr.Forbidden("No vendor registration found")
		}
	case identity.RoleClient:
		registered, err := service.registrations.HasClientRegistration(ctx, principal.UID)
		if err != nil {
			return identity.RoleUnassigned, false, apperr.Internal(err)
		}
		if !registered {
			return identity.RoleUnassigned, false, apperr.Forbidden("No client registration found")
		}
	default:
		return identity.RoleUnassigned, false, apperr.ValidationError("Invalid role")
	}

	already, err := service.provider.PersistRoleClaim(ctx, principal.UID, string(requested))
	if err != nil {
		return identity.RoleUnassigned, false, apperr.Internal(err)
	}

	return requested, already, nil
}

// classifyVerifyError maps identity-layer failures onto the session error
// vocabulary. Misconfiguration keywords escalate to the backend error; the
// rest is attributed to the caller's token.
func classifyVerifyError(err error) *apperr.AppError {
	if appError := apperr.As(err); appError != nil {
		return appError
	}

	details := err.Error()
	if backendErrorPattern.MatchString(details) {
		return errAuthBackendUnavailable(details)
	}
	return errInvalidCredential(details)
}
