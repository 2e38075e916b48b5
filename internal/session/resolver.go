// Copyright (c) 2026 TradeCraft. All rights reserved.

package session

import (
	"context"
	"log/slog"
	"strings"

	"github.com/farhetkoun/tradecraft/internal/identity"
	"github.com/farhetkoun/tradecraft/internal/platform/ctxutil"
)

// ClaimPersister durably records a resolved role. Persistence is an
// optimization so later logins short-circuit on the claim; resolution
// succeeds even when the write fails.
type ClaimPersister interface {
	// PersistRoleClaim writes the claim and revokes outstanding credentials.
	// already=true means the claim was current and nothing was revoked.
	PersistRoleClaim(ctx context.Context, uid string, role string) (already bool, err error)
}

/*
Resolver decides which role a verified principal holds.

Resolution runs an ordered list of sources and stops at the first match:

 1. The role claim embedded in the credential (or the directory's durable
    claim when the credential predates it). No side effects.
 2. The configured admin email. Matching promotes to admin and durably
    persists the claim so the override is a one-time migration.
 3. Registration records: a vendor registration wins over a client one.
    The resolved role is persisted the same way.

A principal matching no source resolves to [identity.RoleUnassigned]; the
caller turns that into a denial.
*/
type Resolver struct {
	adminEmail    string
	registrations RegistrationStore
	persister     ClaimPersister
}

// NewResolver constructs a [Resolver].
func NewResolver(adminEmail string, registrations RegistrationStore, persister ClaimPersister) *Resolver {
	return &Resolver{
		adminEmail:    strings.ToLower(adminEmail),
		registrations: registrations,
		persister:     persister,
	}
}

// Resolve determines the principal's role. It never fails: claim persistence
// and registration lookups degrade to warnings, and an unresolvable principal
// reports [identity.RoleUnassigned].
func (resolver *Resolver) Resolve(ctx context.Context, token *identity.Token, principal *identity.Principal) identity.Role {

	// 1. Existing claim wins outright. The credential's embedded claim is
	// checked first; the directory's durable claim covers credentials minted
	// before a bootstrap persisted it.
	if token.Role.IsAssigned() {
		return token.Role
	}
	if principal.RoleClaim.IsAssigned() {
		return principal.RoleClaim
	}

	// 2. Admin override by configured email.
	if resolver.adminEmail != "" && strings.EqualFold(principal.Email, resolver.adminEmail) {
		resolver.persist(ctx, principal.UID, identity.RoleAdmin)
		return identity.RoleAdmin
	}

	// 3. Bootstrap from registration records. Vendor is checked first so a
	// principal present on both sides lands on the vendor dashboard.
	if resolver.registrations != nil {
		isVendor, err := resolver.registrations.HasVendorRegistration(ctx, principal.UID)
		if err != nil {
			resolver.warn(ctx, principal.UID, "vendor_registration_lookup_failed", err)
			return identity.RoleUnassigned
		}
		if isVendor {
			resolver.persist(ctx, principal.UID, identity.RoleVendor)
			return identity.RoleVendor
		}

		isClient, err := resolver.registrations.HasClientRegistration(ctx, principal.UID)
		if err != nil {
			resolver.warn(ctx, principal.UID, "client_registration_lookup_failed", err)
			return identity.RoleUnassigned
		}
		if isClient {
			resolver.persist(ctx, principal.UID, identity.RoleClient)
			return identity.RoleClient
		}
	}

	return identity.RoleUnassigned
}

// persist writes the resolved claim best-effort. A failed write only costs
// a repeat resolution on the next login.
func (resolver *Resolver) persist(ctx context.Context, uid string, role identity.Role) {
	if resolver.persister == nil {
		return
	}
	if _, err := resolver.persister.PersistRoleClaim(ctx, uid, string(role)); err != nil {
		resolver.warn(ctx, uid, "role_claim_persist_failed", err)
	}
}

func (resolver *Resolver) warn(ctx context.Context, uid string, event string, err error) {
	ctxutil.GetLogger(ctx).WarnContext(ctx, event,
		slog.String("uid", uid),
		slog.Any("error", err),
	)
}
