// Copyright (c) 2026 TradeCraft. All rights reserved.

package session

import (
	"context"
	"log/slog"

	"github.com/farhetkoun/tradecraft/internal/identity"
	"github.com/farhetkoun/tradecraft/internal/platform/ctxutil"
)

/*
Gate enforces the email-verification policy at login.

The decision combines three inputs:

  - the operator toggle (absent means enforced)
  - the identity backend's verified flag
  - the application profile's verified flag, when a profile exists

Admins are always exempt. Both reads are fail-safe: when the toggle or the
profile cannot be read the gate degrades to the identity flag alone rather
than locking everyone out.
*/
type Gate struct {
	settings SettingStore
	profiles ProfileStore
}

// NewGate constructs a [Gate].
func NewGate(settings SettingStore, profiles ProfileStore) *Gate {
	return &Gate{settings: settings, profiles: profiles}
}

// Blocks reports whether login must be denied pending verification.
func (gate *Gate) Blocks(ctx context.Context, principal *identity.Principal, role identity.Role) bool {

	// Admins bypass the gate entirely.
	if role == identity.RoleAdmin {
		return false
	}

	// Operator toggle. An absent setting means the feature was never relaxed,
	// so enforcement stays on. A failed read also stays on: enforcement is
	// the safe default for an auth gate.
	required, present, err := gate.settings.EmailVerification(ctx)
	if err != nil {
		gate.warn(ctx, principal.UID, "verification_setting_read_failed", err)
		required = true
	} else if !present {
		required = true
	}
	if !required {
		return false
	}

	return !gate.verified(ctx, principal)
}

// verified combines the identity flag with the profile flag. The profile
// flag only counts when a profile document exists; the profile flow may
// clear it after the identity backend has set its own.
func (gate *Gate) verified(ctx context.Context, principal *identity.Principal) bool {
	identityVerified := principal.EmailVerified

	profileVerified, present, err := gate.profiles.VerifiedFlag(ctx, principal.UID)
	if err != nil {
		// Degrade to the identity flag; a flaky profile read must not lock
		// out a verified account.
		gate.warn(ctx, principal.UID, "profile_flag_read_failed", err)
		return identityVerified
	}
	if !present {
		return identityVerified
	}

	return identityVerified && profileVerified
}

func (gate *Gate) warn(ctx context.Context, uid string, event string, err error) {
	ctxutil.GetLogger(ctx).WarnContext(ctx, event,
		slog.String("uid", uid),
		slog.Any("error", err),
	)
}
