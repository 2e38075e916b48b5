// Copyright (c) 2026 TradeCraft. All rights reserved.

package session

import "context"

// # Storage Contracts

// RegistrationStore answers whether a principal has begun or completed
// onboarding on either side of the marketplace. Used once per principal to
// bootstrap a role for accounts created before durable claims existed.
type RegistrationStore interface {
	// HasVendorRegistration reports a pending or approved vendor registration.
	HasVendorRegistration(ctx context.Context, uid string) (bool, error)

	// HasClientRegistration reports a pending or completed client registration.
	HasClientRegistration(ctx context.Context, uid string) (bool, error)
}

// ProfileStore exposes the application-profile verification flag, which the
// profile flow may set independently of the identity backend's flag.
type ProfileStore interface {
	// VerifiedFlag returns the profile's emailVerified flag and whether a
	// profile document exists at all.
	VerifiedFlag(ctx context.Context, uid string) (verified bool, present bool, err error)
}

// SettingStore exposes operator-controlled toggles read on the hot path.
type SettingStore interface {
	// EmailVerification returns the enforcement toggle and whether it has
	// ever been written. Callers treat an absent setting as enforced.
	EmailVerification(ctx context.Context) (required bool, present bool, err error)

	// SetEmailVerification durably writes the enforcement toggle.
	SetEmailVerification(ctx context.Context, required bool) error
}
