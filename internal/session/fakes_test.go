// Copyright (c) 2026 TradeCraft. All rights reserved.

package session_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farhetkoun/tradecraft/internal/identity"
)

// fakeDirectory is an in-memory principal directory recording write calls.
type fakeDirectory struct {
	principals map[string]*identity.Principal

	setClaimCalls int
	bumpCalls     int
}

func newFakeDirectory(principals ...*identity.Principal) *fakeDirectory {
	directory := &fakeDirectory{principals: make(map[string]*identity.Principal)}
	for _, principal := range principals {
		directory.principals[principal.UID] = principal
	}
	return directory
}

func (directory *fakeDirectory) Find(ctx context.Context, uid string) (*identity.Principal, error) {
	principal, found := directory.principals[uid]
	if !found {
		return nil, identity.ErrPrincipalNotFound
	}
	copied := *principal
	return &copied, nil
}

func (directory *fakeDirectory) SetRoleClaim(ctx context.Context, uid string, role identity.Role) error {
	directory.setClaimCalls++
	principal, found := directory.principals[uid]
	if !found {
		return identity.ErrPrincipalNotFound
	}
	principal.RoleClaim = role
	return nil
}

func (directory *fakeDirectory) BumpTokenVersion(ctx context.Context, uid string) error {
	directory.bumpCalls++
	principal, found := directory.principals[uid]
	if !found {
		return identity.ErrPrincipalNotFound
	}
	principal.TokenVersion++
	return nil
}

// fakeRegistrations answers registration existence checks and counts lookups.
type fakeRegistrations struct {
	vendor    bool
	client    bool
	vendorErr error
	clientErr error

	vendorLookups int
	clientLookups int
}

func (store *fakeRegistrations) HasVendorRegistration(ctx context.Context, uid string) (bool, error) {
	store.vendorLookups++
	return store.vendor, store.vendorErr
}

func (store *fakeRegistrations) HasClientRegistration(ctx context.Context, uid string) (bool, error) {
	store.clientLookups++
	return store.client, store.clientErr
}

// fakePersister records claim persistence requests.
type fakePersister struct {
	already bool
	err     error

	calls []string
}

func (persister *fakePersister) PersistRoleClaim(ctx context.Context, uid string, role string) (bool, error) {
	persister.calls = append(persister.calls, role)
	return persister.already, persister.err
}

// fakeProfiles serves the application-profile verification flag.
type fakeProfiles struct {
	verified bool
	present  bool
	err      error
}

func (store *fakeProfiles) VerifiedFlag(ctx context.Context, uid string) (bool, bool, error) {
	return store.verified, store.present, store.err
}

// fakeSettings serves the email-verification toggle.
type fakeSettings struct {
	required bool
	present  bool
	readErr  error

	written []bool
	saveErr error
}

func (store *fakeSettings) EmailVerification(ctx context.Context) (bool, bool, error) {
	return store.required, store.present, store.readErr
}

func (store *fakeSettings) SetEmailVerification(ctx context.Context, required bool) error {
	if store.saveErr != nil {
		return store.saveErr
	}
	store.written = append(store.written, required)
	store.required = required
	store.present = true
	return nil
}

func newTestTokens(t *testing.T) *identity.TokenService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return identity.NewTokenServiceWithKeys(key, &key.PublicKey, "tradecraft.test")
}
