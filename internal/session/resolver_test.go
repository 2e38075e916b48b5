// Copyright (c) 2026 TradeCraft. All rights reserved.

package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farhetkoun/tradecraft/internal/identity"
	"github.com/farhetkoun/tradecraft/internal/session"
)

const testAdminEmail = "admin@tradecraft.com"

func unclaimedPrincipal(email string) *identity.Principal {
	return &identity.Principal{
		UID:   "uid-100",
		Email: email,
	}
}

/*
TestResolver_ExistingClaim verifies a claimed principal resolves without any
registration lookups or claim writes.
*/
func TestResolver_ExistingClaim(t *testing.T) {
	registrations := &fakeRegistrations{vendor: true, client: true}
	persister := &fakePersister{}
	resolver := session.NewResolver(testAdminEmail, registrations, persister)

	token := &identity.Token{UID: "uid-100", Role: identity.RoleAdmin}
	role := resolver.Resolve(context.Background(), token, unclaimedPrincipal("whoever@example.com"))

	assert.Equal(t, identity.RoleAdmin, role)
	assert.Zero(t, registrations.vendorLookups)
	assert.Zero(t, registrations.clientLookups)
	assert.Empty(t, persister.calls)
}

/*
TestResolver_DurableClaimFallback verifies the directory's claim is honored
when the credential predates it.
*/
func TestResolver_DurableClaimFallback(t *testing.T) {
	registrations := &fakeRegistrations{}
	persister := &fakePersister{}
	resolver := session.NewResolver(testAdminEmail, registrations, persister)

	principal := unclaimedPrincipal("client@example.com")
	principal.RoleClaim = identity.RoleClient

	role := resolver.Resolve(context.Background(), &identity.Token{UID: "uid-100"}, principal)

	assert.Equal(t, identity.RoleClient, role)
	assert.Zero(t, registrations.vendorLookups)
	assert.Empty(t, persister.calls)
}

/*
TestResolver_AdminEmailOverride verifies the case-insensitive email match and
the one-time claim persistence.
*/
func TestResolver_AdminEmailOverride(t *testing.T) {
	persister := &fakePersister{}
	resolver := session.NewResolver(testAdminEmail, &fakeRegistrations{}, persister)

	role := resolver.Resolve(context.Background(), &identity.Token{UID: "uid-100"}, unclaimedPrincipal("Admin@TradeCraft.com"))

	assert.Equal(t, identity.RoleAdmin, role)
	assert.Equal(t, []string{"admin"}, persister.calls)
}

/*
TestResolver_Bootstrap covers the registration inference path.
*/
func TestResolver_Bootstrap(t *testing.T) {
	tests := []struct {
		name          string
		registrations *fakeRegistrations
		wantRole      identity.Role
		wantPersisted []string
	}{
		{
			name:          "vendor_registration",
			registrations: &fakeRegistrations{vendor: true},
			wantRole:      identity.RoleVendor,
			wantPersisted: []string{"vendor"},
		},
		{
			name:          "client_registration",
			registrations: &fakeRegistrations{client: true},
			wantRole:      identity.RoleClient,
			wantPersisted: []string{"client"},
		},
		{
			name:          "vendor_wins_over_client",
			registrations: &fakeRegistrations{vendor: true, client: true},
			wantRole:      identity.RoleVendor,
			wantPersisted: []string{"vendor"},
		},
		{
			name:          "no_registration",
			registrations: &fakeRegistrations{},
			wantRole:      identity.RoleUnassigned,
			wantPersisted: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			persister := &fakePersister{}
			resolver := session.NewResolver(testAdminEmail, tt.registrations, persister)

			role := resolver.Resolve(context.Background(), &identity.Token{UID: "uid-100"}, unclaimedPrincipal("user@example.com"))

			assert.Equal(t, tt.wantRole, role)
			assert.Equal(t, tt.wantPersisted, persister.calls)
		})
	}
}

/*
TestResolver_LookupFailure verifies a failed registration lookup degrades to
unassigned instead of failing the request.
*/
func TestResolver_LookupFailure(t *testing.T) {
	registrations := &fakeRegistrations{vendorErr: errors.New("store down")}
	persister := &fakePersister{}
	resolver := session.NewResolver(testAdminEmail, registrations, persister)

	role := resolver.Resolve(context.Background(), &identity.Token{UID: "uid-100"}, unclaimedPrincipal("user@example.com"))

	assert.Equal(t, identity.RoleUnassigned, role)
	assert.Empty(t, persister.calls)
}

/*
TestResolver_PersistFailureNonFatal verifies a failed claim write still
returns the resolved role for the current request.
*/
func TestResolver_PersistFailureNonFatal(t *testing.T) {
	persister := &fakePersister{err: errors.New("claim store down")}
	resolver := session.NewResolver(testAdminEmail, &fakeRegistrations{vendor: true}, persister)

	role := resolver.Resolve(context.Background(), &identity.Token{UID: "uid-100"}, unclaimedPrincipal("user@example.com"))

	assert.Equal(t, identity.RoleVendor, role)
}
