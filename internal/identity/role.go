// Copyright (c) 2026 TradeCraft. All rights reserved.

package identity

// # Application Roles

// Role is the closed set of authorization roles a principal can hold.
//
// The durable role claim in the identity directory is an open string; it is
// narrowed to this closed union exactly once per request so that downstream
// logic never performs stringly-typed comparisons.
type Role string

const (
	// Marketplace operator with full back-office access
	RoleAdmin Role = "admin"

	// Service provider offering listings and bookings
	RoleVendor Role = "vendor"

	// Event organizer booking vendor services
	RoleClient Role = "client"

	// RoleUnassigned marks a principal with no resolved role. It is a terminal
	// state requiring support intervention, not a retryable condition.
	RoleUnassigned Role = ""
)

// ParseRole narrows an arbitrary claim value to the closed [Role] set.
// Unknown values map to [RoleUnassigned].
func ParseRole(value string) Role {
	switch Role(value) {
	case RoleAdmin, RoleVendor, RoleClient:
		return Role(value)
	default:
		return RoleUnassigned
	}
}

// IsAssigned reports whether the role is one of the three concrete roles.
func (r Role) IsAssigned() bool {
	return r != RoleUnassigned
}

// LandingPath returns the default post-login redirect target for the role.
func (r Role) LandingPath() string {
	switch r {
	case RoleAdmin:
		return "/admin/home"
	case RoleVendor:
		return "/vendor/home"
	default:
		return "/client/home"
	}
}
