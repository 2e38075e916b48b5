// Copyright (c) 2026 TradeCraft. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, cookie settings, and cross-cutting keys
that are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Session: Cookie names, lifetimes, and landing redirects.
  - Rate Limiting: Per-endpoint fixed-window budgets.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "tradecraft-auth"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Session & CSRF

const (
	// AuthIssuer is the standard 'iss' claim in identity and session tokens.
	AuthIssuer = "tradecraft.app"

	// SessionCookieName is the cookie holding the long-lived session artifact.
	SessionCookieName = "session"

	// SessionTTL is the session artifact lifetime. 14 days is the maximum the
	// identity backend supports; the client auto-refreshes to stay signed in.
	SessionTTL = 14 * 24 * time.Hour

	// CSRFCookieName is the cookie holding the double-submit CSRF token.
	CSRFCookieName = "csrfToken"

	// CSRFTokenTTL is the CSRF token lifetime.
	CSRFTokenTTL = 1 * time.Hour

	// CSRFTokenLength is the byte length of the random CSRF token (256 bits).
	CSRFTokenLength = 32

	// MaxIDTokenLength caps the identity token accepted at the login boundary.
	// Real tokens run one to two kilobytes; anything larger is rejected before
	// signature verification spends RSA work on it.
	MaxIDTokenLength = 4096

	// CapacitorUAMarker identifies requests made from the wrapped mobile shell.
	// Such requests load the web app cross-origin inside a native container,
	// which requires SameSite=None session cookies.
	CapacitorUAMarker = "CapacitorWebView"

	// VerifyEmailRedirect is the landing page for verification-gated denials.
	VerifyEmailRedirect = "/login?error=verify-email"
)

// # Rate Limiting (per-endpoint fixed windows)

const (
	// RateLimitCSRF caps GET /api/auth/csrf per client IP.
	RateLimitCSRF       = 30
	RateWindowCSRF      = 5 * time.Minute
	RateLimitSession    = 15
	RateWindowSession   = 5 * time.Minute
	RateLimitSessionGet = 60
	RateWindowGet       = 5 * time.Minute
	RateLimitLogout     = 30
	RateWindowLogout    = 5 * time.Minute
	RateLimitSetRole    = 20
	RateWindowSetRole   = 1 * time.Minute
)

// # Global Abuse Guard (in-process token bucket)

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID        = "X-Request-ID"
	HeaderXRealIP           = "X-Real-IP"
	HeaderXForwardedFor     = "X-Forwarded-For"
	HeaderOrigin            = "Origin"
	HeaderXCSRFToken        = "x-csrf-token"
	HeaderCapacitorPlatform = "x-capacitor-platform"
)

// # JSON Field Identifiers

const (
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixRateLimit = "auth:rl:"
)
