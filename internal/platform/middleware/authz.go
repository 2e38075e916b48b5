// Copyright (c) 2026 TradeCraft. All rights reserved.

package middleware

import (
	"context"
	"net/http"

	"github.com/farhetkoun/tradecraft/internal/identity"
	"github.com/farhetkoun/tradecraft/internal/platform/apperr"
	"github.com/farhetkoun/tradecraft/internal/platform/constants"
	"github.com/farhetkoun/tradecraft/internal/platform/ctxutil"
	requestutil "github.com/farhetkoun/tradecraft/internal/platform/request"
	"github.com/farhetkoun/tradecraft/internal/platform/respond"
)

// # Session Authorization

// SessionResolver turns a raw session cookie into an authenticated user.
// A nil result means the cookie is absent, expired, revoked, or malformed.
type SessionResolver interface {
	Inspect(ctx context.Context, sessionCookie string) *identity.SessionUser
}

// SessionAuth resolves the session cookie and injects the user into context.
//
// Resolution failures do not reject the request here; the chain simply
// continues unauthenticated and RequireRole decides what is reachable.
func SessionAuth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Read the session cookie; missing means anonymous
			cookie, err := request.Cookie(constants.SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Resolve it into a user; invalid artifacts also mean anonymous
			user := resolver.Inspect(request.Context(), cookie.Value)
			if user == nil {
				next.ServeHTTP(writer, request)
				return
			}

			// 3. Attach the authenticated identity for downstream handlers
			ctx := ctxutil.WithSessionUser(request.Context(), user)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireRole guards a route subtree behind an authenticated user with
// the given role.
func RequireRole(role identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			user, err := requestutil.RequiredSessionUser(request)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			if user.Role != role {
				respond.Error(writer, request, apperr.Forbidden("Insufficient privileges"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
