// Copyright (c) 2026 TradeCraft. All rights reserved.

package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farhetkoun/tradecraft/internal/identity"
	"github.com/farhetkoun/tradecraft/internal/platform/constants"
	"github.com/farhetkoun/tradecraft/internal/platform/ctxutil"
	"github.com/farhetkoun/tradecraft/internal/platform/middleware"
)

// stubResolver returns a fixed user for one known cookie value.
type stubResolver struct {
	accept string
	user   *identity.SessionUser
}

func (resolver *stubResolver) Inspect(ctx context.Context, sessionCookie string) *identity.SessionUser {
	if sessionCookie == resolver.accept {
		return resolver.user
	}
	return nil
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if user := ctxutil.GetSessionUser(request.Context()); user != nil {
			writer.Header().Set("X-Test-UID", user.UID)
		}
		writer.WriteHeader(http.StatusOK)
	})
}

/*
TestSessionAuth verifies cookie resolution and anonymous fallthrough.
*/
func TestSessionAuth(t *testing.T) {
	resolver := &stubResolver{
		accept: "valid-artifact",
		user:   &identity.SessionUser{UID: "uid-1", Role: identity.RoleAdmin},
	}
	handler := middleware.SessionAuth(resolver)(echoUser())

	tests := []struct {
		name    string
		cookie  string
		wantUID string
	}{
		{"valid_cookie", "valid-artifact", "uid-1"},
		{"invalid_cookie", "stale-artifact", ""},
		{"no_cookie", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: tt.cookie})
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, tt.wantUID, recorder.Header().Get("X-Test-UID"))
		})
	}
}

/*
TestRequireRole verifies the authenticated-role guard.
*/
func TestRequireRole(t *testing.T) {
	guarded := middleware.RequireRole(identity.RoleAdmin)(echoUser())

	tests := []struct {
		name       string
		user       *identity.SessionUser
		wantStatus int
		wantCode   string
	}{
		{"admin_passes", &identity.SessionUser{UID: "uid-1", Role: identity.RoleAdmin}, http.StatusOK, ""},
		{"vendor_forbidden", &identity.SessionUser{UID: "uid-2", Role: identity.RoleVendor}, http.StatusForbidden, "FORBIDDEN"},
		{"anonymous_unauthorized", nil, http.StatusUnauthorized, "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				ctx := ctxutil.WithSessionUser(request.Context(), tt.user)
				request = request.WithContext(ctx)
			}

			recorder := httptest.NewRecorder()
			guarded.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantCode != "" {
				var body map[string]any
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
				assert.Equal(t, tt.wantCode, body["code"])
			}
		})
	}
}
