// Copyright (c) 2026 TradeCraft. All rights reserved.

package session

import (
	"net/http"
	"strings"

	"github.com/farhetkoun/tradecraft/internal/platform/constants"
)

// # Cookie Management

// IsWrappedNative reports whether the request originates from the mobile
// shell, which loads the web app cross-origin inside a native container.
func IsWrappedNative(request *http.Request) bool {
	if strings.Contains(request.UserAgent(), constants.CapacitorUAMarker) {
		return true
	}
	return request.Header.Get(constants.HeaderCapacitorPlatform) != ""
}

// SetSessionCookie writes the session artifact cookie.
//
// Wrapped-native requests get SameSite=None (with Secure forced on, as
// browsers require) so the cookie survives the container's cross-origin
// loads; everything else gets Lax.
func SetSessionCookie(writer http.ResponseWriter, request *http.Request, artifact string, secure bool) {
	sameSite := http.SameSiteLaxMode
	if IsWrappedNative(request) {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    artifact,
		Path:     "/",
		MaxAge:   int(constants.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}

// ClearSessionCookie expires the session cookie immediately.
func ClearSessionCookie(writer http.ResponseWriter, secure bool) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetCSRFCookie writes the double-submit cookie. The cookie is HttpOnly;
// clients receive the matching token in the mint response body and echo it
// in the x-csrf-token header.
func SetCSRFCookie(writer http.ResponseWriter, token string, secure bool) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(constants.CSRFTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
