// Copyright (c) 2026 TradeCraft. All rights reserved.

package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/farhetkoun/tradecraft/internal/platform/constants"
)

// # CSRF Double-Submit

// MintCSRFToken generates a fresh random token for the double-submit pair.
func MintCSRFToken() (string, error) {
	buf := make([]byte, constants.CSRFTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("csrf_token_generation_failed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// VerifyCSRFPair reports whether the cookie and header values form a valid
// double-submit pair. Both must be present; comparison is constant-time.
func VerifyCSRFPair(cookieValue, headerValue string) bool {
	if cookieValue == "" || headerValue == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieValue), []byte(headerValue)) == 1
}
