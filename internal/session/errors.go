// Copyright (c) 2026 TradeCraft. All rights reserved.

package session

import (
	"net/http"

	"github.com/farhetkoun/tradecraft/internal/platform/apperr"
	"github.com/farhetkoun/tradecraft/internal/platform/constants"
)

// # Error Vocabulary

// Machine-readable codes returned by the session endpoints. Clients branch
// on these, never on message text.
const (
	CodeInvalidCredential      = "INVALID_CREDENTIAL"
	CodeAuthBackendUnavailable = "AUTH_BACKEND_UNAVAILABLE"
	CodeAccountDisabled        = "ACCOUNT_DISABLED"
	CodeNoRoleAssigned         = "NO_ROLE_ASSIGNED"
	CodeVerificationRequired   = "VERIFICATION_REQUIRED"
	CodeCSRFMismatch           = "CSRF_MISMATCH"
)

// errInvalidCredential marks a token that failed verification for a reason
// attributable to the caller. The backend's raw message goes to Details so
// operators can distinguish expiry from signature failure.
func errInvalidCredential(details string) *apperr.AppError {
	appError := apperr.New(http.StatusUnauthorized, CodeInvalidCredential, "Invalid or expired credential")
	appError.Details = details
	return appError
}

// errAuthBackendUnavailable marks a verification failure attributable to
// service misconfiguration rather than the caller's token.
func errAuthBackendUnavailable(details string) *apperr.AppError {
	appError := apperr.New(http.StatusInternalServerError, CodeAuthBackendUnavailable, "Authentication backend unavailable")
	appError.Details = details
	return appError
}

func errAccountDisabled() *apperr.AppError {
	return apperr.New(http.StatusForbidden, CodeAccountDisabled, "This account has been disabled")
}

func errNoRoleAssigned() *apperr.AppError {
	return apperr.New(http.StatusForbidden, CodeNoRoleAssigned, "No role assigned. Contact support.")
}

// errVerificationRequired carries the login redirect so clients can route
// the user straight to the verification prompt.
func errVerificationRequired() *apperr.AppError {
	appError := apperr.New(http.StatusForbidden, CodeVerificationRequired, "Email verification required")
	appError.Redirect = constants.VerifyEmailRedirect
	return appError
}

func errCSRFMismatch() *apperr.AppError {
	return apperr.New(http.StatusForbidden, CodeCSRFMismatch, "Invalid CSRF token")
}
