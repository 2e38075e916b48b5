// Copyright (c) 2026 TradeCraft. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It centralizes body decoding and session-identity extraction so handlers
share one error vocabulary for malformed input and missing authentication.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/farhetkoun/tradecraft/internal/identity"
	"github.com/farhetkoun/tradecraft/internal/platform/apperr"
	"github.com/farhetkoun/tradecraft/internal/platform/ctxutil"
	"github.com/farhetkoun/tradecraft/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
SessionUser extracts the authenticated session user from the request context.

Returns nil if the request is not authenticated.
*/
func SessionUser(request *http.Request) *identity.SessionUser {
	return ctxutil.GetSessionUser(request.Context())
}

/*
RequiredSessionUser ensures the request is authenticated and returns the user.

Returns:
  - *identity.SessionUser: The authenticated session user
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredSessionUser(request *http.Request) (*identity.SessionUser, error) {

	// Get the session user injected by the session middleware
	user := ctxutil.GetSessionUser(request.Context())

	// If the user is not authenticated, return an error
	if user == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return user, nil
}
