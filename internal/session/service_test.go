// Copyright (c) 2026 TradeCraft. All rights reserved.

package session_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farhetkoun/tradecraft/internal/identity"
	"github.com/farhetkoun/tradecraft/internal/platform/apperr"
	"github.com/farhetkoun/tradecraft/internal/session"
)

// stubProvider fails every credential verification with a fixed error.
type stubProvider struct {
	verifyErr error
}

func (provider *stubProvider) VerifyIDToken(ctx context.Context, rawToken string) (*identity.Token, *identity.Principal, error) {
	return nil, nil, provider.verifyErr
}

func (provider *stubProvider) MintSessionToken(ctx context.Context, token *identity.Token) (string, error) {
	return "", provider.verifyErr
}

func (provider *stubProvider) VerifySessionToken(ctx context.Context, rawToken string, checkRevoked bool) (*identity.Token, *identity.Principal, error) {
	return nil, nil, provider.verifyErr
}

func (provider *stubProvider) PersistRoleClaim(ctx context.Context, uid string, role string) (bool, error) {
	return false, nil
}

func (provider *stubProvider) RevokeCredentials(ctx context.Context, uid string) error {
	return nil
}

/*
TestEstablish_ErrorClassification verifies how identity-layer failures map
onto the login error vocabulary: key-material and certificate trouble is the
operator's fault and escalates to 500, everything else is attributed to the
caller's token as a 401 with diagnostics.
*/
func TestEstablish_ErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		verifyErr  error
		wantCode   string
		wantStatus int
	}{
		{
			name:       "service_account_keyword",
			verifyErr:  errors.New("failed to load service account key"),
			wantCode:   session.CodeAuthBackendUnavailable,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "private_key_keyword",
			verifyErr:  errors.New("identity: failed to sign token with service private key: crypto failure"),
			wantCode:   session.CodeAuthBackendUnavailable,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "credential_keyword_case_insensitive",
			verifyErr:  errors.New("Invalid Credential configuration"),
			wantCode:   session.CodeAuthBackendUnavailable,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "certificate_keyword",
			verifyErr:  errors.New("x509: certificate has expired or is not yet valid"),
			wantCode:   session.CodeAuthBackendUnavailable,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "expired_token_stays_callers_fault",
			verifyErr:  errors.New("identity: invalid token: token is expired"),
			wantCode:   session.CodeInvalidCredential,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed_token_stays_callers_fault",
			verifyErr:  errors.New("identity: invalid token: token contains an invalid number of segments"),
			wantCode:   session.CodeInvalidCredential,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := session.NewService(&stubProvider{verifyErr: tt.verifyErr}, nil, nil, nil, testAdminEmail)

			result, err := service.Establish(context.Background(), "some-token")
			require.Nil(t, result)
			require.True(t, apperr.IsAppError(err))

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, tt.wantCode, appError.Code)
			assert.Equal(t, tt.wantStatus, appError.HTTPStatus)
			assert.Equal(t, tt.verifyErr.Error(), appError.Details)
		})
	}
}

/*
TestEstablish_AppErrorPassthrough verifies an already-classified error from
the identity layer survives untouched instead of being re-labelled.
*/
func TestEstablish_AppErrorPassthrough(t *testing.T) {
	classified := apperr.Forbidden("Upstream said no")
	service := session.NewService(&stubProvider{verifyErr: classified}, nil, nil, nil, testAdminEmail)

	_, err := service.Establish(context.Background(), "some-token")

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Same(t, classified, appError)
}
