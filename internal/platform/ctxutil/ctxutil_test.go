// Copyright (c) 2026 TradeCraft. All rights reserved.

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farhetkoun/tradecraft/internal/identity"
	"github.com/farhetkoun/tradecraft/internal/platform/ctxutil"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_SessionUser verifies that the session user can be stored in context.
*/
func TestContext_SessionUser(t *testing.T) {
	ctx := context.Background()
	user := &identity.SessionUser{
		UID:   "user-123",
		Email: "vendor@example.com",
		Role:  identity.RoleVendor,
	}

	// 1. Initially should be nil
	assert.Nil(t, ctxutil.GetSessionUser(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithSessionUser(ctx, user)
	retrieved := ctxutil.GetSessionUser(ctx)

	assert.NotNil(t, retrieved)
	assert.Equal(t, "user-123", retrieved.UID)
	assert.Equal(t, identity.RoleVendor, retrieved.Role)
}
