// Copyright (c) 2026 TradeCraft. All rights reserved.

package identity

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Token Types

const (
	// TokenTypeID marks a short-lived identity token presented by the client
	// right after sign-in.
	TokenTypeID = "id"

	// TokenTypeSession marks the long-lived session artifact stored in the
	// session cookie.
	TokenTypeSession = "session"

	// IDTokenTTL is the identity token lifetime.
	IDTokenTTL = 1 * time.Hour
)

// tokenClaims is the JWT payload shared by identity tokens and session artifacts.
type tokenClaims struct {
	jwt.RegisteredClaims

	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Role          string `json:"role,omitempty"`
	TokenType     string `json:"typ"`
	Version       int64  `json:"ver"`
}

// TokenService signs and verifies identity tokens and session artifacts using RS256.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
}

// NewTokenService creates a new TokenService.
// It reads RSA keys from the provided filesystem paths.
func NewTokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("identity: failed to read private key from %s: %w", privateKeyPath, err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
	if err != nil {
		return nil, fmt.Errorf("identity: failed to parse private key: %w", err)
	}

	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("identity: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("identity: failed to parse public key: %w", err)
	}

	return NewTokenServiceWithKeys(privateKey, publicKey, issuer), nil
}

// NewTokenServiceWithKeys constructs a TokenService from in-memory keys.
// Used by tests and by deployments that load keys from a secret manager
// rather than the filesystem.
func NewTokenServiceWithKeys(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer string) *TokenService {
	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
	}
}

// Sign creates a signed token of the given type for the principal.
//
// The embedded role claim is the directory's durable claim at mint time.
func (service *TokenService) Sign(principal *Principal, tokenType string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Email:         principal.Email,
		EmailVerified: principal.EmailVerified,
		Role:          string(principal.RoleClaim),
		TokenType:     tokenType,
		Version:       principal.TokenVersion,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(service.privateKey)
	if err != nil {
		// The key fragment in this message is load-bearing: route-level error
		// classification pattern-matches it to report AUTH_BACKEND_UNAVAILABLE.
		return "", fmt.Errorf("identity: failed to sign token with service private key: %w", err)
	}

	return signedToken, nil
}

// Resign re-issues a verified token's claims under a new type and lifetime.
// This is how an identity token is exchanged for a session artifact.
func (service *TokenService) Resign(token *Token, tokenType string, timeToLive time.Duration) (string, error) {
	return service.Sign(&Principal{
		UID:           token.UID,
		Email:         token.Email,
		EmailVerified: token.EmailVerified,
		RoleClaim:     token.Role,
		TokenVersion:  token.Version,
	}, tokenType, timeToLive)
}

// Verify checks the signature, expiry, issuer, and type of a token string.
//
// All structural failures map to [ErrInvalidToken]; the wrapped cause is
// preserved for logging.
func (service *TokenService) Verify(tokenString, expectedType string) (*Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return service.publicKey, nil
	}, jwt.WithIssuer(service.issuer))

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: malformed claims", ErrInvalidToken)
	}

	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("%w: token type %q, expected %q", ErrInvalidToken, claims.TokenType, expectedType)
	}

	return &Token{
		UID:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Role:          ParseRole(claims.Role),
		Version:       claims.Version,
	}, nil
}
