// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package utils holds small helpers shared by the engine and its test
// fixtures: bearer-header parsing and JWT inspection of the opaque sync
// token. The engine treats the token as opaque on the wire; the unverified
// expiry peek below is non-authoritative: it only decides when the engine
// refreshes the token early, and never gates an authenticated call.
package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken creates a signed HMAC-SHA256 JWT for userID, valid for
// tokenDuration. Used by the in-process fake sync server; the production
// server mints its own tokens and the client never calls this.
func GenerateToken(issuer, userID string, tokenDuration time.Duration, signKey []byte) (string, error) {
	if issuer == "" || userID == "" || tokenDuration == 0 || len(signKey) == 0 {
		return "", errors.New("invalid params for generating JWT token")
	}

	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signKey)
	if err != nil {
		return "", fmt.Errorf("error occurred during signing JWT token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken verifies tokenString against signKey and issuer and returns
// the subject (user id). Used by the fake sync server's auth middleware.
func ValidateToken(tokenString string, signKey []byte, issuer string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return signKey, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return "", fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("error occurred during getting subject from token: %w", err)
	}
	if subject == "" {
		return "", errors.New("empty subject error")
	}
	return subject, nil
}

// ParseBearerToken extracts the credential from an "Authorization: Bearer
// <token>" header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Split(strings.TrimSpace(authorizationHeader), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

// TokenExpiresAt peeks at the exp claim of tokenString without verifying
// its signature. The result is non-authoritative: it lets the engine refresh
// a token that is about to lapse, but the server remains the only judge of
// validity. Returns the zero time when the token is not a JWT or carries no
// expiry, which callers must treat as "unknown", not "expired".
func TokenExpiresAt(tokenString string) (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, err
	}

	expiry, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if expiry == nil {
		return time.Time{}, nil
	}
	return expiry.Time, nil
}
