// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"errors"
	"fmt"
)

// Sentinel error kinds returned by every [Provider] entry point. Callers
// distinguish them with [errors.Is]; each one is wrapped in an [Error] that
// also carries a numeric step code, the same shape
// [internal/httpclient.StatusCodeError] uses for HTTP statuses.
var (
	ErrFailedToCreateAccountKeys = errors.New("failed to create account keys")
	ErrFailedToEncryptValue      = errors.New("failed to encrypt value")
	ErrFailedToDecryptValue      = errors.New("failed to decrypt value")
	ErrFailedToSealData          = errors.New("failed to seal data")
	ErrFailedToOpenSealedBox     = errors.New("failed to open sealed box")
	ErrFailedToPrepareForConnect = errors.New("failed to prepare for connect")

	errShortCiphertext = errors.New("ciphertext shorter than nonce")
)

// Error wraps one of the sentinel kinds above together with a fixed numeric
// Code that identifies which step of the failing entry point went wrong
// (e.g. 1 for the random source and 2 for the key wrap in
// CreateAccountKeys). The underlying primitive's own error is not kept.
// Code is for observability only — callers branch on the sentinel via
// [errors.Is]/[errors.As].
type Error struct {
	Kind error
	Code int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Kind, e.Code)
}

// Unwrap allows [errors.Is]/[errors.As] to see through to Kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

func wrap(kind error, code int) error {
	return &Error{Kind: kind, Code: code}
}
