// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package securestore

import "errors"

// Sentinel errors returned by [SecureStore] methods. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrNoAccount is returned by LoadAccount when no account row has been
	// saved yet (the device has never completed signup, login, or connect).
	ErrNoAccount = errors.New("securestore: no account found")

	// ErrConnectDatabase is returned when the underlying sqlite connection
	// cannot be opened or fails its initial ping.
	ErrConnectDatabase = errors.New("securestore: failed to connect to database")
)
