// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package account

import "errors"

// Sentinel errors returned by [AccountManager] methods. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrRegisterOnServer wraps any failure of the signup call.
	ErrRegisterOnServer = errors.New("account: failed to register on server")
	// ErrLoginOnServer wraps any failure of the login call.
	ErrLoginOnServer = errors.New("account: failed to log in on server")
	// ErrRefreshTokenOnServer wraps any failure of the refresh-token call.
	ErrRefreshTokenOnServer = errors.New("account: failed to refresh token on server")
	// ErrLogoutOnServer wraps any failure of the logout call.
	ErrLogoutOnServer = errors.New("account: failed to log out on server")
	// ErrLogoutDeviceMismatch is returned when the server's logout response
	// echoes a different device_id than the one sent.
	ErrLogoutDeviceMismatch = errors.New("account: server echoed a different device_id on logout")
	// ErrDeleteAccountOnServer wraps any failure of the delete-account call.
	ErrDeleteAccountOnServer = errors.New("account: failed to delete account on server")
	// ErrFetchDevicesOnServer wraps any failure of the fetch-devices call.
	ErrFetchDevicesOnServer = errors.New("account: failed to fetch devices from server")
)
