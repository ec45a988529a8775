// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package account implements the account lifecycle: signup, login via
// recovery key, token refresh, logout, delete-account, and device listing.
// All key derivation is delegated to internal/crypto; this package owns the
// wire choreography only.
package account

import (
	"context"

	"github.com/duckduckgo/sync-engine-go/internal/endpoints"
	"github.com/duckduckgo/sync-engine-go/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/account_manager_mock.go -package=mock

// EndpointsSource supplies the currently active [endpoints.Endpoints],
// satisfied by [endpoints.AtomicEndpoints].
type EndpointsSource interface {
	Load() *endpoints.Endpoints
}

// AccountManager orchestrates the account lifecycle operations. Every
// method that succeeds returns a [models.Account] ready to be persisted to
// SecureStore by the caller; AccountManager itself never writes to
// SecureStore, and nothing is persisted until the network step succeeds.
type AccountManager interface {
	// CreateAccount generates a fresh user_id/password pair, derives account
	// keys, and registers the account and this device with the server. The
	// returned Account has State [models.StateActive].
	CreateAccount(ctx context.Context, deviceName, deviceType string) (models.Account, error)

	// Login authenticates with recoveryKey, derives the login keys locally,
	// and registers deviceName/deviceType as a new device_id. The returned
	// Account has State [models.StateAddingNewDevice] until the first sync
	// completes (caller's responsibility to transition it).
	Login(ctx context.Context, recoveryKey models.RecoveryKey, deviceName, deviceType string) (models.Account, []models.Device, error)

	// RefreshToken re-authenticates account, reusing its existing device_id,
	// and returns an updated Account (new token) plus the current device
	// list. Used both for periodic token refresh and to implement
	// FetchDevices.
	RefreshToken(ctx context.Context, account models.Account) (models.Account, []models.Device, error)

	// Logout notifies the server that this device is signing out. Returns
	// [ErrLogoutDeviceMismatch] if the server's response echoes a different
	// device_id than the one sent.
	Logout(ctx context.Context, account models.Account) error

	// DeleteAccount requests deletion of the entire account on the server.
	DeleteAccount(ctx context.Context, account models.Account) error

	// FetchDevices returns the current device list for account. Implemented
	// via [AccountManager.RefreshToken], since the wire protocol has no
	// dedicated devices endpoint.
	FetchDevices(ctx context.Context, account models.Account) ([]models.Device, error)
}
