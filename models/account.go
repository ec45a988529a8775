// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package models holds the data entities of the sync engine's account and
// device-handoff lifecycle: Account, RecoveryKey, ConnectInfo, and Device. The concrete feature records being synced (bookmarks, ...) are
// Syncables, defined in package dataprovider, not here.
package models

// AccountState is the lifecycle state of a locally persisted [Account].
// The persisted wire values are stable; renaming a constant must not change
// what lands in SecureStore.
type AccountState string

const (
	// StateInactive means no account is usable yet.
	StateInactive AccountState = "inactive"

	// StateActive means the account is fully set up and participates in
	// regular sync.
	StateActive AccountState = "active"

	// StateAddingNewDevice means a recovery-key login just completed but the
	// first sync (which will populate local data and flip the state to
	// StateActive) has not finished yet.
	StateAddingNewDevice AccountState = "add-new-device"
)

// Account is the single-user sync identity persisted by SecureStore. At most
// one Account is ever persisted at a time; reading
// two is a bug in the store implementation, not a condition callers need to
// handle.
type Account struct {
	// UserID is the account's UUID string, assigned by the server on signup.
	UserID string

	// PrimaryKey is the 32-byte secret derived from user_id+password. It is
	// never sent to the server.
	PrimaryKey []byte

	// SecretKey is the 32-byte symmetric key used to encrypt every
	// user-text field placed on the wire.
	SecretKey []byte

	// Token is the opaque bearer credential returned by signup/login. Its
	// absence on an authenticated call is the distinct noToken error.
	Token string

	// DeviceID is this device's UUID string, generated once at signup or
	// connect time and reused across token refreshes.
	DeviceID string

	// DeviceName is a human-readable label for this device (e.g. "phone").
	DeviceName string

	// DeviceType categorizes the device (e.g. "mobile", "desktop").
	DeviceType string

	// State is the account's current lifecycle stage.
	State AccountState
}

// Device describes one member of the account's device fleet, as returned by
// login, refresh-token, and fetch-devices.
type Device struct {
	DeviceID   string
	DeviceName string
	DeviceType string
}
