// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package dataprovider

import "context"

//go:generate mockgen -source=provider.go -destination=../internal/mock/dataprovider_mock.go -package=mock

// Crypter is the minimal capability a Provider needs from the engine's
// cryptography layer: symmetric encryption bound to the current account's
// secret key. Providers never see the key itself — the engine's crypter
// fetches it from SecureStore on demand ([internal/crypto.AccountCrypter]).
type Crypter interface {
	// EncryptString encrypts plaintext with the account's secret key and
	// returns it base64-encoded. Encrypting an empty string returns an
	// empty string.
	EncryptString(ctx context.Context, plaintext string) (string, error)

	// DecryptString is the inverse of EncryptString, used when merging
	// received records back into local storage. Decrypting an empty string
	// returns an empty string.
	DecryptString(ctx context.Context, ciphertext string) (string, error)
}

// Provider is the boundary to each synced feature. An implementation owns
// the storage for exactly one [Feature] and is registered with the engine
// once at startup; registering two Providers for the same Feature is a bug.
//
// Any type may implement Provider — there is no base type to embed. This
// mirrors the capability-set style used for [internal/crypto.Provider] and
// [internal/httpclient.Client] elsewhere in the engine.
type Provider interface {
	// Feature returns the identity of the data kind this Provider owns.
	Feature() Feature

	// PrepareForFirstSync performs any local bookkeeping a Provider needs
	// before it can participate in its very first sync on this device
	// (e.g. clearing a local "last synced" watermark). Called once, before
	// RegisterFeature, when the Provider is not yet registered.
	PrepareForFirstSync(ctx context.Context) error

	// RegisterFeature marks the Provider as known to the engine with the
	// given initial [SetupState]. Called once at startup for every Provider
	// that was not already registered in a prior run.
	RegisterFeature(ctx context.Context, state SetupState) error

	// FeatureSyncSetupState reports the Provider's current [SetupState].
	FeatureSyncSetupState(ctx context.Context) (SetupState, error)

	// LastSyncTimestamp returns the last_modified value this Provider last
	// received from the server for its feature, or "" if it has never
	// completed a sync.
	LastSyncTimestamp(ctx context.Context) (string, error)

	// FetchChangedObjects returns every local record changed since
	// LastSyncTimestamp, with user-text fields already encrypted via crypt.
	// Returns an empty (non-nil-vs-nil does not matter) slice when there is
	// nothing to send; the caller then issues a GET instead of a PATCH.
	FetchChangedObjects(ctx context.Context, crypt Crypter) ([]Syncable, error)

	// HandleInitialSyncResponse merges a fetch-only (first sync) response.
	// serverTimestamp is nil for a 204/304 response (received is then empty).
	HandleInitialSyncResponse(ctx context.Context, received []Syncable, clientTimestamp int64, serverTimestamp *string, crypt Crypter) error

	// HandleSyncResponse merges a regular (bidirectional) sync response.
	// serverTimestamp is nil for a 204/304 response (received is then empty).
	HandleSyncResponse(ctx context.Context, received []Syncable, clientTimestamp int64, serverTimestamp *string, crypt Crypter) error

	// HandleSyncError is invoked whenever any step of this Provider's sync
	// task fails, including errors produced after a partial success (e.g.
	// gzip fallback). It must never itself block the rest of the operation.
	HandleSyncError(ctx context.Context, err error)
}
