// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package crypto wraps the fixed library of cryptographic primitives the
// sync engine needs: account-key derivation, symmetric
// encryption of short strings, and sealed-box transport for the device
// connect handoff. It has no knowledge of the network, SecureStore, or
// account identity beyond the bytes it is handed.
//
// # Key hierarchy
//
//  1. PrimaryKey — 32-byte secret derived from user_id+password; doubles as
//     the recovery key's payload and is never sent to the server.
//  2. SecretKey — 32-byte symmetric key that encrypts every user-text field
//     placed on the wire.
//  3. ProtectedSecretKey — SecretKey encrypted under a StretchedPrimaryKey;
//     safe to store on the server.
//  4. StretchedPrimaryKey — intermediate KDF output, used only to unwrap
//     ProtectedSecretKey during login; never itself transmitted.
//  5. PasswordHash — server-side authenticator derived from PrimaryKey; not
//     reversible to PrimaryKey.
package crypto

import "github.com/duckduckgo/sync-engine-go/models"

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_provider_mock.go -package=mock

// AccountKeys is the full key bundle produced once, at signup.
type AccountKeys struct {
	PrimaryKey         []byte
	SecretKey          []byte
	ProtectedSecretKey []byte
	PasswordHash       []byte
}

// LoginInfo is the pre-login derivation produced from a [models.RecoveryKey]:
// everything needed to authenticate and then unwrap the server-held
// ProtectedSecretKey.
type LoginInfo struct {
	UserID              string
	PrimaryKey          []byte
	PasswordHash        []byte
	StretchedPrimaryKey []byte
}

// Provider is responsible for all client-side cryptography in the sync
// engine. See the package documentation for the key hierarchy.
type Provider interface {
	// CreateAccountKeys derives the full [AccountKeys] bundle from userID and
	// password. Called once, at signup. Returns a wrapped
	// [ErrFailedToCreateAccountKeys] if the underlying KDF or random source
	// fails.
	CreateAccountKeys(userID, password string) (AccountKeys, error)

	// ExtractLoginInfo derives [LoginInfo] from a [models.RecoveryKey] ahead
	// of a login call, without any network round trip. Returns a wrapped
	// [ErrFailedToCreateAccountKeys] if the KDF fails.
	ExtractLoginInfo(rk models.RecoveryKey) (LoginInfo, error)

	// ExtractSecretKey decrypts protectedSecretKey (as stored on the server)
	// using stretchedPrimaryKey, recovering the account's SecretKey. Returns
	// a wrapped [ErrFailedToDecryptValue] if the key is wrong or the blob is
	// corrupted.
	ExtractSecretKey(protectedSecretKey, stretchedPrimaryKey []byte) ([]byte, error)

	// EncryptString encrypts plaintext with key using AES-256-GCM and
	// returns the result base64-encoded. Encrypting an empty string returns
	// an empty string (explicit rule; no auth tag is computed over nothing).
	// Returns a wrapped [ErrFailedToEncryptValue] on failure.
	EncryptString(plaintext string, key []byte) (string, error)

	// DecryptString is the inverse of EncryptString. Decrypting an empty
	// string returns an empty string. Returns a wrapped
	// [ErrFailedToDecryptValue] if key is wrong or ciphertextB64 is
	// corrupted or malformed; there is no silent fallthrough to plaintext.
	DecryptString(ciphertextB64 string, key []byte) (string, error)

	// PrepareForConnect generates an ephemeral NaCl box key pair and a fresh
	// device id for the device-connect handoff. Returns a
	// wrapped [ErrFailedToPrepareForConnect] if the random source fails.
	PrepareForConnect() (models.ConnectInfo, error)

	// Seal anonymously encrypts data to recipientPublic using
	// crypto_box_seal. Returns a wrapped [ErrFailedToSealData] on failure.
	Seal(data []byte, recipientPublic [32]byte) ([]byte, error)

	// Unseal opens a box produced by Seal, using the recipient's own key
	// pair. Returns a wrapped [ErrFailedToOpenSealedBox] if the keys do not
	// match or sealed is corrupted.
	Unseal(sealed []byte, pub, priv [32]byte) ([]byte, error)
}
