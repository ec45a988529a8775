// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import "context"

// KeySource yields the secret key of the currently persisted account.
// [internal/engine] adapts SecureStore to this interface; the indirection
// keeps this package free of any storage dependency while still letting the
// crypter fetch the key on demand rather than caching a copy.
type KeySource interface {
	SecretKey(ctx context.Context) ([]byte, error)
}

// AccountCrypter binds a [Provider]'s symmetric primitives to the account's
// secret key, fetched from keys on every call. It is the concrete
// implementation of the dataprovider.Crypter capability handed to every
// DataProvider during a sync operation.
type AccountCrypter struct {
	provider Provider
	keys     KeySource
}

// NewAccountCrypter wires provider and keys into an [AccountCrypter].
func NewAccountCrypter(provider Provider, keys KeySource) *AccountCrypter {
	return &AccountCrypter{provider: provider, keys: keys}
}

// EncryptString encrypts plaintext with the current account's secret key.
// Encrypting an empty string returns an empty string.
func (c *AccountCrypter) EncryptString(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	key, err := c.keys.SecretKey(ctx)
	if err != nil {
		return "", err
	}
	return c.provider.EncryptString(plaintext, key)
}

// DecryptString decrypts ciphertext with the current account's secret key.
// Decrypting an empty string returns an empty string.
func (c *AccountCrypter) DecryptString(ctx context.Context, ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	key, err := c.keys.SecretKey(ctx)
	if err != nil {
		return "", err
	}
	return c.provider.DecryptString(ciphertext, key)
}
