// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package securestore persists the single [models.Account] a device holds.
// The store keeps exactly one row: this device belongs to at most one
// account at a time.
//
// A package-level mutex serializes every read and write across all
// *SecureStore instances created in the process, guarding concurrent
// account mutation from multiple engine components (see DESIGN.md).
package securestore

import (
	"context"

	"github.com/duckduckgo/sync-engine-go/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/securestore_mock.go -package=mock

// SecureStore persists and retrieves this device's [models.Account].
type SecureStore interface {
	// SaveAccount upserts account as the single stored account row.
	SaveAccount(ctx context.Context, account models.Account) error

	// LoadAccount returns the stored account. Returns [ErrNoAccount] if no
	// account has been saved yet.
	LoadAccount(ctx context.Context) (*models.Account, error)

	// RemoveAccount deletes the stored account row, if any, after zeroing
	// its SecretKey bytes in memory. Safe to call when no account exists.
	RemoveAccount(ctx context.Context) error

	// Close releases the underlying database connection.
	Close() error
}
