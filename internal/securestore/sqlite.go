// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package securestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/duckduckgo/sync-engine-go/internal/logger"
	"github.com/duckduckgo/sync-engine-go/internal/securestore/migrations"
	"github.com/duckduckgo/sync-engine-go/models"
)

// storeMu serializes all reads and writes across every *sqliteSecureStore
// created in the process (see package doc).
var storeMu sync.Mutex

const accountRowID = 1

type sqliteSecureStore struct {
	db     *sql.DB
	logger *logger.Logger
}

// New opens (creating if necessary) the sqlite database at dsn, applies
// pending schema migrations, and returns a [SecureStore] backed by it.
// dsn ":memory:" is accepted for tests but each New call against it opens an
// independent in-memory database, so it cannot be shared across instances.
func New(ctx context.Context, dsn string, log *logger.Logger) (SecureStore, error) {
	if log == nil {
		log = logger.Nop()
	}

	if dsn != ":memory:" {
		if err := createFileIfNotExists(dsn); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConnectDatabase, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectDatabase, err)
	}

	// A single connection keeps an in-memory database alive across calls and
	// is plenty for a one-row store that serializes behind storeMu anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectDatabase, err)
	}

	storeMu.Lock()
	err = migrations.Migrate(db)
	storeMu.Unlock()
	if err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteSecureStore{db: db, logger: log}, nil
}

func createFileIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create securestore file: %w", err)
		}
		return f.Close()
	}
	return nil
}

// SaveAccount implements [SecureStore].
func (s *sqliteSecureStore) SaveAccount(ctx context.Context, account models.Account) error {
	storeMu.Lock()
	defer storeMu.Unlock()

	_, err := s.db.ExecContext(ctx, upsertAccount,
		accountRowID,
		account.UserID,
		account.PrimaryKey,
		account.SecretKey,
		account.Token,
		account.DeviceID,
		account.DeviceName,
		account.DeviceType,
		string(account.State),
	)
	if err != nil {
		s.logger.Err(err).Str("func", "SecureStore.SaveAccount").Msg("failed to upsert account")
		return fmt.Errorf("securestore: save account: %w", err)
	}

	return nil
}

// LoadAccount implements [SecureStore].
func (s *sqliteSecureStore) LoadAccount(ctx context.Context) (*models.Account, error) {
	storeMu.Lock()
	defer storeMu.Unlock()

	row := s.db.QueryRowContext(ctx, selectAccount, accountRowID)

	var account models.Account
	var state string
	err := row.Scan(
		&account.UserID,
		&account.PrimaryKey,
		&account.SecretKey,
		&account.Token,
		&account.DeviceID,
		&account.DeviceName,
		&account.DeviceType,
		&state,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNoAccount
	}
	if err != nil {
		s.logger.Err(err).Str("func", "SecureStore.LoadAccount").Msg("failed to scan account row")
		return nil, fmt.Errorf("securestore: load account: %w", err)
	}

	account.State = models.AccountState(state)
	return &account, nil
}

// RemoveAccount implements [SecureStore].
func (s *sqliteSecureStore) RemoveAccount(ctx context.Context) error {
	storeMu.Lock()
	defer storeMu.Unlock()

	account, loadErr := s.loadAccountLocked(ctx)
	if loadErr != nil && loadErr != ErrNoAccount {
		return loadErr
	}
	if account != nil {
		zero(account.SecretKey)
		zero(account.PrimaryKey)
	}

	if _, err := s.db.ExecContext(ctx, deleteAccount, accountRowID); err != nil {
		s.logger.Err(err).Str("func", "SecureStore.RemoveAccount").Msg("failed to delete account")
		return fmt.Errorf("securestore: remove account: %w", err)
	}

	return nil
}

// loadAccountLocked is LoadAccount's body, callable while storeMu is already
// held (RemoveAccount needs the prior value to zero its key material).
func (s *sqliteSecureStore) loadAccountLocked(ctx context.Context) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, selectAccount, accountRowID)

	var account models.Account
	var state string
	err := row.Scan(
		&account.UserID,
		&account.PrimaryKey,
		&account.SecretKey,
		&account.Token,
		&account.DeviceID,
		&account.DeviceName,
		&account.DeviceType,
		&state,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNoAccount
	}
	if err != nil {
		return nil, fmt.Errorf("securestore: load account: %w", err)
	}

	account.State = models.AccountState(state)
	return &account, nil
}

// Close implements [SecureStore].
func (s *sqliteSecureStore) Close() error {
	return s.db.Close()
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
