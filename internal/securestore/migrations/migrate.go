// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package migrations manages the SecureStore database schema. It uses the
// goose migration library with embedded SQL files, ensuring that all
// migration files are compiled into the binary and applied automatically at
// startup without requiring external file access.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// embedMigrations holds all *.sql migration files embedded into the binary
// at compile time via the go:embed directive.
//
//go:embed *.sql
var embedMigrations embed.FS

// Migrate applies all pending SecureStore schema migrations against db using
// the sqlite3 goose dialect. Intended to be called once, immediately after
// opening the database connection and before any SecureStore operation.
func Migrate(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("migration error: db is nil")
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
