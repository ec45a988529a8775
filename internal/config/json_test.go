// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_Success(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.json")

	jsonBody := `{
		"sync": {
			"base_url": "https://example.test",
			"environment": "debug",
			"immediate_debounce_sec": 2,
			"lifecycle_debounce_sec": 120
		},
		"device": {
			"name": "phone",
			"type": "mobile"
		},
		"storage": {
			"securestore_dsn": "/var/sync/store.db"
		}
	}`

	require.NoError(t, os.WriteFile(p, []byte(jsonBody), 0o600))

	cfg, err := parseJSON(p)

	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://example.test", cfg.Sync.BaseURL)
	assert.Equal(t, "debug", cfg.Sync.Environment)
	assert.Equal(t, 2, cfg.Sync.ImmediateDebounceSec)
	assert.Equal(t, 120, cfg.Sync.LifecycleDebounceSec)

	assert.Equal(t, "phone", cfg.Device.Name)
	assert.Equal(t, "mobile", cfg.Device.Type)

	assert.Equal(t, "/var/sync/store.db", cfg.Storage.SecureStoreDSN)
	assert.Empty(t, cfg.JSONFilePath)
}

func TestParseJSON_FileNotFound(t *testing.T) {
	cfg, err := parseJSON("definitely-does-not-exist.json")

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "error reading a json file")
}

func TestParseJSON_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(p, []byte(`{ this is not json }`), 0o600))

	cfg, err := parseJSON(p)

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "error decoding json configs")
}

func TestParseJSON_EmptyObject(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(p, []byte(`{}`), 0o600))

	cfg, err := parseJSON(p)

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, StructuredConfig{}, *cfg)
}

func TestParseJSON_PartialObject(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "partial.json")

	jsonBody := `{
		"sync": { "base_url": "https://partial.test" }
	}`
	require.NoError(t, os.WriteFile(p, []byte(jsonBody), 0o600))

	cfg, err := parseJSON(p)

	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://partial.test", cfg.Sync.BaseURL)
	assert.Empty(t, cfg.Sync.Environment)
	assert.Zero(t, cfg.Sync.ImmediateDebounceSec)

	assert.Equal(t, Device{}, cfg.Device)
	assert.Equal(t, Storage{}, cfg.Storage)
}
