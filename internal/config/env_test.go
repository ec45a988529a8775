// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_AllFields(t *testing.T) {
	envVars := map[string]string{
		"CONFIG": "/path/to/config.json",

		"SYNC_BASE_URL":              "https://example.test",
		"SYNC_ENVIRONMENT":           "debug",
		"SYNC_IMMEDIATE_DEBOUNCE_SEC": "2",
		"SYNC_LIFECYCLE_DEBOUNCE_SEC": "120",

		"DEVICE_NAME": "phone",
		"DEVICE_TYPE": "mobile",

		"STORAGE_SECURESTORE_DSN": "/var/sync/store.db",
	}
	setEnvVars(t, envVars)

	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	require.NoError(t, err)

	assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)

	assert.Equal(t, "https://example.test", cfg.Sync.BaseURL)
	assert.Equal(t, "debug", cfg.Sync.Environment)
	assert.Equal(t, 2, cfg.Sync.ImmediateDebounceSec)
	assert.Equal(t, 120, cfg.Sync.LifecycleDebounceSec)

	assert.Equal(t, "phone", cfg.Device.Name)
	assert.Equal(t, "mobile", cfg.Device.Type)

	assert.Equal(t, "/var/sync/store.db", cfg.Storage.SecureStoreDSN)
}

func TestParseEnv_PartialFields(t *testing.T) {
	envVars := map[string]string{
		"SYNC_BASE_URL": "https://example.test",
		"DEVICE_NAME":   "laptop",
	}
	setEnvVars(t, envVars)

	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	require.NoError(t, err)

	assert.Equal(t, "https://example.test", cfg.Sync.BaseURL)
	assert.Empty(t, cfg.Sync.Environment)
	assert.Zero(t, cfg.Sync.ImmediateDebounceSec)

	assert.Equal(t, "laptop", cfg.Device.Name)
	assert.Empty(t, cfg.Device.Type)

	assert.Empty(t, cfg.Storage.SecureStoreDSN)
	assert.Empty(t, cfg.JSONFilePath)
}

func TestParseEnv_EmptyEnv(t *testing.T) {
	clearEnvVars(t)

	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	require.NoError(t, err)

	assert.Equal(t, "", cfg.JSONFilePath)
	assert.Equal(t, Sync{}, cfg.Sync)
	assert.Equal(t, Device{}, cfg.Device)
	assert.Equal(t, Storage{}, cfg.Storage)
}

func TestParseEnv_InvalidDebounce(t *testing.T) {
	envVars := map[string]string{
		"SYNC_IMMEDIATE_DEBOUNCE_SEC": "not-a-number",
	}
	setEnvVars(t, envVars)

	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "env")
}

// Helpers

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	clearEnvVars(t)
	for k, v := range vars {
		require.NoError(t, os.Setenv(k, v))
		t.Cleanup(func() { _ = os.Unsetenv(k) })
	}
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	keys := []string{
		"CONFIG",

		"SYNC_BASE_URL",
		"SYNC_ENVIRONMENT",
		"SYNC_IMMEDIATE_DEBOUNCE_SEC",
		"SYNC_LIFECYCLE_DEBOUNCE_SEC",

		"DEVICE_NAME",
		"DEVICE_TYPE",

		"STORAGE_SECURESTORE_DSN",
	}
	for _, k := range keys {
		_ = os.Unsetenv(k)
	}
}
