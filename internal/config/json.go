// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// StructuredJSONConfig is the JSON-specific representation of the sync
// engine configuration. It mirrors [StructuredConfig] with JSON struct
// tags; the values are mapped into a [StructuredConfig] by [parseJSON].
type StructuredJSONConfig struct {
	Sync struct {
		BaseURL              string `json:"base_url"`
		Environment          string `json:"environment"`
		ImmediateDebounceSec int    `json:"immediate_debounce_sec"`
		LifecycleDebounceSec int    `json:"lifecycle_debounce_sec"`
	} `json:"sync,omitempty"`

	Device struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"device,omitempty"`

	Storage struct {
		SecureStoreDSN string `json:"securestore_dsn"`
	} `json:"storage,omitempty"`
}

// parseJSON opens the JSON file at jsonFilePath, decodes it into a
// [StructuredJSONConfig], and maps the result into a [StructuredConfig].
//
// JSONFilePath is intentionally left empty in the returned config so that
// the path is not re-processed during subsequent merge steps.
//
// Returns a wrapped error if the file cannot be opened or its contents
// cannot be decoded as valid JSON.
func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	return &StructuredConfig{
		Sync: Sync{
			BaseURL:              jsonCfg.Sync.BaseURL,
			Environment:          jsonCfg.Sync.Environment,
			ImmediateDebounceSec: jsonCfg.Sync.ImmediateDebounceSec,
			LifecycleDebounceSec: jsonCfg.Sync.LifecycleDebounceSec,
		},
		Device: Device{
			Name: jsonCfg.Device.Name,
			Type: jsonCfg.Device.Type,
		},
		Storage: Storage{
			SecureStoreDSN: jsonCfg.Storage.SecureStoreDSN,
		},
		JSONFilePath: "", // intentionally cleared to prevent re-processing
	}, nil
}

