// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package connect

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/duckduckgo/sync-engine-go/models"
)

// syncCode is the self-describing JSON wrapper transported as a single
// base64 string. Exactly one of the two payloads is set: a
// recovery key, or the connect half of a device pairing.
type syncCode struct {
	Recovery *recoveryPayload `json:"recovery,omitempty"`
	Connect  *connectPayload  `json:"connect,omitempty"`
}

type recoveryPayload struct {
	UserID     string `json:"user_id"`
	PrimaryKey []byte `json:"primary_key"`
}

// connectPayload is the published half of a pairing handshake. The field is
// called secret_key on the wire but holds the public half of the receiving
// device's ephemeral pair, a quirk the protocol is stuck with.
type connectPayload struct {
	DeviceID  string `json:"device_id"`
	SecretKey []byte `json:"secret_key"`
}

// EncodeRecoveryCode serializes rk as the "sync code" wrapper
// `{"recovery": {"user_id": ..., "primary_key": base64}}`, base64-encoded
// overall for transport as one string.
func EncodeRecoveryCode(rk models.RecoveryKey) (string, error) {
	raw, err := recoveryKeyJSON(rk)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// recoveryKeyJSON is the raw sync-code JSON for rk, the form that gets
// sealed during a connect handoff.
func recoveryKeyJSON(rk models.RecoveryKey) ([]byte, error) {
	raw, err := json.Marshal(syncCode{Recovery: &recoveryPayload{UserID: rk.UserID, PrimaryKey: rk.PrimaryKey}})
	if err != nil {
		return nil, fmt.Errorf("connect: encode recovery code: %w", err)
	}
	return raw, nil
}

// DecodeRecoveryCode is the inverse of [EncodeRecoveryCode]. Returns
// [ErrInvalidCode] if code is not base64, not the wrapper shape, or wraps
// something other than a recovery key.
func DecodeRecoveryCode(code string) (models.RecoveryKey, error) {
	raw, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		return models.RecoveryKey{}, fmt.Errorf("%w: %w", ErrInvalidCode, err)
	}
	return recoveryKeyFromJSON(raw)
}

// recoveryKeyFromJSON parses the raw (not base64-wrapped) sync-code JSON, as
// carried inside a sealed connect payload.
func recoveryKeyFromJSON(raw []byte) (models.RecoveryKey, error) {
	var wrapper syncCode
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return models.RecoveryKey{}, fmt.Errorf("%w: %w", ErrInvalidCode, err)
	}
	if wrapper.Recovery == nil {
		return models.RecoveryKey{}, fmt.Errorf("%w: not a recovery code", ErrInvalidCode)
	}
	return models.RecoveryKey{UserID: wrapper.Recovery.UserID, PrimaryKey: wrapper.Recovery.PrimaryKey}, nil
}

// EncodeConnectCode serializes the shareable half of info as
// `{"connect": {"device_id": ..., "secret_key": base64(public_key)}}`,
// base64-encoded overall. The ephemeral secret key never leaves the device.
func EncodeConnectCode(info models.ConnectInfo) (string, error) {
	raw, err := json.Marshal(syncCode{Connect: &connectPayload{DeviceID: info.DeviceID, SecretKey: info.PublicKey[:]}})
	if err != nil {
		return "", fmt.Errorf("connect: encode connect code: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeConnectCode extracts the receiving device's id and public key from a
// connect code. Returns [ErrInvalidCode] on any shape violation, including a
// public key of the wrong length.
func DecodeConnectCode(code string) (deviceID string, publicKey [32]byte, err error) {
	wrapper, err := decodeSyncCode(code)
	if err != nil {
		return "", publicKey, err
	}
	if wrapper.Connect == nil {
		return "", publicKey, fmt.Errorf("%w: not a connect code", ErrInvalidCode)
	}
	if len(wrapper.Connect.SecretKey) != len(publicKey) {
		return "", publicKey, fmt.Errorf("%w: public key must be %d bytes", ErrInvalidCode, len(publicKey))
	}

	copy(publicKey[:], wrapper.Connect.SecretKey)
	return wrapper.Connect.DeviceID, publicKey, nil
}

func decodeSyncCode(code string) (syncCode, error) {
	raw, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		return syncCode{}, fmt.Errorf("%w: %w", ErrInvalidCode, err)
	}

	var wrapper syncCode
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return syncCode{}, fmt.Errorf("%w: %w", ErrInvalidCode, err)
	}
	return wrapper, nil
}
