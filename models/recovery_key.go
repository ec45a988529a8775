// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// RecoveryKey is the restore credential derived from an [Account]: enough
// to authenticate as the same user_id and re-derive the secret key on a new
// or reinstalled device. It is never persisted by SecureStore directly; it
// only ever exists transiently during login or the connect handoff.
type RecoveryKey struct {
	UserID     string
	PrimaryKey []byte
}

// ConnectInfo is the ephemeral key-pair state held by the device that is
// joining an account via public-key handoff. It is discarded
// as soon as the recovery key arrives, or the flow is cancelled.
type ConnectInfo struct {
	DeviceID  string
	PublicKey [32]byte
	SecretKey [32]byte
}
