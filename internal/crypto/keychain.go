// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/box"

	"github.com/duckduckgo/sync-engine-go/models"
)

// authHashDomain and stretchDomain domain-separate the two KDF outputs
// derived from the same PrimaryKey, so a PasswordHash can never be mistaken
// for (or used as) a StretchedPrimaryKey.
const (
	authHashDomain = "sync-engine-auth-hash"
	stretchDomain  = "sync-engine-stretch"
)

// provider is the private implementation of [Provider]. Argon2id tuning
// parameters are stored on the struct so they can be adjusted per
// deployment target.
type provider struct {
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// NewProvider constructs a [Provider] with OWASP (2024) recommended
// Argon2id parameters: 1 iteration, 64 MiB memory, 4 threads, 32-byte keys.
func NewProvider() Provider {
	return &provider{
		argonTime:    1,
		argonMemory:  64 * 1024,
		argonThreads: 4,
		argonKeyLen:  32,
	}
}

func (p *provider) deriveStretchedPrimaryKey(userID string, primaryKey []byte) []byte {
	salt := sha256.Sum256([]byte(stretchDomain + userID))
	return argon2.IDKey(primaryKey, salt[:], p.argonTime, p.argonMemory, p.argonThreads, p.argonKeyLen)
}

func (p *provider) derivePasswordHash(primaryKey []byte) []byte {
	h := sha256.New()
	h.Write(primaryKey)
	h.Write([]byte(authHashDomain))
	return h.Sum(nil)
}

// CreateAccountKeys implements [Provider]. PrimaryKey is derived from
// userID+password via Argon2id; SecretKey is a fresh random key; the
// StretchedPrimaryKey (derived from userID and PrimaryKey, both carried by
// the recovery key, so it is re-derivable on any device) wraps SecretKey into
// ProtectedSecretKey for safe server storage.
func (p *provider) CreateAccountKeys(userID, password string) (AccountKeys, error) {
	salt := sha256.Sum256([]byte(userID))
	primaryKey := argon2.IDKey([]byte(password), salt[:], p.argonTime, p.argonMemory, p.argonThreads, p.argonKeyLen)

	secretKey := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, secretKey); err != nil {
		return AccountKeys{}, wrap(ErrFailedToCreateAccountKeys, 1)
	}

	stretched := p.deriveStretchedPrimaryKey(userID, primaryKey)
	protected, err := aesGCMEncrypt(secretKey, stretched)
	if err != nil {
		return AccountKeys{}, wrap(ErrFailedToCreateAccountKeys, 2)
	}

	return AccountKeys{
		PrimaryKey:         primaryKey,
		SecretKey:          secretKey,
		ProtectedSecretKey: protected,
		PasswordHash:       p.derivePasswordHash(primaryKey),
	}, nil
}

// ExtractLoginInfo implements [Provider].
func (p *provider) ExtractLoginInfo(rk models.RecoveryKey) (LoginInfo, error) {
	if len(rk.PrimaryKey) == 0 {
		return LoginInfo{}, wrap(ErrFailedToCreateAccountKeys, 3)
	}

	return LoginInfo{
		UserID:              rk.UserID,
		PrimaryKey:          rk.PrimaryKey,
		PasswordHash:        p.derivePasswordHash(rk.PrimaryKey),
		StretchedPrimaryKey: p.deriveStretchedPrimaryKey(rk.UserID, rk.PrimaryKey),
	}, nil
}

// ExtractSecretKey implements [Provider].
func (p *provider) ExtractSecretKey(protectedSecretKey, stretchedPrimaryKey []byte) ([]byte, error) {
	secretKey, err := aesGCMDecrypt(protectedSecretKey, stretchedPrimaryKey)
	if err != nil {
		return nil, wrap(ErrFailedToDecryptValue, 1)
	}
	return secretKey, nil
}

// EncryptString implements [Provider]. Encrypting an empty string returns an
// empty string without touching the cipher; empty stays empty on the wire.
func (p *provider) EncryptString(plaintext string, key []byte) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	blob, err := aesGCMEncrypt([]byte(plaintext), key)
	if err != nil {
		return "", wrap(ErrFailedToEncryptValue, 1)
	}
	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptString implements [Provider]. Decrypting an empty string returns an
// empty string.
func (p *provider) DecryptString(ciphertextB64 string, key []byte) (string, error) {
	if ciphertextB64 == "" {
		return "", nil
	}

	blob, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return "", wrap(ErrFailedToDecryptValue, 2)
	}

	plaintext, err := aesGCMDecrypt(blob, key)
	if err != nil {
		return "", wrap(ErrFailedToDecryptValue, 3)
	}
	return string(plaintext), nil
}

// PrepareForConnect implements [Provider]. It generates a fresh device id and
// an ephemeral NaCl box key pair for the device-connect handoff.
func (p *provider) PrepareForConnect() (models.ConnectInfo, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return models.ConnectInfo{}, wrap(ErrFailedToPrepareForConnect, 1)
	}

	return models.ConnectInfo{
		DeviceID:  uuid.NewString(),
		PublicKey: *pub,
		SecretKey: *priv,
	}, nil
}

// Seal implements [Provider] using crypto_box_seal (anonymous sender).
func (p *provider) Seal(data []byte, recipientPublic [32]byte) ([]byte, error) {
	sealed, err := box.SealAnonymous(nil, data, &recipientPublic, rand.Reader)
	if err != nil {
		return nil, wrap(ErrFailedToSealData, 1)
	}
	return sealed, nil
}

// Unseal implements [Provider].
func (p *provider) Unseal(sealed []byte, pub, priv [32]byte) ([]byte, error) {
	opened, ok := box.OpenAnonymous(nil, sealed, &pub, &priv)
	if !ok {
		return nil, wrap(ErrFailedToOpenSealedBox, 1)
	}
	return opened, nil
}

// aesGCMEncrypt returns nonce ‖ ciphertext as one blob.
func aesGCMEncrypt(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func aesGCMDecrypt(blob, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return nil, errShortCiphertext
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
