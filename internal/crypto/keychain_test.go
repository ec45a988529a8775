package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/duckduckgo/sync-engine-go/models"
)

func TestCreateAccountKeys_Lengths(t *testing.T) {
	p := NewProvider()

	keys, err := p.CreateAccountKeys("user-1", "correct horse battery staple")
	if err != nil {
		t.Fatalf("CreateAccountKeys error: %v", err)
	}

	if len(keys.PrimaryKey) != 32 {
		t.Fatalf("PrimaryKey length = %d, want 32", len(keys.PrimaryKey))
	}
	if len(keys.SecretKey) != 32 {
		t.Fatalf("SecretKey length = %d, want 32", len(keys.SecretKey))
	}
	if len(keys.ProtectedSecretKey) <= 12 {
		t.Fatalf("ProtectedSecretKey too short: %d", len(keys.ProtectedSecretKey))
	}
	if len(keys.PasswordHash) == 0 {
		t.Fatalf("expected non-empty PasswordHash")
	}
}

func TestCreateAccountKeys_DeterministicPrimaryKey(t *testing.T) {
	p := NewProvider()

	k1, err := p.CreateAccountKeys("same-user", "same-pass")
	if err != nil {
		t.Fatalf("CreateAccountKeys error: %v", err)
	}
	k2, err := p.CreateAccountKeys("same-user", "same-pass")
	if err != nil {
		t.Fatalf("CreateAccountKeys error: %v", err)
	}

	if !bytes.Equal(k1.PrimaryKey, k2.PrimaryKey) {
		t.Fatalf("expected PrimaryKey to be deterministic for same user_id+password")
	}
	// SecretKey is random per call even for the same inputs.
	if bytes.Equal(k1.SecretKey, k2.SecretKey) {
		t.Fatalf("expected SecretKey to differ across calls")
	}
}

// The secret key recovered via recovery-key-derived login info must equal
// the original, or a restored device could never read its own data.
func TestExtractSecretKey_RoundTrip(t *testing.T) {
	p := NewProvider()

	keys, err := p.CreateAccountKeys("u1", "hunter2")
	if err != nil {
		t.Fatalf("CreateAccountKeys error: %v", err)
	}

	info, err := p.ExtractLoginInfo(models.RecoveryKey{UserID: "u1", PrimaryKey: keys.PrimaryKey})
	if err != nil {
		t.Fatalf("ExtractLoginInfo error: %v", err)
	}

	secretKey, err := p.ExtractSecretKey(keys.ProtectedSecretKey, info.StretchedPrimaryKey)
	if err != nil {
		t.Fatalf("ExtractSecretKey error: %v", err)
	}

	if !bytes.Equal(secretKey, keys.SecretKey) {
		t.Fatalf("recovered secret key does not match original")
	}
}

func TestExtractSecretKey_WrongKeyFails(t *testing.T) {
	p := NewProvider()

	keys, err := p.CreateAccountKeys("u1", "hunter2")
	if err != nil {
		t.Fatalf("CreateAccountKeys error: %v", err)
	}

	wrongInfo, err := p.ExtractLoginInfo(models.RecoveryKey{UserID: "u1", PrimaryKey: bytes.Repeat([]byte{0x42}, 32)})
	if err != nil {
		t.Fatalf("ExtractLoginInfo error: %v", err)
	}

	if _, err = p.ExtractSecretKey(keys.ProtectedSecretKey, wrongInfo.StretchedPrimaryKey); err == nil {
		t.Fatalf("expected an error when unwrapping with the wrong key")
	}
}

// decrypt(encrypt(s, k), k) == s for the keys and strings we ship.
func TestEncryptDecryptString_RoundTrip(t *testing.T) {
	p := NewProvider()
	key := bytes.Repeat([]byte{0x07}, 32)

	ciphertext, err := p.EncryptString("https://example.com/a-bookmark", key)
	if err != nil {
		t.Fatalf("EncryptString error: %v", err)
	}
	if ciphertext == "" {
		t.Fatalf("expected non-empty ciphertext")
	}

	plaintext, err := p.DecryptString(ciphertext, key)
	if err != nil {
		t.Fatalf("DecryptString error: %v", err)
	}
	if plaintext != "https://example.com/a-bookmark" {
		t.Fatalf("round-trip mismatch: got %q", plaintext)
	}
}

func TestEncryptDecryptString_EmptyStringIsExplicit(t *testing.T) {
	p := NewProvider()
	key := bytes.Repeat([]byte{0x07}, 32)

	ciphertext, err := p.EncryptString("", key)
	if err != nil {
		t.Fatalf("EncryptString error: %v", err)
	}
	if ciphertext != "" {
		t.Fatalf("expected empty ciphertext for empty plaintext, got %q", ciphertext)
	}

	plaintext, err := p.DecryptString("", key)
	if err != nil {
		t.Fatalf("DecryptString error: %v", err)
	}
	if plaintext != "" {
		t.Fatalf("expected empty plaintext for empty ciphertext, got %q", plaintext)
	}
}

func TestDecryptString_WrongKeyFails(t *testing.T) {
	p := NewProvider()
	key := bytes.Repeat([]byte{0x07}, 32)
	otherKey := bytes.Repeat([]byte{0x08}, 32)

	ciphertext, err := p.EncryptString("secret title", key)
	if err != nil {
		t.Fatalf("EncryptString error: %v", err)
	}

	if _, err = p.DecryptString(ciphertext, otherKey); err == nil {
		t.Fatalf("expected decryption with wrong key to fail")
	} else if !errors.Is(err, ErrFailedToDecryptValue) {
		t.Fatalf("expected ErrFailedToDecryptValue, got %v", err)
	}
}

func TestSealUnseal_RoundTrip(t *testing.T) {
	p := NewProvider()

	connectInfo, err := p.PrepareForConnect()
	if err != nil {
		t.Fatalf("PrepareForConnect error: %v", err)
	}
	if connectInfo.DeviceID == "" {
		t.Fatalf("expected a non-empty device id")
	}

	payload := []byte(`{"recovery":{"user_id":"u1","primary_key":"AAAA"}}`)

	sealed, err := p.Seal(payload, connectInfo.PublicKey)
	if err != nil {
		t.Fatalf("Seal error: %v", err)
	}

	opened, err := p.Unseal(sealed, connectInfo.PublicKey, connectInfo.SecretKey)
	if err != nil {
		t.Fatalf("Unseal error: %v", err)
	}

	if !bytes.Equal(opened, payload) {
		t.Fatalf("unsealed payload mismatch")
	}
}

func TestUnseal_WrongKeyPairFails(t *testing.T) {
	p := NewProvider()

	a, err := p.PrepareForConnect()
	if err != nil {
		t.Fatalf("PrepareForConnect error: %v", err)
	}
	b, err := p.PrepareForConnect()
	if err != nil {
		t.Fatalf("PrepareForConnect error: %v", err)
	}

	sealed, err := p.Seal([]byte("hello"), a.PublicKey)
	if err != nil {
		t.Fatalf("Seal error: %v", err)
	}

	if _, err = p.Unseal(sealed, b.PublicKey, b.SecretKey); err == nil {
		t.Fatalf("expected unseal with mismatched key pair to fail")
	}
}
