// Package secret seals provider credential bundles for storage at rest.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrEmptyKey is returned when a Box is created without key material.
	ErrEmptyKey = errors.New("secret: encryption key is empty")

	// ErrCiphertextTooShort is returned for blobs shorter than a nonce.
	ErrCiphertextTooShort = errors.New("secret: ciphertext too short")
)

// Box encrypts and decrypts credential maps with AES-256-GCM.
type Box struct {
	key [32]byte
}

// NewBox creates a Box from key material. A 64-char hex string is decoded;
// any other input is hashed to 32 bytes so operators can supply a passphrase.
// Parameters:
//   - key: hex-encoded 32-byte key or passphrase.
// Returns:
//   - *Box: initialized box.
//   - error: non-nil when the key is empty.
func NewBox(key string) (*Box, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	b := &Box{}
	if raw, err := hex.DecodeString(key); err == nil && len(raw) == 32 {
		copy(b.key[:], raw)
	} else {
		b.key = sha256.Sum256([]byte(key))
	}
	return b, nil
}

// Seal encrypts a credential map into a base64 blob.
// Parameters:
//   - creds: provider-specific key/value credential bundle.
// Returns:
//   - string: base64(nonce || ciphertext).
//   - error: non-nil if encryption fails.
func (b *Box) Seal(creds map[string]string) (string, error) {
	plaintext, err := json.Marshal(creds)
	if err != nil {
		return "", fmt.Errorf("failed to marshal credentials: %w", err)
	}

	gcm, err := b.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a blob produced by Seal back into a credential map.
// Parameters:
//   - blob: base64(nonce || ciphertext).
// Returns:
//   - map[string]string: decrypted credential bundle.
//   - error: non-nil if decoding or authentication fails.
func (b *Box) Open(blob string) (map[string]string, error) {
	sealed, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decode credentials: %w", err)
	}

	gcm, err := b.aead()
	if err != nil {
		return nil, err
	}

	if len(sealed) < gcm.NonceSize() {
		return nil, ErrCiphertextTooShort
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	var creds map[string]string
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return creds, nil
}

func (b *Box) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(b.key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
