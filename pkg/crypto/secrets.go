// Package crypto seals secrets stored in the on-disk config record.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// sealedPrefix marks a value produced by Seal. Values without it are treated
// as plaintext written before a key was configured.
const sealedPrefix = "enc:v1:"

var (
	ErrInvalidKey    = errors.New("invalid encryption key: must not be empty")
	ErrOpenFailed    = errors.New("unseal failed: invalid ciphertext or wrong key")
	ErrNoKeyForValue = errors.New("value is sealed but no encryption key is configured")
)

// SecretBox seals strings with AES-256-GCM. A nil *SecretBox is valid and
// passes plaintext through unchanged, so callers need not branch on whether a
// key was configured.
type SecretBox struct {
	gcm cipher.AEAD
}

// NewSecretBox derives a box from keyInput. A base64 string that decodes to
// exactly 32 bytes is used as the key directly; anything else is treated as a
// passphrase and hashed with SHA-256.
func NewSecretBox(keyInput string) (*SecretBox, error) {
	if keyInput == "" {
		return nil, ErrInvalidKey
	}

	key, err := base64.StdEncoding.DecodeString(keyInput)
	if err != nil || len(key) != 32 {
		sum := sha256.Sum256([]byte(keyInput))
		key = sum[:]
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &SecretBox{gcm: gcm}, nil
}

// IsSealed reports whether v was produced by Seal.
func IsSealed(v string) bool {
	return strings.HasPrefix(v, sealedPrefix)
}

// Seal returns "enc:v1:" + base64(nonce || ciphertext || tag).
// Empty strings stay empty.
func (b *SecretBox) Seal(plaintext string) (string, error) {
	if b == nil || plaintext == "" {
		return plaintext, nil
	}

	nonce := make([]byte, b.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := b.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Unsealed values are returned unchanged.
func (b *SecretBox) Open(v string) (string, error) {
	if !IsSealed(v) {
		return v, nil
	}
	if b == nil {
		return "", ErrNoKeyForValue
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(v, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: base64 decode failed", ErrOpenFailed)
	}
	nonceSize := b.gcm.NonceSize()
	if len(data) < nonceSize+b.gcm.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrOpenFailed)
	}

	plaintext, err := b.gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", ErrOpenFailed)
	}
	return string(plaintext), nil
}
