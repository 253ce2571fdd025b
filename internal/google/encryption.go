package google

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// sealedPrefix marks a credential file whose content was written by Seal.
var sealedPrefix = []byte("jarvis-aesgcm:")

// CredentialCipher encrypts credential files at rest with AES-256-GCM.
// A cipher built without a key passes data through unchanged, so plaintext
// stores keep working.
type CredentialCipher struct {
	aead cipher.AEAD
}

// NewCredentialCipher returns a cipher for the given 32-byte key. An empty key
// disables encryption.
func NewCredentialCipher(key []byte) (*CredentialCipher, error) {
	if len(key) == 0 {
		return &CredentialCipher{}, nil
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be exactly 32 bytes (256 bits), got %d bytes", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &CredentialCipher{aead: aead}, nil
}

// Enabled reports whether Seal encrypts.
func (c *CredentialCipher) Enabled() bool {
	return c != nil && c.aead != nil
}

// Seal encrypts plaintext as prefix || base64(nonce || ciphertext || tag).
func (c *CredentialCipher) Seal(plaintext []byte) ([]byte, error) {
	if !c.Enabled() {
		return plaintext, nil
	}

	// nonce must never repeat for the same key
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	out := make([]byte, 0, len(sealedPrefix)+base64.StdEncoding.EncodedLen(len(sealed)))
	out = append(out, sealedPrefix...)
	return base64.StdEncoding.AppendEncode(out, sealed), nil
}

// Open reverses Seal. Data without the sealed prefix is returned as is.
func (c *CredentialCipher) Open(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, sealedPrefix) {
		return data, nil
	}
	if !c.Enabled() {
		return nil, fmt.Errorf("credential file is encrypted but no encryption key is configured")
	}

	raw, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(data[len(sealedPrefix):])))
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	plaintext, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

// GenerateEncryptionKey returns a random 32-byte key. Store it; a new key on
// every start makes existing files unreadable.
func GenerateEncryptionKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate encryption key: %w", err)
	}
	return key, nil
}

// EncryptionKeyFromBase64 decodes a key from configuration. An empty string
// yields a nil key, which disables encryption.
func EncryptionKeyFromBase64(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d bytes", len(key))
	}
	return key, nil
}
