package google

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestCredentialCipher_GenerateKey(t *testing.T) {
	key, err := GenerateEncryptionKey()
	if err != nil {
		t.Fatalf("GenerateEncryptionKey() error = %v", err)
	}
	if len(key) != 32 {
		t.Errorf("GenerateEncryptionKey() key length = %d, want 32", len(key))
	}

	key2, err := GenerateEncryptionKey()
	if err != nil {
		t.Fatalf("GenerateEncryptionKey() error = %v", err)
	}
	if bytes.Equal(key, key2) {
		t.Error("GenerateEncryptionKey() generated identical keys (should be random)")
	}
}

func TestCredentialCipher_SealOpen(t *testing.T) {
	key, err := GenerateEncryptionKey()
	if err != nil {
		t.Fatalf("GenerateEncryptionKey() error = %v", err)
	}
	c, err := NewCredentialCipher(key)
	if err != nil {
		t.Fatalf("NewCredentialCipher() error = %v", err)
	}

	tests := []struct {
		name      string
		plaintext string
	}{
		{"record", `{"token":"abc","refresh_token":"def"}`},
		{"empty", ""},
		{"unicode", "token_🔐_secure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := c.Seal([]byte(tt.plaintext))
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}
			if !bytes.HasPrefix(sealed, sealedPrefix) {
				t.Fatalf("Seal() output lacks prefix: %q", sealed)
			}
			if tt.plaintext != "" && bytes.Contains(sealed, []byte(tt.plaintext)) {
				t.Error("Seal() leaked plaintext")
			}

			opened, err := c.Open(sealed)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if string(opened) != tt.plaintext {
				t.Errorf("Open() = %q, want %q", opened, tt.plaintext)
			}
		})
	}
}

func TestCredentialCipher_Disabled(t *testing.T) {
	c, err := NewCredentialCipher(nil)
	if err != nil {
		t.Fatalf("NewCredentialCipher(nil) error = %v", err)
	}
	if c.Enabled() {
		t.Error("cipher without key should be disabled")
	}

	data := []byte(`{"token":"abc"}`)
	sealed, err := c.Seal(data)
	if err != nil || !bytes.Equal(sealed, data) {
		t.Errorf("Seal() = %q, %v; want passthrough", sealed, err)
	}

	var nilCipher *CredentialCipher
	opened, err := nilCipher.Open(data)
	if err != nil || !bytes.Equal(opened, data) {
		t.Errorf("nil Open() = %q, %v; want passthrough", opened, err)
	}
}

func TestCredentialCipher_WrongKey(t *testing.T) {
	k1, _ := GenerateEncryptionKey()
	k2, _ := GenerateEncryptionKey()
	c1, _ := NewCredentialCipher(k1)
	c2, _ := NewCredentialCipher(k2)

	sealed, err := c1.Seal([]byte("secret"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if _, err := c2.Open(sealed); err == nil {
		t.Error("Open() with wrong key should fail")
	}
}

func TestNewCredentialCipher_InvalidKeySize(t *testing.T) {
	for _, size := range []int{16, 31, 33, 64} {
		if _, err := NewCredentialCipher(make([]byte, size)); err == nil {
			t.Errorf("NewCredentialCipher(%d bytes) expected error", size)
		}
	}
}

func TestEncryptionKeyFromBase64(t *testing.T) {
	key, _ := GenerateEncryptionKey()

	tests := []struct {
		name    string
		in      string
		wantLen int
		wantErr bool
	}{
		{"valid", base64.StdEncoding.EncodeToString(key), 32, false},
		{"empty disables", "", 0, false},
		{"not base64", "!!!", 0, true},
		{"short", base64.StdEncoding.EncodeToString([]byte("short")), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncryptionKeyFromBase64(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EncryptionKeyFromBase64() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.wantLen {
				t.Errorf("EncryptionKeyFromBase64() len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}
