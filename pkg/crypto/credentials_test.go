package crypto

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

// Test key generated with: openssl rand -base64 32
const testKey = "dGVzdC1rZXktZm9yLXVuaXQtdGVzdHMtMzItYnl0ZXM=" // "test-key-for-unit-tests-32-bytes"

const owner = "6f1c2a4e-0d57-4b8e-9a52-3f1f0f3a2b10"

func TestNewCredentialEncryptor(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid 32-byte base64 key", testKey, false},
		{"empty key", "", true},
		{"passphrase hashed to 32 bytes", "my-simple-passphrase", false},
		{"short base64 key hashed", base64.StdEncoding.EncodeToString([]byte("sixteen-byte-key")), false},
		{"long base64 key hashed", base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", 64))), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewCredentialEncryptor(tt.key)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidKey) {
					t.Errorf("expected ErrInvalidKey, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if enc.Fingerprint() == "" {
				t.Error("expected fingerprint")
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	a, _ := NewCredentialEncryptor("passphrase-one")
	b, _ := NewCredentialEncryptor("passphrase-one")
	c, _ := NewCredentialEncryptor("passphrase-two")

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("same key must produce the same fingerprint")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different keys must produce different fingerprints")
	}
	if strings.Contains(a.Fingerprint(), "passphrase") {
		t.Error("fingerprint leaks key material")
	}
}

func TestSealOpen(t *testing.T) {
	enc, err := NewCredentialEncryptor(testKey)
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}

	for _, plaintext := range []string{"", "s3cret", "pässwörd with spaces", strings.Repeat("p", 1024)} {
		sealed, err := enc.Seal(plaintext, owner)
		if err != nil {
			t.Fatalf("Seal(%q) failed: %v", plaintext, err)
		}
		if plaintext == "" && sealed != "" {
			t.Errorf("empty plaintext should stay empty, got %q", sealed)
		}
		if plaintext != "" && sealed == plaintext {
			t.Errorf("Seal(%q) returned plaintext", plaintext)
		}

		opened, err := enc.Open(sealed, owner)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if opened != plaintext {
			t.Errorf("round trip mismatch: got %q, want %q", opened, plaintext)
		}
	}
}

func TestSealUsesUniqueNonces(t *testing.T) {
	enc, _ := NewCredentialEncryptor(testKey)

	a, _ := enc.Seal("same", owner)
	b, _ := enc.Seal("same", owner)
	if a == b {
		t.Error("expected different ciphertexts for repeated Seal")
	}
}

func TestOpenRejectsOtherOwner(t *testing.T) {
	enc, _ := NewCredentialEncryptor(testKey)

	sealed, err := enc.Seal("s3cret", owner)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if _, err := enc.Open(sealed, "another-endpoint"); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestOpenRejectsWrongKey(t *testing.T) {
	enc1, _ := NewCredentialEncryptor("key-one")
	enc2, _ := NewCredentialEncryptor("key-two")

	sealed, _ := enc1.Seal("s3cret", owner)
	if _, err := enc2.Open(sealed, owner); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestOpenInvalidInput(t *testing.T) {
	enc, _ := NewCredentialEncryptor(testKey)

	tests := []struct {
		name  string
		input string
	}{
		{"not base64", "not-valid-base64!!!"},
		{"too short", base64.StdEncoding.EncodeToString([]byte("short"))},
		{"tampered", base64.StdEncoding.EncodeToString([]byte(strings.Repeat("a", 40)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := enc.Open(tt.input, owner); !errors.Is(err, ErrDecryptionFailed) {
				t.Errorf("expected ErrDecryptionFailed, got %v", err)
			}
		})
	}
}
