package backup

import (
	"bytes"
	"errors"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(salt1) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt1), saltSize)
	}

	salt2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt 2: %v", err)
	}
	if bytes.Equal(salt1, salt2) {
		t.Error("two salts should not be equal")
	}
}

func TestDeriveKey(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("mypassphrase", salt)
	key2 := DeriveKey("mypassphrase", salt)
	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
	if bytes.Equal(key1, DeriveKey("other", salt)) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	original := []byte(`[{"id":"list_1","name":"My Loadout"}]`)

	sealed, err := Seal(original, "test-passphrase-123")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, original) {
		t.Error("sealed data should not contain the plaintext")
	}

	opened, err := Open(sealed, "test-passphrase-123")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(original, opened) {
		t.Error("opened content should match original")
	}
}

func TestSealUsesFreshSalt(t *testing.T) {
	a, _ := Seal([]byte("same"), "pw")
	b, _ := Seal([]byte("same"), "pw")
	if bytes.Equal(a[:saltSize], b[:saltSize]) {
		t.Error("each seal should use its own salt")
	}
}

func TestOpenFailures(t *testing.T) {
	sealed, err := Seal([]byte("secret data"), "correct-password")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	if _, err := Open(sealed, "wrong-password"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("wrong passphrase: err = %v, want ErrDecrypt", err)
	}

	tampered := bytes.Clone(sealed)
	tampered[saltSize+nonceSize+1] ^= 0xFF
	if _, err := Open(tampered, "correct-password"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("tampered: err = %v, want ErrDecrypt", err)
	}

	if _, err := Open([]byte("too short"), "correct-password"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("short: err = %v, want ErrDecrypt", err)
	}
}

func TestSealOpenEmpty(t *testing.T) {
	sealed, err := Seal(nil, "password")
	if err != nil {
		t.Fatalf("seal empty: %v", err)
	}
	opened, err := Open(sealed, "password")
	if err != nil {
		t.Fatalf("open empty: %v", err)
	}
	if len(opened) != 0 {
		t.Errorf("expected empty plaintext, got %d bytes", len(opened))
	}
}
