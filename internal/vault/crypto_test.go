package vault

import (
	"bytes"
	"encoding/hex"
	"testing"
)

var testKey = []byte("thisis32byteslongsecretkey123456")

func TestSealOpen(t *testing.T) {
	plaintext := []byte(`{"_id":"abc","email":"a@x.com"}`)

	sealed, err := Seal(plaintext, testKey)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if bytes.Contains(sealed, []byte("a@x.com")) {
		t.Fatal("Sealed data should not contain the plaintext")
	}

	opened, err := Open(sealed, testKey)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("Expected %s, got %s", plaintext, opened)
	}
}

func TestOpenWithWrongKey(t *testing.T) {
	sealed, err := Seal([]byte("Secret message"), testKey)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if _, err := Open(sealed, []byte("another32byteslongsecretkey65432")); err == nil {
		t.Fatal("Open should have failed with wrong key")
	}
}

func TestInvalidKeySize(t *testing.T) {
	if _, err := Seal([]byte("test"), []byte("shortkey")); err == nil {
		t.Fatal("Seal should fail with invalid key size")
	}
	if _, err := Open([]byte("0123456789abcdef"), []byte("shortkey")); err == nil {
		t.Fatal("Open should fail with invalid key size")
	}
}

func TestOpenMalformed(t *testing.T) {
	if _, err := Open([]byte("not-hex"), testKey); err == nil {
		t.Fatal("Open should fail with malformed hex")
	}
	if _, err := Open([]byte("abcdef"), testKey); err == nil {
		t.Fatal("Open should fail with too short ciphertext")
	}
}

func TestParseMasterKey(t *testing.T) {
	key, err := ParseMasterKey(hex.EncodeToString(testKey))
	if err != nil {
		t.Fatalf("ParseMasterKey failed: %v", err)
	}
	if !bytes.Equal(key, testKey) {
		t.Errorf("Expected %x, got %x", testKey, key)
	}

	if _, err := ParseMasterKey("abcd"); err == nil {
		t.Error("Expected error for short key")
	}
	if _, err := ParseMasterKey("zz"); err == nil {
		t.Error("Expected error for non-hex key")
	}
}

func TestGenerateSelfSignedCert(t *testing.T) {
	cert, err := GenerateSelfSignedCert("records.local", "10.0.0.5")
	if err != nil {
		t.Fatalf("Failed to generate self-signed cert: %v", err)
	}
	if len(cert.Certificate) == 0 {
		t.Fatal("Generated certificate is empty")
	}
	if cert.PrivateKey == nil {
		t.Fatal("Generated private key is nil")
	}
}
