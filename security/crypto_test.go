package security

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/LuizSSampaio/rauncher-mc/core"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	key := mustGenerateKey(t)
	plaintext := []byte(`{"ms":{"access_token":"secret"}}`)

	blob, err := Encrypt(key, plaintext, "account-1")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if blob.AADVersion != AADVersion {
		t.Fatalf("expected aad version %q, got %q", AADVersion, blob.AADVersion)
	}

	decrypted, err := Decrypt(key, blob, "account-1")
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Fatalf("expected roundtrip to preserve plaintext")
	}
}

func TestEncryptUsesFreshNonces(t *testing.T) {
	key := mustGenerateKey(t)
	first, err := Encrypt(key, []byte("payload"), "account-1")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	second, err := Encrypt(key, []byte("payload"), "account-1")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if first.Nonce == second.Nonce {
		t.Fatalf("expected distinct nonces per encryption")
	}
	if first.Ciphertext == second.Ciphertext {
		t.Fatalf("expected distinct ciphertexts per encryption")
	}
}

func TestDecryptFailuresCollapseToCorruptedStore(t *testing.T) {
	key := mustGenerateKey(t)
	blob, err := Encrypt(key, []byte("payload"), "account-1")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	otherKey := mustGenerateKey(t)
	if _, err := Decrypt(otherKey, blob, "account-1"); !core.IsCorruptedStore(err) {
		t.Fatalf("expected corrupted-store error for wrong key, got %v", err)
	}

	if _, err := Decrypt(key, blob, "account-2"); !core.IsCorruptedStore(err) {
		t.Fatalf("expected corrupted-store error for wrong account context, got %v", err)
	}

	tampered := blob
	raw, decodeErr := base64.RawURLEncoding.DecodeString(blob.Ciphertext)
	if decodeErr != nil {
		t.Fatalf("decode ciphertext: %v", decodeErr)
	}
	raw[0] ^= 0x01
	tampered.Ciphertext = base64.RawURLEncoding.EncodeToString(raw)
	if _, err := Decrypt(key, tampered, "account-1"); !core.IsCorruptedStore(err) {
		t.Fatalf("expected corrupted-store error for tampered ciphertext, got %v", err)
	}

	badNonce := blob
	badNonce.Nonce = base64.RawURLEncoding.EncodeToString([]byte("short"))
	if _, err := Decrypt(key, badNonce, "account-1"); !core.IsCorruptedStore(err) {
		t.Fatalf("expected corrupted-store error for invalid nonce length, got %v", err)
	}

	malformed := blob
	malformed.Nonce = "!!not-base64!!"
	if _, err := Decrypt(key, malformed, "account-1"); !core.IsCorruptedStore(err) {
		t.Fatalf("expected corrupted-store error for malformed encoding, got %v", err)
	}
}

func TestKeyNeverPrintsMaterial(t *testing.T) {
	key := mustGenerateKey(t)
	material := base64.StdEncoding.EncodeToString(key.Bytes())

	for _, rendered := range []string{
		fmt.Sprintf("%v", key),
		fmt.Sprintf("%+v", key),
		fmt.Sprintf("%#v", key),
		fmt.Sprintf("%s", key),
		key.String(),
	} {
		if strings.Contains(rendered, material) {
			t.Fatalf("key material leaked through formatting: %q", rendered)
		}
		if !strings.Contains(rendered, "REDACTED") {
			t.Fatalf("expected redacted rendering, got %q", rendered)
		}
	}
}

func TestKeyDestroyZeroesMaterial(t *testing.T) {
	key := mustGenerateKey(t)
	key.Destroy()
	for _, b := range key.Bytes() {
		if b != 0 {
			t.Fatalf("expected destroyed key material to be zeroed")
		}
	}
}

func TestKeyFromBytesRejectsWrongLength(t *testing.T) {
	if _, err := KeyFromBytes(make([]byte, 16)); err == nil {
		t.Fatalf("expected 16-byte material to be rejected")
	}
	if _, err := KeyFromBytes(make([]byte, KeySize)); err != nil {
		t.Fatalf("expected 32-byte material to be accepted, got %v", err)
	}
}

func mustGenerateKey(t *testing.T) *Key {
	t.Helper()
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}
