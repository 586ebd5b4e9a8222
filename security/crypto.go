package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"

	"github.com/LuizSSampaio/rauncher-mc/core"
)

const (
	// aadScheme tags every AAD string; it is part of the on-disk format
	// and must not change without a version bump.
	aadScheme = "rc-auth"

	// AADVersion is written into every new blob.
	AADVersion = "v1"

	nonceSize = 12
)

// EncryptedBlob is the persisted unit: a fresh nonce, the sealed
// ciphertext+tag, and the AAD version the record was written under. All
// fields are base64url (unpadded) so the JSON stays printable-safe.
type EncryptedBlob struct {
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
	AADVersion string `json:"aad_version"`
}

// Encrypt seals plaintext under AES-256-GCM, binding it to the account key
// through the additional authenticated data. The nonce is freshly random on
// every call and must never be reused or persisted by the caller.
func Encrypt(key *Key, plaintext []byte, accountKey string) (EncryptedBlob, error) {
	if key == nil {
		return EncryptedBlob{}, core.NewCryptoError("key is required")
	}
	aead, err := newAEAD(key)
	if err != nil {
		return EncryptedBlob{}, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return EncryptedBlob{}, core.NewCryptoError("nonce generation failed: " + err.Error())
	}

	sealed := aead.Seal(nil, nonce, plaintext, aadFor(AADVersion, accountKey))
	return EncryptedBlob{
		Nonce:      base64.RawURLEncoding.EncodeToString(nonce),
		Ciphertext: base64.RawURLEncoding.EncodeToString(sealed),
		AADVersion: AADVersion,
	}, nil
}

// Decrypt opens a blob under the account key it was written for. Every
// failure mode collapses into the single corrupted-store error so no oracle
// distinguishes a wrong key from a wrong context or a tampered record.
func Decrypt(key *Key, blob EncryptedBlob, accountKey string) ([]byte, error) {
	if key == nil {
		return nil, core.NewCryptoError("key is required")
	}
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce, err := base64.RawURLEncoding.DecodeString(blob.Nonce)
	if err != nil || len(nonce) != nonceSize {
		return nil, core.NewCorruptedStoreError()
	}
	sealed, err := base64.RawURLEncoding.DecodeString(blob.Ciphertext)
	if err != nil {
		return nil, core.NewCorruptedStoreError()
	}

	plaintext, err := aead.Open(nil, nonce, sealed, aadFor(blob.AADVersion, accountKey))
	if err != nil {
		return nil, core.NewCorruptedStoreError()
	}
	return plaintext, nil
}

func newAEAD(key *Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key.Bytes())
	if err != nil {
		return nil, core.NewCryptoError("create cipher: " + err.Error())
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, core.NewCryptoError("create gcm: " + err.Error())
	}
	return aead, nil
}

func aadFor(version, accountKey string) []byte {
	return []byte(aadScheme + "|" + version + "|" + accountKey)
}

// WipeBytes zeroes sensitive intermediate buffers such as decrypted
// session plaintext.
func WipeBytes(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
