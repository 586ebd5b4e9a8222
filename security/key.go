package security

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// Key is a symmetric encryption key. It never prints its material and its
// backing array is wiped by Destroy once the key is no longer needed.
type Key struct {
	material [KeySize]byte
}

// GenerateKey returns a fresh random key.
func GenerateKey() (*Key, error) {
	key := &Key{}
	if _, err := io.ReadFull(rand.Reader, key.material[:]); err != nil {
		return nil, fmt.Errorf("security: key generation failed: %w", err)
	}
	return key, nil
}

// KeyFromBytes copies raw material into a Key. The input must be exactly
// KeySize bytes; the caller should wipe its own copy afterwards.
func KeyFromBytes(material []byte) (*Key, error) {
	if len(material) != KeySize {
		return nil, fmt.Errorf("security: key must be %d bytes, got %d", KeySize, len(material))
	}
	key := &Key{}
	copy(key.material[:], material)
	return key, nil
}

// Bytes exposes the raw key material for cipher setup. Sensitive; do not
// retain or log the returned slice.
func (k *Key) Bytes() []byte {
	if k == nil {
		return nil
	}
	return k.material[:]
}

// Destroy wipes the key material. The key must not be used afterwards.
func (k *Key) Destroy() {
	if k == nil {
		return
	}
	for i := range k.material {
		k.material[i] = 0
	}
}

// Equal compares two keys in constant time.
func (k *Key) Equal(other *Key) bool {
	if k == nil || other == nil {
		return k == other
	}
	return subtle.ConstantTimeCompare(k.material[:], other.material[:]) == 1
}

func (k *Key) String() string {
	return "Key([REDACTED])"
}

func (k *Key) GoString() string {
	return k.String()
}

// Format keeps the material out of every fmt verb, including %#v and %x.
func (k *Key) Format(state fmt.State, verb rune) {
	fmt.Fprint(state, k.String())
}
