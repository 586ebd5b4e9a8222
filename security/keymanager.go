package security

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"golang.org/x/crypto/argon2"

	"github.com/LuizSSampaio/rauncher-mc/core"
)

const (
	metaFileName = "meta.json"

	saltSize = 32

	// Argon2id parameters: 64 MiB, 3 passes, 1 lane, 32-byte output.
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 1

	passphrasePromptText = "Enter passphrase for token storage"
)

// KeyMeta is persisted once per storage root. The salt is generated on the
// first passphrase derivation and reused until rotation so the same
// passphrase always yields the same key.
type KeyMeta struct {
	Version        int       `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	PassphraseSalt string    `json:"passphrase_salt,omitempty"`
}

func defaultKeyMeta() KeyMeta {
	return KeyMeta{
		Version:   1,
		CreatedAt: time.Now().UTC(),
	}
}

// Manager owns the live symmetric key. It sources the key from the platform
// keyring first and falls back to Argon2id derivation over a passphrase
// obtained through the injected prompt.
type Manager struct {
	storageDir string
	meta       KeyMeta
	key        *Key
	keyring    core.Keyring
	prompt     core.PassphrasePrompt
	logger     core.Logger
	service    string
	account    string
}

type ManagerOption func(*Manager)

func WithManagerLogger(logger core.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithKeyringIdentity overrides the fixed service/account pair, mainly for
// tests that share a fake keyring between storage roots.
func WithKeyringIdentity(service, account string) ManagerOption {
	return func(m *Manager) {
		if service != "" {
			m.service = service
		}
		if account != "" {
			m.account = account
		}
	}
}

// OpenManager loads or initializes the key metadata under storageDir and
// establishes the encryption key. A nil keyring disables the platform
// secret store and goes straight to the passphrase fallback.
func OpenManager(
	ctx context.Context,
	storageDir string,
	kr core.Keyring,
	prompt core.PassphrasePrompt,
	options ...ManagerOption,
) (*Manager, error) {
	if prompt == nil {
		prompt = core.NoPassphrasePrompt{}
	}
	manager := &Manager{
		storageDir: storageDir,
		keyring:    kr,
		prompt:     prompt,
		service:    KeyringService,
		account:    KeyringAccount,
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		option(manager)
	}
	_, manager.logger = glog.Resolve("security", nil, manager.logger)

	meta, err := loadKeyMeta(storageDir)
	if err != nil {
		return nil, err
	}
	manager.meta = meta

	key, fromKeyring := manager.keyFromKeyring()
	if key == nil {
		key, err = manager.deriveFromPassphrase(ctx)
		if err != nil {
			return nil, err
		}
	}
	manager.key = key

	if !fromKeyring {
		manager.storeInKeyring(key)
	}

	manager.meta.CreatedAt = time.Now().UTC()
	if err := writeKeyMeta(storageDir, manager.meta); err != nil {
		manager.key = nil
		key.Destroy()
		return nil, err
	}
	return manager, nil
}

// Key returns the live encryption key. The manager retains ownership.
func (m *Manager) Key() *Key {
	if m == nil {
		return nil
	}
	return m.key
}

func (m *Manager) Meta() KeyMeta {
	if m == nil {
		return KeyMeta{}
	}
	return m.meta
}

// Rotate replaces the live key with a fresh random one, pushes it to the
// keyring best-effort, and rewrites the metadata. The caller must
// re-encrypt every existing record under the returned key.
func (m *Manager) Rotate() (*Key, error) {
	if m == nil {
		return nil, core.NewCryptoError("key manager is not initialized")
	}
	newKey, err := GenerateKey()
	if err != nil {
		return nil, core.NewCryptoError(err.Error())
	}

	m.storeInKeyring(newKey)

	m.meta.CreatedAt = time.Now().UTC()
	if err := writeKeyMeta(m.storageDir, m.meta); err != nil {
		newKey.Destroy()
		return nil, err
	}

	old := m.key
	m.key = newKey
	if old != nil {
		old.Destroy()
	}
	return newKey, nil
}

func (m *Manager) keyFromKeyring() (*Key, bool) {
	if m.keyring == nil {
		return nil, false
	}
	encoded, err := m.keyring.Get(m.service, m.account)
	if err != nil {
		if !errors.Is(err, core.ErrSecretNotFound) {
			m.logger.Debug("keyring unavailable, using passphrase fallback", "error", err.Error())
		}
		return nil, false
	}
	material, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(material) != KeySize {
		m.logger.Warn("keyring entry is malformed, using passphrase fallback")
		return nil, false
	}
	key, err := KeyFromBytes(material)
	WipeBytes(material)
	if err != nil {
		return nil, false
	}
	m.logger.Debug("loaded encryption key from platform keyring")
	return key, true
}

func (m *Manager) storeInKeyring(key *Key) {
	if m.keyring == nil || key == nil {
		return
	}
	encoded := base64.StdEncoding.EncodeToString(key.Bytes())
	if err := m.keyring.Set(m.service, m.account, encoded); err != nil {
		m.logger.Warn("failed to store encryption key in keyring", "error", err.Error())
	}
}

func (m *Manager) deriveFromPassphrase(ctx context.Context) (*Key, error) {
	salt, err := m.passphraseSalt()
	if err != nil {
		return nil, err
	}

	passphrase, ok, err := m.prompt.Passphrase(ctx, passphrasePromptText)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.NewUserCancelledError()
	}

	secret := []byte(passphrase)
	derived := argon2.IDKey(secret, salt, argonTime, argonMemory, argonThreads, KeySize)
	WipeBytes(secret)

	key, err := KeyFromBytes(derived)
	WipeBytes(derived)
	if err != nil {
		return nil, core.NewCryptoError(err.Error())
	}
	return key, nil
}

func (m *Manager) passphraseSalt() ([]byte, error) {
	if m.meta.PassphraseSalt != "" {
		salt, err := base64.StdEncoding.DecodeString(m.meta.PassphraseSalt)
		if err != nil || len(salt) != saltSize {
			return nil, core.NewCorruptedStoreError()
		}
		return salt, nil
	}
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, core.NewCryptoError("salt generation failed: " + err.Error())
	}
	m.meta.PassphraseSalt = base64.StdEncoding.EncodeToString(salt)
	return salt, nil
}

func loadKeyMeta(storageDir string) (KeyMeta, error) {
	path := filepath.Join(storageDir, metaFileName)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultKeyMeta(), nil
		}
		return KeyMeta{}, core.NewStorageIOError(err, "read key metadata")
	}
	var meta KeyMeta
	if err := json.Unmarshal(content, &meta); err != nil {
		return KeyMeta{}, core.NewDecodeError(err, "decode key metadata")
	}
	if meta.Version == 0 {
		meta.Version = 1
	}
	return meta, nil
}

func writeKeyMeta(storageDir string, meta KeyMeta) error {
	content, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return core.NewDecodeError(err, "encode key metadata")
	}
	path := filepath.Join(storageDir, metaFileName)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return core.NewStorageIOError(err, "write key metadata")
	}
	return nil
}
