package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/LuizSSampaio/rauncher-mc/core"
	"github.com/LuizSSampaio/rauncher-mc/security"
)

const (
	accountsDirName = "accounts"
	lockFileName    = "lock"
	sessionFileExt  = ".json"
)

// Store persists sessions as per-account encrypted files:
//
//	<storageDir>/
//	├── meta.json          key metadata
//	├── lock               advisory lock file
//	└── accounts/
//	    └── <uuid>.json    encrypted session
//
// Cross-process safety comes from a non-blocking advisory file lock taken
// on every mutation; contention fails fast with a lock-timeout error
// instead of queueing.
type Store struct {
	storageDir  string
	accountsDir string
	keys        *security.Manager
	logger      core.Logger

	mu    sync.RWMutex
	lock  *flock.Flock
	cache map[string]*core.Session
}

type Option func(*Store)

func WithLogger(logger core.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New initializes the storage layout and establishes the encryption key.
// The keyring may be nil to force the passphrase fallback.
func New(
	ctx context.Context,
	storageDir string,
	keyring core.Keyring,
	prompt core.PassphrasePrompt,
	options ...Option,
) (*Store, error) {
	storageDir = strings.TrimSpace(storageDir)
	if storageDir == "" {
		return nil, fmt.Errorf("filestore: storage dir is required")
	}

	store := &Store{
		storageDir:  storageDir,
		accountsDir: filepath.Join(storageDir, accountsDirName),
		cache:       map[string]*core.Session{},
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		option(store)
	}
	_, store.logger = glog.Resolve("filestore", nil, store.logger)

	if err := os.MkdirAll(store.accountsDir, 0o700); err != nil {
		return nil, core.NewStorageIOError(err, "create storage directories")
	}
	if err := os.Chmod(storageDir, 0o700); err != nil {
		return nil, core.NewStorageIOError(err, "secure storage directory")
	}

	keys, err := security.OpenManager(
		ctx,
		storageDir,
		keyring,
		prompt,
		security.WithManagerLogger(store.logger),
	)
	if err != nil {
		return nil, err
	}
	store.keys = keys
	store.lock = flock.New(filepath.Join(storageDir, lockFileName))
	return store, nil
}

// DefaultStorageDir returns the per-user storage root.
func DefaultStorageDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", core.NewStorageIOError(err, "resolve user config directory")
	}
	return filepath.Join(configDir, "rauncher", "rc-auth"), nil
}

// Load returns the cached session, falling back to disk. Undecryptable or
// malformed records are logged and reported as absent.
func (s *Store) Load(_ context.Context, accountKey string) (*core.Session, error) {
	if s == nil {
		return nil, nil
	}
	accountKey = strings.TrimSpace(accountKey)
	if accountKey == "" {
		return nil, nil
	}

	s.mu.RLock()
	cached, ok := s.cache[accountKey]
	s.mu.RUnlock()
	if ok {
		return cached.Clone(), nil
	}

	session, err := s.loadFromDisk(accountKey)
	if err != nil {
		s.logger.Error("failed to load session", "account", accountKey, "error", err.Error())
		return nil, nil
	}
	if session == nil {
		return nil, nil
	}

	s.mu.Lock()
	s.cache[accountKey] = session.Clone()
	s.mu.Unlock()
	return session, nil
}

func (s *Store) Save(_ context.Context, accountKey string, session *core.Session) error {
	if s == nil {
		return fmt.Errorf("filestore: store is not initialized")
	}
	accountKey = strings.TrimSpace(accountKey)
	if accountKey == "" {
		return fmt.Errorf("filestore: account key is required")
	}
	if session == nil {
		return fmt.Errorf("filestore: session is required")
	}

	release, err := s.acquireLock()
	if err != nil {
		return err
	}
	defer release()

	if err := s.saveToDisk(accountKey, session); err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[accountKey] = session.Clone()
	s.mu.Unlock()
	return nil
}

func (s *Store) Remove(_ context.Context, accountKey string) error {
	if s == nil {
		return fmt.Errorf("filestore: store is not initialized")
	}
	accountKey = strings.TrimSpace(accountKey)
	if accountKey == "" {
		return nil
	}

	release, err := s.acquireLock()
	if err != nil {
		return err
	}
	defer release()

	if err := os.Remove(s.accountPath(accountKey)); err != nil && !os.IsNotExist(err) {
		return core.NewStorageIOError(err, "remove session file")
	}

	s.mu.Lock()
	delete(s.cache, accountKey)
	s.mu.Unlock()
	return nil
}

// ListAccounts enumerates the account files on disk. An unreadable
// directory is logged and reported as empty.
func (s *Store) ListAccounts(_ context.Context) ([]string, error) {
	if s == nil {
		return []string{}, nil
	}
	entries, err := os.ReadDir(s.accountsDir)
	if err != nil {
		s.logger.Error("failed to read accounts directory", "error", err.Error())
		return []string{}, nil
	}
	accounts := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, sessionFileExt) {
			continue
		}
		accounts = append(accounts, strings.TrimSuffix(name, sessionFileExt))
	}
	return accounts, nil
}

// RotateKey generates a fresh key and re-encrypts every stored session
// under it. All sessions are decrypted up front; a record that cannot be
// read fails the rotation before the key changes, so nothing is lost.
func (s *Store) RotateKey(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("filestore: store is not initialized")
	}

	release, err := s.acquireLock()
	if err != nil {
		return err
	}
	defer release()

	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return err
	}

	type record struct {
		accountKey string
		session    *core.Session
	}
	records := make([]record, 0, len(accounts))
	for _, accountKey := range accounts {
		session, loadErr := s.loadFromDisk(accountKey)
		if loadErr != nil {
			return loadErr
		}
		if session == nil {
			continue
		}
		records = append(records, record{accountKey: accountKey, session: session})
	}

	if _, err := s.keys.Rotate(); err != nil {
		return err
	}

	for _, item := range records {
		if err := s.saveToDisk(item.accountKey, item.session); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.cache = map[string]*core.Session{}
	s.mu.Unlock()

	s.logger.Info("storage key rotated", "accounts", len(records))
	return nil
}

func (s *Store) accountPath(accountKey string) string {
	return filepath.Join(s.accountsDir, accountKey+sessionFileExt)
}

func (s *Store) acquireLock() (func(), error) {
	locked, err := s.lock.TryLock()
	if err != nil {
		return nil, core.NewStorageIOError(err, "acquire storage lock")
	}
	if !locked {
		return nil, core.NewLockTimeoutError()
	}
	return func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release storage lock", "error", err.Error())
		}
	}, nil
}

func (s *Store) loadFromDisk(accountKey string) (*core.Session, error) {
	content, err := os.ReadFile(s.accountPath(accountKey))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, core.NewStorageIOError(err, "read session file")
	}

	var blob security.EncryptedBlob
	if err := json.Unmarshal(content, &blob); err != nil {
		return nil, core.NewDecodeError(err, "decode encrypted session")
	}

	plaintext, err := security.Decrypt(s.keys.Key(), blob, accountKey)
	if err != nil {
		return nil, err
	}
	defer security.WipeBytes(plaintext)

	var session core.Session
	if err := json.Unmarshal(plaintext, &session); err != nil {
		return nil, core.NewDecodeError(err, "decode session")
	}
	return &session, nil
}

func (s *Store) saveToDisk(accountKey string, session *core.Session) error {
	plaintext, err := json.Marshal(session)
	if err != nil {
		return core.NewDecodeError(err, "encode session")
	}
	defer security.WipeBytes(plaintext)

	blob, err := security.Encrypt(s.keys.Key(), plaintext, accountKey)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return core.NewDecodeError(err, "encode encrypted session")
	}

	// Atomic replace: temp file, fsync, rename.
	path := s.accountPath(accountKey)
	tempPath := path + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return core.NewStorageIOError(err, "create temp session file")
	}
	if _, err := file.Write(encoded); err != nil {
		file.Close()
		os.Remove(tempPath)
		return core.NewStorageIOError(err, "write session file")
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return core.NewStorageIOError(err, "sync session file")
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return core.NewStorageIOError(err, "close session file")
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return core.NewStorageIOError(err, "replace session file")
	}
	return nil
}

var (
	_ core.TokenStore = (*Store)(nil)
	_ core.KeyRotator = (*Store)(nil)
)
