package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/LuizSSampaio/rauncher-mc/core"
	"github.com/LuizSSampaio/rauncher-mc/security"
)

// Store persists encrypted sessions in a relational table. It offers the
// same contract as the file store for launchers that already carry a
// database for instance metadata.
type Store struct {
	db     *bun.DB
	repo   repository.Repository[*sessionRecord]
	keys   *security.Manager
	logger core.Logger
}

type Option func(*Store)

func WithLogger(logger core.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func New(db *bun.DB, keys *security.Manager, options ...Option) (*Store, error) {
	return newStore(db, keys, options...)
}

// NewFromPersistence builds the store from a go-persistence-bun client.
func NewFromPersistence(client *persistence.Client, keys *security.Manager, options ...Option) (*Store, error) {
	db, err := resolveBunDB(client)
	if err != nil {
		return nil, err
	}
	return newStore(db, keys, options...)
}

func newStore(db *bun.DB, keys *security.Manager, options ...Option) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	if keys == nil {
		return nil, fmt.Errorf("sqlstore: key manager is required")
	}
	store := &Store{
		db:   db,
		repo: repository.NewRepository[*sessionRecord](db, sessionHandlers()),
		keys: keys,
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		option(store)
	}
	_, store.logger = glog.Resolve("sqlstore", nil, store.logger)
	return store, nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client %T", candidate)
	}
}

// Init creates the session table when it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: store is not configured")
	}
	if _, err := s.db.NewCreateTable().
		Model((*sessionRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return core.NewStorageIOError(err, "create sessions table")
	}
	return nil
}

func (s *Store) Load(ctx context.Context, accountKey string) (*core.Session, error) {
	if s == nil || s.repo == nil {
		return nil, nil
	}
	accountKey = strings.TrimSpace(accountKey)
	if accountKey == "" {
		return nil, nil
	}

	records, _, err := s.repo.List(ctx,
		repository.SelectBy("account_key", "=", accountKey),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("failed to load session", "account", accountKey, "error", err.Error())
		return nil, nil
	}
	if len(records) == 0 {
		return nil, nil
	}

	session, err := s.decryptRecord(records[0])
	if err != nil {
		s.logger.Error("failed to decrypt session", "account", accountKey, "error", err.Error())
		return nil, nil
	}
	return session, nil
}

func (s *Store) Save(ctx context.Context, accountKey string, session *core.Session) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: store is not configured")
	}
	accountKey = strings.TrimSpace(accountKey)
	if accountKey == "" {
		return fmt.Errorf("sqlstore: account key is required")
	}
	if session == nil {
		return fmt.Errorf("sqlstore: session is required")
	}

	record, err := s.encryptRecord(accountKey, session)
	if err != nil {
		return err
	}
	if _, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (account_key) DO UPDATE").
		Set("nonce = EXCLUDED.nonce").
		Set("ciphertext = EXCLUDED.ciphertext").
		Set("aad_version = EXCLUDED.aad_version").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return core.NewStorageIOError(err, "save session record")
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, accountKey string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: store is not configured")
	}
	accountKey = strings.TrimSpace(accountKey)
	if accountKey == "" {
		return nil
	}
	if _, err := s.db.NewDelete().
		Model((*sessionRecord)(nil)).
		Where("account_key = ?", accountKey).
		Exec(ctx); err != nil {
		return core.NewStorageIOError(err, "remove session record")
	}
	return nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return []string{}, nil
	}
	accounts := []string{}
	if err := s.db.NewSelect().
		Model((*sessionRecord)(nil)).
		Column("account_key").
		Order("account_key ASC").
		Scan(ctx, &accounts); err != nil {
		s.logger.Error("failed to list accounts", "error", err.Error())
		return []string{}, nil
	}
	return accounts, nil
}

// RotateKey decrypts every stored session under the current key before the
// key changes, then rewrites all records under the new key in one
// transaction. A record that cannot be decrypted aborts rotation with
// nothing changed.
func (s *Store) RotateKey(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: store is not configured")
	}

	records := []*sessionRecord{}
	if err := s.db.NewSelect().
		Model(&records).
		Order("account_key ASC").
		Scan(ctx); err != nil {
		return core.NewStorageIOError(err, "load session records for rotation")
	}

	type decrypted struct {
		accountKey string
		session    *core.Session
	}
	sessions := make([]decrypted, 0, len(records))
	for _, record := range records {
		session, err := s.decryptRecord(record)
		if err != nil {
			return err
		}
		sessions = append(sessions, decrypted{accountKey: record.AccountKey, session: session})
	}

	if _, err := s.keys.Rotate(); err != nil {
		return err
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, item := range sessions {
			record, encErr := s.encryptRecord(item.accountKey, item.session)
			if encErr != nil {
				return encErr
			}
			if _, updateErr := tx.NewUpdate().
				Model(record).
				Column("nonce", "ciphertext", "aad_version", "updated_at").
				WherePK().
				Exec(ctx); updateErr != nil {
				return updateErr
			}
		}
		return nil
	})
	if err != nil {
		return core.NewStorageIOError(err, "rewrite session records")
	}

	s.logger.Info("storage key rotated", "accounts", len(sessions))
	return nil
}

func (s *Store) encryptRecord(accountKey string, session *core.Session) (*sessionRecord, error) {
	plaintext, err := json.Marshal(session)
	if err != nil {
		return nil, core.NewDecodeError(err, "encode session")
	}
	defer security.WipeBytes(plaintext)

	blob, err := security.Encrypt(s.keys.Key(), plaintext, accountKey)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &sessionRecord{
		AccountKey: accountKey,
		Nonce:      blob.Nonce,
		Ciphertext: blob.Ciphertext,
		AADVersion: blob.AADVersion,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *Store) decryptRecord(record *sessionRecord) (*core.Session, error) {
	if record == nil {
		return nil, nil
	}
	blob := security.EncryptedBlob{
		Nonce:      record.Nonce,
		Ciphertext: record.Ciphertext,
		AADVersion: record.AADVersion,
	}
	plaintext, err := security.Decrypt(s.keys.Key(), blob, record.AccountKey)
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

var (
	_ core.TokenStore = (*Store)(nil)
	_ core.KeyRotator = (*Store)(nil)
)
