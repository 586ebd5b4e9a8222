package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/LuizSSampaio/rauncher-mc/core"
)

const sessionCacheKeyPrefix = "rauncher-mc::session::v1"

// CachedStore layers a read-through cache over a token store. Writes and
// removals invalidate the cached entry; key rotation passes through since
// it does not change the decrypted session payload.
type CachedStore struct {
	base  core.TokenStore
	cache repositorycache.CacheService
}

func NewCachedStore(base core.TokenStore, cacheService repositorycache.CacheService) (*CachedStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base token store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: cache service is required")
	}
	return &CachedStore{base: base, cache: cacheService}, nil
}

// SessionCacheKey returns the deterministic cache key for one account:
// rauncher-mc::session::v1::<account_key> with the account segment
// URL-path escaped.
func SessionCacheKey(accountKey string) (string, error) {
	accountKey = strings.TrimSpace(accountKey)
	if accountKey == "" {
		return "", fmt.Errorf("sqlstore: account key is required")
	}
	return sessionCacheKeyPrefix + "::" + url.PathEscape(accountKey), nil
}

func (s *CachedStore) Load(ctx context.Context, accountKey string) (*core.Session, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached store is not configured")
	}
	cacheKey, err := SessionCacheKey(accountKey)
	if err != nil {
		return nil, err
	}

	session, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (*core.Session, error) {
		fetched, fetchErr := s.base.Load(ctx, accountKey)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return fetched.Clone(), nil
	})
	if err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

func (s *CachedStore) Save(ctx context.Context, accountKey string, session *core.Session) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached store is not configured")
	}
	if err := s.base.Save(ctx, accountKey, session); err != nil {
		return err
	}
	return s.invalidate(ctx, accountKey)
}

func (s *CachedStore) Remove(ctx context.Context, accountKey string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached store is not configured")
	}
	if err := s.base.Remove(ctx, accountKey); err != nil {
		return err
	}
	return s.invalidate(ctx, accountKey)
}

func (s *CachedStore) ListAccounts(ctx context.Context) ([]string, error) {
	if s == nil || s.base == nil {
		return []string{}, nil
	}
	return s.base.ListAccounts(ctx)
}

// RotateKey forwards to the base store when it supports rotation and also
// clears the affected cache entries so stale reads cannot outlive the old
// ciphertexts.
func (s *CachedStore) RotateKey(ctx context.Context) error {
	if s == nil || s.base == nil {
		return fmt.Errorf("sqlstore: cached store is not configured")
	}
	rotator, ok := s.base.(core.KeyRotator)
	if !ok {
		return fmt.Errorf("sqlstore: base store does not support key rotation")
	}
	if err := rotator.RotateKey(ctx); err != nil {
		return err
	}
	accounts, err := s.base.ListAccounts(ctx)
	if err != nil {
		return err
	}
	for _, accountKey := range accounts {
		if invalidateErr := s.invalidate(ctx, accountKey); invalidateErr != nil {
			return invalidateErr
		}
	}
	return nil
}

func (s *CachedStore) invalidate(ctx context.Context, accountKey string) error {
	cacheKey, err := SessionCacheKey(accountKey)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

var (
	_ core.TokenStore = (*CachedStore)(nil)
	_ core.KeyRotator = (*CachedStore)(nil)
)
