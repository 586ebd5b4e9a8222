package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/LuizSSampaio/rauncher-mc/core"
)

// MemoryTokenStore keeps sessions in process memory. It exists for tests
// and for short-lived tooling that never persists credentials.
type MemoryTokenStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		sessions: map[string]*core.Session{},
	}
}

func (s *MemoryTokenStore) Load(_ context.Context, accountKey string) (*core.Session, error) {
	if s == nil {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[strings.TrimSpace(accountKey)]
	if !ok {
		return nil, nil
	}
	return session.Clone(), nil
}

func (s *MemoryTokenStore) Save(_ context.Context, accountKey string, session *core.Session) error {
	if s == nil {
		return fmt.Errorf("store: memory store is not initialized")
	}
	accountKey = strings.TrimSpace(accountKey)
	if accountKey == "" {
		return fmt.Errorf("store: account key is required")
	}
	if session == nil {
		return fmt.Errorf("store: session is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[accountKey] = session.Clone()
	return nil
}

func (s *MemoryTokenStore) Remove(_ context.Context, accountKey string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, strings.TrimSpace(accountKey))
	return nil
}

func (s *MemoryTokenStore) ListAccounts(_ context.Context) ([]string, error) {
	if s == nil {
		return []string{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]string, 0, len(s.sessions))
	for accountKey := range s.sessions {
		accounts = append(accounts, accountKey)
	}
	sort.Strings(accounts)
	return accounts, nil
}

var _ core.TokenStore = (*MemoryTokenStore)(nil)
