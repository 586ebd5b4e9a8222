package rauncher

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/LuizSSampaio/rauncher-mc/auth"
	"github.com/LuizSSampaio/rauncher-mc/core"
)

// AccountManager composes the auth client and the token store into the
// account lifecycle: login persists a fresh session, refresh replaces the
// token chain in place, removal forgets the account.
type AccountManager struct {
	client *auth.Client
	store  core.TokenStore
	logger core.Logger
}

func NewAccountManager(client *auth.Client, store core.TokenStore, logger core.Logger) (*AccountManager, error) {
	if client == nil {
		return nil, fmt.Errorf("rauncher: auth client is required")
	}
	if store == nil {
		return nil, fmt.Errorf("rauncher: token store is required")
	}
	manager := &AccountManager{client: client, store: store}
	_, manager.logger = glog.Resolve("accounts", nil, logger)
	return manager, nil
}

// AuthorizeURL builds the URL the user must visit to start a login.
func (m *AccountManager) AuthorizeURL(state string) (string, error) {
	if m == nil || m.client == nil {
		return "", fmt.Errorf("rauncher: account manager is not configured")
	}
	return m.client.BuildAuthorizeURL(state)
}

// ParseRedirect extracts the authorization code from the callback URL the
// provider redirected to.
func (m *AccountManager) ParseRedirect(redirectURL, expectedState string) (string, error) {
	if m == nil || m.client == nil {
		return "", fmt.Errorf("rauncher: account manager is not configured")
	}
	return m.client.ParseRedirect(redirectURL, expectedState)
}

// Login runs the full credential chain and persists the session under its
// account key.
func (m *AccountManager) Login(ctx context.Context, code string) (*core.Session, error) {
	if m == nil || m.client == nil || m.store == nil {
		return nil, fmt.Errorf("rauncher: account manager is not configured")
	}
	session, err := m.client.CompleteLoginWithCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, session.AccountKey(), session); err != nil {
		return nil, err
	}
	m.logger.Info("account logged in", "account", session.AccountKey(), "name", session.Profile.Name)
	return session, nil
}

// Refresh re-runs the token chain for a stored session and persists the
// result. The account's identity fields carry over unchanged.
func (m *AccountManager) Refresh(ctx context.Context, accountKey string) (*core.Session, error) {
	if m == nil || m.client == nil || m.store == nil {
		return nil, fmt.Errorf("rauncher: account manager is not configured")
	}
	accountKey = strings.TrimSpace(accountKey)
	session, err := m.store.Load(ctx, accountKey)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("rauncher: no stored session for account %q", accountKey)
	}

	refreshed, err := m.client.RefreshSession(ctx, session)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, refreshed.AccountKey(), refreshed); err != nil {
		return nil, err
	}
	m.logger.Info("session refreshed", "account", refreshed.AccountKey())
	return refreshed, nil
}

// Session returns the stored session for an account, refreshing it first
// when the Minecraft token is inside the expiry window.
func (m *AccountManager) Session(ctx context.Context, accountKey string) (*core.Session, error) {
	if m == nil || m.store == nil {
		return nil, fmt.Errorf("rauncher: account manager is not configured")
	}
	session, err := m.store.Load(ctx, strings.TrimSpace(accountKey))
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("rauncher: no stored session for account %q", accountKey)
	}
	if !session.NeedsRefresh() {
		return session, nil
	}
	return m.Refresh(ctx, accountKey)
}

func (m *AccountManager) RemoveAccount(ctx context.Context, accountKey string) error {
	if m == nil || m.store == nil {
		return fmt.Errorf("rauncher: account manager is not configured")
	}
	if err := m.store.Remove(ctx, strings.TrimSpace(accountKey)); err != nil {
		return err
	}
	m.logger.Info("account removed", "account", accountKey)
	return nil
}

func (m *AccountManager) ListAccounts(ctx context.Context) ([]string, error) {
	if m == nil || m.store == nil {
		return []string{}, nil
	}
	return m.store.ListAccounts(ctx)
}

// RotateStorageKey re-encrypts every stored session under a fresh key.
// Only durable stores support it.
func (m *AccountManager) RotateStorageKey(ctx context.Context) error {
	if m == nil || m.store == nil {
		return fmt.Errorf("rauncher: account manager is not configured")
	}
	rotator, ok := m.store.(core.KeyRotator)
	if !ok {
		return fmt.Errorf("rauncher: token store does not support key rotation")
	}
	return rotator.RotateKey(ctx)
}
