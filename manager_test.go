package rauncher

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/LuizSSampaio/rauncher-mc/auth"
	"github.com/LuizSSampaio/rauncher-mc/core"
	"github.com/LuizSSampaio/rauncher-mc/store"
)

const (
	msTokenEndpoint = "https://login.live.com/oauth20_token.srf"
	xblEndpoint     = "https://user.auth.xboxlive.com/user/authenticate"
	xstsEndpoint    = "https://xsts.auth.xboxlive.com/xsts/authorize"
	mcLoginEndpoint = "https://api.minecraftservices.com/authentication/login_with_xbox"
	profileEndpoint = "https://api.minecraftservices.com/minecraft/profile"

	testProfileID = "abcdef0123456789abcdef0123456789"
)

type scriptedCall struct {
	urlPrefix string
	status    int
	body      string
	check     func(t *testing.T, req *http.Request)
}

type scriptedDoer struct {
	t     *testing.T
	calls []scriptedCall
	index int
}

func (d *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	d.t.Helper()
	if d.index >= len(d.calls) {
		d.t.Fatalf("unexpected request %d to %s", d.index, req.URL)
	}
	call := d.calls[d.index]
	d.index++
	if !strings.HasPrefix(req.URL.String(), call.urlPrefix) {
		d.t.Fatalf("request %d: expected url prefix %q, got %q", d.index-1, call.urlPrefix, req.URL)
	}
	if call.check != nil {
		call.check(d.t, req)
	}
	return &http.Response{
		StatusCode: call.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(call.body)),
	}, nil
}

func (d *scriptedDoer) assertDrained() {
	d.t.Helper()
	if d.index != len(d.calls) {
		d.t.Fatalf("expected %d requests, saw %d", len(d.calls), d.index)
	}
}

func loginChainCalls(accessToken string) []scriptedCall {
	return []scriptedCall{
		{urlPrefix: msTokenEndpoint, status: 200, body: `{"access_token":"ms-access","refresh_token":"ms-refresh","expires_in":3600}`},
		{urlPrefix: xblEndpoint, status: 200, body: `{"Token":"xbl-token","DisplayClaims":{"xui":[{"uhs":"user-hash"}]}}`},
		{urlPrefix: xstsEndpoint, status: 200, body: `{"Token":"xsts-token","DisplayClaims":{"xui":[{"uhs":"user-hash"}]}}`},
		{urlPrefix: mcLoginEndpoint, status: 200, body: `{"access_token":"` + accessToken + `","expires_in":86400}`},
		{urlPrefix: profileEndpoint, status: 200, body: `{"id":"` + testProfileID + `","name":"TestPlayer","skins":[],"capes":[]}`},
		{urlPrefix: xstsEndpoint, status: 200, body: `{"Token":"xsts-token","DisplayClaims":{"xui":[{"uhs":"user-hash","xid":"2535412345678901","gtg":"TestGamer"}]}}`},
	}
}

func refreshChainCalls(t *testing.T, accessToken string) []scriptedCall {
	return []scriptedCall{
		{
			urlPrefix: msTokenEndpoint,
			status:    200,
			body:      `{"access_token":"ms-access-2","refresh_token":"ms-refresh-2","expires_in":3600}`,
			check: func(t *testing.T, req *http.Request) {
				if got := req.URL.Query().Get("grant_type"); got != "refresh_token" {
					t.Fatalf("expected refresh_token grant, got %q", got)
				}
			},
		},
		{urlPrefix: xblEndpoint, status: 200, body: `{"Token":"xbl-token-2","DisplayClaims":{"xui":[{"uhs":"user-hash"}]}}`},
		{urlPrefix: xstsEndpoint, status: 200, body: `{"Token":"xsts-token-2","DisplayClaims":{"xui":[{"uhs":"user-hash"}]}}`},
		{urlPrefix: mcLoginEndpoint, status: 200, body: `{"access_token":"` + accessToken + `","expires_in":86400}`},
	}
}

func newTestManager(t *testing.T, doer core.HTTPDoer) (*AccountManager, *store.MemoryTokenStore) {
	t.Helper()
	opts := []auth.Option{}
	if doer != nil {
		opts = append(opts, auth.WithHTTPClient(doer))
	}
	client, err := auth.New(core.DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	tokens := store.NewMemoryTokenStore()
	manager, err := NewAccountManager(client, tokens, nil)
	if err != nil {
		t.Fatalf("new account manager: %v", err)
	}
	return manager, tokens
}

func storedSession(mcExpiry time.Time) *core.Session {
	refresh := "ms-refresh"
	return &core.Session{
		MS: core.MsTokens{
			AccessToken:  "ms-access",
			RefreshToken: &refresh,
			ExpiresAt:    time.Now().UTC().Add(time.Hour),
		},
		Xbl:  core.XblToken{Token: "xbl-token", UHS: "user-hash"},
		Xsts: core.XstsToken{Token: "xsts-token", UHS: "user-hash"},
		MC:   core.McToken{AccessToken: "mc-access", ExpiresAt: mcExpiry},
		Profile: core.McProfile{
			ID:    testProfileID,
			Name:  "TestPlayer",
			Skins: []core.McSkin{},
			Capes: []core.McCape{},
		},
	}
}

func TestNewAccountManagerRequiresDependencies(t *testing.T) {
	if _, err := NewAccountManager(nil, store.NewMemoryTokenStore(), nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
	client, err := auth.New(core.DefaultConfig())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := NewAccountManager(client, nil, nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
}

func TestAccountManagerLoginPersistsSession(t *testing.T) {
	doer := &scriptedDoer{t: t, calls: loginChainCalls("mc-access")}
	manager, tokens := newTestManager(t, doer)

	session, err := manager.Login(context.Background(), "M.code")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	doer.assertDrained()

	if session.AccountKey() != testProfileID {
		t.Fatalf("unexpected account key %q", session.AccountKey())
	}
	if session.XUID == nil || *session.XUID != "2535412345678901" {
		t.Fatalf("expected xuid to be captured")
	}
	if session.Gamertag == nil || *session.Gamertag != "TestGamer" {
		t.Fatalf("expected gamertag to be captured")
	}

	stored, err := tokens.Load(context.Background(), testProfileID)
	if err != nil {
		t.Fatalf("load stored session: %v", err)
	}
	if stored == nil {
		t.Fatalf("expected session to be persisted")
	}
	if stored.MC.AccessToken != "mc-access" {
		t.Fatalf("unexpected stored access token %q", stored.MC.AccessToken)
	}
}

func TestAccountManagerRefreshReplacesTokens(t *testing.T) {
	doer := &scriptedDoer{t: t, calls: refreshChainCalls(t, "mc-access-2")}
	manager, tokens := newTestManager(t, doer)

	seed := storedSession(time.Now().UTC().Add(-time.Hour))
	if err := tokens.Save(context.Background(), seed.AccountKey(), seed); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	refreshed, err := manager.Refresh(context.Background(), testProfileID)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	doer.assertDrained()

	if refreshed.MC.AccessToken != "mc-access-2" {
		t.Fatalf("expected refreshed mc token, got %q", refreshed.MC.AccessToken)
	}
	if refreshed.Profile.ID != testProfileID || refreshed.Profile.Name != "TestPlayer" {
		t.Fatalf("expected identity to carry over, got %#v", refreshed.Profile)
	}

	stored, err := tokens.Load(context.Background(), testProfileID)
	if err != nil {
		t.Fatalf("load stored session: %v", err)
	}
	if stored == nil || stored.MC.AccessToken != "mc-access-2" {
		t.Fatalf("expected refreshed session to be persisted")
	}
}

func TestAccountManagerRefreshUnknownAccount(t *testing.T) {
	manager, _ := newTestManager(t, &scriptedDoer{t: t})

	if _, err := manager.Refresh(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for unknown account")
	}
}

func TestAccountManagerSessionReturnsFreshSessionUnchanged(t *testing.T) {
	doer := &scriptedDoer{t: t}
	manager, tokens := newTestManager(t, doer)

	seed := storedSession(time.Now().UTC().Add(time.Hour))
	if err := tokens.Save(context.Background(), seed.AccountKey(), seed); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	session, err := manager.Session(context.Background(), testProfileID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if session.MC.AccessToken != "mc-access" {
		t.Fatalf("expected stored token to be returned, got %q", session.MC.AccessToken)
	}
	doer.assertDrained()
}

func TestAccountManagerSessionRefreshesExpiredToken(t *testing.T) {
	doer := &scriptedDoer{t: t, calls: refreshChainCalls(t, "mc-access-3")}
	manager, tokens := newTestManager(t, doer)

	seed := storedSession(time.Now().UTC().Add(-time.Minute))
	if err := tokens.Save(context.Background(), seed.AccountKey(), seed); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	session, err := manager.Session(context.Background(), testProfileID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	doer.assertDrained()
	if session.MC.AccessToken != "mc-access-3" {
		t.Fatalf("expected auto-refreshed token, got %q", session.MC.AccessToken)
	}
}

func TestAccountManagerRemoveAndList(t *testing.T) {
	manager, tokens := newTestManager(t, &scriptedDoer{t: t})

	seed := storedSession(time.Now().UTC().Add(time.Hour))
	if err := tokens.Save(context.Background(), seed.AccountKey(), seed); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	accounts, err := manager.ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 1 || accounts[0] != testProfileID {
		t.Fatalf("unexpected accounts %v", accounts)
	}

	if err := manager.RemoveAccount(context.Background(), testProfileID); err != nil {
		t.Fatalf("remove account: %v", err)
	}
	accounts, err = manager.ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("expected empty account list, got %v", accounts)
	}
}

func TestAccountManagerRotateStorageKeyUnsupportedStore(t *testing.T) {
	manager, _ := newTestManager(t, &scriptedDoer{t: t})

	if err := manager.RotateStorageKey(context.Background()); err == nil {
		t.Fatalf("expected rotation to fail on a store without key rotation")
	}
}
