package store

import (
	"context"
	"testing"

	"github.com/LuizSSampaio/rauncher-mc/core"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	memStore := NewMemoryTokenStore()

	if session, err := memStore.Load(ctx, "missing"); err != nil || session != nil {
		t.Fatalf("expected absent session to be nil,nil, got %v, %v", session, err)
	}

	session := testSession("account-1")
	if err := memStore.Save(ctx, session.AccountKey(), session); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := memStore.Load(ctx, "account-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil || loaded.Profile.Name != "TestPlayer" {
		t.Fatalf("unexpected loaded session %+v", loaded)
	}

	accounts, err := memStore.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 1 || accounts[0] != "account-1" {
		t.Fatalf("unexpected accounts %v", accounts)
	}

	if err := memStore.Remove(ctx, "account-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if session, err := memStore.Load(ctx, "account-1"); err != nil || session != nil {
		t.Fatalf("expected removed session to be absent, got %v, %v", session, err)
	}
}

func TestMemoryStoreDoesNotAliasCallerState(t *testing.T) {
	ctx := context.Background()
	memStore := NewMemoryTokenStore()

	session := testSession("account-1")
	if err := memStore.Save(ctx, session.AccountKey(), session); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating the caller's copy must not affect the stored session.
	session.Profile.Name = "Mutated"
	*session.MS.RefreshToken = "mutated"

	loaded, err := memStore.Load(ctx, "account-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Profile.Name != "TestPlayer" {
		t.Fatalf("expected stored session to be isolated, got name %q", loaded.Profile.Name)
	}
	if *loaded.MS.RefreshToken != "ms-refresh" {
		t.Fatalf("expected stored refresh token to be isolated, got %q", *loaded.MS.RefreshToken)
	}

	// And mutating a loaded copy must not affect later loads.
	loaded.Profile.Name = "AlsoMutated"
	again, err := memStore.Load(ctx, "account-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if again.Profile.Name != "TestPlayer" {
		t.Fatalf("expected loads to return independent copies, got %q", again.Profile.Name)
	}
}

func TestMemoryStoreValidatesInput(t *testing.T) {
	ctx := context.Background()
	memStore := NewMemoryTokenStore()

	if err := memStore.Save(ctx, " ", testSession("x")); err == nil {
		t.Fatalf("expected empty account key to be rejected")
	}
	if err := memStore.Save(ctx, "account-1", nil); err == nil {
		t.Fatalf("expected nil session to be rejected")
	}
}

func testSession(profileID string) *core.Session {
	refresh := "ms-refresh"
	return &core.Session{
		MS:      core.NewMsTokens("ms-access", &refresh, 3600),
		Xbl:     core.XblToken{Token: "xbl-token", UHS: "user-hash"},
		Xsts:    core.XstsToken{Token: "xsts-token", UHS: "user-hash"},
		MC:      core.NewMcToken("mc-access", 86400),
		Profile: core.McProfile{ID: profileID, Name: "TestPlayer"},
	}
}
