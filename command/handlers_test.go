package command

import (
	"context"
	"fmt"
	"testing"

	gocmd "github.com/goliatone/go-command"

	"github.com/LuizSSampaio/rauncher-mc/core"
)

type stubSessionService struct {
	loginFn         func(ctx context.Context, code string) (*core.Session, error)
	refreshFn       func(ctx context.Context, accountKey string) (*core.Session, error)
	removeAccountFn func(ctx context.Context, accountKey string) error
	rotateFn        func(ctx context.Context) error
}

func (s stubSessionService) Login(ctx context.Context, code string) (*core.Session, error) {
	if s.loginFn == nil {
		return nil, fmt.Errorf("unexpected Login call")
	}
	return s.loginFn(ctx, code)
}

func (s stubSessionService) Refresh(ctx context.Context, accountKey string) (*core.Session, error) {
	if s.refreshFn == nil {
		return nil, fmt.Errorf("unexpected Refresh call")
	}
	return s.refreshFn(ctx, accountKey)
}

func (s stubSessionService) RemoveAccount(ctx context.Context, accountKey string) error {
	if s.removeAccountFn == nil {
		return fmt.Errorf("unexpected RemoveAccount call")
	}
	return s.removeAccountFn(ctx, accountKey)
}

func (s stubSessionService) RotateStorageKey(ctx context.Context) error {
	if s.rotateFn == nil {
		return fmt.Errorf("unexpected RotateStorageKey call")
	}
	return s.rotateFn(ctx)
}

func TestLoginCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := &core.Session{Profile: core.McProfile{ID: "11111111222233334444555555555555", Name: "Steve"}}
	called := false

	svc := stubSessionService{
		loginFn: func(_ context.Context, code string) (*core.Session, error) {
			called = true
			if code != "M.C507_BAY.2.U.abc" {
				t.Fatalf("unexpected code %q", code)
			}
			return expected, nil
		},
	}

	cmd := NewLoginCommand(svc)
	collector := gocmd.NewResult[*core.Session]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, LoginMessage{Code: "M.C507_BAY.2.U.abc"}); err != nil {
		t.Fatalf("execute login: %v", err)
	}
	if !called {
		t.Fatalf("expected login service invocation")
	}
	stored, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if stored.Profile.ID != expected.Profile.ID {
		t.Fatalf("unexpected result: %#v", stored)
	}
}

func TestLoginCommand_ValidationRejectsEmptyCode(t *testing.T) {
	svc := stubSessionService{
		loginFn: func(context.Context, string) (*core.Session, error) {
			t.Fatalf("service must not be called on invalid message")
			return nil, nil
		},
	}

	err := NewLoginCommand(svc).Execute(context.Background(), LoginMessage{Code: "   "})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !core.HasTextCode(err, errorCodeBadInput) {
		t.Fatalf("expected %s text code, got %v", errorCodeBadInput, err)
	}
}

func TestLoginCommand_NilServiceFails(t *testing.T) {
	err := NewLoginCommand(nil).Execute(context.Background(), LoginMessage{Code: "code"})
	if err == nil {
		t.Fatalf("expected dependency error")
	}
	if !core.HasTextCode(err, errorCodeInternal) {
		t.Fatalf("expected %s text code, got %v", errorCodeInternal, err)
	}
}

func TestLoginCommand_ServiceErrorPassesThrough(t *testing.T) {
	svcErr := core.NewOAuthInvalidGrantError()
	svc := stubSessionService{
		loginFn: func(context.Context, string) (*core.Session, error) {
			return nil, svcErr
		},
	}

	err := NewLoginCommand(svc).Execute(context.Background(), LoginMessage{Code: "stale"})
	if !core.IsOAuthInvalidGrant(err) {
		t.Fatalf("expected invalid-grant error to pass through, got %v", err)
	}
}

func TestRefreshCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := &core.Session{Profile: core.McProfile{ID: "aaaaaaaabbbbccccddddeeeeeeeeeeee", Name: "Alex"}}
	called := false

	svc := stubSessionService{
		refreshFn: func(_ context.Context, accountKey string) (*core.Session, error) {
			called = true
			if accountKey != expected.Profile.ID {
				t.Fatalf("unexpected account key %q", accountKey)
			}
			return expected, nil
		},
	}

	cmd := NewRefreshCommand(svc)
	collector := gocmd.NewResult[*core.Session]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, RefreshMessage{AccountKey: expected.Profile.ID}); err != nil {
		t.Fatalf("execute refresh: %v", err)
	}
	if !called {
		t.Fatalf("expected refresh service invocation")
	}
	stored, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if stored.Profile.Name != "Alex" {
		t.Fatalf("unexpected result: %#v", stored)
	}
}

func TestRefreshCommand_ValidationRejectsEmptyAccountKey(t *testing.T) {
	err := NewRefreshCommand(stubSessionService{}).Execute(context.Background(), RefreshMessage{})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !core.HasTextCode(err, errorCodeBadInput) {
		t.Fatalf("expected %s text code, got %v", errorCodeBadInput, err)
	}
}

func TestRemoveAccountCommand_Delegates(t *testing.T) {
	called := false
	svc := stubSessionService{
		removeAccountFn: func(_ context.Context, accountKey string) error {
			called = true
			if accountKey != "acct_1" {
				t.Fatalf("unexpected account key %q", accountKey)
			}
			return nil
		},
	}

	if err := NewRemoveAccountCommand(svc).Execute(context.Background(), RemoveAccountMessage{AccountKey: "acct_1"}); err != nil {
		t.Fatalf("execute remove account: %v", err)
	}
	if !called {
		t.Fatalf("expected remove-account invocation")
	}
}

func TestRotateKeyCommand_Delegates(t *testing.T) {
	called := false
	svc := stubSessionService{
		rotateFn: func(context.Context) error {
			called = true
			return nil
		},
	}

	if err := NewRotateKeyCommand(svc).Execute(context.Background(), RotateKeyMessage{}); err != nil {
		t.Fatalf("execute rotate key: %v", err)
	}
	if !called {
		t.Fatalf("expected rotate invocation")
	}
}

func TestMessages_TypesAndValidation(t *testing.T) {
	cases := []struct {
		msg interface {
			Type() string
			Validate() error
		}
		wantType string
		wantErr  bool
	}{
		{LoginMessage{Code: "c"}, TypeLogin, false},
		{LoginMessage{}, TypeLogin, true},
		{RefreshMessage{AccountKey: "a"}, TypeRefresh, false},
		{RefreshMessage{}, TypeRefresh, true},
		{RemoveAccountMessage{AccountKey: "a"}, TypeRemoveAccount, false},
		{RemoveAccountMessage{}, TypeRemoveAccount, true},
		{RotateKeyMessage{}, TypeRotateKey, false},
	}

	for _, tc := range cases {
		if got := tc.msg.Type(); got != tc.wantType {
			t.Fatalf("unexpected type %q, want %q", got, tc.wantType)
		}
		err := tc.msg.Validate()
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected validation error", tc.wantType)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected validation error %v", tc.wantType, err)
		}
	}
}
