package command

import (
	"fmt"
	"strings"
)

const (
	TypeLogin         = "rauncher.command.login"
	TypeRefresh       = "rauncher.command.refresh"
	TypeRemoveAccount = "rauncher.command.account.remove"
	TypeRotateKey     = "rauncher.command.storage.rotate_key"
)

// LoginMessage runs the full login flow from an authorization code and
// persists the resulting session.
type LoginMessage struct {
	Code string
}

func (LoginMessage) Type() string { return TypeLogin }

func (m LoginMessage) Validate() error {
	if strings.TrimSpace(m.Code) == "" {
		return fmt.Errorf("command: authorization code is required")
	}
	return nil
}

// RefreshMessage refreshes the stored session for one account.
type RefreshMessage struct {
	AccountKey string
}

func (RefreshMessage) Type() string { return TypeRefresh }

func (m RefreshMessage) Validate() error {
	if strings.TrimSpace(m.AccountKey) == "" {
		return fmt.Errorf("command: account key is required")
	}
	return nil
}

type RemoveAccountMessage struct {
	AccountKey string
}

func (RemoveAccountMessage) Type() string { return TypeRemoveAccount }

func (m RemoveAccountMessage) Validate() error {
	if strings.TrimSpace(m.AccountKey) == "" {
		return fmt.Errorf("command: account key is required")
	}
	return nil
}

type RotateKeyMessage struct{}

func (RotateKeyMessage) Type() string { return TypeRotateKey }

func (RotateKeyMessage) Validate() error { return nil }
