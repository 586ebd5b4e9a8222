package query

import (
	"fmt"
	"strings"
)

const (
	TypeGetSession   = "rauncher.query.session.get"
	TypeGetProfile   = "rauncher.query.profile.get"
	TypeListAccounts = "rauncher.query.account.list"
)

// GetSessionMessage loads the stored session for one account, refreshing it
// first when the Minecraft token is near expiry.
type GetSessionMessage struct {
	AccountKey string
}

func (GetSessionMessage) Type() string { return TypeGetSession }

func (m GetSessionMessage) Validate() error {
	if strings.TrimSpace(m.AccountKey) == "" {
		return fmt.Errorf("query: account key is required")
	}
	return nil
}

// GetProfileMessage resolves just the player identity for one account.
type GetProfileMessage struct {
	AccountKey string
}

func (GetProfileMessage) Type() string { return TypeGetProfile }

func (m GetProfileMessage) Validate() error {
	if strings.TrimSpace(m.AccountKey) == "" {
		return fmt.Errorf("query: account key is required")
	}
	return nil
}

type ListAccountsMessage struct{}

func (ListAccountsMessage) Type() string { return TypeListAccounts }

func (ListAccountsMessage) Validate() error { return nil }
