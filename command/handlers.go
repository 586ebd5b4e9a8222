package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/LuizSSampaio/rauncher-mc/core"
)

// SessionService is the account-management surface the commands drive.
type SessionService interface {
	Login(ctx context.Context, code string) (*core.Session, error)
	Refresh(ctx context.Context, accountKey string) (*core.Session, error)
	RemoveAccount(ctx context.Context, accountKey string) error
	RotateStorageKey(ctx context.Context) error
}

type LoginCommand struct {
	service SessionService
}

func NewLoginCommand(service SessionService) *LoginCommand {
	return &LoginCommand{service: service}
}

func (c *LoginCommand) Execute(ctx context.Context, msg LoginMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: login service is required")
	}
	if err := msg.Validate(); err != nil {
		return commandWrapValidation(err, "command: invalid login message")
	}
	session, err := c.service.Login(ctx, msg.Code)
	if err != nil {
		return err
	}
	storeResult(ctx, session)
	return nil
}

type RefreshCommand struct {
	service SessionService
}

func NewRefreshCommand(service SessionService) *RefreshCommand {
	return &RefreshCommand{service: service}
}

func (c *RefreshCommand) Execute(ctx context.Context, msg RefreshMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: refresh service is required")
	}
	if err := msg.Validate(); err != nil {
		return commandWrapValidation(err, "command: invalid refresh message")
	}
	session, err := c.service.Refresh(ctx, msg.AccountKey)
	if err != nil {
		return err
	}
	storeResult(ctx, session)
	return nil
}

type RemoveAccountCommand struct {
	service SessionService
}

func NewRemoveAccountCommand(service SessionService) *RemoveAccountCommand {
	return &RemoveAccountCommand{service: service}
}

func (c *RemoveAccountCommand) Execute(ctx context.Context, msg RemoveAccountMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: account service is required")
	}
	if err := msg.Validate(); err != nil {
		return commandWrapValidation(err, "command: invalid remove-account message")
	}
	return c.service.RemoveAccount(ctx, msg.AccountKey)
}

type RotateKeyCommand struct {
	service SessionService
}

func NewRotateKeyCommand(service SessionService) *RotateKeyCommand {
	return &RotateKeyCommand{service: service}
}

func (c *RotateKeyCommand) Execute(ctx context.Context, _ RotateKeyMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: storage service is required")
	}
	return c.service.RotateStorageKey(ctx)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
