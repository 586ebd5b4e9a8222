package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[LoginMessage]         = (*LoginCommand)(nil)
	_ gocmd.Commander[RefreshMessage]       = (*RefreshCommand)(nil)
	_ gocmd.Commander[RemoveAccountMessage] = (*RemoveAccountCommand)(nil)
	_ gocmd.Commander[RotateKeyMessage]     = (*RotateKeyCommand)(nil)
)
