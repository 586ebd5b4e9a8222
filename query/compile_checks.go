package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/LuizSSampaio/rauncher-mc/core"
)

var (
	_ gocmd.Querier[GetSessionMessage, *core.Session]  = (*GetSessionQuery)(nil)
	_ gocmd.Querier[GetProfileMessage, core.McProfile] = (*GetProfileQuery)(nil)
	_ gocmd.Querier[ListAccountsMessage, []string]     = (*ListAccountsQuery)(nil)
)
