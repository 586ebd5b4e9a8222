package auth

import (
	"context"
	"fmt"

	"github.com/LuizSSampaio/rauncher-mc/core"
)

// CompleteLoginWithCode runs the full credential chain from an
// authorization code to a usable session. Every stage failure aborts the
// flow with that stage's error, except the optional XUID/gamertag fetch
// whose failure only clears those fields.
func (c *Client) CompleteLoginWithCode(ctx context.Context, code string) (*core.Session, error) {
	if c == nil {
		return nil, fmt.Errorf("auth: client is nil")
	}
	c.logger.Debug("starting complete login flow")

	ms, err := c.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	xbl, err := c.XblAuthenticate(ctx, ms.AccessToken)
	if err != nil {
		return nil, err
	}
	xsts, err := c.XstsAuthorize(ctx, xbl.Token)
	if err != nil {
		return nil, err
	}
	mc, err := c.McLogin(ctx, xsts.Token, xsts.UHS)
	if err != nil {
		return nil, err
	}
	profile, err := c.FetchProfile(ctx, mc.AccessToken)
	if err != nil {
		return nil, err
	}

	session := &core.Session{
		MS:      ms,
		Xbl:     xbl,
		Xsts:    xsts,
		MC:      mc,
		Profile: profile,
	}
	if xuid, gamertag, xuidErr := c.FetchXUID(ctx, xbl.Token); xuidErr != nil {
		c.logger.Warn("failed to fetch xuid and gamertag", "error", xuidErr.Error())
	} else {
		session.XUID = &xuid
		session.Gamertag = &gamertag
	}
	return session, nil
}

// RefreshSession re-runs the token chain from the stored refresh token and
// carries the identity fields over unchanged.
func (c *Client) RefreshSession(ctx context.Context, session *core.Session) (*core.Session, error) {
	if c == nil {
		return nil, fmt.Errorf("auth: client is nil")
	}
	if session == nil {
		return nil, fmt.Errorf("auth: session is nil")
	}
	if session.MS.RefreshToken == nil || *session.MS.RefreshToken == "" {
		return nil, core.NewMissingRefreshTokenError()
	}
	c.logger.Debug("refreshing session", "account", session.AccountKey())

	ms, err := c.RefreshMsToken(ctx, *session.MS.RefreshToken)
	if err != nil {
		return nil, err
	}
	xbl, err := c.XblAuthenticate(ctx, ms.AccessToken)
	if err != nil {
		return nil, err
	}
	xsts, err := c.XstsAuthorize(ctx, xbl.Token)
	if err != nil {
		return nil, err
	}
	mc, err := c.McLogin(ctx, xsts.Token, xsts.UHS)
	if err != nil {
		return nil, err
	}

	refreshed := session.Clone()
	refreshed.MS = ms
	refreshed.Xbl = xbl
	refreshed.Xsts = xsts
	refreshed.MC = mc
	return refreshed, nil
}
