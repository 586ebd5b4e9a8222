package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/LuizSSampaio/rauncher-mc/core"
)

type msTokenResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken *string `json:"refresh_token"`
	ExpiresIn    int64   `json:"expires_in"`
}

// ExchangeCode trades an authorization code for the Microsoft token pair.
func (c *Client) ExchangeCode(ctx context.Context, code string) (core.MsTokens, error) {
	if c == nil {
		return core.MsTokens{}, fmt.Errorf("auth: client is nil")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return core.MsTokens{}, core.NewInvalidRedirectError()
	}

	query := url.Values{}
	query.Set("client_id", c.cfg.ClientID)
	query.Set("code", code)
	query.Set("redirect_uri", c.cfg.RedirectURI)
	query.Set("grant_type", "authorization_code")
	query.Set("scope", c.scope())

	c.logger.Debug("exchanging authorization code for tokens")
	return c.fetchMsTokens(ctx, query)
}

// RefreshMsToken runs the refresh-token grant.
func (c *Client) RefreshMsToken(ctx context.Context, refreshToken string) (core.MsTokens, error) {
	if c == nil {
		return core.MsTokens{}, fmt.Errorf("auth: client is nil")
	}
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return core.MsTokens{}, core.NewMissingRefreshTokenError()
	}

	query := url.Values{}
	query.Set("client_id", c.cfg.ClientID)
	query.Set("refresh_token", refreshToken)
	query.Set("grant_type", "refresh_token")
	query.Set("scope", c.scope())

	c.logger.Debug("refreshing microsoft access token")
	return c.fetchMsTokens(ctx, query)
}

// fetchMsTokens calls the token endpoint. The endpoint takes its parameters
// as a GET query string, which the live consumer flow requires.
func (c *Client) fetchMsTokens(ctx context.Context, query url.Values) (core.MsTokens, error) {
	req, cancel, err := c.getRequest(ctx, msTokenURL+"?"+query.Encode())
	if err != nil {
		return core.MsTokens{}, err
	}
	defer cancel()

	status, body, err := c.send(req)
	if err != nil {
		return core.MsTokens{}, err
	}
	if !isSuccess(status) {
		if strings.Contains(string(body), "invalid_grant") {
			return core.MsTokens{}, core.NewOAuthInvalidGrantError()
		}
		return core.MsTokens{}, core.NewHTTPError(status, string(body))
	}

	var payload msTokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return core.MsTokens{}, core.NewInvalidResponseError("decode token response: " + err.Error())
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return core.MsTokens{}, core.NewInvalidResponseError("token response missing access token")
	}
	return core.NewMsTokens(payload.AccessToken, payload.RefreshToken, payload.ExpiresIn), nil
}
