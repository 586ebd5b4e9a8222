package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/LuizSSampaio/rauncher-mc/core"
)

type mcLoginRequest struct {
	IdentityToken string `json:"identityToken"`
}

type mcLoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// McLogin trades the XSTS token for a Minecraft Services access token.
func (c *Client) McLogin(ctx context.Context, xstsToken, uhs string) (core.McToken, error) {
	if c == nil {
		return core.McToken{}, fmt.Errorf("auth: client is nil")
	}

	request := mcLoginRequest{
		IdentityToken: fmt.Sprintf("XBL3.0 x=%s;%s", uhs, xstsToken),
	}

	c.logger.Debug("logging in to minecraft services")
	status, body, err := c.postJSON(ctx, mcLoginURL, request)
	if err != nil {
		return core.McToken{}, err
	}
	if !isSuccess(status) {
		return core.McToken{}, core.NewHTTPError(status, string(body))
	}

	var payload mcLoginResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return core.McToken{}, core.NewInvalidResponseError("decode minecraft login response: " + err.Error())
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return core.McToken{}, core.NewInvalidResponseError("minecraft login response missing access token")
	}
	return core.NewMcToken(payload.AccessToken, payload.ExpiresIn), nil
}

// FetchProfile resolves the player profile for the Minecraft access token.
// A 404 means the account has no profile or does not own the game and gets
// a dedicated error so callers can show actionable guidance.
func (c *Client) FetchProfile(ctx context.Context, mcAccessToken string) (core.McProfile, error) {
	if c == nil {
		return core.McProfile{}, fmt.Errorf("auth: client is nil")
	}

	req, cancel, err := c.getRequest(ctx, mcProfileURL)
	if err != nil {
		return core.McProfile{}, err
	}
	defer cancel()
	req.Header.Set("Authorization", "Bearer "+mcAccessToken)

	c.logger.Debug("fetching minecraft profile")
	status, body, err := c.send(req)
	if err != nil {
		return core.McProfile{}, err
	}
	if status == http.StatusNotFound {
		return core.McProfile{}, core.NewProfileNotFoundError()
	}
	if !isSuccess(status) {
		return core.McProfile{}, core.NewHTTPError(status, string(body))
	}

	var profile core.McProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return core.McProfile{}, core.NewInvalidResponseError("decode profile response: " + err.Error())
	}
	if strings.TrimSpace(profile.ID) == "" {
		return core.McProfile{}, core.NewInvalidResponseError("profile response missing id")
	}
	return profile, nil
}
