package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/LuizSSampaio/rauncher-mc/core"
)

// Xbox service wire shapes. Field casing follows the service contract.
type xblAuthRequest struct {
	Properties   xblAuthProperties `json:"Properties"`
	RelyingParty string            `json:"RelyingParty"`
	TokenType    string            `json:"TokenType"`
}

type xblAuthProperties struct {
	AuthMethod string `json:"AuthMethod"`
	SiteName   string `json:"SiteName"`
	RpsTicket  string `json:"RpsTicket"`
}

type xstsAuthRequest struct {
	Properties   xstsAuthProperties `json:"Properties"`
	RelyingParty string             `json:"RelyingParty"`
	TokenType    string             `json:"TokenType"`
}

type xstsAuthProperties struct {
	SandboxID             string   `json:"SandboxId"`
	UserTokens            []string `json:"UserTokens"`
	OptionalDisplayClaims []string `json:"OptionalDisplayClaims,omitempty"`
}

type xboxTokenResponse struct {
	Token         string        `json:"Token"`
	NotAfter      *string       `json:"NotAfter"`
	DisplayClaims displayClaims `json:"DisplayClaims"`
}

type displayClaims struct {
	XUI []xuiClaim `json:"xui"`
}

type xuiClaim struct {
	UHS string  `json:"uhs"`
	XID *string `json:"xid"`
	Gtg *string `json:"gtg"`
}

type xstsErrorResponse struct {
	XErr    uint64 `json:"XErr"`
	Message string `json:"Message"`
}

// XblAuthenticate trades the Microsoft access token for an Xbox Live user
// token. A 400 triggers exactly one retry with the ticket prefixed by "d=";
// this is a fixed provider quirk, not a transient-failure retry, and a
// second failure gets its own error kind.
func (c *Client) XblAuthenticate(ctx context.Context, msAccessToken string) (core.XblToken, error) {
	if c == nil {
		return core.XblToken{}, fmt.Errorf("auth: client is nil")
	}

	c.logger.Debug("authenticating with xbox live")
	status, body, err := c.postJSON(ctx, xblAuthURL, xblRequestFor(msAccessToken))
	if err != nil {
		return core.XblToken{}, err
	}

	if status == http.StatusBadRequest {
		c.logger.Warn("xbox live authentication returned 400, retrying with d= prefix")
		status, body, err = c.postJSON(ctx, xblAuthURL, xblRequestFor("d="+msAccessToken))
		if err != nil {
			return core.XblToken{}, err
		}
		if !isSuccess(status) {
			return core.XblToken{}, core.NewXblBadRequestError()
		}
	} else if !isSuccess(status) {
		return core.XblToken{}, core.NewHTTPError(status, string(body))
	}

	payload, err := parseXboxToken(body)
	if err != nil {
		return core.XblToken{}, err
	}
	return core.XblToken{
		Token:    payload.Token,
		UHS:      payload.DisplayClaims.XUI[0].UHS,
		NotAfter: payload.NotAfter,
	}, nil
}

// XstsAuthorize trades the Xbox Live token for an XSTS token scoped to the
// Minecraft relying party. A 401 carries a numeric XErr code which maps to
// a fixed denial taxonomy.
func (c *Client) XstsAuthorize(ctx context.Context, xblToken string) (core.XstsToken, error) {
	if c == nil {
		return core.XstsToken{}, fmt.Errorf("auth: client is nil")
	}

	request := xstsAuthRequest{
		Properties: xstsAuthProperties{
			SandboxID:  sandboxRetail,
			UserTokens: []string{xblToken},
		},
		RelyingParty: relyingPartyMinecraft,
		TokenType:    "JWT",
	}

	c.logger.Debug("authorizing with xsts")
	status, body, err := c.postJSON(ctx, xstsAuthURL, request)
	if err != nil {
		return core.XstsToken{}, err
	}
	if status == http.StatusUnauthorized {
		var denial xstsErrorResponse
		if err := json.Unmarshal(body, &denial); err != nil {
			return core.XstsToken{}, core.NewInvalidResponseError("decode xsts denial: " + err.Error())
		}
		return core.XstsToken{}, core.NewXstsDeniedError(denial.XErr)
	}
	if !isSuccess(status) {
		return core.XstsToken{}, core.NewHTTPError(status, string(body))
	}

	payload, err := parseXboxToken(body)
	if err != nil {
		return core.XstsToken{}, err
	}
	return core.XstsToken{
		Token:    payload.Token,
		UHS:      payload.DisplayClaims.XUI[0].UHS,
		NotAfter: payload.NotAfter,
	}, nil
}

// FetchXUID resolves the Xbox user id and gamertag through a second XSTS
// authorization against the Xbox Live relying party. Callers treat this as
// best-effort; the full login flow does not abort on its failure.
func (c *Client) FetchXUID(ctx context.Context, xblToken string) (xuid, gamertag string, err error) {
	if c == nil {
		return "", "", fmt.Errorf("auth: client is nil")
	}

	request := xstsAuthRequest{
		Properties: xstsAuthProperties{
			SandboxID:             sandboxRetail,
			UserTokens:            []string{xblToken},
			OptionalDisplayClaims: []string{"mgt", "mgs", "umg"},
		},
		RelyingParty: relyingPartyXboxLive,
		TokenType:    "JWT",
	}

	c.logger.Debug("fetching xuid and gamertag")
	status, body, err := c.postJSON(ctx, xstsAuthURL, request)
	if err != nil {
		return "", "", err
	}
	if !isSuccess(status) {
		return "", "", core.NewHTTPError(status, string(body))
	}

	payload, err := parseXboxToken(body)
	if err != nil {
		return "", "", err
	}
	claim := payload.DisplayClaims.XUI[0]
	if claim.XID == nil || *claim.XID == "" {
		return "", "", core.NewInvalidResponseError("missing xuid claim")
	}
	if claim.Gtg == nil || *claim.Gtg == "" {
		return "", "", core.NewInvalidResponseError("missing gamertag claim")
	}
	return *claim.XID, *claim.Gtg, nil
}

func xblRequestFor(rpsTicket string) xblAuthRequest {
	return xblAuthRequest{
		Properties: xblAuthProperties{
			AuthMethod: "RPS",
			SiteName:   "user.auth.xboxlive.com",
			RpsTicket:  rpsTicket,
		},
		RelyingParty: relyingPartyXblAuth,
		TokenType:    "JWT",
	}
}

func parseXboxToken(body []byte) (xboxTokenResponse, error) {
	var payload xboxTokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return xboxTokenResponse{}, core.NewInvalidResponseError("decode xbox response: " + err.Error())
	}
	if len(payload.DisplayClaims.XUI) == 0 {
		return xboxTokenResponse{}, core.NewInvalidResponseError("missing xui claims")
	}
	return payload, nil
}
