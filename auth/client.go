package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/LuizSSampaio/rauncher-mc/core"
)

const maxResponseBodyBytes = 1 << 20 // 1 MiB

// Client drives the Microsoft -> Xbox Live -> XSTS -> Minecraft credential
// chain. It is stateless between calls: every stage takes the prior stage's
// token and returns the next one.
type Client struct {
	cfg        core.Config
	httpClient core.HTTPDoer
	logger     core.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default transport. The injected client owns
// its own timeout behavior.
func WithHTTPClient(httpClient core.HTTPDoer) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger core.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(cfg core.Config, options ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := &Client{cfg: cfg}
	for _, option := range options {
		if option == nil {
			continue
		}
		option(client)
	}
	_, client.logger = glog.Resolve("auth", nil, client.logger)
	if client.httpClient == nil {
		client.httpClient = &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: cfg.ConnectTimeout,
				}).DialContext,
				TLSHandshakeTimeout: cfg.ConnectTimeout,
			},
		}
	}
	return client, nil
}

func (c *Client) Config() core.Config {
	if c == nil {
		return core.Config{}
	}
	return c.cfg
}

// BuildAuthorizeURL constructs the provider authorization URL for the
// configured flavor. An empty state omits the anti-CSRF parameter.
func (c *Client) BuildAuthorizeURL(state string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("auth: client is nil")
	}
	values := url.Values{}
	values.Set("client_id", c.cfg.ClientID)
	values.Set("response_type", "code")
	values.Set("redirect_uri", c.cfg.RedirectURI)
	values.Set("scope", c.scope())
	values.Set("prompt", "select_account")
	if c.cfg.Flavor == core.FlavorOfficialDesktop {
		for _, param := range officialExtraParams {
			values.Set(param[0], param[1])
		}
	}
	if state = strings.TrimSpace(state); state != "" {
		values.Set("state", state)
	}
	return msAuthorizeURL + "?" + values.Encode(), nil
}

// ParseRedirect extracts the authorization code from the callback URL. An
// empty expectedState skips the state check.
func (c *Client) ParseRedirect(redirectURL, expectedState string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("auth: client is nil")
	}
	parsed, err := url.Parse(strings.TrimSpace(redirectURL))
	if err != nil {
		return "", core.NewInvalidRedirectError()
	}
	query := parsed.Query()

	if errCode := query.Get("error"); errCode != "" {
		if errCode == "access_denied" {
			return "", core.NewUserCancelledError()
		}
		return "", core.NewInvalidRedirectError()
	}
	if expectedState != "" && query.Get("state") != expectedState {
		return "", core.NewStateMismatchError()
	}
	code := strings.TrimSpace(query.Get("code"))
	if code == "" {
		return "", core.NewInvalidRedirectError()
	}
	return code, nil
}

func (c *Client) scope() string {
	if c.cfg.Flavor == core.FlavorStandardCode {
		return standardScope
	}
	return officialScope
}

// send performs one HTTP exchange and returns status plus a size-capped
// body. Transport failures map to the network error; everything else is
// interpreted by the caller.
func (c *Client) send(req *http.Request) (int, []byte, error) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	response, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, core.NewNetworkError(err)
	}
	defer response.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(response.Body, maxResponseBodyBytes+1))
	if readErr != nil {
		return 0, nil, core.NewNetworkError(readErr)
	}
	if int64(len(body)) > maxResponseBodyBytes {
		return 0, nil, core.NewInvalidResponseError(
			fmt.Sprintf("response exceeds %d bytes", maxResponseBodyBytes),
		)
	}
	return response.StatusCode, body, nil
}

func (c *Client) getRequest(ctx context.Context, endpoint string) (*http.Request, context.CancelFunc, error) {
	requestCtx, cancel := c.requestContext(ctx)
	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("auth: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, cancel, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) (int, []byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("auth: encode request: %w", err)
	}
	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, fmt.Errorf("auth: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.cfg.RequestTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.RequestTimeout)
	}
	return ctx, func() {}
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}
