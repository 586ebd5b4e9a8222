package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// AuthorizeFlavor selects one of the two fixed OAuth parameter sets. Each
// variant carries its own scope, client-id source, and extra authorize query
// parameters; there is no third option.
type AuthorizeFlavor string

const (
	// FlavorOfficialDesktop uses the official launcher client id and the
	// vendor query parameters it sends. No app approval required.
	FlavorOfficialDesktop AuthorizeFlavor = "official_desktop"

	// FlavorStandardCode is the standard OAuth2 code grant for an approved
	// app with its own client id.
	FlavorStandardCode AuthorizeFlavor = "standard_code"
)

func (f AuthorizeFlavor) Validate() error {
	switch f {
	case FlavorOfficialDesktop, FlavorStandardCode:
		return nil
	default:
		return fmt.Errorf("core: unknown authorize flavor %q", string(f))
	}
}

// Config holds everything the auth client needs. DefaultConfig is the
// official desktop flow; CustomConfig builds the standard-code variant.
type Config struct {
	ClientID       string          `koanf:"client_id" mapstructure:"client_id"`
	RedirectURI    string          `koanf:"redirect_uri" mapstructure:"redirect_uri"`
	Flavor         AuthorizeFlavor `koanf:"flavor" mapstructure:"flavor"`
	UserAgent      string          `koanf:"user_agent" mapstructure:"user_agent"`
	ConnectTimeout time.Duration   `koanf:"connect_timeout" mapstructure:"connect_timeout"`
	RequestTimeout time.Duration   `koanf:"request_timeout" mapstructure:"request_timeout"`
}

// Official launcher OAuth constants.
const (
	OfficialClientID    = "00000000402B5328"
	OfficialRedirectURI = "https://login.live.com/oauth20_desktop.srf"
)

func DefaultConfig() Config {
	return Config{
		ClientID:       OfficialClientID,
		RedirectURI:    OfficialRedirectURI,
		Flavor:         FlavorOfficialDesktop,
		UserAgent:      "rauncher-mc",
		ConnectTimeout: 15 * time.Second,
		RequestTimeout: 30 * time.Second,
	}
}

// CustomConfig builds a standard code-grant config for an approved app.
func CustomConfig(clientID, redirectURI string) Config {
	cfg := DefaultConfig()
	cfg.ClientID = strings.TrimSpace(clientID)
	cfg.RedirectURI = strings.TrimSpace(redirectURI)
	cfg.Flavor = FlavorStandardCode
	return cfg
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("core: client_id is required")
	}
	if strings.TrimSpace(c.RedirectURI) == "" {
		return fmt.Errorf("core: redirect_uri is required")
	}
	if _, err := url.Parse(c.RedirectURI); err != nil {
		return fmt.Errorf("core: redirect_uri is not a valid url: %w", err)
	}
	if err := c.Flavor.Validate(); err != nil {
		return err
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("core: connect_timeout must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("core: request_timeout must be positive")
	}
	return nil
}
