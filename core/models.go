package core

import (
	"time"
)

// TokenExpirySkew is subtracted from the Minecraft token lifetime so a
// session reports expiry five minutes early and refresh happens before the
// service starts rejecting the token.
const TokenExpirySkew = 5 * time.Minute

// MsTokens holds the Microsoft OAuth access/refresh pair from either the
// authorization-code or the refresh-token grant.
type MsTokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken *string   `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// NewMsTokens captures the token endpoint response expiry relative to the
// current time.
func NewMsTokens(accessToken string, refreshToken *string, expiresIn int64) MsTokens {
	return MsTokens{
		AccessToken:  accessToken,
		RefreshToken: cloneStringPointer(refreshToken),
		ExpiresAt:    time.Now().UTC().Add(time.Duration(expiresIn) * time.Second),
	}
}

func (t MsTokens) IsExpired() bool {
	return t.IsExpiredAt(time.Now().UTC())
}

func (t MsTokens) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// XblToken is the Xbox Live user token plus the user hash needed by every
// downstream stage. It only exists inside a Session.
type XblToken struct {
	Token    string  `json:"token"`
	UHS      string  `json:"uhs"`
	NotAfter *string `json:"not_after"`
}

// XstsToken is the XSTS authorization token scoped to a relying party.
type XstsToken struct {
	Token    string  `json:"token"`
	UHS      string  `json:"uhs"`
	NotAfter *string `json:"not_after"`
}

// McToken is the Minecraft Services access token.
type McToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func NewMcToken(accessToken string, expiresIn int64) McToken {
	return McToken{
		AccessToken: accessToken,
		ExpiresAt:   time.Now().UTC().Add(time.Duration(expiresIn) * time.Second),
	}
}

// IsExpired reports expiry TokenExpirySkew early so callers refresh before
// the literal deadline.
func (t McToken) IsExpired() bool {
	return t.IsExpiredAt(time.Now().UTC())
}

func (t McToken) IsExpiredAt(now time.Time) bool {
	return !now.Add(TokenExpirySkew).Before(t.ExpiresAt)
}

// McProfile is the immutable identity anchor for a session. ID is the
// player UUID without dashes and doubles as the storage account key.
type McProfile struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Skins []McSkin `json:"skins"`
	Capes []McCape `json:"capes"`
}

type McSkin struct {
	ID      string  `json:"id"`
	State   string  `json:"state"`
	URL     string  `json:"url"`
	Variant string  `json:"variant"`
	Alias   *string `json:"alias,omitempty"`
}

type McCape struct {
	ID    string  `json:"id"`
	State string  `json:"state"`
	URL   string  `json:"url"`
	Alias *string `json:"alias,omitempty"`
}

// Session is the complete credential bundle produced by a full login. It is
// only ever constructed and persisted as a whole; refresh replaces the four
// token stages and carries the identity fields over unchanged.
type Session struct {
	MS       MsTokens  `json:"ms"`
	Xbl      XblToken  `json:"xbl"`
	Xsts     XstsToken `json:"xsts"`
	MC       McToken   `json:"mc"`
	Profile  McProfile `json:"profile"`
	XUID     *string   `json:"xuid,omitempty"`
	Gamertag *string   `json:"gamertag,omitempty"`
}

// AccountKey returns the stable storage key for this session.
func (s *Session) AccountKey() string {
	if s == nil {
		return ""
	}
	return s.Profile.ID
}

// NeedsRefresh reports whether the Minecraft token is inside the expiry
// skew window.
func (s *Session) NeedsRefresh() bool {
	if s == nil {
		return false
	}
	return s.MC.IsExpired()
}

// Clone returns a deep copy so store caches never alias caller-held state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cloned := *s
	cloned.MS.RefreshToken = cloneStringPointer(s.MS.RefreshToken)
	cloned.Xbl.NotAfter = cloneStringPointer(s.Xbl.NotAfter)
	cloned.Xsts.NotAfter = cloneStringPointer(s.Xsts.NotAfter)
	cloned.XUID = cloneStringPointer(s.XUID)
	cloned.Gamertag = cloneStringPointer(s.Gamertag)
	cloned.Profile.Skins = cloneSkins(s.Profile.Skins)
	cloned.Profile.Capes = cloneCapes(s.Profile.Capes)
	return &cloned
}

func cloneStringPointer(input *string) *string {
	if input == nil {
		return nil
	}
	value := *input
	return &value
}

func cloneSkins(input []McSkin) []McSkin {
	if input == nil {
		return nil
	}
	output := make([]McSkin, len(input))
	for i, skin := range input {
		skin.Alias = cloneStringPointer(skin.Alias)
		output[i] = skin
	}
	return output
}

func cloneCapes(input []McCape) []McCape {
	if input == nil {
		return nil
	}
	output := make([]McCape, len(input))
	for i, cape := range input {
		cape.Alias = cloneStringPointer(cape.Alias)
		output[i] = cape
	}
	return output
}
