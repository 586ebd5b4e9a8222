package auth

// Provider endpoints. These are fixed upstream services, never configurable.
const (
	msAuthorizeURL = "https://login.live.com/oauth20_authorize.srf"
	msTokenURL     = "https://login.live.com/oauth20_token.srf"
	xblAuthURL     = "https://user.auth.xboxlive.com/user/authenticate"
	xstsAuthURL    = "https://xsts.auth.xboxlive.com/xsts/authorize"
	mcLoginURL     = "https://api.minecraftservices.com/authentication/login_with_xbox"
	mcProfileURL   = "https://api.minecraftservices.com/minecraft/profile"
)

// Relying parties for the XSTS authorize call.
const (
	relyingPartyMinecraft = "rp://api.minecraftservices.com/"
	relyingPartyXboxLive  = "http://xboxlive.com"
	relyingPartyXblAuth   = "http://auth.xboxlive.com"
)

// Scopes per authorize flavor.
const (
	officialScope = "service::user.auth.xboxlive.com::MBI_SSL"
	standardScope = "XboxLive.signin offline_access"
)

const sandboxRetail = "RETAIL"

// officialExtraParams are the vendor query parameters the official desktop
// flow sends on the authorize URL. Order matters to some provider frontends,
// so they are kept as a pair list rather than a map.
var officialExtraParams = [][2]string{
	{"lw", "1"},
	{"fl", "dob,easi2"},
	{"xsup", "1"},
	{"nopa", "2"},
}
