package core

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by every error the auth core produces. Callers branch
// on these rather than on message text.
const (
	ErrorUserCancelled       = "AUTH_USER_CANCELLED"
	ErrorNetwork             = "AUTH_NETWORK"
	ErrorHTTP                = "AUTH_HTTP"
	ErrorOAuthInvalidGrant   = "AUTH_OAUTH_INVALID_GRANT"
	ErrorXblBadRequest       = "AUTH_XBL_BAD_REQUEST"
	ErrorXstsDenied          = "AUTH_XSTS_DENIED"
	ErrorProfileNotFound     = "AUTH_PROFILE_NOT_FOUND"
	ErrorInvalidRedirect     = "AUTH_INVALID_REDIRECT"
	ErrorStateMismatch       = "AUTH_STATE_MISMATCH"
	ErrorMissingRefreshToken = "AUTH_MISSING_REFRESH_TOKEN"
	ErrorInvalidResponse     = "AUTH_INVALID_RESPONSE"
	ErrorStorageIO           = "STORE_IO"
	ErrorCrypto              = "STORE_CRYPTO"
	ErrorCorruptedStore      = "STORE_CORRUPTED"
	ErrorLockTimeout         = "STORE_LOCK_TIMEOUT"
	ErrorDecode              = "STORE_DECODE"
)

// XSTS denial reasons, mapped from the externally defined XErr codes.
const (
	XstsReasonNoXboxAccount     = "no_xbox_account"
	XstsReasonRegionUnsupported = "region_unsupported"
	XstsReasonAdultVerification = "adult_verification_required"
	XstsReasonChildNeedsFamily  = "child_needs_family"
	XstsReasonUnknown           = "unknown"
)

// maxBodySnippet bounds how much of a failed response body travels inside
// an error for diagnostics.
const maxBodySnippet = 200

func NewUserCancelledError() error {
	return goerrors.New("auth: user cancelled the authentication flow", goerrors.CategoryAuth).
		WithTextCode(ErrorUserCancelled)
}

func NewNetworkError(source error) error {
	return goerrors.Wrap(source, goerrors.CategoryExternal, "auth: network request failed").
		WithTextCode(ErrorNetwork)
}

// NewHTTPError carries the status code and a truncated body snippet for
// provider failures that have no more specific mapping.
func NewHTTPError(status int, body string) error {
	return goerrors.New(
		fmt.Sprintf("auth: http error %d: %s", status, TruncateBody(body)),
		goerrors.CategoryExternal,
	).
		WithCode(status).
		WithTextCode(ErrorHTTP).
		WithMetadata(map[string]any{
			"status":       status,
			"body_snippet": TruncateBody(body),
		})
}

func NewOAuthInvalidGrantError() error {
	return goerrors.New("auth: oauth invalid_grant, refresh token may be expired", goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrorOAuthInvalidGrant)
}

func NewXblBadRequestError() error {
	return goerrors.New("auth: xbox live authentication failed after retry", goerrors.CategoryExternal).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorXblBadRequest)
}

// NewXstsDeniedError maps an XErr code into one of the fixed denial
// reasons. Unknown codes keep the raw value for diagnostics.
func NewXstsDeniedError(xerr uint64) error {
	reason := XstsReasonFromXErr(xerr)
	return goerrors.New(
		fmt.Sprintf("auth: xsts authorization denied: %s (XErr %d)", xstsReasonMessage(reason), xerr),
		goerrors.CategoryAuthz,
	).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrorXstsDenied).
		WithMetadata(map[string]any{
			"xerr":   xerr,
			"reason": reason,
		})
}

func NewProfileNotFoundError() error {
	return goerrors.New(
		"auth: minecraft profile not found, the account may not own the game or has no profile",
		goerrors.CategoryNotFound,
	).
		WithCode(http.StatusNotFound).
		WithTextCode(ErrorProfileNotFound)
}

func NewInvalidRedirectError() error {
	return goerrors.New("auth: redirect is missing an authorization code", goerrors.CategoryBadInput).
		WithTextCode(ErrorInvalidRedirect)
}

func NewStateMismatchError() error {
	return goerrors.New("auth: oauth state mismatch", goerrors.CategoryAuth).
		WithTextCode(ErrorStateMismatch)
}

func NewMissingRefreshTokenError() error {
	return goerrors.New("auth: session has no refresh token", goerrors.CategoryValidation).
		WithTextCode(ErrorMissingRefreshToken)
}

func NewInvalidResponseError(detail string) error {
	return goerrors.New("auth: invalid provider response: "+detail, goerrors.CategoryExternal).
		WithTextCode(ErrorInvalidResponse)
}

func NewStorageIOError(source error, message string) error {
	return goerrors.Wrap(source, goerrors.CategoryOperation, "store: "+message).
		WithTextCode(ErrorStorageIO)
}

func NewCryptoError(detail string) error {
	return goerrors.New("store: cryptography failure: "+detail, goerrors.CategoryInternal).
		WithTextCode(ErrorCrypto)
}

// NewCorruptedStoreError is the single error every decryption failure
// collapses into; it deliberately reveals nothing about the cause.
func NewCorruptedStoreError() error {
	return goerrors.New("store: corrupted record, decryption or integrity check failed", goerrors.CategoryOperation).
		WithTextCode(ErrorCorruptedStore)
}

func NewLockTimeoutError() error {
	return goerrors.New("store: lock timeout, another process may be using the storage", goerrors.CategoryConflict).
		WithCode(http.StatusConflict).
		WithTextCode(ErrorLockTimeout)
}

func NewDecodeError(source error, message string) error {
	return goerrors.Wrap(source, goerrors.CategoryBadInput, "store: "+message).
		WithTextCode(ErrorDecode)
}

// XstsReasonFromXErr maps the fixed, externally defined XErr table.
func XstsReasonFromXErr(code uint64) string {
	switch code {
	case 2148916233:
		return XstsReasonNoXboxAccount
	case 2148916235:
		return XstsReasonRegionUnsupported
	case 2148916236, 2148916237:
		return XstsReasonAdultVerification
	case 2148916238:
		return XstsReasonChildNeedsFamily
	default:
		return XstsReasonUnknown
	}
}

func xstsReasonMessage(reason string) string {
	switch reason {
	case XstsReasonNoXboxAccount:
		return "the microsoft account has no xbox account"
	case XstsReasonRegionUnsupported:
		return "xbox live is not available in this region"
	case XstsReasonAdultVerification:
		return "adult verification is required"
	case XstsReasonChildNeedsFamily:
		return "child account must be added to a family group"
	default:
		return "unknown denial code"
	}
}

// HasTextCode reports whether err (or any wrapped error) carries the given
// taxonomy code.
func HasTextCode(err error, textCode string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == textCode
}

func IsUserCancelled(err error) bool       { return HasTextCode(err, ErrorUserCancelled) }
func IsOAuthInvalidGrant(err error) bool   { return HasTextCode(err, ErrorOAuthInvalidGrant) }
func IsXblBadRequest(err error) bool       { return HasTextCode(err, ErrorXblBadRequest) }
func IsXstsDenied(err error) bool          { return HasTextCode(err, ErrorXstsDenied) }
func IsProfileNotFound(err error) bool     { return HasTextCode(err, ErrorProfileNotFound) }
func IsInvalidRedirect(err error) bool     { return HasTextCode(err, ErrorInvalidRedirect) }
func IsStateMismatch(err error) bool       { return HasTextCode(err, ErrorStateMismatch) }
func IsMissingRefreshToken(err error) bool { return HasTextCode(err, ErrorMissingRefreshToken) }
func IsCorruptedStore(err error) bool      { return HasTextCode(err, ErrorCorruptedStore) }
func IsLockTimeout(err error) bool         { return HasTextCode(err, ErrorLockTimeout) }

// XstsDenialReason extracts the denial reason and raw XErr code from an
// XSTS-denied error.
func XstsDenialReason(err error) (reason string, xerr uint64, ok bool) {
	if err == nil {
		return "", 0, false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.TextCode != ErrorXstsDenied {
		return "", 0, false
	}
	reason, _ = richErr.Metadata["reason"].(string)
	switch typed := richErr.Metadata["xerr"].(type) {
	case uint64:
		xerr = typed
	case int:
		xerr = uint64(typed)
	case int64:
		xerr = uint64(typed)
	case float64:
		xerr = uint64(typed)
	}
	return reason, xerr, true
}

// TruncateBody caps a response body for inclusion in error messages.
func TruncateBody(body string) string {
	body = strings.TrimSpace(body)
	if len(body) <= maxBodySnippet {
		return body
	}
	return body[:maxBodySnippet]
}
