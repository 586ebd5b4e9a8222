package core

import (
	"context"
	"errors"
	"net/http"

	glog "github.com/goliatone/go-logger/glog"
)

// Logger contracts are aliased from go-logger so callers can inject any
// glog-compatible implementation without importing it directly.
type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// HTTPDoer is the transport capability consumed by the auth client. The
// surrounding application configures timeouts, proxies, and user agent on
// the concrete client it injects.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrSecretNotFound is returned by Keyring implementations when no secret is
// stored under the requested service/account pair.
var ErrSecretNotFound = errors.New("core: secret not found")

// Keyring is the platform secret-store capability. Implementations address
// secrets by a fixed service identifier and a versioned account identifier.
// Absence is reported as ErrSecretNotFound; any other error means the
// backing store is unavailable.
type Keyring interface {
	Get(service, account string) (string, error)
	Set(service, account, secret string) error
}

// PassphrasePrompt supplies a passphrase for key derivation when the
// platform keyring cannot. A false ok return means the user cancelled or no
// passphrase source exists; that is not a retryable condition.
type PassphrasePrompt interface {
	Passphrase(ctx context.Context, prompt string) (secret string, ok bool, err error)
}

// NoPassphrasePrompt never yields a passphrase. Use it for keyring-only
// configurations.
type NoPassphrasePrompt struct{}

func (NoPassphrasePrompt) Passphrase(context.Context, string) (string, bool, error) {
	return "", false, nil
}

// StaticPassphrasePrompt returns a fixed passphrase. Intended for headless
// and testing configurations.
type StaticPassphrasePrompt struct {
	Secret string
}

func (p StaticPassphrasePrompt) Passphrase(context.Context, string) (string, bool, error) {
	return p.Secret, true, nil
}

// TokenStore persists authentication sessions keyed by account key (the
// profile UUID). Load returns nil with no error when no usable session
// exists; implementations treat undecryptable records as absent and report
// the cause through their logger only.
type TokenStore interface {
	Load(ctx context.Context, accountKey string) (*Session, error)
	Save(ctx context.Context, accountKey string, session *Session) error
	Remove(ctx context.Context, accountKey string) error
	ListAccounts(ctx context.Context) ([]string, error)
}

// KeyRotator is implemented by durable token stores that can re-encrypt
// every record under a freshly generated key.
type KeyRotator interface {
	RotateKey(ctx context.Context) error
}
