package security

import (
	"errors"

	"github.com/LuizSSampaio/rauncher-mc/core"
	keyring "github.com/zalando/go-keyring"
)

// Fixed keyring identity for the storage key. The account segment carries a
// version so a future format change can live alongside the old entry.
const (
	KeyringService = "rauncher-mc"
	KeyringAccount = "rc-auth:v1"
)

// SystemKeyring adapts the platform secret store (macOS Keychain, Windows
// Credential Manager, Linux Secret Service) to the core.Keyring capability.
type SystemKeyring struct{}

func (SystemKeyring) Get(service, account string) (string, error) {
	secret, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", core.ErrSecretNotFound
		}
		return "", err
	}
	return secret, nil
}

func (SystemKeyring) Set(service, account, secret string) error {
	return keyring.Set(service, account, secret)
}

var _ core.Keyring = SystemKeyring{}
