package rauncher

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/LuizSSampaio/rauncher-mc/auth"
	"github.com/LuizSSampaio/rauncher-mc/command"
	"github.com/LuizSSampaio/rauncher-mc/core"
	"github.com/LuizSSampaio/rauncher-mc/query"
	"github.com/LuizSSampaio/rauncher-mc/security"
	filestore "github.com/LuizSSampaio/rauncher-mc/store/file"
)

// Commands groups the dispatchable command handlers over one account
// manager.
type Commands struct {
	Login         *command.LoginCommand
	Refresh       *command.RefreshCommand
	RemoveAccount *command.RemoveAccountCommand
	RotateKey     *command.RotateKeyCommand
}

// Queries groups the read-side handlers over the same account manager.
type Queries struct {
	GetSession   *query.GetSessionQuery
	GetProfile   *query.GetProfileQuery
	ListAccounts *query.ListAccountsQuery
}

// Facade wires the auth client, the token store, and the command and query
// handlers into one entry point for embedding applications.
type Facade struct {
	manager  *AccountManager
	commands Commands
	queries  Queries
}

type Option func(*facadeOptions)

type facadeOptions struct {
	store      core.TokenStore
	httpClient core.HTTPDoer
	logger     core.Logger
	keyring    core.Keyring
	prompt     core.PassphrasePrompt
	storageDir string
}

// WithTokenStore injects a pre-built store and skips the default file
// store entirely.
func WithTokenStore(store core.TokenStore) Option {
	return func(options *facadeOptions) {
		options.store = store
	}
}

func WithHTTPClient(httpClient core.HTTPDoer) Option {
	return func(options *facadeOptions) {
		options.httpClient = httpClient
	}
}

func WithLogger(logger core.Logger) Option {
	return func(options *facadeOptions) {
		options.logger = logger
	}
}

func WithKeyring(keyring core.Keyring) Option {
	return func(options *facadeOptions) {
		options.keyring = keyring
	}
}

func WithPassphrasePrompt(prompt core.PassphrasePrompt) Option {
	return func(options *facadeOptions) {
		options.prompt = prompt
	}
}

func WithStorageDir(storageDir string) Option {
	return func(options *facadeOptions) {
		options.storageDir = storageDir
	}
}

// New builds a ready facade. Without options it uses the official desktop
// flow config passed in, an encrypted file store under the user config
// directory, and the platform keyring.
func New(ctx context.Context, cfg core.Config, opts ...Option) (*Facade, error) {
	options := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}
	_, logger := glog.Resolve("rauncher", nil, options.logger)

	clientOpts := []auth.Option{auth.WithLogger(logger)}
	if options.httpClient != nil {
		clientOpts = append(clientOpts, auth.WithHTTPClient(options.httpClient))
	}
	client, err := auth.New(cfg, clientOpts...)
	if err != nil {
		return nil, err
	}

	store := options.store
	if store == nil {
		storageDir := options.storageDir
		if storageDir == "" {
			storageDir, err = filestore.DefaultStorageDir()
			if err != nil {
				return nil, err
			}
		}
		keyring := options.keyring
		if keyring == nil {
			keyring = security.SystemKeyring{}
		}
		prompt := options.prompt
		if prompt == nil {
			prompt = core.NoPassphrasePrompt{}
		}
		store, err = filestore.New(ctx, storageDir, keyring, prompt, filestore.WithLogger(logger))
		if err != nil {
			return nil, err
		}
	}

	manager, err := NewAccountManager(client, store, logger)
	if err != nil {
		return nil, err
	}

	return &Facade{
		manager: manager,
		commands: Commands{
			Login:         command.NewLoginCommand(manager),
			Refresh:       command.NewRefreshCommand(manager),
			RemoveAccount: command.NewRemoveAccountCommand(manager),
			RotateKey:     command.NewRotateKeyCommand(manager),
		},
		queries: Queries{
			GetSession:   query.NewGetSessionQuery(manager),
			GetProfile:   query.NewGetProfileQuery(manager),
			ListAccounts: query.NewListAccountsQuery(manager),
		},
	}, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Accounts() *AccountManager {
	if f == nil {
		return nil
	}
	return f.manager
}

var (
	_ command.SessionService = (*AccountManager)(nil)
	_ query.SessionReader    = (*AccountManager)(nil)
)
