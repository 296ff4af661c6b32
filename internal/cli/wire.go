package cli

import (
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/workplan/internal/common"
	"github.com/dmitrijs2005/workplan/internal/config"
	"github.com/dmitrijs2005/workplan/internal/cryptox"
	"github.com/dmitrijs2005/workplan/internal/logging"
	"github.com/dmitrijs2005/workplan/internal/repositories/sessions"
	"github.com/dmitrijs2005/workplan/internal/repositories/users"
	"github.com/dmitrijs2005/workplan/internal/services/accounts"
	"github.com/dmitrijs2005/workplan/internal/services/profile"
	"github.com/dmitrijs2005/workplan/internal/services/session"
	"github.com/dmitrijs2005/workplan/internal/storage"
)

// NewAppFromConfig opens the configured storage and builds an App reading
// stdin and writing stdout. The returned closer releases the storage.
func NewAppFromConfig(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, io.Closer, error) {
	scheme, err := cryptox.ParseScheme(cfg.CredentialScheme)
	if err != nil {
		return nil, nil, err
	}

	st, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	policy := cfg.Policy()
	store := sessions.NewMetadataStore(st.Metadata, cfg.KeyPrefix+common.CurrentSessionKey, policy)
	dir := users.NewMetadataDirectory(st.Metadata, cfg.KeyPrefix+common.UsersKey, scheme)

	m := session.NewManager(store, dir, session.Options{
		Policy:           policy,
		WarningThreshold: cfg.WarningThreshold,
		TickInterval:     cfg.TickInterval,
		ActivityThrottle: cfg.ActivityThrottle,
		Logger:           log.With("component", "session"),
	})
	acc := accounts.NewService(dir, scheme, log.With("component", "accounts"))
	prof := profile.NewService(st.Metadata, cfg.KeyPrefix, log.With("component", "profile"))

	log.Info(ctx, "storage ready", "driver", cfg.StorageDriver, "scheme", scheme.Name())
	return NewApp(m, acc, prof, log, os.Stdin, os.Stdout), st, nil
}
