package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/bukutani/bukutani/internal/accounts"
	"github.com/bukutani/bukutani/internal/config"
	"github.com/bukutani/bukutani/internal/ledger"
	"github.com/bukutani/bukutani/internal/logger"
	"github.com/bukutani/bukutani/internal/model"
	"github.com/bukutani/bukutani/internal/store"
	"github.com/bukutani/bukutani/internal/store/csvstore"
	"github.com/bukutani/bukutani/internal/store/sqlite"
)

// app is everything a data command needs, opened from the data directory.
type app struct {
	dataDir  string
	owner    string
	cfg      *config.Config
	taxonomy *accounts.Taxonomy
	log      zerolog.Logger
	store    store.Store
	ledger   *ledger.Service
}

// resolveConfig loads the environment and config file and applies flag
// overrides. It does not open any store.
func resolveConfig(flags *globalFlags) (string, *config.Config, error) {
	if err := config.LoadEnv(flags.envFile); err != nil {
		return "", nil, err
	}
	dir := flags.dir
	if dir == "" {
		dir = config.DataDir(".")
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Resolve(absDir)
	if err != nil {
		return "", nil, err
	}
	if flags.owner != "" {
		cfg.Owner = flags.owner
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}
	return absDir, cfg, nil
}

func openApp(ctx context.Context, flags *globalFlags) (*app, error) {
	dataDir, cfg, err := resolveConfig(flags)
	if err != nil {
		return nil, err
	}
	if cfg.Owner == "" {
		return nil, errors.New("no owner: pass --owner, set " + config.EnvOwner + " or run init")
	}
	if err := model.ValidateOwner(cfg.Owner); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("owner", cfg.Owner).Logger()

	taxonomy, err := cfg.Taxonomy()
	if err != nil {
		return nil, err
	}
	reversalDate, err := ledger.ParseReversalDate(cfg.Reversal.Date)
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg, dataDir)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("backend", cfg.Storage.Backend).Str("path", cfg.StoragePath(dataDir)).Msg("store opened")

	return &app{
		dataDir:  dataDir,
		owner:    cfg.Owner,
		cfg:      cfg,
		taxonomy: taxonomy,
		log:      log,
		store:    st,
		ledger: ledger.NewService(st,
			ledger.WithTaxonomy(taxonomy),
			ledger.WithLogger(log),
			ledger.WithReversalDate(reversalDate),
		),
	}, nil
}

func openStore(cfg *config.Config, dataDir string) (store.Store, error) {
	path := cfg.StoragePath(dataDir)
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		return sqlite.Open(path)
	default:
		return csvstore.New(path), nil
	}
}

// withApp opens the app, runs fn with a context carrying the app logger
// and closes the store afterwards.
func withApp(ctx context.Context, flags *globalFlags, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(ctx, flags)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.store.Close(); cerr != nil {
			a.log.Warn().Err(cerr).Msg("closing store")
		}
	}()
	return fn(logger.WithContext(ctx, a.log), a)
}
