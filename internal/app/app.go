package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/pantry/internal/config"
	"github.com/five82/pantry/internal/docstore"
	"github.com/five82/pantry/internal/inventory"
	"github.com/five82/pantry/internal/logging"
	"github.com/five82/pantry/internal/prefs"
	"github.com/five82/pantry/internal/ui"
)

// Options configure the pantry application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/pantry/prefs.toml
	PollEvery  int    // seconds; zero keeps the configured value
	Backend    string // overrides store.backend when set
}

// Run boots the pantry TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{Path: cfg.LogPath, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting",
		zap.String("backend", cfg.Store.Backend),
		zap.String("collection", cfg.Store.Collection),
		zap.Duration("poll", cfg.PollInterval))

	storeLog := logger.Named("docstore").With(zap.String("backend", cfg.Store.Backend))
	store, err := docstore.Open(ctx, cfg.StoreConfig())
	if err != nil {
		storeLog.Error("open store failed", zap.Error(err))
		return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	storeLog.Info("store opened", zap.Duration("timeout", cfg.Store.Timeout))
	defer func() {
		if err := store.Close(); err != nil {
			storeLog.Warn("close store", zap.Error(err))
		}
	}()

	manager := inventory.NewManager(store, inventory.Options{
		Collection: cfg.Store.Collection,
		Logger:     logger.Named("inventory"),
	})

	// Initial refresh so the first frame has data; failures show as offline.
	if err := refreshOnce(ctx, manager, cfg.Store.Timeout); err != nil {
		logger.Warn("initial refresh failed", zap.Error(err))
	}

	if cfg.PollInterval > 0 {
		StartPoller(ctx, manager, cfg.PollInterval, cfg.Store.Timeout, logger.Named("poller"))
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	return ui.Run(ui.Options{
		Context:     ctx,
		Manager:     manager,
		Logger:      logger.Named("ui"),
		LogPath:     cfg.LogPath,
		RecipeURL:   cfg.RecipeURL,
		OpTimeout:   cfg.Store.Timeout,
		Backend:     cfg.Store.Backend,
		RefreshTick: time.Second,
		Prefs:       userPrefs,
		PrefsPath:   opts.PrefsPath,
	})
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if backend := strings.ToLower(strings.TrimSpace(opts.Backend)); backend != "" {
		if !docstore.IsBackend(backend) {
			return config.Config{}, fmt.Errorf("unknown backend %q (want one of %s)",
				opts.Backend, strings.Join(docstore.Backends(), ", "))
		}
		cfg.Store.Backend = backend
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = time.Duration(opts.PollEvery) * time.Second
	}
	return cfg, nil
}
