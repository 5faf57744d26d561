package daemon

import (
	"log/slog"
	"time"

	"reelsync/internal/catalog"
	"reelsync/internal/config"
	"reelsync/internal/notifications"
	"reelsync/internal/reconcile"
	"reelsync/internal/resolve"
	"reelsync/internal/resolvecache"
	"reelsync/internal/tmdb"
	"reelsync/internal/workflow"
)

// BuildResolver constructs the TMDB client and resolver from configuration,
// attaching the SQLite resolve cache when enabled. The returned cleanup
// closes the cache; it is safe to call when no cache was opened.
func BuildResolver(cfg *config.Config, logger *slog.Logger) (*resolve.Resolver, func(), error) {
	if err := cfg.RequireTMDB(); err != nil {
		return nil, nil, err
	}
	client, err := tmdb.NewClient(cfg.TMDB.APIKey,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithLanguage(cfg.TMDB.Language))
	if err != nil {
		return nil, nil, err
	}

	opts := resolve.Options{
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		Language:     cfg.TMDB.Language,
		Logger:       logger,
	}
	cleanup := func() {}
	if cfg.ResolveCache.Enabled {
		cache, err := resolvecache.Open(cfg.ResolveCache.Path,
			time.Duration(cfg.ResolveCache.TTLHours)*time.Hour, logger)
		if err != nil {
			return nil, nil, err
		}
		opts.Cache = cache
		cleanup = func() { cache.Close() }
	}
	return resolve.New(client, opts), cleanup, nil
}

// BuildManager wires the full sync stack: catalog client, resolver,
// reconciliation engine, notifications and the workflow manager.
func BuildManager(cfg *config.Config, logger *slog.Logger) (*workflow.Manager, func(), error) {
	if err := cfg.RequireCatalog(); err != nil {
		return nil, nil, err
	}
	store, err := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Token, cfg.Catalog.DatabaseID)
	if err != nil {
		return nil, nil, err
	}

	resolver, cleanup, err := BuildResolver(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	engine := reconcile.New(store, logger,
		time.Duration(cfg.Workflow.DuplicateArchiveWait)*time.Second)
	notifier := notifications.NewService(cfg.Notifications, logger)
	manager := workflow.NewManager(cfg.Workflow, store, resolver, engine, notifier, logger)
	return manager, cleanup, nil
}
