package bootstrap

import (
	"context"
	"fmt"
	"time"

	"aegis/config"
	"aegis/core"
	"aegis/soar"
	"aegis/storage"

	"go.uber.org/zap"
)

// App represents the Aegis case worker with all its components.
type App struct {
	// Configuration
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	// Storage
	SQLite     *storage.SQLite
	AuditStore core.AuditSink
	Mongo      *storage.MongoDB
	Cases      CaseBackend

	// Whitelist
	WhitelistCache *core.RedisWhitelistCache
	Whitelist      *soar.Whitelist

	// Dispatch
	Registry   *soar.Registry
	Dispatcher *soar.Dispatcher
}

// NewApp creates a new application instance and initializes all components.
// Playbooks are registered on app.Registry by the caller before running.
func NewApp(ctx context.Context) (*App, error) {
	app := &App{}

	logger, sugar, err := InitLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = logger
	app.Sugar = sugar

	sugar.Info("Aegis case worker starting...")

	cfg, err := InitConfig(sugar)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	if err := EnsureDataDirectory(cfg.GetDataDir(), sugar); err != nil {
		return nil, fmt.Errorf("pre-flight check failed: %w", err)
	}

	sqlite, err := InitSQLite(cfg, sugar)
	if err != nil {
		if !cfg.IsGracefulMode() {
			return nil, err
		}
		sugar.Warnw("SQLite unavailable, audit trails will be kept in memory only", "error", err)
		app.AuditStore = storage.NewMemoryAuditStore()
	} else {
		app.SQLite = sqlite
		app.AuditStore = storage.NewAuditStore(sqlite)
	}

	cases, mongo, err := InitCaseBackend(cfg, sugar)
	if err != nil {
		return nil, err
	}
	app.Cases = cases
	app.Mongo = mongo

	whitelistStore, whitelistCache, err := InitWhitelistStore(ctx, cfg, sugar)
	if err != nil {
		return nil, err
	}
	app.WhitelistCache = whitelistCache
	app.Whitelist = soar.NewWhitelist(whitelistStore, sugar)

	settings, err := config.LoadPlaybookSettings(cfg.GetPlaybooksFile())
	if err != nil {
		if !cfg.IsGracefulMode() {
			return nil, err
		}
		sugar.Warnw("Failed to load playbook settings, every playbook will be enabled", "error", err)
		settings = nil
	}

	app.Registry = soar.NewRegistry(sugar)
	app.Dispatcher = soar.NewDispatcher(app.Registry, settings, cfg.Worker.MaxConcurrent, sugar)
	app.Dispatcher.SetWhitelist(app.Whitelist)
	app.Dispatcher.SetCaseNoter(app.Cases)
	app.Dispatcher.SetAlertStateUpdater(app.Cases)
	app.Dispatcher.SetAuditSink(app.AuditStore)

	sugar.Info("Aegis initialized successfully")
	return app, nil
}

// RunOnce performs one worker round: fetch open alerts, correlate them into
// case files, dispatch each case through the playbook chain and persist the
// results.
func (a *App) RunOnce(ctx context.Context) error {
	alerts, err := a.Cases.OpenAlerts(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch open alerts: %w", err)
	}
	if len(alerts) == 0 {
		a.Sugar.Info("No open alerts to process")
		return nil
	}
	a.Sugar.Infow("Worker round started", "open_alerts", len(alerts))

	cases := a.Dispatcher.DispatchAlerts(ctx, alerts)

	for _, cf := range cases {
		if err := a.Cases.SaveCase(ctx, cf); err != nil {
			a.Sugar.Errorf("Failed to persist case %s before dispatch: %v", cf.CaseUUID, err)
		}

		result, err := a.Dispatcher.DispatchCase(ctx, cf)
		if err != nil {
			a.Sugar.Errorf("Failed to dispatch case %s: %v", cf.CaseUUID, err)
			continue
		}
		a.Sugar.Infow("Case dispatched",
			"case_uuid", result.CaseUUID,
			"outcome", result.Outcome,
			"handled_by", result.HandledBy,
			"duration", result.Duration)

		if err := a.Cases.SaveCase(ctx, cf); err != nil {
			a.Sugar.Errorf("Failed to persist case %s after dispatch: %v", cf.CaseUUID, err)
		}
	}

	a.Sugar.Infow("Worker round finished", "alerts", len(alerts), "cases", len(cases))
	return nil
}

// RunLoop runs worker rounds on the configured interval until the context
// is canceled.
func (a *App) RunLoop(ctx context.Context) error {
	interval := a.Config.Worker.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	a.Sugar.Infow("Worker loop started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := a.RunOnce(ctx); err != nil {
		a.Sugar.Errorf("Worker round failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			a.Sugar.Info("Worker loop stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := a.RunOnce(ctx); err != nil {
				a.Sugar.Errorf("Worker round failed: %v", err)
			}
		}
	}
}

// Shutdown releases all resources.
func (a *App) Shutdown(ctx context.Context) {
	a.Sugar.Info("Shutting down...")

	if a.WhitelistCache != nil {
		if err := a.WhitelistCache.Close(); err != nil {
			a.Sugar.Warnf("Failed to close Redis connection: %v", err)
		}
	}
	if a.Mongo != nil {
		if err := a.Mongo.Close(ctx); err != nil {
			a.Sugar.Warnf("Failed to close MongoDB connection: %v", err)
		}
	}
	if a.SQLite != nil {
		if err := a.SQLite.Close(); err != nil {
			a.Sugar.Warnf("Failed to close SQLite database: %v", err)
		}
	}

	a.Sugar.Info("Shutdown complete")
	_ = a.Logger.Sync()
}
