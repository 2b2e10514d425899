package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"aegis/config"
	"aegis/core"
	"aegis/soar"
	"aegis/storage"

	"go.uber.org/zap"
)

// CaseBackend is the external case management surface the worker needs:
// persistence for cases and alerts plus the write-backs the dispatcher
// performs after a round.
type CaseBackend interface {
	SaveCase(ctx context.Context, cf *core.CaseFile) error
	GetCase(ctx context.Context, caseUUID string) (*core.CaseFile, error)
	AddCaseNote(ctx context.Context, caseNumber int, note core.CaseNote) error
	SaveAlert(ctx context.Context, alert *core.Alert) error
	OpenAlerts(ctx context.Context) ([]*core.Alert, error)
	UpdateAlertState(ctx context.Context, alertUUID string, state core.AlertState) error
}

var (
	_ CaseBackend = (*storage.CaseStore)(nil)
	_ CaseBackend = (*storage.MemoryCaseStore)(nil)
)

// InitSQLite opens the audit database.
func InitSQLite(cfg *config.Config, sugar *zap.SugaredLogger) (*storage.SQLite, error) {
	sqlite, err := storage.NewSQLite(cfg.GetSQLitePath(), sugar)
	if err != nil {
		errMsg := ClassifySQLiteError(err, cfg.GetSQLitePath())
		fmt.Fprintf(os.Stderr, "\n========================================\n")
		fmt.Fprintf(os.Stderr, "FATAL: SQLite Initialization Failed\n")
		fmt.Fprintf(os.Stderr, "========================================\n")
		fmt.Fprintf(os.Stderr, "%s\n", errMsg)
		fmt.Fprintf(os.Stderr, "========================================\n\n")
		return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
	}

	sugar.Info("SQLite initialized successfully")
	return sqlite, nil
}

// InitMongoDB connects to the case management database with retry logic.
func InitMongoDB(cfg *config.Config, sugar *zap.SugaredLogger) (*storage.MongoDB, error) {
	const maxRetries = 3
	retryDelays := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}

	var db *storage.MongoDB
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			sugar.Infow("Retrying MongoDB connection",
				"attempt", attempt,
				"max_retries", maxRetries,
				"delay", retryDelays[attempt-1])
			time.Sleep(retryDelays[attempt-1])
		}

		db, lastErr = storage.NewMongoDB(cfg.MongoDB.URI, cfg.MongoDB.Database, cfg.MongoDB.MaxPoolSize, sugar)
		if lastErr == nil {
			break
		}

		sugar.Warnw("MongoDB connection attempt failed",
			"attempt", attempt+1,
			"error", lastErr)
	}

	if lastErr != nil {
		errMsg := ClassifyConnectionError(lastErr, cfg.MongoDB.URI)
		fmt.Fprintf(os.Stderr, "\n========================================\n")
		fmt.Fprintf(os.Stderr, "FATAL: MongoDB Connection Failed\n")
		fmt.Fprintf(os.Stderr, "========================================\n")
		fmt.Fprintf(os.Stderr, "%s\n", errMsg)
		fmt.Fprintf(os.Stderr, "========================================\n\n")
		return nil, fmt.Errorf("failed to connect to MongoDB after %d attempts: %w", maxRetries+1, lastErr)
	}

	return db, nil
}

// InitCaseBackend builds the case backend. MongoDB when enabled; graceful
// mode falls back to the in-memory backend if the connection fails.
func InitCaseBackend(cfg *config.Config, sugar *zap.SugaredLogger) (CaseBackend, *storage.MongoDB, error) {
	if !cfg.MongoDB.Enabled {
		sugar.Warn("MongoDB disabled, using in-memory case backend (cases will not survive restarts)")
		return storage.NewMemoryCaseStore(), nil, nil
	}

	db, err := InitMongoDB(cfg, sugar)
	if err != nil {
		if cfg.IsGracefulMode() {
			sugar.Warnw("MongoDB unavailable, falling back to in-memory case backend", "error", err)
			return storage.NewMemoryCaseStore(), nil, nil
		}
		return nil, nil, err
	}

	return storage.NewCaseStore(db, sugar), db, nil
}

// InitWhitelistStore builds the whitelist backing store. Redis when enabled;
// graceful mode falls back to the in-memory store if the ping fails.
func InitWhitelistStore(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (soar.WhitelistStore, *core.RedisWhitelistCache, error) {
	if !cfg.Whitelist.Redis.Enabled {
		sugar.Info("Whitelist Redis disabled, using in-memory whitelist store")
		return storage.NewMemoryWhitelistStore(), nil, nil
	}

	cache := core.NewRedisWhitelistCache(
		cfg.Whitelist.Redis.Addr,
		cfg.Whitelist.Redis.Password,
		cfg.Whitelist.Redis.DB,
		cfg.Whitelist.Redis.PoolSize,
		cfg.Whitelist.LocalCacheSize,
		cfg.Whitelist.LocalCacheTTL,
		sugar,
	)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx); err != nil {
		_ = cache.Close()
		if cfg.IsGracefulMode() {
			sugar.Warnw("Whitelist Redis unavailable, falling back to in-memory store", "error", err)
			return storage.NewMemoryWhitelistStore(), nil, nil
		}
		errMsg := ClassifyConnectionError(err, cfg.Whitelist.Redis.Addr)
		fmt.Fprintf(os.Stderr, "\n========================================\n")
		fmt.Fprintf(os.Stderr, "FATAL: Redis Connection Failed\n")
		fmt.Fprintf(os.Stderr, "========================================\n")
		fmt.Fprintf(os.Stderr, "%s\n", errMsg)
		fmt.Fprintf(os.Stderr, "========================================\n\n")
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	sugar.Infow("Whitelist Redis connected", "addr", cfg.Whitelist.Redis.Addr)
	return cache, cache, nil
}
