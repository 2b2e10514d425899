package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// StartupMode defines how Aegis handles initialization failures
type StartupMode string

const (
	// StartupModeStrict fails fast on any initialization error (default)
	StartupModeStrict StartupMode = "strict"
	// StartupModeGraceful starts with degraded functionality, logging warnings
	StartupModeGraceful StartupMode = "graceful"
)

// DataPaths holds all data directory and file path configuration
// These paths can be overridden via environment variables
type DataPaths struct {
	// DataDir is the base data directory (AEGIS_DATA_DIR, default: ./data)
	DataDir string `mapstructure:"data_dir"`
	// SQLitePath is the SQLite audit database path (AEGIS_SQLITE_PATH, default: ${DataDir}/aegis.db)
	SQLitePath string `mapstructure:"sqlite_path"`
	// PlaybooksFile is the playbook settings YAML (AEGIS_PLAYBOOKS_FILE, default: ${DataDir}/playbooks.yaml)
	PlaybooksFile string `mapstructure:"playbooks_file"`
}

// Config holds all configuration for the Aegis case worker
type Config struct {
	// StartupMode controls how initialization failures are handled
	// "strict" (default): Fail fast on any error
	// "graceful": Start with degraded functionality, log warnings
	StartupMode StartupMode `mapstructure:"startup_mode"`

	// DataPaths holds all data directory configuration
	DataPaths DataPaths `mapstructure:"data_paths"`

	MongoDB struct {
		URI         string `mapstructure:"uri"`
		Database    string `mapstructure:"database"`
		Enabled     bool   `mapstructure:"enabled"`
		MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	} `mapstructure:"mongodb"`

	Whitelist struct {
		Redis struct {
			Enabled  bool   `mapstructure:"enabled"`
			Addr     string `mapstructure:"addr"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
			PoolSize int    `mapstructure:"pool_size"`
		} `mapstructure:"redis"`
		LocalCacheSize int           `mapstructure:"local_cache_size"`
		LocalCacheTTL  time.Duration `mapstructure:"local_cache_ttl"`
	} `mapstructure:"whitelist"`

	Worker struct {
		Interval      time.Duration `mapstructure:"interval"`
		MaxConcurrent int           `mapstructure:"max_concurrent"`
	} `mapstructure:"worker"`
}

// setDefaults sets default configuration values
func setDefaults() {
	// Startup mode: strict (fail fast) or graceful (degraded functionality)
	viper.SetDefault("startup_mode", string(StartupModeStrict))

	// Data paths with environment variable overrides
	// Base directory - all other paths derive from this by default
	viper.SetDefault("data_paths.data_dir", "./data")
	viper.SetDefault("data_paths.sqlite_path", "")    // Empty = derive from data_dir
	viper.SetDefault("data_paths.playbooks_file", "") // Empty = derive from data_dir

	viper.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongodb.database", "aegis")
	viper.SetDefault("mongodb.enabled", true)
	viper.SetDefault("mongodb.max_pool_size", 10)

	viper.SetDefault("whitelist.redis.enabled", false)
	viper.SetDefault("whitelist.redis.addr", "localhost:6379")
	viper.SetDefault("whitelist.redis.password", "")
	viper.SetDefault("whitelist.redis.db", 0)
	viper.SetDefault("whitelist.redis.pool_size", 10)
	viper.SetDefault("whitelist.local_cache_size", 1000)
	viper.SetDefault("whitelist.local_cache_ttl", 5*time.Minute)

	viper.SetDefault("worker.interval", 1*time.Minute)
	viper.SetDefault("worker.max_concurrent", 10)
}

// loadFromEnv sets up environment variable loading
func loadFromEnv() {
	viper.SetEnvPrefix("AEGIS")
	viper.AutomaticEnv()

	// Explicit environment variable bindings for path settings
	// These allow shorter, cleaner env var names
	_ = viper.BindEnv("startup_mode", "AEGIS_STARTUP_MODE")
	_ = viper.BindEnv("data_paths.data_dir", "AEGIS_DATA_DIR")
	_ = viper.BindEnv("data_paths.sqlite_path", "AEGIS_SQLITE_PATH")
	_ = viper.BindEnv("data_paths.playbooks_file", "AEGIS_PLAYBOOKS_FILE")
	_ = viper.BindEnv("mongodb.uri", "AEGIS_MONGODB_URI")
	_ = viper.BindEnv("whitelist.redis.addr", "AEGIS_REDIS_ADDR")
	_ = viper.BindEnv("whitelist.redis.password", "AEGIS_REDIS_PASSWORD")
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()
	loadFromEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, will use defaults and env vars
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Resolve data paths (derive from data_dir if not explicitly set)
	config.ResolveDataPaths()

	return &config, nil
}

// ResolveDataPaths resolves all data paths, deriving from DataDir if not explicitly set
func (c *Config) ResolveDataPaths() {
	dataDir := c.DataPaths.DataDir
	if dataDir == "" {
		dataDir = "./data"
	}

	if c.DataPaths.SQLitePath == "" {
		c.DataPaths.SQLitePath = filepath.Join(dataDir, "aegis.db")
	} else if !filepath.IsAbs(c.DataPaths.SQLitePath) {
		c.DataPaths.SQLitePath = filepath.Clean(c.DataPaths.SQLitePath)
	}

	if c.DataPaths.PlaybooksFile == "" {
		c.DataPaths.PlaybooksFile = filepath.Join(dataDir, "playbooks.yaml")
	} else if !filepath.IsAbs(c.DataPaths.PlaybooksFile) {
		c.DataPaths.PlaybooksFile = filepath.Clean(c.DataPaths.PlaybooksFile)
	}

	c.DataPaths.DataDir = dataDir
}

// GetDataDir returns the resolved base data directory
func (c *Config) GetDataDir() string {
	if c.DataPaths.DataDir == "" {
		return "./data"
	}
	return c.DataPaths.DataDir
}

// GetSQLitePath returns the resolved SQLite database path
func (c *Config) GetSQLitePath() string {
	if c.DataPaths.SQLitePath == "" {
		return filepath.Join(c.GetDataDir(), "aegis.db")
	}
	return c.DataPaths.SQLitePath
}

// GetPlaybooksFile returns the resolved playbook settings path
func (c *Config) GetPlaybooksFile() string {
	if c.DataPaths.PlaybooksFile == "" {
		return filepath.Join(c.GetDataDir(), "playbooks.yaml")
	}
	return c.DataPaths.PlaybooksFile
}

// IsGracefulMode returns true if the startup mode is graceful
func (c *Config) IsGracefulMode() bool {
	return c.StartupMode == StartupModeGraceful
}

// validateConfig validates the configuration for correctness
func validateConfig(config *Config) error {
	if config.StartupMode != "" &&
		config.StartupMode != StartupModeStrict &&
		config.StartupMode != StartupModeGraceful {
		return fmt.Errorf("invalid startup_mode: %q (must be strict or graceful)", config.StartupMode)
	}

	// Validate MongoDB URI
	if config.MongoDB.Enabled {
		if !strings.HasPrefix(config.MongoDB.URI, "mongodb://") && !strings.HasPrefix(config.MongoDB.URI, "mongodb+srv://") {
			return fmt.Errorf("invalid MongoDB URI: must start with mongodb:// or mongodb+srv://")
		}
		parsed, err := url.Parse(config.MongoDB.URI)
		if err != nil {
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if parsed.Host == "" {
			return fmt.Errorf("invalid MongoDB URI: missing host")
		}
		if config.MongoDB.Database == "" {
			return fmt.Errorf("MongoDB database cannot be empty")
		}
	}

	if config.Whitelist.Redis.Enabled {
		if config.Whitelist.Redis.Addr == "" {
			return fmt.Errorf("whitelist.redis.addr cannot be empty when Redis is enabled")
		}
		if config.Whitelist.LocalCacheSize < 1 {
			return fmt.Errorf("whitelist.local_cache_size must be positive, got %d", config.Whitelist.LocalCacheSize)
		}
		if config.Whitelist.LocalCacheTTL < time.Second {
			return fmt.Errorf("whitelist.local_cache_ttl must be at least 1s, got %v", config.Whitelist.LocalCacheTTL)
		}
	}

	if config.Worker.Interval < time.Second {
		return fmt.Errorf("worker.interval must be at least 1s, got %v", config.Worker.Interval)
	}
	if config.Worker.MaxConcurrent < 1 {
		return fmt.Errorf("worker.max_concurrent must be positive, got %d", config.Worker.MaxConcurrent)
	}

	return nil
}
