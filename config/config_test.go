package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	cfg := &Config{StartupMode: StartupModeStrict}
	cfg.MongoDB.Enabled = true
	cfg.MongoDB.URI = "mongodb://localhost:27017"
	cfg.MongoDB.Database = "aegis"
	cfg.Whitelist.Redis.Enabled = true
	cfg.Whitelist.Redis.Addr = "localhost:6379"
	cfg.Whitelist.LocalCacheSize = 100
	cfg.Whitelist.LocalCacheTTL = time.Minute
	cfg.Worker.Interval = time.Minute
	cfg.Worker.MaxConcurrent = 10
	return cfg
}

func TestValidateConfig_Valid(t *testing.T) {
	assert.NoError(t, validateConfig(validTestConfig()))
}

func TestValidateConfig_StartupMode(t *testing.T) {
	cfg := validTestConfig()
	cfg.StartupMode = StartupModeGraceful
	assert.NoError(t, validateConfig(cfg))
	assert.True(t, cfg.IsGracefulMode())

	cfg.StartupMode = "sloppy"
	assert.Error(t, validateConfig(cfg))
}

func TestValidateConfig_MongoDB(t *testing.T) {
	cfg := validTestConfig()
	cfg.MongoDB.URI = "http://localhost:27017"
	assert.Error(t, validateConfig(cfg))

	cfg.MongoDB.URI = "mongodb+srv://cluster.example.com"
	assert.NoError(t, validateConfig(cfg))

	cfg.MongoDB.Database = ""
	assert.Error(t, validateConfig(cfg))

	// Disabled MongoDB skips URI validation
	cfg.MongoDB.Enabled = false
	assert.NoError(t, validateConfig(cfg))
}

func TestValidateConfig_Whitelist(t *testing.T) {
	cfg := validTestConfig()
	cfg.Whitelist.Redis.Addr = ""
	assert.Error(t, validateConfig(cfg))

	cfg = validTestConfig()
	cfg.Whitelist.LocalCacheSize = 0
	assert.Error(t, validateConfig(cfg))

	cfg = validTestConfig()
	cfg.Whitelist.LocalCacheTTL = time.Millisecond
	assert.Error(t, validateConfig(cfg))

	// Disabled Redis skips whitelist validation
	cfg = validTestConfig()
	cfg.Whitelist.Redis.Enabled = false
	cfg.Whitelist.Redis.Addr = ""
	assert.NoError(t, validateConfig(cfg))
}

func TestValidateConfig_Worker(t *testing.T) {
	cfg := validTestConfig()
	cfg.Worker.Interval = time.Millisecond
	assert.Error(t, validateConfig(cfg))

	cfg = validTestConfig()
	cfg.Worker.MaxConcurrent = 0
	assert.Error(t, validateConfig(cfg))
}

func TestResolveDataPaths_Defaults(t *testing.T) {
	cfg := &Config{}
	cfg.ResolveDataPaths()

	assert.Equal(t, "./data", cfg.DataPaths.DataDir)
	assert.Equal(t, filepath.Join("./data", "aegis.db"), cfg.DataPaths.SQLitePath)
	assert.Equal(t, filepath.Join("./data", "playbooks.yaml"), cfg.DataPaths.PlaybooksFile)
}

func TestResolveDataPaths_ExplicitPathsKept(t *testing.T) {
	cfg := &Config{}
	cfg.DataPaths.DataDir = "/var/lib/aegis"
	cfg.DataPaths.SQLitePath = "/tmp/custom.db"
	cfg.ResolveDataPaths()

	assert.Equal(t, "/tmp/custom.db", cfg.DataPaths.SQLitePath)
	assert.Equal(t, filepath.Join("/var/lib/aegis", "playbooks.yaml"), cfg.DataPaths.PlaybooksFile)
}

func TestGetters_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	require.Equal(t, "./data", cfg.GetDataDir())
	assert.Equal(t, filepath.Join("./data", "aegis.db"), cfg.GetSQLitePath())
	assert.Equal(t, filepath.Join("./data", "playbooks.yaml"), cfg.GetPlaybooksFile())
}
