// Package config loads runtime settings for the account ledger from
// environment variables (prefix LEDGER_) and an optional config file, with
// sensible local-first defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Sync backends.
const (
	SyncNone = "none"
	SyncGit  = "git"
	SyncS3   = "s3"
)

// Config holds every runtime setting of the ledger tool.
type Config struct {
	DataDir       string  `mapstructure:"data_dir"`
	SnapshotFile  string  `mapstructure:"snapshot_file"` // relative to DataDir unless absolute
	BackupRetain  int     `mapstructure:"backup_retain"`
	Currency      string  `mapstructure:"currency"`
	DefaultBonus  float64 `mapstructure:"default_bonus"`
	AuthAttempts  int     `mapstructure:"auth_attempts"`
	LogLevel      string  `mapstructure:"log_level"`
	SyncBackend   string  `mapstructure:"sync_backend"` // none, git or s3
	GitRemote     string  `mapstructure:"git_remote"`
	S3Bucket      string  `mapstructure:"s3_bucket"`
	S3Key         string  `mapstructure:"s3_key"`
	S3Region      string  `mapstructure:"s3_region"`
	S3EndpointURL string  `mapstructure:"s3_endpoint_url"` // empty in prod, LocalStack URL in dev
}

// SnapshotPath returns the absolute path of the snapshot file.
func (c *Config) SnapshotPath() string {
	if filepath.IsAbs(c.SnapshotFile) {
		return c.SnapshotFile
	}
	return filepath.Join(c.DataDir, c.SnapshotFile)
}

// Load reads the configuration. Environment variables win over the optional
// config file (LEDGER_CONFIG or <data dir>/config.yaml), which wins over
// defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	v.SetDefault("data_dir", filepath.Join(home, ".phoneledger"))
	v.SetDefault("snapshot_file", "phone_accounts.json")
	v.SetDefault("backup_retain", 10)
	v.SetDefault("currency", "CNY")
	v.SetDefault("default_bonus", 50.0)
	v.SetDefault("auth_attempts", 3)
	v.SetDefault("log_level", "info")
	v.SetDefault("sync_backend", SyncNone)
	v.SetDefault("s3_key", "phone_accounts.json")
	v.SetDefault("s3_region", "us-east-1")

	// Every key must be bound explicitly so AutomaticEnv feeds Unmarshal.
	for _, key := range []string{
		"data_dir", "snapshot_file", "backup_retain", "currency",
		"default_bonus", "auth_attempts", "log_level", "sync_backend",
		"git_remote", "s3_bucket", "s3_key", "s3_region", "s3_endpoint_url",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("could not bind %q: %w", key, err)
		}
	}

	if file := os.Getenv("LEDGER_CONFIG"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config file %q: %w", file, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString("data_dir"))
		if err := v.ReadInConfig(); err != nil {
			// the config file is optional
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				if !os.IsNotExist(err) {
					return nil, fmt.Errorf("could not read config file: %w", err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not parse configuration: %w", err)
	}

	switch cfg.SyncBackend {
	case SyncNone, SyncGit, SyncS3:
	default:
		return nil, fmt.Errorf("unknown sync backend %q (want none, git or s3)", cfg.SyncBackend)
	}
	return &cfg, nil
}
