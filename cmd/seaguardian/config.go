package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/seaguardian/seaguardian/internal/socketrpc"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	defaultAPIAddr        = "127.0.0.1:3080"
	defaultQueryTimeout   = 30 * time.Second
	defaultAlertRetention = 30 // days, 0 = disabled
	defaultBackupInterval = 6 * time.Hour
	defaultBackupKeep     = 5
	defaultLogLevel       = "info"
)

// appConfig is the service's runtime configuration.
type appConfig struct {
	DBPath         string        `mapstructure:"db-path"`
	SocketPath     string        `mapstructure:"socket-path"`
	APIEnabled     bool          `mapstructure:"api-enabled"`
	APIAddr        string        `mapstructure:"api-addr"`
	QueryTimeout   time.Duration `mapstructure:"query-timeout"`
	AlertRetention int           `mapstructure:"alert-retention"`
	FleetFile      string        `mapstructure:"fleet-file"`
	BackupEnabled  bool          `mapstructure:"backup-enabled"`
	BackupInterval time.Duration `mapstructure:"backup-interval"`
	BackupDir      string        `mapstructure:"backup-dir"`
	BackupKeep     int           `mapstructure:"backup-keep"`
	LogLevel       string        `mapstructure:"log-level"`
	LogFile        string        `mapstructure:"log-file"`
	ConfigPath     string        `mapstructure:"-"`
}

// registerFlags adds the flags that may override config file values.
func registerFlags(fs *pflag.FlagSet) {
	fs.String("db-path", "", "DuckDB database file (empty config value keeps the default)")
	fs.String("socket-path", "", "unix socket the dashboard connects to")
	fs.Bool("api-enabled", true, "serve the HTTP API")
	fs.String("api-addr", defaultAPIAddr, "HTTP API listen address")
	fs.String("fleet-file", "", "fleet registry YAML file")
	fs.String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")
}

func loadConfig(configPath string, flags *pflag.FlagSet) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("SEAGUARDIAN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("db-path", filepath.Join(home, ".local", "share", "seaguardian", "seaguardian.duckdb"))
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("api-enabled", true)
	v.SetDefault("api-addr", defaultAPIAddr)
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("alert-retention", defaultAlertRetention)
	v.SetDefault("fleet-file", filepath.Join(home, ".config", "seaguardian", "fleet.yml"))
	v.SetDefault("backup-enabled", false)
	v.SetDefault("backup-interval", defaultBackupInterval)
	v.SetDefault("backup-dir", filepath.Join(home, ".local", "share", "seaguardian", "backups"))
	v.SetDefault("backup-keep", defaultBackupKeep)
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("log-file", filepath.Join(home, ".local", "state", "seaguardian", "seaguardian.log"))

	if flags != nil {
		for _, name := range []string{"db-path", "socket-path", "api-enabled", "api-addr", "fleet-file", "log-level"} {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(name, f); err != nil {
				return cfg, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "seaguardian", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	if _, err := os.Stat(cfg.ConfigPath); err != nil {
		cfg.ConfigPath = ""
	}

	if cfg.AlertRetention < 0 {
		return cfg, fmt.Errorf("invalid alert-retention: %d", cfg.AlertRetention)
	}
	if cfg.BackupEnabled && cfg.BackupKeep <= 0 {
		return cfg, fmt.Errorf("invalid backup-keep: %d", cfg.BackupKeep)
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, fmt.Errorf("invalid log-level: %w", err)
	}

	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.FleetFile = expandHome(cfg.FleetFile, home)
	cfg.BackupDir = expandHome(cfg.BackupDir, home)
	cfg.LogFile = expandHome(cfg.LogFile, home)

	return cfg, nil
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
