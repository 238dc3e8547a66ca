package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/seaguardian/seaguardian/internal/model"
	"github.com/seaguardian/seaguardian/internal/socketrpc"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// cliConfig holds only dashboard-relevant configuration.
type cliConfig struct {
	SocketPath     string        `mapstructure:"socket-path"`
	UpdateInterval time.Duration `mapstructure:"update-interval"`
	VesselID       string        `mapstructure:"vessel-id"`
	OutboxSize     int           `mapstructure:"outbox-size"`
	OutboxFile     string        `mapstructure:"outbox-file"`
	GeofenceKm     int           `mapstructure:"geofence-km"`
	WeatherAlerts  bool          `mapstructure:"weather-alerts"`
	SOSTestMode    bool          `mapstructure:"sos-test-mode"`
	LogFile        string        `mapstructure:"log-file"`
}

func registerFlags(fs *pflag.FlagSet) {
	fs.String("socket-path", "", "override socket path to connect to the seaguardian service")
	fs.String("vessel-id", model.DefaultVesselID, "vessel this dashboard runs on")
	fs.Duration("update-interval", model.DefaultUpdateInterval, "snapshot refresh interval")
	fs.Bool("sos-test-mode", false, "confirm SOS without raising an alert")
}

func loadCLIConfig(configPath string, flags *pflag.FlagSet) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("SEAGUARDIAN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("update-interval", model.DefaultUpdateInterval)
	v.SetDefault("vessel-id", model.DefaultVesselID)
	v.SetDefault("outbox-size", model.DefaultOutboxSize)
	v.SetDefault("outbox-file", filepath.Join(home, ".local", "state", "seaguardian", "outbox.journal"))
	v.SetDefault("geofence-km", model.DefaultGeofenceKm)
	v.SetDefault("weather-alerts", true)
	v.SetDefault("sos-test-mode", false)
	v.SetDefault("log-file", filepath.Join(home, ".local", "state", "seaguardian", "seaguardian-tui.log"))

	if flags != nil {
		for _, name := range []string{"socket-path", "vessel-id", "update-interval", "sos-test-mode"} {
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

	if cfg.UpdateInterval <= 0 {
		return cfg, fmt.Errorf("invalid update-interval: %s", cfg.UpdateInterval)
	}
	if strings.TrimSpace(cfg.VesselID) == "" {
		return cfg, errors.New("vessel-id is required")
	}
	for _, p := range []*string{&cfg.LogFile, &cfg.OutboxFile} {
		if strings.HasPrefix(*p, "~/") {
			*p = filepath.Join(home, (*p)[2:])
		}
	}
	return cfg, nil
}
