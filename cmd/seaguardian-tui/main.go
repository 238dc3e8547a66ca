package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/seaguardian/seaguardian/internal/journal"
	"github.com/seaguardian/seaguardian/internal/provider"
	"github.com/seaguardian/seaguardian/internal/socketrpc"
	"github.com/seaguardian/seaguardian/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "seaguardian-tui",
		Short:         "SeaGuardian fleet dashboard",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadCLIConfig(configPath, cmd.Flags())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runTUI(cfg)
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("SeaGuardian - Fleet Dashboard\n  Version:    %s\n  Commit:     %s\n  Built:      %s\n  Go version: %s\n",
		version, commit, buildTime, goVersion))

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default is $HOME/.config/seaguardian/config.yml)")
	registerFlags(cmd.Flags())
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newFileLogger logs to path; stdout belongs to the terminal UI.
func newFileLogger(path string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	return config.Build()
}

func runTUI(cfg cliConfig) error {
	logger, err := newFileLogger(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	var outbox *journal.Journal
	if cfg.OutboxFile != "" {
		outbox, err = journal.Open(cfg.OutboxFile)
		if err != nil {
			// Queue in memory only.
			logger.Warn("outbox journal unavailable", zap.String("path", cfg.OutboxFile), zap.Error(err))
			outbox = nil
		} else {
			defer outbox.Close()
		}
	}

	socketPath := cfg.SocketPath
	state := provider.New(func(ctx context.Context) (provider.Remote, error) {
		client, err := socketrpc.Dial(ctx, socketPath)
		if err != nil {
			return nil, err
		}
		return client, nil
	}, provider.Options{
		OutboxSize: cfg.OutboxSize,
		Logger:     logger.Named("provider"),
		Journal:    outbox,
	})
	defer state.Close()

	router := tui.NewRouter(state, tui.Options{
		UpdateInterval: cfg.UpdateInterval,
		VesselID:       cfg.VesselID,
		GeofenceKm:     cfg.GeofenceKm,
		WeatherAlerts:  cfg.WeatherAlerts,
		SOSTestMode:    cfg.SOSTestMode,
		Logger:         logger.Named("tui"),
	})
	logger.Info("dashboard starting", zap.String("socket", socketPath), zap.String("vessel", cfg.VesselID))

	p := tea.NewProgram(router, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
