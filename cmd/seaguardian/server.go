package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/seaguardian/seaguardian/internal/backup"
	"github.com/seaguardian/seaguardian/internal/duckdb"
	"github.com/seaguardian/seaguardian/internal/fleet"
	"github.com/seaguardian/seaguardian/internal/httpserver"
	"github.com/seaguardian/seaguardian/internal/socketrpc"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// runServer opens the store and serves it until SIGINT or SIGTERM.
func runServer(parent context.Context, cfg appConfig) error {
	if parent == nil {
		parent = context.Background()
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := duckdb.NewStore(cfg.DBPath,
		duckdb.WithQueryTimeout(cfg.QueryTimeout),
		duckdb.WithLogger(logger.Named("duckdb")),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	defer store.Close()

	retentionCleaner := duckdb.NewRetentionCleaner(store, duckdb.RetentionConfig{
		RetentionDays: cfg.AlertRetention,
		Logger:        logger.Named("retention"),
	})
	if retentionCleaner != nil {
		defer retentionCleaner.Stop()
	}

	backupManager, err := backup.NewManager(store, backup.Config{
		Enabled:  cfg.BackupEnabled && cfg.DBPath != "",
		Interval: cfg.BackupInterval,
		LocalDir: cfg.BackupDir,
		KeepLast: cfg.BackupKeep,
		Logger:   logger.Named("backup"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize backups: %w", err)
	}
	if backupManager != nil {
		defer backupManager.Stop()
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	watcher := fleet.NewWatcher(cfg.FleetFile, store, logger.Named("fleet"))
	if err := watcher.Sync(ctx); err != nil {
		logger.Warn("fleet registry not loaded", zap.String("path", cfg.FleetFile), zap.Error(err))
	}

	if cfg.APIEnabled {
		apiServer := httpserver.NewServer(cfg.APIAddr, store, logger.Named("http"))
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiServer.Stop()
	}

	sockServer := socketrpc.NewServer(cfg.SocketPath, store, logger.Named("socketrpc"))
	if err := sockServer.Start(); err != nil {
		return fmt.Errorf("failed to start socket server: %w", err)
	}
	defer sockServer.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		logger.Info("shutdown requested")
		cancel()

		deadline := time.NewTimer(shutdownTimeout)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		_ = os.Remove(cfg.SocketPath)
		os.Exit(1)
	}()

	printStartupBanner(cfg)
	logger.Info("service started",
		zap.String("db", cfg.DBPath),
		zap.String("socket", cfg.SocketPath),
		zap.Bool("api", cfg.APIEnabled),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := watcher.Run(gctx); err != nil {
			// The service keeps running on the vessels it already has.
			logger.Warn("fleet watcher stopped", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server: errgroup exited with error", zap.Error(err))
		return err
	}
	logger.Info("service stopped")
	return nil
}

func printStartupBanner(cfg appConfig) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")
	row := func(mark, label, value string) string {
		return fmt.Sprintf("    %s  %-14s %s", mark, label, value)
	}

	logo := cyan.Bold(true).Render(`
    ╔═╗╔═╗╔═╗╔═╗╦ ╦╔═╗╦═╗╔╦╗╦╔═╗╔╗╔
    ╚═╗║╣ ╠═╣║ ╦║ ║╠═╣╠╦╝ ║║║╠═╣║║║
    ╚═╝╚═╝╩ ╩╚═╝╚═╝╩ ╩╩╚══╩╝╩╩ ╩╝╚╝`)

	separator := dim.Render("    ─────────────────────────────────")
	lines := []string{"", logo, "    " + dim.Render("v"+version), "", separator, ""}

	lines = append(lines, bold.Render("    Gateway"), "")
	if cfg.APIEnabled {
		lines = append(lines, row(check, "HTTP API", cyan.Render(cfg.APIAddr)))
	} else {
		lines = append(lines, row(dot, "HTTP API", dim.Render("disabled")))
	}
	lines = append(lines, row(check, "Unix Socket", cyan.Render(shortenPath(cfg.SocketPath))), "")

	lines = append(lines, bold.Render("    Storage"), "")
	if cfg.DBPath != "" {
		lines = append(lines, row(check, "Storage", dim.Render(shortenPath(cfg.DBPath))))
	} else {
		lines = append(lines, row(check, "Storage", dim.Render("in-memory")))
	}
	if cfg.BackupEnabled && cfg.DBPath != "" {
		lines = append(lines, row(check, "Snapshots", dim.Render(shortenPath(cfg.BackupDir))))
	} else {
		lines = append(lines, row(dot, "Snapshots", dim.Render("disabled")))
	}
	if cfg.AlertRetention > 0 {
		lines = append(lines, row(check, "Retention", dim.Render(fmt.Sprintf("%d days", cfg.AlertRetention))))
	} else {
		lines = append(lines, row(dot, "Retention", dim.Render("disabled")))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Config"), "")
	lines = append(lines, row(check, "Fleet File", dim.Render(shortenPath(cfg.FleetFile))))
	if cfg.ConfigPath != "" {
		lines = append(lines, row(check, "Config File", dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, row(dot, "Config File", dim.Render("default (no file)")))
	}
	lines = append(lines, row(check, "Log File", dim.Render(shortenPath(cfg.LogFile))))

	lines = append(lines, "", separator, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"), "")

	fmt.Println(strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(home, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.Join("~", rel)
	}
	return path
}
