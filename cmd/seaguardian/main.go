package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "seaguardian",
		Short: "SeaGuardian fleet state service",
		Long: `seaguardian keeps the fleet state (vessels, alerts, catch log) in DuckDB
and serves it to the dashboard over a unix socket and to external feeds over HTTP.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath, cmd.Flags())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("SeaGuardian - Fleet State Service\n  Version:    %s\n  Commit:     %s\n  Built:      %s\n  Go version: %s\n",
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
