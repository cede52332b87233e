package main

import (
	"fmt"

	"github.com/rusenback/dockerconsole/internal/config"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dockerconsole",
		Short: "Terminal console for Docker containers",
		Long: `dockerconsole shows the containers of a Docker host as a grid of cards,
with live CPU, memory and network statistics for the selected container.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Config file (default ~/.config/dockerconsole/config.toml)")
	flags.String("host", "", "Docker daemon address")
	flags.Int("count", 0, "Number of cards to show, 0 shows all")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	flags.String("log-file", "", "Write logs to this file")
	flags.String("db", "", "Stats history database path")
	flags.Bool("no-history", false, "Do not record stats history")

	cmd.AddCommand(newConfigCmd())
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dockerconsole",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dockerconsole version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and applies the flags that were set
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if flags.Changed("host") {
		cfg.Docker.Host, _ = flags.GetString("host")
	}
	if flags.Changed("count") {
		cfg.Grid.Count, _ = flags.GetInt("count")
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("log-file") {
		cfg.Log.File, _ = flags.GetString("log-file")
	}
	if flags.Changed("db") {
		cfg.Storage.Path, _ = flags.GetString("db")
	}
	if off, _ := flags.GetBool("no-history"); off {
		cfg.Storage.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}
