package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rusenback/dockerconsole/internal/config"
	"github.com/rusenback/dockerconsole/internal/docker"
	"github.com/rusenback/dockerconsole/internal/logging"
	"github.com/rusenback/dockerconsole/internal/metrics"
	"github.com/rusenback/dockerconsole/internal/storage"
	"github.com/rusenback/dockerconsole/internal/tui"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.OpenFile(cfg.Log.File, level)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := docker.NewClient(docker.Config{
		Host:      cfg.Docker.Host,
		TLSVerify: cfg.Docker.TLSVerify,
		CertPath:  cfg.Docker.CertPath,
		Timeout:   cfg.Docker.Timeout.Duration,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Make sure Docker is running and your user can reach its socket:")
		fmt.Fprintln(os.Stderr, "  sudo systemctl start docker")
		fmt.Fprintln(os.Stderr, "  sudo usermod -aG docker $USER")
		return err
	}
	defer client.Close()

	opts := tui.Options{
		Config:  cfg,
		Client:  client,
		Metrics: metrics.New(),
		Logger:  logger,
	}

	if cfg.Storage.Enabled {
		store, err := storage.Open(storage.Options{
			Path:      cfg.Storage.Path,
			Retention: cfg.Storage.Retention.Duration,
			Logger:    logger,
		})
		if err != nil {
			return fmt.Errorf("open stats history: %w", err)
		}
		defer store.Close()
		opts.History = store
		opts.Metrics.WatchDropped(store.Dropped)
	}

	if cfg.Metrics.Addr != "" {
		srv, err := metrics.Serve(cfg.Metrics.Addr, opts.Metrics, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics shutdown", "error", err)
			}
		}()
	}

	logger.Info("starting console", "host", cfg.Docker.Host, "history", cfg.Storage.Enabled)

	m := tui.NewModel(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(tui.Model); ok {
		fm.Close()
	}
	if err != nil {
		return fmt.Errorf("run console: %w", err)
	}
	return nil
}
