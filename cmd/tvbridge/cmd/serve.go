package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"tvbridge/internal/app"
	"tvbridge/internal/config"
	"tvbridge/internal/logger"

	"github.com/spf13/cobra"
)

var serveNoWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server and the session bridge",
	Long: `Start the HTTP server and the session bridge worker. The process stops on
SIGINT or SIGTERM after draining queued commands and disconnecting the broker.

When a config file is used it is watched; app.log_level and webhook.secret
apply immediately, other changes need a restart.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "do not reload the config file on change")
}

func runServe(cmd *cobra.Command, args []string) error {
	path := config.ResolvePath(cfgFile)

	var (
		cfg     *config.Config
		watcher *config.Watcher
		err     error
	)
	if path != "" && !serveNoWatch {
		watcher, err = config.Watch(path)
		if err == nil {
			cfg = watcher.Current()
		}
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	source := path
	if source == "" {
		source = "environment"
	}
	logger.Infof("Config loaded (env=%s, source=%s)", cfg.App.Env, source)

	a, err := app.NewApp(cfg, watcher)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}
