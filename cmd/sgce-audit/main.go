// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the sgce-audit CLI, which renders the
// rubric evaluation of class sessions from the SGCE backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/sgce-audit/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Set

// rootCmd is the base command for the sgce-audit CLI.
var rootCmd = &cobra.Command{
	Use:   "sgce-audit",
	Short: "Rubric evaluation views for SGCE class sessions",
	Long: `sgce-audit joins the rubric criteria catalog with the evaluation results
of a class session and shows one row per criterion, in catalog order.
Criteria without a result are shown with "—".

Use rubric to inspect the catalog, evaluate to render sessions, archive to
keep local snapshots for offline use, and serve to expose the same views
over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(); err != nil {
			return fmt.Errorf("setting up logging: %w", err)
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			slog.Debug("loaded secrets", "keys", s.Keys())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./sgce-audit.yaml or ~/.config/sgce-audit/sgce-audit.yaml)")
	pf.String("base-url", "", "SGCE backend base URL")
	pf.String("data-dir", "", "base directory for the local archive (contains index/)")
	pf.String("rubric-file", "", "read the criteria catalog from a YAML or JSON file")
	pf.Bool("builtin-rubric", false, "use the built-in two-criterion catalog")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: console or json")

	bindFlag("feed.base_url", pf.Lookup("base-url"))
	bindFlag("archive.data_dir", pf.Lookup("data-dir"))
	bindFlag("rubric.file", pf.Lookup("rubric-file"))
	bindFlag("rubric.builtin", pf.Lookup("builtin-rubric"))
	bindFlag("logging.level", pf.Lookup("log-level"))
	bindFlag("logging.format", pf.Lookup("log-format"))

	setDefaults()
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: reading .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sgce-audit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sgce-audit"))
		}
	}

	viper.SetEnvPrefix("SGCE_AUDIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setupLogging() error {
	var level slog.Level
	switch viper.GetString("logging.level") {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level: %s", viper.GetString("logging.level"))
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch viper.GetString("logging.format") {
	case "console":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format: %s", viper.GetString("logging.format"))
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

func main() {
	os.Exit(run())
}

// run executes the root command under a signal-aware context and returns
// the process exit code.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
