// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/sgce-audit/internal/archive"
	"github.com/pdiddy/sgce-audit/internal/audit"
	"github.com/pdiddy/sgce-audit/internal/feed"
	"github.com/pdiddy/sgce-audit/internal/rubric"
	"github.com/pdiddy/sgce-audit/internal/secrets"
	"github.com/pdiddy/sgce-audit/pkg/types"
)

const defaultBaseURL = "https://back-sgce.onrender.com"

func setDefaults() {
	viper.SetDefault("feed.base_url", defaultBaseURL)
	viper.SetDefault("feed.timeout", 30*time.Second)
	viper.SetDefault("feed.user_agent", "sgce-audit/"+version)
	viper.SetDefault("feed.max_retries", 5)
	viper.SetDefault("archive.data_dir", "data")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

func bindFlag(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", key, err))
	}
}

// secretDefault returns value when set, else the loaded secret for key.
func secretDefault(key, value string) string {
	if value != "" {
		return value
	}
	return loadedSecrets.Get(key)
}

// loadConfig assembles the typed configuration from flags, environment,
// config file and defaults, in viper's precedence order.
func loadConfig() types.Config {
	return types.Config{
		Feed: types.FeedConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("feed.timeout"),
				UserAgent: viper.GetString("feed.user_agent"),
			},
			BaseURL:    viper.GetString("feed.base_url"),
			Token:      secretDefault(secrets.APIToken, viper.GetString("feed.token")),
			MaxRetries: viper.GetInt("feed.max_retries"),
		},
		Rubric: types.RubricConfig{
			File:    viper.GetString("rubric.file"),
			Builtin: viper.GetBool("rubric.builtin"),
		},
		Archive: types.ArchiveConfig{DataDir: viper.GetString("archive.data_dir")},
		Server:  types.ServerConfig{Addr: viper.GetString("server.addr")},
		Logging: types.LoggingConfig{
			Level:  viper.GetString("logging.level"),
			Format: viper.GetString("logging.format"),
		},
	}
}

// rubricSource picks the catalog source: a file, the built-in catalog, or
// the feed.
func rubricSource(cfg types.Config, client *feed.Client) (rubric.Source, error) {
	switch {
	case cfg.Rubric.File != "" && cfg.Rubric.Builtin:
		return nil, fmt.Errorf("--rubric-file and --builtin-rubric are mutually exclusive")
	case cfg.Rubric.File != "":
		return rubric.FileSource{Path: cfg.Rubric.File}, nil
	case cfg.Rubric.Builtin:
		return rubric.Builtin(), nil
	}
	return client, nil
}

// newAuditor wires the auditor to the live feeds, or to the archive when
// offline is set. Offline sessions are merged with the catalog version they
// were synced with unless a rubric file or the built-in catalog is chosen.
// The returned close function releases the archive.
func newAuditor(cfg types.Config, offline bool) (*audit.Auditor, func() error, error) {
	if offline {
		store, err := archive.NewStore(cfg.Archive)
		if err != nil {
			return nil, nil, err
		}
		a := &audit.Auditor{Rubric: store, Sessions: store, Catalogs: store}
		if cfg.Rubric.File != "" || cfg.Rubric.Builtin {
			if a.Rubric, err = rubricSource(cfg, nil); err != nil {
				store.Close()
				return nil, nil, err
			}
			a.Catalogs = nil
		}
		return a, store.Close, nil
	}

	client := feed.New(cfg.Feed)
	src, err := rubricSource(cfg, client)
	if err != nil {
		return nil, nil, err
	}
	return &audit.Auditor{Rubric: src, Sessions: client}, func() error { return nil }, nil
}
