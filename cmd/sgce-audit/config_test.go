// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/sgce-audit/internal/feed"
	"github.com/pdiddy/sgce-audit/internal/rubric"
	"github.com/pdiddy/sgce-audit/internal/secrets"
	"github.com/pdiddy/sgce-audit/pkg/types"
)

func TestRubricSource(t *testing.T) {
	client := feed.New(types.FeedConfig{BaseURL: "http://backend"})

	src, err := rubricSource(types.Config{}, client)
	require.NoError(t, err)
	assert.Equal(t, "feed:http://backend", src.Name())

	src, err = rubricSource(types.Config{Rubric: types.RubricConfig{File: "r.yaml"}}, client)
	require.NoError(t, err)
	assert.Equal(t, rubric.FileSource{Path: "r.yaml"}, src)

	src, err = rubricSource(types.Config{Rubric: types.RubricConfig{Builtin: true}}, client)
	require.NoError(t, err)
	assert.Equal(t, "builtin", src.Name())

	_, err = rubricSource(types.Config{Rubric: types.RubricConfig{File: "r.yaml", Builtin: true}}, client)
	assert.Error(t, err)
}

func TestLoadConfigTokenFromSecrets(t *testing.T) {
	prev := loadedSecrets
	t.Cleanup(func() { loadedSecrets = prev })

	loadedSecrets = secrets.Set{secrets.APIToken: "from-file"}
	assert.Equal(t, "from-file", loadConfig().Feed.Token)

	viper.Set("feed.token", "from-config")
	t.Cleanup(func() { viper.Set("feed.token", "") })
	assert.Equal(t, "from-config", loadConfig().Feed.Token)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadConfig()
	assert.Equal(t, defaultBaseURL, cfg.Feed.BaseURL)
	assert.Equal(t, 5, cfg.Feed.MaxRetries)
	assert.Equal(t, "data", cfg.Archive.DataDir)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestSetupLogging(t *testing.T) {
	t.Cleanup(func() {
		viper.Set("logging.level", "info")
		viper.Set("logging.format", "console")
	})

	viper.Set("logging.level", "debug")
	viper.Set("logging.format", "json")
	assert.NoError(t, setupLogging())

	viper.Set("logging.level", "loud")
	assert.Error(t, setupLogging())

	viper.Set("logging.level", "info")
	viper.Set("logging.format", "xml")
	assert.Error(t, setupLogging())
}

func TestRunReturnsExitCode(t *testing.T) {
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	rootCmd.SetArgs([]string{"version"})
	assert.Equal(t, 0, run())

	rootCmd.SetArgs([]string{"no-such-command"})
	assert.Equal(t, 1, run())
}
