// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that call the backend.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "sgce-audit/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FeedConfig holds settings for the rubric and session feeds.
type FeedConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the backend root, e.g. "https://back-sgce.onrender.com".
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Token is an optional bearer token sent with every feed request.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// MaxRetries is the number of retries on HTTP 429/503 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ArchiveConfig holds settings for the local snapshot archive.
type ArchiveConfig struct {
	// DataDir is the base directory for the archive (contains index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// ServerConfig holds settings for the HTTP adapter.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// RubricConfig selects where the criteria catalog comes from. The feed is
// used unless one of the fields is set.
type RubricConfig struct {
	// File reads the catalog from a local YAML or JSON file.
	File string `json:"file,omitempty" yaml:"file,omitempty"`

	// Builtin serves the default two-criterion catalog.
	Builtin bool `json:"builtin,omitempty" yaml:"builtin,omitempty"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format"`
}

// Config groups all component configurations.
type Config struct {
	Feed    FeedConfig    `json:"feed" yaml:"feed"`
	Rubric  RubricConfig  `json:"rubric" yaml:"rubric"`
	Archive ArchiveConfig `json:"archive" yaml:"archive"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}
