package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	TMDB       TMDBConfig       `mapstructure:"tmdb"`
	Session    SessionConfig    `mapstructure:"session"`
	Membership MembershipConfig `mapstructure:"membership"`
	Filter     FilterConfig     `mapstructure:"filter"`
	Display    DisplayConfig    `mapstructure:"display"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// TMDBConfig holds catalog API connection details
type TMDBConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	SiteURL      string        `mapstructure:"site_url"`
	ImageBaseURL string        `mapstructure:"image_base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// SessionConfig controls where the session id is stored
type SessionConfig struct {
	Path string `mapstructure:"path"`
}

// MembershipConfig controls favorite/watchlist writes
type MembershipConfig struct {
	// VerifyWrites re-reads the list after a successful write
	VerifyWrites bool `mapstructure:"verify_writes"`
}

// FilterConfig maps filter names to expressions, usable as --filter @name
type FilterConfig map[string]string

// DisplayConfig controls command output
type DisplayConfig struct {
	Output     string `mapstructure:"output"`
	Color      bool   `mapstructure:"color"`
	Limit      int    `mapstructure:"limit"`
	PosterSize string `mapstructure:"poster_size"`
	ShowPoster bool   `mapstructure:"show_poster"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
