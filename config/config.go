package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. MARQUEE_TMDB_API_KEY
	EnvPrefix = "MARQUEE"

	appDir = ".marquee"
)

// Load loads the configuration from file, .env and the environment.
//
// With an explicit configPath the file must exist. Otherwise the standard
// locations are searched and a missing file is fine, so that a setup using
// only environment variables works.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The catalog's own variable name is honoured as well
	if err := v.BindEnv("tmdb.api_key", EnvPrefix+"_TMDB_API_KEY", "TMDB_API_KEY"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, appDir))
		}

		v.AddConfigPath("/etc/marquee/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv exports the variables of a .env file that are not already set.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	return nil
}

// DefaultSessionPath is where the session id is kept unless configured
func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(appDir, "session.yaml")
	}
	return filepath.Join(home, appDir, "session.yaml")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// TMDB defaults
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.site_url", "https://www.themoviedb.org")
	v.SetDefault("tmdb.image_base_url", "https://image.tmdb.org/t/p")
	v.SetDefault("tmdb.timeout", 30*time.Second)

	v.SetDefault("session.path", DefaultSessionPath())

	v.SetDefault("membership.verify_writes", true)

	// Display defaults
	v.SetDefault("display.output", "table")
	v.SetDefault("display.color", true)
	v.SetDefault("display.limit", 20)
	v.SetDefault("display.poster_size", "w342")
	v.SetDefault("display.show_poster", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.TMDB.APIKey == "" || cfg.TMDB.APIKey == "your-api-key-here" {
		return fmt.Errorf("tmdb.api_key must be set to a valid API key (or set TMDB_API_KEY)")
	}

	for key, raw := range map[string]string{
		"tmdb.base_url":       cfg.TMDB.BaseURL,
		"tmdb.site_url":       cfg.TMDB.SiteURL,
		"tmdb.image_base_url": cfg.TMDB.ImageBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an http(s) URL: %q", key, raw)
		}
	}

	if cfg.TMDB.Timeout <= 0 {
		return fmt.Errorf("tmdb.timeout must be positive")
	}

	if strings.TrimSpace(cfg.Session.Path) == "" {
		return fmt.Errorf("session.path is required")
	}

	for name := range cfg.Filter {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, " @") {
			return fmt.Errorf("invalid filter name: %q", name)
		}
	}

	validOutputs := map[string]bool{
		"table": true,
		"json":  true,
	}
	if !validOutputs[cfg.Display.Output] {
		return fmt.Errorf("invalid display output: %s (must be 'table' or 'json')", cfg.Display.Output)
	}

	if cfg.Display.Limit < 0 {
		return fmt.Errorf("display.limit must not be negative")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
