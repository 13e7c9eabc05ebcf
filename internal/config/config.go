// Package config loads Songle's TOML configuration and applies environment
// overrides on top of it.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = "songle.toml"

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverNone   = "none"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Spotify  SpotifyConfig  `toml:"spotify"`
	Storage  StorageConfig  `toml:"storage"`
	Game     GameConfig     `toml:"game"`
	Sessions SessionsConfig `toml:"sessions"`
	Worker   WorkerConfig   `toml:"worker"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string        `toml:"host"`
	Port              int           `toml:"port"`
	StaticDir         string        `toml:"static_dir"`
	ReadHeaderTimeout time.Duration `toml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `toml:"shutdown_timeout"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SpotifyConfig contains Spotify API credentials and client tuning.
type SpotifyConfig struct {
	ClientID          string        `toml:"client_id"`
	ClientSecret      string        `toml:"client_secret"`
	BaseURL           string        `toml:"base_url"`
	TokenURL          string        `toml:"token_url"`
	Market            string        `toml:"market"`
	MaxRetries        int           `toml:"max_retries"`
	RetryBackoffMs    int           `toml:"retry_backoff_ms"`
	RequestsPerSecond float64       `toml:"requests_per_second"`
	Timeout           time.Duration `toml:"timeout"`
}

// Configured reports whether both credentials are present.
func (s SpotifyConfig) Configured() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// StorageConfig selects and tunes the playlist cache.
type StorageConfig struct {
	Driver   string        `toml:"driver"`
	Path     string        `toml:"path"`
	CacheTTL time.Duration `toml:"cache_ttl"`
}

// GameConfig tunes the guessing rules.
type GameConfig struct {
	MaxAttempts    int   `toml:"max_attempts"`
	SnippetSeconds []int `toml:"snippet_seconds"`
}

// SnippetLengths converts the configured seconds to durations.
func (g GameConfig) SnippetLengths() []time.Duration {
	out := make([]time.Duration, len(g.SnippetSeconds))
	for i, s := range g.SnippetSeconds {
		out[i] = time.Duration(s) * time.Second
	}
	return out
}

// SessionsConfig controls how long idle hosted games are kept.
type SessionsConfig struct {
	IdleTimeout   time.Duration `toml:"idle_timeout"`
	PruneInterval time.Duration `toml:"prune_interval"`
}

// WorkerConfig sizes the preview measurement pool.
type WorkerConfig struct {
	Enabled   bool `toml:"enabled"`
	Workers   int  `toml:"workers"`
	QueueSize int  `toml:"queue_size"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Load reads path over the defaults and applies environment overrides. An
// empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns a Config with defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile writes the embedded example config to path. It refuses to
// overwrite an existing file.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s must be an integer: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("SPOTIFY_CLIENT_ID", &c.Spotify.ClientID)
	str("SPOTIFY_CLIENT_SECRET", &c.Spotify.ClientSecret)
	str("SPOTIFY_MARKET", &c.Spotify.Market)
	str("STORAGE_DRIVER", &c.Storage.Driver)
	str("STORAGE_PATH", &c.Storage.Path)
	str("LOG_LEVEL", &c.Log.Level)

	return errors.Join(
		num("SPOTIFY_MAX_RETRIES", &c.Spotify.MaxRetries),
		num("SPOTIFY_RETRY_BACKOFF_MS", &c.Spotify.RetryBackoffMs),
		num("PORT", &c.Server.Port),
	)
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for the sqlite driver"))
		}
	case DriverNone:
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	if c.Game.MaxAttempts < 1 {
		errs = append(errs, errors.New("game.max_attempts must be at least 1"))
	}
	if len(c.Game.SnippetSeconds) < c.Game.MaxAttempts {
		errs = append(errs, fmt.Errorf("game.snippet_seconds needs %d entries, has %d", c.Game.MaxAttempts, len(c.Game.SnippetSeconds)))
	}
	for i, s := range c.Game.SnippetSeconds {
		if s <= 0 || (i > 0 && s <= c.Game.SnippetSeconds[i-1]) {
			errs = append(errs, errors.New("game.snippet_seconds must be positive and strictly increasing"))
			break
		}
	}

	if c.Worker.Enabled && c.Worker.Workers < 1 {
		errs = append(errs, errors.New("worker.workers must be at least 1"))
	}
	if c.Spotify.MaxRetries < 0 {
		errs = append(errs, errors.New("spotify.max_retries cannot be negative"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
