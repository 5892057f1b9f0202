// Package config loads runtime settings from .valora.yaml, VALORA_* environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Errors returned by Load and Config checks.
var (
	ErrMissingCredentials = errors.New("missing Spotify credentials: set VALORA_SPOTIFY_CLIENT_ID and VALORA_SPOTIFY_CLIENT_SECRET (or SPOTIFY_ID and SPOTIFY_SECRET)")
	ErrInvalid            = errors.New("invalid configuration")
)

// Catalog sources.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// SpotifyConfig holds the Spotify application credentials.
type SpotifyConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// CatalogConfig says where songs come from.
type CatalogConfig struct {
	Source    string `mapstructure:"source"`
	Path      string `mapstructure:"path"`
	LikedPath string `mapstructure:"liked_path"`
	Watch     bool   `mapstructure:"watch"`
}

// LastFMConfig holds the Last.fm API key used during import.
type LastFMConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// ImportConfig tunes the catalog import pipeline.
type ImportConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	Clusters    int `mapstructure:"clusters"`
}

// Config holds all runtime configuration.
type Config struct {
	Addr        string        `mapstructure:"addr"`
	RedirectURL string        `mapstructure:"redirect_url"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	DatabaseURL string        `mapstructure:"database_url"`
	RedisURL    string        `mapstructure:"redis_url"`
	Spotify     SpotifyConfig `mapstructure:"spotify"`
	Catalog     CatalogConfig `mapstructure:"catalog"`
	LastFM      LastFMConfig  `mapstructure:"lastfm"`
	Import      ImportConfig  `mapstructure:"import"`
}

// Init points viper at the environment and, if present, a config file. An
// empty path looks for .valora.yaml in the working and home directories.
func Init(path, home string) error {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName(".valora")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home != "" {
			viper.AddConfigPath(home)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment or flags.
func Load() (Config, error) {
	viper.SetEnvPrefix("VALORA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("addr", "127.0.0.1:8080")
	viper.SetDefault("redirect_url", "http://127.0.0.1:8080/callback")
	viper.SetDefault("session_ttl", 5*time.Minute)
	viper.SetDefault("database_url", "")
	viper.SetDefault("redis_url", "")
	viper.SetDefault("catalog.source", SourceCSV)
	viper.SetDefault("catalog.path", "valora_database.csv")
	viper.SetDefault("catalog.liked_path", "Liked_Songs_Spotify.csv")
	viper.SetDefault("catalog.watch", false)
	viper.SetDefault("lastfm.api_key", "")
	viper.SetDefault("import.concurrency", 5)
	viper.SetDefault("import.clusters", 8)

	// SPOTIFY_ID and SPOTIFY_SECRET are the names spotifyauth reads by default.
	_ = viper.BindEnv("spotify.client_id", "VALORA_SPOTIFY_CLIENT_ID", "SPOTIFY_ID")
	_ = viper.BindEnv("spotify.client_secret", "VALORA_SPOTIFY_CLIENT_SECRET", "SPOTIFY_SECRET")
	_ = viper.BindEnv("lastfm.api_key", "VALORA_LASTFM_API_KEY", "LASTFM_API_KEY")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Catalog.Source {
	case SourceCSV:
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: catalog.source=postgres needs database_url", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown catalog.source %q", ErrInvalid, c.Catalog.Source)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: session_ttl must be positive", ErrInvalid)
	}
	if c.Import.Concurrency < 1 {
		return fmt.Errorf("%w: import.concurrency must be at least 1", ErrInvalid)
	}
	if c.Import.Clusters < 1 {
		return fmt.Errorf("%w: import.clusters must be at least 1", ErrInvalid)
	}
	return nil
}

// RequireSpotify reports ErrMissingCredentials unless both Spotify
// credentials are set.
func (c Config) RequireSpotify() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}
