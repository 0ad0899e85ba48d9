package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

//go:embed config.example.toml
var exampleConf []byte

// MaxTrackLimit is the largest page size the top-tracks endpoint accepts.
const MaxTrackLimit = 50

// Environment variables recognized by [Config.ApplyEnv].
const (
	EnvSpotifyClientID     = "SPOTIFY_CLIENT_ID"
	EnvSpotifyClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvSpotifyRefreshToken = "SPOTIFY_REFRESH_TOKEN"
	EnvSpotifyRedirectURI  = "SPOTIFY_REDIRECT_URI"
	EnvNotionToken         = "NOTION_TOKEN"
	EnvNotionDatabaseID    = "NOTION_DATABASE_ID"
)

var timeRanges = []string{"short_term", "medium_term", "long_term"}

// Config represents the application configuration loaded from a TOML file and the environment.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Notion      NotionConfig      `toml:"notion"`
	Server      ServerConfig      `toml:"server"`
	Sync        SyncConfig        `toml:"sync"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and endpoints.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RefreshToken string `toml:"refresh_token"`
	RedirectURI  string `toml:"redirect_uri"`
	AuthURL      string `toml:"auth_url,omitempty"`
	TokenURL     string `toml:"token_url,omitempty"`
	APIBaseURL   string `toml:"api_base_url"`
}

// NotionConfig contains the target database settings.
type NotionConfig struct {
	Token      string        `toml:"token"`
	DatabaseID string        `toml:"database_id"`
	BaseURL    string        `toml:"base_url"`
	Version    string        `toml:"version"`
	Properties PropertyNames `toml:"properties"`
}

// PropertyNames maps track fields to column names in the Notion database.
type PropertyNames struct {
	Title       string `toml:"title"`
	Artist      string `toml:"artist"`
	Album       string `toml:"album"`
	URL         string `toml:"url"`
	Duration    string `toml:"duration"`
	Popularity  string `toml:"popularity"`
	ReleaseDate string `toml:"release_date"`
	AlbumCover  string `toml:"album_cover"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SyncConfig controls the top-tracks request.
type SyncConfig struct {
	Limit     int    `toml:"limit"`
	TimeRange string `toml:"time_range"`
}

// LoadConfig reads a TOML configuration file and layers it over [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	config.applyDefaults()

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyDefaults()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadDotEnv loads variables from a .env file into the process environment.
//
// Variables already set in the environment win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides credentials with values found through lookup (usually [os.LookupEnv]).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for key, field := range map[string]*string{
		EnvSpotifyClientID:     &c.Credentials.Spotify.ClientID,
		EnvSpotifyClientSecret: &c.Credentials.Spotify.ClientSecret,
		EnvSpotifyRefreshToken: &c.Credentials.Spotify.RefreshToken,
		EnvSpotifyRedirectURI:  &c.Credentials.Spotify.RedirectURI,
		EnvNotionToken:         &c.Notion.Token,
		EnvNotionDatabaseID:    &c.Notion.DatabaseID,
	} {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
		}
	}
}

// ValidateAuth checks the settings needed by the interactive login flow.
// The redirect URI must point at the callback server.
func (c *Config) ValidateAuth() error {
	if err := missing(map[string]string{
		EnvSpotifyClientID:     c.Credentials.Spotify.ClientID,
		EnvSpotifyClientSecret: c.Credentials.Spotify.ClientSecret,
		EnvSpotifyRedirectURI:  c.Credentials.Spotify.RedirectURI,
	}); err != nil {
		return err
	}
	return c.validateRedirect()
}

// validateRedirect compares the redirect URI with [ServerConfig]. Port 0 binds any free port and
// skips the comparison; the caller then derives the redirect from the bound address.
func (c *Config) validateRedirect() error {
	redirect := c.Credentials.Spotify.RedirectURI
	u, err := url.Parse(redirect)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%w: redirect_uri %q is not an absolute URL", ErrInvalidConfig, redirect)
	}
	if u.Path != "/callback" {
		return fmt.Errorf("%w: redirect_uri %q must end in /callback", ErrInvalidConfig, redirect)
	}
	if c.Server.Port == 0 {
		return nil
	}

	listen := fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
	if u.Port() != strconv.Itoa(c.Server.Port) {
		return fmt.Errorf("%w: redirect_uri %q does not match the callback server at %s", ErrInvalidConfig, redirect, listen)
	}
	if host := c.Server.Host; host != "" && host != "0.0.0.0" && host != u.Hostname() {
		return fmt.Errorf("%w: redirect_uri %q does not match the callback server at %s", ErrInvalidConfig, redirect, listen)
	}
	return nil
}

// ValidateFetch checks the settings needed to read top tracks.
func (c *Config) ValidateFetch() error {
	if err := missing(map[string]string{
		EnvSpotifyClientID:     c.Credentials.Spotify.ClientID,
		EnvSpotifyClientSecret: c.Credentials.Spotify.ClientSecret,
		EnvSpotifyRefreshToken: c.Credentials.Spotify.RefreshToken,
	}); err != nil {
		return err
	}
	return c.Sync.validate()
}

// ValidateSync checks every setting the sync pipeline needs. All missing keys are reported at once.
func (c *Config) ValidateSync() error {
	if err := missing(map[string]string{
		EnvSpotifyClientID:     c.Credentials.Spotify.ClientID,
		EnvSpotifyClientSecret: c.Credentials.Spotify.ClientSecret,
		EnvSpotifyRefreshToken: c.Credentials.Spotify.RefreshToken,
		EnvNotionToken:         c.Notion.Token,
		EnvNotionDatabaseID:    c.Notion.DatabaseID,
	}); err != nil {
		return err
	}
	return c.Sync.validate()
}

func (s SyncConfig) validate() error {
	if s.Limit < 1 || s.Limit > MaxTrackLimit {
		return fmt.Errorf("%w: sync.limit must be between 1 and %d, got %d", ErrInvalidConfig, MaxTrackLimit, s.Limit)
	}
	if s.TimeRange == "" || slices.Contains(timeRanges, s.TimeRange) {
		return nil
	}
	return fmt.Errorf("%w: sync.time_range must be one of %s, got %q", ErrInvalidConfig, strings.Join(timeRanges, ", "), s.TimeRange)
}

func (c *Config) applyDefaults() {
	if c.Credentials.Spotify.AuthURL == "" {
		c.Credentials.Spotify.AuthURL = spotifyauth.AuthURL
	}
	if c.Credentials.Spotify.TokenURL == "" {
		c.Credentials.Spotify.TokenURL = spotifyauth.TokenURL
	}
}

// missing returns [ErrMissingConfig] naming every empty value, sorted for stable output.
func missing(values map[string]string) error {
	var names []string
	for name, v := range values {
		if strings.TrimSpace(v) == "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	slices.Sort(names)
	return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(names, ", "))
}
