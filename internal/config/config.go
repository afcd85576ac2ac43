// Package config loads the bot configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mcoot/scrimbot/internal/model"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
	StorageRedis    = "redis"
)

// Config is the process configuration
type Config struct {
	// Discord
	BotToken            string `env:"DISCORD_BOT_TOKEN,required,notEmpty"`
	GuildID             string `env:"DISCORD_GUILD_ID,required,notEmpty"`
	AdminPanelChannelID string `env:"ADMIN_PANEL_CHANNEL_ID,required,notEmpty"`
	LinkPanelChannelID  string `env:"LINK_PANEL_CHANNEL_ID,required,notEmpty"`
	ResultsChannelID    string `env:"RESULTS_CHANNEL_ID,required,notEmpty"`

	// Modes without an announcement channel are disabled
	SoloAnnounceID string `env:"SOLO_ANNOUNCE_ID"`
	DuoAnnounceID  string `env:"DUO_ANNOUNCE_ID"`
	TrioAnnounceID string `env:"TRIO_ANNOUNCE_ID"`
	SoloLimit      int    `env:"SOLO_LIMIT" envDefault:"100"`
	DuoLimit       int    `env:"DUO_LIMIT" envDefault:"50"`
	TrioLimit      int    `env:"TRIO_LIMIT" envDefault:"33"`

	// Identity services, lookups are disabled when unset
	YouTubeAPIKey      string `env:"YOUTUBE_API_KEY"`
	TwitchClientID     string `env:"TWITCH_CLIENT_ID"`
	TwitchClientSecret string `env:"TWITCH_CLIENT_SECRET"`

	// Storage
	StorageType string   `env:"STORAGE_TYPE" envDefault:"postgres"`
	DatabaseURL string   `env:"DATABASE_URL"`
	Supabase    Supabase `envPrefix:"SUPABASE_DB_"`
	SQLitePath  string   `env:"SQLITE_PATH" envDefault:"scrimbot.db"`
	RedisURL    string   `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	// HTTP
	Port int `env:"PORT" envDefault:"8080"`

	// Timings
	SanctionDuration      time.Duration `env:"SANCTION_DURATION" envDefault:"10m"`
	SanctionSweepInterval time.Duration `env:"SANCTION_SWEEP_INTERVAL" envDefault:"1m"`
	ModePromptTimeout     time.Duration `env:"MODE_PROMPT_TIMEOUT" envDefault:"60s"`

	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

// Supabase holds the split Postgres coordinates used by hosted deployments
type Supabase struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"5432"`
	Name     string `env:"NAME" envDefault:"postgres"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
}

// Load reads the configuration from the process environment
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from the given variables only
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.StorageType {
	case StorageMemory, StorageSQLite, StorageRedis:
	case StoragePostgres:
		if c.PostgresDSN() == "" {
			errs = append(errs, errors.New("postgres storage needs DATABASE_URL or SUPABASE_DB_HOST"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_TYPE %q", c.StorageType))
	}
	for name, limit := range map[string]int{"SOLO_LIMIT": c.SoloLimit, "DUO_LIMIT": c.DuoLimit, "TRIO_LIMIT": c.TrioLimit} {
		if limit <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.TwitchClientID != "" && c.TwitchClientSecret == "" {
		errs = append(errs, errors.New("TWITCH_CLIENT_SECRET is required with TWITCH_CLIENT_ID"))
	}
	return errors.Join(errs...)
}

// PostgresDSN returns DATABASE_URL, or a URL built from the SUPABASE_DB_ parts
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.Supabase.Host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Supabase.User, c.Supabase.Password),
		Host:     net.JoinHostPort(c.Supabase.Host, c.Supabase.Port),
		Path:     "/" + c.Supabase.Name,
		RawQuery: "sslmode=require",
	}
	return u.String()
}

// Modes returns the mode table with the configured channels and limits
func (c *Config) Modes() []model.ModeConfig {
	modes := model.DefaultModes()
	for i := range modes {
		switch modes[i].Mode {
		case model.ModeSolo:
			modes[i].AnnounceChannelID, modes[i].Limit = c.SoloAnnounceID, c.SoloLimit
		case model.ModeDuo:
			modes[i].AnnounceChannelID, modes[i].Limit = c.DuoAnnounceID, c.DuoLimit
		case model.ModeTrio:
			modes[i].AnnounceChannelID, modes[i].Limit = c.TrioAnnounceID, c.TrioLimit
		}
	}
	return modes
}

// TwitchEnabled returns true if Twitch credentials are configured
func (c *Config) TwitchEnabled() bool {
	return c.TwitchClientID != ""
}

// YouTubeEnabled returns true if a YouTube API key is configured
func (c *Config) YouTubeEnabled() bool {
	return c.YouTubeAPIKey != ""
}
