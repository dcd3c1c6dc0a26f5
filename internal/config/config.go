// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"db"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	WhatsApp WhatsAppConfig `mapstructure:"whatsapp"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN            string `mapstructure:"dsn"`
	MaxConns       int32  `mapstructure:"max_conns"`
	MinConns       int32  `mapstructure:"min_conns"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// PubSubConfig identifies the job topic.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// WhatsAppConfig holds the Meta Graph API credentials and endpoints.
type WhatsAppConfig struct {
	APIToken       string `mapstructure:"api_token"`
	VerifyToken    string `mapstructure:"verify_token"`
	PhoneNumberID  string `mapstructure:"phone_number_id"`
	GraphBaseURL   string `mapstructure:"graph_base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ScraperConfig points at the forecast site.
type ScraperConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SURFBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("db.max_conns", 2)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("db.timeout_seconds", 5)
	v.SetDefault("whatsapp.graph_base_url", "https://graph.facebook.com/v19.0")
	v.SetDefault("whatsapp.timeout_seconds", 10)
	v.SetDefault("scraper.base_url", "https://gosurf.co.il")
	v.SetDefault("scraper.user_agent", "gosurf-bot/0.1")
	v.SetDefault("scraper.timeout_seconds", 10)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.DB.MaxConns <= 0 {
		return fmt.Errorf("db.max_conns must be > 0")
	}
	if c.DB.MinConns > c.DB.MaxConns {
		return fmt.Errorf("db.min_conns must not exceed db.max_conns")
	}
	if c.Scraper.BaseURL == "" {
		return fmt.Errorf("scraper.base_url is required")
	}
	if c.Scraper.TimeoutSeconds <= 0 {
		return fmt.Errorf("scraper.timeout_seconds must be > 0")
	}
	if c.WhatsApp.TimeoutSeconds <= 0 {
		return fmt.Errorf("whatsapp.timeout_seconds must be > 0")
	}
	return nil
}

// DBTimeout returns the per-operation database deadline.
func (c Config) DBTimeout() time.Duration {
	return time.Duration(c.DB.TimeoutSeconds) * time.Second
}

// ScrapeTimeout returns the outbound scrape deadline.
func (c Config) ScrapeTimeout() time.Duration {
	return time.Duration(c.Scraper.TimeoutSeconds) * time.Second
}

// SendTimeout returns the outbound reply deadline.
func (c Config) SendTimeout() time.Duration {
	return time.Duration(c.WhatsApp.TimeoutSeconds) * time.Second
}
