package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the warden
type Config struct {
	Environment string           `mapstructure:"environment"`
	Logging     LoggingConfig    `mapstructure:"logging"`
	Roles       RolesConfig      `mapstructure:"roles"`
	Channels    ChannelsConfig   `mapstructure:"channels"`
	Escalation  EscalationConfig `mapstructure:"escalation"`
	Tickets     TicketConfig     `mapstructure:"tickets"`
	Health      HealthConfig     `mapstructure:"health"`
	Jobs        JobsConfig       `mapstructure:"jobs"`
}

// LoggingConfig holds logger construction settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxAge     int    `mapstructure:"max_age"`  // days
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
	Debug      bool   `mapstructure:"debug"`
}

// RolesConfig names the role IDs the warden cares about
type RolesConfig struct {
	Staff     []string `mapstructure:"staff"`     // may claim any ticket, use moderation commands
	Protected []string `mapstructure:"protected"` // roles/members that must not be pinged
	Bypass    []string `mapstructure:"bypass"`    // exempt from the anti-ping guard
}

// ChannelsConfig holds the destination channel IDs for side effects
type ChannelsConfig struct {
	Infractions string `mapstructure:"infractions"`
	Promotions  string `mapstructure:"promotions"`
	TicketPanel string `mapstructure:"ticket_panel"`
}

// EscalationConfig bounds the anti-ping punishment ladder
type EscalationConfig struct {
	Window      time.Duration `mapstructure:"window"`
	BaseTimeout time.Duration `mapstructure:"base_timeout"`
	MaxTimeout  time.Duration `mapstructure:"max_timeout"`
}

// TicketCategory maps a panel selection key to its archival destination
// and the extra role allowed to claim tickets of that category.
type TicketCategory struct {
	Destination string `mapstructure:"destination"`
	ClaimRole   string `mapstructure:"claim_role"`
}

// TicketConfig holds the ticket panel category table
type TicketConfig struct {
	Categories map[string]TicketCategory `mapstructure:"categories"`
}

// HealthConfig holds the keep-alive HTTP server settings
type HealthConfig struct {
	Port         int    `mapstructure:"port"`
	KeepAliveURL string `mapstructure:"keep_alive_url"`
}

// JobsConfig holds cron expressions for recurring background jobs
type JobsConfig struct {
	KeepAliveSchedule string `mapstructure:"keep_alive_schedule"`
	StatsSchedule     string `mapstructure:"stats_schedule"`
}

// Load reads the configuration file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, rely on defaults and env vars
	}

	v.SetEnvPrefix("WARDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output_path", "logs/warden.log")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_age", 30)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.compress", true)

	// Escalation defaults: 24h offense window, 5m..120m timeout ladder
	v.SetDefault("escalation.window", "24h")
	v.SetDefault("escalation.base_timeout", "5m")
	v.SetDefault("escalation.max_timeout", "120m")

	// Ticket defaults: a single general category so the panel works
	// out of the box
	v.SetDefault("tickets.categories", map[string]map[string]string{
		"support": {"destination": "ticket-archive", "claim_role": ""},
	})

	// Health defaults
	v.SetDefault("health.port", 8080)

	// Job defaults
	v.SetDefault("jobs.keep_alive_schedule", "0 */5 * * * *")
	v.SetDefault("jobs.stats_schedule", "0 0 * * * *")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.validateEscalation(); err != nil {
		return fmt.Errorf("escalation config: %w", err)
	}
	if err := c.validateTickets(); err != nil {
		return fmt.Errorf("tickets config: %w", err)
	}
	if err := c.validateHealth(); err != nil {
		return fmt.Errorf("health config: %w", err)
	}
	return nil
}

func (c *Config) validateEscalation() error {
	if c.Escalation.Window <= 0 {
		return fmt.Errorf("window must be positive")
	}
	if c.Escalation.BaseTimeout <= 0 {
		return fmt.Errorf("base_timeout must be positive")
	}
	if c.Escalation.MaxTimeout < c.Escalation.BaseTimeout {
		return fmt.Errorf("max_timeout (%s) cannot be less than base_timeout (%s)",
			c.Escalation.MaxTimeout, c.Escalation.BaseTimeout)
	}
	return nil
}

func (c *Config) validateTickets() error {
	if len(c.Tickets.Categories) == 0 {
		return fmt.Errorf("at least one ticket category must be configured")
	}
	for key, cat := range c.Tickets.Categories {
		if cat.Destination == "" {
			return fmt.Errorf("category %q has no archive destination", key)
		}
	}
	return nil
}

func (c *Config) validateHealth() error {
	if c.Health.Port <= 0 || c.Health.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", c.Health.Port)
	}
	return nil
}
