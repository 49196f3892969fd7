// Package config loads application configuration from a YAML file with
// environment-variable expansion and overrides.
//
// Secrets never live in the file itself: the YAML references them as
// ${EMAIL_PASSWORD}-style placeholders, which config.Expand resolves from
// the environment at load time. A missing SMTP password is not an error
// here — the reminder dispatcher reports it as a configuration error at
// send time, so the rest of the app keeps working without mail.
package config

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/config"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Garden   GardenConfig   `yaml:"garden"`
	Reminder ReminderConfig `yaml:"reminder"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type SMTPConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
	UseTLS    bool   `yaml:"use_tls"` // true = STARTTLS (587), false = SSL (465)
}

type GardenConfig struct {
	// Shared growing space: when true, any authenticated user may water
	// or delete any plant. When false, only the owner may.
	Shared bool `yaml:"shared"`
}

type ReminderConfig struct {
	// Enabled controls the in-process daily trigger. Disable it when an
	// external scheduler runs cmd/reminder instead.
	Enabled bool `yaml:"enabled"`
	// Schedule is a cron expression; the default fires at the 18:00
	// cutoff. The gate re-checks the cutoff anyway, so an earlier
	// schedule only produces skipped runs.
	Schedule string `yaml:"schedule"`
}

// Load reads the YAML file at CONFIG_PATH (default ./config/base.yaml),
// expands ${ENV_VAR} references, and applies direct env overrides for the
// handful of values that commonly differ per deployment.
func Load() (*Config, error) {
	configPath := getEnv("CONFIG_PATH", "./config/base.yaml")

	provider, err := config.NewYAML(
		config.File(configPath),
		config.Expand(os.LookupEnv),
	)
	if err != nil {
		return nil, fmt.Errorf("config: creating provider: %w", err)
	}

	var cfg Config
	if err := provider.Get(config.Root).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("config: populating: %w", err)
	}

	cfg.overrideFromEnv()
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) overrideFromEnv() {
	if val := os.Getenv("PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Server.Port = port
		}
	}
	if val := os.Getenv("DB_PATH"); val != "" {
		c.Database.Path = val
	}
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.Auth.JWTSecret = val
	}
	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.SMTP.Host = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.SMTP.Port = port
		}
	}
	if val := os.Getenv("EMAIL_ADDRESS"); val != "" {
		c.SMTP.Username = val
		if c.SMTP.FromEmail == "" {
			c.SMTP.FromEmail = val
		}
	}
	if val := os.Getenv("EMAIL_PASSWORD"); val != "" {
		c.SMTP.Password = val
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/plantkeeper.db"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 465
	}
	if c.Reminder.Schedule == "" {
		c.Reminder.Schedule = "0 18 * * *"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
