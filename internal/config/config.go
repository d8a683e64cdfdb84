package config

import (
	"fmt"
	"time"
)

// Config represents the dev server configuration
type Config struct {
	Server      ServerConfig  `yaml:"server"`
	Auth        AuthConfig    `yaml:"auth"`
	Uploads     UploadsConfig `yaml:"uploads"`
	Logging     LoggingConfig `yaml:"logging"`
	Environment string        `yaml:"environment" default:"local"` // local, dev, test
	SeedDemo    bool          `yaml:"seed_demo"`                   // load sample clients, bookings and messages
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host      string `yaml:"host" default:"localhost"`
	Port      int    `yaml:"port" default:"4153"`
	PublicURL string `yaml:"public_url"` // base for upload URLs; derived from the request when empty
	NodeID    int64  `yaml:"node_id" default:"1"`
	// SweepSchedule is the cron schedule for purging expired refresh sessions
	SweepSchedule string `yaml:"sweep_schedule" default:"@every 5m"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWT   JWTConfig   `yaml:"jwt"`
	Admin AdminConfig `yaml:"admin"`
}

// JWTConfig holds access and refresh token configuration
type JWTConfig struct {
	SigningKey      string        `yaml:"signing_key"`                     // Secret key for signing access tokens
	AccessLifetime  time.Duration `yaml:"access_lifetime" default:"15m"`   // Access token lifetime
	RefreshLifetime time.Duration `yaml:"refresh_lifetime" default:"720h"` // Refresh token lifetime, default 30 days
}

// AdminConfig is the account created at startup
type AdminConfig struct {
	Email    string `yaml:"email" default:"admin@eventdesk.local"`
	Name     string `yaml:"name" default:"Administrator"`
	Password string `yaml:"password"`
}

// UploadsConfig holds file upload configuration
type UploadsConfig struct {
	Dir               string   `yaml:"dir" default:"./uploads"`
	MaxBytes          int64    `yaml:"max_bytes" default:"10485760"` // 10 MiB
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" default:"info"`  // Log level: debug, info, warn, error
	Format string `yaml:"format" default:"text"` // Log format: json, text
}

// Address returns host:port for the listener
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Default returns the configuration used when no file is found
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "localhost",
			Port:          4153,
			NodeID:        1,
			SweepSchedule: "@every 5m",
		},
		Auth: AuthConfig{
			JWT: JWTConfig{
				AccessLifetime:  15 * time.Minute,
				RefreshLifetime: 30 * 24 * time.Hour,
			},
			Admin: AdminConfig{
				Email: "admin@eventdesk.local",
				Name:  "Administrator",
			},
		},
		Uploads: UploadsConfig{
			Dir:               "./uploads",
			MaxBytes:          10 << 20,
			AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".pdf"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Environment: "local",
	}
}
