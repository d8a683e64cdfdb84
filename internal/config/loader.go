package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v2"
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

// DefaultConfigPaths defines the default locations to search for configuration files
var DefaultConfigPaths = []string{
	"./devserver.yaml",
	"./devserver.yml",
	"./configs/devserver.yaml",
	"./configs/devserver.yml",
	"/etc/eventdesk/devserver.yaml",
}

// Load loads the configuration from the specified file or default locations
func Load(configPath string) (*Config, error) {
	config := Default()

	// If no config path is provided, search in default locations
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if !fileExists(configPath) {
			return nil, fmt.Errorf("config file %q not found", configPath)
		}
		slog.Info("loading config", slog.String("component", "config"), slog.String("path", configPath))
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Expand environment variables in the config
		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		slog.Info("no config file found, using defaults", slog.String("component", "config"))
	}

	applyEnvOverrides(config)

	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides lets secrets come from the environment without a file
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("EVENTDESK_JWT_SIGNING_KEY"); v != "" {
		config.Auth.JWT.SigningKey = v
	}
	if v := os.Getenv("EVENTDESK_ADMIN_PASSWORD"); v != "" {
		config.Auth.Admin.Password = v
	}
}

// findConfigFile searches for a configuration file in default locations
func findConfigFile() string {
	for _, path := range DefaultConfigPaths {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// validate performs basic validation on the configuration
func validate(config *Config) error {
	if config.Server.Port < 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}
	if len(config.Auth.JWT.SigningKey) < 16 {
		return fmt.Errorf("auth.jwt.signing_key must be at least 16 characters")
	}
	if config.Auth.JWT.AccessLifetime <= 0 {
		return fmt.Errorf("auth.jwt.access_lifetime must be positive")
	}
	if config.Auth.JWT.RefreshLifetime < config.Auth.JWT.AccessLifetime {
		return fmt.Errorf("auth.jwt.refresh_lifetime must not be shorter than access_lifetime")
	}
	if config.Auth.Admin.Email == "" || config.Auth.Admin.Password == "" {
		return fmt.Errorf("auth.admin.email and auth.admin.password are required")
	}
	if config.Uploads.MaxBytes <= 0 {
		return fmt.Errorf("uploads.max_bytes must be positive")
	}
	if config.Server.NodeID < 0 || config.Server.NodeID > 1023 {
		return fmt.Errorf("server.node_id must be between 0 and 1023")
	}
	if config.Server.SweepSchedule != "" {
		if _, err := cron.ParseStandard(config.Server.SweepSchedule); err != nil {
			return fmt.Errorf("server.sweep_schedule: %w", err)
		}
	}
	return nil
}
