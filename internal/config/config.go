// ABOUTME: Configuration loading and parsing for rosterd
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete rosterd configuration
type Config struct {
	Server     ServerConfig   `yaml:"server"`
	Database   DatabaseConfig `yaml:"database"`
	Auth       AuthConfig     `yaml:"auth"`
	Principals []Principal    `yaml:"principals"`
	Logging    LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret        string   `yaml:"jwt_secret"`
	BasicAuthorities []string `yaml:"basic_authorities"`

	TokenValidity time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TokenValidityRaw string `yaml:"token_validity"`
}

// Principal holds a statically provisioned identity
type Principal struct {
	Username    string   `yaml:"username"`
	Password    string   `yaml:"password"`
	Authorities []string `yaml:"authorities"`
	Disabled    bool     `yaml:"disabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// defaultTokenValidity applies when auth.token_validity is not set.
const defaultTokenValidity = 15 * time.Minute

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	if c.Auth.TokenValidity <= 0 {
		return fmt.Errorf("auth.token_validity must be positive")
	}

	if len(c.Principals) == 0 {
		return fmt.Errorf("at least one principal is required")
	}

	for i, p := range c.Principals {
		if p.Username == "" {
			return fmt.Errorf("principals[%d].username is required", i)
		}
		if p.Password == "" {
			return fmt.Errorf("principals[%d].password is required", i)
		}
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Auth.TokenValidityRaw == "" {
		cfg.Auth.TokenValidity = defaultTokenValidity
		return nil
	}

	var err error
	cfg.Auth.TokenValidity, err = time.ParseDuration(cfg.Auth.TokenValidityRaw)
	if err != nil {
		return fmt.Errorf("parsing token_validity %q: %w", cfg.Auth.TokenValidityRaw, err)
	}

	return nil
}
