package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultAPIKeyHeader is used when the config file does not name one.
const defaultAPIKeyHeader = "X-API-Key"

// SecurityConfig is the YAML security section: how user bearer tokens
// are verified, which header carries the site API key, and which
// endpoints skip authentication entirely.
type SecurityConfig struct {
	Security struct {
		JWT struct {
			SecretEnv   string `yaml:"secret_env"`
			ExpiryHours int    `yaml:"expiry_hours"`
		} `yaml:"jwt"`
		Site struct {
			APIKeyHeader string `yaml:"api_key_header"`
		} `yaml:"site"`
		PublicEndpoints []string `yaml:"public_endpoints"`
	} `yaml:"security"`
}

// LoadSecurityConfig reads and validates the security YAML. The path
// comes from the command line or a compiled-in default, never from
// request input.
func LoadSecurityConfig(path string) (*SecurityConfig, error) {
	// #nosec G304 -- path is provided by trusted source (CLI arg or config), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg SecurityConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Security.Site.APIKeyHeader == "" {
		cfg.Security.Site.APIKeyHeader = defaultAPIKeyHeader
	}

	if cfg.Security.JWT.SecretEnv == "" {
		return nil, fmt.Errorf("config validation failed: jwt secret_env is required")
	}
	if cfg.Security.JWT.ExpiryHours <= 0 {
		return nil, fmt.Errorf("config validation failed: jwt expiry_hours must be positive")
	}

	return &cfg, nil
}

// GetJWTSecretEnv names the environment variable holding the signing
// secret; the secret itself never appears in the YAML.
func (c *SecurityConfig) GetJWTSecretEnv() string {
	return c.Security.JWT.SecretEnv
}

// GetJWTExpiryHours returns the bearer token lifetime in hours.
func (c *SecurityConfig) GetJWTExpiryHours() int {
	return c.Security.JWT.ExpiryHours
}

// GetSiteAPIKeyHeader returns the HTTP header carrying the site API key.
func (c *SecurityConfig) GetSiteAPIKeyHeader() string {
	return c.Security.Site.APIKeyHeader
}

// GetPublicEndpoints lists paths served without authentication.
func (c *SecurityConfig) GetPublicEndpoints() []string {
	return c.Security.PublicEndpoints
}
