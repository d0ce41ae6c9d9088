package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadSecurityConfig(t *testing.T) {
	// Create a temporary directory for test files
	tmpDir, err := os.MkdirTemp("", "security-config-test")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	tests := []struct {
		name        string
		configYAML  string
		expectError bool
		errorMsg    string
		validate    func(*testing.T, *SecurityConfig)
	}{
		{
			name: "valid config",
			configYAML: `security:
  jwt:
    secret_env: "JWT_SECRET"
    expiry_hours: 24
  site:
    api_key_header: "X-Site-Key"
  public_endpoints:
    - "/healthz"
    - "/metrics"
`,
			expectError: false,
			validate: func(t *testing.T, config *SecurityConfig) {
				if config.Security.JWT.SecretEnv != "JWT_SECRET" {
					t.Errorf("expected secret_env 'JWT_SECRET', got '%s'", config.Security.JWT.SecretEnv)
				}
				if config.Security.JWT.ExpiryHours != 24 {
					t.Errorf("expected expiry_hours 24, got %d", config.Security.JWT.ExpiryHours)
				}
				if config.Security.Site.APIKeyHeader != "X-Site-Key" {
					t.Errorf("expected api_key_header 'X-Site-Key', got '%s'", config.Security.Site.APIKeyHeader)
				}
				if len(config.Security.PublicEndpoints) != 2 {
					t.Errorf("expected 2 public endpoints, got %d", len(config.Security.PublicEndpoints))
				}
			},
		},
		{
			name: "api key header defaults when omitted",
			configYAML: `security:
  jwt:
    secret_env: "JWT_SECRET"
    expiry_hours: 12
  public_endpoints:
    - "/healthz"
`,
			expectError: false,
			validate: func(t *testing.T, config *SecurityConfig) {
				if config.Security.Site.APIKeyHeader != "X-API-Key" {
					t.Errorf("expected default api_key_header 'X-API-Key', got '%s'", config.Security.Site.APIKeyHeader)
				}
			},
		},
		{
			name: "missing jwt secret_env",
			configYAML: `security:
  jwt:
    expiry_hours: 24
  public_endpoints:
    - "/healthz"
`,
			expectError: true,
			errorMsg:    "jwt secret_env is required",
		},
		{
			name: "zero jwt expiry_hours",
			configYAML: `security:
  jwt:
    secret_env: "JWT_SECRET"
    expiry_hours: 0
`,
			expectError: true,
			errorMsg:    "jwt expiry_hours must be positive",
		},
		{
			name: "negative jwt expiry_hours",
			configYAML: `security:
  jwt:
    secret_env: "JWT_SECRET"
    expiry_hours: -1
`,
			expectError: true,
			errorMsg:    "jwt expiry_hours must be positive",
		},
		{
			name:        "malformed yaml",
			configYAML:  "security: [not a mapping",
			expectError: true,
			errorMsg:    "failed to parse config",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, "security_"+string(rune('a'+i))+".yaml")
			if err := os.WriteFile(path, []byte(tt.configYAML), 0o600); err != nil {
				t.Fatal(err)
			}

			config, err := LoadSecurityConfig(path)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got nil")
				}
				if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error to contain %q, got: %v", tt.errorMsg, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, config)
			}
		})
	}
}

func TestLoadSecurityConfig_FileNotFound(t *testing.T) {
	_, err := LoadSecurityConfig("/nonexistent/security.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("expected read error, got: %v", err)
	}
}

func TestSecurityConfig_Getters(t *testing.T) {
	var config SecurityConfig
	config.Security.JWT.SecretEnv = "NOLO_JWT_SECRET"
	config.Security.JWT.ExpiryHours = 48
	config.Security.Site.APIKeyHeader = "X-API-Key"
	config.Security.PublicEndpoints = []string{"/healthz", "/metrics"}

	if got := config.GetJWTSecretEnv(); got != "NOLO_JWT_SECRET" {
		t.Errorf("GetJWTSecretEnv() = %q", got)
	}
	if got := config.GetJWTExpiryHours(); got != 48 {
		t.Errorf("GetJWTExpiryHours() = %d", got)
	}
	if got := config.GetSiteAPIKeyHeader(); got != "X-API-Key" {
		t.Errorf("GetSiteAPIKeyHeader() = %q", got)
	}
	if got := config.GetPublicEndpoints(); len(got) != 2 {
		t.Errorf("GetPublicEndpoints() returned %d entries", len(got))
	}
}
