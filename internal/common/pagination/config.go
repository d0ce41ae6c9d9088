// Package pagination implements offset pagination for the notification
// history and pending-notification listings: query parsing, offset math
// and the paginated response envelope.
package pagination

import (
	envconfig "nolofication/internal/pkg/config"
)

// Config bounds the page and limit query parameters.
type Config struct {
	DefaultPage  int
	DefaultLimit int // applied when the request omits limit
	MaxLimit     int // requests above this are rejected, not clamped
}

// DefaultConfig returns page=1, limit=20, max=100.
func DefaultConfig() Config {
	return Config{
		DefaultPage:  1,
		DefaultLimit: 20,
		MaxLimit:     100,
	}
}

// LoadFromEnv reads PAGINATION_DEFAULT_PAGE, PAGINATION_DEFAULT_LIMIT
// and PAGINATION_MAX_LIMIT. Unset, unparseable or out-of-range values
// keep the defaults.
func LoadFromEnv() Config {
	def := DefaultConfig()
	return Config{
		DefaultPage:  loadEnvPageSize("PAGINATION_DEFAULT_PAGE", def.DefaultPage),
		DefaultLimit: loadEnvPageSize("PAGINATION_DEFAULT_LIMIT", def.DefaultLimit),
		MaxLimit:     loadEnvPageSize("PAGINATION_MAX_LIMIT", def.MaxLimit),
	}
}

func loadEnvPageSize(key string, defaultValue int) int {
	result := envconfig.LoadEnvInt(key, defaultValue, func(v int) error {
		return envconfig.ValidateIntRange(v, 1, 10000)
	})
	return result.Value.(int)
}
