package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
// Pre-compiled at initialization for optimal performance (<1μs per operation).
var pathPatterns = []*PathPattern{
	// Site-scoped routes keyed by the caller's site key
	{Pattern: regexp.MustCompile(`^/api/sites/[^/]+/notify$`), Template: "/api/sites/:key/notify"},
	{Pattern: regexp.MustCompile(`^/api/sites/[^/]+/pending/\d+$`), Template: "/api/sites/:key/pending/:id"},
	{Pattern: regexp.MustCompile(`^/api/sites/[^/]+/pending$`), Template: "/api/sites/:key/pending"},

	// Notification history routes
	{Pattern: regexp.MustCompile(`^/api/notifications/\d+/read$`), Template: "/api/notifications/:id/read"},
	{Pattern: regexp.MustCompile(`^/api/notifications/\d+$`), Template: "/api/notifications/:id"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label cardinality explosion.
// It converts paths with site keys or IDs (e.g., /api/sites/myapp/notify) to template
// format (e.g., /api/sites/:key/notify). Static paths remain unchanged.
//
// Examples:
//
//	NormalizePath("/api/sites/myapp/notify")      // "/api/sites/:key/notify"
//	NormalizePath("/api/sites/myapp/pending/42")  // "/api/sites/:key/pending/:id"
//	NormalizePath("/api/notifications/7/read")    // "/api/notifications/:id/read"
//	NormalizePath("/api/notifications")           // "/api/notifications" (unchanged)
//	NormalizePath("/healthz")                     // "/healthz" (unchanged)
//	NormalizePath("/metrics")                     // "/metrics" (unchanged)
//	NormalizePath("/unknown/path/123")            // "/unknown/path/123" (no match, return original)
//
// Query parameters and trailing slashes are handled:
//
//	NormalizePath("/api/sites/myapp/pending?page=1")  // "/api/sites/:key/pending"
//	NormalizePath("/api/sites/myapp/pending/")        // "/api/sites/:key/pending"
func NormalizePath(path string) string {
	// Strip query parameters if present
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	// Strip trailing slash if present (except for root path)
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	// Try to match against known patterns
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	// No match found, return original path
	// This is safe - static paths like /healthz, /metrics and
	// /api/notifications pass through unchanged
	return path
}
