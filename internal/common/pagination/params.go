package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// Params are the pagination values a listing request resolved to.
type Params struct {
	Page  int // 1-based
	Limit int
}

// ParseQueryParams reads the optional page and limit query parameters,
// starting from the configured defaults. Non-numeric or out-of-range
// values are an error rather than a silent fallback, so a typo never
// quietly serves page one of the history.
func ParseQueryParams(r *http.Request, cfg Config) (Params, error) {
	params := Params{
		Page:  cfg.DefaultPage,
		Limit: cfg.DefaultLimit,
	}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("invalid query parameter: page must be a positive integer")
		}
		params.Page = page
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("invalid query parameter: limit must be between 1 and %d", cfg.MaxLimit)
		}
		params.Limit = limit
	}

	if err := params.Validate(cfg); err != nil {
		return params, fmt.Errorf("invalid query parameter: %w", err)
	}

	return params, nil
}
