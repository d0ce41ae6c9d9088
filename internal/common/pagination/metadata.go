package pagination

// Metadata describes where a page sits within the full listing.
type Metadata struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"` // 1-based
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}
