package pagination

// CalculateOffset converts a 1-based page number to a SQL OFFSET.
func CalculateOffset(page, limit int) int {
	return (page - 1) * limit
}

// CalculateTotalPages is ceil(total/limit). An empty listing still
// counts as one page, so page=1 of an empty history is valid.
func CalculateTotalPages(total int64, limit int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
