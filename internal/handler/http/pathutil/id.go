package pathutil

import (
	"errors"
	"strconv"
)

// ErrInvalidID is returned when the ID in the URL path is invalid.
var ErrInvalidID = errors.New("invalid id")

// ParseID parses a positive integer ID from a URL path segment, as
// returned by http.Request.PathValue.
//
// Returns ErrInvalidID if the segment is not a positive integer.
//
// Example:
//
//	id, err := pathutil.ParseID(r.PathValue("id"))
func ParseID(segment string) (int64, error) {
	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
