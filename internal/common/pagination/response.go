package pagination

// Response wraps one page of items together with its placement in the
// listing. T is the item DTO, so history and pending listings share
// the same envelope shape.
type Response[T any] struct {
	Data       []T      `json:"data"`
	Pagination Metadata `json:"pagination"`
}

// NewResponse builds the envelope for one served page.
func NewResponse[T any](data []T, metadata Metadata) Response[T] {
	return Response[T]{
		Data:       data,
		Pagination: metadata,
	}
}
