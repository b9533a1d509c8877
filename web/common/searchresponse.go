package common

type Pagination struct {
	Total int64 `json:"total"`
	Limit int   `json:"limit,omitempty"`
}

type SearchResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// NewSearchResponse wraps a list payload. List endpoints cap results
// rather than page, so total counts the rows returned and limit echoes
// the requested cap.
func NewSearchResponse(data interface{}, total int64, limit int) *SearchResponse {
	return &SearchResponse{
		Data: data,
		Pagination: Pagination{
			Total: total,
			Limit: limit,
		},
	}
}
