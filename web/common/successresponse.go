package common

// SuccessResponse wraps every 2xx payload under a data key so clients
// unwrap responses uniformly.
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Data: data,
	}
}

// NewEmptyResponse acknowledges a mutation that has no body to return.
func NewEmptyResponse() *SuccessResponse {
	return NewSuccessResponse(struct{}{})
}
