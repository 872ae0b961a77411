package tracker

import (
	"encoding/json"
	"fmt"
)

// APIError is a non-2xx response from the tracking server. Detail carries
// the server's error message when the body held one; Body keeps the raw
// response for everything else.
type APIError struct {
	StatusCode int
	Detail     string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("tracking API error [%d]: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("tracking API error [%d]: %s", e.StatusCode, string(e.Body))
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: body}
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && len(errResp.Detail) > 0 {
		var s string
		if err := json.Unmarshal(errResp.Detail, &s); err == nil {
			apiErr.Detail = s
		} else {
			// Structured validation details are kept verbatim.
			apiErr.Detail = string(errResp.Detail)
		}
	}
	return apiErr
}
