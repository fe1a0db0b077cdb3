package dto

import "encoding/json"

// ErrorResponse is the backend failure body. Detail is usually a string but
// validation failures carry a structured list, so it is kept raw.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// DetailText returns detail as plain text, or "" when absent.
func (e ErrorResponse) DetailText() string {
	if len(e.Detail) == 0 || string(e.Detail) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}
	return string(e.Detail)
}
