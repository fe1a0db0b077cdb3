package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"coreader-client/internal/dto"

	"github.com/valyala/fasthttp"
)

// ErrStreamClosed is returned by Stream.Receive when the server closed the
// channel cleanly without sending a terminal frame.
var ErrStreamClosed = errors.New("stream closed by server")

// StatusError is a non-2xx backend response.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned HTTP %d: %s", e.Code, e.Reason())
}

// Reason is the backend detail text, falling back to the status text.
func (e *StatusError) Reason() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fasthttp.StatusMessage(e.Code)
}

func newStatusError(code int, body []byte) *StatusError {
	var errResp dto.ErrorResponse
	if len(body) > 0 {
		_ = json.Unmarshal(body, &errResp)
	}
	return &StatusError{Code: code, Detail: errResp.DetailText()}
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound
}

// Reason extracts the user facing failure reason from any transport error.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Reason()
	}
	return err.Error()
}
