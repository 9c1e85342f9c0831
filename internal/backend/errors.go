package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/seven011/searchgate/internal/types"
)

// BackendError describes a failed call to the 0711 search service. Message
// is short and safe to surface to gateway clients: it never contains the
// backend hostname, credential, or response body.
type BackendError struct {
	Type       types.ErrorType `json:"type"`
	Message    string          `json:"message"`
	StatusCode int             `json:"status_code,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

func (e *BackendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] %s (HTTP %d)", e.Type, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// ClientMessage returns the redacted description used as the error envelope
// details field.
func (e *BackendError) ClientMessage() string {
	return e.Message
}

func newBackendError(errType types.ErrorType, message string) *BackendError {
	return &BackendError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// ClassifyHTTPStatus maps a non-2xx backend status to a typed error.
func ClassifyHTTPStatus(statusCode int) *BackendError {
	err := &BackendError{
		StatusCode: statusCode,
		Timestamp:  time.Now(),
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		err.Type = types.ErrorTypeValidation
		err.Message = "search backend rejected the gateway credentials"
	case http.StatusNotFound:
		err.Type = types.ErrorTypeValidation
		err.Message = "search backend endpoint or collection not found"
	case http.StatusRequestTimeout:
		err.Type = types.ErrorTypeNetworkTimeout
		err.Message = "search backend request timed out"
	case http.StatusTooManyRequests:
		err.Type = types.ErrorTypeRateLimit
		err.Message = "search backend rate limit reached"
	default:
		err.Type = types.ErrorTypeUpstream
		err.Message = fmt.Sprintf("search backend returned HTTP %d", statusCode)
	}

	return err
}

// ClassifyTransportError maps a connection-level failure to a typed error
// with a message that does not leak the backend address.
func ClassifyTransportError(cause error) *BackendError {
	if errors.Is(cause, context.DeadlineExceeded) {
		return newBackendError(types.ErrorTypeNetworkTimeout, "search backend request timed out")
	}
	if errors.Is(cause, context.Canceled) {
		return newBackendError(types.ErrorTypeNetworkTimeout, "search backend request was cancelled")
	}

	msg := cause.Error()
	switch {
	case strings.Contains(msg, "timeout"):
		return newBackendError(types.ErrorTypeNetworkTimeout, "search backend request timed out")
	case strings.Contains(msg, "connection refused"):
		return newBackendError(types.ErrorTypeUnknown, "search backend refused the connection")
	case strings.Contains(msg, "no such host"):
		return newBackendError(types.ErrorTypeUnknown, "search backend host could not be resolved")
	default:
		return newBackendError(types.ErrorTypeUnknown, "search backend is unreachable")
	}
}

// ClassifyBodyError marks an upstream response that could not be decoded.
func ClassifyBodyError() *BackendError {
	return newBackendError(types.ErrorTypeMalformedBody, "search backend returned a malformed response body")
}
