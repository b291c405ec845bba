package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vietddude/topup/internal/infra/transport"
)

// APIError is the uniform error shape returned by every resource call.
type APIError struct {
	Message string         `json:"message"`
	Status  int            `json:"status,omitempty"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`

	cause error
}

func (e *APIError) Error() string {
	switch {
	case e.Status > 0 && e.Code != "":
		return fmt.Sprintf("api error %d [%s]: %s", e.Status, e.Code, e.Message)
	case e.Status > 0:
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("api error: %s", e.Message)
	}
}

func (e *APIError) Unwrap() error { return e.cause }

// IsNotFound reports a 404 APIError.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsUnauthorized reports a 401 APIError or an ended session.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized || errors.Is(err, transport.ErrSessionExpired)
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// envelope is the backend error body: {message, code?, details?}. The
// storefront backend also answers {"error": "..."}.
type envelope struct {
	Message string         `json:"message"`
	Error   string         `json:"error"`
	Code    any            `json:"code"`
	Details map[string]any `json:"details"`
	Errors  map[string]any `json:"errors"`
}

// fromResponse builds an APIError from a non-2xx response.
func fromResponse(resp *transport.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}

	var env envelope
	if len(resp.Body) > 0 && json.Unmarshal(resp.Body, &env) == nil {
		apiErr.Message = strings.TrimSpace(firstNonEmpty(env.Message, env.Error))
		if env.Code != nil {
			apiErr.Code = strings.TrimSpace(fmt.Sprint(env.Code))
		}
		apiErr.Details = env.Details
		if apiErr.Details == nil && len(env.Errors) > 0 {
			apiErr.Details = env.Errors
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("request failed with status code %d", resp.StatusCode)
		if text := http.StatusText(resp.StatusCode); text != "" {
			apiErr.Message += " (" + text + ")"
		}
	}
	return apiErr
}

// fromTransport wraps a failure where no usable response was received.
func fromTransport(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	out := &APIError{Message: err.Error(), cause: err}
	if errors.Is(err, transport.ErrSessionExpired) {
		out.Status = http.StatusUnauthorized
		out.Code = "SESSION_EXPIRED"
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
