package httperrors

import (
	"net/http"

	"github.com/txix-open/isp-kit/json"
)

const (
	CodeRateLimited       = "RATE_LIMITED"
	CodeResourceSaturated = "RESOURCE_SATURATED"
	CodeInternal          = "INTERNAL_ERROR"
)

type HttpError struct {
	statusCode  int
	errorCode   string
	userMessage string
	retryAfter  int
	headers     map[string]string
	err         error
}

func New(statusCode int, errorCode string, userMessage string, internalError error) HttpError {
	return HttpError{
		statusCode:  statusCode,
		errorCode:   errorCode,
		userMessage: userMessage,
		retryAfter:  -1,
		err:         internalError,
	}
}

func (e HttpError) Error() string {
	return e.err.Error()
}

func (e HttpError) WithRetryAfter(seconds int) HttpError {
	e.retryAfter = seconds
	return e
}

func (e HttpError) WithHeader(name string, value string) HttpError {
	headers := make(map[string]string, len(e.headers)+1)
	for k, v := range e.headers {
		headers[k] = v
	}
	headers[name] = value
	e.headers = headers
	return e
}

func (e HttpError) WriteError(w http.ResponseWriter) error {
	for name, value := range e.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.statusCode)

	data := map[string]any{
		"success": false,
		"error":   e.errorCode,
		"message": e.userMessage,
	}
	if e.retryAfter >= 0 {
		data["retryAfter"] = e.retryAfter
	}
	return json.NewEncoder(w).Encode(data)
}
