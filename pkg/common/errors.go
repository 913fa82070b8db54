package common

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned when a 401 forced a logout.
	ErrUnauthorized = errors.New("session expired, please log in again")
	// ErrRefreshUnavailable is the outcome of a refresh attempt when no
	// refresh endpoint is configured.
	ErrRefreshUnavailable = errors.New("token refresh is not available")
	ErrNotConfigured      = errors.New("not configured")
)

// APIError is a non-2xx response, or a 2xx response with success:false.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("admin api: status %d", e.Status)
	}
	return fmt.Sprintf("admin api: %s (status %d)", e.Message, e.Status)
}

// ErrorClass groups failures the way the console surfaces them.
type ErrorClass string

const (
	ClassNone        ErrorClass = ""
	ClassNetwork     ErrorClass = "network"
	ClassAuth        ErrorClass = "auth"
	ClassValidation  ErrorClass = "validation"
	ClassApplication ErrorClass = "application"
)

// Validator is implemented by client-side validation failures.
type Validator interface {
	error
	ValidationFailed() bool
}

// Classify maps an error returned by the client, a service or a page action
// to its class.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassNone
	}
	if errors.Is(err, ErrUnauthorized) {
		return ClassAuth
	}
	var v Validator
	if errors.As(err, &v) && v.ValidationFailed() {
		return ClassValidation
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return ClassApplication
	}
	return ClassNetwork
}

// Message returns the text to show the operator for err.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return http.StatusText(apiErr.Status)
	}
	return err.Error()
}
