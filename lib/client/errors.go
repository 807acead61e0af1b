package client

import (
	"errors"
	"fmt"
)

// GenericMessage is shown when the service gives no usable detail.
const GenericMessage = "Failed to fetch recommendations"

// TransportError means the request never produced a response.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError means the service rejected the shape of the request (422).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ServiceError is any other non-success response.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Message returns the user-visible text for an error returned by Recommend.
func Message(err error) string {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Message
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Message
	}
	return GenericMessage
}

// Outcome names the kind of err for metrics labels.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	var transportErr *TransportError
	var validationErr *ValidationError
	var serviceErr *ServiceError
	switch {
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &serviceErr):
		return "service"
	default:
		return "unknown"
	}
}
