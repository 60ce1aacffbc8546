package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned when the topic is blank after trimming.
	ErrEmptyQuery = errors.New("empty query")
	// ErrSearchInProgress is returned when a session submits while its
	// previous search is still running.
	ErrSearchInProgress = errors.New("search already in progress")
)

// ConnectionError means the ranking service could not be reached, including
// timeouts.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("ranking service unreachable: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ServiceError means the ranking service answered with a non-200 status.
type ServiceError struct {
	StatusCode int
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ranking service returned status %d", e.StatusCode)
}

// MalformedResponseError means a 200 response whose body could not be turned
// into a ResultSet.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ErrorKind names an error class for API clients and logs.
func ErrorKind(err error) string {
	var (
		connErr *ConnectionError
		svcErr  *ServiceError
		badErr  *MalformedResponseError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuery):
		return "empty_query"
	case errors.Is(err, ErrSearchInProgress):
		return "search_in_progress"
	case errors.As(err, &connErr):
		return "connection"
	case errors.As(err, &svcErr):
		return "service"
	case errors.As(err, &badErr):
		return "malformed_response"
	}
	return "unexpected"
}
