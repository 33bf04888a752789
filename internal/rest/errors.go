package rest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ErrTimeout marks calls that exceeded the configured API timeout. Recorded
// as a per-target failure; the run continues.
var ErrTimeout = errors.New("request timed out")

// ErrNetwork marks transport-level failures (DNS, connection refused, reset).
var ErrNetwork = errors.New("network error")

// APIError is a non-2xx response from the upstream API. The response body is
// kept (truncated) so failure records carry the upstream message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// classify converts a transport error into the run's error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

// StatusOf extracts the HTTP status from an error when it carries one.
func StatusOf(err error) int {
	var aerr *APIError
	if errors.As(err, &aerr) {
		return aerr.Status
	}
	return 0
}

// IsTimeout reports whether the error is a timeout per the taxonomy.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
