package trackAdmin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned when the session could not be recovered. The
	// console has already been logged out when a caller sees it.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned by Login on a 401.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden maps a 403 from the backend.
	ErrForbidden = errors.New("forbidden")
	// ErrRegistrationRejected is returned by Register on a 400.
	ErrRegistrationRejected = errors.New("registration rejected")
	// ErrNoSession is returned when an operation needs a stored session.
	ErrNoSession = errors.New("no session")
	// ErrStaleSession means the session changed while the request was in flight
	// and its result was discarded.
	ErrStaleSession = errors.New("stale session")
	// ErrRefreshFailed is returned when the refresh token was rejected or missing.
	ErrRefreshFailed = errors.New("refresh failed")
	// ErrConsoleNotReady is returned when a Console was not built via Builder.
	ErrConsoleNotReady = errors.New("console not initialized")
)

// RequestError describes a failed exchange with the backend.
type RequestError struct {
	Op         string
	StatusCode int
	// Transient marks failures where no usable response arrived.
	Transient bool
	Err       error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", e.Op, e.StatusCode)
	default:
		return e.Op
	}
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsTransient reports whether err is a network-level failure that left the
// session untouched.
func IsTransient(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Transient
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest
	}
	return 0
}

// ValidationError carries field-level errors from a 400 response.
type ValidationError struct {
	Op      string
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Op + ": " + e.Summary()
}

// Summary renders the message and field errors on one line, fields sorted.
func (e *ValidationError) Summary() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, len(e.Fields)+1)
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	if len(parts) == 0 {
		return "validation failed"
	}
	return strings.Join(parts, "; ")
}

func isTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return IsTransient(err)
}
