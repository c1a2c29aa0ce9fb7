package services

import (
	"context"
	"errors"
	"ess/internal/client"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindNetworkFailure        ErrorKind = "network_failure"
	KindSiteUnreachable       ErrorKind = "site_unreachable"
	KindInvalidCredentials    ErrorKind = "invalid_credentials"
	KindDeviceMismatch        ErrorKind = "device_mismatch"
	KindAccessDisabled        ErrorKind = "access_disabled"
	KindPasswordResetRequired ErrorKind = "password_reset_required"
	KindValidation            ErrorKind = "validation_error"
	KindServer                ErrorKind = "server_error"
	KindUnauthenticated       ErrorKind = "unauthenticated"
	KindOperationInProgress   ErrorKind = "operation_in_progress"
)

const (
	msgNetwork     = "Network error. Please check your connection."
	msgClearFailed = "Unable to clear stored credentials."
)

// Error is the classified failure returned across the service boundary.
// Message is safe to show to the user as is.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func validationError(message string) *Error {
	return newError(KindValidation, message, nil)
}

// KindOf returns the kind of a classified error, or KindServer otherwise.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Something went wrong. Please try again."
}

// classifyRemote turns a failed ResourceClient or Transport call into a
// classified error. action names what was attempted, e.g. "load holidays".
func classifyRemote(err error, action string) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	if errors.Is(err, client.ErrUnauthenticated) {
		return newError(KindUnauthenticated, "Not authenticated. Please log in.", err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newError(KindNetworkFailure, msgNetwork, err)
	}
	var netErr *client.NetworkError
	if errors.As(err, &netErr) {
		return newError(KindNetworkFailure, msgNetwork, err)
	}
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusUnauthorized {
			return newError(KindUnauthenticated, "Your session has expired. Please log in again.", err)
		}
		if msg := httpErr.ServerMessage(); msg != "" {
			return newError(KindServer, fmt.Sprintf("Failed to %s: %s", action, msg), err)
		}
		return newError(KindServer, fmt.Sprintf("Failed to %s (HTTP %d)", action, httpErr.StatusCode), err)
	}
	return newError(KindServer, fmt.Sprintf("Failed to %s", action), err)
}
