package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
)

// RequestError describes a failed call to the pennywise API. StatusCode is
// zero when no response was received.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

// Unwrap returns the transport error, if any.
func (e *RequestError) Unwrap() error { return e.Err }

// Category classifies an error for presentation.
type Category string

const (
	CategoryNetwork    Category = "network"
	CategoryAuth       Category = "auth"
	CategoryValidation Category = "validation"
	CategoryServer     Category = "server"
	CategoryGeneric    Category = "generic"
)

// Presentation is the user-facing alert for an error.
type Presentation struct {
	Category Category
	Title    string
	Message  string
	CanRetry bool
}

var presentations = map[Category]Presentation{
	CategoryNetwork: {
		Category: CategoryNetwork,
		Title:    "Connection problem",
		Message:  "We couldn't reach the server. Check your connection and try again.",
		CanRetry: true,
	},
	CategoryAuth: {
		Category: CategoryAuth,
		Title:    "Session expired",
		Message:  "Please sign in again to continue.",
		CanRetry: false,
	},
	CategoryValidation: {
		Category: CategoryValidation,
		Title:    "Check your input",
		Message:  "Some of the information you entered was rejected.",
		CanRetry: false,
	},
	CategoryServer: {
		Category: CategoryServer,
		Title:    "Server error",
		Message:  "Something went wrong on our side. Please try again in a moment.",
		CanRetry: true,
	},
	CategoryGeneric: {
		Category: CategoryGeneric,
		Title:    "Something went wrong",
		Message:  "An unexpected error occurred.",
		CanRetry: false,
	},
}

// Categorize maps err onto the client error taxonomy.
func Categorize(err error) Category {
	if err == nil {
		return CategoryGeneric
	}

	var reqErr *RequestError
	if stderrors.As(err, &reqErr) {
		if reqErr.StatusCode == 0 {
			return CategoryNetwork
		}
		return categorizeStatus(reqErr.StatusCode)
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return categorizeStatus(appErr.StatusCode)
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return CategoryNetwork
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return CategoryNetwork
	}
	return CategoryGeneric
}

func categorizeStatus(status int) Category {
	switch {
	case status == http.StatusUnauthorized:
		return CategoryAuth
	case status == http.StatusBadRequest,
		status == http.StatusConflict,
		status == http.StatusUnprocessableEntity:
		return CategoryValidation
	case status >= 500:
		return CategoryServer
	default:
		return CategoryGeneric
	}
}

// Describe returns the alert for err. Validation errors carry the server's
// message when one was supplied.
func Describe(err error) Presentation {
	cat := Categorize(err)
	p := presentations[cat]
	if cat == CategoryValidation {
		var reqErr *RequestError
		if stderrors.As(err, &reqErr) && reqErr.Message != "" {
			p.Message = reqErr.Message
		}
	}
	return p
}

// IsStatus reports whether err is a RequestError with the given status.
func IsStatus(err error, status int) bool {
	var reqErr *RequestError
	return stderrors.As(err, &reqErr) && reqErr.StatusCode == status
}

// Retryable reports whether an idempotent read that failed with err may be
// attempted again.
func Retryable(err error) bool {
	switch Categorize(err) {
	case CategoryNetwork, CategoryServer:
		return !stderrors.Is(err, context.Canceled)
	default:
		return false
	}
}
