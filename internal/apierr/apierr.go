// Package apierr classifies API client failures into user-facing notices.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

type Category string

const (
	CategoryAuth       Category = "auth"
	CategoryValidation Category = "validation"
	CategoryServer     Category = "server"
	CategoryNetwork    Category = "network"
	CategoryUnknown    Category = "unknown"
)

// ActionLogin tells the caller to send the user to the login flow.
const ActionLogin = "login"

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Message)
}

// Notice is what the user sees for a failed call.
type Notice struct {
	Category Category
	Title    string
	Message  string
	Action   string
}

func (n Notice) String() string {
	if n.Message == "" {
		return n.Title
	}
	return n.Title + ": " + n.Message
}

// Classify buckets err. Validation notices carry the server's message since
// it usually names the bad field.
func Classify(err error) Notice {
	if err == nil {
		return Notice{}
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch code := httpErr.StatusCode; {
		case code == 401 || code == 403:
			return Notice{
				Category: CategoryAuth,
				Title:    "Authentication required",
				Message:  "Your session has expired or you do not have access. Please log in again.",
				Action:   ActionLogin,
			}
		case code == 400 || code == 404 || code == 409 || code == 422:
			msg := httpErr.Message
			if msg == "" {
				msg = "The request was rejected. Check your input and try again."
			}
			return Notice{Category: CategoryValidation, Title: "Invalid request", Message: msg}
		case code >= 500:
			return Notice{
				Category: CategoryServer,
				Title:    "Server error",
				Message:  "Something went wrong on our side. Please try again later.",
			}
		}
		return Notice{Category: CategoryUnknown, Title: "Unexpected error", Message: httpErr.Error()}
	}

	if isNetwork(err) {
		return Notice{
			Category: CategoryNetwork,
			Title:    "Network error",
			Message:  "Could not reach the server. Check your connection and try again.",
		}
	}
	return Notice{Category: CategoryUnknown, Title: "Unexpected error", Message: err.Error()}
}

func isNetwork(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
