package api

import (
	"errors"
	"fmt"
)

// Kind classifies an API failure for error-handling policy decisions.
type Kind int

const (
	// KindNetwork means no usable response was received (connection
	// failure, timeout).
	KindNetwork Kind = iota

	// KindUnauthorized is a 401-equivalent response. It triggers the
	// global session teardown policy.
	KindUnauthorized

	// KindValidation is a 4xx response carrying field-level messages
	// that are surfaced verbatim to the user.
	KindValidation

	// KindNotFound is a 404 response.
	KindNotFound

	// KindServer is a 5xx response, rendered as a generic message.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is a classified failure from the FoodBridge API.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string

	// Fields holds per-field validation messages when Kind is
	// KindValidation.
	Fields map[string]string
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api %s error (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api %s error: %s", e.Kind, e.Message)
}

// IsUnauthorized reports whether err (or any error in its chain) is an
// unauthorized API error.
func IsUnauthorized(err error) bool {
	return hasKind(err, KindUnauthorized)
}

// IsValidation reports whether err is a validation API error.
func IsValidation(err error) bool {
	return hasKind(err, KindValidation)
}

// IsNotFound reports whether err is a not-found API error.
func IsNotFound(err error) bool {
	return hasKind(err, KindNotFound)
}

// IsNetwork reports whether err is a network-level API error.
func IsNetwork(err error) bool {
	return hasKind(err, KindNetwork)
}

func hasKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// UserMessage returns the text to show the user for err: validation
// messages verbatim, a generic retry prompt for everything else.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case KindValidation:
			if apiErr.Message != "" {
				return apiErr.Message
			}
		case KindNotFound:
			return "Not found."
		}
	}
	return "Something went wrong. Please try again."
}
