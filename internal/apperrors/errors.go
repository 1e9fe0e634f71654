package apperrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failed pair fetch.
type Kind int

const (
	// KindUnknown is reported for errors that were not produced by this package.
	KindUnknown Kind = iota
	// KindInputValidation is returned for an empty or malformed pair address.
	KindInputValidation
	// KindConfiguration is returned when the multicall address is missing or invalid.
	KindConfiguration
	// KindProviderUnavailable is returned when no RPC connection could be acquired.
	KindProviderUnavailable
	// KindNetworkOrAggregation is returned when the pair batch fails or is malformed.
	KindNetworkOrAggregation
)

func (k Kind) String() string {
	switch k {
	case KindInputValidation:
		return "input_validation"
	case KindConfiguration:
		return "configuration"
	case KindProviderUnavailable:
		return "provider_unavailable"
	case KindNetworkOrAggregation:
		return "network_or_aggregation"
	default:
		return "unknown"
	}
}

// Error is a kind-tagged error with a message that is safe to show to a user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New creates an Error without an underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error that keeps err as its cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Cause implements the github.com/pkg/errors causer interface.
func (e *Error) Cause() error {
	return e.Err
}

// KindOf returns the kind of the first *Error found in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage renders err as the single line shown to the user.
// Validation and configuration messages are shown as-is, fetch failures are
// prefixed with "Error: ".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		return "Error: " + err.Error()
	}

	switch appErr.Kind {
	case KindInputValidation, KindConfiguration:
		return appErr.Message
	default:
		return "Error: " + appErr.Error()
	}
}
