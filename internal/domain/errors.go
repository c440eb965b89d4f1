package domain

import (
	"errors"
	"strconv"
)

// Domain errors.
var (
	// ErrURLRequired is returned when a request is missing the post URL.
	ErrURLRequired = errors.New("URL is required")

	// ErrUnsupportedPlatform is returned for platform values the service
	// does not recognize at all.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrPlatformNotSupported is returned by providers that are recognized
	// but not implemented yet.
	ErrPlatformNotSupported = errors.New("platform downloads are not supported yet")

	// ErrFetchTimeout is returned when an outbound media or image fetch
	// exceeds its deadline.
	ErrFetchTimeout = errors.New("upstream fetch timed out")
)

// NotFoundError reports that a post resolved successfully but yielded no
// retrievable media after normalization. An image-only TikTok result is not
// a NotFoundError; it is a valid result with zero downloads suppressed.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// ProviderError wraps a failure reported by an upstream provider API.
// Message carries the provider's own error text when it supplied one.
type ProviderError struct {
	Provider Platform
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "could not fetch media info from provider"
	}
	return string(e.Provider) + " provider: " + msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a ProviderError for the given platform.
func NewProviderError(p Platform, message string, err error) *ProviderError {
	return &ProviderError{Provider: p, Message: message, Err: err}
}

// FetchError reports a non-success status from a media host after the
// proxy's allowed retry.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return "upstream returned status " + strconv.Itoa(e.Status)
}
