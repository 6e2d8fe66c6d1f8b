package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResult is returned when a vendor call succeeds but
	// carries no usable content.
	ErrEmptyResult = errors.New("provider: empty result")

	// ErrMalformedResponse is returned when a vendor response cannot
	// be decoded.
	ErrMalformedResponse = errors.New("provider: malformed response")

	// ErrSynthesisUnsupported is returned by vendors without a TTS
	// endpoint.
	ErrSynthesisUnsupported = errors.New("provider: speech synthesis not supported")

	// ErrTranscriptionUnsupported is returned by vendors without an
	// STT endpoint.
	ErrTranscriptionUnsupported = errors.New("provider: transcription not supported")

	// ErrNoAPIKey is returned when an operation needs a vendor that
	// has no credential configured.
	ErrNoAPIKey = errors.New("provider: api key not set")
)

// Error represents an API error from a vendor.
type Error struct {
	// Provider is the vendor id, e.g. "openai".
	Provider string `json:"provider"`

	// Op is the failed operation: "chat", "transcribe", "synthesize",
	// or "test".
	Op string `json:"op"`

	// HTTPStatus is the HTTP status code, 0 when the request never
	// reached the server.
	HTTPStatus int `json:"http_status"`

	// Message is the vendor's error message.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s failed: %s (http=%d)", e.Provider, e.Op, e.Message, e.HTTPStatus)
}

// IsAuth returns true if the credential was rejected.
func (e *Error) IsAuth() bool {
	return e.HTTPStatus == 401 || e.HTTPStatus == 403
}

// IsRateLimit returns true if the vendor throttled the request.
func (e *Error) IsRateLimit() bool {
	return e.HTTPStatus == 429
}

// Retryable returns true if the request can be retried.
func (e *Error) Retryable() bool {
	return e.IsRateLimit() || e.HTTPStatus >= 500
}

// AsError extracts *Error from an error.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// UnknownModelError is returned when a model id is absent from the
// routing table. The id is never silently mapped to a default vendor.
type UnknownModelError struct {
	Model string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("provider: unknown model %q", e.Model)
}
