package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two failure classes. Every Failure matches one of
// them with errors.Is: validation kinds match ErrInvalidInput and fetch kinds
// match ErrFetchFailed.
var (
	// ErrInvalidInput indicates that the client supplied input is structurally invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFetchFailed indicates that retrieving the remote document failed.
	ErrFetchFailed = errors.New("fetch failed")
)

// Kind identifies a failure mode. Kinds are stable and are the only thing
// the HTTP layer uses to choose a status code.
type Kind string

// Validation kinds. The client input is at fault; retrying will not help.
const (
	KindMissingInput      Kind = "missing_input"
	KindInvalidJSON       Kind = "invalid_json"
	KindMissingURL        Kind = "missing_url"
	KindMalformedURL      Kind = "malformed_url"
	KindUnsupportedScheme Kind = "unsupported_scheme"
	KindMissingHost       Kind = "missing_host"
	KindPrivateAddress    Kind = "private_address"
	KindLoopbackHost      Kind = "loopback_host"
	KindPayloadTooLarge   Kind = "payload_too_large"
	KindRateLimited       Kind = "rate_limited"
)

// Fetch kinds. The origin or the network is at fault; some are safe to retry
// by the caller.
const (
	KindUnsupportedContentType Kind = "unsupported_content_type"
	KindTimeout                Kind = "timeout"
	KindDNSFailure             Kind = "dns_failure"
	KindConnectionRefused      Kind = "connection_refused"
	KindTooManyRedirects       Kind = "too_many_redirects"
	KindOriginForbidden        Kind = "origin_forbidden"
	KindOriginNotFound         Kind = "origin_not_found"
	KindOriginRateLimited      Kind = "origin_rate_limited"
	KindOriginServerError      Kind = "origin_server_error"
	KindOriginHTTPError        Kind = "origin_http_error"
	KindNoResponse             Kind = "no_response"
	KindNetwork                Kind = "network"
)

// AllKinds lists every declared Kind.
var AllKinds = []Kind{
	KindMissingInput,
	KindInvalidJSON,
	KindMissingURL,
	KindMalformedURL,
	KindUnsupportedScheme,
	KindMissingHost,
	KindPrivateAddress,
	KindLoopbackHost,
	KindPayloadTooLarge,
	KindRateLimited,
	KindUnsupportedContentType,
	KindTimeout,
	KindDNSFailure,
	KindConnectionRefused,
	KindTooManyRedirects,
	KindOriginForbidden,
	KindOriginNotFound,
	KindOriginRateLimited,
	KindOriginServerError,
	KindOriginHTTPError,
	KindNoResponse,
	KindNetwork,
}

// Class returns ErrInvalidInput for validation kinds, ErrFetchFailed for
// fetch kinds and nil for an undeclared kind.
func (k Kind) Class() error {
	switch k {
	case KindMissingInput, KindInvalidJSON, KindMissingURL, KindMalformedURL,
		KindUnsupportedScheme, KindMissingHost, KindPrivateAddress, KindLoopbackHost,
		KindPayloadTooLarge, KindRateLimited:
		return ErrInvalidInput
	case KindUnsupportedContentType, KindTimeout, KindDNSFailure, KindConnectionRefused,
		KindTooManyRedirects, KindOriginForbidden, KindOriginNotFound, KindOriginRateLimited,
		KindOriginServerError, KindOriginHTTPError, KindNoResponse, KindNetwork:
		return ErrFetchFailed
	default:
		return nil
	}
}

// Retryable reports whether a caller may reasonably retry a request that
// failed with this kind. Nothing inside the pipeline retries.
func (k Kind) Retryable() bool {
	switch k {
	case KindTimeout, KindNoResponse, KindNetwork, KindConnectionRefused,
		KindOriginRateLimited, KindOriginServerError, KindRateLimited:
		return true
	default:
		return false
	}
}

// Failure is a tagged pipeline error. Message is safe to show to clients;
// Err carries the internal cause and is only logged.
type Failure struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

// Error returns a formatted error message for the failure.
func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Is matches a target Failure by kind, so errors.Is(err, &Failure{Kind: k})
// works without comparing messages. It also matches the class sentinel of
// the kind (ErrInvalidInput or ErrFetchFailed).
func (f *Failure) Is(target error) bool {
	if t, ok := target.(*Failure); ok {
		return t.Kind == f.Kind
	}
	class := f.Kind.Class()
	return class != nil && target == class
}

// NewFailure creates a Failure without an underlying cause.
func NewFailure(kind Kind, field, message string) *Failure {
	return &Failure{Kind: kind, Field: field, Message: message}
}

// WrapFailure creates a Failure that records err as its cause.
func WrapFailure(kind Kind, message string, err error) *Failure {
	return &Failure{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err. The second result is false when err
// does not carry a Failure.
func KindOf(err error) (Kind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return "", false
}
