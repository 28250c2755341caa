package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"

	"link-preview/internal/domain/entity"
)

// classifyTransportError turns an error from the HTTP client into a
// Failure. ctx is the per-fetch context; parent is the caller's context.
// A cancellation that originates with the caller is returned as a plain
// wrapped error so it is not reported as an origin fault.
func classifyTransportError(parent, ctx context.Context, host string, err error) error {
	var f *entity.Failure
	if errors.As(err, &f) {
		return f
	}

	if errors.Is(parent.Err(), context.Canceled) {
		return fmt.Errorf("fetch canceled: %w", parent.Err())
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return entity.WrapFailure(entity.KindTimeout, "Request timeout - the server took too long to respond", err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return entity.WrapFailure(entity.KindDNSFailure, fmt.Sprintf("Domain not found: %s", host), err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return entity.WrapFailure(entity.KindTimeout, "Request timeout - the server took too long to respond", err)
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return entity.WrapFailure(entity.KindConnectionRefused, "Connection refused by the server", err)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return entity.WrapFailure(entity.KindNoResponse, "No response received from server", err)
	}

	return entity.WrapFailure(entity.KindNetwork, "Failed to fetch URL", err)
}

// statusFailure maps an origin HTTP status to a Failure. Statuses below 400
// are accepted and yield nil.
func statusFailure(code int) error {
	switch {
	case code < http.StatusBadRequest:
		return nil
	case code == http.StatusForbidden:
		return entity.NewFailure(entity.KindOriginForbidden, "", "Access forbidden - the server denied access to this resource")
	case code == http.StatusNotFound:
		return entity.NewFailure(entity.KindOriginNotFound, "", "Page not found - the requested URL does not exist")
	case code == http.StatusTooManyRequests:
		return entity.NewFailure(entity.KindOriginRateLimited, "", "Rate limited by the target server")
	case code == http.StatusServiceUnavailable:
		return entity.NewFailure(entity.KindOriginServerError, "", "Service temporarily unavailable - the website may be blocking automated requests")
	case code >= http.StatusInternalServerError:
		return entity.NewFailure(entity.KindOriginServerError, "", fmt.Sprintf("Upstream server error (HTTP %d)", code))
	default:
		return entity.NewFailure(entity.KindOriginHTTPError, "", fmt.Sprintf("Failed to fetch URL (HTTP %d)", code))
	}
}

func outcomeOf(err error) string {
	if kind, ok := entity.KindOf(err); ok {
		return string(kind)
	}
	return "canceled"
}
