package preview

import (
	"errors"
	"net/http"

	"link-preview/internal/domain/entity"
)

// genericMessage is shown for errors that carry no Failure. Their text may
// include internal details and is never sent to clients.
const genericMessage = "Internal server error"

type statusEntry struct {
	status  int
	message string
}

// statusTable is the only place a failure kind is mapped to an HTTP status.
// message is used when the Failure itself carries none.
var statusTable = map[entity.Kind]statusEntry{
	entity.KindMissingInput:      {http.StatusBadRequest, "Either url or raw_html must be provided"},
	entity.KindInvalidJSON:       {http.StatusBadRequest, "Invalid JSON in request body"},
	entity.KindMissingURL:        {http.StatusBadRequest, "URL is required and must be a string"},
	entity.KindMalformedURL:      {http.StatusBadRequest, "Invalid URL format"},
	entity.KindUnsupportedScheme: {http.StatusBadRequest, "URL must use HTTP or HTTPS protocol"},
	entity.KindMissingHost:       {http.StatusBadRequest, "URL must have a valid hostname"},
	entity.KindPrivateAddress:    {http.StatusForbidden, "Private/loopback IP addresses are not allowed"},
	entity.KindLoopbackHost:      {http.StatusForbidden, "Localhost addresses are not allowed"},
	entity.KindPayloadTooLarge:   {http.StatusRequestEntityTooLarge, "HTML content exceeds maximum size"},
	entity.KindRateLimited:       {http.StatusTooManyRequests, "Too many requests from this IP, please try again after a minute"},

	entity.KindUnsupportedContentType: {http.StatusBadRequest, "Invalid content type. Expected text/html"},
	entity.KindTimeout:                {http.StatusRequestTimeout, "Request timeout - the server took too long to respond"},
	entity.KindDNSFailure:             {http.StatusNotFound, "Domain not found"},
	entity.KindConnectionRefused:      {http.StatusBadGateway, "Connection refused by the server"},
	entity.KindTooManyRedirects:       {http.StatusBadGateway, "Too many redirects"},
	entity.KindOriginForbidden:        {http.StatusForbidden, "Access forbidden - the server denied access to this resource"},
	entity.KindOriginNotFound:         {http.StatusNotFound, "Page not found - the requested URL does not exist"},
	entity.KindOriginRateLimited:      {http.StatusTooManyRequests, "Rate limited by the target server"},
	entity.KindOriginServerError:      {http.StatusBadGateway, "Upstream server error"},
	entity.KindOriginHTTPError:        {http.StatusBadGateway, "Failed to fetch URL"},
	entity.KindNoResponse:             {http.StatusServiceUnavailable, "No response received from server"},
	entity.KindNetwork:                {http.StatusBadGateway, "Failed to fetch URL"},
}

// StatusFor maps err to an HTTP status, a client-safe message and the
// offending field (possibly empty). It is total: errors without a known
// Failure kind map to 500 with a generic message.
func StatusFor(err error) (status int, message, field string) {
	var f *entity.Failure
	if !errors.As(err, &f) {
		return http.StatusInternalServerError, genericMessage, ""
	}

	entry, ok := statusTable[f.Kind]
	if !ok {
		return http.StatusInternalServerError, genericMessage, ""
	}

	message = f.Message
	if message == "" {
		message = entry.message
	}
	return entry.status, message, f.Field
}
