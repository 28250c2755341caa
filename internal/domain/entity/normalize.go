package entity

import (
	"net/url"
	"strings"
)

// trackingParams are the query parameters dropped during normalization.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
}

// NormalizeURL returns the canonical form of raw used as a deduplication key.
// It drops UTM parameters and the fragment and lower-cases the host. The
// remaining query pairs keep their order and encoding. If raw cannot be
// parsed it is returned unchanged.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = stripTrackingParams(u.RawQuery)
	u.ForceQuery = false

	return u.String()
}

// stripTrackingParams works on the raw query so that order and encoding of
// the surviving pairs are preserved; url.Values would sort them.
func stripTrackingParams(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	pairs := strings.Split(rawQuery, "&")
	kept := pairs[:0]
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		name, _, _ := strings.Cut(pair, "=")
		if decoded, err := url.QueryUnescape(name); err == nil {
			name = decoded
		}
		if _, drop := trackingParams[name]; drop {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}
