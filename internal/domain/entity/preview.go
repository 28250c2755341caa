// Package entity holds the link preview domain types: requests, extracted
// metadata, responses, the failure taxonomy, and the URL policy functions
// (SSRF guard and normalizer) that every request passes through.
package entity

import (
	"fmt"
	"strings"
)

// UnknownSource is the sourceUrl reported when raw HTML arrives without a URL.
const UnknownSource = "unknown"

// UntitledPlaceholder replaces an empty title in the final response.
const UntitledPlaceholder = "Untitled"

// PreviewRequest is a single preview request. At least one of URL and
// RawHTML must be non-empty.
type PreviewRequest struct {
	URL     string
	RawHTML string
}

// HasURL reports whether a URL was supplied.
func (r PreviewRequest) HasURL() bool {
	return strings.TrimSpace(r.URL) != ""
}

// HasRawHTML reports whether raw HTML was supplied.
func (r PreviewRequest) HasRawHTML() bool {
	return r.RawHTML != ""
}

// Validate checks the request shape. It does not validate the URL itself.
func (r PreviewRequest) Validate() error {
	if !r.HasURL() && !r.HasRawHTML() {
		return NewFailure(KindMissingInput, "body", "Either url or raw_html must be provided")
	}
	return nil
}

// CheckHTMLSize fails with KindPayloadTooLarge when size bytes exceed maxKB
// KiB. A document of exactly maxKB KiB is accepted.
func CheckHTMLSize(size int64, maxKB int, field string) error {
	if size <= int64(maxKB)*1024 {
		return nil
	}
	return NewFailure(KindPayloadTooLarge, field,
		fmt.Sprintf("HTML content exceeds maximum size of %dKB (actual: %.2fKB)", maxKB, float64(size)/1024))
}

// ExtractedData is the metadata pulled out of an HTML document. Every field
// defaults to empty.
type ExtractedData struct {
	Title       string
	Image       string
	Price       string
	Currency    string
	SiteName    string
	Description string
}

// Merge fills each empty field of d from next. Fields already set in d are
// never overwritten.
func (d ExtractedData) Merge(next ExtractedData) ExtractedData {
	d.Title = firstNonEmpty(d.Title, next.Title)
	d.Image = firstNonEmpty(d.Image, next.Image)
	d.Price = firstNonEmpty(d.Price, next.Price)
	d.Currency = firstNonEmpty(d.Currency, next.Currency)
	d.SiteName = firstNonEmpty(d.SiteName, next.SiteName)
	d.Description = firstNonEmpty(d.Description, next.Description)
	return d
}

// Fields returns the set of fields that hold a value.
func (d ExtractedData) Fields() FieldSet {
	var s FieldSet
	if d.Title != "" {
		s |= FieldTitle
	}
	if d.Image != "" {
		s |= FieldImage
	}
	if d.Price != "" {
		s |= FieldPrice
	}
	if d.Currency != "" {
		s |= FieldCurrency
	}
	if d.SiteName != "" {
		s |= FieldSiteName
	}
	if d.Description != "" {
		s |= FieldDescription
	}
	return s
}

// FieldSet is a bit set over ExtractedData fields.
type FieldSet uint8

// ExtractedData field bits.
const (
	FieldTitle FieldSet = 1 << iota
	FieldImage
	FieldPrice
	FieldCurrency
	FieldSiteName
	FieldDescription
)

// Covers reports whether every field in other is also in s.
func (s FieldSet) Covers(other FieldSet) bool {
	return s&other == other
}

// Extraction is the result of analysing one document: the extracted fields
// plus signals that do not become fields.
type Extraction struct {
	Data ExtractedData
	// OEmbedURL is the href of an oEmbed discovery link, if the page has one.
	// It is never fetched.
	OEmbedURL string
	// PricePatternsVersion identifies the price heuristics that produced
	// Data.Price.
	PricePatternsVersion int
}

// PreviewResponse is the final preview sent to the client.
type PreviewResponse struct {
	ExtractedData
	SourceURL     string
	NormalizedURL string
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
