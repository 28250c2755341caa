// Package preview provides the HTTP handler for POST /preview.
package preview

import (
	"bytes"
	"encoding/json"

	"link-preview/internal/domain/entity"
)

// Request is the JSON body of POST /preview. raw_html is also accepted as
// rawHtml; when both are present raw_html wins.
type Request struct {
	URL        json.RawMessage `json:"url"`
	RawHTML    json.RawMessage `json:"raw_html"`
	RawHTMLAlt json.RawMessage `json:"rawHtml"`
}

// DTO is the JSON body of a successful preview.
type DTO struct {
	Title         string `json:"title" example:"Wireless Headphones"`
	Image         string `json:"image" example:"https://shop.example.com/img/headphones.jpg"`
	Price         string `json:"price" example:"$99.99"`
	Currency      string `json:"currency" example:"USD"`
	SiteName      string `json:"siteName" example:"Example Shop"`
	SourceURL     string `json:"sourceUrl" example:"https://shop.example.com/p/1?utm_source=x"`
	NormalizedURL string `json:"normalizedUrl,omitempty" example:"https://shop.example.com/p/1"`
	Description   string `json:"description,omitempty" example:"Noise cancelling over-ear headphones"`
}

func toDTO(r *entity.PreviewResponse) DTO {
	return DTO{
		Title:         r.Title,
		Image:         r.Image,
		Price:         r.Price,
		Currency:      r.Currency,
		SiteName:      r.SiteName,
		SourceURL:     r.SourceURL,
		NormalizedURL: r.NormalizedURL,
		Description:   r.Description,
	}
}

// toEntity converts the wire request. Absent and null fields are empty;
// fields of any other JSON type are rejected.
func (r Request) toEntity() (entity.PreviewRequest, error) {
	var out entity.PreviewRequest

	u, ok := stringField(r.URL)
	if !ok {
		return out, entity.NewFailure(entity.KindMissingURL, "url", "URL is required and must be a string")
	}
	out.URL = u

	raw := r.RawHTML
	if isAbsent(raw) {
		raw = r.RawHTMLAlt
	}
	html, ok := stringField(raw)
	if !ok {
		return out, entity.NewFailure(entity.KindInvalidJSON, "raw_html", "raw_html must be a string")
	}
	out.RawHTML = html

	return out, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func stringField(raw json.RawMessage) (string, bool) {
	if isAbsent(raw) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
