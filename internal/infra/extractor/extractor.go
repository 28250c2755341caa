// Package extractor pulls preview metadata out of arbitrary HTML using a
// fixed cascade of heuristics. It never fails: malformed or empty input
// yields empty fields.
package extractor

import (
	"log/slog"
	"net/url"
	"strings"

	"link-preview/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one pass of the cascade. Provides lists the fields the pass
// can fill; the pass is skipped when all of them are already set.
type Strategy struct {
	Name     string
	Provides entity.FieldSet
	Extract  func(p *Page) entity.ExtractedData
}

// DefaultStrategies is the cascade in priority order. Earlier passes win.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{
			Name:     "opengraph",
			Provides: entity.FieldTitle | entity.FieldImage | entity.FieldSiteName | entity.FieldPrice | entity.FieldCurrency | entity.FieldDescription,
			Extract:  openGraph,
		},
		{
			Name:     "twitter",
			Provides: entity.FieldTitle | entity.FieldImage | entity.FieldSiteName | entity.FieldDescription,
			Extract:  twitterCard,
		},
		{
			Name:     "fallback",
			Provides: entity.FieldTitle | entity.FieldImage | entity.FieldPrice | entity.FieldSiteName | entity.FieldDescription,
			Extract:  fallback,
		},
		{
			Name:     "readability",
			Provides: entity.FieldDescription,
			Extract:  readabilityExcerpt,
		},
	}
}

// Extractor runs the strategy cascade over a parsed document.
//
// Thread safety: Extractor holds no per-document state and is safe for
// concurrent use.
type Extractor struct {
	strategies []Strategy
	logger     *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithStrategies replaces the default cascade.
func WithStrategies(s []Strategy) Option {
	return func(e *Extractor) {
		e.strategies = s
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = l
	}
}

// New creates an Extractor with the default cascade.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		strategies: DefaultStrategies(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the metadata found in html.
func (e *Extractor) Extract(html string) entity.ExtractedData {
	return e.Analyze(html, "").Data
}

// Analyze runs the cascade over html. pageURL is optional; when set it is
// used as the base for readability scoring.
func (e *Extractor) Analyze(html, pageURL string) entity.Extraction {
	p, err := NewPage(html, pageURL)
	if err != nil {
		e.logger.Debug("html parse failed", slog.Any("error", err))
		return entity.Extraction{}
	}

	var data entity.ExtractedData
	for _, s := range e.strategies {
		if data.Fields().Covers(s.Provides) {
			continue
		}
		data = data.Merge(s.Extract(p))
	}

	return entity.Extraction{
		Data:                 data,
		OEmbedURL:            p.OEmbedLink(),
		PricePatternsVersion: PricePatternsVersion,
	}
}

// Page is a parsed HTML document with the lookups the strategies share.
type Page struct {
	raw     string
	doc     *goquery.Document
	baseURL *url.URL
}

// NewPage parses html. An unparseable pageURL is ignored.
func NewPage(html, pageURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	p := &Page{raw: html, doc: doc}
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil {
			p.baseURL = u
		}
	}
	return p, nil
}

// Meta returns the first non-empty content of a <meta> tag whose attr
// equals key, trimmed.
func (p *Page) Meta(attr, key string) string {
	var value string
	p.doc.Find(`meta[` + attr + `="` + key + `"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		value = strings.TrimSpace(s.AttrOr("content", ""))
		return value == ""
	})
	return value
}

// NamedMeta looks a key up by name= first and then by property=.
func (p *Page) NamedMeta(key string) string {
	if v := p.Meta("name", key); v != "" {
		return v
	}
	return p.Meta("property", key)
}

// OEmbedLink returns the href of the first oEmbed discovery link.
func (p *Page) OEmbedLink() string {
	for _, typ := range []string{"application/json+oembed", "text/xml+oembed"} {
		if href, ok := p.doc.Find(`link[type="` + typ + `"]`).First().Attr("href"); ok {
			if href = strings.TrimSpace(href); href != "" {
				return href
			}
		}
	}
	return ""
}

// BodyText returns the visible text of <body>, excluding script and style
// contents.
func (p *Page) BodyText() string {
	body := p.doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	return body.Text()
}
