// Package preview provides the link preview use case: it turns a URL or a
// raw HTML payload into a normalized preview by composing URL validation,
// fetching and extraction.
package preview

import (
	"context"
	"fmt"
	"log/slog"

	"link-preview/internal/domain/entity"
	"link-preview/internal/observability/logging"
	"link-preview/internal/observability/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Service builds previews. Each call is independent; the service keeps no
// state between requests.
type Service struct {
	Fetcher   HTMLFetcher
	Extractor Extractor
	// MaxHTMLSizeKB bounds raw HTML submitted by clients. Fetched documents
	// are bounded by the fetcher's own limit.
	MaxHTMLSizeKB int
}

// Preview runs the pipeline for req.
//
// With raw HTML, URL validation and fetching are skipped and the document
// is only size-checked. Otherwise the URL is validated, fetched and the
// body extracted. The first failure stops the pipeline.
func (s *Service) Preview(ctx context.Context, req entity.PreviewRequest) (*entity.PreviewResponse, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "preview.Preview")
	defer span.End()

	resp, err := s.preview(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "preview failed")
		if kind, ok := entity.KindOf(err); ok {
			span.SetAttributes(
				attribute.String("preview.failure_kind", string(kind)),
				attribute.Bool("preview.retryable", kind.Retryable()))
		}
		return nil, err
	}
	return resp, nil
}

func (s *Service) preview(ctx context.Context, req entity.PreviewRequest) (*entity.PreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		html      string
		sourceURL = entity.UnknownSource
		pageURL   string
	)

	if req.HasURL() {
		sourceURL = req.URL
		pageURL = req.URL
	}

	if req.HasRawHTML() {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("preview.input", "raw_html"))
		if err := entity.CheckHTMLSize(int64(len(req.RawHTML)), s.MaxHTMLSizeKB, "raw_html"); err != nil {
			return nil, err
		}
		html = req.RawHTML
	} else {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("preview.input", "url"))
		if _, err := s.validate(ctx, req.URL); err != nil {
			return nil, err
		}
		fetched, err := s.fetch(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		html = fetched
	}

	extraction := s.extract(ctx, html, pageURL)
	if extraction.OEmbedURL != "" {
		logging.WithRequestID(ctx, logging.FromContext(ctx)).DebugContext(ctx, "oembed link found",
			slog.String("source_url", sourceURL),
			slog.String("oembed_url", extraction.OEmbedURL))
	}

	data := extraction.Data
	if data.Title == "" {
		data.Title = entity.UntitledPlaceholder
	}

	resp := &entity.PreviewResponse{
		ExtractedData: data,
		SourceURL:     sourceURL,
	}
	if req.HasURL() {
		resp.NormalizedURL = entity.NormalizeURL(req.URL)
	}
	return resp, nil
}

func (s *Service) validate(ctx context.Context, rawURL string) (string, error) {
	_, span := tracing.GetTracer().Start(ctx, "preview.validate")
	defer span.End()

	u, err := entity.ValidateURL(rawURL)
	if err != nil {
		span.SetStatus(codes.Error, "invalid url")
	}
	return u, err
}

func (s *Service) fetch(ctx context.Context, rawURL string) (string, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "preview.fetch")
	defer span.End()

	html, err := s.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		if _, ok := entity.KindOf(err); ok {
			return "", err
		}
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	span.SetAttributes(attribute.Int("preview.html_bytes", len(html)))
	return html, nil
}

func (s *Service) extract(ctx context.Context, html, pageURL string) entity.Extraction {
	_, span := tracing.GetTracer().Start(ctx, "preview.extract")
	defer span.End()

	res := s.Extractor.Analyze(html, pageURL)
	span.SetAttributes(attribute.Int("preview.price_patterns_version", res.PricePatternsVersion))
	return res
}
