package preview

import (
	"context"

	"link-preview/internal/domain/entity"
)

// HTMLFetcher retrieves a document. Implementations report failures as
// *entity.Failure.
type HTMLFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor analyses a document. It never fails.
type Extractor interface {
	Analyze(html, pageURL string) entity.Extraction
}
