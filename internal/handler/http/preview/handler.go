package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"link-preview/internal/domain/entity"
	"link-preview/internal/handler/http/respond"
	"link-preview/internal/observability/logging"
)

// Previewer builds a preview for one request.
type Previewer interface {
	Preview(ctx context.Context, req entity.PreviewRequest) (*entity.PreviewResponse, error)
}

// Handler serves POST /preview.
type Handler struct {
	Svc Previewer
	// ExposeDetail adds the sanitized internal error to 5xx bodies.
	ExposeDetail bool
}

// ServeHTTP builds a link preview.
// @Summary      Link preview
// @Description  Builds a preview from a URL, or from raw HTML when raw_html is given
// @Tags         preview
// @Accept       json
// @Produce      json
// @Param        request body Request true "url and/or raw_html"
// @Success      200 {object} DTO
// @Failure      400 {object} respond.ErrorBody "Invalid input"
// @Failure      403 {object} respond.ErrorBody "Private address or origin forbidden"
// @Failure      408 {object} respond.ErrorBody "Origin timed out"
// @Failure      413 {object} respond.ErrorBody "HTML too large"
// @Failure      429 {object} respond.ErrorBody "Rate limited"
// @Header       429 {integer} Retry-After "Seconds until the client should retry"
// @Failure      502 {object} respond.ErrorBody "Origin failure"
// @Router       /preview [post]
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var body Request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		respond.Failure(w, logger, decodeFailure(err), h.ExposeDetail)
		return
	}

	req, err := body.toEntity()
	if err != nil {
		respond.Failure(w, logger, err, h.ExposeDetail)
		return
	}

	resp, err := h.Svc.Preview(r.Context(), req)
	if err != nil {
		logFailure(r, logger, req.URL, err)
		respond.Failure(w, logger, err, h.ExposeDetail)
		return
	}

	respond.JSON(w, http.StatusOK, toDTO(resp))
}

// logFailure logs rejected input at info and fetch or internal failures at
// warn, tagging the latter with whether a retry may succeed.
func logFailure(r *http.Request, logger *slog.Logger, url string, err error) {
	if errors.Is(err, entity.ErrInvalidInput) {
		logger.InfoContext(r.Context(), "preview rejected",
			slog.String("url", url),
			slog.String("error", respond.SanitizeError(err)))
		return
	}
	kind, _ := entity.KindOf(err)
	logger.WarnContext(r.Context(), "preview failed",
		slog.String("url", url),
		slog.Bool("fetch_failure", errors.Is(err, entity.ErrFetchFailed)),
		slog.Bool("retryable", kind.Retryable()),
		slog.String("error", respond.SanitizeError(err)))
}

func decodeFailure(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return entity.NewFailure(entity.KindPayloadTooLarge, "body",
			fmt.Sprintf("Request body exceeds maximum size of %dKB", maxErr.Limit/1024))
	}
	return &entity.Failure{
		Kind:    entity.KindInvalidJSON,
		Field:   "body",
		Message: "Invalid JSON in request body",
		Err:     err,
	}
}
