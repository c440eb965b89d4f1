package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iconidentify/mediagrab/internal/api/middleware"
	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/proxy"
)

// MediaFetcher fetches upstream media and thumbnail bytes.
type MediaFetcher interface {
	Stream(ctx context.Context, mediaURL, suggestedFilename string) (*proxy.Media, error)
	FetchImage(ctx context.Context, imageURL string) ([]byte, string, error)
}

// ProxyHandler re-serves upstream media through the service.
type ProxyHandler struct {
	fetcher MediaFetcher
	logger  *slog.Logger
}

// NewProxyHandler creates a proxy handler.
func NewProxyHandler(fetcher MediaFetcher, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Download handles GET /api/proxy-download?url=<media>&filename=<name>
// The response is the raw media body with attachment headers; errors are
// plain text, matching the legacy client contract.
func (h *ProxyHandler) Download(w http.ResponseWriter, r *http.Request) {
	logger := middleware.FromContext(r.Context())

	mediaURL := r.URL.Query().Get("url")
	if mediaURL == "" {
		http.Error(w, "URL required", http.StatusBadRequest)
		return
	}

	logger.Info("proxying media", "url", mediaURL)

	media, err := h.fetcher.Stream(r.Context(), mediaURL, r.URL.Query().Get("filename"))
	if err != nil {
		if errors.Is(err, domain.ErrFetchTimeout) {
			logger.Error("media fetch timed out", "url", mediaURL)
			http.Error(w, "Timeout", http.StatusGatewayTimeout)
			return
		}
		logger.Error("media fetch failed", "url", mediaURL, "error", err)
		http.Error(w, "Error downloading file", http.StatusInternalServerError)
		return
	}
	defer media.Body.Close()

	w.Header().Set("Content-Disposition", `attachment; filename="`+media.Filename+`"`)
	w.Header().Set("Content-Type", media.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(media.ContentLength, 10))

	if _, err := io.Copy(w, media.Body); err != nil {
		// Headers are already out; all we can do is log.
		logger.Error("media relay interrupted", "url", mediaURL, "error", err)
	}
}

// Image handles GET /api/proxy-image?url=<thumbnail>
// Thumbnails are treated as immutable once fetched, hence the one-year
// cache directive.
func (h *ProxyHandler) Image(w http.ResponseWriter, r *http.Request) {
	logger := middleware.FromContext(r.Context())

	imageURL := r.URL.Query().Get("url")
	if imageURL == "" {
		http.Error(w, "URL required", http.StatusBadRequest)
		return
	}

	data, contentType, err := h.fetcher.FetchImage(r.Context(), imageURL)
	if err != nil {
		if errors.Is(err, domain.ErrFetchTimeout) {
			logger.Error("image fetch timed out", "url", imageURL)
			http.Error(w, "Timeout", http.StatusGatewayTimeout)
			return
		}
		logger.Error("image fetch failed", "url", imageURL, "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
