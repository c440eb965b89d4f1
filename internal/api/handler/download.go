package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iconidentify/mediagrab/internal/api/middleware"
	"github.com/iconidentify/mediagrab/internal/domain"
)

// Resolver dispatches a download request to the matching provider.
type Resolver interface {
	Resolve(ctx context.Context, req domain.DownloadRequest) (*domain.NormalizedResult, error)
}

// DownloadHandler handles media resolution requests.
type DownloadHandler struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewDownloadHandler creates a download handler.
func NewDownloadHandler(resolver Resolver, logger *slog.Logger) *DownloadHandler {
	return &DownloadHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// DownloadResponse is the JSON envelope for resolution results.
type DownloadResponse struct {
	Status string                   `json:"status"`
	Result *domain.NormalizedResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

// Download handles GET /api/download?url=<post>&platform=<tiktok|instagram>
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	logger := middleware.FromContext(r.Context())

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	platform, err := domain.ParsePlatform(r.URL.Query().Get("platform"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "unsupported platform: "+r.URL.Query().Get("platform"))
		return
	}

	logger.Info("resolving post", "platform", platform, "url", rawURL)

	result, err := h.resolver.Resolve(r.Context(), domain.DownloadRequest{
		SourceURL: rawURL,
		Platform:  platform,
	})
	if err != nil {
		h.writeResolveError(w, logger, err)
		return
	}

	h.writeJSON(w, http.StatusOK, DownloadResponse{
		Status: "success",
		Result: result,
	})
}

func (h *DownloadHandler) writeResolveError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var notFound *domain.NotFoundError
	var providerErr *domain.ProviderError

	switch {
	case errors.Is(err, domain.ErrURLRequired):
		h.writeError(w, http.StatusBadRequest, "URL is required")
	case errors.Is(err, domain.ErrUnsupportedPlatform):
		h.writeError(w, http.StatusBadRequest, "unsupported platform")
	case errors.As(err, &notFound):
		logger.Info("no media found", "error", err)
		h.writeError(w, http.StatusNotFound, notFound.Message)
	case errors.As(err, &providerErr):
		logger.Error("provider failure", "provider", providerErr.Provider, "error", err)
		h.writeError(w, http.StatusInternalServerError, providerErr.Error())
	case errors.Is(err, domain.ErrPlatformNotSupported):
		logger.Info("unsupported platform requested", "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		logger.Error("resolve failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to process request")
	}
}

func (h *DownloadHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *DownloadHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, DownloadResponse{
		Status: "error",
		Error:  message,
	})
}
