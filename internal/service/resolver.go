// Package service hosts the platform dispatcher and the per-provider result
// normalizers. Normalizers are pure: raw provider payloads come in, the
// canonical NormalizedResult comes out, no I/O.
package service

import (
	"context"
	"log/slog"

	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/provider"
)

// TikTokFetcher resolves a TikTok post URL into the raw TikWM payload.
type TikTokFetcher interface {
	Fetch(ctx context.Context, postURL string) (*provider.TikwmPost, error)
}

// MediaLister resolves a post URL into a flat, ordered list of media URLs.
type MediaLister interface {
	Resolve(ctx context.Context, postURL string) ([]string, error)
}

// Resolver dispatches download requests to the matching provider adapter
// and normalizes its payload. It carries no resilience of its own; each
// adapter owns its retries and timeouts.
type Resolver struct {
	tiktok    TikTokFetcher
	instagram MediaLister
	facebook  MediaLister
	logger    *slog.Logger
}

// NewResolver creates a platform dispatcher.
func NewResolver(tiktok TikTokFetcher, instagram, facebook MediaLister, logger *slog.Logger) *Resolver {
	return &Resolver{
		tiktok:    tiktok,
		instagram: instagram,
		facebook:  facebook,
		logger:    logger,
	}
}

// Resolve selects the adapter for the request's platform, invokes it, and
// normalizes the result. An empty platform means TikTok; unrecognized
// values are rejected rather than silently routed.
func (r *Resolver) Resolve(ctx context.Context, req domain.DownloadRequest) (*domain.NormalizedResult, error) {
	if req.SourceURL == "" {
		return nil, domain.ErrURLRequired
	}

	switch req.Platform {
	case domain.PlatformInstagram:
		urls, err := r.instagram.Resolve(ctx, req.SourceURL)
		if err != nil {
			return nil, err
		}
		return normalizeInstagram(urls)

	case domain.PlatformFacebook:
		if _, err := r.facebook.Resolve(ctx, req.SourceURL); err != nil {
			return nil, err
		}
		return nil, domain.ErrPlatformNotSupported

	case "", domain.PlatformTikTok:
		post, err := r.tiktok.Fetch(ctx, req.SourceURL)
		if err != nil {
			return nil, err
		}
		result, err := normalizeTikTok(post)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("normalized tiktok post",
			"downloads", len(result.Downloads),
			"images", len(result.Images),
		)
		return result, nil

	default:
		return nil, domain.ErrUnsupportedPlatform
	}
}
