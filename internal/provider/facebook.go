package provider

import (
	"context"
	"fmt"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// Facebook is a recognized but unimplemented provider. The platform stays
// routable so clients get a clear message instead of a TikTok error.
type Facebook struct{}

// NewFacebook creates the Facebook provider stub.
func NewFacebook() *Facebook {
	return &Facebook{}
}

// Resolve always fails: Facebook requires an authenticated scraping path
// that is not wired up yet.
func (f *Facebook) Resolve(ctx context.Context, postURL string) ([]string, error) {
	return nil, fmt.Errorf("facebook: %w", domain.ErrPlatformNotSupported)
}
