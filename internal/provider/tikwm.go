// Package provider contains one adapter per upstream platform. Each adapter
// resolves a post URL into that provider's own raw payload type; raw fields
// never leak past the matching normalizer in the service layer.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/upstream"
)

// TikwmPost is the raw payload the TikWM API returns for a single post.
// Sizes are bytes; Images is non-empty only for slideshow posts.
type TikwmPost struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Cover       string      `json:"cover"`
	OriginCover string      `json:"origin_cover"`
	Duration    int         `json:"duration"`
	Play        string      `json:"play"`
	Wmplay      string      `json:"wmplay"`
	Hdplay      string      `json:"hdplay"`
	Size        int64       `json:"size"`
	WmSize      int64       `json:"wm_size"`
	HdSize      int64       `json:"hd_size"`
	Music       string      `json:"music"`
	Images      []string    `json:"images"`
	Author      TikwmAuthor `json:"author"`
}

// TikwmAuthor is the author block of a TikWM post.
type TikwmAuthor struct {
	UniqueID string `json:"unique_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// tikwmEnvelope is the outer TikWM response. Code 0 means success.
type tikwmEnvelope struct {
	Code int        `json:"code"`
	Msg  string     `json:"msg"`
	Data *TikwmPost `json:"data"`
}

// Tikwm resolves TikTok post URLs through the TikWM API.
type Tikwm struct {
	client    upstream.Doer
	baseURL   string
	userAgent string
	logger    *slog.Logger
}

// NewTikwm creates a TikTok provider adapter.
func NewTikwm(client upstream.Doer, baseURL, userAgent string, logger *slog.Logger) *Tikwm {
	return &Tikwm{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		logger:    logger,
	}
}

// Fetch calls TikWM for the given post URL, requesting the HD rendition
// alongside the standard one. Provider-reported failures carry the
// provider's own message.
func (t *Tikwm) Fetch(ctx context.Context, postURL string) (*TikwmPost, error) {
	form := url.Values{}
	form.Set("url", postURL)
	form.Set("hd", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, domain.NewProviderError(domain.PlatformTikTok, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewProviderError(domain.PlatformTikTok,
			fmt.Sprintf("provider returned status %d", resp.StatusCode), nil)
	}

	var envelope tikwmEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, domain.NewProviderError(domain.PlatformTikTok, "", fmt.Errorf("decode response: %w", err))
	}

	if envelope.Code != 0 || envelope.Data == nil {
		t.logger.Warn("tikwm reported failure", "code", envelope.Code, "msg", envelope.Msg)
		msg := envelope.Msg
		if msg == "" {
			msg = "could not fetch video info from provider"
		}
		return nil, domain.NewProviderError(domain.PlatformTikTok, msg, nil)
	}

	return envelope.Data, nil
}
