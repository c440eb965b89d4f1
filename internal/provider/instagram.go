package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/upstream"
)

const (
	instagramGraphqlURL = "https://www.instagram.com/api/graphql"
	// Public doc id for the shortcode media query.
	instagramDocID = "10015901848480474"
	instagramAppID = "936619743392459"
)

var shortcodeRe = regexp.MustCompile(`instagram\.com/(?:[^/]+/)?(?:p|reel|reels|tv)/([A-Za-z0-9_-]+)`)

// instagramMedia is the xdt_shortcode_media node of the GraphQL response.
// Only the fields needed to flatten the post into media URLs are decoded.
type instagramMedia struct {
	Typename   string `json:"__typename"`
	IsVideo    bool   `json:"is_video"`
	VideoURL   string `json:"video_url"`
	DisplayURL string `json:"display_url"`
	Sidecar    struct {
		Edges []struct {
			Node struct {
				IsVideo    bool   `json:"is_video"`
				VideoURL   string `json:"video_url"`
				DisplayURL string `json:"display_url"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_sidecar_to_children"`
}

type instagramEnvelope struct {
	Data struct {
		Media *instagramMedia `json:"xdt_shortcode_media"`
	} `json:"data"`
}

// Instagram resolves post URLs into a flat list of media URLs via the
// GraphQL document endpoint. The endpoint carries no usable type metadata
// for consumers, so the adapter returns URLs only.
type Instagram struct {
	client     upstream.Doer
	graphqlURL string
	userAgent  string
	logger     *slog.Logger
}

// NewInstagram creates an Instagram provider adapter.
func NewInstagram(client upstream.Doer, userAgent string, logger *slog.Logger) *Instagram {
	return &Instagram{
		client:     client,
		graphqlURL: instagramGraphqlURL,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// Resolve returns the ordered media URLs of the post: for each node the
// video rendition when present, otherwise the display image.
func (i *Instagram) Resolve(ctx context.Context, postURL string) ([]string, error) {
	shortcode, err := extractShortcode(postURL)
	if err != nil {
		return nil, domain.NewProviderError(domain.PlatformInstagram, err.Error(), err)
	}

	variables, _ := json.Marshal(map[string]string{"shortcode": shortcode})
	form := url.Values{}
	form.Set("variables", string(variables))
	form.Set("doc_id", instagramDocID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.graphqlURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", i.userAgent)
	req.Header.Set("X-IG-App-ID", instagramAppID)
	req.Header.Set("X-FB-Friendly-Name", "PolarisPostActionLoadPostQueryQuery")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, domain.NewProviderError(domain.PlatformInstagram, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewProviderError(domain.PlatformInstagram,
			fmt.Sprintf("provider returned status %d", resp.StatusCode), nil)
	}

	var envelope instagramEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, domain.NewProviderError(domain.PlatformInstagram, "", fmt.Errorf("decode response: %w", err))
	}

	media := envelope.Data.Media
	if media == nil {
		i.logger.Warn("instagram returned no media node", "shortcode", shortcode)
		return nil, domain.NewProviderError(domain.PlatformInstagram, "no media found in this Instagram post", nil)
	}

	urls := flattenInstagramMedia(media)
	if len(urls) == 0 {
		return nil, domain.NewProviderError(domain.PlatformInstagram, "no media found in this Instagram post", nil)
	}
	return urls, nil
}

func flattenInstagramMedia(media *instagramMedia) []string {
	var urls []string

	// Carousel posts list every item under edge_sidecar_to_children.
	if len(media.Sidecar.Edges) > 0 {
		for _, edge := range media.Sidecar.Edges {
			node := edge.Node
			if node.IsVideo && node.VideoURL != "" {
				urls = append(urls, node.VideoURL)
			} else if node.DisplayURL != "" {
				urls = append(urls, node.DisplayURL)
			}
		}
		return urls
	}

	if media.IsVideo && media.VideoURL != "" {
		return []string{media.VideoURL}
	}
	if media.DisplayURL != "" {
		return []string{media.DisplayURL}
	}
	return nil
}

func extractShortcode(postURL string) (string, error) {
	m := shortcodeRe.FindStringSubmatch(postURL)
	if len(m) < 2 {
		return "", fmt.Errorf("invalid Instagram post URL")
	}
	return m[1], nil
}
