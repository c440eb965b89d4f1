package domain

// Platform identifies the upstream social platform a post URL belongs to.
type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
)

// ParsePlatform maps a query-string platform value to a Platform.
// An empty value defaults to TikTok; anything unrecognized is rejected
// so client typos surface as errors instead of silently hitting the
// wrong provider.
func ParsePlatform(s string) (Platform, error) {
	switch s {
	case "", string(PlatformTikTok):
		return PlatformTikTok, nil
	case string(PlatformInstagram):
		return PlatformInstagram, nil
	case string(PlatformFacebook):
		return PlatformFacebook, nil
	default:
		return "", ErrUnsupportedPlatform
	}
}

// OptionKind classifies a download option. It determines display priority
// on the client and the default file extension.
type OptionKind string

const (
	KindNormal    OptionKind = "normal"
	KindWatermark OptionKind = "watermark"
	KindMusic     OptionKind = "music"
)

// DownloadRequest is a request to resolve a post URL into media options.
type DownloadRequest struct {
	SourceURL string
	Platform  Platform
}

// DownloadOption is one retrievable asset. Several options of the same
// kind may coexist (e.g. every image of a slideshow).
type DownloadOption struct {
	Kind  OptionKind `json:"type"`
	Label string     `json:"label"`
	URL   string     `json:"url"`
	Size  *int64     `json:"size,omitempty"`
}

// Author describes the post author. Fields degrade to empty strings when
// the provider does not expose them.
type Author struct {
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// NormalizedResult is the canonical shape every provider payload is mapped
// into. JSON field names follow the legacy client contract: Video carries
// the URL of Downloads[0] for older consumers and must stay consistent
// with it (empty for image-only results).
type NormalizedResult struct {
	Downloads []DownloadOption `json:"downloads"`
	Video     []string         `json:"video"`
	Images    []string         `json:"images"`
	Music     *string          `json:"music"`
	Cover     string           `json:"cover"`
	Desc      string           `json:"desc"`
	Author    Author           `json:"author"`
}

// HasImages reports whether the result is (at least partly) a slideshow.
func (r *NormalizedResult) HasImages() bool {
	return len(r.Images) > 0
}
