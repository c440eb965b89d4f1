package service

import (
	"strings"

	"github.com/iconidentify/mediagrab/internal/domain"
)

const labelDownloadMedia = "Download Media"

// normalizeInstagram maps a flat media URL list to the canonical result.
//
// The resolver exposes no type metadata, so every URL is offered as a plain
// download. The .mp4 extension heuristic splits the preview fields only;
// it is not authoritative and a URL without a recognizable extension is
// treated as an image. Author and description are static placeholders:
// this resolver path cannot obtain them, and callers must not assume the
// authorship data is real.
func normalizeInstagram(urls []string) (*domain.NormalizedResult, error) {
	if len(urls) == 0 {
		return nil, &domain.NotFoundError{Message: "No media found in this Instagram post."}
	}

	downloads := make([]domain.DownloadOption, 0, len(urls))
	videos := []string{}
	images := []string{}

	for _, mediaURL := range urls {
		downloads = append(downloads, domain.DownloadOption{
			Kind:  domain.KindNormal,
			Label: labelDownloadMedia,
			URL:   mediaURL,
		})

		if strings.Contains(mediaURL, ".mp4") {
			videos = append(videos, mediaURL)
		} else {
			images = append(images, mediaURL)
		}
	}

	cover := ""
	if len(images) > 0 {
		cover = images[0]
	}

	return &domain.NormalizedResult{
		Downloads: downloads,
		Video:     videos,
		Images:    images,
		Cover:     cover,
		Desc:      "Instagram Post",
		Author: domain.Author{
			Nickname: "Instagram User",
			Avatar:   "",
		},
	}, nil
}
