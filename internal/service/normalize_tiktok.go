package service

import (
	"strings"

	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/provider"
)

// Download option labels.
const (
	labelNoWatermark   = "No Watermark"
	labelWithWatermark = "With Watermark (HD)"
	labelAudio         = "Audio MP3"
)

// normalizeTikTok maps a raw TikWM payload to the canonical result.
//
// Slideshow posts suppress every video option: TikWM renders slideshow
// "video" as a broken black clip, so only the still images and the audio
// track are offered. For regular posts the standard-definition rendition
// is preferred over HD because hdplay frequently ships HEVC, which legacy
// players cannot decode.
func normalizeTikTok(post *provider.TikwmPost) (*domain.NormalizedResult, error) {
	var downloads []domain.DownloadOption

	slideshow := len(post.Images) > 0

	if !slideshow {
		if post.Play != "" {
			downloads = append(downloads, domain.DownloadOption{
				Kind:  domain.KindNormal,
				Label: labelNoWatermark,
				URL:   post.Play,
				Size:  sizePtr(post.Size),
			})
		} else if post.Hdplay != "" && !strings.Contains(post.Hdplay, "error") {
			downloads = append(downloads, domain.DownloadOption{
				Kind:  domain.KindNormal,
				Label: labelNoWatermark,
				URL:   post.Hdplay,
				Size:  sizePtr(post.HdSize),
			})
		}

		if post.Wmplay != "" {
			wmSize := post.WmSize
			if wmSize == 0 {
				wmSize = post.Size
			}
			downloads = append(downloads, domain.DownloadOption{
				Kind:  domain.KindWatermark,
				Label: labelWithWatermark,
				URL:   post.Wmplay,
				Size:  sizePtr(wmSize),
			})
		}
	}

	if post.Music != "" {
		downloads = append(downloads, domain.DownloadOption{
			Kind:  domain.KindMusic,
			Label: labelAudio,
			URL:   post.Music,
		})
	}

	// A pure-image post with zero downloads is valid; only a post with
	// neither downloads nor images is an error.
	if len(downloads) == 0 && !slideshow {
		return nil, &domain.NotFoundError{
			Message: "Could not find a watermark-free version. The video might be private or region-locked.",
		}
	}

	result := &domain.NormalizedResult{
		Downloads: downloads,
		Video:     []string{},
		Images:    append([]string{}, post.Images...),
		Cover:     post.Cover,
		Desc:      post.Title,
		Author: domain.Author{
			Nickname: post.Author.Nickname,
			Avatar:   post.Author.Avatar,
		},
	}
	if len(downloads) > 0 {
		result.Video = []string{downloads[0].URL}
	}
	if post.Music != "" {
		music := post.Music
		result.Music = &music
	}
	return result, nil
}

func sizePtr(n int64) *int64 {
	if n <= 0 {
		return nil
	}
	return &n
}
