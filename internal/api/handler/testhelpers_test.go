package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/proxy"
)

// errContext stands in for any unexpected internal failure.
var errContext = errors.New("connection reset by peer")

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockResolver is a test implementation of Resolver.
type mockResolver struct {
	result  *domain.NormalizedResult
	err     error
	lastReq domain.DownloadRequest
	called  int
}

func (m *mockResolver) Resolve(ctx context.Context, req domain.DownloadRequest) (*domain.NormalizedResult, error) {
	m.called++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockFetcher is a test implementation of MediaFetcher.
type mockFetcher struct {
	media     *proxy.Media
	streamErr error

	imageData []byte
	imageType string
	imageErr  error
}

func (m *mockFetcher) Stream(ctx context.Context, mediaURL, suggestedFilename string) (*proxy.Media, error) {
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	return m.media, nil
}

func (m *mockFetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	if m.imageErr != nil {
		return nil, "", m.imageErr
	}
	return m.imageData, m.imageType, nil
}

func testMedia(body string) *proxy.Media {
	return &proxy.Media{
		Body:          io.NopCloser(bytes.NewReader([]byte(body))),
		ContentType:   "video/mp4",
		ContentLength: int64(len(body)),
		Filename:      "clip.mp4",
	}
}

func sampleResult() *domain.NormalizedResult {
	size := int64(1000)
	return &domain.NormalizedResult{
		Downloads: []domain.DownloadOption{
			{Kind: domain.KindNormal, Label: "No Watermark", URL: "https://cdn.example/play.mp4", Size: &size},
		},
		Video:  []string{"https://cdn.example/play.mp4"},
		Images: []string{},
		Cover:  "https://cdn.example/cover.jpg",
		Desc:   "a video",
		Author: domain.Author{Nickname: "someone", Avatar: "https://cdn.example/a.jpg"},
	}
}
