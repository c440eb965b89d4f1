// Package proxy re-serves upstream media bytes on behalf of the client,
// working around anti-hotlinking defenses: referrer checks, transient 403s,
// and missing or wrong content headers.
package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iconidentify/mediagrab/internal/config"
	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/upstream"
)

// fetchState drives the retry state machine. The only allowed transition is
// stateWithReferrer -> stateWithoutReferrer, taken once on a 403: some hosts
// reject requests whose referrer does not match but accept anonymous ones.
type fetchState int

const (
	stateWithReferrer fetchState = iota
	stateWithoutReferrer
)

// Media is a fetched upstream resource ready to be re-served. Close the
// body when done; closing also releases the fetch deadline.
type Media struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	Filename      string
}

// Streamer fetches media and thumbnail URLs with browser-like headers.
type Streamer struct {
	client upstream.Doer
	cfg    config.ProxyConfig
	logger *slog.Logger
}

// NewStreamer creates a media proxy streamer.
func NewStreamer(client upstream.Doer, cfg config.ProxyConfig, logger *slog.Logger) *Streamer {
	return &Streamer{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Stream fetches mediaURL and returns the bytes with a safe filename and
// exact content length. The suggested filename is sanitized before use and
// its extension corrected against the observed content type. The fetch is
// bounded by the configured deadline; exceeding it yields ErrFetchTimeout.
func (s *Streamer) Stream(ctx context.Context, mediaURL, suggestedFilename string) (*Media, error) {
	filename := SanitizeFilename(suggestedFilename)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)

	resp, err := s.fetch(ctx, mediaURL)
	if err != nil {
		cancel()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrFetchTimeout
		}
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	filename = correctExtension(filename, contentType)

	length := resp.ContentLength
	if length < 0 {
		if cl := resp.Header.Get("Content-Length"); cl != "" {
			length, _ = strconv.ParseInt(cl, 10, 64)
		} else {
			length = -1
		}
	}

	// When the upstream declares its length we stream the body straight
	// through and forward the length verbatim. Only a length-less response
	// is buffered, so an exact Content-Length can still be emitted.
	if length >= 0 {
		return &Media{
			Body:          &cancelReadCloser{rc: resp.Body, cancel: cancel},
			ContentType:   contentType,
			ContentLength: length,
			Filename:      filename,
		}, nil
	}

	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrFetchTimeout
		}
		return nil, fmt.Errorf("read media body: %w", err)
	}

	return &Media{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   contentType,
		ContentLength: int64(len(data)),
		Filename:      filename,
	}, nil
}

// fetch runs the two-state fetch. At most two upstream calls are made.
func (s *Streamer) fetch(ctx context.Context, mediaURL string) (*http.Response, error) {
	state := stateWithReferrer

	for {
		resp, err := s.fetchOnce(ctx, mediaURL, state)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusForbidden && state == stateWithReferrer {
			s.logger.Info("403 from media host, retrying without referrer", "url", mediaURL)
			resp.Body.Close()
			state = stateWithoutReferrer
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return nil, &domain.FetchError{URL: mediaURL, Status: resp.StatusCode}
		}

		return resp, nil
	}
}

func (s *Streamer) fetchOnce(ctx context.Context, mediaURL string, state fetchState) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", s.cfg.UserAgent)
	if state == stateWithReferrer {
		req.Header.Set("Referer", s.cfg.Referer)
		// Open-ended range, the request shape a browser media element sends.
		req.Header.Set("Range", "bytes=0-")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}
	return resp, nil
}

// cancelReadCloser releases the fetch deadline together with the body.
type cancelReadCloser struct {
	rc     io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Read(p []byte) (int, error) {
	return c.rc.Read(p)
}

func (c *cancelReadCloser) Close() error {
	err := c.rc.Close()
	c.cancel()
	return err
}
