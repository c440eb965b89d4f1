package proxy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iconidentify/mediagrab/internal/config"
	"github.com/iconidentify/mediagrab/internal/domain"
)

func testProxyConfig() config.ProxyConfig {
	return config.ProxyConfig{
		FetchTimeout: 5 * time.Second,
		ImageTimeout: 5 * time.Second,
		UserAgent:    "test-agent",
		Referer:      "https://www.tiktok.com/",
	}
}

func newTestStreamer(cfg config.ProxyConfig) *Streamer {
	return NewStreamer(&http.Client{}, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStreamer_Stream_Success(t *testing.T) {
	content := []byte("media bytes here")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("User-Agent = %q, want %q", ua, "test-agent")
		}
		if ref := r.Header.Get("Referer"); ref != "https://www.tiktok.com/" {
			t.Errorf("Referer = %q, want the platform referrer", ref)
		}
		if rng := r.Header.Get("Range"); rng != "bytes=0-" {
			t.Errorf("Range = %q, want %q", rng, "bytes=0-")
		}
		w.Header().Set("Content-Type", "video/mp4")
		w.Write(content)
	}))
	defer server.Close()

	s := newTestStreamer(testProxyConfig())
	media, err := s.Stream(context.Background(), server.URL, "clip.mp4")
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	defer media.Body.Close()

	if media.ContentType != "video/mp4" {
		t.Errorf("ContentType = %q, want video/mp4", media.ContentType)
	}
	if media.ContentLength != int64(len(content)) {
		t.Errorf("ContentLength = %d, want %d", media.ContentLength, len(content))
	}
	if media.Filename != "clip.mp4" {
		t.Errorf("Filename = %q, want clip.mp4", media.Filename)
	}

	data, _ := io.ReadAll(media.Body)
	if string(data) != string(content) {
		t.Errorf("body = %q, want %q", data, content)
	}
}

func TestStreamer_Stream_RetriesWithoutRefererOn403(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		switch n {
		case 1:
			if r.Header.Get("Referer") == "" {
				t.Error("first attempt should carry the referrer")
			}
			w.WriteHeader(http.StatusForbidden)
		case 2:
			if ref := r.Header.Get("Referer"); ref != "" {
				t.Errorf("retry carried Referer %q, want none", ref)
			}
			w.Write([]byte("anonymous fetch ok"))
		default:
			t.Errorf("attempt %d: at most two upstream calls allowed", n)
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer server.Close()

	s := newTestStreamer(testProxyConfig())
	media, err := s.Stream(context.Background(), server.URL, "clip.mp4")
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	defer media.Body.Close()

	data, _ := io.ReadAll(media.Body)
	if string(data) != "anonymous fetch ok" {
		t.Errorf("body = %q, want the retry body", data)
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestStreamer_Stream_SecondForbiddenIsTerminal(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	s := newTestStreamer(testProxyConfig())
	_, err := s.Stream(context.Background(), server.URL, "clip.mp4")

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %v, want FetchError", err)
	}
	if fetchErr.Status != http.StatusForbidden {
		t.Errorf("status = %d, want 403", fetchErr.Status)
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("attempts = %d, want exactly 2", got)
	}
}

func TestStreamer_Stream_OtherStatusNoRetry(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := newTestStreamer(testProxyConfig())
	_, err := s.Stream(context.Background(), server.URL, "clip.mp4")

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("err = %v, want FetchError", err)
	}
	if fetchErr.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", fetchErr.Status)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1 (only 403 triggers the retry)", got)
	}
}

func TestStreamer_Stream_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte("too late"))
	}))
	defer server.Close()

	cfg := testProxyConfig()
	cfg.FetchTimeout = 50 * time.Millisecond

	s := newTestStreamer(cfg)
	_, err := s.Stream(context.Background(), server.URL, "clip.mp4")
	if !errors.Is(err, domain.ErrFetchTimeout) {
		t.Fatalf("err = %v, want ErrFetchTimeout", err)
	}
}

func TestStreamer_Stream_BuffersWhenLengthUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Force a chunked response with no Content-Length.
		flusher := w.(http.Flusher)
		w.Write([]byte("first chunk "))
		flusher.Flush()
		w.Write([]byte("second chunk"))
	}))
	defer server.Close()

	s := newTestStreamer(testProxyConfig())
	media, err := s.Stream(context.Background(), server.URL, "clip.mp4")
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	defer media.Body.Close()

	want := "first chunk second chunk"
	if media.ContentLength != int64(len(want)) {
		t.Errorf("ContentLength = %d, want %d (exact buffered length)", media.ContentLength, len(want))
	}
	data, _ := io.ReadAll(media.Body)
	if string(data) != want {
		t.Errorf("body = %q, want %q", data, want)
	}
}

func TestStreamer_Stream_FilenameHandling(t *testing.T) {
	tests := []struct {
		name        string
		suggested   string
		contentType string
		want        string
	}{
		{"audio corrects extension", "clip.mp4", "audio/mpeg", "clip.mp3"},
		{"image corrects extension", "clip.mp4", "image/png", "clip.jpeg"},
		{"video unchanged", "clip.mp4", "video/mp4", "clip.mp4"},
		{"unsafe characters sanitized", "my video!@#.mp4", "video/mp4", "my_video___.mp4"},
		{"missing filename defaults", "", "video/mp4", DefaultFilename},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.Write([]byte("x"))
			}))
			defer server.Close()

			s := newTestStreamer(testProxyConfig())
			media, err := s.Stream(context.Background(), server.URL, tt.suggested)
			if err != nil {
				t.Fatalf("Stream failed: %v", err)
			}
			media.Body.Close()

			if media.Filename != tt.want {
				t.Errorf("Filename = %q, want %q", media.Filename, tt.want)
			}
		})
	}
}

func TestStreamer_Stream_MissingContentTypeDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		w.Write([]byte("raw"))
	}))
	defer server.Close()

	s := newTestStreamer(testProxyConfig())
	media, err := s.Stream(context.Background(), server.URL, "clip.mp4")
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	defer media.Body.Close()

	if media.ContentType != "application/octet-stream" {
		t.Errorf("ContentType = %q, want application/octet-stream", media.ContentType)
	}
}
