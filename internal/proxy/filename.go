package proxy

import (
	"regexp"
	"strings"
)

// DefaultFilename is used when the client suggests no filename.
const DefaultFilename = "tiktok_video.mp4"

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFilename replaces every character outside [a-zA-Z0-9._-] with an
// underscore. The result is embedded in a Content-Disposition header, so
// this guards against header injection, not just ugly names. Sanitizing an
// already-sanitized name is a no-op.
func SanitizeFilename(name string) string {
	if name == "" {
		return DefaultFilename
	}
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// correctExtension fixes the filename extension when the observed content
// type contradicts a .mp4 suggestion: TikTok audio tracks and slideshow
// images are routinely requested under the video's .mp4 name. Any other
// mismatch is left alone.
func correctExtension(name, contentType string) string {
	if !strings.HasSuffix(name, ".mp4") {
		return name
	}
	switch {
	case strings.Contains(contentType, "audio"):
		return strings.TrimSuffix(name, ".mp4") + ".mp3"
	case strings.Contains(contentType, "image"):
		return strings.TrimSuffix(name, ".mp4") + ".jpeg"
	}
	return name
}
