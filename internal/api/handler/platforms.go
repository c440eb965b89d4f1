package handler

import (
	"encoding/json"
	"net/http"

	"github.com/iconidentify/mediagrab/internal/domain"
)

// PlatformsHandler serves the platform list for the client's selector.
type PlatformsHandler struct{}

// NewPlatformsHandler creates a platforms handler.
func NewPlatformsHandler() *PlatformsHandler {
	return &PlatformsHandler{}
}

// PlatformInfo describes one selectable platform.
type PlatformInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// List handles GET /api/platforms
func (h *PlatformsHandler) List(w http.ResponseWriter, r *http.Request) {
	platforms := []PlatformInfo{
		{ID: string(domain.PlatformTikTok), Name: "TikTok", Enabled: true},
		{ID: string(domain.PlatformInstagram), Name: "Instagram", Enabled: true},
		{ID: string(domain.PlatformFacebook), Name: "Facebook", Enabled: false},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(platforms)
}
