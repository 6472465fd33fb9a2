package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gaowanliang/TG-Gallery/internal/resolver"
)

// fileCacheControl marks proxied file responses immutable: a file_id always
// maps to the same bytes once resolved.
const fileCacheControl = "public, max-age=31536000, immutable"

// FileURLResponse is the resolved-URL response.
type FileURLResponse struct {
	URL string `json:"url"`
}

// FileURL handles GET /api/fileurl, returning a direct download URL for a
// file_id.
func (h *Handler) FileURL(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("file_id")
	if fileID == "" {
		h.Error(w, http.StatusBadRequest, "file_id required")
		return
	}

	resolved, err := h.resolver.ResolveURL(r.Context(), fileID)
	if err != nil {
		h.resolveError(w, err)
		return
	}

	h.JSON(w, http.StatusOK, FileURLResponse{URL: resolved.URL})
}

// FileProxy handles GET /api/file, relaying the file bytes from the first
// provider whose content fetch succeeds.
func (h *Handler) FileProxy(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("file_id")
	if fileID == "" {
		h.Error(w, http.StatusBadRequest, "file_id required")
		return
	}

	stream, err := h.resolver.Open(r.Context(), fileID)
	if err != nil {
		h.resolveError(w, err)
		return
	}
	defer stream.Body.Close()

	w.Header().Set("Content-Type", stream.ContentType)
	w.Header().Set("Cache-Control", fileCacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, stream.Body)
}

// resolveError maps resolver failures onto the API error contract.
func (h *Handler) resolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, resolver.ErrNoCredential):
		h.Error(w, http.StatusInternalServerError, "No bot token available")
	case errors.Is(err, resolver.ErrAllProvidersFailed):
		h.Error(w, http.StatusBadGateway, "Failed to retrieve file URL")
	default:
		h.Error(w, http.StatusInternalServerError, "resolution failed")
	}
}
