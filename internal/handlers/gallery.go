package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gaowanliang/TG-Gallery/internal/gallery"
	"github.com/gaowanliang/TG-Gallery/internal/metrics"
)

// listCacheControl marks list responses cacheable for a short interval; the
// collection changes rarely relative to read volume.
const listCacheControl = "public, max-age=60"

// DeleteRequest is the delete request body. The id may also arrive as a
// query parameter.
type DeleteRequest struct {
	ID string `json:"id"`
}

// DeleteResponse is the delete success response.
type DeleteResponse struct {
	OK        bool   `json:"ok"`
	DeletedID string `json:"deletedId"`
}

// ListGallery handles GET /api/gallery. The presence of either the limit or
// the cursor parameter selects pagination mode; otherwise the legacy flat
// listing is returned.
func (h *Handler) ListGallery(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := gallery.ListParams{
		Limit:    query.Get("limit"),
		HasLimit: query.Has("limit"),
		Cursor:   query.Get("cursor"),
	}

	if params.Paginated() {
		page, err := h.engine.List(r.Context(), params)
		if err != nil {
			if errors.Is(err, gallery.ErrInvalidCursor) {
				h.Error(w, http.StatusBadRequest, "Invalid cursor")
				return
			}
			h.Error(w, http.StatusInternalServerError, "database error")
			return
		}
		w.Header().Set("Cache-Control", listCacheControl)
		h.JSON(w, http.StatusOK, page)
		return
	}

	items, err := h.engine.ListLegacy(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	w.Header().Set("Cache-Control", listCacheControl)
	h.JSON(w, http.StatusOK, items)
}

// DeleteGalleryItem handles DELETE /api/gallery. The target id comes from
// the JSON body or, failing that, the query string.
func (h *Handler) DeleteGalleryItem(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	// A missing or malformed body is fine as long as the query carries the id.
	_ = json.NewDecoder(r.Body).Decode(&req)

	id := req.ID
	if id == "" {
		id = r.URL.Query().Get("id")
	}

	if err := h.engine.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, gallery.ErrMissingID):
			h.Error(w, http.StatusBadRequest, "Missing id")
		case errors.Is(err, gallery.ErrInvalidID):
			h.Error(w, http.StatusBadRequest, "Invalid id")
		case errors.Is(err, gallery.ErrNotFound):
			h.Error(w, http.StatusNotFound, "Not found")
		default:
			h.Error(w, http.StatusInternalServerError, "database error")
		}
		return
	}

	metrics.ItemsDeleted.Inc()
	h.JSON(w, http.StatusOK, DeleteResponse{OK: true, DeletedID: id})
}
