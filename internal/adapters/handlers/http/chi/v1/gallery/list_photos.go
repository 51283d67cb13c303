package gallery

import (
	"net/http"

	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/pagectx"
	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
)

// V1ListPhotosResponse is the response of list photos
type V1ListPhotosResponse struct {
	Photos []domain.PhotoRecord `json:"photos"`
	Error  string               `json:"error,omitempty"`
}

// ListPhotosV1 returns the newest-first gallery of the page
func (h *HandlerV1) ListPhotosV1(w http.ResponseWriter, r *http.Request) {
	p := pagectx.From(r.Context())
	h.settle(r.Context(), p.WaitGallery)

	view := p.View()
	if !view.GalleryVisible() {
		http.Error(w, "gallery locked", http.StatusForbidden)
		return
	}

	writeJSON(w, http.StatusOK, V1ListPhotosResponse{
		Photos: view.Photos,
		Error:  view.GalleryError,
	})
}
