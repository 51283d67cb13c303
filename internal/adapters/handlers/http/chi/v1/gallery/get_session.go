package gallery

import (
	"net/http"

	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/pagectx"
)

// V1SessionResponse is the response of get session
type V1SessionResponse struct {
	UserID string `json:"userId"`
	Ready  bool   `json:"ready"`
	Error  string `json:"error,omitempty"`
}

// GetSessionV1 returns the identity of the page
func (h *HandlerV1) GetSessionV1(w http.ResponseWriter, r *http.Request) {
	p := pagectx.From(r.Context())
	h.settle(r.Context(), p.WaitSettled)

	view := p.View()
	writeJSON(w, http.StatusOK, V1SessionResponse{
		UserID: view.UserID,
		Ready:  view.Ready,
		Error:  view.AuthError,
	})
}
