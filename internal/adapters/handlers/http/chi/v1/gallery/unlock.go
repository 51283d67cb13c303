package gallery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/pagectx"
	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
)

// V1UnlockRequest is the body request for unlock
type V1UnlockRequest struct {
	Password string `json:"password"`
}

// V1UnlockResponse is the response of unlock
type V1UnlockResponse struct {
	Unlocked bool   `json:"unlocked"`
	Message  string `json:"message,omitempty"`
}

// UnlockV1 checks the gate password for the page
func (h *HandlerV1) UnlockV1(w http.ResponseWriter, r *http.Request) {
	var req V1UnlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding unlock request", "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	p := pagectx.From(r.Context())
	err := p.Unlock(req.Password)
	switch {
	case errors.Is(err, domain.ErrWrongPassword):
		writeJSON(w, http.StatusUnauthorized, V1UnlockResponse{Message: p.View().GateMessage})
	case err != nil:
		h.logger.Error("error unlocking gate", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, V1UnlockResponse{Unlocked: true})
	}
}
