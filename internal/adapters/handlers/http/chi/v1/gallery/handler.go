package gallery

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// HandlerV1 is the handler for v1 gallery routes
type HandlerV1 struct {
	maxUploadSize int64
	settleTimeout time.Duration
	logger        *slog.Logger
}

// NewGalleryHandlerV1 creates HandlerV1
func NewGalleryHandlerV1(maxUploadSize int64, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		maxUploadSize: maxUploadSize,
		settleTimeout: 5 * time.Second,
		logger:        logger,
	}
}

// Routes exposes routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/session", h.GetSessionV1)
	router.Post("/gate", h.UnlockV1)
	router.Get("/photos", h.ListPhotosV1)
	router.Post("/photos", h.UploadPhotoV1)

	return router
}

// settle gives a freshly mounted page a moment to sign in
func (h *HandlerV1) settle(ctx context.Context, wait func(context.Context)) {
	ctx, cancel := context.WithTimeout(ctx, h.settleTimeout)
	defer cancel()
	wait(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
