// Package media serves stored guest photos under permanent app URLs.
package media

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/port"
	"github.com/Bolt667/TallyAndSimon/internal/core/service/upload"

	"github.com/go-chi/chi/v5"
)

// Prefix is the route photos are served from
const Prefix = "/photos"

// Handler streams objects out of storage
type Handler struct {
	objects port.ObjectReader
	logger  *slog.Logger
}

// NewHandler creates Handler
func NewHandler(objects port.ObjectReader, logger *slog.Logger) *Handler {
	return &Handler{objects: objects, logger: logger}
}

// Serve handles GET /photos/*. Only guest uploads are reachable.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		// chi routes on the raw path when one is set
		unescaped, err := url.PathUnescape(key)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		key = unescaped
	}
	if !strings.HasPrefix(key, upload.KeyPrefix) || strings.Contains(key, "..") {
		http.NotFound(w, r)
		return
	}

	obj, err := h.objects.GetObject(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("error reading photo", "key", key, "error", err)
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	defer obj.Body.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	// keys are never rewritten
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.Warn("photo stream interrupted", "key", key, "error", err)
	}
}
