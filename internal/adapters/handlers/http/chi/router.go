package chi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/media"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/pagectx"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/v1/gallery"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig holds the router settings that come from configuration
type RouterConfig struct {
	Env           string
	CookieName    string
	MaxUploadSize int64
}

// NewRouter builds http.Handler with chi
func NewRouter(logger *slog.Logger, pages pagectx.Store, site *web.Handler, galleryHandler *gallery.HandlerV1, photos *media.Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	//handle requestID to facilitate debug (X-Request-ID)
	//It fetches from request if exists, or creates it
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)

	if cfg.Env != "prod" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	})

	// photo URLs are stored in records, so they stay outside the page context
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get(media.Prefix+"/*", photos.Serve)
	})

	r.Group(func(r chi.Router) {
		r.Use(pagectx.Middleware(pages, cfg.CookieName, logger))

		// long lived, no timeout
		r.Get("/ws/gallery", galleryHandler.LiveV1)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			// multipart overhead on top of the photo itself
			r.Use(middleware.RequestSize(cfg.MaxUploadSize + 1<<20))

			r.Get("/", site.Index)
			r.Post("/gate", site.Gate)
			r.Post("/upload", site.Upload)

			r.Mount("/api/v1", galleryHandler.Routes())
		})
	})

	return r
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
