// Package pagectx binds every request to the page instance of the visitor's tab.
package pagectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Bolt667/TallyAndSimon/internal/core/service/page"
)

// Store resolves page instances
type Store interface {
	Open() (*page.Page, error)
	Get(id string) (*page.Page, error)
}

type ctxKey struct{}

// With returns a copy of ctx carrying p
func With(ctx context.Context, p *page.Page) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// From returns the page of the request, nil outside Middleware
func From(ctx context.Context) *page.Page {
	p, _ := ctx.Value(ctxKey{}).(*page.Page)
	return p
}

// Middleware loads the page named by the cookie, or mounts a new one and sets the cookie
func Middleware(store Store, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var p *page.Page
			if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
				p, _ = store.Get(c.Value)
			}

			if p == nil {
				var err error
				p, err = store.Open()
				if err != nil {
					logger.Error("error opening page", "error", err)
					http.Error(w, "service unavailable", http.StatusServiceUnavailable)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    p.ID(),
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(With(r.Context(), p)))
		})
	}
}
