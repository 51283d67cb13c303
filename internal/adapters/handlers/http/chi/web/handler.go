package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/pagectx"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/v1/gallery"
	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/service/page"
)

//go:embed templates/*.html
var templates embed.FS

// Handler renders the site and handles its plain HTML forms
type Handler struct {
	tmpl          *template.Template
	content       Content
	maxUploadSize int64
	settleTimeout time.Duration
	logger        *slog.Logger
}

// NewHandler creates Handler
func NewHandler(content Content, maxUploadSize int64, logger *slog.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		tmpl:          tmpl,
		content:       content,
		maxUploadSize: maxUploadSize,
		settleTimeout: 3 * time.Second,
		logger:        logger,
	}, nil
}

type indexData struct {
	Content Content
	View    page.View
}

// Index renders the whole site for the page
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	p := pagectx.From(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), h.settleTimeout)
	p.WaitSettled(ctx)
	cancel()

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "index.html", indexData{Content: h.content, View: p.View()}); err != nil {
		h.logger.Error("error rendering index", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// Gate handles the gate form
func (h *Handler) Gate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	p := pagectx.From(r.Context())
	if err := p.Unlock(r.PostForm.Get("password")); err != nil && !errors.Is(err, domain.ErrWrongPassword) {
		h.logger.Error("error unlocking gate", "error", err)
	}
	http.Redirect(w, r, "/#gallery", http.StatusSeeOther)
}

// Upload handles the upload form. The outcome is shown by the next render.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	req, err := gallery.ReadUploadRequest(r, h.maxUploadSize)
	if err != nil {
		h.logger.Error("error reading upload form", "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	pagectx.From(r.Context()).Upload(r.Context(), req)
	http.Redirect(w, r, "/#gallery", http.StatusSeeOther)
}
