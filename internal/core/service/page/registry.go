package page

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"

	"github.com/google/uuid"
)

// Registry owns the mounted pages, keyed by page id
type Registry struct {
	deps    Deps
	baseCtx context.Context
	logger  *slog.Logger

	mu     sync.RWMutex
	pages  map[string]*Page
	closed bool
}

// NewRegistry creates a Registry. Pages are mounted under ctx, so cancelling it
// stops every page.
func NewRegistry(ctx context.Context, deps Deps) *Registry {
	return &Registry{
		deps:    deps,
		baseCtx: ctx,
		logger:  deps.Logger,
		pages:   make(map[string]*Page),
	}
}

// Open creates and mounts a new page
func (r *Registry) Open() (*Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, domain.ErrPageNotFound
	}

	p := New(uuid.NewString(), r.deps)
	r.pages[p.ID()] = p
	p.Mount(r.baseCtx)

	r.logger.Debug("page mounted", "page_id", p.ID(), "pages", len(r.pages))
	return p, nil
}

// Get returns the page with id and marks it as used
func (r *Registry) Get(id string) (*Page, error) {
	r.mu.RLock()
	p, ok := r.pages[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	p.Touch(time.Now())
	return p, nil
}

// Len returns the number of mounted pages
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pages)
}

// Sweep unmounts every page not used since idleSince and returns how many went away
func (r *Registry) Sweep(ctx context.Context, idleSince time.Time) int {
	r.mu.Lock()
	var stale []*Page
	for id, p := range r.pages {
		if p.LastSeen().Before(idleSince) {
			stale = append(stale, p)
			delete(r.pages, id)
		}
	}
	r.mu.Unlock()

	for _, p := range stale {
		p.Unmount()
	}
	if len(stale) > 0 {
		r.logger.InfoContext(ctx, "idle pages unmounted", "count", len(stale))
	}
	return len(stale)
}

// Close unmounts every page. Open fails afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	pages := r.pages
	r.pages = make(map[string]*Page)
	r.mu.Unlock()

	for _, p := range pages {
		p.Unmount()
	}
}
