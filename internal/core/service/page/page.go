// Package page holds the per-tab state of the site. A Page is what a browser tab
// mounts: its own identity, gallery subscription, upload state and gate lock.
package page

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Bolt667/TallyAndSimon/internal/config"
	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/port"
	"github.com/Bolt667/TallyAndSimon/internal/core/service/gallery"
	"github.com/Bolt667/TallyAndSimon/internal/core/service/gate"
	"github.com/Bolt667/TallyAndSimon/internal/core/service/identity"
	"github.com/Bolt667/TallyAndSimon/internal/core/service/upload"
)

// LockedMessage is the upload outcome while the gallery gate is still closed
const LockedMessage = "Enter the password to open the gallery first."

// Deps are the shared collaborators every page is built from
type Deps struct {
	Auth             port.AuthClientFactory
	Collection       port.PhotoCollection
	Storage          port.ObjectStorage
	Gate             *gate.Gate
	GateMode         config.GateMode
	Upload           config.FileUploadConfig
	InitialAuthToken string
	Logger           *slog.Logger
}

// View is a snapshot of everything the presentation layer renders for a page
type View struct {
	PageID       string               `json:"pageId"`
	UserID       string               `json:"userId"`
	Ready        bool                 `json:"ready"`
	AuthError    string               `json:"authError,omitempty"`
	GateMode     config.GateMode      `json:"gateMode"`
	Unlocked     bool                 `json:"unlocked"`
	GateMessage  string               `json:"gateMessage,omitempty"`
	Photos       []domain.PhotoRecord `json:"photos"`
	GalleryError string               `json:"galleryError,omitempty"`
	Uploading    bool                 `json:"uploading"`
	Outcome      domain.UploadOutcome `json:"outcome"`
	CanSubmit    bool                 `json:"canSubmit"`
}

// GalleryVisible reports whether the photos may be shown
func (v View) GalleryVisible() bool {
	return v.GateMode != config.GateModeGallery || v.Unlocked
}

// PasswordOnSubmit reports whether the upload form carries the gate password
func (v View) PasswordOnSubmit() bool {
	return v.GateMode == config.GateModeUpload
}

// Page is one mounted instance of the site
type Page struct {
	id     string
	mode   config.GateMode
	logger *slog.Logger

	identity *identity.Bootstrapper
	watcher  *gallery.Watcher
	uploads  *upload.Service
	lock     *gate.Lock

	mu        sync.Mutex
	mounted   bool
	cancel    context.CancelFunc
	done      chan struct{}
	lastSeen  time.Time
	listeners map[int]func()
	nextID    int
	stopWatch func()
}

// New builds an unmounted page
func New(id string, deps Deps) *Page {
	logger := deps.Logger.With("page_id", id)

	p := &Page{
		id:        id,
		mode:      deps.GateMode,
		logger:    logger,
		identity:  identity.NewBootstrapper(deps.Auth.NewClient(), deps.InitialAuthToken, logger),
		watcher:   gallery.NewWatcher(deps.Collection, logger),
		lock:      deps.Gate.NewLock(),
		lastSeen:  time.Now(),
		listeners: make(map[int]func()),
	}

	opts := []upload.Option{upload.WithBusyNotify(p.notify)}
	if deps.GateMode == config.GateModeUpload {
		opts = append(opts, upload.WithPasswordCheck(deps.Gate))
	}
	p.uploads = upload.NewService(deps.Storage, deps.Collection, deps.Upload, logger, opts...)
	p.stopWatch = p.watcher.Listen(p.notify)
	return p
}

// ID returns the page id
func (p *Page) ID() string {
	return p.id
}

// Mount starts identity bootstrapping in the background. Every settled identity
// (re)activates the gallery watcher. Mounting twice has no effect.
func (p *Page) Mount(ctx context.Context) {
	p.mu.Lock()
	if p.mounted {
		p.mu.Unlock()
		return
	}
	p.mounted = true
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		p.identity.Start(ctx, func(session domain.Session) {
			if err := p.watcher.Activate(ctx, session); err != nil {
				p.logger.Error("error activating gallery", "error", err)
			}
			p.notify()
		})
		p.notify()
	}()
}

// Unmount stops everything the page started. The page cannot be mounted again.
func (p *Page) Unmount() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.listeners = make(map[int]func())
	p.mounted = true
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	p.identity.Close()
	p.watcher.Close()
	p.stopWatch()
}

// WaitSettled blocks until the first sign-in attempt has finished or ctx is done
func (p *Page) WaitSettled(ctx context.Context) {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// WaitGallery is WaitSettled followed, when the gallery is visible, by a wait for
// its first snapshot or load error
func (p *Page) WaitGallery(ctx context.Context) {
	p.WaitSettled(ctx)
	if !p.View().GalleryVisible() {
		return
	}
	select {
	case <-p.watcher.Loaded():
	case <-ctx.Done():
	}
}

// Session returns the current session
func (p *Page) Session() domain.Session {
	return p.identity.Session()
}

// Unlock checks candidate against the gate
func (p *Page) Unlock(candidate string) error {
	err := p.lock.Unlock(candidate)
	p.notify()
	return err
}

// Upload submits one photo for the page's session
func (p *Page) Upload(ctx context.Context, req domain.UploadRequest) domain.UploadOutcome {
	if p.mode == config.GateModeGallery && !p.lock.Unlocked() {
		if req.File != nil {
			req.File.Close()
		}
		return domain.ErrorOutcome(LockedMessage)
	}

	outcome := p.uploads.Upload(ctx, p.identity.Session(), req)
	p.notify()
	return outcome
}

// View returns a snapshot of the page state
func (p *Page) View() View {
	session := p.identity.Session()
	v := View{
		PageID:      p.id,
		UserID:      session.UserID,
		Ready:       session.Ready,
		AuthError:   p.identity.Err(),
		GateMode:    p.mode,
		Unlocked:    p.lock.Unlocked(),
		GateMessage: p.lock.Message(),
		Uploading:   p.uploads.Busy(),
		Outcome:     p.uploads.Outcome(),
		CanSubmit:   p.uploads.CanSubmit(session),
		Photos:      []domain.PhotoRecord{},
	}
	if v.GalleryVisible() {
		v.Photos = p.watcher.Photos()
		v.GalleryError = p.watcher.Err()
	}
	return v
}

// Listen registers fn to be called after every state change
func (p *Page) Listen(fn func()) (remove func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *Page) notify() {
	p.mu.Lock()
	fns := make([]func(), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Touch marks the page as used now
func (p *Page) Touch(now time.Time) {
	p.mu.Lock()
	p.lastSeen = now
	p.mu.Unlock()
}

// LastSeen returns when the page was last used
func (p *Page) LastSeen() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}
