package identity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/port"
)

// Bootstrapper settles the identity of one page instance before the gallery and
// uploads are enabled. It never retries: a failed sign-in leaves the page not ready.
type Bootstrapper struct {
	auth   port.AuthClient
	token  string
	logger *slog.Logger

	mu          sync.RWMutex
	session     domain.Session
	errMsg      string
	started     bool
	closed      bool
	unsubscribe func()

	ready     chan struct{}
	readyOnce sync.Once
}

// NewBootstrapper creates a new Bootstrapper. initialToken may be empty.
func NewBootstrapper(auth port.AuthClient, initialToken string, logger *slog.Logger) *Bootstrapper {
	return &Bootstrapper{
		auth:   auth,
		token:  initialToken,
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// Start registers the identity listener. onSession is called every time the settled
// identity changes. Calling Start more than once has no effect.
func (b *Bootstrapper) Start(ctx context.Context, onSession func(domain.Session)) {
	b.mu.Lock()
	if b.started || b.closed {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	unsubscribe := b.auth.OnAuthStateChanged(func(user *domain.User) {
		b.handleUser(ctx, user, onSession)
	})

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		unsubscribe()
		return
	}
	b.unsubscribe = unsubscribe
}

func (b *Bootstrapper) handleUser(ctx context.Context, user *domain.User, onSession func(domain.Session)) {
	if user == nil {
		if b.auth.CurrentUser() != nil {
			return
		}
		if err := b.signIn(ctx); err != nil {
			b.logger.Error("auth sign-in error", "error", err)
			b.mu.Lock()
			b.errMsg = fmt.Sprintf("Auth failed: %s", err.Error())
			b.mu.Unlock()
		}
		return
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	changed := b.session.UserID != user.UID || !b.session.Ready
	b.session = domain.Session{UserID: user.UID, Ready: true}
	session := b.session
	b.mu.Unlock()

	b.readyOnce.Do(func() { close(b.ready) })

	if changed {
		b.logger.Info("identity ready", "user_id", user.UID, "anonymous", user.Anonymous)
		if onSession != nil {
			onSession(session)
		}
	}
}

func (b *Bootstrapper) signIn(ctx context.Context) error {
	if b.token != "" {
		_, err := b.auth.SignInWithCustomToken(ctx, b.token)
		return err
	}
	_, err := b.auth.SignInAnonymously(ctx)
	return err
}

// Session returns the current session
func (b *Bootstrapper) Session() domain.Session {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.session
}

// Err returns the user-visible sign-in error, empty when none
func (b *Bootstrapper) Err() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.errMsg
}

// Ready is closed once an identity has been settled
func (b *Bootstrapper) Ready() <-chan struct{} {
	return b.ready
}

// Close deregisters the identity listener
func (b *Bootstrapper) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}
