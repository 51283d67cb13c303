package gallery

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/port"
)

// LoadFailedMessage is shown when the gallery subscription fails
const LoadFailedMessage = "Failed to load photos."

// Watcher keeps a newest-first view of the shared photo collection for one page
type Watcher struct {
	collection port.PhotoCollection
	logger     *slog.Logger

	mu        sync.RWMutex
	sub       port.Subscription
	session   domain.Session
	photos    []domain.PhotoRecord
	errMsg    string
	loaded    chan struct{}
	listeners map[int]func()
	nextID    int
	closed    bool
}

// NewWatcher creates a new Watcher
func NewWatcher(collection port.PhotoCollection, logger *slog.Logger) *Watcher {
	loaded := make(chan struct{})
	close(loaded)
	return &Watcher{
		collection: collection,
		logger:     logger,
		loaded:     loaded,
		listeners:  make(map[int]func()),
	}
}

// Activate re-mounts the watcher for session: any previous subscription is released,
// and a new one is opened only when the session is ready.
func (w *Watcher) Activate(ctx context.Context, session domain.Session) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	previous := w.sub
	w.sub = nil
	w.session = session
	w.markLoaded()
	if session.Ready {
		w.loaded = make(chan struct{})
	}
	w.mu.Unlock()

	if previous != nil {
		previous.Unsubscribe()
	}
	if !session.Ready {
		return nil
	}

	sub, err := w.collection.Subscribe(ctx, w.onSnapshot(session), w.onError(session))
	if err != nil {
		w.logger.Error("error subscribing to photos", "error", err)
		w.setError(session)
		return err
	}

	w.mu.Lock()
	if w.closed || w.session != session {
		w.mu.Unlock()
		sub.Unsubscribe()
		return nil
	}
	w.sub = sub
	w.mu.Unlock()
	return nil
}

func (w *Watcher) onSnapshot(session domain.Session) func([]domain.PhotoRecord) {
	return func(records []domain.PhotoRecord) {
		sorted := SortNewestFirst(records)

		w.mu.Lock()
		if w.closed || w.session != session {
			w.mu.Unlock()
			return
		}
		w.photos = sorted
		w.errMsg = ""
		w.markLoaded()
		w.mu.Unlock()

		w.notify()
	}
}

func (w *Watcher) onError(session domain.Session) func(error) {
	return func(err error) {
		w.logger.Error("error fetching photos", "error", err)
		w.setError(session)
	}
}

func (w *Watcher) setError(session domain.Session) {
	w.mu.Lock()
	if w.closed || w.session != session {
		w.mu.Unlock()
		return
	}
	w.errMsg = LoadFailedMessage
	w.markLoaded()
	w.mu.Unlock()

	w.notify()
}

// markLoaded closes the loaded channel once. Callers hold w.mu.
func (w *Watcher) markLoaded() {
	select {
	case <-w.loaded:
	default:
		close(w.loaded)
	}
}

// Loaded is closed once the current subscription has delivered its first snapshot
// or error. It is already closed when no subscription is pending.
func (w *Watcher) Loaded() <-chan struct{} {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loaded
}

// SortNewestFirst returns a copy of records ordered by descending timestamp.
// Records without a timestamp sort last; ties keep their delivery order.
func SortNewestFirst(records []domain.PhotoRecord) []domain.PhotoRecord {
	sorted := make([]domain.PhotoRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortKey() > sorted[j].SortKey()
	})
	return sorted
}

// Photos returns the current sorted snapshot
func (w *Watcher) Photos() []domain.PhotoRecord {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]domain.PhotoRecord, len(w.photos))
	copy(out, w.photos)
	return out
}

// Err returns the user-visible load error, empty when none
func (w *Watcher) Err() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.errMsg
}

// Listen registers fn to be called after every snapshot or error
func (w *Watcher) Listen(fn func()) (remove func()) {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = fn
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		delete(w.listeners, id)
		w.mu.Unlock()
	}
}

func (w *Watcher) notify() {
	w.mu.RLock()
	fns := make([]func(), 0, len(w.listeners))
	for _, fn := range w.listeners {
		fns = append(fns, fn)
	}
	w.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// Close releases the subscription. The watcher cannot be re-activated afterwards.
func (w *Watcher) Close() {
	w.mu.Lock()
	sub := w.sub
	w.sub = nil
	w.closed = true
	w.markLoaded()
	w.listeners = make(map[int]func())
	w.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}
