// Package collection is the shared, live photo collection: records persist in
// postgres and every append is announced on the change feed.
package collection

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/port"
)

// Live implements port.PhotoCollection for one namespace
type Live struct {
	repo   port.PhotoRepository
	feed   port.ChangeFeed
	appID  string
	logger *slog.Logger
}

// NewLive creates the collection of appID
func NewLive(repo port.PhotoRepository, feed port.ChangeFeed, appID string, logger *slog.Logger) *Live {
	return &Live{repo: repo, feed: feed, appID: appID, logger: logger}
}

// Path returns the document path of the collection
func (l *Live) Path() string {
	return domain.CollectionPath(l.appID)
}

// Append stores record. A failed announcement is logged only: the record is
// already persisted and shows up with the next change.
func (l *Live) Append(ctx context.Context, record domain.NewPhotoRecord) (*domain.PhotoRecord, error) {
	created, err := l.repo.Create(ctx, l.appID, record)
	if err != nil {
		return nil, err
	}

	event := domain.PhotoAddedEvent{AppID: l.appID, PhotoID: created.ID, OccurredAt: time.Now().UTC()}
	if err := l.feed.PublishPhotoAdded(ctx, event); err != nil {
		l.logger.Warn("failed to announce photo", "error", err, "photo_id", created.ID, "path", l.Path())
	}
	return created, nil
}

// Subscribe delivers the full record set once, then again after every change.
// Snapshots are delivered one at a time; changes arriving during a load are
// coalesced into a single reload. After onError nothing else is delivered.
func (l *Live) Subscribe(ctx context.Context, onSnapshot func([]domain.PhotoRecord), onError func(error)) (port.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := &liveSubscription{
		cancel: cancel,
		kick:   make(chan struct{}, 1),
	}

	feedSub, err := l.feed.Subscribe(ctx, l.appID, func(domain.PhotoAddedEvent) {
		sub.trigger()
	}, func(err error) {
		sub.fail(err)
	})
	if err != nil {
		cancel()
		return nil, err
	}
	sub.feedSub = feedSub

	sub.trigger()
	go sub.run(ctx, l, onSnapshot, onError)
	return sub, nil
}

type liveSubscription struct {
	cancel  context.CancelFunc
	feedSub port.Subscription
	kick    chan struct{}

	mu     sync.Mutex
	failed error
	once   sync.Once
}

func (s *liveSubscription) trigger() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *liveSubscription) fail(err error) {
	s.mu.Lock()
	if s.failed == nil {
		s.failed = err
	}
	s.mu.Unlock()
	s.trigger()
}

func (s *liveSubscription) run(ctx context.Context, l *Live, onSnapshot func([]domain.PhotoRecord), onError func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.kick:
		}

		s.mu.Lock()
		failed := s.failed
		s.mu.Unlock()
		if failed != nil {
			onError(failed)
			s.Unsubscribe()
			return
		}

		records, err := l.repo.ListAll(ctx, l.appID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			onError(err)
			s.Unsubscribe()
			return
		}
		onSnapshot(records)
	}
}

func (s *liveSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		if s.feedSub != nil {
			s.feedSub.Unsubscribe()
		}
	})
}
