package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Bolt667/TallyAndSimon/internal/config"
	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/port"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Feed publishes and delivers photo collection changes over JetStream
type Feed struct {
	logger *slog.Logger
	conn   *nats.Conn
	js     jetstream.JetStream
	config config.NATSConfig

	mu     sync.Mutex
	subs   map[*subscription]struct{}
	closed bool
}

// NewFeed connects to NATS and makes sure the change stream exists
func NewFeed(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (*Feed, error) {
	opts := []nats.Option{
		nats.Name(cfg.ClientName),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to JetStream: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{cfg.SubjectPrefix + ".>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   24 * time.Hour,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create stream %s: %w", cfg.StreamName, err)
	}

	return &Feed{
		logger: logger,
		conn:   conn,
		js:     js,
		config: cfg,
		subs:   make(map[*subscription]struct{}),
	}, nil
}

// Subject returns the subject photo added events of appID are published on
func (f *Feed) Subject(appID string) string {
	return f.config.SubjectPrefix + "." + subjectToken(appID) + ".added"
}

// subjectToken makes appID safe to use as a single subject token
func subjectToken(appID string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, appID)
}

// PublishPhotoAdded publishes event and waits for the stream ack
func (f *Feed) PublishPhotoAdded(ctx context.Context, event domain.PhotoAddedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if _, err := f.js.Publish(ctx, f.Subject(event.AppID), data); err != nil {
		return fmt.Errorf("failed to publish photo added: %w", err)
	}
	return nil
}

// Subscribe delivers the photo added events of appID published from now on
func (f *Feed) Subscribe(ctx context.Context, appID string, onEvent func(domain.PhotoAddedEvent), onError func(error)) (port.Subscription, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, errors.New("feed closed")
	}
	f.mu.Unlock()

	cons, err := f.js.OrderedConsumer(ctx, f.config.StreamName, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{f.Subject(appID)},
		DeliverPolicy:  jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	consumeCtx, err := cons.Consume(func(msg jetstream.Msg) {
		var event domain.PhotoAddedEvent
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			f.logger.Warn("failed to decode photo added event", "error", err, "subject", msg.Subject())
			return
		}
		onEvent(event)
	}, jetstream.ConsumeErrHandler(func(_ jetstream.ConsumeContext, err error) {
		if isTerminal(err) {
			onError(err)
			return
		}
		f.logger.Warn("change feed consume error", "error", err, "app_id", appID)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to consume: %w", err)
	}

	sub := &subscription{feed: f, consumeCtx: consumeCtx}
	f.mu.Lock()
	f.subs[sub] = struct{}{}
	f.mu.Unlock()
	return sub, nil
}

func isTerminal(err error) bool {
	return errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, jetstream.ErrConsumerDeleted) ||
		errors.Is(err, jetstream.ErrStreamNotFound)
}

// Close stops every subscription and closes the connection
func (f *Feed) Close() error {
	f.mu.Lock()
	f.closed = true
	subs := make([]*subscription, 0, len(f.subs))
	for sub := range f.subs {
		subs = append(subs, sub)
	}
	f.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}

	if f.conn != nil {
		f.conn.Close()
	}
	return nil
}

type subscription struct {
	feed       *Feed
	consumeCtx jetstream.ConsumeContext
	once       sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.consumeCtx.Stop()

		s.feed.mu.Lock()
		delete(s.feed.subs, s)
		s.feed.mu.Unlock()
	})
}
