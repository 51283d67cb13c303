// Package auth is the identity service. Every page instance gets its own Client,
// backed by the users and custom_tokens tables.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/port"

	"github.com/google/uuid"
)

// Service issues identities and hands out per-page clients
type Service struct {
	uow    port.UnitOfWork
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new auth Service
func NewService(uow port.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger, now: time.Now}
}

// NewClient implements port.AuthClientFactory
func (s *Service) NewClient() port.AuthClient {
	return &Client{service: s, listeners: make(map[int]func(*domain.User))}
}

// IssueCustomToken creates a token that signs in as uid until ttl elapses
func (s *Service) IssueCustomToken(ctx context.Context, uid string, ttl time.Duration) (string, error) {
	if uid == "" {
		uid = uuid.NewString()
	}
	token := uuid.NewString()
	expiresAt := s.now().Add(ttl)

	err := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if _, err := uow.UserRepo().FindByUID(ctx, uid); err != nil {
			if !errors.Is(err, domain.ErrUserNotFound) {
				return err
			}
			if err := uow.UserRepo().Create(ctx, domain.User{UID: uid}); err != nil {
				return err
			}
		}
		return uow.CustomTokenRepo().Create(ctx, token, uid, expiresAt)
	})
	if err != nil {
		return "", fmt.Errorf("issue custom token: %w", err)
	}

	s.logger.Info("custom token issued", "uid", uid, "expires_at", expiresAt)
	return token, nil
}

func (s *Service) signInAnonymously(ctx context.Context) (*domain.User, error) {
	user := domain.User{UID: uuid.NewString(), Anonymous: true}
	if err := s.uow.UserRepo().Create(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) signInWithCustomToken(ctx context.Context, token string) (*domain.User, error) {
	var user *domain.User
	err := s.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		uid, err := uow.CustomTokenRepo().FindUID(ctx, token, s.now())
		if err != nil {
			return err
		}

		user, err = uow.UserRepo().FindByUID(ctx, uid)
		if errors.Is(err, domain.ErrUserNotFound) {
			user = &domain.User{UID: uid}
			return uow.UserRepo().Create(ctx, *user)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Client is the identity state of one page instance
type Client struct {
	service *Service

	mu        sync.Mutex
	user      *domain.User
	listeners map[int]func(*domain.User)
	nextID    int
}

func (c *Client) CurrentUser() *domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

func (c *Client) SignInAnonymously(ctx context.Context) (*domain.User, error) {
	user, err := c.service.signInAnonymously(ctx)
	if err != nil {
		return nil, err
	}
	c.setUser(user)
	return user, nil
}

func (c *Client) SignInWithCustomToken(ctx context.Context, token string) (*domain.User, error) {
	user, err := c.service.signInWithCustomToken(ctx, token)
	if err != nil {
		return nil, err
	}
	c.setUser(user)
	return user, nil
}

// OnAuthStateChanged calls fn with the current user right away, then on every change.
// Listeners run outside the client lock and may call back into the client.
func (c *Client) OnAuthStateChanged(fn func(user *domain.User)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	current := c.user
	c.mu.Unlock()

	fn(current)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Client) setUser(user *domain.User) {
	c.mu.Lock()
	c.user = user
	fns := make([]func(*domain.User), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(user)
	}
}
