package port

import (
	"context"
	"time"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
)

// AuthClient is the identity service as seen by one page instance
type AuthClient interface {
	CurrentUser() *domain.User
	SignInAnonymously(ctx context.Context) (*domain.User, error)
	SignInWithCustomToken(ctx context.Context, token string) (*domain.User, error)
	// OnAuthStateChanged registers a listener called with the current user, then on every change.
	OnAuthStateChanged(fn func(user *domain.User)) (unsubscribe func())
}

// AuthClientFactory creates a fresh AuthClient for each page instance
type AuthClientFactory interface {
	NewClient() AuthClient
}

// UserRepository is an interface to define user repository interactions
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	FindByUID(ctx context.Context, uid string) (*domain.User, error)
}

// CustomTokenRepository stores tokens that can be exchanged for a session
type CustomTokenRepository interface {
	Create(ctx context.Context, token string, uid string, expiresAt time.Time) error
	FindUID(ctx context.Context, token string, now time.Time) (string, error)
}
