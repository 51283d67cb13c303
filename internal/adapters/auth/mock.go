package auth

import (
	"context"
	"sync"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/port"
	"github.com/stretchr/testify/mock"
)

// MockAuthClient is a mock implementation of port.AuthClient
type MockAuthClient struct {
	mock.Mock
	mu           sync.Mutex
	listener     func(*domain.User)
	unsubscribed int
}

// NewMockAuthClient creates a new MockAuthClient
func NewMockAuthClient() *MockAuthClient {
	return &MockAuthClient{}
}

func (m *MockAuthClient) CurrentUser() *domain.User {
	args := m.Called()
	return args.Get(0).(*domain.User)
}

func (m *MockAuthClient) SignInAnonymously(ctx context.Context) (*domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthClient) SignInWithCustomToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(*domain.User), args.Error(1)
}

// OnAuthStateChanged stores the listener and fires it with the user given to Return
func (m *MockAuthClient) OnAuthStateChanged(fn func(user *domain.User)) func() {
	args := m.Called()
	m.mu.Lock()
	m.listener = fn
	m.mu.Unlock()

	fn(args.Get(0).(*domain.User))

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.listener = nil
		m.unsubscribed++
	}
}

// Emit simulates an identity change notification
func (m *MockAuthClient) Emit(user *domain.User) {
	m.mu.Lock()
	fn := m.listener
	m.mu.Unlock()
	if fn != nil {
		fn(user)
	}
}

// UnsubscribeCount returns how many times the listener was removed
func (m *MockAuthClient) UnsubscribeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unsubscribed
}

// MockAuthClientFactory always hands out the same client
type MockAuthClientFactory struct {
	Client port.AuthClient
}

func (f *MockAuthClientFactory) NewClient() port.AuthClient {
	return f.Client
}
