package eventbroker

import (
	"context"
	"sync"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/port"
	"github.com/stretchr/testify/mock"
)

// MockChangeFeed is a mock implementation of port.ChangeFeed
type MockChangeFeed struct {
	mock.Mock
	mu      sync.Mutex
	onEvent func(domain.PhotoAddedEvent)
	onError func(error)
}

// NewMockChangeFeed creates a new MockChangeFeed
func NewMockChangeFeed() *MockChangeFeed {
	return &MockChangeFeed{}
}

func (m *MockChangeFeed) PublishPhotoAdded(ctx context.Context, event domain.PhotoAddedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockChangeFeed) Subscribe(ctx context.Context, appID string, onEvent func(domain.PhotoAddedEvent), onError func(error)) (port.Subscription, error) {
	args := m.Called(ctx, appID)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.onEvent = onEvent
	m.onError = onError
	m.mu.Unlock()
	return args.Get(0).(port.Subscription), nil
}

func (m *MockChangeFeed) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Emit delivers event to the last subscriber
func (m *MockChangeFeed) Emit(event domain.PhotoAddedEvent) {
	m.mu.Lock()
	fn := m.onEvent
	m.mu.Unlock()
	if fn != nil {
		fn(event)
	}
}

// Fail delivers err to the last subscriber
func (m *MockChangeFeed) Fail(err error) {
	m.mu.Lock()
	fn := m.onError
	m.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}
