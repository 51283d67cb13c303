package collection

import (
	"context"
	"sync"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/port"
	"github.com/stretchr/testify/mock"
)

// MockPhotoCollection is a mock implementation of port.PhotoCollection
type MockPhotoCollection struct {
	mock.Mock
	mu         sync.Mutex
	onSnapshot func([]domain.PhotoRecord)
	onError    func(error)
}

// NewMockPhotoCollection creates a new MockPhotoCollection
func NewMockPhotoCollection() *MockPhotoCollection {
	return &MockPhotoCollection{}
}

func (m *MockPhotoCollection) Append(ctx context.Context, record domain.NewPhotoRecord) (*domain.PhotoRecord, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(*domain.PhotoRecord), args.Error(1)
}

func (m *MockPhotoCollection) Subscribe(ctx context.Context, onSnapshot func([]domain.PhotoRecord), onError func(error)) (port.Subscription, error) {
	args := m.Called(ctx)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.onSnapshot = onSnapshot
	m.onError = onError
	m.mu.Unlock()
	return args.Get(0).(port.Subscription), nil
}

// Deliver pushes a snapshot to the last subscriber
func (m *MockPhotoCollection) Deliver(records []domain.PhotoRecord) {
	m.mu.Lock()
	fn := m.onSnapshot
	m.mu.Unlock()
	if fn != nil {
		fn(records)
	}
}

// Fail pushes a subscription error to the last subscriber
func (m *MockPhotoCollection) Fail(err error) {
	m.mu.Lock()
	fn := m.onError
	m.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// MockSubscription counts Unsubscribe calls
type MockSubscription struct {
	mu    sync.Mutex
	count int
}

func (s *MockSubscription) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
}

// Count returns how many times Unsubscribe was called
func (s *MockSubscription) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}
