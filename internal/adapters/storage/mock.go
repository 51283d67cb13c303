package storage

import (
	"context"
	"io"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

func (m *MockStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, body, size, contentType)
	return args.Error(0)
}

func (m *MockStorage) DownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) GetObject(ctx context.Context, key string) (*domain.StoredObject, error) {
	args := m.Called(ctx, key)
	if obj, ok := args.Get(0).(*domain.StoredObject); ok {
		return obj, args.Error(1)
	}
	return nil, args.Error(1)
}
