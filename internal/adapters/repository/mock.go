package repository

import (
	"context"
	"time"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/port"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Create(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUID(ctx context.Context, uid string) (*domain.User, error) {
	args := m.Called(ctx, uid)
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockCustomTokenRepository struct {
	mock.Mock
}

func NewMockCustomTokenRepository() *MockCustomTokenRepository {
	return &MockCustomTokenRepository{}
}

func (m *MockCustomTokenRepository) Create(ctx context.Context, token string, uid string, expiresAt time.Time) error {
	args := m.Called(ctx, token, uid, expiresAt)
	return args.Error(0)
}

func (m *MockCustomTokenRepository) FindUID(ctx context.Context, token string, now time.Time) (string, error) {
	args := m.Called(ctx, token, now)
	return args.String(0), args.Error(1)
}

type MockPhotoRepository struct {
	mock.Mock
}

func NewMockPhotoRepository() *MockPhotoRepository {
	return &MockPhotoRepository{}
}

func (m *MockPhotoRepository) Create(ctx context.Context, appID string, record domain.NewPhotoRecord) (*domain.PhotoRecord, error) {
	args := m.Called(ctx, appID, record)
	return args.Get(0).(*domain.PhotoRecord), args.Error(1)
}

func (m *MockPhotoRepository) ListAll(ctx context.Context, appID string) ([]domain.PhotoRecord, error) {
	args := m.Called(ctx, appID)
	return args.Get(0).([]domain.PhotoRecord), args.Error(1)
}

// MockUnitOfWork runs fn directly against the mock repositories
type MockUnitOfWork struct {
	mock.Mock
	Users  *MockUserRepository
	Tokens *MockCustomTokenRepository
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		Users:  NewMockUserRepository(),
		Tokens: NewMockCustomTokenRepository(),
	}
}

func (m *MockUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	return fn(m)
}

func (m *MockUnitOfWork) UserRepo() port.UserRepository {
	return m.Users
}

func (m *MockUnitOfWork) CustomTokenRepo() port.CustomTokenRepository {
	return m.Tokens
}
