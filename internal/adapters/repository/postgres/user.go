package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/port"

	"github.com/lib/pq"
)

type sqlUserRepository struct {
	db SQLQuerier
}

// NewSQLUserRepository creates sqlUserRepository that implements port.UserRepository
func NewSQLUserRepository(db SQLQuerier) port.UserRepository {
	return &sqlUserRepository{db: db}
}

// Create stores a new identity
func (s *sqlUserRepository) Create(ctx context.Context, user domain.User) error {
	query := `INSERT INTO users (uid, anonymous) VALUES ($1, $2)`

	_, err := s.db.ExecContext(ctx, query, user.UID, user.Anonymous)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("user %s : %w", user.UID, domain.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// FindByUID finds an identity by uid
func (s *sqlUserRepository) FindByUID(ctx context.Context, uid string) (*domain.User, error) {
	query := `SELECT uid, anonymous FROM users WHERE uid = $1`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, uid).Scan(&user.UID, &user.Anonymous)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
