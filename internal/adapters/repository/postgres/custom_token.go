package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/port"

	"github.com/lib/pq"
)

type sqlCustomTokenRepository struct {
	db SQLQuerier
}

// NewSQLCustomTokenRepository creates sqlCustomTokenRepository that implements port.CustomTokenRepository
func NewSQLCustomTokenRepository(db SQLQuerier) port.CustomTokenRepository {
	return &sqlCustomTokenRepository{db: db}
}

// Create stores a token bound to uid
func (s *sqlCustomTokenRepository) Create(ctx context.Context, token string, uid string, expiresAt time.Time) error {
	query := `INSERT INTO custom_tokens (token, uid, expires_at) VALUES ($1, $2, $3)`

	_, err := s.db.ExecContext(ctx, query, token, uid, expiresAt.UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("custom token : %w", domain.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// FindUID returns the uid bound to a token that has not expired at now
func (s *sqlCustomTokenRepository) FindUID(ctx context.Context, token string, now time.Time) (string, error) {
	query := `SELECT uid FROM custom_tokens WHERE token = $1 AND expires_at > $2`

	var uid string
	err := s.db.QueryRowContext(ctx, query, token, now.UTC()).Scan(&uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrInvalidToken
		}
		return "", err
	}
	return uid, nil
}
