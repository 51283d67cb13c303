package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/port"

	"github.com/google/uuid"
)

type sqlPhotoRepository struct {
	db SQLQuerier
}

// NewSQLPhotoRepository creates sqlPhotoRepository that implements port.PhotoRepository
func NewSQLPhotoRepository(db SQLQuerier) port.PhotoRepository {
	return &sqlPhotoRepository{db: db}
}

// Create appends a record to the collection of appID. The id and the timestamp are set by the database.
func (s *sqlPhotoRepository) Create(ctx context.Context, appID string, record domain.NewPhotoRecord) (*domain.PhotoRecord, error) {
	query := `
		INSERT INTO wedding_photos (app_id, url, guest_name, user_id, original_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, url, guest_name, timestamp, user_id, original_name`

	var row dbPhoto
	err := s.db.QueryRowContext(ctx, query,
		appID,
		record.URL,
		record.GuestName,
		record.UserID,
		record.OriginalName,
	).Scan(&row.ID, &row.URL, &row.GuestName, &row.Timestamp, &row.UserID, &row.OriginalName)
	if err != nil {
		return nil, fmt.Errorf("error inserting photo: %w", err)
	}

	return row.ToDomain(), nil
}

// ListAll returns every record of appID, unordered
func (s *sqlPhotoRepository) ListAll(ctx context.Context, appID string) ([]domain.PhotoRecord, error) {
	query := `
		SELECT id, url, guest_name, timestamp, user_id, original_name
		FROM wedding_photos
		WHERE app_id = $1`

	rows, err := s.db.QueryContext(ctx, query, appID)
	if err != nil {
		return nil, fmt.Errorf("error querying photos: %w", err)
	}
	defer rows.Close()

	photos := make([]domain.PhotoRecord, 0)
	for rows.Next() {
		var row dbPhoto
		if err := rows.Scan(&row.ID, &row.URL, &row.GuestName, &row.Timestamp, &row.UserID, &row.OriginalName); err != nil {
			return nil, fmt.Errorf("error scanning photo: %w", err)
		}
		photos = append(photos, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

// dbPhoto represents a photo record in DB
type dbPhoto struct {
	ID           uuid.UUID    `db:"id"`
	URL          string       `db:"url"`
	GuestName    string       `db:"guest_name"`
	Timestamp    sql.NullTime `db:"timestamp"`
	UserID       string       `db:"user_id"`
	OriginalName string       `db:"original_name"`
}

// ToDomain converts to domain.PhotoRecord
func (p *dbPhoto) ToDomain() *domain.PhotoRecord {
	record := &domain.PhotoRecord{
		ID:           p.ID,
		URL:          p.URL,
		GuestName:    p.GuestName,
		UserID:       p.UserID,
		OriginalName: p.OriginalName,
	}
	if p.Timestamp.Valid {
		ts := p.Timestamp.Time.In(time.UTC)
		record.Timestamp = &ts
	}
	return record
}
