package postgres_test

import (
	"context"
	"testing"

	"github.com/Bolt667/TallyAndSimon/internal/adapters/repository/postgres"
	"github.com/Bolt667/TallyAndSimon/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLPhotoRepository(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	repo := postgres.NewSQLPhotoRepository(dbConnection)
	input := domain.NewPhotoRecord{
		URL:          "https://cdn/user-uploads/u/1_cake.jpg",
		GuestName:    "Aunt May",
		UserID:       "u",
		OriginalName: "cake.jpg",
	}

	t.Run("create assigns id and timestamp", func(t *testing.T) {
		truncate()

		record, err := repo.Create(ctx, "talesa-simon", input)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, record.ID)
		require.NotNil(t, record.Timestamp)
		assert.Equal(t, input.URL, record.URL)
		assert.Equal(t, input.GuestName, record.GuestName)
		assert.Equal(t, input.UserID, record.UserID)
		assert.Equal(t, input.OriginalName, record.OriginalName)

		all, err := repo.ListAll(ctx, "talesa-simon")
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, record.ID, all[0].ID)
	})

	t.Run("collections are scoped by app id", func(t *testing.T) {
		truncate()
		_, err := repo.Create(ctx, "app-a", input)
		require.NoError(t, err)
		_, err = repo.Create(ctx, "app-a", input)
		require.NoError(t, err)
		other, err := repo.Create(ctx, "app-b", input)
		require.NoError(t, err)

		a, err := repo.ListAll(ctx, "app-a")
		require.NoError(t, err)
		b, err := repo.ListAll(ctx, "app-b")
		require.NoError(t, err)

		assert.Len(t, a, 2)
		require.Len(t, b, 1)
		assert.Equal(t, other.ID, b[0].ID)
		for _, photo := range a {
			assert.NotEqual(t, other.ID, photo.ID)
		}
	})

	t.Run("empty collection", func(t *testing.T) {
		truncate()

		photos, err := repo.ListAll(ctx, "nothing-here")

		require.NoError(t, err)
		assert.Empty(t, photos)
	})
}
