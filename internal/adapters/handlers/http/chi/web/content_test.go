package web_test

import (
	"testing"

	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/web"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultContent(t *testing.T) {
	c := web.DefaultContent()

	assert.Equal(t, "Talesa & Simon", c.Couple)
	assert.Equal(t, "27th September 2025", c.Date)
	require.NotEmpty(t, c.Sections)
	assert.Equal(t, "Be the first to upload a photo!", c.Gallery.Empty)
	assert.Equal(t, "Connecting to server...", c.Gallery.Connecting)
}

func TestParseContent(t *testing.T) {
	t.Run("nominal", func(t *testing.T) {
		c, err := web.ParseContent([]byte("couple: A & B\nsections:\n  - id: venue\n    title: Venue\n"))

		require.NoError(t, err)
		assert.Equal(t, "A & B", c.Couple)
		require.Len(t, c.Sections, 1)
		assert.Equal(t, "venue", c.Sections[0].ID)
	})

	t.Run("missing couple", func(t *testing.T) {
		_, err := web.ParseContent([]byte("date: tomorrow\n"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := web.ParseContent([]byte("couple: [unterminated"))
		assert.Error(t, err)
	})
}
