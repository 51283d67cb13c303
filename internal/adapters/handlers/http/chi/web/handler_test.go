package web_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/chitest"
	"github.com/Bolt667/TallyAndSimon/internal/config"
	"github.com/Bolt667/TallyAndSimon/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func index(t *testing.T, f *chitest.Fixture) string {
	t.Helper()
	w := f.Do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	return w.Body.String()
}

func gateForm(password string) *http.Request {
	form := url.Values{"password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/gate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestIndex(t *testing.T) {
	t.Run("locked gallery shows the gate", func(t *testing.T) {
		// Arrange
		f := chitest.New(t, config.GateModeGallery, "guest-1")

		// Act
		body := index(t, f)

		// Assert
		assert.Contains(t, body, "Talesa &amp; Simon")
		assert.Contains(t, body, "27th September 2025")
		assert.Contains(t, body, "Food &amp; Drink")
		assert.Contains(t, body, `<span>guest-1</span>`)
		assert.Contains(t, body, `action="/gate"`)
		assert.NotContains(t, body, `action="/upload"`)
		assert.NotContains(t, body, `id="photos"`)
	})

	t.Run("upload gate shows the form and the empty gallery", func(t *testing.T) {
		f := chitest.New(t, config.GateModeUpload, "guest-1")

		body := index(t, f)

		assert.Contains(t, body, `action="/upload"`)
		assert.Contains(t, body, `type="password" name="password"`)
		assert.Contains(t, body, "Be the first to upload a photo!")
		assert.NotContains(t, body, `action="/gate"`)
		assert.NotContains(t, body, `<button type="submit" disabled>`)
	})

	t.Run("photos are rendered", func(t *testing.T) {
		f := chitest.New(t, config.GateModeUpload, "guest-1")
		index(t, f)
		f.Collection.Deliver([]domain.PhotoRecord{{ID: uuid.New(), URL: "https://cdn/first.jpg", GuestName: "Grandma"}})

		body := index(t, f)

		assert.Contains(t, body, `src="https://cdn/first.jpg"`)
		assert.Contains(t, body, "Uploaded by Grandma")
		assert.NotContains(t, body, `<p class="empty">Be the first`)
	})

	t.Run("failed sign-in", func(t *testing.T) {
		f := chitest.New(t, config.GateModeUpload, "")

		body := index(t, f)

		assert.Contains(t, body, "Auth failed: ")
		assert.NotContains(t, body, `class="badge"`)
		assert.Contains(t, body, `<button type="submit" disabled>`)
	})
}

func TestGate(t *testing.T) {
	t.Run("right password opens the gallery", func(t *testing.T) {
		f := chitest.New(t, config.GateModeGallery, "guest-1")
		index(t, f)

		w := f.Do(gateForm(chitest.Password))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/#gallery", w.Header().Get("Location"))
		body := index(t, f)
		assert.Contains(t, body, `action="/upload"`)
		// gallery mode uploads carry no password
		assert.NotContains(t, body, `type="password" name="password"`)
	})

	t.Run("wrong password keeps it closed", func(t *testing.T) {
		f := chitest.New(t, config.GateModeGallery, "guest-1")
		index(t, f)

		w := f.Do(gateForm("password"))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		body := index(t, f)
		assert.Contains(t, body, "Incorrect password. Please try again.")
		assert.Contains(t, body, `action="/gate"`)
	})
}

func TestUpload(t *testing.T) {
	// Arrange
	f := chitest.New(t, config.GateModeUpload, "guest-1")
	index(t, f)

	f.Storage.On("Put", mock.Anything, mock.Anything, mock.Anything, int64(3), "image/png").Return(nil).Once()
	f.Storage.On("DownloadURL", mock.Anything, mock.Anything).Return("https://cdn/x.png", nil).Once()
	f.Collection.On("Append", mock.Anything, mock.MatchedBy(func(r domain.NewPhotoRecord) bool {
		return r.GuestName == domain.DefaultGuestName && r.OriginalName == "x.png"
	})).Return(&domain.PhotoRecord{ID: uuid.New()}, nil).Once()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("password", chitest.Password))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="photoFile"; filename="x.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	// Act
	w := f.Do(req)

	// Assert
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/#gallery", w.Header().Get("Location"))
	assert.Contains(t, index(t, f), "Photo uploaded successfully!")
	f.Storage.AssertExpectations(t)
	f.Collection.AssertExpectations(t)
}

func TestUpload_OversizedBody(t *testing.T) {
	// Arrange
	f := chitest.New(t, config.GateModeUpload, "guest-1")
	index(t, f)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("password", chitest.Password))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="photoFile"; filename="huge.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), 3*chitest.MaxUploadSize))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	// Act
	w := f.Do(req)

	// Assert
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, index(t, f), "This photo is too large.")
	assert.Empty(t, f.Storage.Calls)
}

func TestUpload_InvalidForm(t *testing.T) {
	f := chitest.New(t, config.GateModeUpload, "guest-1")

	w := f.Do(httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("nope")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
