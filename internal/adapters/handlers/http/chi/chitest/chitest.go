// Package chitest wires the real router to mocked infrastructure for handler tests.
package chitest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Bolt667/TallyAndSimon/internal/adapters/auth"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/collection"
	chiadapter "github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/media"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/v1/gallery"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/web"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/storage"
	"github.com/Bolt667/TallyAndSimon/internal/config"
	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/service/gate"
	"github.com/Bolt667/TallyAndSimon/internal/core/service/page"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	CookieName    = "page_id"
	MaxUploadSize = 1 << 20
	Password      = "sunshine"
)

var DiscardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Fixture is a router backed by mocks. Requests made with Do share one page.
type Fixture struct {
	Auth       *auth.MockAuthClient
	Collection *collection.MockPhotoCollection
	Storage    *storage.MockStorage
	Sub        *collection.MockSubscription
	Pages      *page.Registry
	Handler    http.Handler

	mu     sync.Mutex
	cookie *http.Cookie
}

// New builds a fixture. A non-empty uid signs every page in as that user,
// an empty one makes sign-in fail.
func New(t *testing.T, mode config.GateMode, uid string) *Fixture {
	t.Helper()

	f := &Fixture{
		Auth:       auth.NewMockAuthClient(),
		Collection: collection.NewMockPhotoCollection(),
		Storage:    storage.NewMockStorage(),
		Sub:        &collection.MockSubscription{},
	}

	if uid != "" {
		f.Auth.On("OnAuthStateChanged").Return(&domain.User{UID: uid})
		f.Collection.On("Subscribe", mock.Anything).Return(f.Sub, nil)
	} else {
		f.Auth.On("OnAuthStateChanged").Return((*domain.User)(nil))
		f.Auth.On("CurrentUser").Return((*domain.User)(nil))
		f.Auth.On("SignInAnonymously", mock.Anything).Return((*domain.User)(nil), domain.ErrInvalidToken)
	}

	f.Pages = page.NewRegistry(context.Background(), page.Deps{
		Auth:       &auth.MockAuthClientFactory{Client: f.Auth},
		Collection: f.Collection,
		Storage:    f.Storage,
		Gate:       gate.New(Password),
		GateMode:   mode,
		Upload:     config.FileUploadConfig{MaxSize: MaxUploadSize},
		Logger:     DiscardLogger,
	})
	t.Cleanup(f.Pages.Close)

	site, err := web.NewHandler(web.DefaultContent(), MaxUploadSize, DiscardLogger)
	require.NoError(t, err)

	galleryHandler := gallery.NewGalleryHandlerV1(MaxUploadSize, DiscardLogger)
	photos := media.NewHandler(f.Storage, DiscardLogger)
	f.Handler = chiadapter.NewRouter(DiscardLogger, f.Pages, site, galleryHandler, photos, chiadapter.RouterConfig{
		Env:           "test",
		CookieName:    CookieName,
		MaxUploadSize: MaxUploadSize,
	})
	return f
}

// Do serves req, carrying the page cookie of earlier responses
func (f *Fixture) Do(req *http.Request) *httptest.ResponseRecorder {
	f.mu.Lock()
	if f.cookie != nil {
		req.AddCookie(f.cookie)
	}
	f.mu.Unlock()

	w := httptest.NewRecorder()
	f.Handler.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			f.mu.Lock()
			f.cookie = c
			f.mu.Unlock()
		}
	}
	return w
}

// Cookie returns the page cookie, nil before the first request
func (f *Fixture) Cookie() *http.Cookie {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cookie
}
