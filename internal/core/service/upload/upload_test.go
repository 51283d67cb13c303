package upload_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Bolt667/TallyAndSimon/internal/adapters/collection"
	"github.com/Bolt667/TallyAndSimon/internal/adapters/storage"
	"github.com/Bolt667/TallyAndSimon/internal/config"
	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/service/gate"
	"github.com/Bolt667/TallyAndSimon/internal/core/service/upload"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	defaultCfg    = config.FileUploadConfig{MaxSize: 10000}
	readySession  = domain.Session{UserID: "user-1", Ready: true}
	fixedNow      = time.UnixMilli(1727430000123)
)

type trackedFile struct {
	io.Reader
	closed bool
}

func (f *trackedFile) Close() error {
	f.closed = true
	return nil
}

func newFile(content string) *trackedFile {
	return &trackedFile{Reader: strings.NewReader(content)}
}

func newService(s *storage.MockStorage, c *collection.MockPhotoCollection, opts ...upload.Option) *upload.Service {
	opts = append([]upload.Option{upload.WithClock(func() time.Time { return fixedNow })}, opts...)
	return upload.NewService(s, c, defaultCfg, discardLogger, opts...)
}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":                  "photo.jpg",
		"my photo.jpg":               "my_photo.jpg",
		"first  dance\t\n  shot.png": "first_dance_shot.png",
		" leading.jpg":               "_leading.jpg",
	}
	for in, expected := range cases {
		t.Run(in, func(t *testing.T) {
			out := upload.SanitizeFileName(in)

			assert.Equal(t, expected, out)
			assert.False(t, strings.ContainsAny(out, " \t\n\r"))
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Aunt May", upload.DisplayName("  Aunt May \n"))
	assert.Equal(t, domain.DefaultGuestName, upload.DisplayName(""))
	assert.Equal(t, domain.DefaultGuestName, upload.DisplayName("   \t"))
}

func TestStoragePath(t *testing.T) {
	first := upload.StoragePath("user-1", time.UnixMilli(1000), "cake.jpg")
	second := upload.StoragePath("user-1", time.UnixMilli(1001), "cake.jpg")

	assert.Equal(t, "user-uploads/user-1/1000_cake.jpg", first)
	assert.NotEqual(t, first, second)
}

func TestService_Upload_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	mockCollection := collection.NewMockPhotoCollection()
	service := newService(mockStorage, mockCollection)

	file := newFile("jpegbytes")
	expectedKey := "user-uploads/user-1/1727430000123_first_dance.jpg"
	url := "https://cdn.example.com/" + expectedKey

	mockStorage.On("Put", ctx, expectedKey, file, int64(9), "image/jpeg").Return(nil).Once()
	mockStorage.On("DownloadURL", ctx, expectedKey).Return(url, nil).Once()
	mockCollection.On("Append", ctx, domain.NewPhotoRecord{
		URL:          url,
		GuestName:    "Grandma Rose",
		UserID:       "user-1",
		OriginalName: "first_dance.jpg",
	}).Return(&domain.PhotoRecord{ID: uuid.New(), URL: url}, nil).Once()

	// Act
	outcome := service.Upload(ctx, readySession, domain.UploadRequest{
		File:        file,
		FileName:    "first dance.jpg",
		Size:        9,
		ContentType: "image/jpeg",
		GuestName:   "  Grandma Rose ",
	})

	// Assert
	assert.Equal(t, domain.SuccessOutcome(upload.MessageSuccess), outcome)
	assert.Equal(t, outcome, service.Outcome())
	assert.False(t, service.Busy())
	assert.True(t, file.closed)
	mockStorage.AssertExpectations(t)
	mockCollection.AssertExpectations(t)
}

func TestService_Upload_BlankNameBecomesAnonymous(t *testing.T) {
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	mockCollection := collection.NewMockPhotoCollection()
	service := newService(mockStorage, mockCollection)

	mockStorage.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockStorage.On("DownloadURL", ctx, mock.Anything).Return("https://cdn/x", nil)
	mockCollection.On("Append", ctx, mock.MatchedBy(func(r domain.NewPhotoRecord) bool {
		return r.GuestName == domain.DefaultGuestName
	})).Return(&domain.PhotoRecord{}, nil).Once()

	outcome := service.Upload(ctx, readySession, domain.UploadRequest{
		File: newFile("x"), FileName: "x.png", Size: 1, ContentType: "image/png", GuestName: "   ",
	})

	assert.Equal(t, domain.UploadStatusSuccess, outcome.Status)
	mockCollection.AssertExpectations(t)
}

func TestService_Upload_ValidationFailuresMakeNoCalls(t *testing.T) {
	tests := []struct {
		name     string
		session  domain.Session
		req      func() domain.UploadRequest
		opts     []upload.Option
		expected string
	}{
		{
			name:    "identity not ready",
			session: domain.Session{},
			req: func() domain.UploadRequest {
				return domain.UploadRequest{File: newFile("x"), FileName: "a.jpg", Size: 1}
			},
			expected: upload.MessageNotReady,
		},
		{
			name:    "no file selected",
			session: readySession,
			req: func() domain.UploadRequest {
				return domain.UploadRequest{GuestName: "Bob"}
			},
			expected: upload.MessageNoFile,
		},
		{
			name:    "wrong gate password",
			session: readySession,
			req: func() domain.UploadRequest {
				return domain.UploadRequest{File: newFile("x"), FileName: "a.jpg", Size: 1, ContentType: "image/jpeg", Password: "Sunshine"}
			},
			opts:     []upload.Option{upload.WithPasswordCheck(gate.New("sunshine"))},
			expected: upload.MessageWrongPassword,
		},
		{
			name:    "not an image",
			session: readySession,
			req: func() domain.UploadRequest {
				return domain.UploadRequest{File: newFile("x"), FileName: "notes.pdf", Size: 1, ContentType: "application/pdf"}
			},
			expected: upload.MessageNotAnImage,
		},
		{
			name:    "image subtype outside the whitelist",
			session: readySession,
			req: func() domain.UploadRequest {
				return domain.UploadRequest{File: newFile("x"), FileName: "a.avif", Size: 1, ContentType: "image/avif"}
			},
			expected: upload.MessageNotAnImage,
		},
		{
			name:    "too big",
			session: readySession,
			req: func() domain.UploadRequest {
				return domain.UploadRequest{File: newFile("x"), FileName: "a.jpg", Size: defaultCfg.MaxSize + 1, ContentType: "image/jpeg"}
			},
			expected: upload.MessageTooBig,
		},
		{
			name:    "body over the request limit",
			session: readySession,
			req: func() domain.UploadRequest {
				return domain.UploadRequest{Oversized: true}
			},
			opts:     []upload.Option{upload.WithPasswordCheck(gate.New("sunshine"))},
			expected: upload.MessageTooBig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mockStorage := storage.NewMockStorage()
			mockCollection := collection.NewMockPhotoCollection()
			service := newService(mockStorage, mockCollection, tt.opts...)

			// Act
			outcome := service.Upload(context.Background(), tt.session, tt.req())

			// Assert
			assert.Equal(t, domain.ErrorOutcome(tt.expected), outcome)
			assert.Empty(t, mockStorage.Calls)
			assert.Empty(t, mockCollection.Calls)
			assert.False(t, service.Busy())
		})
	}
}

func TestService_Upload_CorrectPasswordProceeds(t *testing.T) {
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	mockCollection := collection.NewMockPhotoCollection()
	service := newService(mockStorage, mockCollection, upload.WithPasswordCheck(gate.New("sunshine")))

	mockStorage.On("Put", ctx, mock.Anything, mock.Anything, int64(1), "image/jpeg").Return(nil).Once()
	mockStorage.On("DownloadURL", ctx, mock.Anything).Return("https://cdn/a.jpg", nil).Once()
	mockCollection.On("Append", ctx, mock.Anything).Return(&domain.PhotoRecord{}, nil).Once()

	outcome := service.Upload(ctx, readySession, domain.UploadRequest{
		File: newFile("x"), FileName: "a.jpg", Size: 1, ContentType: "image/jpeg", Password: "sunshine",
	})

	assert.Equal(t, domain.UploadStatusSuccess, outcome.Status)
	mockStorage.AssertExpectations(t)
}

func TestService_Upload_ContentTypeInferredFromExtension(t *testing.T) {
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	mockCollection := collection.NewMockPhotoCollection()
	service := newService(mockStorage, mockCollection)

	mockStorage.On("Put", ctx, mock.Anything, mock.Anything, int64(1), "image/png").Return(nil).Once()
	mockStorage.On("DownloadURL", ctx, mock.Anything).Return("https://cdn/a.png", nil).Once()
	mockCollection.On("Append", ctx, mock.Anything).Return(&domain.PhotoRecord{}, nil).Once()

	outcome := service.Upload(ctx, readySession, domain.UploadRequest{
		File: newFile("x"), FileName: "a.PNG", Size: 1, ContentType: "application/octet-stream",
	})

	assert.Equal(t, domain.UploadStatusSuccess, outcome.Status)
	mockStorage.AssertExpectations(t)
}

func TestService_Upload_StorageWriteFails(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	mockCollection := collection.NewMockPhotoCollection()
	service := newService(mockStorage, mockCollection)
	file := newFile("x")

	mockStorage.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("bucket unavailable")).Once()

	// Act
	outcome := service.Upload(ctx, readySession, domain.UploadRequest{
		File: file, FileName: "a.jpg", Size: 1, ContentType: "image/jpeg",
	})

	// Assert
	assert.Equal(t, domain.ErrorOutcome("Upload failed: bucket unavailable"), outcome)
	mockStorage.AssertNotCalled(t, "DownloadURL", mock.Anything, mock.Anything)
	mockCollection.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	assert.False(t, service.Busy())
	assert.True(t, file.closed)
}

func TestService_Upload_DownloadURLFails(t *testing.T) {
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	mockCollection := collection.NewMockPhotoCollection()
	service := newService(mockStorage, mockCollection)

	mockStorage.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	mockStorage.On("DownloadURL", ctx, mock.Anything).Return("", errors.New("signing failed")).Once()

	outcome := service.Upload(ctx, readySession, domain.UploadRequest{
		File: newFile("x"), FileName: "a.jpg", Size: 1, ContentType: "image/jpeg",
	})

	assert.Equal(t, domain.ErrorOutcome("Upload failed: signing failed"), outcome)
	mockCollection.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestService_Upload_AppendFailsLeavesOrphan(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	mockCollection := collection.NewMockPhotoCollection()
	service := newService(mockStorage, mockCollection)

	mockStorage.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	mockStorage.On("DownloadURL", ctx, mock.Anything).Return("https://cdn/a.jpg", nil).Once()
	mockCollection.On("Append", ctx, mock.Anything).
		Return((*domain.PhotoRecord)(nil), errors.New("insert failed")).Once()

	// Act
	outcome := service.Upload(ctx, readySession, domain.UploadRequest{
		File: newFile("x"), FileName: "a.jpg", Size: 1, ContentType: "image/jpeg",
	})

	// Assert
	assert.Equal(t, domain.ErrorOutcome("Upload failed: insert failed"), outcome)
	// the object is not removed
	mockStorage.AssertNumberOfCalls(t, "Put", 1)
	assert.Len(t, mockStorage.Calls, 2)
	assert.False(t, service.Busy())
}

func TestService_Upload_SameFileDifferentTimesDistinctPaths(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	mockCollection := collection.NewMockPhotoCollection()
	ticks := []time.Time{time.UnixMilli(5000), time.UnixMilli(5001)}
	i := 0
	service := upload.NewService(mockStorage, mockCollection, defaultCfg, discardLogger,
		upload.WithClock(func() time.Time { now := ticks[i]; i++; return now }))

	var keys []string
	mockStorage.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { keys = append(keys, args.String(1)) }).
		Return(nil).Twice()
	mockStorage.On("DownloadURL", ctx, mock.Anything).Return("https://cdn/x", nil).Twice()
	mockCollection.On("Append", ctx, mock.Anything).Return(&domain.PhotoRecord{}, nil).Twice()

	// Act
	for range ticks {
		outcome := service.Upload(ctx, readySession, domain.UploadRequest{
			File: newFile("x"), FileName: "same name.jpg", Size: 1, ContentType: "image/jpeg",
		})
		require.Equal(t, domain.UploadStatusSuccess, outcome.Status)
	}

	// Assert
	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
	assert.Equal(t, "user-uploads/user-1/5000_same_name.jpg", keys[0])
}

func TestService_CanSubmit(t *testing.T) {
	service := newService(storage.NewMockStorage(), collection.NewMockPhotoCollection())

	assert.False(t, service.CanSubmit(domain.Session{}))
	assert.True(t, service.CanSubmit(readySession))
	assert.Equal(t, domain.IdleOutcome(), service.Outcome())
}

func TestService_Upload_BusyNotify(t *testing.T) {
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	mockCollection := collection.NewMockPhotoCollection()

	var service *upload.Service
	busySeen := false
	service = newService(mockStorage, mockCollection, upload.WithBusyNotify(func() {
		busySeen = service.Busy()
		assert.False(t, service.CanSubmit(readySession))
	}))

	mockStorage.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	mockStorage.On("DownloadURL", ctx, mock.Anything).Return("https://cdn/x", nil).Once()
	mockCollection.On("Append", ctx, mock.Anything).Return(&domain.PhotoRecord{}, nil).Once()

	service.Upload(ctx, readySession, domain.UploadRequest{
		File: newFile("x"), FileName: "a.jpg", Size: 1, ContentType: "image/jpeg",
	})

	assert.True(t, busySeen)
	assert.False(t, service.Busy())
}

func TestService_Upload_SecondSubmitWhileBusyIsRejected(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockStorage := storage.NewMockStorage()
	mockCollection := collection.NewMockPhotoCollection()
	service := newService(mockStorage, mockCollection)

	putStarted := make(chan struct{})
	release := make(chan struct{})
	mockStorage.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(putStarted)
			<-release
		}).
		Return(nil).Once()
	mockStorage.On("DownloadURL", ctx, mock.Anything).Return("https://cdn/first.jpg", nil).Once()
	mockCollection.On("Append", ctx, mock.Anything).Return(&domain.PhotoRecord{}, nil).Once()

	first := make(chan domain.UploadOutcome, 1)
	go func() {
		first <- service.Upload(ctx, readySession, domain.UploadRequest{
			File: newFile("first"), FileName: "first.jpg", Size: 5, ContentType: "image/jpeg",
		})
	}()
	<-putStarted

	// Act
	second := newFile("second")
	outcome := service.Upload(ctx, readySession, domain.UploadRequest{
		File: second, FileName: "second.jpg", Size: 6, ContentType: "image/jpeg",
	})

	// Assert
	assert.Equal(t, domain.ErrorOutcome(upload.MessageInProgress), outcome)
	assert.True(t, second.closed)
	assert.True(t, service.Busy())
	// the rejected submit does not replace the in-flight outcome
	assert.Equal(t, domain.IdleOutcome(), service.Outcome())

	close(release)
	select {
	case got := <-first:
		assert.Equal(t, domain.SuccessOutcome(upload.MessageSuccess), got)
	case <-time.After(5 * time.Second):
		t.Fatal("first upload did not finish")
	}
	mockStorage.AssertNumberOfCalls(t, "Put", 1)
	mockCollection.AssertNumberOfCalls(t, "Append", 1)
	assert.False(t, service.Busy())
}
