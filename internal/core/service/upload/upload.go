package upload

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Bolt667/TallyAndSimon/internal/config"
	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/port"
)

// User-visible outcome messages
const (
	MessageNotReady      = "App is not ready. Please wait a moment."
	MessageInProgress    = "An upload is already in progress."
	MessageNoFile        = "Please select a photo."
	MessageWrongPassword = "Incorrect password. Please try again."
	MessageNotAnImage    = "Please select an image file."
	MessageTooBig        = "This photo is too large."
	MessageSuccess       = "Photo uploaded successfully!"
)

// PasswordChecker checks the gate password submitted with the upload form
type PasswordChecker interface {
	Check(candidate string) bool
}

// Service coordinates the two-phase upload of one page: binary to object storage,
// then a metadata record in the shared collection.
type Service struct {
	storage    port.ObjectStorage
	collection port.PhotoCollection
	cfg        config.FileUploadConfig
	password   PasswordChecker
	now        func() time.Time
	onBusy     func()
	logger     *slog.Logger

	mu      sync.Mutex
	busy    bool
	outcome domain.UploadOutcome
}

// Option configures a Service
type Option func(*Service)

// WithPasswordCheck makes every submission carry the gate password
func WithPasswordCheck(checker PasswordChecker) Option {
	return func(s *Service) { s.password = checker }
}

// WithClock overrides the clock used to build storage paths
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBusyNotify registers fn to be called once an upload has started
func WithBusyNotify(fn func()) Option {
	return func(s *Service) { s.onBusy = fn }
}

// NewService creates a new upload service
func NewService(storage port.ObjectStorage, collection port.PhotoCollection, cfg config.FileUploadConfig, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		storage:    storage,
		collection: collection,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger,
		outcome:    domain.IdleOutcome(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var whitespace = regexp.MustCompile(`\s+`)

// SanitizeFileName replaces every whitespace run with a single underscore
func SanitizeFileName(name string) string {
	return whitespace.ReplaceAllString(name, "_")
}

// DisplayName returns the trimmed guest name, or the default name when blank
func DisplayName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return domain.DefaultGuestName
	}
	return name
}

// KeyPrefix is the storage prefix every guest upload lives under
const KeyPrefix = "user-uploads/"

// StoragePath builds the per-user object key of an upload
func StoragePath(userID string, at time.Time, safeName string) string {
	return fmt.Sprintf("%s%s/%d_%s", KeyPrefix, userID, at.UnixMilli(), safeName)
}

// Upload runs one submission and returns its outcome. Validation failures never
// reach the network.
func (s *Service) Upload(ctx context.Context, session domain.Session, req domain.UploadRequest) domain.UploadOutcome {
	if req.File != nil {
		defer req.File.Close()
	}

	if !session.Ready || session.UserID == "" {
		return s.finish(domain.ErrorOutcome(MessageNotReady))
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return domain.ErrorOutcome(MessageInProgress)
	}
	s.mu.Unlock()

	if req.Oversized {
		return s.finish(domain.ErrorOutcome(MessageTooBig))
	}
	if req.File == nil {
		return s.finish(domain.ErrorOutcome(MessageNoFile))
	}
	if s.password != nil && !s.password.Check(req.Password) {
		return s.finish(domain.ErrorOutcome(MessageWrongPassword))
	}
	contentType, err := validateImage(req.FileName, req.ContentType)
	if err != nil {
		return s.finish(domain.ErrorOutcome(MessageNotAnImage))
	}
	if s.cfg.MaxSize > 0 && req.Size > s.cfg.MaxSize {
		return s.finish(domain.ErrorOutcome(MessageTooBig))
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return domain.ErrorOutcome(MessageInProgress)
	}
	s.busy = true
	s.outcome = domain.IdleOutcome()
	s.mu.Unlock()
	if s.onBusy != nil {
		s.onBusy()
	}

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	record, err := s.write(ctx, session, req, contentType)
	if err != nil {
		s.logger.Error("upload error", "error", err, "user_id", session.UserID)
		return s.finish(domain.ErrorOutcome(fmt.Sprintf("Upload failed: %s", err.Error())))
	}

	s.logger.Info("photo uploaded", "photo_id", record.ID, "user_id", session.UserID)
	return s.finish(domain.SuccessOutcome(MessageSuccess))
}

func (s *Service) write(ctx context.Context, session domain.Session, req domain.UploadRequest, contentType string) (*domain.PhotoRecord, error) {
	safeName := SanitizeFileName(req.FileName)
	key := StoragePath(session.UserID, s.now(), safeName)

	if err := s.storage.Put(ctx, key, req.File, req.Size, contentType); err != nil {
		return nil, err
	}

	url, err := s.storage.DownloadURL(ctx, key)
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, fmt.Errorf("no download url for %s", key)
	}

	// an object without a record stays orphaned if this fails
	return s.collection.Append(ctx, domain.NewPhotoRecord{
		URL:          url,
		GuestName:    DisplayName(req.GuestName),
		UserID:       session.UserID,
		OriginalName: safeName,
	})
}

func (s *Service) finish(outcome domain.UploadOutcome) domain.UploadOutcome {
	s.mu.Lock()
	s.outcome = outcome
	s.mu.Unlock()
	return outcome
}

// Outcome returns the outcome of the last attempt
func (s *Service) Outcome() domain.UploadOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Busy reports whether an upload is running
func (s *Service) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// CanSubmit reports whether the upload form should be enabled
func (s *Service) CanSubmit(session domain.Session) bool {
	return session.Ready && !s.Busy()
}
