package gallery

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Bolt667/TallyAndSimon/internal/adapters/handlers/http/chi/pagectx"
	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
	"github.com/Bolt667/TallyAndSimon/internal/core/service/page"
	"github.com/Bolt667/TallyAndSimon/internal/core/service/upload"
)

// Upload form field names
const (
	FieldFile      = "photoFile"
	FieldGuestName = "guestName"
	FieldPassword  = "password"
)

// ReadUploadRequest reads the multipart upload form. A missing file gives a request
// with a nil File, a body over the request size limit gives an Oversized request.
func ReadUploadRequest(r *http.Request, maxMemory int64) (domain.UploadRequest, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.UploadRequest{Oversized: true}, nil
		}
		return domain.UploadRequest{}, fmt.Errorf("parse upload form: %w", err)
	}

	req := domain.UploadRequest{
		GuestName: r.FormValue(FieldGuestName),
		Password:  r.FormValue(FieldPassword),
	}

	file, header, err := r.FormFile(FieldFile)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return req, nil
	case err != nil:
		return domain.UploadRequest{}, fmt.Errorf("read upload file: %w", err)
	}

	req.File = file
	req.FileName = header.Filename
	req.Size = header.Size
	req.ContentType = header.Header.Get("Content-Type")
	return req, nil
}

// OutcomeStatus maps an upload outcome to an HTTP status
func OutcomeStatus(outcome domain.UploadOutcome) int {
	if outcome.Status == domain.UploadStatusSuccess {
		return http.StatusCreated
	}
	switch {
	case outcome.Message == upload.MessageNotReady:
		return http.StatusServiceUnavailable
	case outcome.Message == upload.MessageInProgress:
		return http.StatusConflict
	case outcome.Message == upload.MessageWrongPassword:
		return http.StatusUnauthorized
	case outcome.Message == page.LockedMessage:
		return http.StatusForbidden
	case outcome.Message == upload.MessageTooBig:
		return http.StatusRequestEntityTooLarge
	case strings.HasPrefix(outcome.Message, "Upload failed"):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// UploadPhotoV1 runs one guest upload for the page
func (h *HandlerV1) UploadPhotoV1(w http.ResponseWriter, r *http.Request) {
	req, err := ReadUploadRequest(r, h.maxUploadSize)
	if err != nil {
		h.logger.Error("error reading upload form", "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	p := pagectx.From(r.Context())
	outcome := p.Upload(r.Context(), req)
	writeJSON(w, OutcomeStatus(outcome), outcome)
}
