package domain

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// DefaultGuestName is the display name stored when a guest leaves the name blank
const DefaultGuestName = "Anonymous"

// PhotoRecord represents one uploaded guest photo. Records are append-only.
type PhotoRecord struct {
	ID           uuid.UUID  `json:"id"`
	URL          string     `json:"url"`
	GuestName    string     `json:"guestName"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
	UserID       string     `json:"userId"`
	OriginalName string     `json:"originalName"`
}

// SortKey returns the timestamp in epoch milliseconds, or 0 when the timestamp is unresolved
func (p PhotoRecord) SortKey() int64 {
	if p.Timestamp == nil {
		return 0
	}
	return p.Timestamp.UnixMilli()
}

// NewPhotoRecord is the payload appended to the collection. ID and Timestamp are
// assigned by the storage layer.
type NewPhotoRecord struct {
	URL          string
	GuestName    string
	UserID       string
	OriginalName string
}

// StoredObject is an object read back from storage. Body must be closed by the caller.
type StoredObject struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}
