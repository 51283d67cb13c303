package domain

import "io"

// UploadStatus represents the state of the last upload attempt
type UploadStatus string

const (
	UploadStatusIdle    UploadStatus = "idle"
	UploadStatusSuccess UploadStatus = "success"
	UploadStatusError   UploadStatus = "error"
)

// UploadOutcome is the transient result of an upload attempt shown to the guest
type UploadOutcome struct {
	Status  UploadStatus `json:"type"`
	Message string       `json:"text"`
}

// IdleOutcome is the outcome before any attempt and at the start of each attempt
func IdleOutcome() UploadOutcome {
	return UploadOutcome{Status: UploadStatusIdle}
}

// SuccessOutcome builds a success outcome
func SuccessOutcome(msg string) UploadOutcome {
	return UploadOutcome{Status: UploadStatusSuccess, Message: msg}
}

// ErrorOutcome builds an error outcome
func ErrorOutcome(msg string) UploadOutcome {
	return UploadOutcome{Status: UploadStatusError, Message: msg}
}

// UploadRequest is a submitted upload form. File is nil when no file was selected.
type UploadRequest struct {
	File        io.ReadCloser
	FileName    string
	Size        int64
	ContentType string
	GuestName   string
	Password    string
	// Oversized is set when the body hit the size limit before the form could be read
	Oversized bool
}
