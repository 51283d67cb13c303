package port

import (
	"context"
	"io"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
)

// ObjectStorage is an interface to define binary object storage interactions
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	DownloadURL(ctx context.Context, key string) (string, error)
}

// ObjectReader reads stored objects back, returns domain.ErrObjectNotFound for unknown keys
type ObjectReader interface {
	GetObject(ctx context.Context, key string) (*domain.StoredObject, error)
}
