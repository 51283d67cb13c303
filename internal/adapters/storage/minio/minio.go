package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/Bolt667/TallyAndSimon/internal/config"
	"github.com/Bolt667/TallyAndSimon/internal/core/domain"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Adapter is an adapter for minio
type Adapter struct {
	client    *minio.Client
	config    config.MinioConfig
	bucket    string
	proxyBase string
	logger    *slog.Logger
}

// NewAdapter returns Adapter. The bucket is created when missing.
// proxyBase is the app route objects are served from when the bucket has no public base URL.
func NewAdapter(ctx context.Context, cfg config.MinioConfig, bucket string, proxyBase string, logger *slog.Logger) (*Adapter, error) {
	if cfg.PublicBaseURL == "" && proxyBase == "" {
		return nil, errors.New("either a public base url or a proxy base url is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("bucket created", "bucket", bucket)
	}

	return &Adapter{client: client, config: cfg, bucket: bucket, proxyBase: proxyBase, logger: logger}, nil
}

// Put writes the object under key
func (a *Adapter) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if size <= 0 {
		size = -1
	}
	info, err := a.client.PutObject(ctx, a.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}

	a.logger.Debug("object stored", "key", key, "size", info.Size)
	return nil
}

// DownloadURL returns a permanent URL guests can load the object from
func (a *Adapter) DownloadURL(_ context.Context, key string) (string, error) {
	base := a.config.PublicBaseURL
	if base == "" {
		base = a.proxyBase
	}
	return strings.TrimRight(base, "/") + "/" + escapeKey(key), nil
}

// GetObject returns the object content and metadata
func (a *Adapter) GetObject(ctx context.Context, key string) (*domain.StoredObject, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}

	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, domain.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	return &domain.StoredObject{Body: obj, ContentType: info.ContentType, Size: info.Size}, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
