package upload

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/Bolt667/TallyAndSimon/internal/core/domain"
)

// AllowedImageMimeTypes is a whitelist of supported image MIME types and their extensions.
// This is deterministic and does NOT rely on OS mime databases.
var AllowedImageMimeTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/webp": {".webp"},
	"image/gif":  {".gif"},
	"image/bmp":  {".bmp"},
	"image/tiff": {".tif", ".tiff"},
	"image/heic": {".heic"},
	"image/heif": {".heif"},
}

// validateImage resolves the content type of an upload. An empty or generic content
// type is inferred from the extension.
func validateImage(filename string, contentType string) (string, error) {
	mimeType := extractMimeType(contentType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimeFromExtension(filename)
	}

	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidFileType, mimeType)
	}
	if _, ok := AllowedImageMimeTypes[mimeType]; !ok {
		return "", fmt.Errorf("%w: unsupported MIME type %s", domain.ErrInvalidFileType, mimeType)
	}
	return mimeType, nil
}

func mimeFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	for mimeType, exts := range AllowedImageMimeTypes {
		for _, allowed := range exts {
			if ext == allowed {
				return mimeType
			}
		}
	}
	return ""
}

func extractMimeType(contentType string) string {
	mimeType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mimeType
}
