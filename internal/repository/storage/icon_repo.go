package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// IconRepository stores category icon objects
type IconRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}

// GenerateIconPath creates a unique object path for a category icon:
// <user>/categories/<category>/<random>.png
func GenerateIconPath(userID, categoryID uuid.UUID, ext string) string {
	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	return path.Join(userID.String(), "categories", categoryID.String(), filename)
}
